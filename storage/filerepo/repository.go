// Package filerepo provides a directory-backed repository that stores one file per entity.
//
// Every operation runs in its own goroutine and returns a [syncx.FutureErr], so callers can choose when to block.
// When a dispatcher is provided with [WithDispatcher], changes are announced as events.
//
//go:generate go run ../../cmd/eventgen generate -o events_gen.go events.yaml
package filerepo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/saylorsolutions/eventx/patterns/eventbus"
	"github.com/saylorsolutions/eventx/syncx"
)

var (
	ErrNotFound  = errors.New("entity not found")
	ErrInvalidID = errors.New("invalid entity id")
)

type config struct {
	codec Codec
	log   *slog.Logger
	bus   *eventbus.Dispatcher
}

type Option func(conf *config)

// WithCodec sets the [Codec] used to store entities. The default is [JSON].
func WithCodec(codec Codec) Option {
	return func(conf *config) {
		if codec != nil {
			conf.codec = codec
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(conf *config) {
		if log != nil {
			conf.log = log
		}
	}
}

// WithDispatcher will cause successful changes to be published to the dispatcher as [RepositoryCreated], [RepositoryUpdated], or [RepositoryDeleted].
// The repository is the emitter of these events.
func WithDispatcher(d *eventbus.Dispatcher) Option {
	return func(conf *config) {
		conf.bus = d
	}
}

// Repository stores entities of type T in a directory, identified by a key of type K.
type Repository[T any, K comparable] struct {
	dir  string
	idOf func(T) K
	conf config
	mux  sync.RWMutex
}

// New creates a [Repository] rooted at dir, creating the directory if needed.
// The idOf function must return the identity of an entity.
func New[T any, K comparable](dir string, idOf func(T) K, opts ...Option) (*Repository[T, K], error) {
	if len(dir) == 0 {
		return nil, errors.New("empty repository directory")
	}
	if idOf == nil {
		return nil, errors.New("nil id function")
	}
	conf := config{
		codec: JSON,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&conf)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}
	return &Repository[T, K]{
		dir:  dir,
		idOf: idOf,
		conf: conf,
	}, nil
}

// Dir returns the directory that holds entity files.
func (r *Repository[T, K]) Dir() string {
	return r.dir
}

func (r *Repository[T, K]) fileName(id K) (string, error) {
	name := fmt.Sprint(id)
	if len(strings.TrimSpace(name)) == 0 {
		return "", fmt.Errorf("%w: id is blank", ErrInvalidID)
	}
	// Escaping path separators keeps every entity file directly inside the repository directory.
	return filepath.Join(r.dir, url.PathEscape(name)+"."+r.conf.codec.Ext()), nil
}

// run starts fn on a new goroutine, unless ctx is already done.
func run[T any](ctx context.Context, fn func() (T, error)) syncx.FutureErr[T] {
	if err := ctx.Err(); err != nil {
		var zero T
		return syncx.Resolved(zero, err)
	}
	return syncx.Go(func() (T, error) {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}
		return fn()
	})
}

// Create stores the entity, replacing any entity with the same id.
func (r *Repository[T, K]) Create(ctx context.Context, entity T) syncx.FutureErr[T] {
	return run(ctx, func() (T, error) {
		id := r.idOf(entity)
		err := syncx.LockFuncT(&r.mux, func() error {
			return r.write(id, entity)
		})
		if err != nil {
			r.conf.log.Error("Failed to create entity", "id", id, "error", err)
			var zero T
			return zero, err
		}
		r.conf.log.Debug("Created entity", "id", id)
		r.publish(RepositoryCreated, func(args *eventbus.Arguments) {
			RepositoryCreatedId.Set(args, fmt.Sprint(id))
			RepositoryCreatedEntity.Set(args, entity)
		})
		return entity, nil
	})
}

// Read loads the entity with the given id, or returns [ErrNotFound].
func (r *Repository[T, K]) Read(ctx context.Context, id K) syncx.FutureErr[T] {
	return run(ctx, func() (T, error) {
		r.mux.RLock()
		defer r.mux.RUnlock()
		return r.read(id)
	})
}

// Update replaces an existing entity, or returns [ErrNotFound] if it hasn't been created.
func (r *Repository[T, K]) Update(ctx context.Context, entity T) syncx.FutureErr[T] {
	return run(ctx, func() (T, error) {
		id := r.idOf(entity)
		err := syncx.LockFuncT(&r.mux, func() error {
			exists, err := r.exists(id)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("%w: '%v'", ErrNotFound, id)
			}
			return r.write(id, entity)
		})
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.conf.log.Error("Failed to update entity", "id", id, "error", err)
			}
			var zero T
			return zero, err
		}
		r.conf.log.Debug("Updated entity", "id", id)
		r.publish(RepositoryUpdated, func(args *eventbus.Arguments) {
			RepositoryUpdatedId.Set(args, fmt.Sprint(id))
			RepositoryUpdatedEntity.Set(args, entity)
		})
		return entity, nil
	})
}

// Delete removes the entity with the given id, or returns [ErrNotFound].
// The removed entity is returned when its file can still be decoded, otherwise the zero value is returned and the file is removed anyway.
func (r *Repository[T, K]) Delete(ctx context.Context, id K) syncx.FutureErr[T] {
	return run(ctx, func() (T, error) {
		entity, err := syncx.LockFuncTErr(&r.mux, func() (T, error) {
			var zero T
			name, err := r.fileName(id)
			if err != nil {
				return zero, err
			}
			exists, err := r.exists(id)
			if err != nil {
				return zero, err
			}
			if !exists {
				return zero, fmt.Errorf("%w: '%v'", ErrNotFound, id)
			}
			entity, err := r.load(name)
			if err != nil {
				r.conf.log.Warn("Deleting entity that can't be decoded", "id", id, "error", err)
				entity = zero
			}
			return entity, os.Remove(name)
		})
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				r.conf.log.Error("Failed to delete entity", "id", id, "error", err)
			}
			var zero T
			return zero, err
		}
		r.conf.log.Debug("Deleted entity", "id", id)
		r.publish(RepositoryDeleted, func(args *eventbus.Arguments) {
			RepositoryDeletedId.Set(args, fmt.Sprint(id))
		})
		return entity, nil
	})
}

// Exists reports whether an entity with the given id is stored.
func (r *Repository[T, K]) Exists(ctx context.Context, id K) syncx.FutureErr[bool] {
	return run(ctx, func() (bool, error) {
		r.mux.RLock()
		defer r.mux.RUnlock()
		return r.exists(id)
	})
}

// List loads all stored entities, ordered by file name.
// Directories and files without the codec's extension are skipped.
func (r *Repository[T, K]) List(ctx context.Context) syncx.FutureErr[[]T] {
	return run(ctx, func() ([]T, error) {
		r.mux.RLock()
		defer r.mux.RUnlock()
		entries, err := os.ReadDir(r.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to list repository directory: %w", err)
		}
		suffix := "." + r.conf.codec.Ext()
		var entities []T
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !entry.Type().IsRegular() || !strings.HasSuffix(entry.Name(), suffix) {
				continue
			}
			entity, err := r.load(filepath.Join(r.dir, entry.Name()))
			if err != nil {
				return nil, err
			}
			entities = append(entities, entity)
		}
		return entities, nil
	})
}

func (r *Repository[T, K]) exists(id K) (bool, error) {
	name, err := r.fileName(id)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (r *Repository[T, K]) read(id K) (T, error) {
	var zero T
	name, err := r.fileName(id)
	if err != nil {
		return zero, err
	}
	entity, err := r.load(name)
	if errors.Is(err, fs.ErrNotExist) {
		return zero, fmt.Errorf("%w: '%v'", ErrNotFound, id)
	}
	return entity, err
}

func (r *Repository[T, K]) load(name string) (T, error) {
	var entity T
	data, err := os.ReadFile(name)
	if err != nil {
		return entity, err
	}
	if err := r.conf.codec.Unmarshal(data, &entity); err != nil {
		return entity, fmt.Errorf("failed to decode '%s': %w", filepath.Base(name), err)
	}
	return entity, nil
}

func (r *Repository[T, K]) write(id K, entity T) (err error) {
	name, err := r.fileName(id)
	if err != nil {
		return err
	}
	data, err := r.conf.codec.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to encode entity '%v': %w", id, err)
	}
	tmp, err := os.CreateTemp(r.dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), name)
}

func (r *Repository[T, K]) publish(event string, setArgs func(args *eventbus.Arguments)) {
	if r.conf.bus == nil {
		return
	}
	args := eventbus.NewArguments(r)
	setArgs(args)
	r.conf.bus.Execute(event, args)
}
