package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testSession struct {
	user string
}

func (s *testSession) String() string {
	return "session for " + s.user
}

func TestGet_RoundTrip(t *testing.T) {
	var (
		now     = time.Now()
		session = &testSession{user: "alice"}
		args    = NewArguments(nil).
			Set("string", "alice").
			Set("int", 42).
			Set("float", 1.5).
			Set("bool", true).
			Set("time", now).
			Set("session", session).
			Set("bytes", []byte("abc"))
	)

	s, err := Get[string](args, "string")
	assert.NoError(t, err)
	assert.Equal(t, "alice", s)

	i, err := Get[int](args, "int")
	assert.NoError(t, err)
	assert.Equal(t, 42, i)

	f, err := Get[float64](args, "float")
	assert.NoError(t, err)
	assert.Equal(t, 1.5, f)

	b, err := Get[bool](args, "bool")
	assert.NoError(t, err)
	assert.True(t, b)

	tm, err := Get[time.Time](args, "time")
	assert.NoError(t, err)
	assert.Equal(t, now, tm)

	sess, err := Get[*testSession](args, "session")
	assert.NoError(t, err)
	assert.Same(t, session, sess)

	raw, err := Get[[]byte](args, "bytes")
	assert.NoError(t, err)
	assert.Equal(t, []byte("abc"), raw)
}

func TestGet_Missing(t *testing.T) {
	args := NewArguments(nil)
	_, err := Get[string](args, "username")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.NotErrorIs(t, err, ErrTypeMismatch)
	var missing *MissingKeyError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "username", missing.Key)
}

func TestGet_TypeMismatch(t *testing.T) {
	args := NewArguments(nil).Set("count", 5)
	_, err := Get[string](args, "count")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.NotErrorIs(t, err, ErrMissingKey)
	assert.NotErrorIs(t, err, ErrNotASequence)

	var mismatch *TypeMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "count", mismatch.Key)
	assert.Equal(t, reflect.TypeFor[string](), mismatch.Want)
	assert.Equal(t, reflect.TypeFor[int](), mismatch.Got)
	assert.Equal(t, -1, mismatch.Index)

	_, err = Get[int64](args, "count")
	assert.ErrorIs(t, err, ErrTypeMismatch, "Numeric types are not converted")
}

func TestGet_Interface(t *testing.T) {
	args := NewArguments(nil).Set("session", &testSession{user: "bob"})
	stringer, err := Get[fmt.Stringer](args, "session")
	require.NoError(t, err)
	assert.Equal(t, "session for bob", stringer.String())

	anything, err := Get[any](args, "session")
	assert.NoError(t, err)
	assert.NotNil(t, anything)

	_, err = Get[error](args, "session")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestSet_Overwrites(t *testing.T) {
	args := NewArguments(nil).Set("key", 1).Set("key", "two")
	assert.Equal(t, 1, args.Len())
	_, err := Get[int](args, "key")
	assert.ErrorIs(t, err, ErrTypeMismatch)
	val, err := Get[string](args, "key")
	assert.NoError(t, err)
	assert.Equal(t, "two", val)
}

func TestArguments_NilValue(t *testing.T) {
	args := NewArguments(nil).Set("nothing", nil)
	assert.True(t, args.ContainsKey("nothing"), "A nil value is still a stored key")

	_, err := Get[string](args, "nothing")
	assert.ErrorIs(t, err, ErrMissingKey)

	_, ok, err := GetOptional[string](args, "nothing")
	assert.NoError(t, err)
	assert.False(t, ok)

	val, err := GetOrDefault(args, "nothing", "fallback")
	assert.NoError(t, err)
	assert.Equal(t, "fallback", val)

	types := args.KeysAndTypes()
	assert.Contains(t, types, "nothing")
	assert.Nil(t, types["nothing"])
}

func TestGetOptional(t *testing.T) {
	args := NewArguments(nil).Set("name", "alice")

	val, ok, err := GetOptional[string](args, "name")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", val)

	val, ok, err = GetOptional[string](args, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, val)

	_, ok, err = GetOptional[int](args, "name")
	assert.ErrorIs(t, err, ErrTypeMismatch, "Optional only covers absence")
	assert.False(t, ok)
}

func TestGetOrDefault(t *testing.T) {
	args := NewArguments(nil).Set("retries", 3)

	val, err := GetOrDefault(args, "retries", 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, val)

	val, err = GetOrDefault(args, "missing", 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, val)

	_, err = GetOrDefault(args, "retries", "1")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGetList(t *testing.T) {
	tests := map[string]struct {
		value    any
		expected []string
		err      error
		index    int
	}{
		"Typed slice": {
			value:    []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		"Any slice": {
			value:    []any{"a", "b"},
			expected: []string{"a", "b"},
		},
		"Array": {
			value:    [2]string{"a", "b"},
			expected: []string{"a", "b"},
		},
		"Empty slice": {
			value:    []string{},
			expected: []string{},
		},
		"Mismatched element": {
			value: []any{"a", 2, "c"},
			err:   ErrTypeMismatch,
			index: 1,
		},
		"Mismatched element type": {
			value: []int{1, 2},
			err:   ErrTypeMismatch,
			index: 0,
		},
		"Nil element": {
			value: []any{"a", nil},
			err:   ErrTypeMismatch,
			index: 1,
		},
		"Not a sequence": {
			value: "a,b",
			err:   ErrNotASequence,
			index: -1,
		},
		"Map is not a sequence": {
			value: map[string]string{"a": "b"},
			err:   ErrNotASequence,
			index: -1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			args := NewArguments(nil).Set("list", tc.value)
			list, err := GetList[string](args, "list")
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.ErrorIs(t, err, ErrTypeMismatch)
				assert.Nil(t, list, "No partial results should be returned")
				var mismatch *TypeMismatchError
				require.ErrorAs(t, err, &mismatch)
				assert.Equal(t, tc.index, mismatch.Index)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, list)
		})
	}
}

func TestGetList_ReturnsCopy(t *testing.T) {
	stored := []string{"a", "b"}
	args := NewArguments(nil).Set("list", stored)
	list, err := GetList[string](args, "list")
	require.NoError(t, err)
	list[0] = "changed"
	assert.Equal(t, "a", stored[0])
}

func TestGetList_Interface(t *testing.T) {
	args := NewArguments(nil).Set("errs", []error{errors.New("a"), errors.New("b")})
	list, err := GetList[error](args, "errs")
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = GetList[fmt.Stringer](args, "errs")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestGetOptionalList(t *testing.T) {
	args := NewArguments(nil).Set("tags", []string{"x"}).Set("scalar", 1)

	list, ok, err := GetOptionalList[string](args, "tags")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"x"}, list)

	list, ok, err = GetOptionalList[string](args, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, list)

	_, ok, err = GetOptionalList[string](args, "scalar")
	assert.ErrorIs(t, err, ErrNotASequence)
	assert.False(t, ok)
}

func TestGetListOrDefault(t *testing.T) {
	args := NewArguments(nil).Set("ids", []any{1, 2}).Set("bad", []any{1, "2"})

	list, err := GetListOrDefault(args, "ids", []int{9})
	assert.NoError(t, err)
	assert.Equal(t, []int{1, 2}, list)

	list, err = GetListOrDefault(args, "missing", []int{9})
	assert.NoError(t, err)
	assert.Equal(t, []int{9}, list)

	_, err = GetListOrDefault(args, "bad", []int{9})
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = GetList[int](args, "missing")
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestArguments_Introspection(t *testing.T) {
	args := NewArguments(nil).Set("b", 1).Set("a", "x")
	assert.True(t, args.ContainsKey("a"))
	assert.False(t, args.ContainsKey("c"))
	assert.Equal(t, []string{"a", "b"}, args.Keys())
	assert.Equal(t, map[string]reflect.Type{
		"a": reflect.TypeFor[string](),
		"b": reflect.TypeFor[int](),
	}, args.KeysAndTypes())

	var zero Arguments
	zero.Set("late", true)
	assert.True(t, zero.ContainsKey("late"), "Zero value should be usable")
}

func TestEmitterAs(t *testing.T) {
	session := &testSession{user: "alice"}
	args := NewArguments(session)
	assert.Same(t, session, args.Emitter())

	got, err := EmitterAs[*testSession](args)
	assert.NoError(t, err)
	assert.Same(t, session, got)

	stringer, err := EmitterAs[fmt.Stringer](args)
	assert.NoError(t, err)
	assert.Equal(t, "session for alice", stringer.String())

	_, err = EmitterAs[string](args)
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = EmitterAs[*testSession](NewArguments(nil))
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestKey(t *testing.T) {
	var (
		username = NewKey[string]("username")
		tags     = NewListKey[string]("tags")
		args     = NewArguments(nil)
	)
	username.Set(args, "alice")
	tags.Set(args, []string{"admin"})

	assert.Equal(t, "username", username.Name())
	assert.Equal(t, "username(string)", username.String())
	assert.Equal(t, "tags([]string)", tags.String())

	name, err := username.Get(args)
	assert.NoError(t, err)
	assert.Equal(t, "alice", name)

	list, err := tags.Get(args)
	assert.NoError(t, err)
	assert.Equal(t, []string{"admin"}, list)

	_, ok, err := NewKey[int]("missing").GetOptional(args)
	assert.NoError(t, err)
	assert.False(t, ok)

	count, err := NewKey[int]("missing").GetOrDefault(args, 4)
	assert.NoError(t, err)
	assert.Equal(t, 4, count)

	_, ok, err = NewListKey[int]("tags").GetOptional(args)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.False(t, ok)

	list, err = NewListKey[string]("missing").GetOrDefault(args, nil)
	assert.NoError(t, err)
	assert.Nil(t, list)
}

func TestExtract(t *testing.T) {
	var (
		name  string
		count int
		tags  []string
		opt   = "unchanged"
		args  = NewArguments(nil).Set("name", "alice").Set("count", 3).Set("tags", []any{"a"})
	)
	err := Extract(args,
		Into("name", &name),
		Into("count", &count),
		ListInto("tags", &tags),
		OptionalInto("optional", &opt),
		nil,
	)
	assert.NoError(t, err)
	assert.Equal(t, "alice", name)
	assert.Equal(t, 3, count)
	assert.Equal(t, []string{"a"}, tags)
	assert.Equal(t, "unchanged", opt)

	err = Extract(args,
		Into("missing", &name),
		Into("name", &count),
		Into[string]("name", nil),
	)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.ErrorContains(t, err, "nil pointer")
}
