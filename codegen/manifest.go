package codegen

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/saylorsolutions/eventx/assert"
	"github.com/saylorsolutions/eventx/structures/set"
	"gopkg.in/yaml.v3"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	ErrInvalidManifest   = errors.New("invalid manifest")
)

// Manifest declares the events of a package and the parameters each event carries.
type Manifest struct {
	Package string   `json:"package" yaml:"package" toml:"package"`
	Imports []string `json:"imports,omitempty" yaml:"imports,omitempty" toml:"imports,omitempty"`
	Events  []Event  `json:"events" yaml:"events" toml:"events"`
}

type Event struct {
	Name   string  `json:"name" yaml:"name" toml:"name"`
	Params []Param `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
}

// Param is a named argument of an event, with the Go type handlers should expect.
// A slice type like "[]string" is read as a list of its element type.
type Param struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

// Format identifies the encoding of a manifest.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatOf picks a [Format] from the path's extension.
func FormatOf(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, ext)
	}
}

// LoadManifest reads and validates a manifest file, with the format chosen by its extension.
func LoadManifest(path string) (*Manifest, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseManifest(data, format)
}

// ParseManifest decodes and validates a manifest.
func ParseManifest(data []byte, format Format) (*Manifest, error) {
	var (
		m   Manifest
		err error
	)
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &m)
	case FormatJSON:
		err = json.Unmarshal(data, &m)
	case FormatTOML:
		err = toml.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s manifest: %w", format, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate reports every problem with the manifest at once.
// Repeated parameter names within an event are dropped, keeping the first declaration.
func (m *Manifest) Validate() error {
	errs := assert.CollectErrors("\n")
	errs.Check(len(m.Package) == 0 || token.IsIdentifier(m.Package), "%w: package name '%s' is not a valid identifier", ErrInvalidManifest, m.Package)
	for _, imp := range m.Imports {
		errs.Check(len(strings.TrimSpace(imp)) > 0, "%w: empty import path", ErrInvalidManifest)
	}
	var (
		events = set.New[string]()
		idents = map[string]string{}
	)
	for i := range m.Events {
		event := &m.Events[i]
		if len(event.Name) == 0 {
			errs.AddString("%w: event #%d has no name", ErrInvalidManifest, i+1)
			continue
		}
		if events.Has(event.Name) {
			errs.AddString("%w: event '%s' is declared more than once", ErrInvalidManifest, event.Name)
			continue
		}
		events.Add(event.Name)
		errs.Add(claim(idents, Identifier(event.Name), event.Name))

		event.Params = uniqueParams(event.Params)
		for _, param := range event.Params {
			if len(param.Name) == 0 {
				errs.AddString("%w: event '%s' has a parameter without a name", ErrInvalidManifest, event.Name)
				continue
			}
			if len(param.Type) == 0 {
				errs.AddString("%w: parameter '%s' of event '%s' has no type", ErrInvalidManifest, param.Name, event.Name)
			} else if _, err := parser.ParseExpr(param.Type); err != nil {
				errs.AddString("%w: parameter '%s' of event '%s' has invalid type '%s'", ErrInvalidManifest, param.Name, event.Name, param.Type)
			}
			errs.Add(claim(idents, Identifier(event.Name)+Identifier(param.Name), event.Name+" "+param.Name))
		}
	}
	return errs.Result()
}

func claim(idents map[string]string, ident, source string) error {
	if !token.IsIdentifier(ident) {
		return fmt.Errorf("%w: '%s' doesn't produce a valid identifier", ErrInvalidManifest, source)
	}
	if prev, ok := idents[ident]; ok {
		return fmt.Errorf("%w: '%s' and '%s' both produce identifier '%s'", ErrInvalidManifest, prev, source, ident)
	}
	idents[ident] = source
	return nil
}

func uniqueParams(params []Param) []Param {
	seen := set.New[string]()
	unique := params[:0:0]
	for _, param := range params {
		if len(param.Name) > 0 && seen.Has(param.Name) {
			continue
		}
		seen.Add(param.Name)
		unique = append(unique, param)
	}
	return unique
}

// Identifier converts a dotted, dashed, or underscored name into an exported Go identifier.
// Each part has its first rune upper cased and the rest lower cased, so "user.login_time" becomes "UserLoginTime".
func Identifier(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '.' || r == '_' || r == '-'
	})
	var buf strings.Builder
	for _, part := range parts {
		runes := []rune(strings.ToLower(part))
		runes[0] = unicode.ToUpper(runes[0])
		buf.WriteString(string(runes))
	}
	return buf.String()
}
