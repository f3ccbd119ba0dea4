package codegen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"slices"
	"strconv"
	"strings"
	"text/template"
)

// EventbusImport is the import path of the package that generated keys are created with.
const EventbusImport = "github.com/saylorsolutions/eventx/patterns/eventbus"

var sourceTemplate = template.Must(template.New("events").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by eventgen. DO NOT EDIT.

package {{.Package}}

import (
	{{quote .EventbusImport}}
{{- range .Imports}}
	{{quote .}}
{{- end}}
)

const (
{{- range .Events}}
	{{.Ident}} = {{quote .Name}}
{{- end}}
)
{{- if .HasKeys}}

var (
{{- range .Events}}{{range .Keys}}
	{{.Ident}} = eventbus.{{.Ctor}}[{{.Elem}}]({{quote .Name}})
{{- end}}{{end}}
)
{{- end}}
`))

type sourceData struct {
	Package        string
	EventbusImport string
	Imports        []string
	Events         []eventData
	HasKeys        bool
}

type eventData struct {
	Ident string
	Name  string
	Keys  []keyData
}

type keyData struct {
	Ident string
	Name  string
	Ctor  string
	Elem  string
}

// Generate renders Go source declaring a constant for each event and a typed key for each parameter.
// Events are sorted by name, and parameters keep their declared order.
func Generate(m *Manifest) ([]byte, error) {
	if m == nil {
		return nil, errors.New("nil manifest")
	}
	if len(m.Package) == 0 {
		return nil, fmt.Errorf("%w: no package name given", ErrInvalidManifest)
	}
	if len(m.Events) == 0 {
		return nil, fmt.Errorf("%w: no events declared", ErrInvalidManifest)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	data := sourceData{
		Package:        m.Package,
		EventbusImport: EventbusImport,
	}
	for _, imp := range m.Imports {
		if imp != EventbusImport && !slices.Contains(data.Imports, imp) {
			data.Imports = append(data.Imports, imp)
		}
	}
	events := slices.Clone(m.Events)
	slices.SortFunc(events, func(a, b Event) int {
		return strings.Compare(a.Name, b.Name)
	})
	for _, event := range events {
		ed := eventData{
			Ident: Identifier(event.Name),
			Name:  event.Name,
		}
		for _, param := range event.Params {
			key := keyData{
				Ident: ed.Ident + Identifier(param.Name),
				Name:  param.Name,
				Ctor:  "NewKey",
				Elem:  strings.TrimSpace(param.Type),
			}
			if elem, ok := strings.CutPrefix(key.Elem, "[]"); ok {
				key.Ctor = "NewListKey"
				key.Elem = elem
			}
			ed.Keys = append(ed.Keys, key)
		}
		data.HasKeys = data.HasKeys || len(ed.Keys) > 0
		data.Events = append(data.Events, ed)
	}

	var buf bytes.Buffer
	if err := sourceTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render source: %w", err)
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format generated source: %w", err)
	}
	return src, nil
}
