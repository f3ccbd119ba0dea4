package filerepo

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Codec converts entities to and from file contents.
type Codec interface {
	// Ext is the file extension used for entity files, without the leading dot.
	Ext() string
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

var (
	// JSON stores entities as indented JSON, and is the default.
	JSON Codec = jsonCodec{}
	// YAML stores entities as YAML documents.
	YAML Codec = yamlCodec{}
)

type jsonCodec struct{}

func (jsonCodec) Ext() string {
	return "json"
}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

type yamlCodec struct{}

func (yamlCodec) Ext() string {
	return "yaml"
}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}
