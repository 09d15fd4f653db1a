package api

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON schema used to validate response bodies before they
// are decoded into Go types.
type Schema struct {
	Name       string
	Definition map[string]any
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// Decode validates the response body against schema (skipped when nil) and
// decodes it into T using the json field tags of T.
func Decode[T any](resp *Response, schema *Schema) (T, error) {
	var out T
	if resp == nil {
		return out, &DecodeError{Err: fmt.Errorf("nil response")}
	}

	return DecodeValue[T](resp.Body, schema)
}

// DecodeValue is Decode for an already extracted JSON value.
func DecodeValue[T any](value any, schema *Schema) (T, error) {
	var out T
	name := ""
	if schema != nil {
		name = schema.Name
		compiled, err := compileSchema(schema)
		if err != nil {
			return out, &DecodeError{Schema: name, Err: err}
		}

		if err := compiled.Validate(value); err != nil {
			return out, &DecodeError{Schema: name, Err: err}
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return out, &DecodeError{Schema: name, Err: err}
	}

	if err := decoder.Decode(value); err != nil {
		return out, &DecodeError{Schema: name, Err: err}
	}

	return out, nil
}

func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants plain JSON values ([]any rather than []string).
	b, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", schema.Name, err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", schema.Name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", schema.Name, err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", schema.Name, err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

// Object builds a schema for a JSON object with the given required keys and
// property definitions.
func Object(name string, required []string, properties map[string]any) *Schema {
	def := map[string]any{"type": "object"}
	if len(required) > 0 {
		def["required"] = required
	}
	if len(properties) > 0 {
		def["properties"] = properties
	}

	return &Schema{Name: name, Definition: def}
}

// ArrayOf builds a schema for a JSON array whose items match item.
func ArrayOf(name string, item *Schema) *Schema {
	return &Schema{
		Name: name,
		Definition: map[string]any{
			"type":  "array",
			"items": item.Definition,
		},
	}
}

var (
	TypeString  = map[string]any{"type": "string"}
	TypeNumber  = map[string]any{"type": "number"}
	TypeInteger = map[string]any{"type": "integer"}
	TypeBool    = map[string]any{"type": "boolean"}
	TypeObject  = map[string]any{"type": "object"}
	TypeAny     = map[string]any{}
)
