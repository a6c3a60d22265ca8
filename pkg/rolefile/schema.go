// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rolecall Contributors

package rolefile

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

var (
	schemaOnce  sync.Once
	schemaCache *jschema.Schema
	schemaErr   error
)

// SchemaID is the $id embedded in the generated document schema.
const SchemaID = "https://rolecall.dev/schemas/rolefile.schema.json"

// GenerateSchema generates the JSON Schema for role documents from the
// Document struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{
		DoNotReference: true,
	}
	schema := r.Reflect(&Document{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Rolecall Role Document"
	schema.Description = "Schema for declarative role document files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.In("rolefile").Wrapf(err, "marshaling schema")
	}
	return data, nil
}

// ValidateSchema validates YAML data against the role document schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.In("rolefile").
			Code("EMPTY_DOCUMENT").
			New("role document is empty")
	}

	var yamlData any
	if err := yaml.Unmarshal(data, &yamlData); err != nil {
		return oops.In("rolefile").
			Code("INVALID_YAML").
			Wrap(err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	if err := sch.Validate(convertToJSONTypes(yamlData)); err != nil {
		return oops.In("rolefile").
			Code("SCHEMA_VIOLATION").
			Wrap(err)
	}
	return nil
}

// compiledSchema compiles the generated schema once and caches it.
func compiledSchema() (*jschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaBytes, err := GenerateSchema()
		if err != nil {
			schemaErr = err
			return
		}

		var schemaData any
		if err := json.Unmarshal(schemaBytes, &schemaData); err != nil {
			schemaErr = oops.In("rolefile").Wrapf(err, "parsing generated schema")
			return
		}

		c := jschema.NewCompiler()
		if err := c.AddResource("schema.json", schemaData); err != nil {
			schemaErr = oops.In("rolefile").Wrapf(err, "adding schema resource")
			return
		}
		schemaCache, schemaErr = c.Compile("schema.json")
	})
	return schemaCache, schemaErr
}

// convertToJSONTypes converts YAML-parsed data to JSON-compatible types
// recursively so the validator sees canonical values.
func convertToJSONTypes(v any) any {
	switch val := v.(type) {
	case map[string]any:
		result := make(map[string]any, len(val))
		for k, item := range val {
			result[k] = convertToJSONTypes(item)
		}
		return result
	case []any:
		result := make([]any, len(val))
		for i, item := range val {
			result[i] = convertToJSONTypes(item)
		}
		return result
	default:
		return val
	}
}
