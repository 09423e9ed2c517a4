package batch

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaSource []byte

// Schema returns the JSON Schema that batch files are validated against.
func Schema() []byte {
	return bytes.Clone(schemaSource)
}

//nolint:gochecknoglobals // Compiled once from an embedded, read-only schema.
var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(schemaSource)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
})

// validateSchema checks the structure of a YAML batch document. The YAML is
// re-encoded as JSON so that integers reach the validator as json.Number.
func validateSchema(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile batch schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Errors{{Index: DocumentLevel, Message: fmt.Sprintf("not valid YAML: %v", err)}}
	}
	if doc == nil {
		return Errors{{Index: DocumentLevel, Message: "batch file is empty"}}
	}

	encoded, err := json.Marshal(doc)
	if err != nil {
		return Errors{{Index: DocumentLevel, Message: fmt.Sprintf("batch file must use string keys: %v", err)}}
	}

	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()

	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("re-decode batch: %w", err)
	}

	if err := schema.Validate(instance); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return schemaErrors(verr)
		}
		return Errors{{Index: DocumentLevel, Message: err.Error()}}
	}

	return nil
}

// schemaErrors flattens the leaves of a schema validation error tree into
// per-operation problems, sorted by position.
func schemaErrors(root *jsonschema.ValidationError) Errors {
	var out Errors
	seen := make(map[string]bool)

	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) > 0 {
			for _, cause := range node.Causes {
				walk(cause)
			}
			return
		}

		index, field := splitLocation(node.InstanceLocation)
		message := strings.TrimSpace(node.Message)
		key := fmt.Sprintf("%d/%s/%s", index, field, message)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, ValidationError{Index: index, Field: field, Message: message})
	}
	walk(root)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out
}

// splitLocation turns a JSON pointer such as "/operations/2/index" into the
// operation index and field name.
func splitLocation(pointer string) (int, string) {
	parts := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	if len(parts) < 2 || parts[0] != "operations" {
		return DocumentLevel, strings.Join(parts, ".")
	}

	index, err := strconv.Atoi(parts[1])
	if err != nil {
		return DocumentLevel, strings.Join(parts, ".")
	}

	return index, strings.Join(parts[2:], ".")
}
