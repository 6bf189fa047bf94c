// File: twconfig/schema.go
package twconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://twconfig.dev/build-config.schema.json"

// SchemaJSON is the JSON Schema of the normalized record layout, where plugin
// blocks live under pluginOptions.
//
//go:embed schema.json
var SchemaJSON []byte

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(SchemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateSchema checks a normalized document against the embedded schema.
func validateSchema(doc map[string]any) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	// Round-trip through JSON so the validator only sees encoding/json types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return &ConfigurationError{Message: "document is not JSON-compatible", Err: err}
	}
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	var instance any
	if err := decoder.Decode(&instance); err != nil {
		return fmt.Errorf("re-decode document: %w", err)
	}

	if err := sch.Validate(instance); err != nil {
		return schemaError(err)
	}
	return nil
}

var quotedName = regexp.MustCompile(`['"]([^'"]+)['"]`)

// schemaError maps a validation failure onto a ConfigurationError naming the
// deepest failing field.
func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ConfigurationError{Message: err.Error(), Err: err}
	}

	leaf := ve
	for len(leaf.Causes) > 0 {
		leaf = leaf.Causes[0]
	}

	field := pointerToField(leaf.InstanceLocation)
	if strings.HasSuffix(leaf.KeywordLocation, "/required") ||
		strings.HasSuffix(leaf.KeywordLocation, "/additionalProperties") {
		if m := quotedName.FindStringSubmatch(leaf.Message); m != nil {
			field = joinField(field, m[1])
		}
	}

	return &ConfigurationError{Field: field, Message: leaf.Message, Err: err}
}

// pointerToField converts a JSON pointer ("/content/0") to a field path ("content[0]").
func pointerToField(pointer string) string {
	pointer = strings.TrimPrefix(pointer, "/")
	if pointer == "" {
		return ""
	}

	var b strings.Builder
	for i, seg := range strings.Split(pointer, "/") {
		seg = strings.ReplaceAll(strings.ReplaceAll(seg, "~1", "/"), "~0", "~")
		if _, err := strconv.Atoi(seg); err == nil && i > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}
