// Package schema provides JSON schema validation for simulation inputs.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	schemafs "github.com/virtualphotonics/mcbatch/schema"
)

const inputSchemaFile = "simulation-input.schema.json"

var (
	inputSchema *jsonschema.Schema
	compileOnce sync.Once
	compileErr  error
)

// compileSchemas compiles the embedded schemas once.
func compileSchemas() error {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()

		data, err := schemafs.FS.ReadFile(inputSchemaFile)
		if err != nil {
			compileErr = fmt.Errorf("read input schema: %w", err)
			return
		}

		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
		if err != nil {
			compileErr = fmt.Errorf("unmarshal input schema: %w", err)
			return
		}

		if err := compiler.AddResource(inputSchemaFile, doc); err != nil {
			compileErr = fmt.Errorf("add input schema resource: %w", err)
			return
		}

		inputSchema, err = compiler.Compile(inputSchemaFile)
		if err != nil {
			compileErr = fmt.Errorf("compile input schema: %w", err)
			return
		}
	})

	return compileErr
}

// ValidateInputJSON validates JSON data against the simulation input schema.
func ValidateInputJSON(data []byte) error {
	if err := compileSchemas(); err != nil {
		return err
	}

	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := inputSchema.Validate(v); err != nil {
		return fmt.Errorf("input validation failed: %s", condense(err.Error()))
	}

	return nil
}

// ValidateInput marshals v to JSON and validates it against the input schema.
func ValidateInput(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode input: %w", err)
	}
	return ValidateInputJSON(data)
}

// condense joins a multi-line validator message into one line.
func condense(msg string) string {
	var parts []string
	for _, line := range strings.Split(msg, "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "; ")
}
