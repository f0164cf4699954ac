package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ListSchemaURL is the resource name the task list schema is registered under.
const ListSchemaURL = "tasklist://task-list.schema.json"

// ListSchema describes the body of GET /tasks/.
const ListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Task list",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "completed"],
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string"},
      "completed": {"type": "boolean"}
    }
  }
}
`

var (
	listSchemaOnce sync.Once
	listSchema     *jsonschema.Schema
	listSchemaErr  error
)

// ValidationError represents a schema violation with its location.
type ValidationError struct {
	Path string // dot path to the offending value, e.g. [2].title
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func compiledListSchema() (*jsonschema.Schema, error) {
	listSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(ListSchemaURL, strings.NewReader(ListSchema)); err != nil {
			listSchemaErr = fmt.Errorf("add task list schema: %w", err)
			return
		}
		listSchema, listSchemaErr = compiler.Compile(ListSchemaURL)
		if listSchemaErr != nil {
			listSchemaErr = fmt.Errorf("compile task list schema: %w", listSchemaErr)
		}
	})
	return listSchema, listSchemaErr
}

// DecodeList validates data against ListSchema and decodes it.
// Schema violations are returned as a joined list of *ValidationError.
func DecodeList(data []byte) ([]Task, error) {
	schema, err := compiledListSchema()
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse task list: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		return nil, schemaErrors(err)
	}

	tasks := make([]Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("decode task list: %w", err)
	}
	return tasks, nil
}

func schemaErrors(err error) error {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var errs []error
	collectSchemaErrors(&errs, ve)
	if len(errs) == 1 {
		return errs[0]
	}
	return errors.Join(errs...)
}

func collectSchemaErrors(errs *[]error, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}
	if len(err.Causes) == 0 {
		*errs = append(*errs, &ValidationError{
			Path: instancePath(err.InstanceLocation),
			Err:  fmt.Errorf("%s", err.Message),
		})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(errs, cause)
	}
}

// instancePath turns a JSON pointer such as "/2/title" into "[2].title".
func instancePath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "#"), "/") {
		if part == "" {
			continue
		}
		part = strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteString(".")
		}
		b.WriteString(part)
	}
	return b.String()
}
