// Package validation checks exported catalog documents against the canonical
// JSON schema before they are published.
package validation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed catalog_schema.json
var catalogSchemaJSON []byte

var (
	ErrSchemaInvalid    = errors.New("validation: catalog schema invalid")
	ErrExportValidation = errors.New("validation: catalog export failed validation")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string
	Message  string
}

// ExportValidationError surfaces validation issues with document locations.
type ExportValidationError struct {
	Issues []ValidationIssue
	Cause  error
}

func (e *ExportValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrExportValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *ExportValidationError) Unwrap() error {
	return ErrExportValidation
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var exportErr *ExportValidationError
	if errors.As(err, &exportErr) && exportErr != nil {
		return exportErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func catalogSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("catalog_schema.json", bytes.NewReader(catalogSchemaJSON)); err != nil {
			compileErr = fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
			return
		}
		schema, err := compiler.Compile("catalog_schema.json")
		if err != nil {
			compileErr = fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
			return
		}
		compiledSchema = schema
	})
	return compiledSchema, compileErr
}

// ValidateExport validates a decoded catalog export document.
func ValidateExport(payload map[string]any) error {
	schema, err := catalogSchema()
	if err != nil {
		return err
	}
	if payload == nil {
		payload = map[string]any{}
	}
	if err := schema.Validate(payload); err != nil {
		return &ExportValidationError{
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

// ValidateExportBytes decodes raw JSON and validates it, so callers can check
// an export artifact without re-marshalling.
func ValidateExportBytes(data []byte) error {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return &ExportValidationError{
			Issues: []ValidationIssue{{Message: fmt.Sprintf("decode export: %v", err)}},
			Cause:  err,
		}
	}
	return ValidateExport(payload)
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
