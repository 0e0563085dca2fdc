package validation

import (
	"errors"
	"testing"
)

func validExport() map[string]any {
	return map[string]any{
		"generated_at": "2025-06-01T12:00:00Z",
		"stats": map[string]any{
			"categories":  1,
			"annotations": 1,
		},
		"categories": []any{
			map[string]any{
				"name":  "Dependency Injection",
				"slug":  "dependency-injection",
				"count": 1,
				"annotations": []any{
					map[string]any{
						"name":             "@Autowired",
						"slug":             "autowired",
						"description":      "Injects dependencies.",
						"example":          "@Autowired",
						"example_language": "java",
						"sources": []any{
							map[string]any{
								"path":     "di.md",
								"checksum": "abc123",
								"line":     3,
								"complete": true,
							},
						},
					},
				},
			},
		},
	}
}

func TestValidateExportAcceptsWellFormedDocument(t *testing.T) {
	if err := ValidateExport(validExport()); err != nil {
		t.Fatalf("expected valid export, got %v", err)
	}
}

func TestValidateExportRejectsMissingRequiredFields(t *testing.T) {
	payload := validExport()
	delete(payload, "categories")

	err := ValidateExport(payload)
	if !errors.Is(err, ErrExportValidation) {
		t.Fatalf("expected ErrExportValidation, got %v", err)
	}
	if len(Issues(err)) == 0 {
		t.Fatal("expected issues to be reported")
	}
}

func TestValidateExportRejectsBadSlug(t *testing.T) {
	payload := validExport()
	category := payload["categories"].([]any)[0].(map[string]any)
	category["slug"] = "Dependency Injection"

	if err := ValidateExport(payload); !errors.Is(err, ErrExportValidation) {
		t.Fatalf("expected slug pattern violation, got %v", err)
	}
}

func TestValidateExportBytes(t *testing.T) {
	if err := ValidateExportBytes([]byte(`{"generated_at":"2025-06-01T12:00:00Z","categories":[]}`)); err != nil {
		t.Fatalf("expected minimal document to validate, got %v", err)
	}

	err := ValidateExportBytes([]byte(`{not json`))
	if !errors.Is(err, ErrExportValidation) {
		t.Fatalf("expected decode failure to map to ErrExportValidation, got %v", err)
	}
}
