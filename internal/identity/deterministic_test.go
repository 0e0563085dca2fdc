package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDDeterministic(t *testing.T) {
	a := UUID("go-annocat:test:alpha")
	b := UUID("go-annocat:test:alpha")
	if a == uuid.Nil {
		t.Fatalf("expected non-nil UUID")
	}
	if a != b {
		t.Fatalf("expected deterministic UUID, got %s and %s", a, b)
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("expected uuid.Nil for blank key, got %s", got)
	}
}

func TestAnnotationUUIDScoping(t *testing.T) {
	a := AnnotationUUID("validation", "not-null")
	b := AnnotationUUID("web", "not-null")
	if a == b {
		t.Fatalf("expected category scoping to produce distinct IDs")
	}
	if a != AnnotationUUID("Validation", " not-null ") {
		t.Fatalf("expected normalization of case and whitespace")
	}
}
