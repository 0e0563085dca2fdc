package catalog

import "testing"

func TestAnnotationKey(t *testing.T) {
	annotation := &Annotation{
		Slug:     "autowired",
		Category: &Category{Slug: "dependency-injection"},
	}
	if got, want := annotation.Key(), "dependency-injection/autowired"; got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}
}

func TestAnnotationKeyWithoutCategoryRelation(t *testing.T) {
	annotation := &Annotation{Slug: "autowired"}
	if got, want := annotation.Key(), "autowired"; got != want {
		t.Fatalf("expected key %q, got %q", want, got)
	}

	var nilAnnotation *Annotation
	if got := nilAnnotation.Key(); got != "" {
		t.Fatalf("expected empty key for nil annotation, got %q", got)
	}
}
