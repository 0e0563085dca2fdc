package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNameRequired      = errors.New("catalog: annotation name is required")
	ErrCategoryRequired  = errors.New("catalog: category is required")
	ErrSlugInvalid       = errors.New("catalog: slug contains invalid characters")
	ErrDuplicateEntry    = errors.New("catalog: entry already exists")
	ErrEntryIDRequired   = errors.New("catalog: entry id required")
	ErrSourceRequired    = errors.New("catalog: at least one source reference is required")
	ErrCategoryNotFound  = errors.New("catalog: category not found")
	ErrRepositoryMissing = errors.New("catalog: repository is required")
)

// NotFoundError reports a missing catalog resource by key.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "catalog: not found"
	}
	return fmt.Sprintf("catalog: %s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err indicates a missing catalog resource.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
