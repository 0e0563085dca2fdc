package storage

import "context"

// Provider encapsulates the operations required by go-annocat repositories and
// the generator's artifact writer. Implementations range from a filesystem
// writer to a database-backed provider.
type Provider interface {
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (Result, error)
	Transaction(ctx context.Context, fn func(tx Transaction) error) error
}

// Reloadable providers can apply a new configuration at runtime. Implementations
// that do not support reloads may omit this interface; the container will keep
// using the existing provider.
type Reloadable interface {
	Reload(ctx context.Context, cfg Config) error
}

// Config captures the runtime configuration for a storage provider. Detailed
// schema validation is handled by higher layers (runtimeconfig).
type Config struct {
	Name     string
	Driver   string
	DSN      string
	ReadOnly bool
	Options  map[string]any
}

type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

type Result interface {
	RowsAffected() (int64, error)
	LastInsertId() (int64, error)
}

type Transaction interface {
	Provider
	Commit() error
	Rollback() error
}
