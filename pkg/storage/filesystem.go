package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	opEnsureDir = "generator.ensure_dir"
	opWrite     = "generator.write"
	opRead      = "generator.read"
	opRemove    = "generator.remove"
)

// NewFilesystemProvider returns a Provider that writes generator artifacts to
// disk under root. The base argument should match the generator OutputDir so
// duplicated prefixes are trimmed from incoming paths.
func NewFilesystemProvider(root, base string) Provider {
	base = filepath.ToSlash(filepath.Clean(base))
	if base == "." {
		base = ""
	}
	return &filesystemProvider{root: root, base: base}
}

type filesystemProvider struct {
	root string
	base string
}

func (s *filesystemProvider) Query(_ context.Context, query string, args ...any) (Rows, error) {
	if query != opRead || len(args) == 0 {
		return nil, nil
	}
	target := s.normalizePath(args[0])
	data, err := os.ReadFile(s.abs(target))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &fileRows{data: data}, nil
}

func (s *filesystemProvider) Exec(_ context.Context, query string, args ...any) (Result, error) {
	switch query {
	case opEnsureDir:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("ensure_dir requires path")
		}
		target := s.normalizePath(args[0])
		return emptyResult{}, os.MkdirAll(s.abs(target), 0o755)
	case opWrite:
		if len(args) < 2 {
			return emptyResult{}, fmt.Errorf("write requires path and reader")
		}
		target := s.normalizePath(args[0])
		reader, ok := args[1].(io.Reader)
		if !ok || reader == nil {
			return emptyResult{}, fmt.Errorf("write expects io.Reader content")
		}
		full := s.abs(target)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return emptyResult{}, err
		}
		file, err := os.Create(full)
		if err != nil {
			return emptyResult{}, err
		}
		defer file.Close()
		if _, err := io.Copy(file, reader); err != nil {
			return emptyResult{}, err
		}
		return emptyResult{}, nil
	case opRemove:
		if len(args) == 0 {
			return emptyResult{}, fmt.Errorf("remove requires path")
		}
		target := s.normalizePath(args[0])
		err := os.RemoveAll(s.abs(target))
		if errors.Is(err, os.ErrNotExist) {
			return emptyResult{}, nil
		}
		return emptyResult{}, err
	default:
		return emptyResult{}, nil
	}
}

func (s *filesystemProvider) Transaction(ctx context.Context, fn func(tx Transaction) error) error {
	if fn == nil {
		return nil
	}
	return fn(&filesystemTx{provider: s})
}

func (s *filesystemProvider) abs(rel string) string {
	if rel == "" {
		return s.root
	}
	native := filepath.FromSlash(rel)
	if filepath.IsAbs(native) {
		return native
	}
	return filepath.Join(s.root, native)
}

func (s *filesystemProvider) normalizePath(arg any) string {
	target, _ := arg.(string)
	target = filepath.ToSlash(filepath.Clean(target))
	if s.base != "" && strings.HasPrefix(target, s.base) {
		target = strings.TrimPrefix(target, s.base)
		target = strings.TrimPrefix(target, "/")
	}
	return target
}

type filesystemTx struct {
	provider *filesystemProvider
}

func (tx *filesystemTx) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return tx.provider.Query(ctx, query, args...)
}

func (tx *filesystemTx) Exec(ctx context.Context, query string, args ...any) (Result, error) {
	return tx.provider.Exec(ctx, query, args...)
}

func (tx *filesystemTx) Transaction(context.Context, func(Transaction) error) error {
	return errors.New("nested transactions not supported")
}

func (tx *filesystemTx) Commit() error {
	return nil
}

func (tx *filesystemTx) Rollback() error {
	return nil
}

type emptyResult struct{}

func (emptyResult) RowsAffected() (int64, error) { return 0, nil }
func (emptyResult) LastInsertId() (int64, error) { return 0, nil }

type fileRows struct {
	data []byte
	read bool
}

func (r *fileRows) Next() bool {
	if r.read {
		return false
	}
	r.read = true
	return true
}

func (r *fileRows) Scan(dest ...any) error {
	if len(dest) == 0 {
		return fmt.Errorf("scan requires destination")
	}
	bytesDest, ok := dest[0].(*[]byte)
	if !ok {
		return fmt.Errorf("unsupported scan destination %T", dest[0])
	}
	*bytesDest = append((*bytesDest)[:0], r.data...)
	return nil
}

func (r *fileRows) Close() error {
	return nil
}
