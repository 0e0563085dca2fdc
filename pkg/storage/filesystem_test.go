package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFilesystemProviderWriteAndRead(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, "")
	ctx := context.Background()

	content := []byte("<html>index</html>")
	_, err := provider.Exec(ctx, opWrite, "dist/index.html", bytes.NewReader(content), int64(len(content)), "page", "text/html", "", nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "dist", "index.html"))
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if !bytes.Equal(onDisk, content) {
		t.Fatalf("unexpected file content: %q", onDisk)
	}

	rows, err := provider.Query(ctx, opRead, "dist/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatal("expected one row")
	}
	var roundTrip []byte
	if err := rows.Scan(&roundTrip); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !bytes.Equal(roundTrip, content) {
		t.Fatalf("unexpected scanned content: %q", roundTrip)
	}
}

func TestFilesystemProviderReadMissingReturnsNilRows(t *testing.T) {
	provider := NewFilesystemProvider(t.TempDir(), "")

	rows, err := provider.Query(context.Background(), opRead, "missing/manifest.json")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatal("expected nil rows for missing file")
	}
}

func TestFilesystemProviderTrimsBasePrefix(t *testing.T) {
	root := t.TempDir()
	provider := NewFilesystemProvider(root, "dist")
	ctx := context.Background()

	content := []byte("sitemap")
	_, err := provider.Exec(ctx, opWrite, "dist/sitemap.xml", bytes.NewReader(content), int64(len(content)), "sitemap", "application/xml", "", nil)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "sitemap.xml")); err != nil {
		t.Fatalf("expected prefix-trimmed path: %v", err)
	}
}

func TestFilesystemProviderRemoveTolerant(t *testing.T) {
	provider := NewFilesystemProvider(t.TempDir(), "")
	if _, err := provider.Exec(context.Background(), opRemove, "never-written"); err != nil {
		t.Fatalf("remove missing target: %v", err)
	}
}
