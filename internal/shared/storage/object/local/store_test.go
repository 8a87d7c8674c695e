package local

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"resume-parser/internal/shared/storage/object"
)

func TestFetchReadsFileUnderBaseDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "u1"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "u1", "cv.pdf"), []byte("pdf-bytes"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store := New(dir, 0)

	for _, raw := range []string{"file:///u1/cv.pdf", "file://u1/cv.pdf"} {
		ref, _ := url.Parse(raw)
		data, err := store.Fetch(context.Background(), ref)
		if err != nil {
			t.Fatalf("Fetch(%s): %v", raw, err)
		}
		if string(data) != "pdf-bytes" {
			t.Fatalf("unexpected data %q", data)
		}
	}
}

func TestFetchRejectsTraversal(t *testing.T) {
	store := New(t.TempDir(), 0)
	ref, _ := url.Parse("file:///../etc/passwd")
	if _, err := store.Fetch(context.Background(), ref); err == nil {
		t.Fatalf("expected traversal to be rejected")
	}
}

func TestFetchMissingFileIs404(t *testing.T) {
	store := New(t.TempDir(), 0)
	ref, _ := url.Parse("file:///nope.pdf")
	_, err := store.Fetch(context.Background(), ref)
	var statusErr *object.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != 404 {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
}
