package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"resume-parser/internal/shared/storage/object"
)

// Store serves file:// references from a base directory. It is only wired in
// development so that the pipeline can run without a bucket.
type Store struct {
	baseDir  string
	maxBytes int64
}

// New creates a local fetcher rooted at baseDir.
func New(baseDir string, maxBytes int64) *Store {
	return &Store{baseDir: baseDir, maxBytes: maxBytes}
}

// Fetch reads the file named by ref relative to the base directory.
func (s *Store) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := ref.Path
	if ref.Host != "" {
		rel = ref.Host + "/" + strings.TrimLeft(rel, "/")
	}
	clean := filepath.Clean(strings.TrimLeft(rel, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return nil, fmt.Errorf("invalid storage key")
	}

	f, err := os.Open(filepath.Join(s.baseDir, clean))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &object.StatusError{StatusCode: 404}
		}
		return nil, err
	}
	defer f.Close()

	return object.ReadLimited(f, s.maxBytes)
}

var _ object.Fetcher = (*Store)(nil)
