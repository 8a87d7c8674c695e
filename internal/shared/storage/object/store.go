package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
)

var (
	// ErrUnsupportedScheme is returned when no fetcher handles a URL's scheme.
	ErrUnsupportedScheme = errors.New("unsupported url scheme")
	// ErrEmptyObject is returned when the referenced object has no content.
	ErrEmptyObject = errors.New("object is empty")
	// ErrTooLarge is returned when an object exceeds the configured byte limit.
	ErrTooLarge = errors.New("object exceeds size limit")
)

// Fetcher downloads the full content behind a file reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref *url.URL) ([]byte, error)
}

// StatusError reports a non-2xx response from a remote store.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// Mux dispatches fetches to a Fetcher registered for the URL scheme.
type Mux struct {
	mu       sync.RWMutex
	fetchers map[string]Fetcher
}

// NewMux constructs an empty Mux.
func NewMux() *Mux {
	return &Mux{fetchers: make(map[string]Fetcher)}
}

// Handle registers f for each of the given schemes.
func (m *Mux) Handle(f Fetcher, schemes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, scheme := range schemes {
		m.fetchers[strings.ToLower(scheme)] = f
	}
}

// Fetch parses rawURL and hands it to the matching Fetcher.
func (m *Mux) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	m.mu.RLock()
	f, ok := m.fetchers[strings.ToLower(ref.Scheme)]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, ref.Scheme)
	}
	data, err := f.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyObject
	}
	return data, nil
}

// ReadLimited reads r fully, failing with ErrTooLarge past maxBytes.
// A non-positive maxBytes disables the limit.
func ReadLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxBytes)
	}
	return data, nil
}
