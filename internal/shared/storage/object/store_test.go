package object

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
)

type staticFetcher struct {
	data []byte
	err  error
	seen *url.URL
}

func (s *staticFetcher) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	s.seen = ref
	return s.data, s.err
}

func TestMuxDispatchesByScheme(t *testing.T) {
	web := &staticFetcher{data: []byte("web")}
	bucket := &staticFetcher{data: []byte("bucket")}
	mux := NewMux()
	mux.Handle(web, "http", "https")
	mux.Handle(bucket, "s3")

	got, err := mux.Fetch(context.Background(), "HTTPS://example.com/a.pdf")
	if err != nil || string(got) != "web" {
		t.Fatalf("https fetch = %q, %v", got, err)
	}
	got, err = mux.Fetch(context.Background(), " s3://b/k.pdf ")
	if err != nil || string(got) != "bucket" {
		t.Fatalf("s3 fetch = %q, %v", got, err)
	}
	if bucket.seen.Host != "b" {
		t.Fatalf("expected parsed url to reach fetcher, got %v", bucket.seen)
	}
}

func TestMuxUnsupportedScheme(t *testing.T) {
	_, err := NewMux().Fetch(context.Background(), "ftp://example.com/a.pdf")
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestMuxEmptyBody(t *testing.T) {
	mux := NewMux()
	mux.Handle(&staticFetcher{data: nil}, "https")
	_, err := mux.Fetch(context.Background(), "https://example.com/empty.pdf")
	if !errors.Is(err, ErrEmptyObject) {
		t.Fatalf("expected ErrEmptyObject, got %v", err)
	}
}

func TestReadLimited(t *testing.T) {
	data, err := ReadLimited(strings.NewReader("12345"), 5)
	if err != nil || string(data) != "12345" {
		t.Fatalf("ReadLimited at limit = %q, %v", data, err)
	}
	if _, err := ReadLimited(strings.NewReader("123456"), 5); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	data, err = ReadLimited(strings.NewReader("unbounded"), 0)
	if err != nil || string(data) != "unbounded" {
		t.Fatalf("ReadLimited unbounded = %q, %v", data, err)
	}
}
