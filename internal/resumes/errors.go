package resumes

import (
	"errors"
	"fmt"
	"net/url"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("resume belongs to another user")
)

// StorageError reports a persistence failure other than not-found.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DownloadError reports a failure to retrieve a resume file.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s: %v", redactURL(e.URL), e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// redactURL drops query strings, which may carry signed tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
