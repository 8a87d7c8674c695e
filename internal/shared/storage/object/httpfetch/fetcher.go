package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-parser/internal/shared/storage/object"
)

// Fetcher downloads http(s) URLs such as public storage bucket links.
type Fetcher struct {
	client   *http.Client
	maxBytes int64
}

// New constructs a Fetcher whose requests are bounded by timeout.
func New(timeout time.Duration, maxBytes int64) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		maxBytes: maxBytes,
	}
}

// Fetch performs a GET and returns the body of a 2xx response.
func (f *Fetcher) Fetch(ctx context.Context, ref *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/pdf, application/octet-stream;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		err = redactURLError(err)
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("download timeout host=%s: %w", ref.Host, err)
		}
		return nil, fmt.Errorf("download host=%s: %w", ref.Host, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &object.StatusError{StatusCode: resp.StatusCode}
	}
	return object.ReadLimited(resp.Body, f.maxBytes)
}

// redactURLError strips query, fragment and userinfo from the URL that
// net/http embeds in transport errors. Signed links carry tokens there.
func redactURLError(err error) error {
	var urlErr *url.Error
	if !errors.As(err, &urlErr) {
		return err
	}
	redacted := urlErr.URL
	if u, perr := url.Parse(urlErr.URL); perr == nil {
		u.RawQuery = ""
		u.ForceQuery = false
		u.Fragment = ""
		u.RawFragment = ""
		u.User = nil
		redacted = u.String()
	} else {
		redacted = ""
	}
	return &url.Error{Op: urlErr.Op, URL: redacted, Err: urlErr.Err}
}

var _ object.Fetcher = (*Fetcher)(nil)
