package httpclient

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
)

// Doer wraps http.Client with the DAV verbs the facade needs.
type Doer interface {
	DoPROPFIND(ctx context.Context, url string, depth int, props ...string) (*PropfindResponse, error)
	DoREPORT(ctx context.Context, url string, depth int, query interface{}) (*ReportResponse, error)
	DoPrincipalSearch(ctx context.Context, url string, body []byte) ([]PrincipalProps, error)
	DoMKCALENDAR(ctx context.Context, url string, body []byte) error
	DoMKCOL(ctx context.Context, url string, body []byte) error
	DoPROPPATCH(ctx context.Context, url string, body []byte) error
	DoPUT(ctx context.Context, url string, etag string, data []byte) (newEtag string, err error)
	DoDELETE(ctx context.Context, url string, etag string) error
}

// StatusError reports a response status the verb did not expect.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

type wrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// resolveURL resolves a URL string against the base URL
func (c *wrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// New creates a Doer over the given HTTP client and base URL.
func New(client *http.Client, baseURL url.URL, logger *slog.Logger) (Doer, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &wrapper{client: client, baseURL: baseURL, logger: logger}, nil
}
