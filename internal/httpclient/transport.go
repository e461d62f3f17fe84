package httpclient

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// HeaderProvider returns the headers to inject into a single outgoing
// request. It is invoked once per request so short-lived values such as
// CSRF tokens stay fresh.
type HeaderProvider func() map[string]string

// HeaderTransport implements http.RoundTripper and asks a HeaderProvider
// for extra headers on every outgoing request.
type HeaderTransport struct {
	Provider  HeaderProvider
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// NewHeaderTransport creates a new HeaderTransport with the given provider
// and optional underlying transport. If transport is nil,
// http.DefaultTransport will be used.
func NewHeaderTransport(provider HeaderProvider, transport http.RoundTripper, logger *slog.Logger) *HeaderTransport {
	if transport == nil {
		transport = http.DefaultTransport
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HeaderTransport{
		Provider:  provider,
		Transport: transport,
		Logger:    logger,
	}
}

// RoundTrip implements the http.RoundTripper interface. It merges the
// provider's headers into the request and delegates to the underlying
// transport.
func (t *HeaderTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Provider == nil {
		return nil, errors.New("header provider cannot be nil")
	}
	if t.Transport == nil {
		return nil, errors.New("transport cannot be nil")
	}

	for name, value := range t.Provider() {
		req.Header.Set(name, value)
	}

	reqBody := ""
	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err == nil {
			reqBody = string(bodyBytes)
			req.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
		}
	}

	t.Logger.Debug("outgoing request",
		"method", req.Method,
		"url", req.URL.String(),
		"headers", req.Header,
		"body", reqBody)

	resp, err := t.Transport.RoundTrip(req)

	if err == nil && resp != nil {
		respBody := ""
		if resp.Body != nil {
			bodyBytes, err := io.ReadAll(resp.Body)
			if err == nil {
				respBody = string(bodyBytes)
				resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes)) // Reset the body
			}
		}

		t.Logger.Debug("incoming response",
			"status", resp.Status,
			"headers", resp.Header,
			"body", respBody)
	}

	return resp, err
}
