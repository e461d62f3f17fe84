package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// DoMKCALENDAR sends an RFC 4791 MKCALENDAR request with a prebuilt body.
func (c *wrapper) DoMKCALENDAR(ctx context.Context, urlStr string, body []byte) error {
	return c.doCreate(ctx, "MKCALENDAR", urlStr, body)
}

// DoMKCOL sends an extended MKCOL (RFC 5689) request with a prebuilt body.
func (c *wrapper) DoMKCOL(ctx context.Context, urlStr string, body []byte) error {
	return c.doCreate(ctx, "MKCOL", urlStr, body)
}

func (c *wrapper) doCreate(ctx context.Context, method, urlStr string, body []byte) error {
	c.logger.Debug("starting collection create request",
		"method", method,
		"url", urlStr,
		"body_length", len(body))

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("received response", "status", resp.Status)

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	return nil
}
