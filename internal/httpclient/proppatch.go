package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
)

// DoPROPPATCH sends a PROPPATCH request with a prebuilt propertyupdate body.
func (c *wrapper) DoPROPPATCH(ctx context.Context, urlStr string, body []byte) error {
	c.logger.Debug("starting PROPPATCH request",
		"url", urlStr,
		"body_length", len(body))

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequestWithContext(ctx, "PROPPATCH", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create PROPPATCH request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("received response", "status", resp.Status)

	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}

	return nil
}
