package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/calwerks/calfacade/internal/httpclient"
	davxml "github.com/calwerks/calfacade/internal/xml"
)

// CurrentUserPrincipal returns the principal bound to the authenticated
// session. It reads bootstrap state and never touches the wire; on a
// public or unconnected session it fails with ErrNotAuthenticated.
func (c *Client) CurrentUserPrincipal() (Principal, error) {
	c.mu.Lock()
	sess := c.sess
	done := c.initDone
	c.mu.Unlock()

	if sess == nil || sess.mode != ModeUser {
		return Principal{}, ErrNotAuthenticated
	}
	select {
	case <-done:
	default:
		return Principal{}, ErrNotAuthenticated
	}
	if c.initErr != nil {
		return Principal{}, ErrNotAuthenticated
	}
	return sess.principal, nil
}

// FindPrincipalsByDisplayName performs a server-side directory search on
// display name. Matching semantics (substring vs. prefix) are
// server-defined and passed through unchanged. An empty query yields an
// empty slice without contacting the server.
func (c *Client) FindPrincipalsByDisplayName(ctx context.Context, query string) ([]Principal, error) {
	if strings.TrimSpace(query) == "" {
		return []Principal{}, nil
	}

	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return nil, err
	}

	body, err := (&davxml.PrincipalSearchRequest{DisplayName: query}).Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode principal search request: %w", err)
	}

	matches, err := doer.DoPrincipalSearch(ctx, c.principalCollection(sess), body)
	if err != nil {
		return nil, err
	}

	principals := make([]Principal, 0, len(matches))
	for _, match := range matches {
		principals = append(principals, Principal{
			Path:                  c.resolveHref(c.baseURL.String(), match.Href),
			DisplayName:           match.DisplayName,
			CalendarUserAddresses: match.Addresses,
		})
	}
	return principals, nil
}

// FindPrincipalByURL fetches the principal at the given URL. It fails
// with ErrPrincipalNotFound if the URL does not resolve to a principal
// resource.
func (c *Client) FindPrincipalByURL(ctx context.Context, principalURL *url.URL) (Principal, error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return Principal{}, err
	}
	if principalURL == nil {
		return Principal{}, ErrPrincipalNotFound
	}

	resp, err := doer.DoPROPFIND(ctx, principalURL.String(), 0, "resourcetype", "displayname", "calendar-user-address-set")
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return Principal{}, ErrPrincipalNotFound
		}
		return Principal{}, err
	}

	for href, props := range resp.Resources {
		if !props.IsPrincipal {
			continue
		}
		return Principal{
			Path:                  c.resolveHref(principalURL.String(), href),
			DisplayName:           props.DisplayName,
			CalendarUserAddresses: props.Addresses,
		}, nil
	}
	return Principal{}, ErrPrincipalNotFound
}

// principalCollection derives the search base for directory queries: the
// parent collection of the session principal when one is known, the
// conventional principals root otherwise.
func (c *Client) principalCollection(sess *Session) string {
	if sess.mode == ModeUser && sess.principal.Path != "" {
		trimmed := strings.TrimRight(sess.principal.Path, "/")
		if parsed, err := url.Parse(trimmed); err == nil {
			parsed.Path = path.Dir(parsed.Path) + "/"
			return parsed.String()
		}
	}
	return c.baseURL.JoinPath("principals").String() + "/"
}
