package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"

	"github.com/calwerks/calfacade/internal/httpclient"
)

// Mode distinguishes the two bootstrap flavors of a session. It is fixed
// at creation and never changes afterwards.
type Mode int

const (
	// ModeUser is an authenticated session with a discovered principal
	// and calendar home.
	ModeUser Mode = iota + 1
	// ModePublic is an anonymous session rooted at the public calendar
	// home; it has no principal.
	ModePublic
)

// publicHomeSegment is the path segment public calendars are shared
// under.
const publicHomeSegment = "public-calendars"

// Session is the single live connection to the server. It holds the
// negotiated calendar home and, in user mode, the current principal.
type Session struct {
	mode      Mode
	homes     []CalendarHome
	principal Principal
}

// Mode reports the bootstrap mode the session was created with.
func (s *Session) Mode() Mode { return s.mode }

// Client is the CalDAV facade. Construct exactly one per process with
// New and hand it to all consumers; it owns the singleton session.
type Client struct {
	opts    Options
	logger  *slog.Logger
	baseURL url.URL

	doerOnce sync.Once
	doer     httpclient.Doer
	doerErr  error

	// mu guards sess/initDone; initErr is written before initDone is
	// closed and only read after it, so the close ordering publishes it.
	mu       sync.Mutex
	sess     *Session
	initDone chan struct{}
	initErr  error
}

// New creates a Client. The session itself is created lazily by the
// first initializer (or the first operation, which bootstraps in user
// mode).
func New(opts Options) (*Client, error) {
	if opts.RootURL == "" {
		return nil, fmt.Errorf("root URL is required")
	}
	baseURL, err := url.Parse(opts.RootURL)
	if err != nil || baseURL.Host == "" || (baseURL.Scheme != "http" && baseURL.Scheme != "https") {
		return nil, fmt.Errorf("invalid root URL %q", opts.RootURL)
	}
	if opts.HeaderProvider == nil {
		return nil, fmt.Errorf("header provider is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{opts: opts, logger: logger, baseURL: *baseURL}, nil
}

// getDoer lazily builds the wire client with the header-provider
// transport. Construction runs at most once.
func (c *Client) getDoer() (httpclient.Doer, error) {
	c.doerOnce.Do(func() {
		httpClient := c.opts.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{}
		}
		httpClient.Transport = httpclient.NewHeaderTransport(c.opts.HeaderProvider, httpClient.Transport, c.logger)
		c.doer, c.doerErr = httpclient.New(httpClient, c.baseURL, c.logger)
	})
	return c.doer, c.doerErr
}

// InitializeForUserView connects the session in authenticated mode,
// discovering the current principal and its calendar home. The bootstrap
// runs at most once: repeated calls return the first outcome, and a call
// after InitializeForPublicView fails with ErrModeConflict.
func (c *Client) InitializeForUserView(ctx context.Context) error {
	return c.initialize(ctx, ModeUser)
}

// InitializeForPublicView connects the session in public mode. No
// principal discovery is attempted; the session is rooted at the public
// calendar home. Repeated calls return the first outcome, and a call
// after InitializeForUserView fails with ErrModeConflict.
func (c *Client) InitializeForPublicView(ctx context.Context) error {
	return c.initialize(ctx, ModePublic)
}

func (c *Client) initialize(ctx context.Context, mode Mode) error {
	c.mu.Lock()
	if c.sess != nil {
		sessMode := c.sess.mode
		done := c.initDone
		c.mu.Unlock()
		if sessMode != mode {
			return ErrModeConflict
		}
		// Await the in-flight bootstrap; every caller observes the
		// single construction's outcome.
		select {
		case <-done:
			return c.initErr
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	// Publish the session before any bootstrap I/O so concurrent
	// callers join the in-flight initialization instead of starting a
	// second one.
	sess := &Session{mode: mode}
	done := make(chan struct{})
	c.sess = sess
	c.initDone = done
	c.mu.Unlock()

	err := c.bootstrap(ctx, sess)
	c.initErr = err
	close(done)
	return err
}

func (c *Client) bootstrap(ctx context.Context, sess *Session) error {
	doer, err := c.getDoer()
	if err != nil {
		return &ConnectionError{Op: "bootstrap", Err: err}
	}

	if sess.mode == ModePublic {
		// Public mode installs a placeholder home; no requests are
		// issued until a token is resolved.
		sess.homes = []CalendarHome{{Path: c.baseURL.JoinPath(publicHomeSegment).Path + "/"}}
		c.logger.Debug("session connected", "mode", "public", "home", sess.homes[0].Path)
		return nil
	}

	resp, err := doer.DoPROPFIND(ctx, c.baseURL.String(), 0, "current-user-principal")
	if err != nil {
		return &ConnectionError{Op: "principal discovery", Err: err}
	}
	if resp.CurrentUserPrincipal == "" {
		return &ConnectionError{Op: "principal discovery", Err: errors.New("no current-user-principal advertised")}
	}
	principalPath := c.resolveHref(c.baseURL.String(), resp.CurrentUserPrincipal)

	resp, err = doer.DoPROPFIND(ctx, principalPath, 0, "calendar-home-set", "displayname", "calendar-user-address-set")
	if err != nil {
		return &ConnectionError{Op: "calendar home discovery", Err: err}
	}
	if resp.CalendarHomeSet == "" {
		return &ConnectionError{Op: "calendar home discovery", Err: errors.New("no calendar-home-set advertised")}
	}

	sess.principal = Principal{Path: principalPath}
	for _, props := range resp.Resources {
		if props.DisplayName != "" {
			sess.principal.DisplayName = props.DisplayName
		}
		if len(props.Addresses) > 0 {
			sess.principal.CalendarUserAddresses = props.Addresses
		}
	}
	sess.homes = []CalendarHome{{Path: c.resolveHref(principalPath, resp.CalendarHomeSet)}}

	c.logger.Debug("session connected",
		"mode", "user",
		"principal", sess.principal.Path,
		"home", sess.homes[0].Path)
	return nil
}

// getSession returns the singleton session, bootstrapping in user mode
// on first use.
func (c *Client) getSession(ctx context.Context) (*Session, httpclient.Doer, error) {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()

	if sess == nil {
		if err := c.InitializeForUserView(ctx); err != nil && !errors.Is(err, ErrModeConflict) {
			return nil, nil, err
		}
	}

	c.mu.Lock()
	sess = c.sess
	done := c.initDone
	c.mu.Unlock()

	select {
	case <-done:
		if c.initErr != nil {
			return nil, nil, c.initErr
		}
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}

	doer, err := c.getDoer()
	if err != nil {
		return nil, nil, &ConnectionError{Op: "session", Err: err}
	}
	return sess, doer, nil
}

// resolveHref resolves a possibly relative href against a base URL
// string and returns the absolute form.
func (c *Client) resolveHref(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.baseURL.ResolveReference(baseURL.ResolveReference(ref)).String()
}
