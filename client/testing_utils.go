package client

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"sync"

	"github.com/calwerks/calfacade/internal/httpclient"
)

// PropfindFunc is a function type for mocking PROPFIND
type PropfindFunc func(url string, depth int, props ...string) (*httpclient.PropfindResponse, error)

type mockPutResponse struct {
	etag string
	err  error
}

// Mock types for testing
type mockDoer struct {
	propfindResponse *httpclient.PropfindResponse
	reportResponse   *httpclient.ReportResponse
	searchResponse   []httpclient.PrincipalProps
	searchErr        error
	putResponse      *mockPutResponse
	deleteResponse   error
	mkcalendarErr    error
	mkcolErr         error
	proppatchErr     error
	doPropfind       PropfindFunc

	mu              sync.Mutex
	propfindCalls   []string
	searchCalls     int
	mkcalendarBody  []byte
	mkcolBody       []byte
	proppatchBody   []byte
	proppatchTarget string
}

func (m *mockDoer) DoPROPFIND(_ context.Context, url string, depth int, props ...string) (*httpclient.PropfindResponse, error) {
	m.mu.Lock()
	m.propfindCalls = append(m.propfindCalls, url)
	m.mu.Unlock()
	if m.doPropfind != nil {
		return m.doPropfind(url, depth, props...)
	}
	return m.propfindResponse, nil
}

func (m *mockDoer) propfindCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.propfindCalls)
}

func (m *mockDoer) DoREPORT(_ context.Context, url string, depth int, query interface{}) (*httpclient.ReportResponse, error) {
	return m.reportResponse, nil
}

func (m *mockDoer) DoPrincipalSearch(_ context.Context, url string, body []byte) ([]httpclient.PrincipalProps, error) {
	m.mu.Lock()
	m.searchCalls++
	m.mu.Unlock()
	return m.searchResponse, m.searchErr
}

func (m *mockDoer) DoMKCALENDAR(_ context.Context, url string, body []byte) error {
	m.mkcalendarBody = body
	return m.mkcalendarErr
}

func (m *mockDoer) DoMKCOL(_ context.Context, url string, body []byte) error {
	m.mkcolBody = body
	return m.mkcolErr
}

func (m *mockDoer) DoPROPPATCH(_ context.Context, url string, body []byte) error {
	m.proppatchTarget = url
	m.proppatchBody = body
	return m.proppatchErr
}

func (m *mockDoer) DoPUT(_ context.Context, url string, etag string, data []byte) (string, error) {
	if m.putResponse != nil {
		return m.putResponse.etag, m.putResponse.err
	}
	return "new-etag", nil
}

func (m *mockDoer) DoDELETE(_ context.Context, url string, etag string) error {
	return m.deleteResponse
}

// newTestClient wires a Client onto a mock Doer. With a nil session the
// next operation or initializer runs its bootstrap against the mock;
// otherwise the given session is installed as already connected.
func newTestClient(doer httpclient.Doer, sess *Session) *Client {
	base, _ := url.Parse("http://example.com/dav/")
	c := &Client{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		baseURL: *base,
	}
	c.doerOnce.Do(func() { c.doer = doer })
	if sess != nil {
		c.sess = sess
		c.initDone = make(chan struct{})
		close(c.initDone)
	}
	return c
}

// userSession returns a connected user-mode session for tests.
func userSession() *Session {
	return &Session{
		mode:  ModeUser,
		homes: []CalendarHome{{Path: "http://example.com/dav/calendars/alice/"}},
		principal: Principal{
			Path:                  "http://example.com/dav/principals/users/alice/",
			DisplayName:           "Alice Appleseed",
			CalendarUserAddresses: []string{"mailto:alice@example.com"},
		},
	}
}
