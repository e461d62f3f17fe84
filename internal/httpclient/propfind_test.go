package httpclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"testing"
)

type mockTransport struct {
	response *http.Response
	err      error
}

func (m *mockTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func newTestWrapper(t *testing.T, mock *mockTransport) *wrapper {
	t.Helper()
	baseURL, _ := url.Parse("http://example.com")
	return &wrapper{
		client:  &http.Client{Transport: mock},
		baseURL: *baseURL,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestBuildPropfindXML(t *testing.T) {
	tests := []struct {
		name  string
		props []string
		want  []string
	}{
		{
			name:  "discovery props",
			props: []string{"current-user-principal", "calendar-home-set"},
			want:  []string{"current-user-principal", "calendar-home-set"},
		},
		{
			name:  "calendar listing props",
			props: []string{"resourcetype", "displayname", "calendar-color", "calendar-order", "supported-calendar-component-set", "source"},
			want:  []string{"resourcetype", "displayname", "calendar-color", "calendar-order", "supported-calendar-component-set", "source"},
		},
		{
			name:  "unknown prop is skipped",
			props: []string{"no-such-prop", "getetag"},
			want:  []string{"getetag"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(buildPropfindXML(tt.props...))
			for _, prop := range tt.want {
				if !strings.Contains(got, prop) {
					t.Errorf("buildPropfindXML() missing %q in %s", prop, got)
				}
			}
			if strings.Contains(got, "no-such-prop") {
				t.Errorf("buildPropfindXML() should skip unknown props, got %s", got)
			}
		})
	}
}

func TestDoPROPFIND(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		response   string
		props      []string
		wantErr    bool
		wantResult *PropfindResponse
	}{
		{
			name:   "calendar with order, components and privileges",
			status: http.StatusMultiStatus,
			response: `<?xml version="1.0" encoding="UTF-8"?>
                <D:multistatus xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav" xmlns:IC="http://apple.com/ns/ical/">
                    <D:response>
                        <D:href>/calendars/user/work/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:resourcetype><C:calendar/></D:resourcetype>
                                <D:displayname>Work</D:displayname>
                                <IC:calendar-color>#FF0000</IC:calendar-color>
                                <IC:calendar-order>2</IC:calendar-order>
                                <C:supported-calendar-component-set>
                                    <C:comp name="VEVENT"/>
                                    <C:comp name="VTODO"/>
                                </C:supported-calendar-component-set>
                                <D:current-user-privilege-set>
                                    <D:privilege><D:read/></D:privilege>
                                    <D:privilege><D:write/></D:privilege>
                                </D:current-user-privilege-set>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                    </D:response>
                </D:multistatus>`,
			props: []string{"resourcetype", "displayname", "calendar-color", "calendar-order", "supported-calendar-component-set", "current-user-privilege-set"},
			wantResult: &PropfindResponse{
				Resources: map[string]ResourceProps{
					"/calendars/user/work/": {
						IsCalendar:  true,
						DisplayName: "Work",
						Color:       "#FF0000",
						Order:       2,
						Components:  []string{"VEVENT", "VTODO"},
						CanWrite:    true,
					},
				},
			},
		},
		{
			name:   "subscription with source",
			status: http.StatusMultiStatus,
			response: `<?xml version="1.0" encoding="UTF-8"?>
                <D:multistatus xmlns:D="DAV:" xmlns:CS="http://calendarserver.org/ns/">
                    <D:response>
                        <D:href>/calendars/user/holidays/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:resourcetype><D:collection/><CS:subscribed/></D:resourcetype>
                                <D:displayname>Holidays</D:displayname>
                                <CS:source><D:href>webcal://example.com/holidays.ics</D:href></CS:source>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                    </D:response>
                </D:multistatus>`,
			props: []string{"resourcetype", "displayname", "source"},
			wantResult: &PropfindResponse{
				Resources: map[string]ResourceProps{
					"/calendars/user/holidays/": {
						IsSubscription: true,
						DisplayName:    "Holidays",
						Source:         "webcal://example.com/holidays.ics",
					},
				},
			},
		},
		{
			name:   "scheduling collections",
			status: http.StatusMultiStatus,
			response: `<?xml version="1.0" encoding="UTF-8"?>
                <D:multistatus xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
                    <D:response>
                        <D:href>/calendars/user/inbox/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:resourcetype><C:schedule-inbox/></D:resourcetype>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                    </D:response>
                    <D:response>
                        <D:href>/calendars/user/outbox/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:resourcetype><C:schedule-outbox/></D:resourcetype>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                    </D:response>
                </D:multistatus>`,
			props: []string{"resourcetype"},
			wantResult: &PropfindResponse{
				Resources: map[string]ResourceProps{
					"/calendars/user/inbox/":  {IsScheduleInbox: true},
					"/calendars/user/outbox/": {IsScheduleOutbox: true},
				},
			},
		},
		{
			name:   "principal discovery",
			status: http.StatusMultiStatus,
			response: `<?xml version="1.0" encoding="UTF-8"?>
                <D:multistatus xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
                    <D:response>
                        <D:href>/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:current-user-principal><D:href>/principals/users/alice/</D:href></D:current-user-principal>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                    </D:response>
                </D:multistatus>`,
			props: []string{"current-user-principal"},
			wantResult: &PropfindResponse{
				CurrentUserPrincipal: "/principals/users/alice/",
				Resources: map[string]ResourceProps{
					"/": {},
				},
			},
		},
		{
			name:   "404 propstat block is ignored",
			status: http.StatusMultiStatus,
			response: `<?xml version="1.0" encoding="UTF-8"?>
                <D:multistatus xmlns:D="DAV:" xmlns:C="urn:ietf:params:xml:ns:caldav">
                    <D:response>
                        <D:href>/calendars/user/plain/</D:href>
                        <D:propstat>
                            <D:prop>
                                <D:displayname>Plain</D:displayname>
                            </D:prop>
                            <D:status>HTTP/1.1 200 OK</D:status>
                        </D:propstat>
                        <D:propstat>
                            <D:prop>
                                <C:calendar-timezone/>
                            </D:prop>
                            <D:status>HTTP/1.1 404 Not Found</D:status>
                        </D:propstat>
                    </D:response>
                </D:multistatus>`,
			props: []string{"displayname"},
			wantResult: &PropfindResponse{
				Resources: map[string]ResourceProps{
					"/calendars/user/plain/": {DisplayName: "Plain"},
				},
			},
		},
		{
			name:    "non-207 status",
			status:  http.StatusForbidden,
			props:   []string{"resourcetype"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTransport{
				response: &http.Response{
					StatusCode: tt.status,
					Body:       io.NopCloser(bytes.NewBufferString(tt.response)),
				},
			}

			got, err := newTestWrapper(t, mock).DoPROPFIND(context.Background(), "http://example.com", 1, tt.props...)

			if (err != nil) != tt.wantErr {
				t.Errorf("DoPROPFIND() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if got.CurrentUserPrincipal != tt.wantResult.CurrentUserPrincipal {
				t.Errorf("CurrentUserPrincipal = %q, want %q", got.CurrentUserPrincipal, tt.wantResult.CurrentUserPrincipal)
			}
			for href, want := range tt.wantResult.Resources {
				res, ok := got.Resources[href]
				if !ok {
					t.Errorf("DoPROPFIND() missing resource %s", href)
					continue
				}
				if !reflect.DeepEqual(res, want) {
					t.Errorf("DoPROPFIND() resource %s = %+v, want %+v", href, res, want)
				}
			}
		})
	}
}

func TestDoPROPFINDStatusError(t *testing.T) {
	mock := &mockTransport{
		response: &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       http.NoBody,
		},
	}

	_, err := newTestWrapper(t, mock).DoPROPFIND(context.Background(), "/principals/users/ghost/", 0, "resourcetype")
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusNotFound {
		t.Errorf("error = %v, want StatusError 404", err)
	}
}
