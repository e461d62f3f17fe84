package httpclient

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestDoMKCALENDARStatuses(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantErr  bool
		wantCode int
	}{
		{name: "created", status: http.StatusCreated},
		{name: "ok", status: http.StatusOK},
		{name: "forbidden", status: http.StatusForbidden, wantErr: true, wantCode: http.StatusForbidden},
		{name: "method not allowed on existing collection", status: http.StatusMethodNotAllowed, wantErr: true, wantCode: http.StatusMethodNotAllowed},
		{name: "conflict", status: http.StatusConflict, wantErr: true, wantCode: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockTransport{
				response: &http.Response{StatusCode: tt.status, Body: http.NoBody},
			}

			err := newTestWrapper(t, mock).DoMKCALENDAR(context.Background(), "/calendars/user/new/", []byte("<mkcalendar/>"))
			if (err != nil) != tt.wantErr {
				t.Fatalf("DoMKCALENDAR() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var statusErr *StatusError
				if !errors.As(err, &statusErr) || statusErr.Code != tt.wantCode {
					t.Errorf("error = %v, want StatusError %d", err, tt.wantCode)
				}
			}
		})
	}
}

func TestDoPROPPATCHAcceptsMultiStatus(t *testing.T) {
	mock := &mockTransport{
		response: &http.Response{StatusCode: http.StatusMultiStatus, Body: http.NoBody},
	}

	if err := newTestWrapper(t, mock).DoPROPPATCH(context.Background(), "/principals/users/alice/", []byte("<propertyupdate/>")); err != nil {
		t.Errorf("DoPROPPATCH() error = %v", err)
	}
}
