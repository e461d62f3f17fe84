package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/calwerks/calfacade/internal/httpclient"
	davxml "github.com/calwerks/calfacade/internal/xml"
	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// CreateCalendar creates a new calendar collection under the session's
// home. The timezone argument is an ICS VCALENDAR snippet carrying a
// VTIMEZONE and is validated before the request is issued. The returned
// Calendar reflects server-confirmed properties, which may normalize the
// requested name or color.
func (c *Client) CreateCalendar(ctx context.Context, displayName, color string, components []ComponentKind, order int, timezoneICS string) (Calendar, error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return Calendar{}, err
	}

	if timezoneICS != "" {
		if _, err := ical.NewDecoder(strings.NewReader(timezoneICS)).Decode(); err != nil {
			return Calendar{}, fmt.Errorf("invalid calendar timezone: %w", err)
		}
	}

	comps := make([]string, 0, len(components))
	for _, kind := range components {
		comps = append(comps, string(kind))
	}

	body, err := (&davxml.MkCalendarRequest{
		DisplayName: displayName,
		Color:       color,
		Components:  comps,
		Order:       order,
		TimezoneICS: timezoneICS,
	}).Encode()
	if err != nil {
		return Calendar{}, fmt.Errorf("failed to encode MKCALENDAR request: %w", err)
	}

	path := collectionPath(sess.homes[0], uuid.New().String())
	if err := doer.DoMKCALENDAR(ctx, path, body); err != nil {
		return Calendar{}, createError(path, err)
	}

	return c.readBackCalendar(ctx, doer, path, Calendar{
		Path:        path,
		DisplayName: displayName,
		Color:       color,
		Order:       order,
		Components:  components,
	})
}

// CreateSubscription creates a subscribed (webcal) collection pointing
// at sourceURL. The returned entity is the server-side cached proxy of
// the remote feed; the server re-fetches it periodically and no push
// updates exist.
func (c *Client) CreateSubscription(ctx context.Context, displayName, color string, sourceURL *url.URL, order int) (Calendar, error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return Calendar{}, err
	}
	if sourceURL == nil {
		return Calendar{}, fmt.Errorf("source URL is required")
	}

	body, err := (&davxml.MkSubscriptionRequest{
		DisplayName: displayName,
		Color:       color,
		Source:      sourceURL.String(),
		Order:       order,
	}).Encode()
	if err != nil {
		return Calendar{}, fmt.Errorf("failed to encode MKCOL request: %w", err)
	}

	path := collectionPath(sess.homes[0], uuid.New().String())
	if err := doer.DoMKCOL(ctx, path, body); err != nil {
		return Calendar{}, createError(path, err)
	}

	return c.readBackCalendar(ctx, doer, path, Calendar{
		Path:        path,
		DisplayName: displayName,
		Color:       color,
		Order:       order,
		Source:      sourceURL.String(),
	})
}

// EnableBirthdayCalendar asks the server to manage the birthday calendar
// and returns it. The enable step is idempotent: a server that already
// has it enabled still succeeds, and the existing calendar is returned.
func (c *Client) EnableBirthdayCalendar(ctx context.Context) (Calendar, error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return Calendar{}, err
	}
	if sess.mode != ModeUser {
		return Calendar{}, ErrNotAuthenticated
	}

	body, err := (&davxml.PropPatchRequest{
		Props: map[string]string{"enable-birthday-calendar": "1"},
	}).Encode()
	if err != nil {
		return Calendar{}, fmt.Errorf("failed to encode PROPPATCH request: %w", err)
	}

	if err := doer.DoPROPPATCH(ctx, sess.principal.Path, body); err != nil {
		return Calendar{}, createError(sess.principal.Path, err)
	}

	birthday, err := c.GetBirthdayCalendar(ctx)
	if err != nil {
		return Calendar{}, err
	}
	cal, ok := birthday.Get()
	if !ok {
		return Calendar{}, &CollectionCreateError{
			Path: BirthdayCalendarID,
			Err:  errors.New("server did not expose the birthday calendar after enabling"),
		}
	}
	return cal, nil
}

// readBackCalendar fetches the freshly created collection so the caller
// sees server-normalized properties. If the read-back fails the locally
// known values are returned; creation itself already succeeded.
func (c *Client) readBackCalendar(ctx context.Context, doer httpclient.Doer, path string, fallback Calendar) (Calendar, error) {
	resp, err := doer.DoPROPFIND(ctx, path, 0, calendarListingProps...)
	if err != nil {
		c.logger.Debug("read-back of created collection failed", "path", path, "error", err)
		return fallback, nil
	}
	for href, props := range resp.Resources {
		if props.IsCalendar || props.IsSubscription {
			return adaptCalendar(c.resolveHref(path, href), props), nil
		}
	}
	return fallback, nil
}

func collectionPath(home CalendarHome, segment string) string {
	return strings.TrimRight(home.Path, "/") + "/" + segment + "/"
}

// createError maps a wire status onto the create taxonomy.
func createError(path string, err error) error {
	var statusErr *httpclient.StatusError
	if errors.As(err, &statusErr) {
		return &CollectionCreateError{Path: path, Status: statusErr.Code, Err: err}
	}
	return &CollectionCreateError{Path: path, Err: err}
}
