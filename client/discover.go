package client

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/calwerks/calfacade/internal/httpclient"
	"github.com/samber/mo"
)

var calendarListingProps = []string{
	"resourcetype",
	"displayname",
	"calendar-color",
	"calendar-order",
	"supported-calendar-component-set",
	"source",
	"current-user-privilege-set",
}

// FindAllCalendars lists the calendars under the session's calendar
// home, ordered by the server's calendar-order hint. An empty home
// yields an empty slice.
func (c *Client) FindAllCalendars(ctx context.Context) ([]Calendar, error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return nil, err
	}

	home := sess.homes[0]
	resp, err := doer.DoPROPFIND(ctx, home.Path, 1, calendarListingProps...)
	if err != nil {
		return nil, err
	}

	calendars := make([]Calendar, 0, len(resp.Resources))
	for href, props := range resp.Resources {
		if !props.IsCalendar && !props.IsSubscription {
			continue
		}
		calendars = append(calendars, adaptCalendar(c.resolveHref(home.Path, href), props))
	}

	sort.SliceStable(calendars, func(i, j int) bool {
		if calendars[i].Order != calendars[j].Order {
			return calendars[i].Order < calendars[j].Order
		}
		return calendars[i].Path < calendars[j].Path
	})

	return calendars, nil
}

// FindPublicCalendarsByTokens resolves each public token independently
// and concurrently. A token the server rejects (expired, revoked,
// unknown) contributes no entry and no error; the result is sorted by
// calendar path so it is deterministic for identical server responses.
func (c *Client) FindPublicCalendarsByTokens(ctx context.Context, tokens []PublicToken) ([]Calendar, error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]*Calendar, len(tokens))
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token PublicToken) {
			defer wg.Done()
			href := c.baseURL.JoinPath(publicHomeSegment, string(token)).String() + "/"
			resp, err := doer.DoPROPFIND(ctx, href, 0, calendarListingProps...)
			if err != nil {
				// Stale or revoked tokens degrade to omission; one bad
				// token must not abort the batch.
				c.logger.Debug("skipping unresolvable public token", "token", string(token), "error", err)
				return
			}
			for respHref, props := range resp.Resources {
				if props.IsCalendar || props.IsSubscription {
					cal := adaptCalendar(c.resolveHref(href, respHref), props)
					resolved[i] = &cal
					break
				}
			}
		}(i, token)
	}
	wg.Wait()

	calendars := make([]Calendar, 0, len(tokens))
	for _, cal := range resolved {
		if cal != nil {
			calendars = append(calendars, *cal)
		}
	}
	sort.Slice(calendars, func(i, j int) bool { return calendars[i].Path < calendars[j].Path })

	return calendars, nil
}

// FindSchedulingInbox returns the principal's schedule inbox, or None if
// the home has no scheduling support. The home is scanned directly
// instead of querying the principal property (RFC 6638 section 2.2.1):
// in practice exactly one inbox exists per home.
func (c *Client) FindSchedulingInbox(ctx context.Context) (mo.Option[ScheduleInbox], error) {
	href, err := c.findSchedulingCollection(ctx, func(p httpclient.ResourceProps) bool { return p.IsScheduleInbox })
	if err != nil {
		return mo.None[ScheduleInbox](), err
	}
	if href == "" {
		return mo.None[ScheduleInbox](), nil
	}
	return mo.Some(ScheduleInbox{Path: href}), nil
}

// FindSchedulingOutbox returns the principal's schedule outbox, or None
// if the home has no scheduling support (RFC 6638 section 2.1.1).
func (c *Client) FindSchedulingOutbox(ctx context.Context) (mo.Option[ScheduleOutbox], error) {
	href, err := c.findSchedulingCollection(ctx, func(p httpclient.ResourceProps) bool { return p.IsScheduleOutbox })
	if err != nil {
		return mo.None[ScheduleOutbox](), err
	}
	if href == "" {
		return mo.None[ScheduleOutbox](), nil
	}
	return mo.Some(ScheduleOutbox{Path: href}), nil
}

func (c *Client) findSchedulingCollection(ctx context.Context, match func(httpclient.ResourceProps) bool) (string, error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return "", err
	}

	home := sess.homes[0]
	resp, err := doer.DoPROPFIND(ctx, home.Path, 1, "resourcetype")
	if err != nil {
		return "", err
	}

	// Map order is random; sort hrefs so "the first" is stable.
	hrefs := make([]string, 0, len(resp.Resources))
	for href := range resp.Resources {
		hrefs = append(hrefs, href)
	}
	sort.Strings(hrefs)

	for _, href := range hrefs {
		if match(resp.Resources[href]) {
			return c.resolveHref(home.Path, href), nil
		}
	}
	return "", nil
}

// GetBirthdayCalendar looks up the server-managed birthday calendar
// under the home, or None if the feature was never enabled.
func (c *Client) GetBirthdayCalendar(ctx context.Context) (mo.Option[Calendar], error) {
	sess, doer, err := c.getSession(ctx)
	if err != nil {
		return mo.None[Calendar](), err
	}

	home := sess.homes[0]
	resp, err := doer.DoPROPFIND(ctx, home.Path, 1, calendarListingProps...)
	if err != nil {
		return mo.None[Calendar](), err
	}

	for href, props := range resp.Resources {
		if !props.IsCalendar {
			continue
		}
		if lastPathSegment(href) == BirthdayCalendarID {
			return mo.Some(adaptCalendar(c.resolveHref(home.Path, href), props)), nil
		}
	}
	return mo.None[Calendar](), nil
}

// adaptCalendar converts wire-level resource properties into a Calendar
// entity.
func adaptCalendar(href string, props httpclient.ResourceProps) Calendar {
	components := make([]ComponentKind, 0, len(props.Components))
	for _, comp := range props.Components {
		components = append(components, ComponentKind(comp))
	}
	return Calendar{
		Path:        href,
		DisplayName: props.DisplayName,
		Color:       props.Color,
		Order:       props.Order,
		Components:  components,
		Source:      props.Source,
		ReadOnly:    !props.CanWrite,
	}
}

// lastPathSegment returns the final non-empty segment of a path.
func lastPathSegment(href string) string {
	trimmed := strings.TrimRight(href, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
