package client

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

// CalendarObject is a calendar object with its server metadata.
type CalendarObject struct {
	Event ical.Event
	Path  string
	ETag  string
}

// eventToBytes converts an ical.Event to iCalendar format bytes
func eventToBytes(event *ical.Event) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText("PRODID", "-//github.com/calwerks/calfacade//NONSGML v1.0//EN")
	cal.Props.SetText("VERSION", "2.0")
	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	enc := ical.NewEncoder(&buf)
	if err := enc.Encode(cal); err != nil {
		return nil, fmt.Errorf("failed to encode calendar: %w", err)
	}
	return buf.Bytes(), nil
}

// PutObject creates a new calendar object in the given calendar.
// Returns the path of the created object and its etag.
func (c *Client) PutObject(ctx context.Context, calendar Calendar, event *ical.Event) (objectPath string, etag string, err error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return "", "", err
	}

	objectPath = strings.TrimRight(calendar.Path, "/") + "/" + uuid.New().String() + ".ics"

	data, err := eventToBytes(event)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode calendar object: %w", err)
	}
	etag, err = doer.DoPUT(ctx, objectPath, "", data)
	if err != nil {
		return "", "", fmt.Errorf("failed to create calendar object: %w", err)
	}

	// If no etag in response, get it again
	if etag == "" {
		etag, err = c.fetchEtag(ctx, objectPath)
		if err != nil {
			return objectPath, "", err
		}
	}

	return objectPath, etag, nil
}

// UpdateObject updates the calendar object at the given path with
// optimistic locking using etags.
func (c *Client) UpdateObject(ctx context.Context, objectPath string, event *ical.Event) (etag string, err error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return "", err
	}

	resp, err := doer.DoPROPFIND(ctx, objectPath, 0, "getetag")
	if err != nil {
		return "", fmt.Errorf("failed to get object etag: %w", err)
	}

	var currentEtag string
	for _, props := range resp.Resources {
		currentEtag = props.Etag
		break
	}
	if currentEtag == "" {
		return "", fmt.Errorf("object not found at %s", objectPath)
	}

	data, err := eventToBytes(event)
	if err != nil {
		return "", fmt.Errorf("failed to encode calendar object: %w", err)
	}
	etag, err = doer.DoPUT(ctx, objectPath, currentEtag, data)
	if err != nil {
		return "", fmt.Errorf("failed to update calendar object: %w", err)
	}

	if etag == "" {
		etag, err = c.fetchEtag(ctx, objectPath)
		if err != nil {
			return "", err
		}
	}

	return etag, nil
}

// DeleteObject deletes the calendar object at the given path with
// optimistic locking using etag.
func (c *Client) DeleteObject(ctx context.Context, objectPath string, etag string) error {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return err
	}
	if err := doer.DoDELETE(ctx, objectPath, etag); err != nil {
		return fmt.Errorf("failed to delete calendar object: %w", err)
	}
	return nil
}

// GetCollectionTag retrieves only the etag of the calendar collection to
// check for updates cheaply.
func (c *Client) GetCollectionTag(ctx context.Context, calendar Calendar) (string, error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return "", err
	}

	resp, err := doer.DoPROPFIND(ctx, calendar.Path, 0, "getetag")
	if err != nil {
		return "", fmt.Errorf("failed to get calendar etag: %w", err)
	}

	for _, props := range resp.Resources {
		if props.IsCalendar {
			return props.Etag, nil
		}
		if len(resp.Resources) == 1 && props.Etag != "" {
			return props.Etag, nil
		}
	}

	return "", fmt.Errorf("no calendar found at %s", calendar.Path)
}

// ListObjects queries the events of a calendar within the given time
// range and returns them with their metadata. A zero start and end
// queries without a range.
func (c *Client) ListObjects(ctx context.Context, calendar Calendar, start, end time.Time) ([]CalendarObject, error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return nil, err
	}

	query := buildTimeRangeQuery(start, end)
	resp, err := doer.DoREPORT(ctx, calendar.Path, 1, query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute calendar query: %w", err)
	}

	var objects []CalendarObject
	for _, response := range resp.Responses {
		if !strings.Contains(response.PropStat.Status, "200") {
			continue
		}
		if response.PropStat.Prop.CalendarData == "" {
			continue
		}

		parsed, err := ical.NewDecoder(strings.NewReader(response.PropStat.Prop.CalendarData)).Decode()
		if err != nil {
			return nil, fmt.Errorf("failed to parse iCalendar data: %w", err)
		}

		for _, event := range parsed.Events() {
			objects = append(objects, CalendarObject{
				Event: event,
				Path:  response.Href,
				ETag:  response.PropStat.Prop.ETag,
			})
		}
	}

	return objects, nil
}

type calendarQuery struct {
	XMLName xml.Name    `xml:"urn:ietf:params:xml:ns:caldav calendar-query"`
	Prop    queryProp   `xml:"DAV: prop"`
	Filter  queryFilter `xml:"urn:ietf:params:xml:ns:caldav filter"`
}

type queryProp struct {
	GetETag      *struct{} `xml:"DAV: getetag"`
	CalendarData *struct{} `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
}

type queryFilter struct {
	CompFilter compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter"`
}

type compFilter struct {
	Name       string      `xml:"name,attr"`
	TimeRange  *timeRange  `xml:"urn:ietf:params:xml:ns:caldav time-range,omitempty"`
	CompFilter *compFilter `xml:"urn:ietf:params:xml:ns:caldav comp-filter,omitempty"`
}

type timeRange struct {
	Start string `xml:"start,attr,omitempty"`
	End   string `xml:"end,attr,omitempty"`
}

func buildTimeRangeQuery(start, end time.Time) *calendarQuery {
	eventFilter := &compFilter{Name: "VEVENT"}
	if !start.IsZero() || !end.IsZero() {
		tr := &timeRange{}
		if !start.IsZero() {
			tr.Start = start.UTC().Format("20060102T150405Z")
		}
		if !end.IsZero() {
			tr.End = end.UTC().Format("20060102T150405Z")
		}
		eventFilter.TimeRange = tr
	}

	return &calendarQuery{
		Prop: queryProp{
			GetETag:      &struct{}{},
			CalendarData: &struct{}{},
		},
		Filter: queryFilter{
			CompFilter: compFilter{
				Name:       "VCALENDAR",
				CompFilter: eventFilter,
			},
		},
	}
}

// fetchEtag re-reads an object's etag when the server omitted it from a
// write response.
func (c *Client) fetchEtag(ctx context.Context, objectPath string) (string, error) {
	_, doer, err := c.getSession(ctx)
	if err != nil {
		return "", err
	}
	resp, err := doer.DoPROPFIND(ctx, objectPath, 0, "getetag")
	if err != nil {
		return "", fmt.Errorf("failed to get new etag: %w", err)
	}
	for _, props := range resp.Resources {
		if props.Etag != "" {
			return props.Etag, nil
		}
	}
	return "", fmt.Errorf("no etag found for object at %s", objectPath)
}
