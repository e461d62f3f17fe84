package httpclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

type PropfindResponse struct {
	CurrentUserPrincipal string
	CalendarHomeSet      string
	Resources            map[string]ResourceProps
}

type ResourceProps struct {
	IsCalendar       bool
	IsSubscription   bool
	IsScheduleInbox  bool
	IsScheduleOutbox bool
	IsPrincipal      bool
	DisplayName      string
	Color            string
	Order            int
	Components       []string
	Source           string
	Addresses        []string
	CanWrite         bool
	Etag             string
}

type propfindXML struct {
	XMLName  xml.Name `xml:"DAV: propfind"`
	XMLDAV   string   `xml:"xmlns:D,attr"`
	XMLApple string   `xml:"xmlns:A,attr"`
	XMLCal   string   `xml:"xmlns:C,attr"`
	XMLCS    string   `xml:"xmlns:CS,attr"`
	Prop     propXML  `xml:"D:prop"`
}

type propXML struct {
	ResourceType         *xml.Name `xml:"D:resourcetype"`
	DisplayName          *xml.Name `xml:"D:displayname"`
	CalendarColor        *xml.Name `xml:"A:calendar-color"`
	CalendarOrder        *xml.Name `xml:"A:calendar-order"`
	CurrentUserPrivSet   *xml.Name `xml:"D:current-user-privilege-set"`
	CurrentUserPrincipal *xml.Name `xml:"D:current-user-principal"`
	CalendarHomeSet      *xml.Name `xml:"C:calendar-home-set"`
	SupportedComponents  *xml.Name `xml:"C:supported-calendar-component-set"`
	AddressSet           *xml.Name `xml:"C:calendar-user-address-set"`
	Source               *xml.Name `xml:"CS:source"`
	Getetag              *xml.Name `xml:"D:getetag"`
}

type multistatusXML struct {
	XMLName  xml.Name      `xml:"DAV: multistatus"`
	Response []responseXML `xml:"response"`
}

type responseXML struct {
	Href     string        `xml:"DAV: href"`
	Propstat []propstatXML `xml:"DAV: propstat"`
}

type propstatXML struct {
	Prop   propertyXML `xml:"DAV: prop"`
	Status string      `xml:"DAV: status"`
}

type hrefXML struct {
	Href string `xml:"href"`
}

type hrefSetXML struct {
	Hrefs []string `xml:"href"`
}

type propertyXML struct {
	ResourceType         resourceTypeXML `xml:"DAV: resourcetype"`
	DisplayName          string          `xml:"DAV: displayname"`
	CalendarColor        string          `xml:"http://apple.com/ns/ical/ calendar-color"`
	CalendarOrder        string          `xml:"http://apple.com/ns/ical/ calendar-order"`
	CurrentUserPrivSet   privSetXML      `xml:"DAV: current-user-privilege-set"`
	CurrentUserPrincipal hrefXML         `xml:"DAV: current-user-principal"`
	CalendarHomeSet      hrefXML         `xml:"urn:ietf:params:xml:ns:caldav calendar-home-set"`
	SupportedComponents  componentSetXML `xml:"urn:ietf:params:xml:ns:caldav supported-calendar-component-set"`
	AddressSet           hrefSetXML      `xml:"urn:ietf:params:xml:ns:caldav calendar-user-address-set"`
	Source               hrefXML         `xml:"http://calendarserver.org/ns/ source"`
	Getetag              string          `xml:"DAV: getetag"`
}

type resourceTypeXML struct {
	Calendar       *xml.Name `xml:"urn:ietf:params:xml:ns:caldav calendar"`
	ScheduleInbox  *xml.Name `xml:"urn:ietf:params:xml:ns:caldav schedule-inbox"`
	ScheduleOutbox *xml.Name `xml:"urn:ietf:params:xml:ns:caldav schedule-outbox"`
	Subscribed     *xml.Name `xml:"http://calendarserver.org/ns/ subscribed"`
	Principal      *xml.Name `xml:"DAV: principal"`
}

type privSetXML struct {
	Privilege []privilegeXML `xml:"DAV: privilege"`
}

type privilegeXML struct {
	Write *xml.Name `xml:"DAV: write"`
}

type componentSetXML struct {
	Comp []struct {
		Name string `xml:"name,attr"`
	} `xml:"urn:ietf:params:xml:ns:caldav comp"`
}

// DoPROPFIND performs a PROPFIND request
func (c *wrapper) DoPROPFIND(ctx context.Context, urlStr string, depth int, props ...string) (*PropfindResponse, error) {
	c.logger.Debug("starting PROPFIND request",
		"url", urlStr,
		"depth", depth,
		"properties", props)

	body := buildPropfindXML(props...)

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		c.logger.Debug("unexpected response status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var multiStatus multistatusXML
	if err := xml.NewDecoder(resp.Body).Decode(&multiStatus); err != nil {
		c.logger.Debug("failed to parse XML response", "error", err)
		return nil, fmt.Errorf("failed to parse XML response: %w", err)
	}

	result := PropfindResponse{Resources: make(map[string]ResourceProps)}

	for _, response := range multiStatus.Response {
		for _, propstat := range response.Propstat {
			if !strings.Contains(propstat.Status, "200") {
				continue
			}

			props := propstat.Prop

			if props.CurrentUserPrincipal.Href != "" {
				result.CurrentUserPrincipal = props.CurrentUserPrincipal.Href
			}
			if props.CalendarHomeSet.Href != "" {
				result.CalendarHomeSet = props.CalendarHomeSet.Href
			}

			resource := ResourceProps{
				IsCalendar:       props.ResourceType.Calendar != nil,
				IsSubscription:   props.ResourceType.Subscribed != nil,
				IsScheduleInbox:  props.ResourceType.ScheduleInbox != nil,
				IsScheduleOutbox: props.ResourceType.ScheduleOutbox != nil,
				IsPrincipal:      props.ResourceType.Principal != nil,
				DisplayName:      props.DisplayName,
				Color:            props.CalendarColor,
				Source:           props.Source.Href,
				Addresses:        props.AddressSet.Hrefs,
				Etag:             props.Getetag,
			}

			if props.CalendarOrder != "" {
				if order, err := strconv.Atoi(strings.TrimSpace(props.CalendarOrder)); err == nil {
					resource.Order = order
				}
			}

			for _, comp := range props.SupportedComponents.Comp {
				if comp.Name != "" {
					resource.Components = append(resource.Components, comp.Name)
				}
			}

			for _, priv := range props.CurrentUserPrivSet.Privilege {
				if priv.Write != nil {
					resource.CanWrite = true
					break
				}
			}

			result.Resources[response.Href] = resource
		}
	}

	c.logger.Debug("PROPFIND request complete",
		"resource_count", len(result.Resources),
		"principal_url", result.CurrentUserPrincipal != "",
		"home_set", result.CalendarHomeSet != "")
	return &result, nil
}

func buildPropfindXML(props ...string) []byte {
	propfind := propfindXML{
		XMLDAV:   "DAV:",
		XMLApple: "http://apple.com/ns/ical/",
		XMLCal:   "urn:ietf:params:xml:ns:caldav",
		XMLCS:    "http://calendarserver.org/ns/",
		Prop:     propXML{},
	}

	for _, prop := range props {
		switch prop {
		case "resourcetype":
			propfind.Prop.ResourceType = &xml.Name{Space: "DAV:", Local: "resourcetype"}
		case "displayname":
			propfind.Prop.DisplayName = &xml.Name{Space: "DAV:", Local: "displayname"}
		case "calendar-color":
			propfind.Prop.CalendarColor = &xml.Name{Space: "http://apple.com/ns/ical/", Local: "calendar-color"}
		case "calendar-order":
			propfind.Prop.CalendarOrder = &xml.Name{Space: "http://apple.com/ns/ical/", Local: "calendar-order"}
		case "current-user-privilege-set":
			propfind.Prop.CurrentUserPrivSet = &xml.Name{Space: "DAV:", Local: "current-user-privilege-set"}
		case "current-user-principal":
			propfind.Prop.CurrentUserPrincipal = &xml.Name{Space: "DAV:", Local: "current-user-principal"}
		case "calendar-home-set":
			propfind.Prop.CalendarHomeSet = &xml.Name{Space: "urn:ietf:params:xml:ns:caldav", Local: "calendar-home-set"}
		case "supported-calendar-component-set":
			propfind.Prop.SupportedComponents = &xml.Name{Space: "urn:ietf:params:xml:ns:caldav", Local: "supported-calendar-component-set"}
		case "calendar-user-address-set":
			propfind.Prop.AddressSet = &xml.Name{Space: "urn:ietf:params:xml:ns:caldav", Local: "calendar-user-address-set"}
		case "source":
			propfind.Prop.Source = &xml.Name{Space: "http://calendarserver.org/ns/", Local: "source"}
		case "getetag":
			propfind.Prop.Getetag = &xml.Name{Space: "DAV:", Local: "getetag"}
		}
	}

	body, err := xml.Marshal(propfind)
	if err != nil {
		return []byte{}
	}

	return body
}
