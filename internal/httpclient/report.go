package httpclient

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
)

// ReportResponse represents a CalDAV REPORT response
type ReportResponse struct {
	XMLName   xml.Name      `xml:"DAV: multistatus"`
	Responses []ReportEntry `xml:"DAV: response"`
}

type ReportEntry struct {
	Href     string         `xml:"DAV: href"`
	PropStat ReportPropStat `xml:"DAV: propstat"`
}

type ReportPropStat struct {
	Prop   ReportProp `xml:"DAV: prop"`
	Status string     `xml:"DAV: status"`
}

type ReportProp struct {
	CalendarData string `xml:"urn:ietf:params:xml:ns:caldav calendar-data"`
	ETag         string `xml:"DAV: getetag"`
}

// PrincipalProps carries the decoded properties of one principal entry
// in a principal-property-search response.
type PrincipalProps struct {
	Href        string
	DisplayName string
	Addresses   []string
}

// DoREPORT executes a CalDAV REPORT request
func (c *wrapper) DoREPORT(ctx context.Context, urlStr string, depth int, query interface{}) (*ReportResponse, error) {
	c.logger.Debug("starting REPORT request",
		"url", urlStr,
		"depth", depth,
		"query_type", fmt.Sprintf("%T", query))

	queryXML, err := xml.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal REPORT query: %w", err)
	}

	resp, err := c.doReport(ctx, urlStr, depth, queryXML)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var multiStatus ReportResponse
	if err := xml.NewDecoder(resp.Body).Decode(&multiStatus); err != nil {
		c.logger.Debug("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debug("REPORT request complete",
		"response_count", len(multiStatus.Responses))
	return &multiStatus, nil
}

// DoPrincipalSearch executes a principal-property-search REPORT with a
// prebuilt body and decodes the matching principals.
func (c *wrapper) DoPrincipalSearch(ctx context.Context, urlStr string, body []byte) ([]PrincipalProps, error) {
	c.logger.Debug("starting principal search REPORT", "url", urlStr)

	resp, err := c.doReport(ctx, urlStr, 0, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var multiStatus multistatusXML
	if err := xml.NewDecoder(resp.Body).Decode(&multiStatus); err != nil {
		c.logger.Debug("failed to decode response", "error", err)
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var principals []PrincipalProps
	for _, response := range multiStatus.Response {
		for _, propstat := range response.Propstat {
			if !strings.Contains(propstat.Status, "200") {
				continue
			}
			principals = append(principals, PrincipalProps{
				Href:        response.Href,
				DisplayName: propstat.Prop.DisplayName,
				Addresses:   propstat.Prop.AddressSet.Hrefs,
			})
		}
	}

	c.logger.Debug("principal search complete", "match_count", len(principals))
	return principals, nil
}

func (c *wrapper) doReport(ctx context.Context, urlStr string, depth int, body []byte) (*http.Response, error) {
	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve URL %q: %w", urlStr, err)
	}

	req, err := http.NewRequestWithContext(ctx, "REPORT", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/xml; charset=utf-8")
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	c.logger.Debug("received response", "status", resp.Status)

	if resp.StatusCode != http.StatusMultiStatus {
		resp.Body.Close()
		return nil, &StatusError{Code: resp.StatusCode}
	}

	return resp, nil
}
