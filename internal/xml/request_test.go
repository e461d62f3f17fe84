package xml

import (
	"strings"
	"testing"

	"github.com/beevik/etree"
)

func parseDoc(t *testing.T, data []byte) *etree.Document {
	t.Helper()
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		t.Fatalf("generated XML does not parse: %v", err)
	}
	return doc
}

func TestMkCalendarRequest_Encode(t *testing.T) {
	req := &MkCalendarRequest{
		DisplayName: "Work",
		Color:       "#FF0000",
		Components:  []string{"VEVENT", "VTODO"},
		Order:       1,
		TimezoneICS: "BEGIN:VCALENDAR\r\nBEGIN:VTIMEZONE\r\nTZID:UTC\r\nEND:VTIMEZONE\r\nEND:VCALENDAR\r\n",
	}

	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc := parseDoc(t, data)
	root := doc.Root()
	if root.Tag != "mkcalendar" {
		t.Errorf("root tag = %q, want mkcalendar", root.Tag)
	}

	prop := root.FindElement("set/prop")
	if prop == nil {
		t.Fatal("missing set/prop element")
	}
	if got := prop.FindElement("displayname"); got == nil || got.Text() != "Work" {
		t.Errorf("displayname = %v, want Work", got)
	}
	if got := prop.FindElement("calendar-color"); got == nil || got.Text() != "#FF0000" {
		t.Errorf("calendar-color missing or wrong")
	}
	if got := prop.FindElement("calendar-order"); got == nil || got.Text() != "1" {
		t.Errorf("calendar-order missing or wrong")
	}

	comps := prop.FindElements("supported-calendar-component-set/comp")
	if len(comps) != 2 {
		t.Fatalf("comp count = %d, want 2", len(comps))
	}
	if comps[0].SelectAttrValue("name", "") != "VEVENT" {
		t.Errorf("first comp = %q, want VEVENT", comps[0].SelectAttrValue("name", ""))
	}

	tz := prop.FindElement("calendar-timezone")
	if tz == nil || !strings.Contains(tz.Text(), "BEGIN:VTIMEZONE") {
		t.Errorf("calendar-timezone missing or wrong")
	}
}

func TestMkCalendarRequest_OmitsEmptyProps(t *testing.T) {
	req := &MkCalendarRequest{DisplayName: "Minimal"}

	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc := parseDoc(t, data)
	prop := doc.Root().FindElement("set/prop")
	if prop == nil {
		t.Fatal("missing set/prop element")
	}
	if prop.FindElement("calendar-color") != nil {
		t.Error("empty color should be omitted")
	}
	if prop.FindElement("calendar-timezone") != nil {
		t.Error("empty timezone should be omitted")
	}
	if prop.FindElement("supported-calendar-component-set") != nil {
		t.Error("empty component set should be omitted")
	}
}

func TestMkSubscriptionRequest_Encode(t *testing.T) {
	req := &MkSubscriptionRequest{
		DisplayName: "Holidays",
		Color:       "#00FF00",
		Source:      "webcal://example.com/holidays.ics",
		Order:       3,
	}

	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc := parseDoc(t, data)
	root := doc.Root()
	if root.Tag != "mkcol" {
		t.Errorf("root tag = %q, want mkcol", root.Tag)
	}

	prop := root.FindElement("set/prop")
	if prop == nil {
		t.Fatal("missing set/prop element")
	}
	if prop.FindElement("resourcetype/subscribed") == nil {
		t.Error("missing subscribed resourcetype")
	}
	if prop.FindElement("resourcetype/collection") == nil {
		t.Error("missing collection resourcetype")
	}
	href := prop.FindElement("source/href")
	if href == nil || href.Text() != "webcal://example.com/holidays.ics" {
		t.Errorf("source href missing or wrong")
	}
}

func TestPrincipalSearchRequest_Encode(t *testing.T) {
	req := &PrincipalSearchRequest{DisplayName: "alice"}

	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc := parseDoc(t, data)
	root := doc.Root()
	if root.Tag != "principal-property-search" {
		t.Errorf("root tag = %q, want principal-property-search", root.Tag)
	}

	match := root.FindElement("property-search/match")
	if match == nil || match.Text() != "alice" {
		t.Errorf("match = %v, want alice", match)
	}
	if root.FindElement("property-search/prop/displayname") == nil {
		t.Error("search prop should name displayname")
	}
}

func TestPropPatchRequest_Encode(t *testing.T) {
	req := &PropPatchRequest{Props: map[string]string{"enable-birthday-calendar": "1"}}

	data, err := req.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	doc := parseDoc(t, data)
	root := doc.Root()
	if root.Tag != "propertyupdate" {
		t.Errorf("root tag = %q, want propertyupdate", root.Tag)
	}
	elem := root.FindElement("set/prop/enable-birthday-calendar")
	if elem == nil || elem.Text() != "1" {
		t.Errorf("enable-birthday-calendar missing or wrong")
	}
}
