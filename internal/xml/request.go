package xml

import (
	"strconv"

	"github.com/beevik/etree"
)

// MkCalendarRequest represents an RFC 4791 MKCALENDAR request body.
type MkCalendarRequest struct {
	DisplayName string
	Color       string
	Components  []string
	Order       int
	TimezoneICS string
}

// ToXML converts a MkCalendarRequest to an XML document
func (r *MkCalendarRequest) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := createElement("mkcalendar")
	doc.SetRoot(root)
	declareNamespaces(doc, "d", "c", "a")

	set := createElement("set")
	root.AddChild(set)
	prop := createElement("prop")
	set.AddChild(prop)

	name := createElement("displayname")
	name.SetText(r.DisplayName)
	prop.AddChild(name)

	if r.Color != "" {
		color := createElement("calendar-color")
		color.SetText(r.Color)
		prop.AddChild(color)
	}

	order := createElement("calendar-order")
	order.SetText(strconv.Itoa(r.Order))
	prop.AddChild(order)

	if len(r.Components) > 0 {
		compSet := createElement("supported-calendar-component-set")
		for _, c := range r.Components {
			comp := createElement("comp")
			comp.CreateAttr("name", c)
			compSet.AddChild(comp)
		}
		prop.AddChild(compSet)
	}

	if r.TimezoneICS != "" {
		tz := createElement("calendar-timezone")
		tz.SetText(r.TimezoneICS)
		prop.AddChild(tz)
	}

	return doc
}

// Encode serializes the request to bytes
func (r *MkCalendarRequest) Encode() ([]byte, error) {
	return r.ToXML().WriteToBytes()
}

// MkSubscriptionRequest represents an extended MKCOL (RFC 5689) request
// creating a subscribed (webcal) collection.
type MkSubscriptionRequest struct {
	DisplayName string
	Color       string
	Source      string
	Order       int
}

// ToXML converts a MkSubscriptionRequest to an XML document
func (r *MkSubscriptionRequest) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := etree.NewElement("mkcol")
	root.Space = "d"
	doc.SetRoot(root)
	declareNamespaces(doc, "d", "cs", "a")

	set := createElement("set")
	root.AddChild(set)
	prop := createElement("prop")
	set.AddChild(prop)

	rt := createElement("resourcetype")
	rt.AddChild(createElement("collection"))
	rt.AddChild(createElement("subscribed"))
	prop.AddChild(rt)

	name := createElement("displayname")
	name.SetText(r.DisplayName)
	prop.AddChild(name)

	if r.Color != "" {
		color := createElement("calendar-color")
		color.SetText(r.Color)
		prop.AddChild(color)
	}

	order := createElement("calendar-order")
	order.SetText(strconv.Itoa(r.Order))
	prop.AddChild(order)

	source := createElement("source")
	href := createElement("href")
	href.SetText(r.Source)
	source.AddChild(href)
	prop.AddChild(source)

	return doc
}

// Encode serializes the request to bytes
func (r *MkSubscriptionRequest) Encode() ([]byte, error) {
	return r.ToXML().WriteToBytes()
}

// PrincipalSearchRequest represents an RFC 3744 principal-property-search
// REPORT body matching on displayname.
type PrincipalSearchRequest struct {
	DisplayName string
}

// ToXML converts a PrincipalSearchRequest to an XML document
func (r *PrincipalSearchRequest) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := createElement("principal-property-search")
	doc.SetRoot(root)
	declareNamespaces(doc, "d", "c")

	search := createElement("property-search")
	root.AddChild(search)
	prop := createElement("prop")
	prop.AddChild(createElement("displayname"))
	search.AddChild(prop)
	match := createElement("match")
	match.SetText(r.DisplayName)
	search.AddChild(match)

	want := createElement("prop")
	want.AddChild(createElement("displayname"))
	want.AddChild(createElement("calendar-user-address-set"))
	root.AddChild(want)

	return doc
}

// Encode serializes the request to bytes
func (r *PrincipalSearchRequest) Encode() ([]byte, error) {
	return r.ToXML().WriteToBytes()
}

// PropPatchRequest represents a PROPPATCH propertyupdate body setting a
// flat list of text properties.
type PropPatchRequest struct {
	Props map[string]string
}

// ToXML converts a PropPatchRequest to an XML document
func (r *PropPatchRequest) ToXML() *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := createElement("propertyupdate")
	doc.SetRoot(root)
	declareNamespaces(doc, "d", "nc")

	set := createElement("set")
	root.AddChild(set)
	prop := createElement("prop")
	set.AddChild(prop)

	for name, value := range r.Props {
		elem := createElement(name)
		elem.SetText(value)
		prop.AddChild(elem)
	}

	return doc
}

// Encode serializes the request to bytes
func (r *PropPatchRequest) Encode() ([]byte, error) {
	return r.ToXML().WriteToBytes()
}
