package xml

import "github.com/beevik/etree"

// Namespace definitions for CalDAV and WebDAV
const (
	// DAV is the WebDAV namespace
	DAV = "DAV:"
	// CalDAV is the CalDAV namespace
	CalDAV = "urn:ietf:params:xml:ns:caldav"
	// CalendarServer is the Calendar Server namespace (used by some implementations)
	CalendarServer = "http://calendarserver.org/ns/"
	// AppleICal is the Apple iCal namespace carrying color and order hints
	AppleICal = "http://apple.com/ns/ical/"
	// Nextcloud is the Nextcloud private namespace (birthday calendar toggle)
	Nextcloud = "http://nextcloud.com/ns"
)

// Prefix map for each property and child element
var propPrefixMap = map[string]string{
	// WebDAV properties (d: prefix)
	"displayname":               "d",
	"resourcetype":              "d",
	"set":                       "d",
	"prop":                      "d",
	"href":                      "d",
	"match":                     "d",
	"collection":                "d",
	"propertyupdate":            "d",
	"principal-property-search": "d",
	"property-search":           "d",

	// CalDAV properties (c: prefix)
	"mkcalendar":                       "c",
	"calendar-timezone":                "c",
	"supported-calendar-component-set": "c",
	"comp":                             "c",
	"calendar-user-address-set":        "c",

	// Apple iCal extensions (a: prefix)
	"calendar-color": "a",
	"calendar-order": "a",

	// Apple CalendarServer extensions (cs: prefix)
	"subscribed": "cs",
	"source":     "cs",

	// Nextcloud private properties (nc: prefix)
	"enable-birthday-calendar": "nc",
}

var prefixToNamespace = map[string]string{
	"d":  DAV,
	"c":  CalDAV,
	"cs": CalendarServer,
	"a":  AppleICal,
	"nc": Nextcloud,
}

// createElement creates an element with the namespace prefix taken from
// propPrefixMap. If the name is not found in the map, it defaults to "d".
func createElement(name string) *etree.Element {
	prefix, exists := propPrefixMap[name]
	if !exists {
		prefix = "d" // Default to DAV namespace
	}
	elem := etree.NewElement(name)
	elem.Space = prefix
	return elem
}

// declareNamespaces adds xmlns attributes for the given prefixes to the
// document root.
func declareNamespaces(doc *etree.Document, prefixes ...string) {
	root := doc.Root()
	if root == nil {
		return
	}
	for _, p := range prefixes {
		root.CreateAttr("xmlns:"+p, prefixToNamespace[p])
	}
}
