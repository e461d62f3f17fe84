package client

// ComponentKind names an iCalendar component type a calendar collection
// may store.
type ComponentKind string

const (
	ComponentEvent    ComponentKind = "VEVENT"
	ComponentTodo     ComponentKind = "VTODO"
	ComponentJournal  ComponentKind = "VJOURNAL"
	ComponentFreeBusy ComponentKind = "VFREEBUSY"
)

// PublicToken is an opaque identifier granting anonymous access to a
// shared calendar.
type PublicToken string

// CalendarHome is a principal's server-discovered root collection.
type CalendarHome struct {
	Path string
}

// Calendar is a discovered or newly created calendar collection. For
// subscriptions, Source carries the remote feed URL the server fetches
// from; the entity itself is a server-side cache of the feed, not a live
// subscription handle.
type Calendar struct {
	Path        string
	DisplayName string
	Color       string
	Order       int
	Components  []ComponentKind
	Source      string
	ReadOnly    bool
}

// ScheduleInbox is the per-principal collection receiving iTIP messages
// (RFC 6638).
type ScheduleInbox struct {
	Path string
}

// ScheduleOutbox is the per-principal collection used to submit iTIP
// requests (RFC 6638).
type ScheduleOutbox struct {
	Path string
}

// Principal is a directory entry for a user, resource or group.
type Principal struct {
	Path                  string
	DisplayName           string
	CalendarUserAddresses []string
}

// BirthdayCalendarID is the well-known path segment of the server-managed
// birthday calendar under a calendar home.
const BirthdayCalendarID = "contact_birthdays"
