/*
Package client is a CalDAV client facade: it owns a single session to a
DAV server, discovers the resources the server advertises and exposes
typed operations to create calendar collections and look up principals.

# Basic Usage

Construct one Client per process and hand it to every consumer:

	cl, err := client.New(client.Options{
		RootURL:        "https://cloud.example.com/remote.php/dav/",
		HeaderProvider: client.StaticHeaderProvider(token, "On"),
	})
	if err != nil {
		log.Fatal(err)
	}
	if err := cl.InitializeForUserView(ctx); err != nil {
		log.Fatal(err)
	}
	calendars, err := cl.FindAllCalendars(ctx)

# Session Modes

A session is bootstrapped exactly once, in one of two modes:
InitializeForUserView discovers the authenticated principal and its
calendar home; InitializeForPublicView roots the session at the public
calendar home without any principal. Repeating an initializer returns
the first bootstrap's outcome; mixing modes fails with ErrModeConflict.
Operations invoked before any initializer bootstrap in user mode.

# Error Handling

Transport and bootstrap failures surface as *ConnectionError, rejected
collection creates as *CollectionCreateError, principal lookups that
miss as ErrPrincipalNotFound, and user-only operations on a public
session as ErrNotAuthenticated. Public-token resolution is the one
deliberate exception: tokens the server rejects are silently omitted
from the batch result so one stale share never hides its siblings.
Nothing is retried at this layer.
*/
package client
