// Package client is a typed client for the gas delivery platform REST API.
//
// Every response is wrapped in the platform envelope
//
//	{"success": true, "data|user|subscription|...": payload, "message": "...", "pagination": {...}}
//
// and every failure is returned as *Error. Error.Kind separates transport
// failures (KindNetwork) from platform rejections (KindAPI); UserMessage
// returns the text to show the user, passing platform messages through
// verbatim.
//
// # Authentication
//
// Requests carry "Authorization: Bearer <token>" from an oauth2.TokenSource.
// The session service implements one:
//
//	c := client.New(cfg.API.BaseURL, client.WithTokenSource(sessions))
//
// # Overlapping requests
//
// Screens that refetch on user input use a Sequencer so that only the latest
// request for a screen updates it:
//
//	ctx, ticket, done := seq.Begin(ctx, "deliveries")
//	defer done()
//	page, err := c.MyDeliveries(ctx, opts)
//	if err != nil {
//		return err
//	}
//	return seq.Apply(ticket, func() { screen.Show(page) })
package client
