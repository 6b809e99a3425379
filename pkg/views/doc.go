// Package views models the management screens (subscriptions, users) as a
// small state machine instead of independent show/hide flags.
//
// A screen is in exactly one Mode. Edit and Details carry the selected item,
// and moves between forms are rejected with ErrInvalidTransition:
//
//	screen := views.NewScreen[client.Subscription]()
//	_ = screen.Details(&sub)
//	_ = screen.Edit(&sub)
//	err := screen.Create() // ErrInvalidTransition: edit -> create
package views
