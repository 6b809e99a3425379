// Package reminders watches the user's deliveries on a cron schedule and
// notifies about the ones that are due soon or already late. A reminder is
// only sent again once its content changes.
package reminders
