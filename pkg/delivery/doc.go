// Package delivery buckets and orders scheduled cylinder deliveries for display.
//
// Categorize splits a list into upcoming, delivered, overdue and other by
// calendar day; SortByPriority floats today's and tomorrow's deliveries to
// the top, then orders same-day deliveries by status and the rest by date.
// Both take "now" explicitly and never mutate their input.
package delivery
