package delivery

import (
	"slices"
	"time"
)

// SortByPriority returns a stably sorted copy of records for display.
//
// Rules, first match wins:
//  1. a delivery dated today precedes one that is not
//  2. a delivery dated tomorrow precedes one that is not
//  3. deliveries on the same calendar day order by status priority
//  4. otherwise by date, ascending for OrderAsc and descending for anything else
//
// Rules 1 and 2 hold for both orders, so today stays on top even when the
// caller asks for furthest-first.
func SortByPriority(records []Record, order Order, now time.Time) []Record {
	loc := now.Location()
	today := startOfDay(now, loc)
	tomorrow := today.AddDate(0, 0, 1)

	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		aDay := startOfDay(a.DeliveryDate, loc)
		bDay := startOfDay(b.DeliveryDate, loc)

		if c := preferDay(aDay, bDay, today); c != 0 {
			return c
		}
		if c := preferDay(aDay, bDay, tomorrow); c != 0 {
			return c
		}
		if aDay.Equal(bDay) {
			return a.Status.Priority() - b.Status.Priority()
		}

		c := a.DeliveryDate.Compare(b.DeliveryDate)
		if order == OrderAsc {
			return c
		}
		return -c
	})
	return sorted
}

// preferDay ranks whichever of a and b falls on target first
func preferDay(a, b, target time.Time) int {
	aOn, bOn := a.Equal(target), b.Equal(target)
	switch {
	case aOn && !bOn:
		return -1
	case bOn && !aOn:
		return 1
	default:
		return 0
	}
}
