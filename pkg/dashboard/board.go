package dashboard

import (
	"time"

	"github.com/platinummonkey/gaslink/pkg/delivery"
)

// Board is the delivery view shown on the customer and agent dashboards
type Board struct {
	Order       delivery.Order          `json:"order"`
	GeneratedAt time.Time               `json:"generatedAt"`
	Counts      map[delivery.Bucket]int `json:"counts"`
	Buckets     delivery.Buckets        `json:"buckets"`
	Sorted      []delivery.Record       `json:"sorted"`
	Today       []delivery.Record       `json:"today"`
	Tomorrow    []delivery.Record       `json:"tomorrow"`
}

// BuildBoard categorizes and priority-sorts records as of now. Today and
// Tomorrow hold the open (not finished, not paused) deliveries for those days
// in display order.
func BuildBoard(records []delivery.Record, order delivery.Order, now time.Time) Board {
	buckets := delivery.Categorize(records, now)
	sorted := delivery.SortByPriority(records, order, now)

	board := Board{
		Order:       order,
		GeneratedAt: now,
		Counts:      buckets.Counts(),
		Buckets:     buckets,
		Sorted:      sorted,
		Today:       []delivery.Record{},
		Tomorrow:    []delivery.Record{},
	}

	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := today.AddDate(0, 0, 1)
	for _, r := range sorted {
		if r.Status.Terminal() || r.Status == delivery.StatusPaused {
			continue
		}
		ry, rm, rd := r.DeliveryDate.In(now.Location()).Date()
		day := time.Date(ry, rm, rd, 0, 0, 0, 0, now.Location())
		switch {
		case day.Equal(today):
			board.Today = append(board.Today, r)
		case day.Equal(tomorrow):
			board.Tomorrow = append(board.Tomorrow, r)
		}
	}
	return board
}
