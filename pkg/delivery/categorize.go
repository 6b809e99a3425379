package delivery

import "time"

// Bucket names one partition of a delivery list
type Bucket string

const (
	BucketUpcoming  Bucket = "upcoming"
	BucketDelivered Bucket = "delivered"
	BucketOverdue   Bucket = "overdue"
	BucketOther     Bucket = "other"
)

// Buckets partitions a delivery list; every record lands in exactly one slice
type Buckets struct {
	Upcoming  []Record `json:"upcoming"`
	Delivered []Record `json:"delivered"`
	Overdue   []Record `json:"overdue"`
	Other     []Record `json:"other"`
}

// Len returns the number of records across all buckets
func (b Buckets) Len() int {
	return len(b.Upcoming) + len(b.Delivered) + len(b.Overdue) + len(b.Other)
}

// Counts returns the size of each bucket
func (b Buckets) Counts() map[Bucket]int {
	return map[Bucket]int{
		BucketUpcoming:  len(b.Upcoming),
		BucketDelivered: len(b.Delivered),
		BucketOverdue:   len(b.Overdue),
		BucketOther:     len(b.Other),
	}
}

// Classify assigns a record to a bucket. Dates compare by calendar day in
// now's location; a delivered status wins over any date.
func Classify(r Record, now time.Time) Bucket {
	today := startOfDay(now, now.Location())
	day := startOfDay(r.DeliveryDate, now.Location())

	switch {
	case r.Status == StatusDelivered:
		return BucketDelivered
	case day.Before(today) && !r.Status.Terminal():
		return BucketOverdue
	case !day.Before(today):
		return BucketUpcoming
	default:
		return BucketOther
	}
}

// Categorize partitions records into buckets, preserving input order within each
func Categorize(records []Record, now time.Time) Buckets {
	b := Buckets{
		Upcoming:  []Record{},
		Delivered: []Record{},
		Overdue:   []Record{},
		Other:     []Record{},
	}
	for _, r := range records {
		switch Classify(r, now) {
		case BucketDelivered:
			b.Delivered = append(b.Delivered, r)
		case BucketOverdue:
			b.Overdue = append(b.Overdue, r)
		case BucketUpcoming:
			b.Upcoming = append(b.Upcoming, r)
		default:
			b.Other = append(b.Other, r)
		}
	}
	return b
}
