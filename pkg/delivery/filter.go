package delivery

import "strings"

// Filter narrows a delivery list on the client side
type Filter struct {
	Status Status
	Search string
}

// Apply returns the records matching f. Search is a case-insensitive substring
// match against the ID, address, cylinder size and notes.
func (f Filter) Apply(records []Record) []Record {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if search != "" && !matches(r, search) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func matches(r Record, needle string) bool {
	for _, field := range []string{r.ID, r.Address, r.CylinderSize, r.Notes} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
