package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// printer writes either tables or JSON depending on --json
type printer struct {
	json *bool
}

func (p *printer) wantJSON() bool {
	return p.json != nil && *p.json
}

// emit writes v as indented JSON when --json is set, otherwise calls table
func (p *printer) emit(cmd *cobra.Command, v interface{}, table func(w io.Writer) error) error {
	out := cmd.OutOrStdout()
	if p.wantJSON() {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	return table(out)
}

// newTable returns a tabwriter aligned the same way for every listing
func newTable(w io.Writer, headers ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if len(headers) > 0 {
		fmt.Fprintln(tw, strings.Join(headers, "\t"))
	}
	return tw
}

func row(tw *tabwriter.Writer, cols ...interface{}) {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

var thousand = decimal.NewFromInt(1000)

// money formats a whole-naira amount with thousands separators
func money(amount int64) string {
	d := decimal.NewFromInt(amount)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	var groups []string
	for d.GreaterThanOrEqual(thousand) {
		q, r := d.QuoRem(thousand, 0)
		groups = append([]string{fmt.Sprintf("%03d", r.IntPart())}, groups...)
		d = q
	}
	groups = append([]string{d.String()}, groups...)
	return "NGN " + sign + strings.Join(groups, ",")
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}

func formatDay(t time.Time) string {
	return t.Format("Mon 02 Jan")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func deliveryTable(w io.Writer, records []delivery.Record) error {
	tw := newTable(w, "ID", "DATE", "STATUS", "SIZE", "ADDRESS")
	for _, r := range records {
		row(tw, r.ID, formatDay(r.DeliveryDate), r.Status, dash(r.CylinderSize), dash(r.Address))
	}
	return tw.Flush()
}

// jsonLine writes v as a single JSON line, for streamed output
func jsonLine(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}
