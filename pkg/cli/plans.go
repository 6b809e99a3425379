package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/spf13/cobra"
)

func newPlansCommand(app *App, p *printer) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List subscription plans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := app.Catalog.Active
			if all {
				list = app.Catalog.List
			}
			plans, err := list(cmd.Context())
			if err != nil {
				return err
			}

			return p.emit(cmd, plans, func(w io.Writer) error {
				tw := newTable(w, "ID", "NAME", "TYPE", "PRICE/KG", "ACTIVE")
				for _, plan := range plans {
					row(tw, plan.ID, plan.Name, plan.Type, money(int64(plan.PricePerKg)), plan.IsActive)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive plans")
	cmd.AddCommand(newPlanShowCommand(app, p))
	return cmd
}

func newPlanShowCommand(app *App, p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show the options a plan offers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := app.Catalog.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts := pricing.Options(plan)

			out := struct {
				Plan    *pricing.Plan       `json:"plan"`
				Options pricing.PlanOptions `json:"options"`
			}{plan, opts}
			return p.emit(cmd, out, func(w io.Writer) error {
				tw := newTable(w)
				row(tw, "Plan:", plan.Name)
				row(tw, "Type:", plan.Type)
				row(tw, "Price per kg:", money(int64(plan.PricePerKg)))
				if plan.Description != "" {
					row(tw, "Description:", plan.Description)
				}
				row(tw, "Sizes:", strings.Join(opts.Sizes, ", "))
				row(tw, "Frequencies:", joinFrequencies(opts.Frequencies))
				row(tw, "Periods (months):", joinInts(opts.Periods))
				return tw.Flush()
			})
		},
	}
}

func newQuoteCommand(app *App, p *printer) *cobra.Command {
	var (
		planID string
		sel    pricing.Selection
		freq   string
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a plan selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.Frequency = pricing.Frequency(freq)
			plan, price, err := priceSelection(cmd, app, planID, sel)
			if err != nil {
				return err
			}

			out := map[string]interface{}{
				"planId":             plan.ID,
				"size":               sel.Size,
				"frequency":          sel.Frequency,
				"subscriptionPeriod": sel.Period(),
				"price":              price,
			}
			return p.emit(cmd, out, func(w io.Writer) error {
				fmt.Fprintf(w, "%s, %s %s for %d month(s): %s\n",
					plan.Name, sel.Size, sel.Frequency, sel.Period(), money(price))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "Plan ID")
	cmd.Flags().StringVar(&sel.Size, "size", "", "Cylinder size, e.g. 12kg")
	cmd.Flags().StringVar(&freq, "frequency", "", `Delivery frequency, e.g. Weekly or "10 days"`)
	cmd.Flags().IntVar(&sel.SubscriptionPeriod, "period", 0, "Subscription period in months")
	cmd.MarkFlagRequired("plan")
	return cmd
}

// priceSelection validates sel against the plan and prices it
func priceSelection(cmd *cobra.Command, app *App, planID string, sel pricing.Selection) (*pricing.Plan, int64, error) {
	plan, err := app.Catalog.Get(cmd.Context(), planID)
	if err != nil {
		return nil, 0, err
	}
	if err := pricing.ValidateSelection(plan, sel); err != nil {
		return nil, 0, err
	}
	price, err := sel.Price(plan)
	if err != nil {
		return nil, 0, err
	}
	return plan, price, nil
}

func joinFrequencies(fs []pricing.Frequency) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
