package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/spf13/cobra"
)

func newSubscriptionsCommand(app *App, p *printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Manage your subscriptions",
	}
	cmd.AddCommand(
		newSubscriptionsListCommand(app, p),
		newSubscriptionsCreateCommand(app, p),
		newSubscriptionActionCommand(app, p, "pause", "Pause deliveries on a subscription", app.pause),
		newSubscriptionActionCommand(app, p, "resume", "Resume a paused subscription", app.resume),
		newSubscriptionActionCommand(app, p, "cancel", "Cancel a subscription", app.cancel),
	)
	return cmd
}

func newSubscriptionsListCommand(app *App, p *printer) *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.ListSubscriptions(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return p.emit(cmd, page.Items, func(w io.Writer) error {
				return subscriptionTable(w, page.Items, false)
			})
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func newSubscriptionsCreateCommand(app *App, p *printer) *cobra.Command {
	var (
		planID  string
		sel     pricing.Selection
		freq    string
		address string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Subscribe to a plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sel.Frequency = pricing.Frequency(freq)
			plan, price, err := priceSelection(cmd, app, planID, sel)
			if err != nil {
				return err
			}

			sub, err := app.API.CreateSubscription(cmd.Context(), client.CreateSubscriptionRequest{
				PlanID:             plan.ID,
				Size:               sel.Size,
				Frequency:          sel.Frequency,
				SubscriptionPeriod: sel.Period(),
				Price:              price,
				Address:            address,
			})
			if err != nil {
				return err
			}
			return p.emit(cmd, sub, func(w io.Writer) error {
				fmt.Fprintf(w, "Subscribed to %s (%s), %s\n", plan.Name, sub.ID, money(price))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&planID, "plan", "", "Plan ID")
	cmd.Flags().StringVar(&sel.Size, "size", "", "Cylinder size, e.g. 12kg")
	cmd.Flags().StringVar(&freq, "frequency", "", "Delivery frequency")
	cmd.Flags().IntVar(&sel.SubscriptionPeriod, "period", 0, "Subscription period in months")
	cmd.Flags().StringVar(&address, "address", "", "Delivery address")
	cmd.MarkFlagRequired("plan")
	return cmd
}

type subscriptionAction func(ctx context.Context, id string) (*client.Subscription, error)

func (a *App) pause(ctx context.Context, id string) (*client.Subscription, error) {
	return a.API.PauseSubscription(ctx, id)
}

func (a *App) resume(ctx context.Context, id string) (*client.Subscription, error) {
	return a.API.ResumeSubscription(ctx, id)
}

func (a *App) cancel(ctx context.Context, id string) (*client.Subscription, error) {
	return a.API.CancelSubscription(ctx, id)
}

func newSubscriptionActionCommand(app *App, p *printer, name, short string, action subscriptionAction) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <subscription-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := action(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.emit(cmd, sub, func(w io.Writer) error {
				fmt.Fprintf(w, "Subscription %s is now %s\n", sub.ID, sub.Status)
				return nil
			})
		},
	}
}

func subscriptionTable(w io.Writer, subs []client.Subscription, withUser bool) error {
	headers := []string{"ID", "PLAN", "SIZE", "FREQUENCY", "PRICE", "STATUS", "NEXT DELIVERY"}
	if withUser {
		headers = append([]string{"ID", "CUSTOMER"}, headers[1:]...)
	}
	tw := newTable(w, headers...)
	for _, s := range subs {
		cols := []interface{}{s.ID}
		if withUser {
			cols = append(cols, customerName(s.User))
		}
		cols = append(cols, dash(s.Plan.Name()), s.Size, s.Frequency, money(s.Price), s.Status, formatDate(s.NextDeliveryDate))
		row(tw, cols...)
	}
	return tw.Flush()
}

func customerName(u client.UserRef) string {
	if u.User != nil {
		if name := u.User.FullName(); name != "" {
			return name
		}
		return u.User.Email
	}
	return dash(u.ID)
}

func addListFlags(cmd *cobra.Command, opts *client.ListOptions) {
	cmd.Flags().IntVar(&opts.Page, "page", 1, "Page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Items per page")
	cmd.Flags().StringVar(&opts.Status, "status", "", "Filter by status")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Search text")
}
