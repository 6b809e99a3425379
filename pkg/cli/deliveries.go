package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/delivery"
	"github.com/platinummonkey/gaslink/pkg/reminders"
	"github.com/platinummonkey/gaslink/pkg/session"
	"github.com/platinummonkey/gaslink/pkg/webhooks"
	"github.com/spf13/cobra"
)

func newDeliveriesCommand(app *App, p *printer) *cobra.Command {
	var (
		order  string
		filter delivery.Filter
		status string
	)

	cmd := &cobra.Command{
		Use:   "deliveries",
		Short: "Show your deliveries, most urgent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := delivery.ParseOrder(order)
			if err != nil {
				return err
			}
			filter.Status = delivery.Status(status)

			board, err := app.dashboard().DeliveryBoard(cmd.Context(), filter, o, app.Now())
			if err != nil {
				return err
			}
			return p.emit(cmd, board, func(w io.Writer) error {
				fmt.Fprintf(w, "Upcoming: %d  Overdue: %d  Delivered: %d  Other: %d\n\n",
					board.Counts[delivery.BucketUpcoming], board.Counts[delivery.BucketOverdue],
					board.Counts[delivery.BucketDelivered], board.Counts[delivery.BucketOther])
				return deliveryTable(w, board.Sorted)
			})
		},
	}
	cmd.Flags().StringVar(&order, "order", string(delivery.OrderAsc), "Date order after today and tomorrow (asc|desc)")
	cmd.Flags().StringVar(&status, "status", "", "Only show deliveries with this status")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search ID, address, size and notes")
	return cmd
}

func newDashboardCommand(app *App, p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summary of your account and upcoming deliveries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := app.dashboard().Overview(cmd.Context(), delivery.OrderAsc, app.Now())
			if err != nil {
				return err
			}
			return p.emit(cmd, ov, func(w io.Writer) error {
				tw := newTable(w)
				row(tw, "Active subscriptions:", ov.Stats.ActiveSubscriptions)
				row(tw, "Pending deliveries:", ov.Stats.PendingDeliveries)
				row(tw, "Completed deliveries:", ov.Stats.CompletedDeliveries)
				row(tw, "Total spent:", money(ov.Stats.TotalSpent))
				row(tw, "Wallet balance:", money(ov.Stats.WalletBalance))
				row(tw, "Next delivery:", formatDate(ov.Stats.NextDeliveryDate))
				if err := tw.Flush(); err != nil {
					return err
				}

				for _, section := range []struct {
					title   string
					records []delivery.Record
				}{
					{"Today", ov.Board.Today},
					{"Tomorrow", ov.Board.Tomorrow},
				} {
					if len(section.records) == 0 {
						continue
					}
					fmt.Fprintf(w, "\n%s\n", section.title)
					if err := deliveryTable(w, section.records); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newWatchCommand(app *App, p *printer) *cobra.Command {
	var (
		schedule      string
		once          bool
		webhookURL    string
		webhookSecret string
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Remind me about deliveries due soon or overdue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if schedule == "" {
				schedule = app.Config.WatchSchedule
			}
			if !cmd.Flags().Changed("webhook") {
				webhookURL = app.Config.ReminderWebhook.URL
			}
			if !cmd.Flags().Changed("webhook-secret") {
				webhookSecret = app.Config.ReminderWebhook.Secret
			}

			out := cmd.OutOrStdout()
			var hook *webhooks.Notifier
			if webhookURL != "" {
				hook = webhooks.NewNotifier(webhookURL, webhookSecret, webhooks.WithLogger(app.Logger))
			}
			notify := reminders.NotifierFunc(func(ctx context.Context, r reminders.Reminder) error {
				if err := printReminder(out, p, r); err != nil {
					return err
				}
				if hook != nil {
					return hook.Notify(ctx, r)
				}
				return nil
			})
			watcher := reminders.NewWatcher(app.dashboard(), notify,
				reminders.WithSchedule(schedule),
				reminders.WithLogger(app.Logger),
				reminders.WithClock(app.Now),
			)

			if once {
				r, err := watcher.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				if r.Empty() {
					fmt.Fprintln(out, "Nothing due.")
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if fs, ok := app.Store.(*session.FileStore); ok {
				go watchSession(ctx, app, fs, watcher, out, p)
			}
			fmt.Fprintf(out, "Watching deliveries (%s). Press Ctrl+C to stop.\n", schedule)
			return watcher.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&schedule, "schedule", "", "Cron schedule (default from GASLINK_WATCH_SCHEDULE)")
	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit")
	cmd.Flags().StringVar(&webhookURL, "webhook", "", "Also POST reminders to this URL (default from GASLINK_REMINDER_WEBHOOK_URL)")
	cmd.Flags().StringVar(&webhookSecret, "webhook-secret", "", "HMAC secret for signing webhook payloads")
	return cmd
}

// watchSession rechecks deliveries when another process logs in or out.
// Bursts of file events start overlapping checks; only the latest prints.
func watchSession(ctx context.Context, app *App, fs *session.FileStore, watcher *reminders.Watcher, out io.Writer, p *printer) {
	err := fs.Watch(ctx, func(sess *session.Session, err error) {
		app.Sessions.Invalidate()
		if err != nil || sess == nil {
			fmt.Fprintln(out, "Session ended; reminders paused until you log in again.")
			return
		}

		go func() {
			checkCtx, ticket, done := app.Sequencer.Begin(ctx, "watch")
			defer done()
			r, err := watcher.Check(checkCtx)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					app.Logger.WithError(err).Warn("Delivery check after session change failed")
				}
				return
			}
			err = app.Sequencer.Apply(ticket, func() {
				fmt.Fprintf(out, "Logged in as %s.\n", sess.User.FullName())
				printReminder(out, p, r)
			})
			if errors.Is(err, client.ErrStale) {
				app.Logger.Debug("Superseded delivery check dropped")
			}
		}()
	})
	if err != nil {
		app.Logger.WithError(err).Warn("Session watch stopped")
	}
}

func printReminder(w io.Writer, p *printer, r reminders.Reminder) error {
	if p.wantJSON() {
		return jsonLine(w, r)
	}
	fmt.Fprintf(w, "\n[%s] Deliveries needing attention\n", r.CheckedAt.Format("15:04"))
	for _, line := range reminders.Lines(r) {
		fmt.Fprintln(w, line)
	}
	return nil
}
