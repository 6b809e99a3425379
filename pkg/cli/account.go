package cli

import (
	"fmt"
	"io"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/spf13/cobra"
)

func newWalletCommand(app *App, p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "wallet",
		Short: "Show your wallet balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			wallet, err := app.API.WalletBalance(cmd.Context())
			if err != nil {
				return err
			}
			return p.emit(cmd, wallet, func(w io.Writer) error {
				fmt.Fprintf(w, "Balance: %s\n", money(wallet.Balance))
				return nil
			})
		},
	}
}

func newPaymentsCommand(app *App, p *printer) *cobra.Command {
	var opts client.ListOptions

	cmd := &cobra.Command{
		Use:   "payments",
		Short: "Show your payment history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.ListPayments(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return p.emit(cmd, page.Items, func(w io.Writer) error {
				tw := newTable(w, "ID", "DATE", "AMOUNT", "METHOD", "STATUS", "REFERENCE")
				for _, pay := range page.Items {
					row(tw, pay.ID, formatDate(pay.CreatedAt), money(pay.Amount), dash(pay.Method), pay.Status, dash(pay.Reference))
				}
				return tw.Flush()
			})
		},
	}
	addListFlags(cmd, &opts)
	return cmd
}

func newSettingsCommand(app *App, p *printer) *cobra.Command {
	var (
		address string
		email   bool
		sms     bool
		push    bool
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change your preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := app.API.GetSettings(cmd.Context())
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("address") || flags.Changed("email") || flags.Changed("sms") || flags.Changed("push") {
				if flags.Changed("address") {
					settings.DefaultAddress = address
				}
				if flags.Changed("email") {
					settings.Notifications.Email = email
				}
				if flags.Changed("sms") {
					settings.Notifications.SMS = sms
				}
				if flags.Changed("push") {
					settings.Notifications.Push = push
				}
				if settings, err = app.API.UpdateSettings(cmd.Context(), *settings); err != nil {
					return err
				}
			}

			return p.emit(cmd, settings, func(w io.Writer) error {
				tw := newTable(w)
				row(tw, "Default address:", dash(settings.DefaultAddress))
				row(tw, "Language:", dash(settings.Language))
				row(tw, "Timezone:", dash(settings.Timezone))
				row(tw, "Email notifications:", settings.Notifications.Email)
				row(tw, "SMS notifications:", settings.Notifications.SMS)
				row(tw, "Push notifications:", settings.Notifications.Push)
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&address, "address", "", "Set the default delivery address")
	cmd.Flags().BoolVar(&email, "email", false, "Email notifications")
	cmd.Flags().BoolVar(&sms, "sms", false, "SMS notifications")
	cmd.Flags().BoolVar(&push, "push", false, "Push notifications")
	return cmd
}
