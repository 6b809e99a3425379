package cli

import (
	"fmt"
	"io"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/spf13/cobra"
)

func newSupportCommand(app *App, p *printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "support",
		Short: "Support tickets",
	}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List your support tickets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.ListTickets(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return p.emit(cmd, page.Items, func(w io.Writer) error {
				tw := newTable(w, "ID", "SUBJECT", "CATEGORY", "PRIORITY", "STATUS", "OPENED")
				for _, t := range page.Items {
					row(tw, t.ID, t.Subject, dash(t.Category), dash(t.Priority), t.Status, formatDate(t.CreatedAt))
				}
				return tw.Flush()
			})
		},
	}
	addListFlags(list, &opts)

	var req client.CreateTicketRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a support ticket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if req.Subject == "" || req.Message == "" {
				return fmt.Errorf("--subject and --message are required")
			}
			ticket, err := app.API.CreateTicket(cmd.Context(), req)
			if err != nil {
				return err
			}
			return p.emit(cmd, ticket, func(w io.Writer) error {
				fmt.Fprintf(w, "Opened ticket %s\n", ticket.ID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&req.Subject, "subject", "", "Ticket subject")
	create.Flags().StringVar(&req.Message, "message", "", "Describe the problem")
	create.Flags().StringVar(&req.Category, "category", "", "Category, e.g. delivery or billing")
	create.Flags().StringVar(&req.Priority, "priority", "", "low, medium or high")

	cmd.AddCommand(list, create)
	return cmd
}
