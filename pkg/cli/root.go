package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/session"
	"github.com/spf13/cobra"
)

// NewRootCommand creates the gaslink command tree around app
func NewRootCommand(app *App) *cobra.Command {
	var jsonOutput bool

	root := &cobra.Command{
		Use:           "gaslink",
		Short:         "Gas cylinder subscriptions and deliveries from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	p := &printer{json: &jsonOutput}
	root.AddCommand(
		newLoginCommand(app, p),
		newLogoutCommand(app, p),
		newWhoamiCommand(app, p),
		newPlansCommand(app, p),
		newQuoteCommand(app, p),
		newSubscriptionsCommand(app, p),
		newDeliveriesCommand(app, p),
		newDashboardCommand(app, p),
		newWatchCommand(app, p),
		newSupportCommand(app, p),
		newWalletCommand(app, p),
		newPaymentsCommand(app, p),
		newSettingsCommand(app, p),
		newAdminCommand(app, p),
	)
	return root
}

// Execute runs the CLI with ctx and returns the text to show on failure
func Execute(ctx context.Context, app *App, args []string) error {
	root := NewRootCommand(app)
	root.SetArgs(args)
	defer app.Close()
	return root.ExecuteContext(ctx)
}

// UserMessage turns a command error into the line printed to the user
func UserMessage(err error) string {
	var (
		apiErr   *client.Error
		loginErr *loginError
	)
	switch {
	case errors.As(err, &loginErr):
		return client.UserMessage(loginErr.err)
	case errors.Is(err, session.ErrNoSession):
		return "Not logged in. Run `gaslink login` first."
	case errors.Is(err, session.ErrSessionExpired):
		return "Your session has expired. Run `gaslink login` again."
	case errors.As(err, &apiErr):
		if apiErr.Kind == client.KindAPI && apiErr.Status == 401 {
			return "Your session is no longer valid. Run `gaslink login` again."
		}
		return apiErr.UserMessage()
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
