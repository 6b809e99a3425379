package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/platinummonkey/gaslink/pkg/audit"
	"github.com/platinummonkey/gaslink/pkg/client"
	"github.com/platinummonkey/gaslink/pkg/pricing"
	"github.com/platinummonkey/gaslink/pkg/views"
	"github.com/spf13/cobra"
)

func newAdminCommand(app *App, p *printer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Administer users and subscriptions",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.setup(cmd.Context()); err != nil {
				return err
			}
			return app.requireAdmin(cmd.Context())
		},
	}
	cmd.AddCommand(newAdminUsersCommand(app, p), newAdminSubscriptionsCommand(app, p))
	return cmd
}

func newAdminUsersCommand(app *App, p *printer) *cobra.Command {
	cmd := &cobra.Command{Use: "users", Short: "Manage user accounts"}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.AdminListUsers(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return p.emit(cmd, page.Items, func(w io.Writer) error {
				tw := newTable(w, "ID", "NAME", "EMAIL", "ROLE", "ACTIVE")
				for _, u := range page.Items {
					row(tw, u.ID, dash(u.FullName()), u.Email, u.Role, u.IsActive)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(w, "\nPage %d of %d (%d users)\n", page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
				return nil
			})
		},
	}
	addListFlags(list, &opts)

	show := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.API.AdminGetUser(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.emit(cmd, user, func(w io.Writer) error { return userDetails(w, user) })
		},
	}

	var newUser client.CreateUserRequest
	var role string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			newUser.Role = client.Role(role)
			if newUser.Email == "" || newUser.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}
			user, err := app.API.AdminCreateUser(cmd.Context(), newUser)
			event := &audit.Event{
				EventType:    audit.EventTypeUserCreate,
				ResourceType: audit.ResourceTypeUser,
				Changes:      map[string]string{"email": newUser.Email, "role": role},
			}
			if user != nil {
				event.ResourceID = user.ID
			}
			app.recordAudit(cmd.Context(), event, err)
			if err != nil {
				return err
			}
			return p.emit(cmd, user, func(w io.Writer) error {
				fmt.Fprintf(w, "Created user %s (%s)\n", user.ID, user.Email)
				return nil
			})
		},
	}
	create.Flags().StringVar(&newUser.FirstName, "first-name", "", "First name")
	create.Flags().StringVar(&newUser.LastName, "last-name", "", "Last name")
	create.Flags().StringVar(&newUser.Email, "email", "", "Email")
	create.Flags().StringVar(&newUser.Phone, "phone", "", "Phone number")
	create.Flags().StringVar(&newUser.Password, "password", "", "Initial password")
	create.Flags().StringVar(&role, "role", string(client.RoleCustomer), "customer, agent or admin")

	var (
		editRole   string
		editActive bool
		editPhone  string
	)
	edit := &cobra.Command{
		Use:   "edit <user-id>",
		Short: "Change a user's role, phone or active flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var req client.UpdateUserRequest
			if cmd.Flags().Changed("role") {
				r := client.Role(editRole)
				req.Role = &r
			}
			if cmd.Flags().Changed("active") {
				req.IsActive = &editActive
			}
			if cmd.Flags().Changed("phone") {
				req.Phone = &editPhone
			}

			screen := views.NewScreen[client.User]()
			user, err := editFlow(screen,
				func() (*client.User, error) { return app.API.AdminGetUser(ctx, args[0]) },
				func(u *client.User) (*client.User, error) {
					saved, err := app.API.AdminUpdateUser(ctx, u.ID, req)
					app.recordAudit(ctx, &audit.Event{
						EventType:    audit.EventTypeUserUpdate,
						ResourceType: audit.ResourceTypeUser,
						ResourceID:   u.ID,
						Changes:      req,
					}, err)
					return saved, err
				},
				req != client.UpdateUserRequest{},
			)
			if err != nil {
				return err
			}
			return p.emit(cmd, user, func(w io.Writer) error { return userDetails(w, user) })
		},
	}
	edit.Flags().StringVar(&editRole, "role", "", "New role")
	edit.Flags().BoolVar(&editActive, "active", true, "Whether the account may log in")
	edit.Flags().StringVar(&editPhone, "phone", "", "New phone number")

	del := deleteCommand("user", func(cmd *cobra.Command, id string) error {
		err := app.API.AdminDeleteUser(cmd.Context(), id)
		app.recordAudit(cmd.Context(), &audit.Event{
			EventType:    audit.EventTypeUserDelete,
			ResourceType: audit.ResourceTypeUser,
			ResourceID:   id,
		}, err)
		return err
	})

	cmd.AddCommand(list, show, create, edit, del)
	return cmd
}

func newAdminSubscriptionsCommand(app *App, p *printer) *cobra.Command {
	cmd := &cobra.Command{Use: "subscriptions", Aliases: []string{"subs"}, Short: "Manage all subscriptions"}

	var opts client.ListOptions
	list := &cobra.Command{
		Use:   "list",
		Short: "List subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := app.API.AdminListSubscriptions(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return p.emit(cmd, page.Items, func(w io.Writer) error {
				return subscriptionTable(w, page.Items, true)
			})
		},
	}
	addListFlags(list, &opts)
	list.Flags().StringVar(&opts.SortBy, "sort-by", "", "Sort field")
	list.Flags().StringVar(&opts.SortOrder, "sort-order", "", "asc or desc")

	show := &cobra.Command{
		Use:   "show <subscription-id>",
		Short: "Show a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := app.API.AdminGetSubscription(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return p.emit(cmd, sub, func(w io.Writer) error { return subscriptionDetails(w, sub) })
		},
	}

	var (
		createReq client.AdminSubscriptionRequest
		createFq  string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a subscription for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if createReq.UserID == "" {
				return fmt.Errorf("--user is required")
			}
			sel := pricing.Selection{Size: createReq.Size, Frequency: pricing.Frequency(createFq), SubscriptionPeriod: createReq.SubscriptionPeriod}
			plan, price, err := priceSelection(cmd, app, createReq.PlanID, sel)
			if err != nil {
				return err
			}
			createReq.PlanID = plan.ID
			createReq.Frequency = sel.Frequency
			createReq.SubscriptionPeriod = sel.Period()
			createReq.Price = price

			sub, err := app.API.AdminCreateSubscription(cmd.Context(), createReq)
			event := &audit.Event{
				EventType:    audit.EventTypeSubscriptionCreate,
				ResourceType: audit.ResourceTypeSubscription,
				Changes:      createReq,
			}
			if sub != nil {
				event.ResourceID = sub.ID
			}
			app.recordAudit(cmd.Context(), event, err)
			if err != nil {
				return err
			}
			return p.emit(cmd, sub, func(w io.Writer) error {
				fmt.Fprintf(w, "Created subscription %s, %s\n", sub.ID, money(price))
				return nil
			})
		},
	}
	create.Flags().StringVar(&createReq.UserID, "user", "", "Customer user ID")
	create.Flags().StringVar(&createReq.PlanID, "plan", "", "Plan ID")
	create.Flags().StringVar(&createReq.Size, "size", "", "Cylinder size")
	create.Flags().StringVar(&createFq, "frequency", "", "Delivery frequency")
	create.Flags().IntVar(&createReq.SubscriptionPeriod, "period", 0, "Subscription period in months")
	create.Flags().StringVar(&createReq.Address, "address", "", "Delivery address")

	var (
		status  string
		size    string
		address string
		next    string
	)
	edit := &cobra.Command{
		Use:   "edit <subscription-id>",
		Short: "Change a subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var req client.UpdateSubscriptionRequest
			if cmd.Flags().Changed("status") {
				s := client.SubscriptionStatus(status)
				req.Status = &s
			}
			if cmd.Flags().Changed("size") {
				req.Size = &size
			}
			if cmd.Flags().Changed("address") {
				req.Address = &address
			}
			if cmd.Flags().Changed("next-delivery") {
				t, err := time.ParseInLocation("2006-01-02", next, time.Local)
				if err != nil {
					return fmt.Errorf("--next-delivery must be YYYY-MM-DD: %w", err)
				}
				req.NextDeliveryDate = &t
			}

			screen := views.NewScreen[client.Subscription]()
			sub, err := editFlow(screen,
				func() (*client.Subscription, error) { return app.API.AdminGetSubscription(ctx, args[0]) },
				func(s *client.Subscription) (*client.Subscription, error) {
					// a new size changes the quote; keep the stored price in step
					if req.Size != nil {
						sel := pricing.Selection{Size: *req.Size, Frequency: s.Frequency, SubscriptionPeriod: s.SubscriptionPeriod}
						_, price, err := priceSelection(cmd, app, s.Plan.ID, sel)
						if err != nil {
							return nil, err
						}
						req.Price = &price
					}
					saved, err := app.API.AdminUpdateSubscription(ctx, s.ID, req)
					app.recordAudit(ctx, &audit.Event{
						EventType:    audit.EventTypeSubscriptionUpdate,
						ResourceType: audit.ResourceTypeSubscription,
						ResourceID:   s.ID,
						Changes:      req,
					}, err)
					return saved, err
				},
				req != client.UpdateSubscriptionRequest{},
			)
			if err != nil {
				return err
			}
			return p.emit(cmd, sub, func(w io.Writer) error { return subscriptionDetails(w, sub) })
		},
	}
	edit.Flags().StringVar(&status, "status", "", "active, paused, cancelled, pending or expired")
	edit.Flags().StringVar(&size, "size", "", "Cylinder size")
	edit.Flags().StringVar(&address, "address", "", "Delivery address")
	edit.Flags().StringVar(&next, "next-delivery", "", "Next delivery date (YYYY-MM-DD)")

	del := deleteCommand("subscription", func(cmd *cobra.Command, id string) error {
		err := app.API.AdminDeleteSubscription(cmd.Context(), id)
		app.recordAudit(cmd.Context(), &audit.Event{
			EventType:    audit.EventTypeSubscriptionDelete,
			ResourceType: audit.ResourceTypeSubscription,
			ResourceID:   id,
		}, err)
		return err
	})

	cmd.AddCommand(list, show, create, edit, del)
	return cmd
}

// editFlow loads an item into the details view, and when changed is set moves
// to the edit form and saves. A failed save leaves the screen in edit mode.
func editFlow[T any](screen *views.Screen[T], load func() (*T, error), save func(*T) (*T, error), changed bool) (*T, error) {
	item, err := load()
	if err != nil {
		return nil, err
	}
	if err := screen.Details(item); err != nil {
		return nil, err
	}
	if !changed {
		return item, nil
	}

	if err := screen.Edit(item); err != nil {
		return nil, err
	}
	current, _ := screen.Selected()
	saved, err := save(&current)
	if err != nil {
		return nil, err
	}
	if err := screen.Details(saved); err != nil {
		return nil, err
	}
	return saved, nil
}

func deleteCommand(kind string, del func(cmd *cobra.Command, id string) error) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   fmt.Sprintf("delete <%s-id>", kind),
		Short: fmt.Sprintf("Delete a %s", kind),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				answer := prompt(cmd.ErrOrStderr(), bufio.NewReader(cmd.InOrStdin()),
					fmt.Sprintf("Delete %s %s? [y/N] ", kind, args[0]))
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}
			if err := del(cmd, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", kind, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func userDetails(w io.Writer, u *client.User) error {
	tw := newTable(w)
	row(tw, "ID:", u.ID)
	row(tw, "Name:", dash(u.FullName()))
	row(tw, "Email:", u.Email)
	row(tw, "Phone:", dash(u.Phone))
	row(tw, "Role:", u.Role)
	row(tw, "Active:", u.IsActive)
	row(tw, "Created:", formatDate(u.CreatedAt))
	return tw.Flush()
}

func subscriptionDetails(w io.Writer, s *client.Subscription) error {
	tw := newTable(w)
	row(tw, "ID:", s.ID)
	row(tw, "Customer:", customerName(s.User))
	row(tw, "Plan:", dash(s.Plan.Name()))
	row(tw, "Size:", s.Size)
	row(tw, "Frequency:", s.Frequency)
	row(tw, "Period:", fmt.Sprintf("%d month(s)", s.SubscriptionPeriod))
	row(tw, "Price:", money(s.Price))
	row(tw, "Status:", s.Status)
	row(tw, "Address:", dash(s.Address))
	row(tw, "Start:", formatDate(s.StartDate))
	row(tw, "End:", formatDate(s.EndDate))
	row(tw, "Next delivery:", formatDate(s.NextDeliveryDate))
	return tw.Flush()
}
