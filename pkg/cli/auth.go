package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newLoginCommand(app *App, p *printer) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				email = prompt(cmd.ErrOrStderr(), in, "Email: ")
			}
			if password == "" {
				password = prompt(cmd.ErrOrStderr(), in, "Password: ")
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			result, err := app.API.Login(cmd.Context(), email, password)
			if err != nil {
				return &loginError{err: err}
			}
			sess, err := app.Sessions.Login(cmd.Context(), result.Token, result.User)
			if err != nil {
				return err
			}

			return p.emit(cmd, sess.User, func(w io.Writer) error {
				fmt.Fprintf(w, "Logged in as %s (%s)\n", sess.User.FullName(), sess.User.Role)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when omitted)")
	return cmd
}

// loginError marks a failed login so a 401 reads as bad credentials rather
// than an expired session.
type loginError struct {
	err error
}

func (e *loginError) Error() string { return "login: " + e.err.Error() }

func (e *loginError) Unwrap() error { return e.err }

func prompt(w io.Writer, in *bufio.Reader, label string) string {
	fmt.Fprint(w, label)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func newLogoutCommand(app *App, p *printer) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCommand(app *App, p *printer) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := app.Sessions.Current(cmd.Context())
			if err != nil {
				return err
			}
			user := sess.User
			if remote {
				me, err := app.API.Me(cmd.Context())
				if err != nil {
					return err
				}
				user = *me
			}

			return p.emit(cmd, user, func(w io.Writer) error {
				tw := newTable(w)
				row(tw, "Name:", user.FullName())
				row(tw, "Email:", user.Email)
				row(tw, "Role:", user.Role)
				if !sess.ExpiresAt.IsZero() {
					row(tw, "Session expires:", sess.ExpiresAt.Local().Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Fetch the profile from the platform instead of the session")
	return cmd
}
