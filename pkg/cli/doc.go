// Package cli implements the gaslink command-line client.
//
// # Overview
//
// Customers use it to price and manage gas cylinder subscriptions and to keep
// an eye on upcoming deliveries. Admins use the admin subcommands to manage
// users and every customer's subscriptions.
//
// # Session
//
// `gaslink login` stores the token in the session store chosen by
// GASLINK_SESSION_STORE (file by default, memory or redis). Every other
// command reads the token from there:
//
//	gaslink login --email ada@example.com
//	gaslink whoami
//	gaslink logout
//
// # Customer commands
//
//	gaslink plans
//	gaslink plans show <plan-id>
//	gaslink quote --plan <plan-id> --size 12kg --frequency Bi-weekly --period 2
//	gaslink subscriptions list --status active
//	gaslink subscriptions create --plan <plan-id> --size 12kg --frequency Weekly
//	gaslink subscriptions pause <subscription-id>
//	gaslink deliveries --order desc --search lekki
//	gaslink dashboard
//	gaslink watch --schedule "@every 30m"
//	gaslink support create --subject "Late delivery" --message "..."
//	gaslink wallet
//	gaslink payments
//	gaslink settings --sms=false
//
// # Admin commands
//
//	gaslink admin users list --search ada
//	gaslink admin users edit <user-id> --role agent
//	gaslink admin subscriptions edit <subscription-id> --status paused
//	gaslink admin subscriptions delete <subscription-id> --yes
//
// Every listing accepts --json for machine-readable output.
package cli
