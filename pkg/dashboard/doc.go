// Package dashboard assembles the dashboard home screen and the delivery board
// from platform calls. BuildBoard is pure and is shared by the gateway, the
// CLI and the reminder watcher.
package dashboard
