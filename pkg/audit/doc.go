// Package audit keeps a local trail of admin actions taken through the CLI.
//
// Each create, update or delete against users and subscriptions is written as
// one JSON line to audit.log in the configured directory. The file rotates to
// audit-<timestamp>.log once it exceeds MaxSize and only MaxFiles rotations
// are kept.
//
//	logger, err := audit.NewFileLogger(audit.DefaultFileLoggerConfig(dir))
//	...
//	err = audit.Record(ctx, logger, &audit.Event{
//		EventType:    audit.EventTypeUserDelete,
//		ResourceType: audit.ResourceTypeUser,
//		ResourceID:   id,
//	}, deleteErr)
package audit
