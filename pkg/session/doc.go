// Package session holds the authenticated user's token and profile.
//
// A single Service is created at startup and injected wherever the token is
// needed. It implements oauth2.TokenSource, so the API client reads the token
// through it on every request:
//
//	store := session.NewFileStore(cfg.Session.FilePath)
//	sessions := session.NewService(store, session.WithLogger(logger))
//	api := client.New(cfg.API.BaseURL, client.WithTokenSource(sessions))
//
// Stores:
//
//   - MemoryStore keeps the session for the life of the process.
//   - FileStore writes YAML with mode 0600 and can Watch for logins and
//     logouts made by other processes.
//   - RedisStore shares the session between hosts; the key expires with the token.
//
// Token expiry is read from the JWT exp claim without verification. The
// platform verifies tokens; this package only needs to know when to stop
// sending one.
package session
