// Package webhooks delivers delivery reminders to an HTTP endpoint.
//
// Each reminder is posted as an Event with X-Gaslink-Event and
// X-Gaslink-Event-ID headers. When a secret is configured the body is signed
// and the signature sent as X-Gaslink-Signature ("sha256=<hex>"); receivers
// check it with VerifySignature. Network errors, 429 and 5xx responses are
// retried with exponential backoff; other statuses fail immediately.
package webhooks
