// Package async runs fire-and-forget background work with a timeout, panic
// recovery and logrus error reporting.
package async
