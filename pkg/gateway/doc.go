// Package gateway serves a small HTTP API in front of the platform: price
// quotes against cached plans, the priority-sorted delivery board and the
// dashboard overview.
//
// The gateway holds no session. Each request's "Authorization: Bearer" token
// is forwarded to the platform through a per-request client, and every
// response uses the platform envelope:
//
//	GET  /api/v1/plans
//	GET  /api/v1/plans/{id}/options
//	GET  /api/v1/quote?planId=&size=&frequency=&period=
//	POST /api/v1/quote
//	GET  /api/v1/deliveries/board?order=asc|desc&status=&search=
//	GET  /api/v1/dashboard?order=asc|desc
//	GET  /healthz
//	GET  /metrics
package gateway
