// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// Every gateway response uses the platform envelope:
//
//	{"success": true, "data": {...}, "message": "...", "pagination": {...}}
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, board)
//	httputil.WritePage(w, items, pagination)
//	httputil.WriteBadRequest(w, "invalid order")
//	httputil.WriteValidationError(w, "size", "size is required")
//	httputil.WriteBadGateway(w, apiErr.UserMessage())
//
// # Request Parsing
//
//	var sel pricing.Selection
//	if !httputil.ParseJSONOrError(w, r, &sel) {
//		return // Error response already written
//	}
//	page, err := httputil.ParseQueryInt(r, "page", 1)
//
// # Middleware
//
//	handler := httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.BearerMiddleware,
//	)(router)
package httputil
