// Package httputil provides HTTP handler utilities for consistent envelope
// responses, JSON decoding, request parsing and middleware.
package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the platform response shape shared by the upstream API and the gateway
type Envelope struct {
	Success    bool        `json:"success"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message,omitempty"`
	Pagination interface{} `json:"pagination,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful envelope (200 OK) carrying data
func WriteSuccess(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// WriteSuccessMessage writes a successful envelope with a message
func WriteSuccessMessage(w http.ResponseWriter, message string, data interface{}) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

// WritePage writes a successful envelope with pagination metadata
func WritePage(w http.ResponseWriter, data, pagination interface{}) error {
	return WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: pagination})
}

// WriteFailure writes a failed envelope with the given status code
func WriteFailure(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

// WriteError writes a failed envelope using the error text
func WriteError(w http.ResponseWriter, status int, err error) {
	WriteFailure(w, status, err.Error())
}

// WriteBadRequest writes a bad request error (400)
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusBadRequest, message)
}

// WriteValidationError writes a validation error (422) with the offending field
func WriteValidationError(w http.ResponseWriter, field, message string) {
	WriteJSON(w, http.StatusUnprocessableEntity, Envelope{
		Success: false,
		Message: message,
		Data:    map[string]string{"field": field},
	})
}

// WriteUnauthorized writes an unauthorized error (401)
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusUnauthorized, message)
}

// WriteNotFoundError writes a not found error (404)
func WriteNotFoundError(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusNotFound, message)
}

// WriteBadGateway writes an upstream failure (502)
func WriteBadGateway(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusBadGateway, message)
}

// WriteInternalError writes an internal server error (500). The error text is
// not exposed to the caller.
func WriteInternalError(w http.ResponseWriter) {
	WriteFailure(w, http.StatusInternalServerError, "Something went wrong, please try again")
}
