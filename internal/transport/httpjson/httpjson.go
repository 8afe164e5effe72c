// Package httpjson centralizes JSON response envelopes and domain error
// translation so every handler emits the same shapes.
package httpjson

import (
	"encoding/json"
	"net/http"

	httpErrors "github.com/gsm1298/event-travel-planner-backend-sub000/pkg/http-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error to its HTTP status and writes the standard
// error envelope. Internal detail never reaches the response body; callers
// log it server-side first.
func WriteError(w http.ResponseWriter, err error) {
	status := httpErrors.StatusFor(err)
	body := map[string]string{"error": httpErrors.CodeFor(err)}
	if status < http.StatusInternalServerError {
		body["error_description"] = err.Error()
	}
	WriteJSON(w, status, body)
}
