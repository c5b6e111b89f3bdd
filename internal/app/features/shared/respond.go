// Package shared holds the JSON plumbing every feature router uses:
// encoding responses, decoding request bodies, and mapping classified
// service errors to HTTP status codes.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dalemusser/minutehub/internal/app/system/faults"
	"go.uber.org/zap"
)

// maxBodyBytes caps JSON request bodies; every payload in this API is a
// few short fields.
const maxBodyBytes = 64 << 10

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes v with the given status. A nil v writes just the
// status (use http.StatusNoContent for empty successes).
func WriteJSON(w http.ResponseWriter, status int, v any) {
	if v == nil {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads the request body into v. Unknown fields are rejected
// so client typos fail loudly.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return faults.Wrap(faults.Validation, err)
	}
	return nil
}

// StatusForKind maps a fault kind to its HTTP status.
func StatusForKind(k faults.Kind) int {
	switch k {
	case faults.Validation:
		return http.StatusBadRequest
	case faults.Permission:
		return http.StatusForbidden
	case faults.NotFound:
		return http.StatusNotFound
	case faults.Conflict:
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

// WriteError maps a classified error to a status and JSON body.
// Dependency failures are logged with the full chain but answered with a
// generic message; the other kinds carry their message to the client
// (stale clients recover by re-reading).
func WriteError(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := faults.KindOf(err)
	status := StatusForKind(kind)
	msg := err.Error()
	if kind == faults.Dependency {
		log.Error("request failed on a dependency", zap.Error(err))
		msg = "a backing service failed; try again"
	}
	WriteJSON(w, status, errorResponse{Error: msg})
}

// ErrBadID is returned by PathID for unparseable ids.
var ErrBadID = errors.New("malformed id in URL")
