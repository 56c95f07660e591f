package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dusk-indust/dualopinion/internal/opinion"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
	Message          string `json:"message,omitempty"`
}

// statusFor maps an engine error kind to an HTTP status.
func statusFor(kind opinion.Kind) int {
	switch kind {
	case opinion.KindInvalidInput:
		return http.StatusBadRequest
	case opinion.KindMalformedOpinion:
		return http.StatusUnprocessableEntity
	case opinion.KindInsufficientPersonas, opinion.KindNotReady:
		return http.StatusConflict
	case opinion.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError replies with the status for err's kind. Untyped errors are
// reported as internal without their text.
func writeError(w http.ResponseWriter, err error) {
	kind, ok := opinion.KindOf(err)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, statusFor(kind), errorResponse{
		Error:            string(kind),
		ErrorDescription: err.Error(),
		Message:          opinion.UserMessage(err),
	})
}

// decode reads a JSON body into T. Unknown fields are rejected.
func decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, opinion.Errorf(opinion.KindInvalidInput, "request body is empty")
		}
		return v, opinion.Wrap(opinion.KindInvalidInput, err, "request body is not valid JSON")
	}
	return v, nil
}
