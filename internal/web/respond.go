package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"league-app/internal/league"

	"github.com/rs/zerolog/hlog"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps engine codes to statuses. Anything without a code is an
// infrastructure failure and is logged rather than shown.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := league.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case league.CodeInvalidArgument:
		status = http.StatusBadRequest
	case league.CodeNotFound:
		status = http.StatusNotFound
	case league.CodeConsistency:
		status = http.StatusConflict
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		code, msg = "INTERNAL", http.StatusText(status)
	}
	writeJSON(w, status, errorResponse{Code: string(code), Error: msg})
}

func badRequest(w http.ResponseWriter, format string, args ...any) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Code: string(league.CodeInvalidArgument), Error: fmt.Sprintf(format, args...)})
}

// decode reads a JSON body into dst. An empty body leaves dst untouched.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body: %v", err)
		return false
	}
	return true
}
