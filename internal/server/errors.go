package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/julianshen/repodoc/internal/docgen"
	"github.com/julianshen/repodoc/internal/source"
)

type successBody struct {
	Status string `json:"status"`
	Data   any    `json:"data"`
}

type authRequiredBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    *source.RepoRef `json:"data,omitempty"`
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("WARNING: encoding response: %v", err)
	}
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, successBody{Status: "success", Data: data})
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, source.ErrInvalidReference), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrAuthDenied):
		return http.StatusUnauthorized
	case errors.Is(err, source.ErrUpstream),
		errors.Is(err, docgen.ErrGeneration),
		errors.Is(err, docgen.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err's kind. A missing credential is
// not a failure: it is reported with 200 so the client can ask for a token.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, source.ErrAuthRequired) {
		writeAuthRequired(w, nil)
		return
	}
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("ERROR: %v", err)
		msg = "Internal Server Error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeAuthRequired(w http.ResponseWriter, ref *source.RepoRef) {
	writeJSON(w, http.StatusOK, authRequiredBody{
		Status:  "auth_required",
		Message: "Repository not found or private. Please provide a personal access token.",
		Data:    ref,
	})
}

var errBadRequest = errors.New("bad request")
