package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dogwalk/server/internal/game"
)

const contentTypeJSON = "application/json; charset=utf-8"

// errorBody is the JSON shape of every API failure.
type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, "badRequest", "Bad request")
}

// writeMethodNotAllowed answers 405 with the verbs the route accepts.
func writeMethodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "invalidMethod", "Invalid method")
}

// writeAppError maps a command-API failure to its HTTP form. Unknown
// errors collapse to an opaque 500: internals never leak.
func writeAppError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidName), errors.Is(err, game.ErrInvalidDirection):
		writeError(w, http.StatusBadRequest, "invalidArgument", err.Error())
	case errors.Is(err, game.ErrInvalidDelta):
		writeError(w, http.StatusBadRequest, "invalidArgument", err.Error())
	case errors.Is(err, game.ErrMapNotFound):
		writeError(w, http.StatusNotFound, "mapNotFound", "Map not found")
	case errors.Is(err, game.ErrUnknownToken):
		writeError(w, http.StatusUnauthorized, "unknownToken", "Player token has not been found")
	case errors.Is(err, game.ErrTickDisabled):
		writeError(w, http.StatusBadRequest, "badRequest", "Invalid endpoint")
	default:
		writeError(w, http.StatusInternalServerError, "internalError", "Internal server error")
	}
}
