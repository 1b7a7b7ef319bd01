package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"story_adventure/apperr"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorBody{Error: kind, Message: message})
}

func (h *Handler) logger(r *http.Request) logrus.FieldLogger {
	log := h.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return log.WithField("request_id", RequestIDFrom(r.Context()))
}

// fail maps err onto the error response of its kind.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.Status(err)
	entry := h.logger(r).WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Info("request rejected")
	}
	writeError(w, status, string(apperr.KindOf(err)), apperr.Message(err))
}

func setNoCache(h http.Header) {
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}
