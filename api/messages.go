package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.store.GetAllMessages(r.Context())
	if err != nil {
		logger.Error("Error fetching messages", "err", err)
		writeError(w, http.StatusInternalServerError, errFetchMessages)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(messages))
}

func (s *Server) handleGetMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	message, err := s.store.GetMessage(r.Context(), id)
	if err != nil {
		logger.Error("Error fetching message", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errFetchMessage)
		return
	}
	if message == nil {
		writeError(w, http.StatusNotFound, errMessageNotFound)
		return
	}
	writeJSON(w, http.StatusOK, message)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteMessage(r.Context(), id); err != nil {
		logger.Error("Error deleting message", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errDeleteMessage)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
