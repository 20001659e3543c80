package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := s.store.GetAllWatchConfigs(r.Context())
	if err != nil {
		logger.Error("Error fetching configs", "err", err)
		writeError(w, http.StatusInternalServerError, errFetchConfigs)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(configs))
}

func (s *Server) handleCreateConfig(w http.ResponseWriter, r *http.Request) {
	var req createConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeError(w, http.StatusBadRequest, errs)
		return
	}

	config := req.toModel()
	if err := s.store.CreateWatchConfig(r.Context(), config); err != nil {
		logger.Error("Error creating config", "channel", config.ChannelID, "err", err)
		writeError(w, http.StatusInternalServerError, errCreateConfig)
		return
	}
	logger.Info("Watch config created", "id", config.ID, "channel", config.ChannelID, "user", config.MonitorUserID)
	writeJSON(w, http.StatusOK, config)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateConfigRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	config, err := s.store.UpdateWatchConfig(r.Context(), id, req.columns())
	if err != nil {
		logger.Error("Error updating config", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errUpdateConfig)
		return
	}
	if config == nil {
		writeError(w, http.StatusNotFound, errConfigNotFound)
		return
	}
	writeJSON(w, http.StatusOK, config)
}

func (s *Server) handleDeleteConfig(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.DeleteWatchConfig(r.Context(), id); err != nil {
		logger.Error("Error deleting config", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, errDeleteConfig)
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}
