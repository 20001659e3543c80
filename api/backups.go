package api

import (
	"context"
	"net/http"
)

func (s *Server) handleListBackups(w http.ResponseWriter, r *http.Request) {
	backups, err := s.store.GetAllBackups(r.Context())
	if err != nil {
		logger.Error("Error fetching backups", "err", err)
		writeError(w, http.StatusInternalServerError, errFetchBackups)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(backups))
}

// handleTriggerBackup runs a digest inline and returns its result as is.
// The run is detached from the request so a closed tab does not abort it
// between posts.
func (s *Server) handleTriggerBackup(w http.ResponseWriter, r *http.Request) {
	if s.digest == nil {
		writeError(w, http.StatusInternalServerError, errTriggerBackup)
		return
	}
	logger.Info("Manual backup triggered", "remote", r.RemoteAddr)
	res := s.digest.Run(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	var resp botStatusResponse
	if s.bot != nil {
		status := s.bot.Status()
		resp.Connected = status.Connected
		resp.Username = status.AccountName
	}
	if s.schedule != nil {
		next := s.schedule.NextRun()
		resp.NextBackup = &next
	}
	writeJSON(w, http.StatusOK, resp)
}
