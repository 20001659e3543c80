package api

import (
	"net/http"

	"MediaVault/utils"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, errInvalidBody)
		return
	}

	if s.password == "" || !utils.SecureCompare(req.Password, s.password) {
		logger.Warn("Rejected dashboard login", "remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, errInvalidPassword)
		return
	}

	token, err := s.sessions.Create(r.Context())
	if err != nil {
		logger.Error("Failed to create session", "err", err)
		writeError(w, http.StatusInternalServerError, errSessionUnavailable)
		return
	}

	http.SetCookie(w, sessionCookie(r, token, int(sessionTTL.Seconds())))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookieName); err == nil {
		if err := s.sessions.Destroy(r.Context(), c.Value); err != nil {
			logger.Error("Failed to destroy session", "err", err)
			writeError(w, http.StatusInternalServerError, errLogoutFailed)
			return
		}
	}
	http.SetCookie(w, sessionCookie(r, "", -1))
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, authCheckResponse{Authenticated: s.authenticated(r)})
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authenticated(r) {
			writeError(w, http.StatusUnauthorized, errUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(r *http.Request) bool {
	c, err := r.Cookie(sessionCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	ok, err := s.sessions.Valid(r.Context(), c.Value)
	if err != nil {
		logger.Error("Failed to check session", "err", err)
		return false
	}
	return ok
}

func sessionCookie(r *http.Request, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	}
}
