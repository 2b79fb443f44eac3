package httpapi

import (
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) confirmLink(token string) string {
	return strings.TrimRight(s.BaseURL, "/") + "/api/subscribe/confirm?token=" + url.QueryEscape(token)
}

func (s *Server) handleSubscribeEmail(w http.ResponseWriter, r *http.Request) {
	var p struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(p.Email))
	if err != nil || addr.Name != "" {
		writeError(w, http.StatusBadRequest, "invalid email")
		return
	}

	token := uuid.NewString()
	sub, err := s.Store.AddEmailSubscription(r.Context(), addr.Address, token)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			s.Logger.Warn("subscribe_email_error", zap.Error(err))
		}
		writeError(w, status, errorMessage(status))
		return
	}

	if s.Mailer == nil {
		s.Logger.Warn("subscribe_mailer_disabled", zap.Int64("subscription_id", sub.ID))
	} else if err := s.Mailer.SendConfirmation(r.Context(), sub.Email, s.confirmLink(token)); err != nil {
		s.Logger.Warn("subscribe_confirmation_send_error", zap.Int64("subscription_id", sub.ID), zap.Error(err))
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "pending_confirmation"})
}

func (s *Server) handleConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	if err := s.Store.ConfirmEmailSubscription(r.Context(), token); err != nil {
		status := errorStatus(err)
		writeError(w, status, errorMessage(status))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}
