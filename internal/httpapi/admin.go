package httpapi

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
)

type createProjectPayload struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Enabled     *bool  `json:"enabled"`
}

type updateProjectPayload struct {
	Name        *string `json:"name"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	Enabled     *bool   `json:"enabled"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	ps, err := s.Store.ListProjects(r.Context())
	if err != nil {
		s.Logger.Warn("admin_list_projects_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	if ps == nil {
		ps = []domain.Project{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// cleanURL validates and normalizes an optional project URL.
func cleanURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", true
	}
	if !isValidHTTPURL(raw) {
		return "", false
	}
	return normalizeHTTPURL(raw), true
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var p createProjectPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	u, ok := cleanURL(p.URL)
	if !ok {
		writeError(w, http.StatusBadRequest, "url must be http(s) with a host")
		return
	}

	// A project without a URL is never enabled.
	enabled := u != ""
	if p.Enabled != nil {
		enabled = *p.Enabled && u != ""
	}

	proj := &domain.Project{
		Name:        name,
		URL:         u,
		Description: strings.TrimSpace(p.Description),
		Enabled:     enabled,
	}
	if err := s.Store.CreateProject(r.Context(), proj); err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			s.Logger.Warn("admin_create_project_error", zap.Error(err))
		}
		writeError(w, status, errorMessage(status))
		return
	}
	s.Logger.Info("project_created",
		zap.String("project_id", string(proj.ID)),
		zap.String("name", proj.Name),
		zap.String("url", proj.URL),
		zap.Bool("enabled", proj.Enabled),
	)
	writeJSON(w, http.StatusCreated, proj)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var p updateProjectPayload
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	proj, err := s.Store.GetProject(r.Context(), domain.ProjectID(chi.URLParam(r, "id")))
	if err != nil {
		status := errorStatus(err)
		writeError(w, status, errorMessage(status))
		return
	}

	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			writeError(w, http.StatusBadRequest, "name is required")
			return
		}
		proj.Name = name
	}
	if p.URL != nil {
		u, ok := cleanURL(*p.URL)
		if !ok {
			writeError(w, http.StatusBadRequest, "url must be http(s) with a host")
			return
		}
		proj.URL = u
	}
	if p.Description != nil {
		proj.Description = strings.TrimSpace(*p.Description)
	}
	if p.Enabled != nil {
		proj.Enabled = *p.Enabled
	}
	if proj.Enabled && proj.URL == "" {
		writeError(w, http.StatusBadRequest, "an enabled project needs a url")
		return
	}

	if err := s.Store.UpdateProject(r.Context(), proj); err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			s.Logger.Warn("admin_update_project_error", zap.Error(err))
		}
		writeError(w, status, errorMessage(status))
		return
	}
	s.Logger.Info("project_updated", zap.String("project_id", string(proj.ID)), zap.Bool("enabled", proj.Enabled))
	writeJSON(w, http.StatusOK, proj)
}

func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.Store.ListSubscriptions(r.Context())
	if err != nil {
		s.Logger.Warn("admin_list_subscriptions_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "list error")
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)

func (s *Server) handleAddSMS(w http.ResponseWriter, r *http.Request) {
	var p struct {
		PhoneNumber string `json:"phone_number"`
	}
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	phone := strings.ReplaceAll(strings.TrimSpace(p.PhoneNumber), " ", "")
	if !phonePattern.MatchString(phone) {
		writeError(w, http.StatusBadRequest, "invalid phone number")
		return
	}
	sub, err := s.Store.AddSMSSubscription(r.Context(), phone)
	if err != nil {
		status := errorStatus(err)
		writeError(w, status, errorMessage(status))
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleAddWebhook(w http.ResponseWriter, r *http.Request) {
	var p struct {
		URL    string `json:"url"`
		Secret string `json:"secret"`
	}
	if err := decodeJSON(w, r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	if !isValidHTTPURL(p.URL) {
		writeError(w, http.StatusBadRequest, "url must be http(s) with a host")
		return
	}
	sub, err := s.Store.AddWebhookSubscription(r.Context(), normalizeHTTPURL(p.URL), p.Secret)
	if err != nil {
		status := errorStatus(err)
		writeError(w, status, errorMessage(status))
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handlePending(w http.ResponseWriter, r *http.Request) {
	entries := s.Pending.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"depth":   len(entries),
		"entries": entries,
	})
}
