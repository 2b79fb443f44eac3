package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/availability"
	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

//go:embed templates/*.html
var pageFS embed.FS

var pages = template.Must(template.New("pages").ParseFS(pageFS, "templates/*.html"))

const historyMonths = 3

func (s *Server) window() time.Duration {
	return time.Duration(s.HistorySize) * 24 * time.Hour
}

func (s *Server) statusPage(r *http.Request) ([]availability.ProjectStatus, error) {
	now := s.now()
	projects, err := s.Store.ListEnabledProjects(r.Context())
	if err != nil {
		return nil, err
	}
	results, err := s.Store.ResultsSince(r.Context(), "", now.Add(-s.window()))
	if err != nil {
		return nil, err
	}
	return s.Aggregator.BuildStatusPage(projects, results, s.HistorySize, now), nil
}

// projectStatus returns ErrNotFound for unknown and disabled projects.
func (s *Server) projectStatus(r *http.Request) (availability.ProjectStatus, error) {
	now := s.now()
	id := domain.ProjectID(chi.URLParam(r, "id"))
	p, err := s.Store.GetProject(r.Context(), id)
	if err != nil {
		return availability.ProjectStatus{}, err
	}
	if !p.Enabled {
		return availability.ProjectStatus{}, repo.ErrNotFound
	}
	results, err := s.Store.ResultsSince(r.Context(), id, now.Add(-s.window()))
	if err != nil {
		return availability.ProjectStatus{}, err
	}
	return s.Aggregator.BuildProjectStatus(*p, results, s.HistorySize, now), nil
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.statusPage(r)
	if err != nil {
		s.Logger.Warn("status_build_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "status unavailable")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProjectStatus(w http.ResponseWriter, r *http.Request) {
	out, err := s.projectStatus(r)
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			s.Logger.Warn("project_status_error", zap.Error(err))
		}
		writeError(w, status, errorMessage(status))
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type projectHistory struct {
	Project domain.Project       `json:"project"`
	Months  []availability.Month `json:"months"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	projects, err := s.Store.ListEnabledProjects(r.Context())
	if err != nil {
		s.Logger.Warn("history_list_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	results, err := s.Store.ResultsSince(r.Context(), "", now.Add(-repo.Window90Days))
	if err != nil {
		s.Logger.Warn("history_results_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}

	byProject := make(map[domain.ProjectID][]domain.ProbeResult)
	for _, res := range results {
		byProject[res.ProjectID] = append(byProject[res.ProjectID], res)
	}
	out := make([]projectHistory, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectHistory{
			Project: p,
			Months:  availability.BuildMonths(byProject[p.ID], now, historyMonths),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type pageData struct {
	Generated time.Time
	Projects  []availability.ProjectStatus
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		s.Logger.Warn("template_render_error", zap.String("template", name), zap.Error(err))
	}
}

func (s *Server) handleStatusPage(w http.ResponseWriter, r *http.Request) {
	projects, err := s.statusPage(r)
	if err != nil {
		s.Logger.Warn("status_build_error", zap.Error(err))
		http.Error(w, "status unavailable", http.StatusInternalServerError)
		return
	}
	s.render(w, "index.html", pageData{Generated: s.now(), Projects: projects})
}

func (s *Server) handleEmbed(w http.ResponseWriter, r *http.Request) {
	ps, err := s.projectStatus(r)
	if err != nil {
		status := errorStatus(err)
		http.Error(w, errorMessage(status), status)
		return
	}
	s.render(w, "embed.html", ps)
}
