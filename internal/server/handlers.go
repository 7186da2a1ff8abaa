package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"path"
	"strings"
	"time"

	"empleoformal/internal/aggregate"
	"empleoformal/internal/charts"
	"empleoformal/internal/config"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
	"empleoformal/internal/reports"
	"empleoformal/internal/storage"
)

// HealthStatus is the body of /health
type HealthStatus struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Rows      int       `json:"rows"`
	Source    string    `json:"source"`
	LoadedAt  time.Time `json:"loaded_at"`
}

// DepartmentsResponse is the body of /api/departments
type DepartmentsResponse struct {
	Departments []models.AggregatedDepartment `json:"departments"`
	Count       int                           `json:"count"`
}

// FilesResponse is the body of /files/, the export folders in storage
type FilesResponse struct {
	Files []string `json:"files"`
	Count int      `json:"count"`
}

// allowGet answers 405 for anything but GET and HEAD
func allowGet(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// writeJSON writes a JSON response with status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}

// writeError writes {"error": message}
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeBody writes a rendered body with its content type
func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// renderView renders the view named by the "view" query parameter.
// It writes the response itself and returns nil when no chart should be sent.
func (s *Server) renderView(w http.ResponseWriter, r *http.Request) *models.ChartSpec {
	view := models.ParseView(r.URL.Query().Get("view"))
	spec, err := charts.Render(view, s.Dataset())
	switch {
	case err == nil:
		return spec
	case errors.Is(err, charts.ErrNoUpdate):
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, charts.ErrUnknownView):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.requestLog(r).Error("render failed", err, logger.Fields{"view": string(view)})
		writeError(w, http.StatusInternalServerError, "failed to render chart")
	}
	return nil
}

func (s *Server) requestLog(r *http.Request) *logger.Logger {
	return s.log.With(logger.Fields{"request_id": RequestID(r.Context())})
}

// HandleRoot serves the dashboard page
func (s *Server) HandleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !allowGet(w, r) {
		return
	}

	query := r.URL.Query()
	view := s.Config.DefaultViewSelection()
	if _, set := query["view"]; set {
		view = models.ParseView(query.Get("view"))
	}
	tab := models.ParseTab(query.Get("tab"))
	if !s.Config.ShowContext {
		tab = models.TabCharts
	}
	if view != models.ViewNone && !view.Valid() {
		// the context tab renders no chart
		if tab == models.TabCharts {
			writeError(w, http.StatusBadRequest, "unknown view: "+string(view))
			return
		}
		view = models.ViewNone
	}

	var spec *models.ChartSpec
	if view != models.ViewNone && tab == models.TabCharts {
		var err error
		spec, err = charts.Render(view, s.Dataset())
		if err != nil {
			s.requestLog(r).Error("render failed", err, logger.Fields{"view": string(view)})
			writeError(w, http.StatusInternalServerError, "failed to render chart")
			return
		}
	}

	page, err := s.Dashboard.Build(view, tab, spec)
	if err != nil {
		s.requestLog(r).Error("dashboard failed", err)
		writeError(w, http.StatusInternalServerError, "failed to render dashboard")
		return
	}
	writeBody(w, "text/html; charset=utf-8", page)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	ds := s.Dataset()
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:    "healthy",
		Version:   config.GetVersion(),
		Timestamp: time.Now().UTC(),
		Rows:      ds.Len(),
		Source:    ds.Source(),
		LoadedAt:  ds.LoadedAt(),
	})
}

// HandleFigure returns the ECharts option of the selected view
func (s *Server) HandleFigure(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	spec := s.renderView(w, r)
	if spec == nil {
		return
	}

	option, err := charts.OptionJSON(spec)
	if err != nil {
		s.requestLog(r).Error("option failed", err, logger.Fields{"view": string(spec.View)})
		writeError(w, http.StatusInternalServerError, "failed to build chart option")
		return
	}
	writeBody(w, "application/json", option)
}

// HandleChart returns the library independent chart description of the selected view
func (s *Server) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	spec := s.renderView(w, r)
	if spec == nil {
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// HandleDepartments returns the per-department means
func (s *Server) HandleDepartments(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	departments, err := aggregate.ByDepartment(s.Dataset())
	if err != nil {
		s.requestLog(r).Error("aggregation failed", err)
		writeError(w, http.StatusInternalServerError, "failed to aggregate departments")
		return
	}
	writeJSON(w, http.StatusOK, DepartmentsResponse{Departments: departments, Count: len(departments)})
}

// HandleExport renders /export/{view}.html and /export/{view}.png
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/export/")
	ext := path.Ext(name)
	if name == "" || strings.Contains(name, "/") || (ext != ".html" && ext != ".png") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	view := models.ParseView(strings.TrimSuffix(name, ext))
	if !view.Valid() {
		writeError(w, http.StatusBadRequest, "unknown view: "+string(view))
		return
	}

	spec, err := charts.Render(view, s.Dataset())
	if err != nil {
		s.requestLog(r).Error("render failed", err, logger.Fields{"view": string(view)})
		writeError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}

	switch ext {
	case ".html":
		page, err := reports.EChartsPage(spec)
		if err != nil {
			s.requestLog(r).Error("export failed", err, logger.Fields{"view": string(view), "format": "html"})
			writeError(w, http.StatusInternalServerError, "failed to export chart")
			return
		}
		writeBody(w, storage.GetContentType(name), page)
	case ".png":
		var buf bytes.Buffer
		if err := s.Images.Render(spec, &buf); err != nil {
			s.requestLog(r).Error("export failed", err, logger.Fields{"view": string(view), "format": "png"})
			writeError(w, http.StatusInternalServerError, "failed to export chart")
			return
		}
		writeBody(w, storage.GetContentType(name), buf.Bytes())
	}
}

// HandleFileProxy serves previously exported files from storage
func (s *Server) HandleFileProxy(w http.ResponseWriter, r *http.Request) {
	if !allowGet(w, r) {
		return
	}
	if s.Storage == nil {
		writeError(w, http.StatusNotFound, "file storage disabled")
		return
	}

	filePath := strings.TrimPrefix(r.URL.Path, "/files/")
	if filePath == "" {
		s.listExports(w, r)
		return
	}
	// prevent directory traversal
	if strings.Contains(filePath, "..") {
		writeError(w, http.StatusBadRequest, "invalid file path")
		return
	}
	if strings.HasSuffix(filePath, "/") {
		filePath += reports.IndexFile
	}

	data, err := s.Storage.GetFile(r.Context(), filePath)
	if err != nil {
		s.requestLog(r).Warn("file not found", logger.Fields{"file": filePath, "error": err.Error()})
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeBody(w, storage.GetContentType(filePath), data)
}

func (s *Server) listExports(w http.ResponseWriter, r *http.Request) {
	files, err := s.Storage.ListDir(r.Context(), "", false)
	if err != nil {
		s.requestLog(r).Error("failed to list exports", err)
		writeError(w, http.StatusInternalServerError, "failed to list exports")
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, FilesResponse{Files: files, Count: len(files)})
}
