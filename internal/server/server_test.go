package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"empleoformal/internal/config"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
	"empleoformal/internal/storage"
)

func sampleDataset() *models.Dataset {
	return models.NewDataset("test.csv", []models.Record{
		{Department: "Bogotá", Category: "Servicios", Value: 5, Latitude: 4.71, Longitude: -74.07},
		{Department: "Antioquia", Category: "Industria", Value: 10, Latitude: 6.25, Longitude: -75.56},
		{Department: "Antioquia", Category: "Servicios", Value: 20, Latitude: 6.25, Longitude: -75.56},
		{Department: "Meta", Category: "Agro", Value: 2, Latitude: 4.15, Longitude: -73.63},
		{Department: "Meta", Category: "Industria", Value: 4, Latitude: 4.15, Longitude: -73.63},
	})
}

func testConfig() *config.Config {
	return &config.Config{
		Port:        "8050",
		Title:       "Empleo Formal Colombia",
		DefaultView: "barras",
		UIVariant:   config.VariantDropdown,
		ShowContext: true,
	}
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	original := logger.GetGlobalLogger()
	logger.SetGlobalLogger(logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard}))
	t.Cleanup(func() { logger.SetGlobalLogger(original) })

	s, err := NewServer(testConfig(), sampleDataset())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Expected JSON error body, got %q", rec.Body.String())
	}
	return body["error"]
}

func TestNewServerRequiresDataset(t *testing.T) {
	if _, err := NewServer(testConfig(), nil); err == nil {
		t.Error("Expected error without dataset")
	}
}

func TestHandleRoot(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantBody   []string
	}{
		{"default view", "/", http.StatusOK, []string{"Dashboard Empleo Formal", `<option value="barras" selected>`}},
		{"preselected view", "/?view=mapa", http.StatusOK, []string{`<option value="mapa" selected>`}},
		{"empty view", "/?view=", http.StatusOK, []string{"var initial = null;"}},
		{"context tab", "/?tab=contexto", http.StatusOK, []string{"Sobre los datos"}},
		{"unknown view", "/?view=pie", http.StatusBadRequest, nil},
		{"unknown view on context tab", "/?tab=contexto&view=pie", http.StatusOK, []string{"Sobre los datos"}},
		{"unknown path", "/favicon.ico", http.StatusNotFound, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			for _, want := range tt.wantBody {
				if !strings.Contains(rec.Body.String(), want) {
					t.Errorf("Expected body to contain %q", want)
				}
			}
		})
	}
}

func TestHandleRootWithoutContextTab(t *testing.T) {
	s := newTestServer(t)
	s.Config.ShowContext = false

	rec := do(t, s.Handler(), http.MethodGet, "/?tab=contexto&view=pie")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleFigure(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/figure?view=")
	if rec.Code != http.StatusNoContent || rec.Body.Len() != 0 {
		t.Errorf("Empty view: status = %d body = %q, want 204 and no body", rec.Code, rec.Body.String())
	}

	rec = do(t, h, http.MethodGet, "/api/figure?view=pie")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Unknown view: status = %d, want 400", rec.Code)
	}
	if msg := decodeError(t, rec); !strings.Contains(msg, "unknown view") {
		t.Errorf("Unexpected error message %q", msg)
	}

	for _, view := range []string{"barras", "box", "mapa"} {
		rec = do(t, h, http.MethodGet, "/api/figure?view="+view)
		if rec.Code != http.StatusOK {
			t.Fatalf("view %s: status = %d", view, rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("view %s: Content-Type = %s", view, ct)
		}
		var option map[string]interface{}
		if err := json.Unmarshal(rec.Body.Bytes(), &option); err != nil {
			t.Fatalf("view %s: invalid JSON: %v", view, err)
		}
		if _, ok := option["series"]; !ok {
			t.Errorf("view %s: option without series", view)
		}
		if option["backgroundColor"] != "#141627" {
			t.Errorf("view %s: backgroundColor = %v", view, option["backgroundColor"])
		}
	}
}

func TestHandleChart(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/chart?view=box")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var spec models.ChartSpec
	if err := json.Unmarshal(rec.Body.Bytes(), &spec); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if spec.Type != models.ChartBox || len(spec.Boxes) != 3 {
		t.Errorf("Unexpected chart: type=%s boxes=%d", spec.Type, len(spec.Boxes))
	}

	if rec := do(t, h, http.MethodGet, "/api/chart"); rec.Code != http.StatusNoContent {
		t.Errorf("Missing view: status = %d, want 204", rec.Code)
	}
}

func TestHandleDepartments(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/api/departments")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp DepartmentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 3 || resp.Departments[0].Department != "Antioquia" || resp.Departments[0].Value != 15 {
		t.Errorf("Unexpected departments: %+v", resp)
	}
}

func TestHandleExport(t *testing.T) {
	h := newTestServer(t).Handler()

	tests := []struct {
		target      string
		wantStatus  int
		contentType string
	}{
		{"/export/barras.png", http.StatusOK, "image/png"},
		{"/export/box.html", http.StatusOK, "text/html; charset=utf-8"},
		{"/export/mapa.html", http.StatusOK, "text/html; charset=utf-8"},
		{"/export/pie.png", http.StatusBadRequest, "application/json"},
		{"/export/barras.pdf", http.StatusNotFound, "application/json"},
		{"/export/", http.StatusNotFound, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != tt.contentType {
				t.Errorf("Content-Type = %s, want %s", ct, tt.contentType)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/export/barras.png")
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("Expected PNG body")
	}
}

func TestHandleHealth(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var health HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if health.Status != "healthy" || health.Rows != 5 || health.Source != "test.csv" || health.Version == "" {
		t.Errorf("Unexpected health: %+v", health)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestServer(t).Handler()

	for _, target := range []string{"/", "/health", "/api/figure?view=barras", "/api/chart", "/api/departments", "/export/barras.png", "/files/x"} {
		rec := do(t, h, http.MethodPost, target)
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: status = %d, want 405", target, rec.Code)
		}
		if rec.Header().Get("Allow") == "" {
			t.Errorf("POST %s: missing Allow header", target)
		}
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t).Handler()

	rec := do(t, h, http.MethodGet, "/health")
	if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
		t.Errorf("Expected generated uuid request id, got %q", rec.Header().Get(RequestIDHeader))
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("Expected incoming request id to be kept, got %q", got)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t)

	var seenID string
	h := s.withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = RequestID(r.Context())
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if msg := decodeError(t, rec); msg != "internal server error" {
		t.Errorf("Unexpected error %q", msg)
	}
	if seenID == "" || seenID != rec.Header().Get(RequestIDHeader) {
		t.Errorf("Handler saw request id %q, response carries %q", seenID, rec.Header().Get(RequestIDHeader))
	}
}

func TestSetDataset(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	s.SetDataset(models.NewDataset("reloaded.csv", []models.Record{
		{Department: "Cauca", Category: "Agro", Value: 8, Latitude: 2.44, Longitude: -76.61},
	}))
	s.SetDataset(nil)

	if s.Dataset().Source() != "reloaded.csv" {
		t.Fatalf("Expected reloaded dataset, got %s", s.Dataset().Source())
	}

	rec := do(t, h, http.MethodGet, "/api/departments")
	var resp DepartmentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if resp.Count != 1 || resp.Departments[0].Department != "Cauca" {
		t.Errorf("Expected reloaded departments, got %+v", resp)
	}
}

func TestHandleFileProxy(t *testing.T) {
	s := newTestServer(t)
	h := s.Handler()

	if rec := do(t, h, http.MethodGet, "/files/a.png"); rec.Code != http.StatusNotFound {
		t.Errorf("Without storage: status = %d, want 404", rec.Code)
	}

	client, err := storage.NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageClient() error = %v", err)
	}
	s.Storage = client
	defer s.Close()

	ctx := context.Background()
	if err := client.StoreFile(ctx, "2026-01-01-00-00-00/index.html", []byte("<h1>index</h1>")); err != nil {
		t.Fatalf("StoreFile() error = %v", err)
	}

	rec := do(t, h, http.MethodGet, "/files/2026-01-01-00-00-00/")
	if rec.Code != http.StatusOK || rec.Body.String() != "<h1>index</h1>" {
		t.Errorf("Folder index: status = %d body = %q", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %s", ct)
	}

	rec = do(t, h, http.MethodGet, "/files/")
	var listing FilesResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listing); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if rec.Code != http.StatusOK || listing.Count != 1 || listing.Files[0] != "2026-01-01-00-00-00/" {
		t.Errorf("Listing: status = %d body = %+v", rec.Code, listing)
	}

	if rec := do(t, h, http.MethodGet, "/files/missing.png"); rec.Code != http.StatusNotFound {
		t.Errorf("Missing file: status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	s.HandleFileProxy(rec, httptest.NewRequest(http.MethodGet, "/files/a/../../secret", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Traversal: status = %d, want 400", rec.Code)
	}
}
