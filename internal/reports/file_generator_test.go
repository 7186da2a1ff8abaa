package reports

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/models"
	"empleoformal/internal/storage"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []ExportFormat
		wantErr bool
	}{
		{"single", []string{"png"}, []ExportFormat{FormatPNG}, false},
		{"comma list", []string{"html,png,json"}, []ExportFormat{FormatHTML, FormatPNG, FormatJSON}, false},
		{"repeated flags and case", []string{"PNG", " html ", "png"}, []ExportFormat{FormatPNG, FormatHTML}, false},
		{"empty", []string{""}, nil, true},
		{"unknown", []string{"html,pdf"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormats(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormats() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseFormats() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGenerateAllFiles(t *testing.T) {
	fg := NewFileGenerator("Empleo Formal Colombia")
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	files, err := fg.GenerateAllFiles(sampleDataset(), models.Views, []ExportFormat{FormatJSON, FormatHTML}, ts)
	if err != nil {
		t.Fatalf("GenerateAllFiles() error = %v", err)
	}

	if files.FolderPath != "2026-03-04-05-06-07" {
		t.Errorf("FolderPath = %s", files.FolderPath)
	}
	wantNames := []string{
		"barras.json", "barras.html",
		"box.json", "box.html",
		"mapa.json", "mapa.html",
		IndexFile,
	}
	if !reflect.DeepEqual(files.Names, wantNames) {
		t.Errorf("Names = %v, want %v", files.Names, wantNames)
	}

	var spec models.ChartSpec
	if err := json.Unmarshal(files.Files["barras.json"], &spec); err != nil {
		t.Fatalf("barras.json is not a chart spec: %v", err)
	}
	if spec.View != models.ViewBars || len(spec.Bars) != 3 {
		t.Errorf("Unexpected exported spec: view=%s bars=%d", spec.View, len(spec.Bars))
	}

	index := string(files.Files[IndexFile])
	if !strings.Contains(index, `href="mapa.html"`) {
		t.Errorf("Index must link every export, got %s", index)
	}
	for _, id := range []string{"chart-barras", "chart-box", "chart-mapa"} {
		if !strings.Contains(index, `id="`+id+`"`) {
			t.Errorf("Index must embed a preview %s", id)
		}
	}
}

func TestGenerateAllFilesErrors(t *testing.T) {
	fg := NewFileGenerator("x")
	now := time.Now()

	if _, err := fg.GenerateAllFiles(sampleDataset(), nil, []ExportFormat{FormatPNG}, now); err == nil {
		t.Error("Expected error without views")
	}

	_, err := fg.GenerateAllFiles(sampleDataset(), []models.ViewSelection{models.ViewNone}, []ExportFormat{FormatPNG}, now)
	if !errors.Is(err, viz.ErrNoUpdate) {
		t.Errorf("Expected ErrNoUpdate, got %v", err)
	}

	_, err = fg.GenerateAllFiles(sampleDataset(), []models.ViewSelection{"pie"}, []ExportFormat{FormatPNG}, now)
	if !errors.Is(err, viz.ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}
}

func TestStoreAllFiles(t *testing.T) {
	client, err := storage.NewLocalStorageClient(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageClient() error = %v", err)
	}
	defer client.Close()

	fg := NewFileGenerator("Empleo Formal Colombia")
	files, err := fg.GenerateAllFiles(sampleDataset(), []models.ViewSelection{models.ViewBars}, []ExportFormat{FormatPNG}, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("GenerateAllFiles() error = %v", err)
	}

	ctx := context.Background()
	stored, err := NewStorageOrchestrator(client).StoreAllFiles(ctx, files)
	if err != nil {
		t.Fatalf("StoreAllFiles() error = %v", err)
	}

	want := []string{"1970-01-01-00-00-00/barras.png", "1970-01-01-00-00-00/index.html"}
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("stored = %v, want %v", stored, want)
	}
	for _, p := range want {
		exists, err := client.FileExists(ctx, p)
		if err != nil || !exists {
			t.Errorf("Expected %s to exist (err=%v)", p, err)
		}
	}

	if _, err := NewStorageOrchestrator(client).StoreAllFiles(ctx, &GeneratedFiles{}); err == nil {
		t.Error("Expected error for empty export")
	}
}
