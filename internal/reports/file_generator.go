package reports

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
	"empleoformal/internal/storage"
)

// ExportFormat is one file format an exported view is written in
type ExportFormat string

const (
	FormatHTML ExportFormat = "html"
	FormatPNG  ExportFormat = "png"
	FormatJSON ExportFormat = "json"
)

// IndexFile is the name of the page linking every file of one export
const IndexFile = "index.html"

// ParseFormats parses format names, accepting comma separated lists.
// Duplicates are dropped; order is kept.
func ParseFormats(values []string) ([]ExportFormat, error) {
	seen := make(map[ExportFormat]bool)
	var out []ExportFormat
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			f := ExportFormat(strings.ToLower(strings.TrimSpace(part)))
			switch f {
			case "":
				continue
			case FormatHTML, FormatPNG, FormatJSON:
			default:
				return nil, fmt.Errorf("unsupported export format %q", part)
			}
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no export format given")
	}
	return out, nil
}

// GeneratedFiles contains all files generated for one export run
type GeneratedFiles struct {
	FolderPath string
	Names      []string // write order; index.html last
	Files      map[string][]byte
}

func (g *GeneratedFiles) add(name string, data []byte) {
	if _, exists := g.Files[name]; !exists {
		g.Names = append(g.Names, name)
	}
	g.Files[name] = data
}

// FileGenerator renders views of a dataset into exportable files
type FileGenerator struct {
	images *ImageRenderer
	index  *ExportIndexBuilder
	log    *logger.Logger
}

// NewFileGenerator creates a file generator whose index page carries title
func NewFileGenerator(title string) *FileGenerator {
	return &FileGenerator{
		images: NewImageRenderer(),
		index:  NewExportIndexBuilder(title),
		log:    logger.Component("export"),
	}
}

// GenerateAllFiles renders every view in every format plus an index page
func (fg *FileGenerator) GenerateAllFiles(ds *models.Dataset, views []models.ViewSelection, formats []ExportFormat, timestamp time.Time) (*GeneratedFiles, error) {
	if len(views) == 0 {
		return nil, fmt.Errorf("no view to export")
	}

	files := &GeneratedFiles{
		FolderPath: storage.GenerateExportFolderPath(timestamp),
		Files:      make(map[string][]byte),
	}

	previews := make([]viz.ChartSnippet, 0, len(views))
	for _, view := range views {
		spec, err := viz.Render(view, ds)
		if err != nil {
			return nil, fmt.Errorf("failed to render view %q: %w", view, err)
		}
		preview, err := viz.Snippet(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to build preview of %q: %w", view, err)
		}
		previews = append(previews, preview)
		for _, format := range formats {
			data, err := fg.generate(spec, format)
			if err != nil {
				return nil, err
			}
			name := fmt.Sprintf("%s.%s", view, format)
			files.add(name, data)
			fg.log.Debug("export file generated", logger.Fields{"file": name, "bytes": len(data)})
		}
	}

	files.add(IndexFile, []byte(fg.index.BuildIndexHTML(files.Names, files.FolderPath, previews)))
	return files, nil
}

func (fg *FileGenerator) generate(spec *models.ChartSpec, format ExportFormat) ([]byte, error) {
	switch format {
	case FormatHTML:
		return EChartsPage(spec)
	case FormatPNG:
		var buf bytes.Buffer
		if err := fg.images.Render(spec, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(spec, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s chart: %w", spec.View, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}
