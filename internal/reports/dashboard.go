package reports

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/config"
	"empleoformal/internal/logger"
	"empleoformal/internal/models"
)

// DashboardHeading is the page heading shown above the selector
const DashboardHeading = "Dashboard Empleo Formal"

// DashboardOptions configures the dashboard page
type DashboardOptions struct {
	Title           string
	Variant         string
	ShowContext     bool
	ContextImageURL string
}

// DashboardOptionsFromConfig maps the service configuration onto dashboard options
func DashboardOptionsFromConfig(cfg *config.Config) DashboardOptions {
	return DashboardOptions{
		Title:           cfg.Title,
		Variant:         cfg.UIVariant,
		ShowContext:     cfg.ShowContext,
		ContextImageURL: cfg.ContextImageURL,
	}
}

// ViewOption is one entry of the view selector
type ViewOption struct {
	Value    string
	Label    string
	Selected bool
}

// DashboardData represents the data structure for the dashboard template
type DashboardData struct {
	PageTitle       string
	Heading         string
	Variant         string
	Views           []ViewOption
	Selected        string
	Tab             string
	ShowContext     bool
	ContextHTML     template.HTML
	ContextImageURL string
	InitialOption   template.JS
	EChartsScript   string
	WorldMapScript  string
	CSS             template.CSS
	Version         string
	GeneratedAt     string
}

// DashboardBuilder renders the dashboard page. Templates, styles and the
// context markdown are prepared once; Build is safe for concurrent use.
type DashboardBuilder struct {
	opts        DashboardOptions
	tmpl        *template.Template
	css         template.CSS
	contextHTML template.HTML
	log         *logger.Logger
}

// NewMarkdown returns the goldmark converter used for the context tab
func NewMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithUnsafe(),
		),
	)
}

// NewDashboardBuilder parses the embedded templates and converts the context markdown
func NewDashboardBuilder(opts DashboardOptions) (*DashboardBuilder, error) {
	if opts.Title == "" {
		opts.Title = "Empleo Formal Colombia"
	}
	loader := NewTemplateLoader()

	page, err := loader.LoadHTMLTemplate()
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New("dashboard").Parse(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	css, err := loader.LoadCSSStyles()
	if err != nil {
		return nil, err
	}

	b := &DashboardBuilder{
		opts: opts,
		tmpl: tmpl,
		css:  template.CSS(css),
		log:  logger.Component("dashboard"),
	}

	if opts.ShowContext {
		md, err := loader.LoadContextMarkdown()
		if err != nil {
			return nil, err
		}
		contextHTML, err := ConvertMarkdownToHTML(NewMarkdown(), md)
		if err != nil {
			return nil, err
		}
		b.contextHTML = template.HTML(contextHTML)
	}
	return b, nil
}

// ConvertMarkdownToHTML converts markdown to HTML using md
func ConvertMarkdownToHTML(md goldmark.Markdown, markdownContent string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdownContent), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown: %w", err)
	}
	return buf.String(), nil
}

// Build renders the page for the selected view and tab.
// spec may be nil when no view is selected; the chart area then starts empty.
func (b *DashboardBuilder) Build(view models.ViewSelection, tab models.Tab, spec *models.ChartSpec) ([]byte, error) {
	if !b.opts.ShowContext {
		tab = models.TabCharts
	}

	initial := template.JS("null")
	if spec != nil {
		raw, err := viz.OptionJSON(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to build initial chart: %w", err)
		}
		initial = template.JS(raw)
	}

	views := make([]ViewOption, 0, len(models.Views))
	for _, v := range models.Views {
		views = append(views, ViewOption{
			Value:    string(v),
			Label:    v.Label(),
			Selected: v == view,
		})
	}

	data := DashboardData{
		PageTitle:       b.opts.Title,
		Heading:         DashboardHeading,
		Variant:         b.opts.Variant,
		Views:           views,
		Selected:        string(view),
		Tab:             string(tab),
		ShowContext:     b.opts.ShowContext,
		ContextHTML:     b.contextHTML,
		ContextImageURL: b.opts.ContextImageURL,
		InitialOption:   initial,
		EChartsScript:   viz.EChartsScript,
		WorldMapScript:  viz.WorldMapScript,
		CSS:             b.css,
		Version:         config.GetVersion(),
		GeneratedAt:     time.Now().UTC().Format("2006-01-02 15:04:05 UTC"),
	}

	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute dashboard template: %w", err)
	}

	b.log.Debug("dashboard rendered", logger.Fields{"view": string(view), "tab": string(tab), "bytes": buf.Len()})
	return buf.Bytes(), nil
}
