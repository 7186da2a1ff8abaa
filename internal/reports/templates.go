package reports

import (
	"embed"
	"fmt"
)

//go:embed templates/dashboard.html templates/styles.css templates/context.md
var templateFS embed.FS

// TemplateLoader handles loading HTML templates, CSS styles and markdown content
type TemplateLoader struct {
	fs embed.FS
}

// NewTemplateLoader creates a loader over the embedded templates
func NewTemplateLoader() *TemplateLoader {
	return &TemplateLoader{fs: templateFS}
}

// LoadHTMLTemplate loads the dashboard page template
func (t *TemplateLoader) LoadHTMLTemplate() (string, error) {
	return t.load("templates/dashboard.html")
}

// LoadCSSStyles loads the dashboard stylesheet
func (t *TemplateLoader) LoadCSSStyles() (string, error) {
	return t.load("templates/styles.css")
}

// LoadContextMarkdown loads the markdown shown on the context tab
func (t *TemplateLoader) LoadContextMarkdown() (string, error) {
	return t.load("templates/context.md")
}

func (t *TemplateLoader) load(name string) (string, error) {
	content, err := t.fs.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(content), nil
}
