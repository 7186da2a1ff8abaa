package reports

import (
	"fmt"
	"html/template"
	"path"
	"strings"

	viz "empleoformal/internal/charts"
	"empleoformal/internal/models"
)

// ExportIndexBuilder builds the index page written next to exported charts
type ExportIndexBuilder struct {
	Title string
}

// NewExportIndexBuilder creates an index builder for title
func NewExportIndexBuilder(title string) *ExportIndexBuilder {
	return &ExportIndexBuilder{Title: title}
}

// ExportTitle returns the display title of an exported file name
func ExportTitle(filename string) string {
	base := path.Base(filename)
	ext := path.Ext(base)
	name := strings.TrimSuffix(base, ext)

	label := models.ParseView(name).Label()
	if label == "" {
		label = ToTitleCase(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	}
	if ext == "" {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, strings.ToUpper(strings.TrimPrefix(ext, ".")))
}

// BuildIndexHTML creates an HTML page linking every exported file, followed by
// an interactive preview per snippet. Links are relative so the folder can be
// served from any prefix.
func (b *ExportIndexBuilder) BuildIndexHTML(files []string, folderPath string, previews []viz.ChartSnippet) string {
	title := template.HTMLEscapeString(b.Title)

	var html strings.Builder
	html.WriteString("<!DOCTYPE html>\n<html lang=\"es\">\n<head>\n<meta charset=\"utf-8\">\n")
	html.WriteString(fmt.Sprintf("<title>%s</title>\n", title))
	html.WriteString("<style>body{background-color:#141627;color:white;font-family:Arial,sans-serif;padding:20px}a{color:#8fa4ff}</style>\n")
	html.WriteString("</head>\n<body>\n")
	html.WriteString(fmt.Sprintf("<h1>%s</h1>\n", title))
	if folderPath != "" {
		html.WriteString(fmt.Sprintf("<p>%s</p>\n", template.HTMLEscapeString(folderPath)))
	}

	if len(files) == 0 {
		html.WriteString("<p>No hay exportaciones disponibles</p>\n")
	} else {
		html.WriteString("<ul class=\"exports\">\n")
		for _, file := range files {
			name := path.Base(file)
			html.WriteString(fmt.Sprintf("<li><a href=\"%s\">%s</a></li>\n",
				template.HTMLEscapeString(name), template.HTMLEscapeString(ExportTitle(name))))
		}
		html.WriteString("</ul>\n")
	}

	for _, preview := range previews {
		html.WriteString(preview.HTML)
		html.WriteString("\n")
	}

	html.WriteString("</body>\n</html>\n")
	return html.String()
}
