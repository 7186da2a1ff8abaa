package charts

import (
	"fmt"
	"html/template"

	"empleoformal/internal/models"
)

// ChartSnippet represents an embeddable ECharts chart fragment.
// Div should contain a single root <div id="..." style="..."></div>
// Script should contain the <script>...</script> block that initializes the chart in that div.
// HTML contains the complete snippet with div + script combined for template substitution.
type ChartSnippet struct {
	ID     string
	Title  string
	Div    string
	Script string
	HTML   string
}

// SnippetID returns the DOM id of the chart of view
func SnippetID(view models.ViewSelection) string {
	return "chart-" + string(view)
}

// Snippet builds a self-contained ECharts fragment for spec
func Snippet(spec *models.ChartSpec) (ChartSnippet, error) {
	optJSON, err := OptionJSON(spec)
	if err != nil {
		return ChartSnippet{}, err
	}

	id := SnippetID(spec.View)
	div := fmt.Sprintf("<div id=\"%s\" style=\"width:100%%;height:560px;\"></div>", id)
	script := fmt.Sprintf(`<script>(function(){var el=document.getElementById('%s');if(!el)return;var c=echarts.init(el);var option=%s;c.setOption(option);window.addEventListener('resize',function(){c.resize();});})();</script>`, id, string(optJSON))

	libs := fmt.Sprintf(`<script src="%s"></script>`, EChartsScript)
	if spec.Type == models.ChartScatterMap {
		libs += fmt.Sprintf("\n"+`<script src="%s"></script>`, WorldMapScript)
	}

	completeHTML := fmt.Sprintf(`%s
<div class="chart-container">
	<h3>%s</h3>
	%s
</div>
%s`, libs, template.HTMLEscapeString(spec.Title), div, script)

	return ChartSnippet{ID: id, Title: spec.Title, Div: div, Script: script, HTML: completeHTML}, nil
}
