package engine

import (
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"golang.org/x/net/html"

	domain "github.com/donaldgifford/watchlist/pkg/types"
)

const dateLayout = "2006-01-02"

var renderFuncs = template.FuncMap{
	"money": money,
	"date": func(t time.Time) string {
		return t.Format(dateLayout)
	},
	"title": displayTitle,
}

var detailTmpl = template.Must(template.New("detail").Funcs(renderFuncs).Parse(
	`<table>
<tr>
{{- with .Newest.Metadata.ImageURL}}
  <td>
    <a href="{{$.Newest.Metadata.URL}}"><img src="{{.}}"></a>
  </td>
{{- end}}
  <td>
    <h3{{template "color" .}}>{{if .Newest.Metadata.URL}}<a{{template "color" .}} href="{{.Newest.Metadata.URL}}">{{title .Newest}}</a>{{else}}{{title .Newest}}{{end}}</h3>
    <p><b>{{money .Newest.Price}}</b>{{with .Last}}, previously was <b>{{money .Price}}</b>{{end}}</p>
{{- if .Newest.Metadata.Digital}}
    <p>This is a digital item</p>
{{- end}}
{{- with .Cheapest}}
    <p>Lowest price was <b>{{money .Price}}</b> on {{date .ObservedAt}} ({{$.CheapestCount}} times total)</p>
{{- end}}
{{- with .Richest}}
    <p>Highest price was <b>{{money .Price}}</b> on {{date .ObservedAt}} ({{$.RichestCount}} times total)</p>
{{- end}}
{{- with .Newest.Metadata.PageURL}}
    <p><a href="{{.}}">page</a>{{with $.Newest.Metadata.Added}}, added {{date .}}{{end}}</p>
{{- end}}
{{- with .Newest.Metadata.Comment}}
    <p>{{.}}</p>
{{- end}}
  </td>
</tr>
</table>
<hr>` +
		`{{define "color"}}{{if .IsCheapest}} style="color:green"{{else if .IsRichest}} style="color:red"{{end}}{{end}}`))

var summaryTmpl = template.Must(template.New("summary").Funcs(renderFuncs).Parse(
	`<p>{{if .Newest.Metadata.URL}}<a href="{{.Newest.Metadata.URL}}">{{title .Newest}}</a>{{else}}{{title .Newest}}{{end}}: ` +
		`{{if and .Cheapest .Richest}}{{money .Cheapest.Price}} - <b>{{money .Newest.Price}}</b> - {{money .Richest.Price}}` +
		`{{else if .Last}}was {{money .Last.Price}}, now <b>{{money .Newest.Price}}</b>` +
		`{{else}}<b>{{money .Newest.Price}}</b>{{end}}</p>`))

// money formats cents as dollars.
func money(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func displayTitle(p domain.PricePoint) string {
	title := p.Metadata.Title
	if title == "" {
		title = p.Identity
	}
	if p.Metadata.Digital {
		title += " (digital)"
	}
	return title
}

// renderDetail writes the full card used for price drops.
func renderDetail(w io.Writer, s *Snapshot) error {
	if err := detailTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("rendering %s: %w", s.Newest.Identity, err)
	}
	return nil
}

// renderSummary writes the one-line form used by the other sections.
func renderSummary(w io.Writer, s *Snapshot) error {
	if err := summaryTmpl.Execute(w, s); err != nil {
		return fmt.Errorf("rendering %s: %w", s.Newest.Identity, err)
	}
	return nil
}

// htmlToText returns the visible text of body, one space between runs.
func htmlToText(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))

	var parts []string
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(parts, " ")
		case html.TextToken:
			if s := strings.TrimSpace(string(z.Text())); s != "" {
				parts = append(parts, strings.Join(strings.Fields(s), " "))
			}
		}
	}
}
