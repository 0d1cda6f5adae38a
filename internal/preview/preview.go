// Package preview renders the assembled portfolio as Markdown and HTML.
package preview

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"path"
	"strings"
	texttemplate "text/template"

	"github.com/dustin/go-humanize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"portfolioapi/internal/model"
)

//go:embed templates/portfolio.md
var portfolioTemplate string

var markdownTmpl = texttemplate.Must(texttemplate.New("portfolio").Funcs(texttemplate.FuncMap{
	"md":   EscapeMarkdown,
	"mark": mark,
}).Parse(portfolioTemplate))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>{{.Title}}</title>
  <style>
    body { font-family: system-ui, sans-serif; max-width: 960px; margin: 2rem auto; padding: 0 1rem; }
    img { max-width: 100%; border-radius: 8px; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ddd; padding: .5rem; }
  </style>
</head>
<body>
{{.Body}}
</body>
</html>`))

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Options controls how file links are produced.
type Options struct {
	// Title is the page heading. Defaults to "Portfolio".
	Title string
	// FileURL builds the link to a stored file. Defaults to /portfolio/files/<id>.
	FileURL func(id string, download bool) string
	// InlineImages uses the stored data URI as image source instead of FileURL.
	InlineImages bool
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "Portfolio"
	}
	if o.FileURL == nil {
		o.FileURL = DefaultFileURL
	}
	return o
}

// DefaultFileURL links to the HTTP file endpoint.
func DefaultFileURL(id string, download bool) string {
	u := "/portfolio/files/" + id
	if download {
		u += "?download=1"
	}
	return u
}

type fileView struct {
	Index       int
	Name        string
	Label       string
	Size        string
	Uploaded    string
	ViewURL     string
	DownloadURL string
}

type pageView struct {
	Title         string
	Profile       *fileView
	Resume        *fileView
	Projects      []fileView
	Stats         model.Stats
	ProjectsLabel string
}

// Markdown renders rec as a Markdown document.
func Markdown(rec *model.PortfolioRecord, opts Options) (string, error) {
	opts = opts.withDefaults()
	if rec == nil {
		rec = model.NewPortfolioRecord()
	}

	v := pageView{
		Title:         opts.Title,
		Stats:         rec.Stats(),
		ProjectsLabel: "Projects",
	}
	if v.Stats.ProjectCount == 1 {
		v.ProjectsLabel = "Project"
	}
	if rec.Profile != nil {
		fv := newFileView(rec.Profile, 0, opts, true)
		v.Profile = &fv
	}
	if rec.Resume != nil {
		fv := newFileView(rec.Resume, 0, opts, false)
		v.Resume = &fv
	}
	for i := range rec.Projects {
		v.Projects = append(v.Projects, newFileView(&rec.Projects[i], i+1, opts, true))
	}

	var b strings.Builder
	if err := markdownTmpl.Execute(&b, v); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return b.String(), nil
}

// HTML renders rec as a standalone HTML page.
func HTML(rec *model.PortfolioRecord, opts Options) (string, error) {
	opts = opts.withDefaults()
	src, err := Markdown(rec, opts)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	if err := md.Convert([]byte(src), &body); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}

	var page bytes.Buffer
	if err := pageTmpl.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{opts.Title, template.HTML(body.String())}); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return page.String(), nil
}

func newFileView(f *model.FileRecord, index int, opts Options, image bool) fileView {
	v := fileView{
		Index:       index,
		Name:        f.Name,
		Label:       strings.TrimSuffix(f.Name, path.Ext(f.Name)),
		Size:        humanize.IBytes(uint64(max(f.SizeBytes, 0))),
		ViewURL:     opts.FileURL(f.ID, false),
		DownloadURL: opts.FileURL(f.ID, true),
	}
	if !f.UploadedAt.IsZero() {
		v.Uploaded = f.UploadedAt.Format("2006-01-02")
	}
	if v.Label == "" {
		v.Label = f.Name
	}
	if image && opts.InlineImages && f.Content != "" {
		v.ViewURL = f.Content
	}
	return v
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`#`, `\#`,
	`!`, `\!`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
)

// EscapeMarkdown escapes characters that would otherwise be read as Markdown syntax.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "○"
}
