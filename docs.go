package docroute

import (
	"html/template"
	"net/http"
)

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title   string
	specURL string
}

// WithDocsTitle sets the page title for the docs UI. The default is the
// document's info title.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// WithDocsSpecURL sets the URL the docs UI loads the document from. The
// default is the WithSpecRoute pattern, or "/openapi.json" without one.
func WithDocsSpecURL(url string) DocsOption {
	return func(c *docsConfig) {
		c.specURL = url
	}
}

// WithDocsRoute serves an interactive documentation UI (Stoplight Elements)
// with GET at pattern.
func WithDocsRoute(pattern string, opts ...DocsOption) ServiceOption {
	return func(c *serviceConfig) {
		c.docsPath = pattern
		c.docsOpts = opts
	}
}

var docsTemplate = template.Must(template.New("docs").Parse(docsHTML))

func (s *Service) serveDocs(pattern string, opts []DocsOption, specPattern string) {
	cfg := &docsConfig{
		title:   s.doc.Info.Title,
		specURL: "/openapi.json",
	}
	if specPattern != "" {
		cfg.specURL = specPattern
	}
	for _, opt := range opts {
		opt(cfg)
	}

	s.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		docsTemplate.Execute(w, cfg)
	})
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`

// Title returns the page title (used in the template).
func (c *docsConfig) Title() string { return c.title }

// SpecURL returns the document URL (used in the template).
func (c *docsConfig) SpecURL() string { return c.specURL }
