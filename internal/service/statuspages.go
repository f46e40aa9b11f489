package service

import (
	"html/template"
	"net/http"

	"linkgate/internal/biz"
	"linkgate/internal/conf"

	"github.com/go-chi/chi/v5"
)

var statusTemplate = template.Must(template.New("status").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="robots" content="noindex">
<title>{{.Heading}}{{if .SiteName}} | {{.SiteName}}{{end}}</title>
</head>
<body>
<h1>{{.Heading}}</h1>
<p>{{.Message}}</p>
</body>
</html>
`))

type statusPage struct {
	Status   int
	Heading  string
	Message  string
	SiteName string
}

// StatusPages renders the pages ineligible and unknown links redirect to.
// As an http.Handler it serves the not-found page.
type StatusPages struct {
	pages    map[string]statusPage
	notFound statusPage
}

// NewStatusPages creates the pages at the configured status paths.
func NewStatusPages(c *conf.Redirect) *StatusPages {
	targets := biz.StatusTargetsFromConfig(c)
	var site string
	if c != nil {
		site = c.SiteName
	}

	notFound := statusPage{http.StatusNotFound, "Link not found", "This short link does not exist.", site}
	return &StatusPages{
		notFound: notFound,
		pages: map[string]statusPage{
			targets.NotFound:     notFound,
			targets.Disabled:     {http.StatusGone, "Link disabled", "The owner of this link has disabled it.", site},
			targets.Expired:      {http.StatusGone, "Link expired", "This link has expired.", site},
			targets.LimitReached: {http.StatusGone, "Link unavailable", "This link has reached its click limit.", site},
		},
	}
}

// Register mounts every status page on r.
func (p *StatusPages) Register(r chi.Router) {
	for path, page := range p.pages {
		r.Get(path, p.render(page))
	}
	r.NotFound(p.ServeHTTP)
}

func (p *StatusPages) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.render(p.notFound)(w, r)
}

func (p *StatusPages) render(page statusPage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(page.Status)
		_ = statusTemplate.Execute(w, page)
	}
}
