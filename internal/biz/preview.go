package biz

import (
	"bytes"
	"html/template"
	"net/url"
	"strings"

	"linkgate/internal/conf"
	"linkgate/internal/domain"

	"github.com/samber/lo"
)

const defaultPreviewDescription = "Click to open this link."

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta name="title" content="{{.Title}}">
<meta name="description" content="{{.Description}}">
<meta property="og:type" content="website">
<meta property="og:url" content="{{.ShareURL}}">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
{{- if .SiteName}}
<meta property="og:site_name" content="{{.SiteName}}">
{{- end}}
{{- if .Image}}
<meta property="og:image" content="{{.Image}}">
{{- end}}
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:url" content="{{.ShareURL}}">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
{{- if .Image}}
<meta name="twitter:image" content="{{.Image}}">
{{- end}}
<meta http-equiv="refresh" content="0;url={{.Destination}}">
<script>window.location.replace({{.Destination}});</script>
</head>
<body>
<p>Redirecting to <a href="{{.Destination}}">{{.Destination}}</a></p>
</body>
</html>
`))

type previewPage struct {
	Title       string
	Description string
	Image       string
	ShareURL    string
	SiteName    string
	Destination string
}

// PreviewRenderer builds the HTML served to link-preview agents.
type PreviewRenderer struct {
	siteName           string
	defaultDescription string
}

// NewPreviewRenderer creates a renderer from the redirect configuration.
func NewPreviewRenderer(c *conf.Redirect) *PreviewRenderer {
	r := &PreviewRenderer{defaultDescription: defaultPreviewDescription}
	if c != nil {
		r.siteName = c.SiteName
		if c.DefaultDescription != "" {
			r.defaultDescription = c.DefaultDescription
		}
	}
	return r
}

// Render returns the preview document. origin is the scheme and host the
// request arrived on; relative image paths are resolved against it.
func (r *PreviewRenderer) Render(view *domain.CachedLinkView, origin, slug string) ([]byte, error) {
	page := previewPage{
		Title:       lo.FromPtr(view.Title),
		Description: lo.FromPtr(view.Description),
		ShareURL:    strings.TrimRight(origin, "/") + "/s/" + slug,
		SiteName:    r.siteName,
		Destination: view.DestinationURL,
	}
	if page.Title == "" {
		page.Title = destinationHost(view.DestinationURL)
	}
	if page.Description == "" {
		page.Description = r.defaultDescription
	}
	if img := lo.FromPtr(view.ImageURL); img != "" {
		abs, err := absoluteURL(origin, img)
		if err != nil {
			return nil, err
		}
		page.Image = abs
	}

	var buf bytes.Buffer
	if err := previewTemplate.Execute(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func destinationHost(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	return parsed.Hostname()
}

func absoluteURL(origin, ref string) (string, error) {
	refURL, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	if refURL.IsAbs() {
		return ref, nil
	}
	base, err := url.Parse(origin)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(refURL).String(), nil
}
