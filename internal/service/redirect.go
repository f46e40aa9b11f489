package service

import (
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"linkgate/internal/biz"
	"linkgate/internal/conf"
	"linkgate/internal/domain"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/samber/lo"
)

// SlugPrefix is the path prefix of short links.
const SlugPrefix = "/s/"

// RedirectService serves short links.
type RedirectService struct {
	resolver   *biz.Resolver
	dispatcher domain.ClickDispatcher
	baseURL    string
	log        *log.Helper
}

// NewRedirectService creates a RedirectService.
func NewRedirectService(c *conf.Redirect, resolver *biz.Resolver, dispatcher domain.ClickDispatcher, logger log.Logger) *RedirectService {
	s := &RedirectService{
		resolver:   resolver,
		dispatcher: dispatcher,
		log:        log.NewHelper(log.With(logger, "module", "service/redirect")),
	}
	if c != nil {
		s.baseURL = c.PublicBaseUrl
	}
	return s
}

// Handler resolves requests under SlugPrefix. Requests the resolver passes
// through are served by next.
func (s *RedirectService) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := s.resolver.Resolve(r.Context(), biz.ResolveRequest{
			Slug:      strings.TrimPrefix(r.URL.Path, SlugPrefix),
			UserAgent: r.UserAgent(),
			Referer:   r.Referer(),
			IPAddress: clientIP(r),
			Geo:       geoFromHeaders(r.Header),
			Origin:    requestOrigin(r, s.baseURL),
		})

		switch res.Outcome {
		case biz.OutcomePassThrough:
			next.ServeHTTP(w, r)
		case biz.OutcomePreview:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Header().Set("Cache-Control", res.CacheControl)
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write(res.Body); err != nil {
				s.log.WithContext(r.Context()).Warnf("write preview: %v", err)
			}
		case biz.OutcomeRedirect:
			http.Redirect(w, r, res.Location, http.StatusTemporaryRedirect)
			if res.Click != nil {
				s.dispatcher.Dispatch(*res.Click)
			}
		default:
			http.Redirect(w, r, res.Location, http.StatusTemporaryRedirect)
		}
	})
}

// clientIP expects RemoteAddr to have been rewritten from proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// geoFromHeaders reads the location hints set by edge proxies.
func geoFromHeaders(h http.Header) domain.GeoHints {
	var geo domain.GeoHints

	country := strings.ToUpper(lo.CoalesceOrEmpty(h.Get("CF-IPCountry"), h.Get("X-Vercel-IP-Country")))
	// XX is unknown and T1 is Tor on Cloudflare.
	if country != "XX" && country != "T1" {
		geo.Country = country
	}
	if city := h.Get("X-Vercel-IP-City"); city != "" {
		if decoded, err := url.QueryUnescape(city); err == nil {
			city = decoded
		}
		geo.City = city
	}
	geo.Region = h.Get("X-Vercel-IP-Country-Region")

	lat, latErr := strconv.ParseFloat(h.Get("X-Vercel-IP-Latitude"), 64)
	lon, lonErr := strconv.ParseFloat(h.Get("X-Vercel-IP-Longitude"), 64)
	if latErr == nil && lonErr == nil {
		geo.Latitude, geo.Longitude = &lat, &lon
	}
	return geo
}
