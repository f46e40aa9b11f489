package server

import (
	nethttp "net/http"

	"linkgate/internal/conf"

	"github.com/go-kratos/kratos/v2/transport/http"
)

// NewHTTPServer new an HTTP server serving handler under every path.
// Recovery and access logging live in the handler's own middleware chain.
func NewHTTPServer(c *conf.Server, handler nethttp.Handler) *http.Server {
	var opts []http.ServerOption
	if c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, http.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != nil {
			opts = append(opts, http.Timeout(c.Http.Timeout.AsDuration()))
		}
	}
	srv := http.NewServer(opts...)
	srv.HandlePrefix("/", handler)

	return srv
}
