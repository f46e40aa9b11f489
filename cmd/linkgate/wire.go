//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"linkgate/internal/analytics/enrichment"
	"linkgate/internal/biz"
	"linkgate/internal/conf"
	"linkgate/internal/data"
	delivery "linkgate/internal/delivery/http"
	"linkgate/internal/infra/eventbus"
	"linkgate/internal/server"
	"linkgate/internal/service"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
)

// wireApp init kratos application.
func wireApp(*conf.Server, *conf.Data, *conf.Redirect, *conf.Slug, *conf.Ingestion, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		delivery.ProviderSet,
		service.ProviderSet,
		biz.ProviderSet,
		data.ProviderSet,
		eventbus.ProviderSet,
		enrichment.ProviderSet,
		wire.Bind(new(service.Pinger), new(*data.Data)),
		newApp,
	))
}
