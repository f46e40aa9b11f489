package eventbus

import (
	"linkgate/internal/domain"

	"github.com/google/wire"
)

// ProviderSet is eventbus providers.
var ProviderSet = wire.NewSet(
	NewKratosLoggerAdapter,
	NewEventBus,
	NewRouter,
	NewClickDispatcher,
	wire.Bind(new(domain.ClickDispatcher), new(*ClickDispatcher)),
)
