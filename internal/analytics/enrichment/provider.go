package enrichment

import "github.com/google/wire"

// ProviderSet is enrichment providers.
var ProviderSet = wire.NewSet(NewDeviceDetector, NewGeoResolver)
