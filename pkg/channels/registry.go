package channels

import (
	"modelhub/pkg/api"
	"modelhub/pkg/config"
	"modelhub/pkg/history"

	jsoniter "github.com/json-iterator/go"
)

// Deps bundles the shared resources a channel may need at creation time.
type Deps struct {
	System  *config.SystemConfig
	History *history.Store // nil when history is disabled
}

// ChannelFactory defines the abstract interface for platform-specific
// channel creators. This allows the system to support new platforms
// (e.g., Discord, Slack) without modifying the core hub logic.
type ChannelFactory interface {
	// Create instantiates a concrete Channel implementation using the
	// provided configuration and shared system resources.
	Create(rawConfig jsoniter.RawMessage, deps *Deps) (api.Channel, error)
}

// channelRegistry is an internal global map storing the mapping between
// platform names (e.g., "telegram") and their factory implementations.
var channelRegistry = make(map[string]ChannelFactory)

// RegisterChannel adds a new ChannelFactory to the global internal registry.
// This is typically called during the package's init() phase.
func RegisterChannel(name string, factory ChannelFactory) {
	channelRegistry[name] = factory
}

// GetChannelFactory retrieves a registered ChannelFactory by platform name.
func GetChannelFactory(name string) (ChannelFactory, bool) {
	f, ok := channelRegistry[name]
	return f, ok
}
