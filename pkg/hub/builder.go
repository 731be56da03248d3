package hub

import (
	"fmt"

	"modelhub/pkg/api"
	"modelhub/pkg/monitor"
)

// HubBuilder provides a fluent builder pattern interface for constructing
// and initializing a HubManager with all its necessary dependencies.
//
// All components (channels, handler, monitor) are pre-built and injected
// as instances — the Builder simply assembles and starts them.
type HubBuilder struct {
	hub      *HubManager            // The HubManager instance being constructed
	monitor  monitor.Monitor        // Monitoring implementation to be injected
	service  api.CapabilityService  // Pre-built core service (the submission handler)
	channels []api.Channel          // Pre-built channel instances to register
}

// NewHubBuilder creates a fresh HubBuilder instance and allocates
// an internal HubManager to be configured.
func NewHubBuilder() *HubBuilder {
	return &HubBuilder{
		hub: NewHubManager(),
	}
}

// WithMonitor injects a monitoring implementation into the builder.
// This monitor will be started automatically during the Build() process.
func (b *HubBuilder) WithMonitor(m monitor.Monitor) *HubBuilder {
	b.monitor = m
	return b
}

// WithChannel adds pre-built channel instances to the hub.
func (b *HubBuilder) WithChannel(channels ...api.Channel) *HubBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// WithService injects the core capability service.
// If the service implements api.ResponderAware, the hub is wired in as
// its responder automatically.
func (b *HubBuilder) WithService(s api.CapabilityService) *HubBuilder {
	b.service = s
	return b
}

// Build finalizes the configuration, injects all dependencies into the
// HubManager, registers all channels, and starts everything.
// Returns the fully operational HubManager or an error if any stage fails.
func (b *HubBuilder) Build() (*HubManager, error) {
	// 1. Initialize and start the monitoring service
	if b.monitor != nil {
		b.hub.SetMonitor(b.monitor)
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	// 2. Wire the core service and hand it the hub as responder
	if b.service == nil {
		return nil, fmt.Errorf("no capability service configured")
	}
	b.hub.SetService(b.service)
	if aware, ok := b.service.(api.ResponderAware); ok {
		aware.SetResponder(b.hub)
	}

	// 3. Register all pre-built channels
	for _, c := range b.channels {
		b.hub.Register(c)
	}

	// 4. Start all registered channels
	if err := b.hub.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.hub, nil
}
