package api

import (
	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"
)

// SessionContext encapsulates identity and routing information for a
// specific conversation unit on a specific channel.
type SessionContext struct {
	ChannelID string // Identifier of the channel that owns the session (e.g., "telegram")
	UserID    string // Platform-specific unique identifier for the user
	ChatID    string // Platform-specific identifier for the chat (may match UserID for DMs)
	Username  string // Display name of the user as provided by the platform
}

// Key returns the stable session-state lookup key for this context.
func (s SessionContext) Key() string {
	return s.ChannelID + "/" + s.UserID + "/" + s.ChatID
}

// Channel defines the standardized lifecycle interface for the
// platforms that expose the capability hub to users.
type Channel interface {
	ID() string
	Start(ctx ChannelContext) error
	Stop() error
	// SendResult delivers a normalized result to the session.
	SendResult(session SessionContext, result *dispatch.Result) error
	// SendError delivers a user-facing failure message to the session.
	SendError(session SessionContext, message string) error
}

// SignalingChannel is an optional extension for platforms that can show
// transient UI state (e.g., a loading indicator) for a session.
type SignalingChannel interface {
	Channel
	SendSignal(session SessionContext, signal string) error
}

// CapabilityService is the operation surface channels drive: browsing
// the catalog, selecting a capability, providing input and submitting.
type CapabilityService interface {
	Catalog() *catalog.Catalog
	// Filter records the session's search term and category filter and
	// returns the matching descriptors in catalog order.
	Filter(session SessionContext, term, category string) []catalog.Descriptor
	// Select switches the session to the capability with the given ID,
	// resetting its input, result and error state.
	Select(session SessionContext, capabilityID string) error
	// SetInput replaces the session's pending input verbatim.
	SetInput(session SessionContext, input string)
	// Submit validates the session and runs the dispatch pipeline. The
	// outcome arrives asynchronously through the session's channel.
	// Validation failures are returned synchronously; dispatch.ErrBusy
	// means a submission is already outstanding and this one is a no-op.
	Submit(session SessionContext) error
}

// ChannelContext is what a channel receives on Start to talk back to
// the hub core.
type ChannelContext interface {
	CapabilityService
}

// ResultResponder defines the capabilities for sending submission
// outcomes back to a channel session.
type ResultResponder interface {
	SendResult(session SessionContext, result *dispatch.Result) error
	SendError(session SessionContext, message string) error
	SendSignal(session SessionContext, signal string) error
}

// ResponderAware marks components that need a ResultResponder injected
// during hub assembly.
type ResponderAware interface {
	SetResponder(responder ResultResponder)
}
