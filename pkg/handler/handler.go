package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"modelhub/pkg/api"
	"modelhub/pkg/catalog"
	"modelhub/pkg/config"
	"modelhub/pkg/dispatch"
	"modelhub/pkg/history"
	"modelhub/pkg/invoker"
	"modelhub/pkg/monitor"
	"modelhub/pkg/session"
	"modelhub/pkg/utils"
)

// CapabilityHandler orchestrates the submission pipeline: it owns the
// per-session state, validates submissions, builds the outbound request,
// invokes the capability endpoint once, interprets the response and
// routes the normalized outcome back through the responder.
// It implements api.CapabilityService and api.ResponderAware.
type CapabilityHandler struct {
	cat       *catalog.Catalog     // Immutable capability registry
	invoker   invoker.Invoker      // Executes built requests against the network
	sessions  *session.Manager     // Per-session selection/input/result state
	sysCfg    *config.SystemConfig // Engine-level technical parameters
	store     *history.Store       // Submission archive, nil when disabled
	mon       monitor.Monitor      // Traffic monitor, nil when disabled
	responder api.ResultResponder  // Injected by the hub during assembly
}

// NewCapabilityHandler initializes the handler. The responder is wired
// in later by the hub builder via SetResponder.
func NewCapabilityHandler(cat *catalog.Catalog, inv invoker.Invoker, sysCfg *config.SystemConfig, store *history.Store, mon monitor.Monitor) *CapabilityHandler {
	return &CapabilityHandler{
		cat:      cat,
		invoker:  inv,
		sessions: session.NewManager(),
		sysCfg:   sysCfg,
		store:    store,
		mon:      mon,
	}
}

// SetResponder implements api.ResponderAware.
func (h *CapabilityHandler) SetResponder(responder api.ResultResponder) {
	h.responder = responder
}

// Catalog implements api.CapabilityService.
func (h *CapabilityHandler) Catalog() *catalog.Catalog {
	return h.cat
}

// Filter implements api.CapabilityService. It records the filter on the
// session and returns the matching descriptors in catalog order.
func (h *CapabilityHandler) Filter(sess api.SessionContext, term, category string) []catalog.Descriptor {
	h.sessions.Get(sess.Key()).SetFilter(term, category)
	return h.cat.Filter(term, category)
}

// Select implements api.CapabilityService. Switching capability resets
// the session's input, result and error atomically.
func (h *CapabilityHandler) Select(sess api.SessionContext, capabilityID string) error {
	d, ok := h.cat.ByID(capabilityID)
	if !ok {
		return fmt.Errorf("unknown capability %q", capabilityID)
	}

	h.sessions.Get(sess.Key()).Select(d)
	slog.Info("Capability selected", "capability", d.ID, "channel", sess.ChannelID, "user", sess.Username)
	return nil
}

// SetInput implements api.CapabilityService.
func (h *CapabilityHandler) SetInput(sess api.SessionContext, input string) {
	h.sessions.Get(sess.Key()).SetInput(input)
}

// Snapshot exposes the session state for channels that render it.
func (h *CapabilityHandler) Snapshot(sess api.SessionContext) session.Snapshot {
	return h.sessions.Get(sess.Key()).Snapshot()
}

// Submit implements api.CapabilityService. It validates the session,
// freezes the submission (capability, input, selection token) and runs
// the pipeline's single network attempt in the background. Validation
// failures return synchronously and never touch the network; an
// outstanding submission makes this one a no-op (dispatch.ErrBusy).
func (h *CapabilityHandler) Submit(sess api.SessionContext) error {
	st := h.sessions.Get(sess.Key())

	token, d, input, err := st.BeginSubmit()
	if err != nil {
		if errors.Is(err, dispatch.ErrBusy) {
			slog.Warn("Submission rejected, session busy", "channel", sess.ChannelID, "user", sess.Username)
		}
		return err
	}

	submissionID := utils.GenerateID()
	slog.Info("Submission accepted", "capability", d.ID, "category", d.Category, "channel", sess.ChannelID, "user", sess.Username, "submission_id", submissionID)

	h.broadcastPrompt(sess, d, input)
	monitor.CountSubmission(d.ID, string(d.Category))

	// Build the request description before leaving the caller: a build
	// failure is a configuration defect and must surface through the
	// normal error channel without a network attempt.
	spec, err := dispatch.BuildRequest(d, input)
	if err != nil {
		slog.Error("Request build failed", "capability", d.ID, "error", err, "submission_id", submissionID)
		monitor.CountFailure(failureKind(err))
		userErr := dispatch.UserMessage(err)
		st.Finish(token, nil, userErr)
		h.record(sess, d, input, "", userErr)
		h.responder.SendError(sess, userErr)
		return nil
	}

	h.responder.SendSignal(sess, "loading")

	go h.run(sess, st, token, d, input, spec, submissionID)
	return nil
}

// run executes the blocking half of the pipeline: invoke, interpret,
// apply. The selection token guards against the stale-response race: an
// outcome arriving after the user switched capability is discarded and
// never overwrites the newer selection's state.
func (h *CapabilityHandler) run(sess api.SessionContext, st *session.State, token uint64, d *catalog.Descriptor, input string, spec *dispatch.RequestSpec, submissionID string) {
	start := time.Now()

	timeout := time.Duration(h.sysCfg.HTTPTimeoutMs) * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	ctx = context.WithValue(ctx, monitor.SubmissionIDKey, submissionID)

	payload, err := h.invoker.Invoke(ctx, spec, dispatch.IsOpaque(d))

	var result *dispatch.Result
	if err == nil {
		result, err = dispatch.Interpret(d, input, payload)
	}

	userErr := ""
	if err != nil {
		userErr = dispatch.UserMessage(err)
		monitor.CountFailure(failureKind(err))
		slog.Error("Submission failed", "capability", d.ID, "error", err, "elapsed", time.Since(start).String(), "submission_id", submissionID)
	} else {
		slog.Info("Submission finished", "capability", d.ID, "kind", result.Kind, "elapsed", time.Since(start).String(), "submission_id", submissionID)
	}
	monitor.ObserveDuration(time.Since(start).Seconds())

	if !st.Finish(token, result, userErr) {
		// The user switched capability mid-flight; the session already
		// shows the new selection and this outcome must not leak into it.
		slog.Warn("Discarding stale outcome", "capability", d.ID, "submission_id", submissionID)
		monitor.CountStaleDiscard()
		return
	}

	kind := ""
	if result != nil {
		kind = string(result.Kind)
	}
	h.record(sess, d, input, kind, userErr)

	if err != nil {
		h.responder.SendError(sess, userErr)
		return
	}
	h.responder.SendResult(sess, result)
}

// broadcastPrompt mirrors the accepted submission to the monitor.
func (h *CapabilityHandler) broadcastPrompt(sess api.SessionContext, d *catalog.Descriptor, input string) {
	if h.mon == nil {
		return
	}
	h.mon.OnMessage(monitor.MonitorMessage{
		Timestamp:   time.Now(),
		MessageType: "PROMPT",
		ChannelID:   sess.ChannelID,
		Username:    sess.Username,
		Capability:  d.ID,
		Content:     input,
	})
}

// record archives the submission outcome. History failures are logged
// and swallowed; the archive must never break the pipeline.
func (h *CapabilityHandler) record(sess api.SessionContext, d *catalog.Descriptor, input, kind, userErr string) {
	if h.store == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := h.store.Record(ctx, history.Record{
		ChannelID:  sess.ChannelID,
		Username:   sess.Username,
		Capability: d.ID,
		Input:      input,
		Kind:       kind,
		Error:      userErr,
	})
	if err != nil {
		slog.Error("Failed to record submission history", "error", err)
	}
}

// failureKind classifies a pipeline error for metrics.
func failureKind(err error) string {
	switch {
	case errors.Is(err, dispatch.ErrTransport):
		return "transport"
	case errors.Is(err, dispatch.ErrDecode):
		return "decode"
	case errors.Is(err, dispatch.ErrConfiguration):
		return "configuration"
	default:
		return "other"
	}
}
