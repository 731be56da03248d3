package invoker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"modelhub/pkg/dispatch"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// maxResponseBytes caps how much of a capability response is read.
// The proxied services return small JSON documents or base64 blobs;
// anything beyond this is a misbehaving endpoint.
const maxResponseBytes = 16 << 20

// Invoker executes a built RequestSpec against the network exactly once.
// The narrow interface keeps the submission pipeline testable without a
// live endpoint.
type Invoker interface {
	Invoke(ctx context.Context, spec *dispatch.RequestSpec, opaque bool) (dispatch.Payload, error)
}

// HTTPInvoker is the production Invoker backed by a shared http.Client.
type HTTPInvoker struct {
	client *http.Client
}

// NewHTTPInvoker creates an invoker whose client applies the given
// request timeout. The transport mirrors our usual outbound tuning.
func NewHTTPInvoker(timeoutMs int) *HTTPInvoker {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPInvoker{
		client: &http.Client{
			Transport: transport,
			Timeout:   time.Duration(timeoutMs) * time.Millisecond,
		},
	}
}

// Invoke performs the single network attempt of a submission: no
// retries, no backoff. Failures come back wrapped in ErrTransport or
// ErrDecode with the raw cause attached for logging; callers must not
// surface the cause to end users.
//
// On success the payload is decoded per the opaque flag: opaque bodies
// (image and QR style responses) are kept verbatim as a text blob,
// everything else must parse as JSON.
func (i *HTTPInvoker) Invoke(ctx context.Context, spec *dispatch.RequestSpec, opaque bool) (dispatch.Payload, error) {
	var body io.Reader
	if spec.BodyKind != dispatch.BodyNone {
		body = bytes.NewReader(spec.Body)
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method, spec.URL, body)
	if err != nil {
		return dispatch.Payload{}, fmt.Errorf("build request: %v: %w", err, dispatch.ErrTransport)
	}
	for name, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	start := time.Now()
	resp, err := i.client.Do(req)
	if err != nil {
		slog.Error("Capability call failed", "url", spec.URL, "error", err)
		return dispatch.Payload{}, fmt.Errorf("request failed: %v: %w", err, dispatch.ErrTransport)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		slog.Error("Failed to read capability response", "url", spec.URL, "error", err)
		return dispatch.Payload{}, fmt.Errorf("read response: %v: %w", err, dispatch.ErrTransport)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Error("Capability returned non-success status", "url", spec.URL, "status", resp.StatusCode, "elapsed", time.Since(start).String())
		return dispatch.Payload{}, fmt.Errorf("status %d: %w", resp.StatusCode, dispatch.ErrTransport)
	}

	slog.Debug("Capability call succeeded", "url", spec.URL, "status", resp.StatusCode, "bytes", len(raw), "elapsed", time.Since(start).String())

	if opaque {
		return dispatch.Payload{Blob: string(raw)}, nil
	}

	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		slog.Error("Capability response is not valid JSON", "url", spec.URL, "error", err)
		return dispatch.Payload{}, fmt.Errorf("invalid JSON body: %v: %w", err, dispatch.ErrDecode)
	}
	return dispatch.Payload{JSON: jsoniter.RawMessage(raw)}, nil
}
