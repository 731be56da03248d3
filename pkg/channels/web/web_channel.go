package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"modelhub/pkg/api"
	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"
	"modelhub/pkg/history"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for decoupled UI
	},
}

type WebConfig struct {
	Port int `json:"port"` // Default: 8080
}

// wsRequest is one action from the browser: catalog filtering, capability
// selection, input updates, or a submission.
type wsRequest struct {
	Type     string `json:"type"` // "filter", "select", "input", "submit"
	ID       string `json:"id,omitempty"`
	Value    string `json:"value,omitempty"`
	Q        string `json:"q,omitempty"`
	Category string `json:"category,omitempty"`
}

type SafeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (sc *SafeConn) WriteMessage(messageType int, data []byte) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.Conn.WriteMessage(messageType, data)
}

// WebChannel exposes the capability hub over HTTP + WebSocket: a REST
// surface for the catalog and history, a WebSocket for the interactive
// select/input/submit flow, and the Prometheus metrics endpoint.
type WebChannel struct {
	config       WebConfig
	server       *http.Server
	store        *history.Store       // History archive, nil when disabled
	historyLimit int                  // Max records served per request
	hub          api.ChannelContext   // Hub core, set on Start
	connections  map[string]*SafeConn // Map UserID -> WS Connection
	mu           sync.RWMutex
}

func NewWebChannel(cfg WebConfig, store *history.Store, historyLimit int) *WebChannel {
	return &WebChannel{
		config:       cfg,
		store:        store,
		historyLimit: historyLimit,
		connections:  make(map[string]*SafeConn),
	}
}

func (c *WebChannel) ID() string {
	return "web"
}

func (c *WebChannel) Start(ctx api.ChannelContext) error {
	c.hub = ctx

	mux := http.NewServeMux()
	mux.HandleFunc("/api/models", c.handleModels)
	mux.HandleFunc("/api/categories", c.handleCategories)
	mux.HandleFunc("/api/history", c.handleHistory)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", c.handleWebSocket)

	addr := fmt.Sprintf(":%d", c.config.Port)
	c.server = &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	slog.Info("Web API listening", "port", c.config.Port)

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Web API server error", "error", err)
		}
	}()

	return nil
}

func (c *WebChannel) Stop() error {
	if c.server != nil {
		return c.server.Close()
	}
	return nil
}

// handleModels serves the filtered catalog. The REST surface is
// stateless; per-session filter state lives behind the WebSocket flow.
func (c *WebChannel) handleModels(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = "all"
	}

	writeJSON(w, c.hub.Catalog().Filter(term, category))
}

func (c *WebChannel) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, catalog.Categories)
}

func (c *WebChannel) handleHistory(w http.ResponseWriter, r *http.Request) {
	if c.store == nil {
		http.Error(w, "history disabled", http.StatusNotFound)
		return
	}

	limit := c.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n < limit {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	records, err := c.store.Recent(ctx, limit)
	if err != nil {
		slog.Error("Failed to load history", "error", err)
		http.Error(w, "failed to load history", http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, records)
}

// SendResult implements api.Channel.
func (c *WebChannel) SendResult(session api.SessionContext, result *dispatch.Result) error {
	return c.send(session, map[string]any{
		"type": "result",
		"data": result,
	})
}

// SendError implements api.Channel.
func (c *WebChannel) SendError(session api.SessionContext, message string) error {
	return c.send(session, map[string]any{
		"type":    "error",
		"message": message,
	})
}

// SendSignal implements the api.SignalingChannel interface
func (c *WebChannel) SendSignal(session api.SessionContext, signal string) error {
	return c.send(session, map[string]string{
		"type":  "signal",
		"value": signal,
	})
}

func (c *WebChannel) send(session api.SessionContext, msg any) error {
	c.mu.RLock()
	conn, ok := c.connections[session.UserID]
	c.mu.RUnlock()

	if !ok {
		return fmt.Errorf("web user %s not connected", session.UserID)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return conn.WriteMessage(websocket.TextMessage, jsonData)
}

func (c *WebChannel) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	rawConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WS Upgrade failed", "error", err)
		return
	}

	// Wrap connection
	conn := &SafeConn{Conn: rawConn}

	// Simple UserID based on RemoteAddr
	userID := r.RemoteAddr

	// Register connection
	c.mu.Lock()
	c.connections[userID] = conn
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.connections, userID)
		c.mu.Unlock()
		conn.Close()
	}()

	session := api.SessionContext{
		ChannelID: "web",
		UserID:    userID,
		ChatID:    userID,
		Username:  "WebUser",
	}

	// Greet with the full catalog so the UI can render immediately
	c.send(session, map[string]any{
		"type": "models",
		"data": c.hub.Catalog().List(),
	})

	for {
		_, msgBytes, err := conn.ReadMessage()
		if err != nil {
			break
		}

		var req wsRequest
		if err := json.Unmarshal(msgBytes, &req); err != nil {
			c.SendError(session, "Malformed request.")
			continue
		}

		c.dispatchRequest(session, req)
	}
}

// dispatchRequest maps one WebSocket action onto the hub's capability
// service. Busy rejections are silent no-ops: the UI already disables
// the submit control while loading.
func (c *WebChannel) dispatchRequest(session api.SessionContext, req wsRequest) {
	switch req.Type {
	case "filter":
		c.send(session, map[string]any{
			"type": "models",
			"data": c.hub.Filter(session, req.Q, req.Category),
		})

	case "select":
		if err := c.hub.Select(session, req.ID); err != nil {
			c.SendError(session, "Unknown model.")
			return
		}
		c.send(session, map[string]any{
			"type": "selected",
			"id":   req.ID,
		})

	case "input":
		c.hub.SetInput(session, req.Value)

	case "submit":
		if err := c.hub.Submit(session); err != nil {
			if msg := dispatch.UserMessage(err); msg != "" && !isBusy(err) {
				c.SendError(session, msg)
			}
		}

	default:
		slog.Warn("Unknown WS request type", "type", req.Type)
	}
}

func isBusy(err error) bool {
	return errors.Is(err, dispatch.ErrBusy)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "encoding failure", http.StatusInternalServerError)
		return
	}
	w.Write(data)
}
