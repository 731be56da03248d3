package hub

import (
	"fmt"
	"log"
	"sync"
	"time"

	"modelhub/pkg/api"
	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"
	"modelhub/pkg/monitor"
)

// HubManager 負責管理所有的 Channels 並統一路由提交與結果
type HubManager struct {
	channels map[string]api.Channel
	service  api.CapabilityService
	monitor  monitor.Monitor // 監控器
	mu       sync.RWMutex
}

// NewHubManager 建立一個新的 HubManager
func NewHubManager() *HubManager {
	return &HubManager{
		channels: make(map[string]api.Channel),
	}
}

// SetService 設定核心的 Capability 服務 (通常是 handler)
func (h *HubManager) SetService(s api.CapabilityService) {
	h.service = s
}

// SetMonitor 設定監控器
func (h *HubManager) SetMonitor(m monitor.Monitor) {
	h.monitor = m
}

// Register 註冊一個 Channel
func (h *HubManager) Register(c api.Channel) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels[c.ID()] = c
}

// GetChannel 取得特定的 Channel
func (h *HubManager) GetChannel(id string) (api.Channel, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.channels[id]
	return c, ok
}

// StartAll 啟動所有已註冊的 Channels
func (h *HubManager) StartAll() error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.channels {
		log.Printf("Starting channel: %s", id)
		// 啟動 Channel，並傳入 self 作為 Context
		if err := c.Start(h); err != nil {
			return fmt.Errorf("failed to start channel %s: %w", id, err)
		}
	}
	return nil
}

// StopAll 停止所有 Channels
func (h *HubManager) StopAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.channels {
		log.Printf("Stopping channel: %s", id)
		if err := c.Stop(); err != nil {
			log.Printf("Error stopping channel %s: %v", id, err)
		}
	}
}

//----------------------------------------------------------------
// api.ChannelContext - 委派給核心服務
//----------------------------------------------------------------

// Catalog 實作 api.CapabilityService
func (h *HubManager) Catalog() *catalog.Catalog {
	return h.service.Catalog()
}

// Filter 實作 api.CapabilityService
func (h *HubManager) Filter(session api.SessionContext, term, category string) []catalog.Descriptor {
	return h.service.Filter(session, term, category)
}

// Select 實作 api.CapabilityService
func (h *HubManager) Select(session api.SessionContext, capabilityID string) error {
	return h.service.Select(session, capabilityID)
}

// SetInput 實作 api.CapabilityService
func (h *HubManager) SetInput(session api.SessionContext, input string) {
	h.service.SetInput(session, input)
}

// Submit 實作 api.CapabilityService
func (h *HubManager) Submit(session api.SessionContext) error {
	return h.service.Submit(session)
}

//----------------------------------------------------------------
// api.ResultResponder - 路由結果回 Channel
//----------------------------------------------------------------

// SendResult 統一的結果回覆介面，透過 Channel 介面送回正規化結果
func (h *HubManager) SendResult(session api.SessionContext, result *dispatch.Result) error {
	log.Printf("[Hub] -> Result to %s (%s): %s", session.ChannelID, session.Username, result.Kind)

	// 廣播到監控器
	if h.monitor != nil {
		h.monitor.OnMessage(monitor.MonitorMessage{
			Timestamp:   time.Now(),
			MessageType: "RESULT",
			ChannelID:   session.ChannelID,
			Username:    session.Username,
			Content:     result.Summary(),
		})
	}

	c, ok := h.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.SendResult(session, result)
}

// SendError 將使用者可見的錯誤訊息送回 Channel
func (h *HubManager) SendError(session api.SessionContext, message string) error {
	log.Printf("[Hub] -> Error to %s (%s): %s", session.ChannelID, session.Username, message)

	if h.monitor != nil {
		h.monitor.OnMessage(monitor.MonitorMessage{
			Timestamp:   time.Now(),
			MessageType: "ERROR",
			ChannelID:   session.ChannelID,
			Username:    session.Username,
			Content:     message,
		})
	}

	c, ok := h.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}
	return c.SendError(session, message)
}

// SendSignal 發送一個控制訊號 (如 loading) 到 Channel
func (h *HubManager) SendSignal(session api.SessionContext, signal string) error {
	c, ok := h.GetChannel(session.ChannelID)
	if !ok {
		return fmt.Errorf("channel %s not found", session.ChannelID)
	}

	// 檢查 Channel 是否支援訊號介面
	if sc, ok := c.(api.SignalingChannel); ok {
		log.Printf("[Hub] -> Signal to %s (%s): %s", session.ChannelID, session.Username, signal)
		return sc.SendSignal(session, signal)
	}

	// 不支援的通道安靜地忽略
	return nil
}

// Broadcast 將一則監控訊息廣播到監控器 (若有設定)
func (h *HubManager) Broadcast(msg monitor.MonitorMessage) {
	if h.monitor != nil {
		h.monitor.OnMessage(msg)
	}
}
