package monitor

import "time"

// MonitorMessage 代表一則流經 Hub 的監控訊息
type MonitorMessage struct {
	Timestamp   time.Time
	MessageType string // "PROMPT", "RESULT" or "ERROR"
	ChannelID   string
	Username    string
	Capability  string
	Content     string
}

// Monitor 介面定義了監控器的行為
type Monitor interface {
	// Start 啟動監控器
	Start() error

	// Stop 停止監控器
	Stop() error

	// OnMessage 接收並顯示監控訊息
	OnMessage(msg MonitorMessage)
}
