package web

import (
	"fmt"

	"modelhub/pkg/api"
	"modelhub/pkg/channels"

	jsoniter "github.com/json-iterator/go"
)

// WebFactory 負責建立 Web Channels
type WebFactory struct{}

// Create 實作 ChannelFactory
func (f *WebFactory) Create(rawConfig jsoniter.RawMessage, deps *channels.Deps) (api.Channel, error) {
	var pCfg WebConfig
	// 設定預設 Port
	pCfg.Port = deps.System.WebPort

	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse web config: %w", err)
	}

	return NewWebChannel(pCfg, deps.History, deps.System.HistoryLimit), nil
}

func init() {
	channels.RegisterChannel("web", &WebFactory{})
}
