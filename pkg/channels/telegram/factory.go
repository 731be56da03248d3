package telegram

import (
	"fmt"

	"modelhub/pkg/api"
	"modelhub/pkg/channels"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TelegramFactory 負責建立 Telegram Channels
type TelegramFactory struct{}

// Create 實作 ChannelFactory
func (f *TelegramFactory) Create(rawConfig jsoniter.RawMessage, deps *channels.Deps) (api.Channel, error) {
	var pCfg TelegramConfig
	if err := json.Unmarshal(rawConfig, &pCfg); err != nil {
		return nil, fmt.Errorf("failed to parse telegram config: %w", err)
	}

	if pCfg.Token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	return NewTelegramChannel(
		pCfg,
		deps.System.TelegramMessageLimit,
		deps.System.DownloadTimeoutMs,
		deps.System.RatePerMinute,
		deps.System.RateBurst,
	)
}

func init() {
	channels.RegisterChannel("telegram", &TelegramFactory{})
}
