package telegram

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"modelhub/pkg/api"
	"modelhub/pkg/catalog"
	"modelhub/pkg/dispatch"
	"modelhub/pkg/utils"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// TelegramConfig encapsulates the credentials required to authenticate with
// the Telegram Bot API.
type TelegramConfig struct {
	Token string `json:"token"` // The secret BOT API string provided by @BotFather
}

// TelegramChannel is the production implementation of api.Channel for
// the Telegram platform. Users browse the catalog with /models, pick a
// capability with /use, and every following message (text or photo)
// becomes a submission.
type TelegramChannel struct {
	config       TelegramConfig          // Auth credentials
	bot          *tgbotapi.BotAPI        // Underlying Telegram SDK client
	updates      tgbotapi.UpdatesChannel // Stream of incoming events
	messageLimit int                     // Maximum character count per single message bubble
	httpClient   *http.Client            // Client for downloading photos from Telegram
	limiters     map[int64]*rate.Limiter // Per-chat submission limiters
	limit        rate.Limit
	burst        int
	mu           sync.Mutex // Protects the limiter map
}

func NewTelegramChannel(cfg TelegramConfig, msgLimit, downloadTimeoutMs, perMinute, burst int) (*TelegramChannel, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	slog.Info("Telegram bot authorized", "username", bot.Self.UserName)

	if perMinute <= 0 {
		perMinute = 20
	}
	if burst <= 0 {
		burst = 1
	}

	return &TelegramChannel{
		config:       cfg,
		bot:          bot,
		messageLimit: msgLimit,
		httpClient: &http.Client{
			Timeout: time.Duration(downloadTimeoutMs) * time.Millisecond,
		},
		limiters: make(map[int64]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
	}, nil
}

// ID returns the unique platform identifier "telegram".
func (t *TelegramChannel) ID() string {
	return "telegram"
}

// Start initiates the long-polling update loop in a background goroutine.
func (t *TelegramChannel) Start(ctx api.ChannelContext) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	t.updates = t.bot.GetUpdatesChan(u)

	go func() {
		for update := range t.updates {
			if update.Message == nil {
				continue
			}
			t.handleMessage(ctx, update.Message)
		}
	}()

	return nil
}

// Stop terminates the long-polling loop.
func (t *TelegramChannel) Stop() error {
	t.bot.StopReceivingUpdates()
	return nil
}

// limiter returns the rate limiter for a chat, creating it on first use.
func (t *TelegramChannel) limiter(chatID int64) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limiters[chatID]
	if !ok {
		l = rate.NewLimiter(t.limit, t.burst)
		t.limiters[chatID] = l
	}
	return l
}

func (t *TelegramChannel) handleMessage(ctx api.ChannelContext, msg *tgbotapi.Message) {
	session := api.SessionContext{
		ChannelID: "telegram",
		UserID:    strconv.FormatInt(msg.From.ID, 10),
		ChatID:    strconv.FormatInt(msg.Chat.ID, 10),
		Username:  msg.From.UserName,
	}

	if msg.IsCommand() {
		t.handleCommand(ctx, session, msg)
		return
	}

	if !t.limiter(msg.Chat.ID).Allow() {
		t.reply(msg.Chat.ID, "⏳ Too many requests, please slow down.")
		return
	}

	// A photo message feeds the vision flow: download, convert to a
	// data URI and submit it as the input.
	if len(msg.Photo) > 0 {
		input, err := t.downloadPhoto(msg.Photo)
		if err != nil {
			slog.Error("Failed to download photo", "error", err)
			t.reply(msg.Chat.ID, "❌ Could not download that photo, please try again.")
			return
		}
		ctx.SetInput(session, input)
		t.submit(ctx, session, msg.Chat.ID)
		return
	}

	if msg.Text == "" {
		return
	}

	ctx.SetInput(session, msg.Text)
	t.submit(ctx, session, msg.Chat.ID)
}

func (t *TelegramChannel) submit(ctx api.ChannelContext, session api.SessionContext, chatID int64) {
	if err := ctx.Submit(session); err != nil {
		t.reply(chatID, dispatch.UserMessage(err))
	}
}

func (t *TelegramChannel) handleCommand(ctx api.ChannelContext, session api.SessionContext, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help":
		t.reply(msg.Chat.ID,
			"🤖 AI Model Hub\n"+
				"/models [search] - list available models\n"+
				"/use <id> - pick a model\n"+
				"Then send a prompt (or a photo for vision models).")

	case "models":
		models := ctx.Filter(session, args, catalog.CategoryFilterAll)
		if len(models) == 0 {
			t.reply(msg.Chat.ID, "No models match that search.")
			return
		}
		var sb strings.Builder
		for _, m := range models {
			fmt.Fprintf(&sb, "• %s — %s (%s)\n", m.ID, m.Name, catalog.Categories[m.Category].Label)
		}
		t.reply(msg.Chat.ID, sb.String())

	case "use":
		if args == "" {
			t.reply(msg.Chat.ID, "Usage: /use <model id>")
			return
		}
		if err := ctx.Select(session, args); err != nil {
			t.reply(msg.Chat.ID, fmt.Sprintf("❌ Unknown model %q. Try /models.", args))
			return
		}
		d, _ := ctx.Catalog().ByID(args)
		t.reply(msg.Chat.ID, fmt.Sprintf("✅ Using %s. Send me a prompt.", d.Name))

	default:
		t.reply(msg.Chat.ID, "Unknown command. Try /help.")
	}
}

// downloadPhoto fetches the largest rendition of a photo and converts it
// into the data-URI form the vision capability expects.
func (t *TelegramChannel) downloadPhoto(sizes []tgbotapi.PhotoSize) (string, error) {
	largest := sizes[len(sizes)-1]

	url, err := t.bot.GetFileDirectURL(largest.FileID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file URL: %w", err)
	}

	resp, err := t.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch photo: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read photo: %w", err)
	}

	return utils.BuildDataURI(data), nil
}

// SendResult implements api.Channel. Image-bearing results are sent as
// native photos when possible; everything else is rendered as text.
func (t *TelegramChannel) SendResult(session api.SessionContext, result *dispatch.Result) error {
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", session.ChatID, err)
	}

	if ref, caption, ok := imageReference(result); ok {
		if err := t.sendPhoto(chatID, ref, caption); err == nil {
			return nil
		}
		// Photo delivery failed; fall through to the text rendering.
	}

	return t.reply(chatID, t.renderResult(result))
}

// SendError implements api.Channel.
func (t *TelegramChannel) SendError(session api.SessionContext, message string) error {
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("bad chat id %q: %w", session.ChatID, err)
	}
	return t.reply(chatID, "❌ "+message)
}

// SendSignal implements api.SignalingChannel: the loading signal maps to
// Telegram's typing indicator.
func (t *TelegramChannel) SendSignal(session api.SessionContext, signal string) error {
	if signal != "loading" {
		return nil
	}
	chatID, err := strconv.ParseInt(session.ChatID, 10, 64)
	if err != nil {
		return nil
	}
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, err = t.bot.Request(action)
	return err
}

func (t *TelegramChannel) reply(chatID int64, text string) error {
	if t.messageLimit > 0 && len(text) > t.messageLimit {
		text = text[:t.messageLimit]
	}
	_, err := t.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// sendPhoto uploads an image reference: remote URLs go out as-is, data
// URIs are decoded and uploaded as bytes.
func (t *TelegramChannel) sendPhoto(chatID int64, ref, caption string) error {
	var photo tgbotapi.PhotoConfig

	switch {
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		photo = tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(ref))
	case strings.HasPrefix(ref, "data:"):
		_, data, err := utils.DecodeDataURI(ref)
		if err != nil {
			return err
		}
		photo = tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "result", Bytes: data})
	default:
		return fmt.Errorf("unsupported image reference")
	}

	photo.Caption = caption
	_, err := t.bot.Send(photo)
	return err
}

// imageReference extracts the uploadable image of a result, if any.
func imageReference(result *dispatch.Result) (ref, caption string, ok bool) {
	switch result.Kind {
	case dispatch.KindImage:
		return result.Image.ImageURL, "", true
	case dispatch.KindQR:
		return result.QR.ImageURL, "Encoded: " + result.QR.EncodedData, true
	default:
		return "", "", false
	}
}

// renderResult formats a normalized result as a plain-text message.
func (t *TelegramChannel) renderResult(result *dispatch.Result) string {
	switch result.Kind {
	case dispatch.KindText:
		return result.Text.Content

	case dispatch.KindVision:
		return "🔍 " + result.Vision.Analysis

	case dispatch.KindImage:
		return result.Image.ImageURL

	case dispatch.KindTranslation:
		return fmt.Sprintf("Original:\n%s\n\nTranslation:\n%s", result.Translation.Original, result.Translation.Translated)

	case dispatch.KindSearch:
		if len(result.Search.Items) == 0 {
			return "No results found."
		}
		var sb strings.Builder
		for _, item := range result.Search.Items {
			fmt.Fprintf(&sb, "• %s\n%s\n%s\n\n", item.Title, item.Link, item.Snippet)
		}
		return sb.String()

	case dispatch.KindWeather:
		w := result.Weather
		return fmt.Sprintf("🌤 %s (%s)\n%.1f°C, %s\nHumidity: %d%%\nWind: %.1f km/h\nFeels like: %.1f°C\nPressure: %.0f mb",
			w.Location, w.Region, w.TemperatureC, w.Condition, w.Humidity, w.WindKph, w.FeelsLikeC, w.PressureMb)

	case dispatch.KindQR:
		return fmt.Sprintf("QR code for: %s\n%s", result.QR.EncodedData, result.QR.ImageURL)

	default:
		return result.Summary()
	}
}
