package bot

import (
	"context"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobsonar/internal/config"
	"jobsonar/internal/logging"
	"jobsonar/internal/pipeline"
	"jobsonar/internal/profile"
	"jobsonar/internal/store"
	"jobsonar/pkg/models"
)

// Bot receives channel posts and owner commands over the Telegram Bot
// API. Channel posts reach the bot when it is added as an admin of the
// monitored channel.
type Bot struct {
	cfg      *config.Config
	api      *tgbotapi.BotAPI
	store    *store.Store
	profiles *profile.Store
	cache    *profile.Cache
	pipeline *pipeline.Pipeline
	pool     *pipeline.Pool
	alerter  *AlertSender
	logger   logging.Logger

	mu         sync.Mutex
	paused     bool
	awaitingCV map[int64]bool

	done chan struct{}
}

// New creates the bot over an already authenticated API client
func New(cfg *config.Config, api *tgbotapi.BotAPI, st *store.Store, profiles *profile.Store, cache *profile.Cache, pl *pipeline.Pipeline, pool *pipeline.Pool, alerter *AlertSender) *Bot {
	return &Bot{
		cfg:        cfg,
		api:        api,
		store:      st,
		profiles:   profiles,
		cache:      cache,
		pipeline:   pl,
		pool:       pool,
		alerter:    alerter,
		logger:     logging.GetGlobalLogger(),
		awaitingCV: make(map[int64]bool),
		done:       make(chan struct{}),
	}
}

// Start loads persisted state and begins consuming updates
func (b *Bot) Start(ctx context.Context) error {
	paused, err := b.store.GetBoolSetting(ctx, store.SettingPaused, false)
	if err != nil {
		return err
	}
	b.mu.Lock()
	b.paused = paused
	b.mu.Unlock()

	updateCfg := tgbotapi.NewUpdate(0)
	updateCfg.Timeout = 30
	updates := b.api.GetUpdatesChan(updateCfg)

	go b.consume(ctx, updates)

	b.logger.Info("Bot started", map[string]interface{}{
		"username": b.api.Self.UserName,
		"paused":   paused,
	})
	return nil
}

// Stop shuts down the update loop
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
	<-b.done
	b.logger.Info("Bot stopped", nil)
}

func (b *Bot) consume(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer close(b.done)

	for update := range updates {
		switch {
		case update.ChannelPost != nil:
			b.handleChannelPost(ctx, update.ChannelPost)
		case update.Message != nil:
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleChannelPost feeds posts from monitored channels into the
// processing pool
func (b *Bot) handleChannelPost(ctx context.Context, msg *tgbotapi.Message) {
	if b.IsPaused() {
		return
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}

	channelID := strconv.FormatInt(msg.Chat.ID, 10)
	monitored, err := b.store.IsChannelMonitored(ctx, channelID)
	if err != nil {
		b.logger.Error("Failed to check channel", map[string]interface{}{
			"channel_id": channelID,
			"error":      err.Error(),
		})
		return
	}
	if !monitored {
		return
	}

	posting := &models.Posting{
		ChannelID:   channelID,
		ChannelName: msg.Chat.Title,
		MessageID:   int64(msg.MessageID),
		Text:        text,
		Date:        time.Unix(int64(msg.Date), 0),
	}
	if msg.Chat.UserName != "" {
		posting.Link = "https://t.me/" + msg.Chat.UserName + "/" + strconv.Itoa(msg.MessageID)
	}

	if err := b.pool.Submit(posting); err != nil {
		b.logger.Error("Failed to queue posting", map[string]interface{}{
			"channel_id": channelID,
			"message_id": posting.MessageID,
			"error":      err.Error(),
		})
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || !b.cfg.IsAuthorized(msg.From.ID) {
		if msg.IsCommand() && msg.Command() == "start" {
			b.reply(msg, "This bot is private. Contact the owner for access.")
		}
		return
	}

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Non-command text only matters while a CV upload is pending
	b.mu.Lock()
	awaiting := b.awaitingCV[msg.From.ID]
	b.mu.Unlock()
	if awaiting && msg.Text != "" {
		b.handleCVInput(ctx, msg)
	}
}

// IsPaused reports whether channel monitoring is paused
func (b *Bot) IsPaused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *Bot) setPaused(ctx context.Context, paused bool) error {
	b.mu.Lock()
	b.paused = paused
	b.mu.Unlock()

	value := "false"
	if paused {
		value = "true"
	}
	return b.store.SetSetting(ctx, store.SettingPaused, value)
}

func (b *Bot) isOwner(userID int64) bool {
	return userID == b.cfg.Telegram.OwnerID
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	b.send(msg.Chat.ID, text, "")
}

func (b *Bot) replyMarkdown(msg *tgbotapi.Message, text string) {
	b.send(msg.Chat.ID, text, tgbotapi.ModeMarkdown)
}

func (b *Bot) send(chatID int64, text, parseMode string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message", map[string]interface{}{
			"chat_id": chatID,
			"error":   err.Error(),
		})
	}
}
