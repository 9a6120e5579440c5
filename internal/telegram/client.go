// Package telegram connects the expense conversation to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"spesebot/internal/bot"
	applog "spesebot/internal/log"
)

// DefaultPollTimeout is the long-polling timeout in seconds.
const DefaultPollTimeout = 60

var errNoMessage = errors.New("selection has no message to edit")

// api is the subset of *tgbotapi.BotAPI used by Client.
type api interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Handler receives the events the bot understands.
type Handler interface {
	HandleText(ctx context.Context, msg bot.TextMessage) error
	HandleSelection(ctx context.Context, ev bot.SelectionEvent) error
}

type Config struct {
	Token string
	Debug bool
	// PollTimeout in seconds; DefaultPollTimeout when zero.
	PollTimeout int
}

// Client long-polls Telegram for updates and sends replies. It implements bot.Messenger.
type Client struct {
	api         api
	pollTimeout int
	logger      *applog.Logger
	queues      *userQueues
	// callback queries answered by Run before their handler was scheduled
	answered sync.Map
}

var _ bot.Messenger = (*Client)(nil)

// New authenticates against the Bot API with cfg.Token.
func New(cfg Config, logger *applog.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, errors.New("missing TELEGRAM_BOT_TOKEN")
	}
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentTelegram)

	if err := tgbotapi.SetLogger(botLogger{logger: logger}); err != nil {
		return nil, fmt.Errorf("set telegram logger: %w", err)
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	botAPI.Debug = cfg.Debug

	logger.Info("Authorized on Telegram", "username", botAPI.Self.UserName)

	return newClient(botAPI, cfg.PollTimeout, logger), nil
}

func newClient(a api, pollTimeout int, logger *applog.Logger) *Client {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &Client{
		api:         a,
		pollTimeout: pollTimeout,
		logger:      logger,
		queues:      newUserQueues(),
	}
}

// Run dispatches updates to h until ctx is cancelled, then waits for the
// handlers already queued. Updates of one user are handled one at a time in
// arrival order; different users are handled in parallel. Callback queries
// are answered as soon as they arrive, before waiting for the user's queue.
func (c *Client) Run(ctx context.Context, h Handler) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = c.pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := c.api.GetUpdatesChan(cfg)
	defer c.api.StopReceivingUpdates()

	// In-flight handlers finish even after shutdown begins.
	handlerCtx := context.WithoutCancel(ctx)

	var acks sync.WaitGroup
	defer acks.Wait()
	defer c.queues.wait()

	c.logger.InfoContext(ctx, "Polling for updates", "timeout_s", c.pollTimeout)
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopped polling", applog.FieldOperation, applog.OpShutdown)
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			userID, ok := senderOf(u)
			if !ok {
				continue
			}
			if ev, ok := selectionFrom(u); ok {
				c.answered.Store(ev.ID, struct{}{})
				acks.Add(1)
				go func() {
					defer acks.Done()
					if err := c.answer(ev.ID); err != nil {
						c.logger.WarnContext(ctx, "Failed to answer callback query",
							applog.FieldUpdateID, u.UpdateID,
							applog.FieldOperation, applog.OpAck,
							applog.FieldError, err.Error())
					}
				}()
			}
			c.queues.enqueue(userID, func() {
				c.dispatch(handlerCtx, h, u)
			})
		}
	}
}

func (c *Client) dispatch(ctx context.Context, h Handler, u tgbotapi.Update) {
	logger := c.logger.With(
		applog.FieldUpdateID, u.UpdateID,
		applog.FieldCorrelationID, uuid.NewString())
	ctx = applog.WithContext(ctx, logger)

	var err error
	if msg, ok := textMessageFrom(u); ok {
		err = h.HandleText(ctx, msg)
	} else if ev, ok := selectionFrom(u); ok {
		err = h.HandleSelection(ctx, ev)
	} else {
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "Update handler failed", applog.FieldError, err.Error())
	}
}

// SendReply implements bot.Messenger.
func (c *Client) SendReply(_ context.Context, chatID int64, text string, options []bot.Option) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(options) > 0 {
		msg.ReplyMarkup = keyboard(options)
	}
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// EditMessage implements bot.Messenger.
func (c *Client) EditMessage(_ context.Context, ref bot.MessageRef, text string) error {
	if ref.ChatID == 0 || ref.MessageID == 0 {
		return errNoMessage
	}
	if _, err := c.api.Request(tgbotapi.NewEditMessageText(ref.ChatID, ref.MessageID, text)); err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// Acknowledge implements bot.Messenger by answering the callback query.
// Queries Run already answered are not answered twice.
func (c *Client) Acknowledge(_ context.Context, selectionID string) error {
	if _, done := c.answered.LoadAndDelete(selectionID); done {
		return nil
	}
	return c.answer(selectionID)
}

func (c *Client) answer(selectionID string) error {
	if _, err := c.api.Request(tgbotapi.NewCallback(selectionID, "")); err != nil {
		return fmt.Errorf("answer callback query: %w", err)
	}
	return nil
}
