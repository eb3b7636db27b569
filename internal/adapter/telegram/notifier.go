package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/url"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// messageSender is the subset of *bot.Bot the notifier uses.
type messageSender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Notifier implements ports.Notifier over the Telegram Bot API. Messages are
// sent as HTML; if Telegram rejects that, the unescaped text is sent once
// more without a parse mode.
type Notifier struct {
	sender  messageSender
	timeout time.Duration
	log     zerolog.Logger
}

// NewBot creates the Bot API client. bot.New validates the token with getMe.
func NewBot(token string) (*bot.Bot, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return b, nil
}

// NewNotifier creates a Notifier. timeout bounds each send attempt; zero
// leaves it to the caller's context.
func NewNotifier(sender messageSender, timeout time.Duration, log zerolog.Logger) *Notifier {
	return &Notifier{
		sender:  sender,
		timeout: timeout,
		log:     log,
	}
}

// Notify delivers text to chatID.
func (n *Notifier) Notify(ctx context.Context, chatID string, text string) error {
	target := chatTarget(chatID)

	err := n.send(ctx, target, text, models.ParseModeHTML)
	if err == nil {
		return nil
	}
	if !rejected(err) {
		return fmt.Errorf("send message to %s: %w", chatID, err)
	}
	n.log.Warn().Err(err).Str("chat_id", chatID).Msg("HTML send rejected, retrying as plain text")

	if err := n.send(ctx, target, html.UnescapeString(text), ""); err != nil {
		return fmt.Errorf("send message to %s: %w", chatID, err)
	}
	return nil
}

func (n *Notifier) send(ctx context.Context, chatID any, text string, mode models.ParseMode) error {
	if n.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.timeout)
		defer cancel()
	}

	disablePreview := true
	_, err := n.sender.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: mode,
		LinkPreviewOptions: &models.LinkPreviewOptions{
			IsDisabled: &disablePreview,
		},
	})
	return err
}

// rejected reports whether Telegram answered with an error, as opposed to the
// request never completing.
func rejected(err error) bool {
	var urlErr *url.Error
	switch {
	case errors.As(err, &urlErr),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return false
	}
	return true
}

// chatTarget passes numeric ids as int64 and @channel usernames as strings.
func chatTarget(chatID string) any {
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		return id
	}
	return chatID
}
