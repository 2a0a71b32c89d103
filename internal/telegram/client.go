// Package telegram pushes recommendations to a Telegram chat via the Bot API.
// Messages use MarkdownV2 and delivery is retried with linear backoff.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/diekoffieblik/brewcast/internal/models"
)

// sender is the part of *tgbotapi.BotAPI the client uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot sender, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// Send delivers a recommendation for userID
func (c *Client) Send(userID string, rec *models.Recommendation) error {
	msg := tgbotapi.NewMessage(c.chatID, formatMessage(userID, rec))
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

var confidenceEmoji = map[models.Confidence]string{
	models.ConfidenceHigh:    "🟢",
	models.ConfidenceMedium:  "🟡",
	models.ConfidenceLow:     "🟠",
	models.ConfidenceVeryLow: "⚪",
}

// formatMessage renders a recommendation as a MarkdownV2 message
func formatMessage(userID string, rec *models.Recommendation) string {
	var b strings.Builder

	b.WriteString("☕ *Drink suggestions*")
	if userID != "" {
		b.WriteString(" for ")
		b.WriteString(escapeMarkdownV2(userID))
	}
	b.WriteString("\n\n")

	if rec.TargetTime != "" {
		fmt.Fprintf(&b, "📅 %s", escapeMarkdownV2(rec.TargetTime))
		if rec.Weekday != "" {
			fmt.Fprintf(&b, " \\(%s, %s\\)", escapeMarkdownV2(rec.Weekday), escapeMarkdownV2(rec.TimePeriod))
		}
		b.WriteString("\n")
	}
	if t := rec.Weather.Temperature; t != nil {
		fmt.Fprintf(&b, "🌡 %s", escapeMarkdownV2(fmt.Sprintf("%.1f°C", *t)))
		if rec.Condition != "" {
			fmt.Fprintf(&b, ", %s", escapeMarkdownV2(strings.ReplaceAll(rec.Condition, "_", " ")))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, product := range rec.Suggestions {
		fmt.Fprintf(&b, "%d\\. *%s*", i+1, escapeMarkdownV2(product))
		if score, ok := rec.Scores[product]; ok {
			fmt.Fprintf(&b, " %s", escapeMarkdownV2(fmt.Sprintf("(%.2f)", score)))
		}
		b.WriteString("\n")
	}

	emoji := confidenceEmoji[rec.Confidence]
	fmt.Fprintf(&b, "\n%s Confidence: %s\n", emoji, escapeMarkdownV2(string(rec.Confidence)))
	fmt.Fprintf(&b, "💬 %s", escapeMarkdownV2(rec.Reasoning))

	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	// Characters that need escaping in MarkdownV2:
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!':
			b.WriteRune('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
