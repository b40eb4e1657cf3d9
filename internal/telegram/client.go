// Package telegram pushes steamroller verdicts to a Telegram chat.
//
// Only reports whose verdict names a side and reaches the configured risk
// band are sent. Messages use MarkdownV2 and delivery is retried with a
// linear backoff.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/polysteamroller/internal/analyzer"
	"github.com/rewired-gh/polysteamroller/internal/logger"
	"github.com/rewired-gh/polysteamroller/internal/models"
)

const eventURLBase = "https://polymarket.com/event/"

// sender is the part of tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	minRisk        models.RiskLabel
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client. minRisk is the lowest overall
// risk band that triggers a message.
func NewClient(botToken, chatID string, minRisk models.RiskLabel, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, minRisk, maxRetries, retryDelayBase)
}

func newClient(bot sender, chatID string, minRisk models.RiskLabel, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if minRisk == "" {
		minRisk = models.RiskMedium
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
		minRisk:        minRisk,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// ShouldNotify reports whether the report's verdict is worth a message.
func (c *Client) ShouldNotify(report *analyzer.Report) bool {
	if report == nil || report.Verdict.Side == nil {
		return false
	}
	return report.Verdict.OverallRisk.Rank() >= c.minRisk.Rank()
}

// SendVerdict sends the report's verdict if it passes ShouldNotify. It
// returns false without error when the report was filtered out.
func (c *Client) SendVerdict(ctx context.Context, report *analyzer.Report) (bool, error) {
	if !c.ShouldNotify(report) {
		return false, nil
	}

	msg := tgbotapi.NewMessage(c.chatID, formatMessage(report))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	msg.DisableWebPagePreview = true

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			logger.Debug("Telegram verdict sent for event %s", report.EventID)
			return true, nil
		}
		lastErr = err
		logger.Warn("Telegram send attempt %d/%d failed: %v", i+1, c.maxRetries, err)

		if i == c.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(c.retryDelayBase * time.Duration(i+1)):
		}
	}

	return false, fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

// formatMessage renders a report as a MarkdownV2 message.
func formatMessage(r *analyzer.Report) string {
	var b strings.Builder

	b.WriteString(riskEmoji(r.Verdict.OverallRisk))
	b.WriteString(" *Steamroller alert: ")
	b.WriteString(escapeMarkdownV2(strings.ToUpper(string(r.Verdict.OverallRisk))))
	b.WriteString("*\n\n")

	title := escapeMarkdownV2(r.Title)
	if r.Slug != "" {
		title = fmt.Sprintf("[%s](%s)", title, escapeLinkURL(eventURLBase+r.Slug))
	}
	b.WriteString(title)
	b.WriteString("\n")

	if r.MarketTitle != "" && r.MarketTitle != r.Title {
		fmt.Fprintf(&b, "🎯 Market: %s\n", escapeMarkdownV2(r.MarketTitle))
	}

	side := r.Verdict.SideName()
	for _, o := range r.Outcomes {
		if o.Label != side {
			continue
		}
		fmt.Fprintf(&b, "⚖️ Side: *%s* at %s, wipeout %s\n",
			escapeMarkdownV2(side),
			escapeMarkdownV2(fmt.Sprintf("%.1f%%", o.Profile.Probability*100)),
			escapeMarkdownV2(fmt.Sprintf("%.1fx", o.Profile.WipeoutFactor)))
		break
	}

	fmt.Fprintf(&b, "📊 Score: %s\n", escapeMarkdownV2(fmt.Sprintf("%.2f", r.Verdict.Score)))
	if r.DaysLeft != nil {
		fmt.Fprintf(&b, "⏱ Time left: %s\n", escapeMarkdownV2(formatDays(*r.DaysLeft)))
	}
	fmt.Fprintf(&b, "💰 Volume: %s\n\n", escapeMarkdownV2(r.VolumeText))
	b.WriteString(escapeMarkdownV2(r.Verdict.Message))

	return b.String()
}

func riskEmoji(l models.RiskLabel) string {
	switch l {
	case models.RiskHigh:
		return "🚨"
	case models.RiskMedium:
		return "⚠️"
	default:
		return "ℹ️"
	}
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}

// escapeLinkURL escapes the characters MarkdownV2 requires inside (...) of a link.
func escapeLinkURL(u string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(u)
}

// formatDays renders a fractional day count: hours under a day, else days.
func formatDays(days float64) string {
	if days < 1 {
		return fmt.Sprintf("%dh", int(days*24))
	}
	return fmt.Sprintf("%.1fd", days)
}
