package telegram

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/polysteamroller/internal/analyzer"
	"github.com/rewired-gh/polysteamroller/internal/models"
)

type fakeBot struct {
	failures int
	sent     []tgbotapi.MessageConfig
	calls    int
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.calls++
	if f.calls <= f.failures {
		return tgbotapi.Message{}, errors.New("telegram unavailable")
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: f.calls}, nil
}

func floatPtr(v float64) *float64 { return &v }

func testReport(risk models.RiskLabel, withSide bool) *analyzer.Report {
	r := &analyzer.Report{
		EventID:     "16085",
		Slug:        "fed-decision-in-october",
		Title:       "Fed decision in October?",
		MarketTitle: "Fed holds rates?",
		VolumeText:  "$1,234,568",
		DaysLeft:    floatPtr(10),
		Outcomes: []models.LabeledProfile{
			{Label: "Yes", Profile: models.RiskProfile{Probability: 0.95, WipeoutFactor: 19}},
			{Label: "No", Profile: models.RiskProfile{Probability: 0.05, WipeoutFactor: 0.0526}},
		},
		Verdict: models.SteamrollerVerdict{
			OverallRisk: risk,
			Score:       23.5,
			Message:     "Yes looks like a steamroller trade.",
		},
	}
	if withSide {
		side := "Yes"
		r.Verdict.Side = &side
	}
	return r
}

func TestShouldNotify(t *testing.T) {
	bot := &fakeBot{}
	c, err := newClient(bot, "12345", models.RiskMedium, 1, time.Millisecond)
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}

	tests := []struct {
		name   string
		report *analyzer.Report
		want   bool
	}{
		{"nil report", nil, false},
		{"no side", testReport(models.RiskLow, false), false},
		{"below threshold", testReport(models.RiskLow, true), false},
		{"at threshold", testReport(models.RiskMedium, true), true},
		{"above threshold", testReport(models.RiskHigh, true), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ShouldNotify(tt.report); got != tt.want {
				t.Errorf("ShouldNotify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSendVerdictRetries(t *testing.T) {
	bot := &fakeBot{failures: 2}
	c, err := newClient(bot, "12345", models.RiskMedium, 3, time.Millisecond)
	if err != nil {
		t.Fatalf("newClient() error = %v", err)
	}

	sent, err := c.SendVerdict(context.Background(), testReport(models.RiskHigh, true))
	if err != nil {
		t.Fatalf("SendVerdict() error = %v", err)
	}
	if !sent {
		t.Error("Expected message to be sent")
	}
	if bot.calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", bot.calls)
	}
	if len(bot.sent) != 1 {
		t.Fatalf("Expected 1 delivered message, got %d", len(bot.sent))
	}
	msg := bot.sent[0]
	if msg.ChatID != 12345 {
		t.Errorf("Expected chat 12345, got %d", msg.ChatID)
	}
	if msg.ParseMode != tgbotapi.ModeMarkdownV2 {
		t.Errorf("Expected MarkdownV2 parse mode, got %q", msg.ParseMode)
	}
}

func TestSendVerdictGivesUp(t *testing.T) {
	bot := &fakeBot{failures: 10}
	c, _ := newClient(bot, "12345", models.RiskMedium, 2, time.Millisecond)

	sent, err := c.SendVerdict(context.Background(), testReport(models.RiskHigh, true))
	if err == nil {
		t.Fatal("Expected error after exhausting retries")
	}
	if sent {
		t.Error("Expected sent = false")
	}
	if bot.calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", bot.calls)
	}
}

func TestSendVerdictSkipsFiltered(t *testing.T) {
	bot := &fakeBot{}
	c, _ := newClient(bot, "12345", models.RiskHigh, 1, time.Millisecond)

	sent, err := c.SendVerdict(context.Background(), testReport(models.RiskMedium, true))
	if err != nil || sent {
		t.Errorf("Expected silent skip, got sent=%v err=%v", sent, err)
	}
	if bot.calls != 0 {
		t.Errorf("Expected no send attempts, got %d", bot.calls)
	}
}

func TestNewClientInvalidChatID(t *testing.T) {
	if _, err := newClient(&fakeBot{}, "not-a-number", models.RiskMedium, 1, time.Second); err == nil {
		t.Error("Expected error for invalid chat ID")
	}
}

func TestFormatMessage(t *testing.T) {
	msg := formatMessage(testReport(models.RiskHigh, true))

	for _, want := range []string{
		"*Steamroller alert: HIGH*",
		"[Fed decision in October?](https://polymarket.com/event/fed-decision-in-october)",
		"Market: Fed holds rates?",
		"Side: *Yes* at 95\\.0%, wipeout 19\\.0x",
		"Score: 23\\.50",
		"Time left: 10\\.0d",
		"Volume: $1,234,568",
		"Yes looks like a steamroller trade\\.",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected message to contain %q, got:\n%s", want, msg)
		}
	}
}

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"v1.2", "v1\\.2"},
		{"a-b_c*d", "a\\-b\\_c\\*d"},
		{"(x)!", "\\(x\\)\\!"},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeMarkdownV2(tt.in); got != tt.want {
			t.Errorf("escapeMarkdownV2(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDays(t *testing.T) {
	tests := []struct {
		days float64
		want string
	}{
		{0, "0h"},
		{0.5, "12h"},
		{1, "1.0d"},
		{10.26, "10.3d"},
	}

	for _, tt := range tests {
		if got := formatDays(tt.days); got != tt.want {
			t.Errorf("formatDays(%v) = %s, expected %s", tt.days, got, tt.want)
		}
	}
}
