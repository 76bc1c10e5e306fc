// Package chat delivers analysis summaries to a Telegram chat.
package chat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/p-n-ai/exam-coach/internal/history"
)

const (
	telegramMaxMessageLen = 4096
	telegramAPIBase       = "https://api.telegram.org/bot"
	parseModeHTML         = "HTML"
)

// TelegramNotifier posts a short summary of every completed analysis to one
// chat. It is a history.Recorder.
type TelegramNotifier struct {
	chatID  string
	baseURL string
	client  *http.Client
}

// TelegramOption configures a TelegramNotifier.
type TelegramOption func(*TelegramNotifier)

// WithTelegramBaseURL overrides the bot API endpoint, including the token.
func WithTelegramBaseURL(u string) TelegramOption {
	return func(t *TelegramNotifier) { t.baseURL = strings.TrimRight(u, "/") }
}

// WithTelegramHTTPClient sets the HTTP client.
func WithTelegramHTTPClient(c *http.Client) TelegramOption {
	return func(t *TelegramNotifier) { t.client = c }
}

// NewTelegramNotifier creates a notifier for chatID.
func NewTelegramNotifier(token, chatID string, opts ...TelegramOption) (*TelegramNotifier, error) {
	if token == "" {
		return nil, errors.New("telegram bot token is required (COACH_TELEGRAM_BOT_TOKEN)")
	}
	if chatID == "" {
		return nil, errors.New("telegram chat id is required (COACH_TELEGRAM_CHAT_ID)")
	}
	t := &TelegramNotifier{
		chatID:  chatID,
		baseURL: telegramAPIBase + token,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Record sends the summary for rec.
func (t *TelegramNotifier) Record(ctx context.Context, rec history.Record) error {
	return t.Send(ctx, FormatSummary(rec), parseModeHTML)
}

// Send posts text to the chat, splitting it to fit Telegram's limit. When the
// API rejects the formatting the part is retried as plain text.
func (t *TelegramNotifier) Send(ctx context.Context, text, parseMode string) error {
	for _, part := range SplitMessage(text, telegramMaxMessageLen) {
		params := url.Values{
			"chat_id": {t.chatID},
			"text":    {part},
		}
		if parseMode != "" {
			params.Set("parse_mode", parseMode)
		}

		status, err := t.post(ctx, "/sendMessage", params)
		if err != nil {
			return fmt.Errorf("sending Telegram message: %w", err)
		}
		if status == http.StatusOK {
			continue
		}
		if parseMode == "" || status != http.StatusBadRequest {
			return fmt.Errorf("telegram API error %d", status)
		}

		slog.Warn("Telegram formatted message rejected, retrying plain")
		params.Del("parse_mode")
		status, err = t.post(ctx, "/sendMessage", params)
		if err != nil {
			return fmt.Errorf("sending Telegram message (retry): %w", err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("telegram API error %d on retry", status)
		}
	}
	return nil
}

// HealthCheck calls getMe.
func (t *TelegramNotifier) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/getMe", nil)
	if err != nil {
		return fmt.Errorf("create getMe request: %w", err)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram getMe status %d", resp.StatusCode)
	}
	return nil
}

func (t *TelegramNotifier) post(ctx context.Context, method string, params url.Values) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+method, strings.NewReader(params.Encode()))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// FormatSummary renders rec as a Telegram HTML message.
func FormatSummary(rec history.Record) string {
	var b strings.Builder
	b.WriteString("<b>New question analyzed</b>\n")
	fmt.Fprintf(&b, "Image: %s\n", html.EscapeString(filepath.Base(rec.ImagePath)))
	fmt.Fprintf(&b, "Exam: %s\n", html.EscapeString(orDash(rec.ExamType)))
	fmt.Fprintf(&b, "Subject: %s\n", html.EscapeString(orDash(rec.Subject)))
	fmt.Fprintf(&b, "Topic: %s\n", html.EscapeString(orDash(rec.Topic)))
	if rec.Matched {
		fmt.Fprintf(&b, "Curriculum: matched (%s)\n", html.EscapeString(orDash(rec.Importance)))
	} else {
		b.WriteString("Curriculum: no match\n")
	}
	if rec.ReportPath != "" {
		fmt.Fprintf(&b, "Report: %s\n", html.EscapeString(filepath.Base(rec.ReportPath)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// SplitMessage splits text into chunks that fit Telegram's max message length.
func SplitMessage(text string, maxLen int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= maxLen {
		return []string{text}
	}

	var parts []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			parts = append(parts, text)
			break
		}
		// Find last newline or space within limit
		cutAt := maxLen
		if idx := strings.LastIndex(text[:maxLen], "\n"); idx > 0 {
			cutAt = idx + 1
		} else if idx := strings.LastIndex(text[:maxLen], " "); idx > 0 {
			cutAt = idx + 1
		}
		parts = append(parts, text[:cutAt])
		text = text[cutAt:]
	}
	return parts
}
