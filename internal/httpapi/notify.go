package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Notifier delivers a manual status report.
type Notifier interface {
	Send(ctx context.Context, msg string) error
}

// LogNotifier writes reports to the log instead of delivering them.
type LogNotifier struct {
	Log *slog.Logger
}

// Send implements Notifier.
func (n LogNotifier) Send(_ context.Context, msg string) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification", "message", msg)
	return nil
}

// TelegramNotifier posts reports to a Telegram chat through the Bot API.
type TelegramNotifier struct {
	Token  string
	ChatID string
	// APIBase defaults to https://api.telegram.org.
	APIBase string
	Client  *http.Client
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Send implements Notifier.
func (n TelegramNotifier) Send(ctx context.Context, msg string) error {
	if n.Token == "" || n.ChatID == "" {
		return fmt.Errorf("telegram: token or chat id not set")
	}
	base := n.APIBase
	if base == "" {
		base = "https://api.telegram.org"
	}
	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	body, err := json.Marshal(telegramMessage{ChatID: n.ChatID, Text: msg, ParseMode: "HTML"})
	if err != nil {
		return fmt.Errorf("telegram: encoding message: %w", err)
	}
	url := strings.TrimSuffix(base, "/") + "/bot" + n.Token + "/sendMessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: sending message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return nil
}
