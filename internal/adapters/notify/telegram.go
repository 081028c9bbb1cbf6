package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

const telegramAPI = "https://api.telegram.org"

// Telegram sends messages through the Bot API with HTML markup.
type Telegram struct {
	token   string
	chatID  string
	baseURL string
	http    httpChannel
}

func NewTelegram(token, chatID string, timeout time.Duration, logger *zap.Logger) *Telegram {
	return &Telegram{
		token:   strings.TrimSpace(token),
		chatID:  strings.TrimSpace(chatID),
		baseURL: telegramAPI,
		http:    newHTTPChannel("telegram", timeout, logger),
	}
}

// WithBaseURL points the client at another Bot API host.
func (t *Telegram) WithBaseURL(u string) *Telegram {
	t.baseURL = strings.TrimRight(u, "/")
	return t
}

func (t *Telegram) Name() string { return "telegram" }

type telegramRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (t *Telegram) Send(ctx context.Context, msg domain.Message) error {
	if t.token == "" || t.chatID == "" {
		return fmt.Errorf("%w: telegram bot token and chat id are required", domain.ErrNotConfigured)
	}

	req := telegramRequest{
		ChatID:                t.chatID,
		Text:                  RenderTelegram(msg),
		ParseMode:             "HTML",
		DisableWebPagePreview: true,
	}
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)

	body, err := t.http.postJSON(ctx, endpoint, req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}

	var resp telegramResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("telegram rejected message: %s", resp.Description)
	}
	return nil
}

// RenderTelegram formats a message as Telegram HTML.
func RenderTelegram(msg domain.Message) string {
	esc := html.EscapeString
	var b strings.Builder
	if msg.Kind == domain.MessageTotal {
		fmt.Fprintf(&b, "<b>%s</b>: <i>%s $%s</i>", esc(msg.Title), esc(msg.Total), esc(msg.Symbol))
		fmt.Fprintf(&b, "\n%d unique agents", msg.UniqueCount)
		return b.String()
	}

	fmt.Fprintf(&b, "<b>%s</b>\n", esc(msg.Title))
	for _, line := range msg.Lines {
		b.WriteString("\n")
		if line.Link != "" {
			fmt.Fprintf(&b, `<a href="%s">%s</a>`, esc(line.Link), esc(line.Name))
		} else {
			b.WriteString(esc(line.Name))
		}
		fmt.Fprintf(&b, ": <i>%s $%s</i>", esc(line.Value), esc(msg.Symbol))
	}
	return b.String()
}
