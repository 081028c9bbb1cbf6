package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// Discord posts messages to a webhook as markdown.
type Discord struct {
	webhookURL string
	http       httpChannel
}

func NewDiscord(webhookURL string, timeout time.Duration, logger *zap.Logger) *Discord {
	return &Discord{
		webhookURL: strings.TrimSpace(webhookURL),
		http:       newHTTPChannel("discord", timeout, logger),
	}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Send(ctx context.Context, msg domain.Message) error {
	if d.webhookURL == "" {
		return fmt.Errorf("%w: discord webhook url is not set", domain.ErrNotConfigured)
	}
	payload := map[string]string{"content": RenderDiscord(msg)}
	if _, err := d.http.postJSON(ctx, d.webhookURL, payload); err != nil {
		return fmt.Errorf("failed to send discord message: %w", err)
	}
	return nil
}

// RenderDiscord formats a message as Discord markdown.
func RenderDiscord(msg domain.Message) string {
	var b strings.Builder
	if msg.Kind == domain.MessageTotal {
		fmt.Fprintf(&b, "**%s**: *%s $%s*", msg.Title, msg.Total, msg.Symbol)
		fmt.Fprintf(&b, "\n%d unique agents", msg.UniqueCount)
		return b.String()
	}

	fmt.Fprintf(&b, "**%s**\n", msg.Title)
	for _, line := range msg.Lines {
		b.WriteString("\n")
		if line.Link != "" {
			fmt.Fprintf(&b, "[%s](%s)", line.Name, line.Link)
		} else {
			b.WriteString(line.Name)
		}
		fmt.Fprintf(&b, ": *%s $%s*", line.Value, msg.Symbol)
	}
	return b.String()
}
