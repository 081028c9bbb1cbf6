package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// Writer prints plain-text messages, one block per message.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (s *Writer) Name() string { return "stdout" }

func (s *Writer) Send(ctx context.Context, msg domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintln(s.w, RenderPlain(msg)+"\n")
	return err
}

// RenderPlain formats a message without markup.
func RenderPlain(msg domain.Message) string {
	var b strings.Builder
	if msg.Kind == domain.MessageTotal {
		fmt.Fprintf(&b, "%s: %s $%s (%d unique agents)", msg.Title, msg.Total, msg.Symbol, msg.UniqueCount)
		return b.String()
	}

	b.WriteString(msg.Title)
	for _, line := range msg.Lines {
		fmt.Fprintf(&b, "\n  %-10s %s $%s", line.Name, line.Value, msg.Symbol)
	}
	return b.String()
}
