package service

import (
	"fmt"
	"strings"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

const valuePlaces = 4

// MessageBuilder turns run output into channel-agnostic messages.
type MessageBuilder struct {
	Symbol      string
	ExplorerURL string
}

// Group builds the summary message for one group, keeping ranked order.
func (b MessageBuilder) Group(s *domain.GroupSummary) domain.Message {
	lines := make([]domain.MessageLine, 0, len(s.Results))
	for _, r := range s.Results {
		lines = append(lines, domain.MessageLine{
			Name:  r.Agent.Name,
			Link:  b.TokenLink(r.Agent.TokenIdentity),
			Value: FormatValue(r),
		})
	}
	return domain.Message{
		Kind:      domain.MessageGroup,
		Timeframe: s.Timeframe,
		Title:     fmt.Sprintf("%s %s summary", s.Timeframe.Label(), s.Group),
		Lines:     lines,
		Symbol:    b.Symbol,
	}
}

// Total builds the daily deduplicated total message.
func (b MessageBuilder) Total(t domain.DedupedTotal) domain.Message {
	return domain.Message{
		Kind:        domain.MessageTotal,
		Timeframe:   domain.Daily,
		Title:       "Total " + t.Date.Format("2006-01-02"),
		Symbol:      b.Symbol,
		Total:       t.Total.StringFixed(valuePlaces),
		Date:        t.Date,
		UniqueCount: len(t.Unique),
	}
}

// TokenLink is the explorer page for a token identity, or "" when the agent
// has none.
func (b MessageBuilder) TokenLink(identity string) string {
	if identity == "" || b.ExplorerURL == "" {
		return ""
	}
	return strings.TrimRight(b.ExplorerURL, "/") + "/token/" + identity
}

// FormatValue renders a result for display.
func FormatValue(r domain.AgentResult) string {
	if !r.OK() {
		return domain.ErrorValue
	}
	return r.Total.StringFixed(valuePlaces)
}
