package service

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// Rank orders results by total, descending. Failed results go last. Equal
// totals keep their input order.
func Rank(results []domain.AgentResult) []domain.AgentResult {
	ranked := append([]domain.AgentResult(nil), results...)
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.OK() != b.OK() {
			return a.OK()
		}
		if !a.OK() {
			return false
		}
		return a.Total.GreaterThan(b.Total)
	})
	return ranked
}

// InConfigOrder returns results sorted back into configuration order.
func InConfigOrder(results []domain.AgentResult) []domain.AgentResult {
	ordered := append([]domain.AgentResult(nil), results...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Agent.Position < ordered[j].Agent.Position
	})
	return ordered
}

// Dedupe keeps the first result per non-empty token identity, in the order
// given, and sums the kept values. Agents without an identity are always
// kept. Failed results are skipped and do not claim their identity.
func Dedupe(results []domain.AgentResult) domain.DedupedTotal {
	seen := make(map[string]struct{})
	out := domain.DedupedTotal{Total: decimal.Zero}

	for _, r := range results {
		if !r.OK() {
			continue
		}
		if key := strings.ToLower(strings.TrimSpace(r.Agent.TokenIdentity)); key != "" {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		out.Unique = append(out.Unique, r)
		out.Total = out.Total.Add(r.Total)
	}
	return out
}
