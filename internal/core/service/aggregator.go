package service

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// Aggregator sums transfer amounts exactly.
type Aggregator struct{}

func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Sum parses every event's data as an unsigned big-endian integer and adds
// them with arbitrary precision.
func (a *Aggregator) Sum(events []domain.TransferEvent) (*big.Int, error) {
	total := new(big.Int)
	for _, ev := range events {
		if len(ev.Data) == 0 {
			return nil, fmt.Errorf("%w: empty data in tx %s", domain.ErrMalformedLog, ev.TxHash.Hex())
		}
		total.Add(total, new(big.Int).SetBytes(ev.Data))
	}
	return total, nil
}

// Aggregate returns the exact raw sum and its 18-decimal rendering.
func (a *Aggregator) Aggregate(events []domain.TransferEvent) (*big.Int, string, error) {
	total, err := a.Sum(events)
	if err != nil {
		return nil, "", err
	}
	return total, FormatUnits(total, domain.TokenDecimals), nil
}

// FormatUnits renders raw / 10^decimals with trailing zeros trimmed and at
// least one fractional digit, so 10^18 is "1.0" and zero is "0.0".
func FormatUnits(raw *big.Int, decimals int32) string {
	s := decimal.NewFromBigInt(raw, -decimals).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
