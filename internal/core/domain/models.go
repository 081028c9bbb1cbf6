package domain

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// TokenDecimals is the fixed decimal count of the tracked token.
const TokenDecimals = 18

// ErrorValue is what a failed agent renders as in summaries.
const ErrorValue = "Error"

// Timeframe identifies the window transfers are summed over.
type Timeframe string

const (
	Daily   Timeframe = "daily"   // rolling 24h ending at the latest block
	Weekly  Timeframe = "weekly"  // rolling 7d ending at the latest block
	Monthly Timeframe = "monthly" // calendar month-to-date, from 00:00 UTC on the 1st
)

// Timeframes lists every timeframe in startup order.
var Timeframes = []Timeframe{Daily, Weekly, Monthly}

// ParseTimeframe accepts the canonical names plus the short forms "24h",
// "1w" and "1m".
func ParseTimeframe(s string) (Timeframe, error) {
	switch s {
	case "daily", "24h":
		return Daily, nil
	case "weekly", "1w":
		return Weekly, nil
	case "monthly", "1m":
		return Monthly, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTimeframe, s)
}

// Validate reports ErrInvalidTimeframe for anything but the three known values.
func (t Timeframe) Validate() error {
	switch t {
	case Daily, Weekly, Monthly:
		return nil
	}
	return fmt.Errorf("%w: %q", ErrInvalidTimeframe, string(t))
}

// Label is the human readable name used in message headers.
func (t Timeframe) Label() string {
	switch t {
	case Daily:
		return "Daily"
	case Weekly:
		return "Weekly"
	case Monthly:
		return "Monthly"
	}
	return string(t)
}

// RollingWindow returns the window length for rolling timeframes. Monthly is
// calendar aligned and reports ok=false.
func (t Timeframe) RollingWindow() (seconds uint64, ok bool) {
	switch t {
	case Daily:
		return 24 * 60 * 60, true
	case Weekly:
		return 7 * 24 * 60 * 60, true
	}
	return 0, false
}

// Agent is a tracked receiving address.
type Agent struct {
	Name string `json:"name"`
	// Address is the recipient the transfer logs are filtered by.
	Address common.Address `json:"address"`
	// TokenIdentity is the canonical address used to detect the same agent
	// across groups. Empty means the agent is never merged with another.
	TokenIdentity string `json:"token_identity,omitempty"`
	Group         string `json:"group"`
	// Position is the agent's index within its group's configuration.
	Position int `json:"position"`
}

// Group is a named, ordered collection of agents reported together.
type Group struct {
	Name   string  `json:"name"`
	Agents []Agent `json:"agents"`
}

// BlockRef is the subset of a block header the resolver needs.
type BlockRef struct {
	Number    uint64
	Timestamp uint64
}

// TransferEvent is a decoded ERC-20 Transfer log with the recipient pinned.
type TransferEvent struct {
	Sender      common.Address
	Recipient   common.Address
	Data        []byte
	BlockNumber uint64
	TxHash      common.Hash
}

// ResultStatus tags an AgentResult.
type ResultStatus int

const (
	ResultOK ResultStatus = iota
	ResultFailed
)

func (s ResultStatus) String() string {
	if s == ResultFailed {
		return "failed"
	}
	return "ok"
}

// AgentResult is the outcome of aggregating one agent's transfers.
// TotalRaw and Total are only meaningful when Status is ResultOK.
type AgentResult struct {
	Agent        Agent
	Status       ResultStatus
	TotalRaw     *big.Int
	Total        decimal.Decimal
	TotalDecimal string
	Err          error
}

// OK reports whether the result carries a value.
func (r AgentResult) OK() bool { return r.Status == ResultOK }

// NewOKResult builds a successful result from an exact raw sum.
func NewOKResult(agent Agent, raw *big.Int, formatted string) AgentResult {
	return AgentResult{
		Agent:        agent,
		Status:       ResultOK,
		TotalRaw:     raw,
		Total:        decimal.NewFromBigInt(raw, -TokenDecimals),
		TotalDecimal: formatted,
	}
}

// NewFailedResult builds the sentinel result for an agent whose fetch failed.
func NewFailedResult(agent Agent, err error) AgentResult {
	return AgentResult{
		Agent:        agent,
		Status:       ResultFailed,
		TotalDecimal: ErrorValue,
		Err:          err,
	}
}

// GroupSummary is one group's results for one run, in ranked order.
type GroupSummary struct {
	Group     string
	Timeframe Timeframe
	FromBlock uint64
	Results   []AgentResult
}

// DedupedTotal is the cross-group total with duplicates removed.
type DedupedTotal struct {
	Unique []AgentResult
	Total  decimal.Decimal
	// Date is the UTC calendar day the total covers.
	Date time.Time
}

// MessageKind distinguishes group summaries from the daily total.
type MessageKind string

const (
	MessageGroup MessageKind = "group"
	MessageTotal MessageKind = "total"
)

// MessageLine is one agent row of a group message.
type MessageLine struct {
	Name  string
	Link  string
	Value string
}

// Message is the channel-agnostic payload handed to notifiers. Each channel
// renders it in its own markup.
type Message struct {
	Kind      MessageKind
	Timeframe Timeframe
	Title     string
	Lines     []MessageLine
	Symbol    string
	// Total and Date are set for MessageTotal.
	Total       string
	Date        time.Time
	UniqueCount int
}
