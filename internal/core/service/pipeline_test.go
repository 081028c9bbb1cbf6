package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
	"github.com/AbstractLogica/acp-tracker/internal/metrics"
)

var (
	addrA = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	addrB = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	addrC = common.HexToAddress("0x00000000000000000000000000000000000000c3")
	addrD = common.HexToAddress("0x00000000000000000000000000000000000000d4")
)

func newTestPipeline(chain *fakeChain, m *metrics.Metrics) *GroupPipeline {
	windows := NewWindowResolver(chain, NewBlockTimestampResolver(chain), nil)
	return NewGroupPipeline(chain, windows, NewAggregator(), m, zap.NewNop())
}

func testGroup(name string, agents ...domain.Agent) domain.Group {
	for i := range agents {
		agents[i].Group = name
		agents[i].Position = i
	}
	return domain.Group{Name: name, Agents: agents}
}

func TestGroupPipeline_RanksAgents(t *testing.T) {
	chain := newFakeChain(50, 2)
	chain.transfers = map[common.Address][]domain.TransferEvent{
		addrA: {transfer(tokens(1)), transfer(tokens(2))},
		addrB: {transfer(tokens(10))},
	}
	group := testGroup("AHF", domain.Agent{Name: "A", Address: addrA}, domain.Agent{Name: "B", Address: addrB})

	summary, err := newTestPipeline(chain, nil).Run(context.Background(), domain.Daily, group)
	require.NoError(t, err)

	assert.Equal(t, "AHF", summary.Group)
	assert.Equal(t, domain.Daily, summary.Timeframe)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "B", summary.Results[0].Agent.Name)
	assert.Equal(t, "10.0", summary.Results[0].TotalDecimal)
	assert.Equal(t, "3.0", summary.Results[1].TotalDecimal)
}

func TestGroupPipeline_AgentFailureDoesNotAbortGroup(t *testing.T) {
	chain := newFakeChain(50, 2)
	boom := errors.New("connection reset")
	chain.transfers = map[common.Address][]domain.TransferEvent{
		addrA: {transfer(tokens(4))},
		addrB: {transfer(tokens(1))},
		addrD: {transfer(tokens(2))},
	}
	chain.failing = map[common.Address]error{addrC: boom}
	group := testGroup("AMH",
		domain.Agent{Name: "A", Address: addrA},
		domain.Agent{Name: "B", Address: addrB},
		domain.Agent{Name: "C", Address: addrC},
		domain.Agent{Name: "D", Address: addrD},
	)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	summary, err := newTestPipeline(chain, m).Run(context.Background(), domain.Weekly, group)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D", "B", "C"}, names(summary.Results))
	failed := summary.Results[3]
	assert.Equal(t, domain.ResultFailed, failed.Status)
	assert.Equal(t, domain.ErrorValue, failed.TotalDecimal)
	assert.ErrorIs(t, failed.Err, boom)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AgentFailures.WithLabelValues("weekly", "AMH")))
}

func TestGroupPipeline_MalformedLogFailsOnlyThatAgent(t *testing.T) {
	chain := newFakeChain(50, 2)
	chain.transfers = map[common.Address][]domain.TransferEvent{
		addrA: {{}},
		addrB: {transfer(tokens(1))},
	}
	group := testGroup("AHF", domain.Agent{Name: "A", Address: addrA}, domain.Agent{Name: "B", Address: addrB})

	summary, err := newTestPipeline(chain, nil).Run(context.Background(), domain.Daily, group)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, names(summary.Results))
	assert.ErrorIs(t, summary.Results[1].Err, domain.ErrMalformedLog)
}

func TestGroupPipeline_WindowFailureFailsGroup(t *testing.T) {
	chain := newFakeChain(50, 2)
	chain.latestErr = errors.New("rpc down")
	group := testGroup("AHF", domain.Agent{Name: "A", Address: addrA})

	_, err := newTestPipeline(chain, nil).Run(context.Background(), domain.Daily, group)
	assert.ErrorIs(t, err, chain.latestErr)
}

func TestGroupPipeline_ResolvesWindowOncePerRun(t *testing.T) {
	chain := newFakeChain(50, 2)
	res := &recordingResolver{block: 7}
	p := NewGroupPipeline(chain, NewWindowResolver(chain, res, nil), NewAggregator(), nil, zap.NewNop())
	group := testGroup("AHF",
		domain.Agent{Name: "A", Address: addrA},
		domain.Agent{Name: "B", Address: addrB},
		domain.Agent{Name: "C", Address: addrC},
	)

	summary, err := p.Run(context.Background(), domain.Monthly, group)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), summary.FromBlock)
	assert.Len(t, res.targets, 1)
}
