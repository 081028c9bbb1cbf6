package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	cfg, err := LoadFile(writeConfig(t, "log_level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "https://mainnet.base.org", cfg.Chain.RPCURL)
	assert.Equal(t, common.HexToAddress("0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b"), cfg.TokenAddress())
	assert.Equal(t, "VIRTUAL", cfg.Chain.TokenSymbol)
	assert.Equal(t, time.Second, cfg.Gateway.MinInterval)
	assert.True(t, cfg.Scheduler.RunOnStartup)
	assert.True(t, cfg.Scheduler.SkipIfRunning)
	assert.Equal(t, "0 0 * * 1", cfg.Scheduler.Specs()[domain.Weekly])
	assert.Equal(t, 10*time.Second, cfg.Notify.Timeout)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 6*time.Hour, cfg.Redis.LockTTL)
	assert.Equal(t, ":9090", cfg.Metrics.ListenAddr)

	require.Len(t, cfg.Groups, 3)
	assert.Equal(t, "AHF", cfg.Groups[0].Name)
}

func TestLoadFile_LegacyEnvNames(t *testing.T) {
	t.Setenv("BASE_RPC_URL", "https://rpc.example.org")
	t.Setenv("DISCORD_WEBHOOK_URL", "https://discord.example/webhook")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_CHAT_ID", "-100")

	cfg, err := LoadFile(writeConfig(t, "environment: development\n"))
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "https://rpc.example.org", cfg.Chain.RPCURL)
	assert.Equal(t, "https://discord.example/webhook", cfg.Notify.DiscordWebhookURL)
	assert.Equal(t, "123:abc", cfg.Notify.TelegramBotToken)
	assert.Equal(t, "-100", cfg.Notify.TelegramChatID)
}

func TestLoadFile_NestedEnvOverride(t *testing.T) {
	t.Setenv("GATEWAY_MIN_INTERVAL", "250ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := LoadFile(writeConfig(t, "gateway:\n  min_interval: 2s\n"))
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, cfg.Gateway.MinInterval)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoadFile_Groups(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
groups:
  - name: ONE
    agents:
      - name: A
        address: "0x00000000000000000000000000000000000000a1"
        token: "0x00000000000000000000000000000000000000f1"
      - name: B
        address: "0x00000000000000000000000000000000000000b2"
  - name: TWO
    agents:
      - name: C
        address: "0x00000000000000000000000000000000000000c3"
        token: "0x00000000000000000000000000000000000000f1"
`))
	require.NoError(t, err)

	groups := cfg.DomainGroups()
	require.Len(t, groups, 2)
	require.Len(t, groups[0].Agents, 2)

	b := groups[0].Agents[1]
	assert.Equal(t, "B", b.Name)
	assert.Equal(t, "ONE", b.Group)
	assert.Equal(t, 1, b.Position)
	assert.Empty(t, b.TokenIdentity)
	assert.Equal(t, common.HexToAddress("0x00000000000000000000000000000000000000b2"), b.Address)
	assert.Equal(t, groups[0].Agents[0].TokenIdentity, groups[1].Agents[0].TokenIdentity)
}

func TestLoadFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"bad token address", "chain:\n  token_address: nope\n", "chain.token_address"},
		{"bad interval", "gateway:\n  min_interval: 0s\n", "gateway.min_interval"},
		{"bad cron", "scheduler:\n  daily_spec: \"at midnight\"\n", "daily_spec"},
		{"bad agent address", "groups:\n  - name: G\n    agents:\n      - name: A\n        address: 0x12\n", "invalid address"},
		{"duplicate group", "groups:\n  - name: G\n  - name: G\n", "duplicate group"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultGroups(t *testing.T) {
	cfg := &Config{Groups: DefaultGroups()}
	groups := cfg.DomainGroups()

	require.Len(t, groups, 3)
	assert.Len(t, groups[0].Agents, 9)
	assert.Len(t, groups[1].Agents, 6)
	assert.Len(t, groups[2].Agents, 5)

	identities := map[string]int{}
	for _, g := range groups {
		for _, a := range g.Agents {
			if a.TokenIdentity != "" {
				identities[a.TokenIdentity]++
			}
		}
	}
	assert.Equal(t, 2, identities["0xea87169699dabd028a78d4B91544b4298086BAF6"], "SWARM is in AHF and AVC")
	assert.Equal(t, 2, identities["0x1A3e429D2D22149Cc61e0f539B112a227c844aa3"], "LOKY is in AHF and AVC")
}
