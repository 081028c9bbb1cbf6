package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"

	"github.com/AbstractLogica/acp-tracker/internal/core/domain"
)

// Config holds all tracker configuration.
type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Chain       ChainConfig     `mapstructure:"chain"`
	Gateway     GatewayConfig   `mapstructure:"gateway"`
	Scheduler   SchedulerConfig `mapstructure:"scheduler"`
	Notify      NotifyConfig    `mapstructure:"notify"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	Groups      []GroupConfig   `mapstructure:"groups"`
}

type ChainConfig struct {
	RPCURL       string `mapstructure:"rpc_url"`
	TokenAddress string `mapstructure:"token_address"`
	TokenSymbol  string `mapstructure:"token_symbol"`
	ExplorerURL  string `mapstructure:"explorer_url"`
}

type GatewayConfig struct {
	MinInterval time.Duration `mapstructure:"min_interval"`
}

type SchedulerConfig struct {
	RunOnStartup  bool   `mapstructure:"run_on_startup"`
	SkipIfRunning bool   `mapstructure:"skip_if_running"`
	DailySpec     string `mapstructure:"daily_spec"`
	WeeklySpec    string `mapstructure:"weekly_spec"`
	MonthlySpec   string `mapstructure:"monthly_spec"`
}

// Specs maps each timeframe to its cron expression.
func (s SchedulerConfig) Specs() map[domain.Timeframe]string {
	return map[domain.Timeframe]string{
		domain.Daily:   s.DailySpec,
		domain.Weekly:  s.WeeklySpec,
		domain.Monthly: s.MonthlySpec,
	}
}

type NotifyConfig struct {
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
	TelegramBotToken  string        `mapstructure:"telegram_bot_token"`
	TelegramChatID    string        `mapstructure:"telegram_chat_id"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	LockTTL  time.Duration `mapstructure:"lock_ttl"`
}

// Enabled reports whether the shared run guard should be used.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

type MetricsConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type GroupConfig struct {
	Name   string        `mapstructure:"name"`
	Agents []AgentConfig `mapstructure:"agents"`
}

type AgentConfig struct {
	Name    string `mapstructure:"name"`
	Address string `mapstructure:"address"`
	// Token is the agent's own token contract, used to spot the same agent
	// listed in several groups. May be empty.
	Token string `mapstructure:"token"`
}

// Load reads .env, an optional config.yaml from ./configs or the working
// directory, and the environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return load(v)
}

// LoadFile is Load with an explicit config file.
func LoadFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindLegacyEnv(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if len(config.Groups) == 0 {
		config.Groups = DefaultGroups()
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "production")
	v.SetDefault("log_level", "info")

	v.SetDefault("chain.rpc_url", "https://mainnet.base.org")
	v.SetDefault("chain.token_address", "0x0b3e328455c4059EEb9e3f84b5543F74E24e7E1b")
	v.SetDefault("chain.token_symbol", "VIRTUAL")
	v.SetDefault("chain.explorer_url", "https://basescan.org")

	v.SetDefault("gateway.min_interval", time.Second)

	v.SetDefault("scheduler.run_on_startup", true)
	v.SetDefault("scheduler.skip_if_running", true)
	v.SetDefault("scheduler.daily_spec", "0 0 * * *")
	v.SetDefault("scheduler.weekly_spec", "0 0 * * 1")
	v.SetDefault("scheduler.monthly_spec", "0 0 1 * *")

	v.SetDefault("notify.discord_webhook_url", "")
	v.SetDefault("notify.telegram_bot_token", "")
	v.SetDefault("notify.telegram_chat_id", "")
	v.SetDefault("notify.timeout", 10*time.Second)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_ttl", 6*time.Hour)

	v.SetDefault("metrics.listen_addr", ":9090")
}

// bindLegacyEnv accepts the unprefixed variable names older deployments use.
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("chain.rpc_url", "CHAIN_RPC_URL", "BASE_RPC_URL")
	_ = v.BindEnv("notify.discord_webhook_url", "NOTIFY_DISCORD_WEBHOOK_URL", "DISCORD_WEBHOOK_URL")
	_ = v.BindEnv("notify.telegram_bot_token", "NOTIFY_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	_ = v.BindEnv("notify.telegram_chat_id", "NOTIFY_TELEGRAM_CHAT_ID", "TELEGRAM_CHAT_ID")
}

func validate(config *Config) error {
	var errs []error

	if config.Chain.RPCURL == "" {
		errs = append(errs, errors.New("chain.rpc_url is required"))
	}
	if !common.IsHexAddress(config.Chain.TokenAddress) {
		errs = append(errs, fmt.Errorf("chain.token_address %q is not a valid address", config.Chain.TokenAddress))
	}
	if config.Gateway.MinInterval <= 0 {
		errs = append(errs, errors.New("gateway.min_interval must be positive"))
	}

	for tf, spec := range config.Scheduler.Specs() {
		if spec == "" {
			continue
		}
		if _, err := cron.ParseStandard(spec); err != nil {
			errs = append(errs, fmt.Errorf("scheduler.%s_spec %q: %w", tf, spec, err))
		}
	}

	seen := make(map[string]bool)
	for i, g := range config.Groups {
		if g.Name == "" {
			errs = append(errs, fmt.Errorf("groups[%d]: name is required", i))
		}
		if seen[g.Name] {
			errs = append(errs, fmt.Errorf("groups[%d]: duplicate group %q", i, g.Name))
		}
		seen[g.Name] = true

		for j, a := range g.Agents {
			if a.Name == "" {
				errs = append(errs, fmt.Errorf("groups[%d].agents[%d]: name is required", i, j))
			}
			if !common.IsHexAddress(a.Address) {
				errs = append(errs, fmt.Errorf("group %s agent %s: invalid address %q", g.Name, a.Name, a.Address))
			}
			if a.Token != "" && !common.IsHexAddress(a.Token) {
				errs = append(errs, fmt.Errorf("group %s agent %s: invalid token %q", g.Name, a.Name, a.Token))
			}
		}
	}

	return errors.Join(errs...)
}

// TokenAddress is the tracked token contract.
func (c *Config) TokenAddress() common.Address {
	return common.HexToAddress(c.Chain.TokenAddress)
}

// DomainGroups converts the configured groups, keeping their order.
func (c *Config) DomainGroups() []domain.Group {
	groups := make([]domain.Group, 0, len(c.Groups))
	for _, g := range c.Groups {
		group := domain.Group{Name: g.Name, Agents: make([]domain.Agent, 0, len(g.Agents))}
		for i, a := range g.Agents {
			group.Agents = append(group.Agents, domain.Agent{
				Name:          a.Name,
				Address:       common.HexToAddress(a.Address),
				TokenIdentity: a.Token,
				Group:         g.Name,
				Position:      i,
			})
		}
		groups = append(groups, group)
	}
	return groups
}

// IsDevelopment switches logging to the console encoder.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
