package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

type FeeSource string

const (
	FeeSourceDeclared FeeSource = "declared"
	FeeSourceReceipt  FeeSource = "receipt"
)

const (
	defaultRPCTimeout        = 30 * time.Second
	defaultLookback          = 1000
	defaultPollInterval      = 15 * time.Second
	defaultBackoffInterval   = 10 * time.Second
	defaultMaxBlockRangeSize = 100
	defaultTelegramAPIURL    = "https://api.telegram.org"
	defaultTelegramTimeout   = 10 * time.Second
)

var (
	ErrMissingRPCHost         = errors.New("chain rpc host is not specified")
	ErrMissingDepositContract = errors.New("deposit contract address is not specified")
	ErrUnknownFeeSource       = errors.New("unknown fee source")
	ErrMissingTelegramCreds   = errors.New("telegram bot token and chat id are required")
)

type RPCConfig struct {
	Host    string        `yaml:"host"`
	Timeout time.Duration `yaml:"timeout"`
}

type ChainConfig struct {
	RPC     *RPCConfig `yaml:"rpc"`
	ChainID string     `yaml:"chain_id"`
}

type TrackerConfig struct {
	Lookback           uint          `yaml:"lookback"`
	PollInterval       time.Duration `yaml:"poll_interval"`
	BackoffInterval    time.Duration `yaml:"backoff_interval"`
	MaxBlockRangeSize  uint          `yaml:"max_block_range_size"`
	BlockConfirmations uint          `yaml:"block_confirmations"`
	FeeSource          FeeSource     `yaml:"fee_source"`
}

type TelegramConfig struct {
	APIURL   string        `yaml:"api_url"`
	BotToken string        `yaml:"bot_token"`
	ChatID   string        `yaml:"chat_id"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DBConfig struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"database"`
}

type PresenterConfig struct {
	Host string `yaml:"host"`
}

type Config struct {
	Chain           *ChainConfig     `yaml:"chain"`
	DepositContract common.Address   `yaml:"deposit_contract"`
	Tracker         *TrackerConfig   `yaml:"tracker"`
	Telegram        *TelegramConfig  `yaml:"telegram"`
	DBConfig        *DBConfig        `yaml:"postgres"`
	LogLevel        logrus.Level     `yaml:"log_level"`
	Presenter       *PresenterConfig `yaml:"presenter"`
}

func readYamlConfig(blob []byte) (*Config, error) {
	cfg := &Config{LogLevel: logrus.InfoLevel}
	err := parseYaml(cfg, blob)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func (cfg *Config) init() error {
	if cfg.Chain == nil || cfg.Chain.RPC == nil || cfg.Chain.RPC.Host == "" {
		return ErrMissingRPCHost
	}
	if cfg.Chain.RPC.Timeout == 0 {
		cfg.Chain.RPC.Timeout = defaultRPCTimeout
	}
	if cfg.DepositContract == (common.Address{}) {
		return ErrMissingDepositContract
	}

	if cfg.Tracker == nil {
		cfg.Tracker = new(TrackerConfig)
	}
	if cfg.Tracker.Lookback == 0 {
		cfg.Tracker.Lookback = defaultLookback
	}
	if cfg.Tracker.PollInterval == 0 {
		cfg.Tracker.PollInterval = defaultPollInterval
	}
	if cfg.Tracker.BackoffInterval == 0 {
		cfg.Tracker.BackoffInterval = defaultBackoffInterval
	}
	if cfg.Tracker.MaxBlockRangeSize == 0 {
		cfg.Tracker.MaxBlockRangeSize = defaultMaxBlockRangeSize
	}
	switch cfg.Tracker.FeeSource {
	case "":
		cfg.Tracker.FeeSource = FeeSourceDeclared
	case FeeSourceDeclared, FeeSourceReceipt:
	default:
		return fmt.Errorf("%w %q", ErrUnknownFeeSource, cfg.Tracker.FeeSource)
	}

	if cfg.Telegram != nil {
		if cfg.Telegram.BotToken == "" || cfg.Telegram.ChatID == "" {
			return ErrMissingTelegramCreds
		}
		if cfg.Telegram.APIURL == "" {
			cfg.Telegram.APIURL = defaultTelegramAPIURL
		}
		if cfg.Telegram.Timeout == 0 {
			cfg.Telegram.Timeout = defaultTelegramTimeout
		}
	}
	return nil
}

func ReadConfig(blob []byte) (*Config, error) {
	cfg, err := readYamlConfig(blob)
	if err != nil {
		return nil, err
	}
	if err = cfg.init(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func ReadConfigWithEnv(blob []byte) (*Config, error) {
	return ReadConfig([]byte(os.ExpandEnv(string(blob))))
}

func ReadConfigFromFile(path string) (*Config, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("can't read config file: %w", err)
	}
	return ReadConfigWithEnv(blob)
}

// PathFromEnv returns $CONFIG_PATH, or config.yml in the working directory.
func PathFromEnv() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yml"
}
