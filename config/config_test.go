package config_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/omni/deposit-monitor/config"
)

const testCfg = `
chain:
  rpc:
    host: https://mainnet.infura.io/v3/${INFURA_PROJECT_KEY}
    timeout: 20s
  chain_id: 1
deposit_contract: 0x00000000219ab540356cBB839Cbe05303d7705Fa
tracker:
  lookback: 500
  poll_interval: 12s
  max_block_range_size: 50
  block_confirmations: 2
  fee_source: receipt
telegram:
  bot_token: test_token
  chat_id: "-100123"
postgres:
  user: test_user
  password: test_password
  host: test_host
  port: 5432
  database: test_db
log_level: debug
presenter:
  host: 0.0.0.0:3333
`

//nolint:paralleltest
func TestReadConfigWithEnv(t *testing.T) {
	t.Setenv("INFURA_PROJECT_KEY", "12345678")
	cfg, err := config.ReadConfigWithEnv([]byte(testCfg))
	require.NoError(t, err)
	require.Equal(t, &config.Config{
		Chain: &config.ChainConfig{
			RPC: &config.RPCConfig{
				Host:    "https://mainnet.infura.io/v3/12345678",
				Timeout: 20 * time.Second,
			},
			ChainID: "1",
		},
		DepositContract: common.HexToAddress("0x00000000219ab540356cBB839Cbe05303d7705Fa"),
		Tracker: &config.TrackerConfig{
			Lookback:           500,
			PollInterval:       12 * time.Second,
			BackoffInterval:    10 * time.Second,
			MaxBlockRangeSize:  50,
			BlockConfirmations: 2,
			FeeSource:          config.FeeSourceReceipt,
		},
		Telegram: &config.TelegramConfig{
			APIURL:   "https://api.telegram.org",
			BotToken: "test_token",
			ChatID:   "-100123",
			Timeout:  10 * time.Second,
		},
		DBConfig: &config.DBConfig{
			User:     "test_user",
			Password: "test_password",
			Host:     "test_host",
			Port:     5432,
			DB:       "test_db",
		},
		LogLevel: logrus.DebugLevel,
		Presenter: &config.PresenterConfig{
			Host: "0.0.0.0:3333",
		},
	}, cfg)
}

func TestReadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.ReadConfig([]byte(`
chain:
  rpc:
    host: http://localhost:8545
deposit_contract: 0x00000000219AB540356CBB839CBE05303D7705FA
`))
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.Chain.RPC.Timeout)
	require.Equal(t, common.HexToAddress("0x00000000219ab540356cbb839cbe05303d7705fa"), cfg.DepositContract)
	require.Equal(t, &config.TrackerConfig{
		Lookback:          1000,
		PollInterval:      15 * time.Second,
		BackoffInterval:   10 * time.Second,
		MaxBlockRangeSize: 100,
		FeeSource:         config.FeeSourceDeclared,
	}, cfg.Tracker)
	require.Nil(t, cfg.Telegram)
	require.Nil(t, cfg.Presenter)
	require.Equal(t, logrus.InfoLevel, cfg.LogLevel)
}

func TestReadConfig_Invalid(t *testing.T) {
	t.Parallel()

	for _, test := range []struct {
		Name  string
		Input string
		Err   error
	}{
		{
			Name:  "missing rpc",
			Input: "deposit_contract: 0x00000000219ab540356cBB839Cbe05303d7705Fa\n",
			Err:   config.ErrMissingRPCHost,
		},
		{
			Name:  "missing deposit contract",
			Input: "chain:\n  rpc:\n    host: http://localhost:8545\n",
			Err:   config.ErrMissingDepositContract,
		},
		{
			Name: "unknown fee source",
			Input: "chain:\n  rpc:\n    host: http://localhost:8545\n" +
				"deposit_contract: 0x00000000219ab540356cBB839Cbe05303d7705Fa\n" +
				"tracker:\n  fee_source: estimated\n",
			Err: config.ErrUnknownFeeSource,
		},
		{
			Name: "telegram without chat id",
			Input: "chain:\n  rpc:\n    host: http://localhost:8545\n" +
				"deposit_contract: 0x00000000219ab540356cBB839Cbe05303d7705Fa\n" +
				"telegram:\n  bot_token: abc\n",
			Err: config.ErrMissingTelegramCreds,
		},
	} {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			t.Parallel()
			_, err := config.ReadConfig([]byte(test.Input))
			require.ErrorIs(t, err, test.Err)
		})
	}
}

func TestReadConfig_UnknownField(t *testing.T) {
	t.Parallel()

	_, err := config.ReadConfig([]byte("bridges: {}\n"))
	require.Error(t, err)
}
