package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/omni/deposit-monitor/config"
	"github.com/omni/deposit-monitor/entity"
	"github.com/omni/deposit-monitor/logging"
)

const (
	breakerConsecutiveFailures = 5
	breakerOpenTimeout         = time.Minute
	maxResponseSize            = 64 * 1024
)

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

type Telegram struct {
	logger  logging.Logger
	url     string
	chatID  string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

func NewTelegram(logger logging.Logger, cfg *config.TelegramConfig) *Telegram {
	return &Telegram{
		logger:  logger,
		url:     fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(cfg.APIURL, "/"), cfg.BotToken),
		chatID:  cfg.ChatID,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: newCircuitBreaker(logger),
	}
}

func (n *Telegram) Notify(ctx context.Context, deposit *entity.Deposit) error {
	_, err := n.breaker.Execute(func() (interface{}, error) {
		return nil, n.sendMessage(ctx, FormatDeposit(deposit))
	})
	ObserveNotification("telegram", err)
	if err != nil {
		return fmt.Errorf("can't send telegram notification: %w", err)
	}
	return nil
}

func (n *Telegram) sendMessage(ctx context.Context, text string) error {
	body, err := json.Marshal(&sendMessageRequest{ChatID: n.chatID, Text: text})
	if err != nil {
		return fmt.Errorf("can't encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("can't build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := n.client.Do(req)
	if err != nil {
		// the url contains the bot token, don't let it leak into logs
		return fmt.Errorf("request failed: %s", strings.ReplaceAll(err.Error(), n.url, "<telegram api>"))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("can't read response: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiRes := new(apiResponse)
		if json.Unmarshal(raw, apiRes) == nil && apiRes.Description != "" {
			return fmt.Errorf("telegram api returned %d: %s", res.StatusCode, apiRes.Description)
		}
		return fmt.Errorf("telegram api returned %d", res.StatusCode)
	}
	return nil
}

func newCircuitBreaker(logger logging.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "telegram",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if to == gobreaker.StateOpen {
				logger.Warn("telegram api seems down, stop allowing requests")
			}
			if from == gobreaker.StateOpen && to == gobreaker.StateHalfOpen {
				logger.Info("checking telegram api status")
			}
			if from == gobreaker.StateHalfOpen && to == gobreaker.StateClosed {
				logger.Info("telegram api seems ok, restart allowing requests")
			}
		},
	})
}
