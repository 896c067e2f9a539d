// Package whatsapp sends messages through a WhatsApp HTTP bridge.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrDisabled is returned when the bot is switched off
var ErrDisabled = errors.New("whatsapp bot disabled")

// Config holds bridge settings
type Config struct {
	Enabled       bool
	APIURL        string
	Token         string
	RatePerMinute int
	Timeout       time.Duration
}

// Status reports whether the bot is enabled and the bridge session is up
type Status struct {
	Enabled   bool `json:"enabled"`
	Connected bool `json:"connected"`
}

// Client talks to the WhatsApp bridge
type Client struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new WhatsApp client. Outbound sends are limited to
// RatePerMinute messages per minute.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RatePerMinute <= 0 {
		cfg.RatePerMinute = 20
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1),
		logger:  logger,
	}
}

// NormalizePhone strips formatting and converts a local number to the 62 country code
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || strings.HasPrefix(digits, "62") {
		return digits
	}
	return "62" + strings.TrimPrefix(digits, "0")
}

type sendRequest struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// Send delivers a text message. It reports whether the bridge accepted it.
// Failures are not retried.
func (c *Client) Send(ctx context.Context, phone, message string) (bool, error) {
	if !c.cfg.Enabled {
		return false, ErrDisabled
	}

	to := NormalizePhone(phone)
	if to == "" {
		return false, fmt.Errorf("empty phone number")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("rate limit wait: %w", err)
	}

	payload, err := json.Marshal(sendRequest{Phone: to, Message: message})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("whatsapp send failed", zap.String("phone", to), zap.Error(err))
		return false, fmt.Errorf("whatsapp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		c.logger.Warn("whatsapp send rejected", zap.String("phone", to), zap.Int("status", resp.StatusCode))
		return false, fmt.Errorf("whatsapp bridge error %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Info("whatsapp message sent", zap.String("phone", to))
	return true, nil
}

// Status probes the bridge. Connected is false when the probe fails.
func (c *Client) Status(ctx context.Context) Status {
	st := Status{Enabled: c.cfg.Enabled}
	if !c.cfg.Enabled {
		return st
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIURL+"/status", nil)
	if err != nil {
		return st
	}
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("whatsapp status probe failed", zap.Error(err))
		return st
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return st
	}

	var body struct {
		Connected bool `json:"connected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return st
	}
	st.Connected = body.Connected
	return st
}

func (c *Client) authorize(req *http.Request) {
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
}
