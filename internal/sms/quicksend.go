// Package sms sends text messages through the QuickSend gateway.
package sms

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrNotConfigured is returned when gateway credentials are missing.
var ErrNotConfigured = errors.New("sms credentials not configured")

// DefaultBaseURL is the QuickSend single-message endpoint.
const DefaultBaseURL = "https://quicksend.lk/Client/api.php"

// Config configures a QuickSendClient.
type Config struct {
	BaseURL   string
	UserEmail string
	APIKey    string
	SenderID  string
	Timeout   time.Duration
}

// QuickSendClient sends single SMS messages over QuickSend's GET API.
type QuickSendClient struct {
	http     *resty.Client
	user     string
	apiKey   string
	senderID string
}

// NewQuickSendClient creates a new QuickSendClient.
func NewQuickSendClient(cfg Config) *QuickSendClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.SenderID == "" {
		cfg.SenderID = "QKSendDemo"
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(cfg.BaseURL)
	httpClient.SetTimeout(cfg.Timeout)

	return &QuickSendClient{
		http:     httpClient,
		user:     cfg.UserEmail,
		apiKey:   cfg.APIKey,
		senderID: cfg.SenderID,
	}
}

// Send delivers message to phone. Phone numbers are passed through as given.
func (c *QuickSendClient) Send(ctx context.Context, phone, message string) error {
	if c.user == "" || c.apiKey == "" {
		return ErrNotConfigured
	}

	log.Printf("[SMS] Sending SMS to %s...", phone)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"FUN":      "SEND_SINGLE",
			"with_get": "true",
			"un":       c.user,
			"up":       c.apiKey,
			"senderID": c.senderID,
			"msg":      message,
			"to":       phone,
		}).
		Get("")
	if err != nil {
		return fmt.Errorf("sms request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned %d: %s", resp.StatusCode(), resp.String())
	}

	log.Printf("[SMS] Response: %s", resp.String())
	return nil
}
