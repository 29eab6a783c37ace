package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultSMSURL  = "https://api.africastalking.com/version1/messaging"
	defaultChatURL = "https://api.africastalking.com/version1/whatsapp/message"
)

// AfricasTalking sends SMS (form-encoded) and chat (JSON) messages through
// the Africa's Talking messaging API.
type AfricasTalking struct {
	Username string
	APIKey   string

	// SMSURL and ChatURL override the API endpoints, for tests.
	SMSURL  string
	ChatURL string

	Client *http.Client
}

// NewAfricasTalking builds a client with the production endpoints and a
// bounded request timeout.
func NewAfricasTalking(username, apiKey string) *AfricasTalking {
	return &AfricasTalking{
		Username: username,
		APIKey:   apiKey,
		SMSURL:   defaultSMSURL,
		ChatURL:  defaultChatURL,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Send delivers a message over the requested channel. The recipient number
// is normalized to E.164 first.
func (a *AfricasTalking) Send(ctx context.Context, to string, channel Channel, message string) error {
	if a.Username == "" || a.APIKey == "" {
		return fmt.Errorf("africastalking: credentials not configured")
	}
	if channel == ChannelChat {
		return a.sendChat(ctx, FormatPhone(to), message)
	}
	return a.sendSMS(ctx, FormatPhone(to), message)
}

func (a *AfricasTalking) sendSMS(ctx context.Context, to, message string) error {
	form := url.Values{}
	form.Set("username", a.Username)
	form.Set("to", to)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.SMSURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("africastalking: build sms request: %w", err)
	}
	req.Header.Set("ApiKey", a.APIKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	return a.do(req)
}

func (a *AfricasTalking) sendChat(ctx context.Context, to, message string) error {
	payload, err := json.Marshal(map[string]string{
		"username": a.Username,
		"to":       to,
		"message":  message,
	})
	if err != nil {
		return fmt.Errorf("africastalking: encode chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.ChatURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("africastalking: build chat request: %w", err)
	}
	req.Header.Set("ApiKey", a.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return a.do(req)
}

func (a *AfricasTalking) do(req *http.Request) error {
	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("africastalking: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("africastalking: send failed with status %d", resp.StatusCode)
	}
	return nil
}
