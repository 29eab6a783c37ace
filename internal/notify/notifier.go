// Package notify delivers outbound messages to customers and vendors via
// Africa's Talking, and hosts the mocked loan-repayment scheduler.
//
// Delivery is fire-and-forget from the conversation layer's point of view:
// a failed send is logged and never rolls back the transaction that
// triggered it.
package notify

import (
	"context"
	"log/slog"
	"strings"
)

// Channel identifies the outbound delivery channel.
type Channel string

const (
	ChannelSMS  Channel = "sms"
	ChannelChat Channel = "chat"
)

// Instruction is a single outbound message decided by the conversation
// layer. The transport executes it after the primary response is returned.
type Instruction struct {
	To      string
	Channel Channel
	Message string
}

// Notifier sends a message to a phone number over the given channel.
type Notifier interface {
	Send(ctx context.Context, to string, channel Channel, message string) error
}

// LogNotifier is a Notifier that only logs. Used when no messaging
// credentials are configured and in tests.
type LogNotifier struct{}

func (LogNotifier) Send(_ context.Context, to string, channel Channel, message string) error {
	slog.Info("notification (log only)", "to", to, "channel", string(channel), "message", message)
	return nil
}

// FormatPhone normalizes a phone number to E.164 form for the messaging
// API. Numbers without a country code are assumed to be Kenyan (+254).
func FormatPhone(phone string) string {
	phone = strings.ReplaceAll(strings.TrimSpace(phone), " ", "")
	phone = strings.ReplaceAll(phone, "-", "")

	switch {
	case strings.HasPrefix(phone, "+"):
		return phone
	case strings.HasPrefix(phone, "0"):
		return "+254" + phone[1:]
	case strings.HasPrefix(phone, "254"):
		return "+" + phone
	}
	return "+254" + phone
}
