// Package dispatch is the top-level entry point of the conversation layer.
// It routes session (USSD) events through the menu state machine and
// free-text (SMS/chat) events through the command parser, executes the
// resulting action against the transaction processor, and renders response
// text.
//
// Every user-input error degrades to plain response text here. Only store
// failures escape as errors: they are infrastructure problems the
// transport should report as server faults.
package dispatch

import (
	"context"
	"errors"
	"fmt"

	"kulapay/internal/command"
	"kulapay/internal/menu"
	"kulapay/internal/notify"
	"kulapay/internal/service"
	"kulapay/internal/storage"
)

// SessionEvent is one round trip of the USSD protocol. Text is the full
// accumulated '*'-delimited input history, redelivered on every request.
type SessionEvent struct {
	SessionID   string
	ServiceCode string
	Phone       string // vendor's phone (session initiator)
	Text        string
}

// SessionReply is the response to a session event. Continue=false marks a
// terminal screen. Notification, when set, is a fire-and-forget customer
// message the transport delivers after responding.
type SessionReply struct {
	Text         string
	Continue     bool
	Notification *notify.Instruction
}

// MessageEvent is a single inbound free-text message.
type MessageEvent struct {
	From    string // vendor's phone
	Channel notify.Channel
	Text    string
}

// MessageReply is the response to a free-text event.
type MessageReply struct {
	Text         string
	Notification *notify.Instruction
}

const helpText = "Welcome to KulaPay!\n\n" +
	"I can help you with:\n" +
	"- sale <phone> <amount> <cash|mpesa> - record a sale\n" +
	"- KULA <phone> <item> <amount> - quick cash sale\n" +
	"- points <phone> - check customer loyalty points\n" +
	"- credit <phone> - check credit eligibility\n\n" +
	"Just type what you'd like to do!"

// Dispatcher wires the conversation layer together.
type Dispatcher struct {
	processor *service.Processor
}

// New creates a Dispatcher around the given transaction processor.
func New(processor *service.Processor) *Dispatcher {
	return &Dispatcher{processor: processor}
}

// HandleSession resolves the accumulated menu input and executes any
// terminal action. The vendor is identified by the session's initiator
// phone number.
func (d *Dispatcher) HandleSession(ctx context.Context, event SessionEvent) (SessionReply, error) {
	outcome := menu.Resolve(menu.ParseText(event.Text))
	if outcome.Action == nil {
		return SessionReply{Text: outcome.Text, Continue: outcome.Continue}, nil
	}

	action := outcome.Action
	switch action.Kind {
	case menu.ActionSale:
		return d.sessionSale(ctx, event.Phone, action)
	case menu.ActionCheckPoints:
		return d.sessionCheckPoints(ctx, action.Phone)
	case menu.ActionCheckCredit:
		return d.sessionCheckCredit(ctx, action.Phone)
	case menu.ActionAcceptLoan:
		return d.sessionAcceptLoan(ctx, event.Phone, action.Phone)
	}
	return SessionReply{Text: "Invalid selection. Please try again."}, nil
}

func (d *Dispatcher) sessionSale(ctx context.Context, vendorPhone string, action *menu.Action) (SessionReply, error) {
	result, err := d.processor.RecordSale(ctx, vendorPhone, action.Phone, action.Amount, action.PaymentType)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return SessionReply{Text: text}, nil
		}
		return SessionReply{}, err
	}
	text := fmt.Sprintf("Sale successful! Amount: %.2f, Payment: %s. Customer earned %d points.",
		result.Amount, result.PaymentType.Label(), result.PointsEarned)
	return SessionReply{Text: text, Notification: saleNotification(result, "")}, nil
}

func (d *Dispatcher) sessionCheckPoints(ctx context.Context, customerPhone string) (SessionReply, error) {
	summary, err := d.processor.CheckPoints(ctx, customerPhone)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return SessionReply{Text: text}, nil
		}
		return SessionReply{}, err
	}
	return SessionReply{Text: summary.Message()}, nil
}

func (d *Dispatcher) sessionCheckCredit(ctx context.Context, customerPhone string) (SessionReply, error) {
	decision, err := d.processor.CheckCredit(ctx, customerPhone)
	if err != nil {
		return SessionReply{}, err
	}
	if !decision.Eligible {
		return SessionReply{Text: decision.Message()}, nil
	}
	// Eligible: offer the loan and keep the session open for the choice.
	return SessionReply{
		Text:     decision.Message() + "\n1. Accept Loan\n2. Back",
		Continue: true,
	}, nil
}

func (d *Dispatcher) sessionAcceptLoan(ctx context.Context, vendorPhone, customerPhone string) (SessionReply, error) {
	result, err := d.processor.AcceptLoan(ctx, vendorPhone, customerPhone)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return SessionReply{Text: text}, nil
		}
		return SessionReply{}, err
	}
	text := fmt.Sprintf("Loan approved! Amount: %.2f KES. Repayment will be processed via M-Pesa.", result.Amount)
	return SessionReply{Text: text}, nil
}

// HandleMessage parses a free-text command and executes it. Parse failures
// render as help text, never as errors.
func (d *Dispatcher) HandleMessage(ctx context.Context, event MessageEvent) (MessageReply, error) {
	cmd, err := command.Parse(event.Text)
	if err != nil {
		var parseErr *command.ParseError
		if errors.As(err, &parseErr) {
			return MessageReply{Text: "I didn't understand that.\n\n" + helpText}, nil
		}
		return MessageReply{}, err
	}

	switch cmd.Kind {
	case command.KindShowHelp:
		if cmd.Usage != "" {
			return MessageReply{Text: cmd.Usage}, nil
		}
		return MessageReply{Text: helpText}, nil
	case command.KindSale:
		return d.messageSale(ctx, event, cmd)
	case command.KindCheckPoints:
		return d.messageCheckPoints(ctx, cmd.Phone)
	case command.KindCheckCredit:
		return d.messageCheckCredit(ctx, cmd.Phone)
	case command.KindAcceptLoan:
		return d.messageAcceptLoan(ctx, event.From, cmd.Phone)
	}
	return MessageReply{Text: helpText}, nil
}

func (d *Dispatcher) messageSale(ctx context.Context, event MessageEvent, cmd command.Command) (MessageReply, error) {
	result, err := d.processor.RecordSale(ctx, event.From, cmd.Phone, cmd.Amount, cmd.PaymentType)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return MessageReply{Text: text}, nil
		}
		return MessageReply{}, err
	}

	text := fmt.Sprintf("Sale Recorded! Customer %s earned %d points. Total points: %d. Credit Limit: %.2f.",
		result.CustomerPhone, result.PointsEarned, result.Loyalty.Points, result.Credit.Limit)
	if result.Credit.Eligible {
		text += " Credit Eligible!"
	}

	reply := MessageReply{Text: text, Notification: saleNotification(result, cmd.Item)}
	return reply, nil
}

func (d *Dispatcher) messageCheckPoints(ctx context.Context, customerPhone string) (MessageReply, error) {
	summary, err := d.processor.CheckPoints(ctx, customerPhone)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return MessageReply{Text: text}, nil
		}
		return MessageReply{}, err
	}
	return MessageReply{Text: summary.Message()}, nil
}

func (d *Dispatcher) messageCheckCredit(ctx context.Context, customerPhone string) (MessageReply, error) {
	decision, err := d.processor.CheckCredit(ctx, customerPhone)
	if err != nil {
		return MessageReply{}, err
	}
	text := decision.Message()
	if decision.Eligible {
		text += fmt.Sprintf("\nTo accept the loan, reply: credit %s accept", customerPhone)
	}
	return MessageReply{Text: text}, nil
}

func (d *Dispatcher) messageAcceptLoan(ctx context.Context, vendorPhone, customerPhone string) (MessageReply, error) {
	result, err := d.processor.AcceptLoan(ctx, vendorPhone, customerPhone)
	if err != nil {
		if text, ok := userErrorText(err); ok {
			return MessageReply{Text: text}, nil
		}
		return MessageReply{}, err
	}
	text := fmt.Sprintf("Loan approved! Amount: %.2f KES. Repayment will be processed via M-Pesa.", result.Amount)
	return MessageReply{Text: text}, nil
}

// saleNotification builds the customer-facing confirmation for a recorded
// sale. Customers are always notified over SMS; item is included for KULA
// sales where one was named.
func saleNotification(result *service.SaleResult, item string) *notify.Instruction {
	var message string
	if item != "" {
		message = fmt.Sprintf("KulaPay: Your purchase of %s for %.2f KES was successful! You earned %d Kula Points. Thank you!",
			item, result.Amount, result.PointsEarned)
	} else {
		message = fmt.Sprintf("KulaPay: Your purchase of %.2f KES was successful! You earned %d Kula Points. Thank you!",
			result.Amount, result.PointsEarned)
	}
	return &notify.Instruction{
		To:      result.CustomerPhone,
		Channel: notify.ChannelSMS,
		Message: message,
	}
}

// userErrorText maps user-input-shaped failures to display text. Anything
// else (store failures) is an infrastructure fault and returns ok=false.
func userErrorText(err error) (string, bool) {
	var notEligible *service.NotEligibleError
	switch {
	case errors.Is(err, storage.ErrVendorNotFound):
		return "Vendor not found. Please register first.", true
	case errors.Is(err, storage.ErrCustomerNotFound):
		return "Customer not found.", true
	case errors.Is(err, service.ErrInvalidAmount):
		return "Invalid amount. Please try again.", true
	case errors.As(err, &notEligible):
		return notEligible.Decision.Message(), true
	}
	return "", false
}
