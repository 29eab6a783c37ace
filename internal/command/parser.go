// Package command parses free-text vendor messages (SMS or chat) into
// typed commands.
//
// The grammar is a fixed set of shapes, case-insensitive and tolerant of
// extra whitespace:
//
//	KULA <phone> <item...> <amount>
//	sale <phone> <amount> <cash|mpesa>
//	points <phone>
//	credit <phone> [accept]
//	hi | hello | hey | start | help
//
// Anything else is a ParseError; callers render it as usage text, never as
// a fault.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"kulapay/internal/models"
)

// Kind tags the command variant.
type Kind string

const (
	KindSale        Kind = "sale"
	KindCheckPoints Kind = "check_points"
	KindCheckCredit Kind = "check_credit"
	KindAcceptLoan  Kind = "accept_loan"
	KindShowHelp    Kind = "show_help"
)

// Command is the typed result of parsing a message.
type Command struct {
	Kind  Kind
	Phone string

	// Sale fields. KULA sales default to cash payment: the KULA grammar
	// carries no payment-type token and the till trade it serves is cash
	// by default.
	Amount      float64
	Item        string
	PaymentType models.PaymentType

	// Usage carries command-specific usage text when Kind is KindShowHelp
	// and the vendor named a command without its arguments.
	Usage string
}

// ParseError describes input that matched no command shape or failed a
// field constraint. It is user input, not a fault.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Parse recognizes one command from raw message text.
func Parse(rawText string) (Command, error) {
	fields := strings.Fields(rawText)
	if len(fields) == 0 {
		return Command{}, &ParseError{Reason: "empty message"}
	}

	keyword := strings.ToLower(fields[0])
	args := fields[1:]

	switch keyword {
	case "hi", "hello", "hey", "start", "help":
		return Command{Kind: KindShowHelp}, nil
	case "kula":
		return parseKula(args)
	case "sale", "sell":
		if len(args) == 0 {
			return usage(saleUsage), nil
		}
		return parseSale(args)
	case "points":
		if len(args) == 0 {
			return usage(pointsUsage), nil
		}
		return parsePoints(args)
	case "credit", "loan":
		if len(args) == 0 {
			return usage(creditUsage), nil
		}
		return parseCredit(args)
	}
	return Command{}, &ParseError{Reason: fmt.Sprintf("unknown command %q", fields[0])}
}

const (
	saleUsage   = "New Sale\nFormat: sale <phone> <amount> <cash|mpesa>\nExample: sale 0712345678 500 cash"
	pointsUsage = "Check Points\nFormat: points <phone>\nExample: points 0712345678"
	creditUsage = "Credit (Eat Now, Pay Later)\nFormat: credit <phone>\nExample: credit 0712345678"
)

// parseKula handles "KULA <phone> <item...> <amount>". The item may span
// several words; the trailing token is always the amount.
func parseKula(args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, &ParseError{Reason: "KULA needs a phone, item, and amount"}
	}
	phone := args[0]
	if !validPhone(phone) {
		return Command{}, &ParseError{Reason: "invalid phone number"}
	}
	amount, err := positiveAmount(args[len(args)-1])
	if err != nil {
		return Command{}, err
	}
	return Command{
		Kind:        KindSale,
		Phone:       phone,
		Amount:      amount,
		Item:        strings.Join(args[1:len(args)-1], " "),
		PaymentType: models.PaymentCash,
	}, nil
}

// parseSale handles "sale <phone> <amount> <cash|mpesa>".
func parseSale(args []string) (Command, error) {
	if len(args) < 3 {
		return Command{}, &ParseError{Reason: "sale needs a phone, amount, and payment type"}
	}
	phone := args[0]
	if !validPhone(phone) {
		return Command{}, &ParseError{Reason: "invalid phone number"}
	}
	amount, err := positiveAmount(args[1])
	if err != nil {
		return Command{}, err
	}
	var payment models.PaymentType
	switch strings.ToLower(args[2]) {
	case "cash":
		payment = models.PaymentCash
	case "mpesa", "m-pesa":
		payment = models.PaymentMpesa
	default:
		return Command{}, &ParseError{Reason: "payment type must be 'cash' or 'mpesa'"}
	}
	return Command{Kind: KindSale, Phone: phone, Amount: amount, PaymentType: payment}, nil
}

func parsePoints(args []string) (Command, error) {
	if !validPhone(args[0]) {
		return Command{}, &ParseError{Reason: "invalid phone number"}
	}
	return Command{Kind: KindCheckPoints, Phone: args[0]}, nil
}

// parseCredit handles "credit <phone>" and "credit <phone> accept".
func parseCredit(args []string) (Command, error) {
	if !validPhone(args[0]) {
		return Command{}, &ParseError{Reason: "invalid phone number"}
	}
	if len(args) >= 2 && strings.EqualFold(args[1], "accept") {
		return Command{Kind: KindAcceptLoan, Phone: args[0]}, nil
	}
	return Command{Kind: KindCheckCredit, Phone: args[0]}, nil
}

func usage(text string) Command {
	return Command{Kind: KindShowHelp, Usage: text}
}

func positiveAmount(s string) (float64, error) {
	amount, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ParseError{Reason: fmt.Sprintf("invalid amount %q", s)}
	}
	if amount <= 0 {
		return 0, &ParseError{Reason: "amount must be greater than 0"}
	}
	return amount, nil
}

// validPhone accepts a digit string of at least 9 digits, with an optional
// leading '+'.
func validPhone(s string) bool {
	s = strings.TrimPrefix(s, "+")
	if len(s) < 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
