// Package menu resolves a vendor's position in the USSD menu tree.
//
// The USSD gateway redelivers the vendor's entire '*'-delimited input
// history on every request, so there is no session state to keep: the
// current menu position is a pure function of the accumulated token list.
// Resolve walks the tokens left to right through a fixed tree and returns
// either a Prompt (more input needed, or a terminal notice) or an Action
// for the transaction layer to execute.
//
// Invalid field input never advances the walk: the offending token is
// consumed without binding, and the vendor is re-asked for the same field
// with an error hint. This keeps the replay deterministic even after a
// typo earlier in the session.
package menu

import (
	"strconv"
	"strings"

	"kulapay/internal/models"
)

// ActionKind names a terminal menu operation.
type ActionKind string

const (
	ActionSale        ActionKind = "sale"
	ActionCheckPoints ActionKind = "check_points"
	ActionCheckCredit ActionKind = "check_credit"
	ActionAcceptLoan  ActionKind = "accept_loan"
)

// Action is a fully-bound terminal operation resolved from the menu walk.
type Action struct {
	Kind  ActionKind
	Phone string

	// Amount and PaymentType are set only for ActionSale.
	Amount      float64
	PaymentType models.PaymentType
}

// Outcome is the result of resolving a token list. Exactly one of Action
// or Text is meaningful: when Action is nil, Text is the prompt to display
// and Continue reports whether further input is expected.
type Outcome struct {
	Text     string
	Continue bool
	Action   *Action
}

const welcomeText = "Welcome to KulaPay\n1. New Sale\n2. Check Points\n3. Credit"

// ParseText splits the gateway's accumulated input into menu tokens.
func ParseText(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "*")
}

// Resolve walks the full token history and determines the current menu
// outcome. It is stateless: the same token list always resolves the same
// way.
func Resolve(tokens []string) Outcome {
	if len(tokens) == 0 {
		return prompt(welcomeText)
	}
	switch tokens[0] {
	case "1":
		return resolveSale(tokens[1:])
	case "2":
		return resolveCheckPoints(tokens[1:])
	case "3":
		return resolveCredit(tokens[1:])
	}
	return invalidSelection()
}

// resolveSale binds phone, amount, and payment choice in order. A token
// that fails its field's validation is consumed without advancing, and the
// re-prompt carries an error hint.
func resolveSale(rest []string) Outcome {
	var (
		phone   string
		amount  float64
		payment models.PaymentType
	)
	field := 0
	hint := ""
	for _, tok := range rest {
		hint = ""
		switch field {
		case 0:
			if validPhone(tok) {
				phone = tok
				field++
			} else {
				hint = "Invalid phone number. "
			}
		case 1:
			if a, err := strconv.ParseFloat(tok, 64); err == nil && a > 0 {
				amount = a
				field++
			} else {
				hint = "Invalid amount. "
			}
		case 2:
			switch tok {
			case "1":
				payment = models.PaymentCash
				field++
			case "2":
				payment = models.PaymentMpesa
				field++
			default:
				hint = "Invalid payment type. "
			}
		default:
			// Tokens past a complete sale sequence match no pattern.
			return invalidSelection()
		}
	}

	switch field {
	case 0:
		return prompt(hint + "Enter Customer Phone Number:")
	case 1:
		return prompt(hint + "Enter Amount:")
	case 2:
		return prompt(hint + "Select Payment Type:\n1. Cash\n2. M-Pesa")
	}
	return Outcome{Action: &Action{
		Kind:        ActionSale,
		Phone:       phone,
		Amount:      amount,
		PaymentType: payment,
	}}
}

func resolveCheckPoints(rest []string) Outcome {
	phone, remaining, hint := bindPhone(rest)
	if phone == "" {
		return prompt(hint + "Enter Customer Phone Number:")
	}
	if len(remaining) > 0 {
		return invalidSelection()
	}
	return Outcome{Action: &Action{Kind: ActionCheckPoints, Phone: phone}}
}

func resolveCredit(rest []string) Outcome {
	phone, remaining, hint := bindPhone(rest)
	if phone == "" {
		return prompt(hint + "Enter Customer Phone Number:")
	}
	switch len(remaining) {
	case 0:
		return Outcome{Action: &Action{Kind: ActionCheckCredit, Phone: phone}}
	case 1:
		switch remaining[0] {
		case "1":
			return Outcome{Action: &Action{Kind: ActionAcceptLoan, Phone: phone}}
		case "2":
			return prompt(welcomeText)
		}
	}
	return invalidSelection()
}

// bindPhone consumes tokens until one passes phone validation. It returns
// the bound phone (empty if none), the unconsumed tail, and an error hint
// describing the most recent rejected token.
func bindPhone(tokens []string) (phone string, remaining []string, hint string) {
	for i, tok := range tokens {
		if validPhone(tok) {
			return tok, tokens[i+1:], ""
		}
		hint = "Invalid phone number. "
	}
	return "", nil, hint
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

func prompt(text string) Outcome {
	return Outcome{Text: text, Continue: true}
}

func invalidSelection() Outcome {
	return Outcome{Text: "Invalid selection. Please try again."}
}
