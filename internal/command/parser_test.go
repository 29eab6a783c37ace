package command

import (
	"errors"
	"strings"
	"testing"

	"kulapay/internal/models"
)

func TestParseKula(t *testing.T) {
	cmd, err := Parse("KULA 0712345678 Chapati 50")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd.Kind != KindSale {
		t.Errorf("Kind = %v, want sale", cmd.Kind)
	}
	if cmd.Phone != "0712345678" {
		t.Errorf("Phone = %q, want 0712345678", cmd.Phone)
	}
	if cmd.Amount != 50 {
		t.Errorf("Amount = %v, want 50", cmd.Amount)
	}
	if cmd.Item != "Chapati" {
		t.Errorf("Item = %q, want Chapati", cmd.Item)
	}
	if cmd.PaymentType != models.PaymentCash {
		t.Errorf("PaymentType = %v, want cash default", cmd.PaymentType)
	}
}

func TestParseKulaMultiWordItem(t *testing.T) {
	cmd, err := Parse("kula 0712345678 Beef Samosa 80")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cmd.Item != "Beef Samosa" {
		t.Errorf("Item = %q, want 'Beef Samosa'", cmd.Item)
	}
	if cmd.Amount != 80 {
		t.Errorf("Amount = %v, want 80", cmd.Amount)
	}
}

func TestParseSale(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPayment models.PaymentType
	}{
		{name: "cash", input: "sale 0712345678 500 cash", wantPayment: models.PaymentCash},
		{name: "mpesa", input: "sale 0712345678 500 mpesa", wantPayment: models.PaymentMpesa},
		{name: "m-pesa spelling", input: "SALE 0712345678 500 M-Pesa", wantPayment: models.PaymentMpesa},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if cmd.Kind != KindSale || cmd.PaymentType != tt.wantPayment {
				t.Errorf("got %+v, want sale with %v", cmd, tt.wantPayment)
			}
		})
	}
}

func TestParsePointsAndCredit(t *testing.T) {
	cmd, err := Parse("points 0712345678")
	if err != nil || cmd.Kind != KindCheckPoints || cmd.Phone != "0712345678" {
		t.Errorf("points parse: cmd=%+v err=%v", cmd, err)
	}

	cmd, err = Parse("credit 0712345678")
	if err != nil || cmd.Kind != KindCheckCredit {
		t.Errorf("credit parse: cmd=%+v err=%v", cmd, err)
	}

	cmd, err = Parse("credit 0712345678 accept")
	if err != nil || cmd.Kind != KindAcceptLoan || cmd.Phone != "0712345678" {
		t.Errorf("credit accept parse: cmd=%+v err=%v", cmd, err)
	}
}

func TestParseGreetings(t *testing.T) {
	for _, input := range []string{"hi", "Hello", "HEY", "start", "help"} {
		cmd, err := Parse(input)
		if err != nil || cmd.Kind != KindShowHelp {
			t.Errorf("Parse(%q): cmd=%+v err=%v", input, cmd, err)
		}
	}
}

func TestParseBareKeywordsReturnUsage(t *testing.T) {
	tests := []struct {
		input    string
		wantText string
	}{
		{input: "sale", wantText: "sale <phone> <amount>"},
		{input: "points", wantText: "points <phone>"},
		{input: "credit", wantText: "credit <phone>"},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tt.input, err)
		}
		if cmd.Kind != KindShowHelp || !strings.Contains(cmd.Usage, tt.wantText) {
			t.Errorf("Parse(%q) = %+v, want usage containing %q", tt.input, cmd, tt.wantText)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "gibberish", input: "gibberish"},
		{name: "empty", input: "   "},
		{name: "kula missing fields", input: "KULA 0712345678 Chapati"},
		{name: "kula bad amount", input: "KULA 0712345678 Chapati notanumber"},
		{name: "kula negative amount", input: "KULA 0712345678 Chapati -50"},
		{name: "kula short phone", input: "KULA 123 Chapati 50"},
		{name: "sale bad payment", input: "sale 0712345678 500 goats"},
		{name: "sale bad amount", input: "sale 0712345678 free cash"},
		{name: "points bad phone", input: "points bob"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse(%q) err = %v, want *ParseError", tt.input, err)
			}
			if parseErr.Reason == "" {
				t.Error("ParseError should carry a reason")
			}
		})
	}
}
