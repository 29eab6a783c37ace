package credit

import (
	"math"
	"strings"
	"testing"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name         string
		txCount      int
		spend        float64
		wantEligible bool
		wantLimit    float64
	}{
		{name: "both bounds met exactly", txCount: 5, spend: 500, wantEligible: true, wantLimit: 100},
		{name: "one transaction short", txCount: 4, spend: 500, wantEligible: false, wantLimit: 0},
		{name: "one shilling short", txCount: 5, spend: 499, wantEligible: false, wantLimit: 0},
		{name: "new customer", txCount: 0, spend: 0, wantEligible: false, wantLimit: 0},
		{name: "uncapped limit", txCount: 10, spend: 1000, wantEligible: true, wantLimit: 200},
		{name: "limit capped at 300", txCount: 20, spend: 2000, wantEligible: true, wantLimit: 300},
		{name: "cap boundary", txCount: 15, spend: 1500, wantEligible: true, wantLimit: 300},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.txCount, tt.spend)
			if got.Eligible != tt.wantEligible {
				t.Errorf("Eligible = %v, want %v", got.Eligible, tt.wantEligible)
			}
			if math.Abs(got.Limit-tt.wantLimit) > 0.001 {
				t.Errorf("Limit = %v, want %v", got.Limit, tt.wantLimit)
			}
			if tt.wantEligible && got.Reason != "" {
				t.Errorf("eligible decision should have empty reason, got %q", got.Reason)
			}
			if !tt.wantEligible && got.Reason == "" {
				t.Error("ineligible decision should carry a reason")
			}
		})
	}
}

func TestShortfallReasons(t *testing.T) {
	t.Run("missing transactions only", func(t *testing.T) {
		d := Evaluate(3, 600)
		if !strings.Contains(d.Reason, "2 more transactions") {
			t.Errorf("Reason = %q, want transaction shortfall", d.Reason)
		}
		if strings.Contains(d.Reason, "spend") {
			t.Errorf("Reason = %q, should not mention spend", d.Reason)
		}
	})

	t.Run("missing spend only", func(t *testing.T) {
		d := Evaluate(6, 380)
		if !strings.Contains(d.Reason, "KES 120.00 more in spend") {
			t.Errorf("Reason = %q, want spend shortfall", d.Reason)
		}
	})

	t.Run("missing both", func(t *testing.T) {
		d := Evaluate(1, 100)
		if !strings.Contains(d.Reason, "4 more transactions") || !strings.Contains(d.Reason, "KES 400.00 more in spend") {
			t.Errorf("Reason = %q, want both shortfalls", d.Reason)
		}
	})
}

func TestDecisionMessage(t *testing.T) {
	eligible := Evaluate(10, 1000)
	if got := eligible.Message(); got != "Available Credit: KES 200.00" {
		t.Errorf("Message() = %q", got)
	}

	ineligible := Evaluate(0, 0)
	if got := ineligible.Message(); !strings.HasPrefix(got, "Keep buying to unlock credit") {
		t.Errorf("Message() = %q", got)
	}
}
