package loyalty

import (
	"strings"
	"testing"
)

func TestComputePoints(t *testing.T) {
	tests := []struct {
		name         string
		spend        float64
		wantPoints   int
		wantProgress int
		wantRewards  int
	}{
		{name: "zero spend", spend: 0, wantPoints: 0, wantProgress: 0, wantRewards: 0},
		{name: "below one point", spend: 9.99, wantPoints: 0, wantProgress: 0, wantRewards: 0},
		{name: "exactly one point", spend: 10, wantPoints: 1, wantProgress: 1, wantRewards: 0},
		{name: "fraction floors down", spend: 99, wantPoints: 9, wantProgress: 9, wantRewards: 0},
		{name: "exactly one reward", spend: 500, wantPoints: 50, wantProgress: 0, wantRewards: 1},
		{name: "mid second cycle", spend: 730, wantPoints: 73, wantProgress: 23, wantRewards: 1},
		{name: "two rewards", spend: 1000, wantPoints: 100, wantProgress: 0, wantRewards: 2},
		{name: "negative clamped to zero", spend: -50, wantPoints: 0, wantProgress: 0, wantRewards: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePoints(tt.spend)
			if got.Points != tt.wantPoints {
				t.Errorf("Points = %d, want %d", got.Points, tt.wantPoints)
			}
			if got.ProgressToReward != tt.wantProgress {
				t.Errorf("ProgressToReward = %d, want %d", got.ProgressToReward, tt.wantProgress)
			}
			if got.RewardsEarned != tt.wantRewards {
				t.Errorf("RewardsEarned = %d, want %d", got.RewardsEarned, tt.wantRewards)
			}
		})
	}
}

func TestComputePointsMonotonic(t *testing.T) {
	prev := 0
	for spend := 0.0; spend <= 2000; spend += 7.5 {
		got := ComputePoints(spend).Points
		if got < prev {
			t.Fatalf("points decreased: spend=%v points=%d prev=%d", spend, got, prev)
		}
		prev = got
	}
}

func TestSummaryMessage(t *testing.T) {
	t.Run("reward available", func(t *testing.T) {
		msg := ComputePoints(520).Message()
		if !strings.Contains(msg, "free Mandazi!") {
			t.Errorf("expected reward message, got %q", msg)
		}
		if !strings.Contains(msg, "52 KulaPoints") {
			t.Errorf("expected point total in message, got %q", msg)
		}
	})

	t.Run("progress message names remaining spend", func(t *testing.T) {
		// 120 KES -> 12 points, 38 points (380 KES) to go.
		msg := ComputePoints(120).Message()
		if !strings.Contains(msg, "Spend 380 more") {
			t.Errorf("expected remaining spend hint, got %q", msg)
		}
	})
}
