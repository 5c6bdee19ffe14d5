package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		want  *ModelCost
	}{
		{"claude-3-5-sonnet-20240620", &ModelCost{3, 15}},
		{"anthropic.claude-3-5-sonnet-20240620-v1:0", &ModelCost{3, 15}},
		{"us.anthropic.claude-3-7-sonnet-20250219-v1:0", &ModelCost{3, 15}},
		{"gpt-4o-mini", &ModelCost{0.15, 0.6}},
		{"mock", nil},
	}
	for _, tt := range tests {
		got := LookupCost(tt.model)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("LookupCost(%q) = %v, want %v", tt.model, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("LookupCost(%q) = %v, want %v", tt.model, *got, *tt.want)
		}
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 3, OutputPerMTok: 15}
	got := c.Cost(1_000_000, 100_000)
	if math.Abs(got-4.5) > 1e-9 {
		t.Fatalf("expected 4.5, got %v", got)
	}
}
