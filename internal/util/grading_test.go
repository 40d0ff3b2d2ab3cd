package util

import (
	"course_risk_backend/internal/model"
	"math"
	"testing"
)

func standardWeights() model.ComponentWeights {
	return model.ComponentWeights{
		model.ComponentMidterm:     30,
		model.ComponentFinal:       40,
		model.ComponentQuizzes:     15,
		model.ComponentAssignments: 15,
		model.ComponentProjects:    0,
	}
}

func TestWeightedPercent(t *testing.T) {
	weights := standardWeights()

	got := WeightedPercent(weights, 80, 80, 80, 80, 0)
	if math.Abs(got-80) > 1e-9 {
		t.Fatalf("WeightedPercent = %v, want 80", got)
	}

	got = WeightedPercent(weights, 0, 0, 0, 0, 0)
	if got != 0 {
		t.Fatalf("WeightedPercent with zero scores = %v, want 0", got)
	}

	got = WeightedPercent(weights, 100, 100, 100, 100, 100)
	if got != 100 {
		t.Fatalf("WeightedPercent with full scores = %v, want 100", got)
	}
}

func TestWeightedPercentMonotone(t *testing.T) {
	weights := standardWeights()

	low := WeightedPercent(weights, 50, 60, 70, 80, 0)
	high := WeightedPercent(weights, 60, 60, 70, 80, 0)
	if high <= low {
		t.Fatalf("raising a score must raise the weighted percent: %v <= %v", high, low)
	}
}

func TestMaxAchievablePercent(t *testing.T) {
	tests := []struct {
		name      string
		weighted  float64
		remaining float64
		want      float64
	}{
		{"midway", 40, 30, 70},
		{"everything done", 72.5, 0, 72.5},
		{"nothing done", 0, 100, 100},
		{"clamped at ceiling", 80, 40, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaxAchievablePercent(tt.weighted, tt.remaining); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("MaxAchievablePercent(%v, %v) = %v, want %v", tt.weighted, tt.remaining, got, tt.want)
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5, 0, 100); got != 0 {
		t.Fatalf("Clamp(-5) = %v, want 0", got)
	}
	if got := Clamp(120, 0, 100); got != 100 {
		t.Fatalf("Clamp(120) = %v, want 100", got)
	}
	if got := Clamp(42, 0, 100); got != 42 {
		t.Fatalf("Clamp(42) = %v, want 42", got)
	}
}
