package service

import (
	"testing"
)

func TestGenerateMapsReasonsToAdvice(t *testing.T) {
	svc := NewSuggestionService(nil)

	items := svc.Generate([]string{
		"Midterm or final exam not fully completed",
		"Weekly quiz trend is declining",
		"Absence level is critical (25+)",
	}, 45)

	titles := map[string]bool{}
	for _, item := range items {
		titles[item.Title] = true
	}
	for _, want := range []string{
		"Focus on exam-style practice",
		"Stabilize weekly quiz consistency",
		"Adopt attendance recovery plan",
	} {
		if !titles[want] {
			t.Errorf("missing suggestion %q in %v", want, titles)
		}
	}
}

func TestGenerateFallsBackToBaselineAdvice(t *testing.T) {
	svc := NewSuggestionService(nil)

	items := svc.Generate(nil, 80)
	if len(items) < 1 {
		t.Fatal("no suggestions generated")
	}
	// A healthy course still gets the baseline cadence advice.
	found := false
	for _, item := range items {
		if item.Title == "Structured weekly study cadence" {
			found = true
		}
	}
	if !found {
		t.Fatalf("baseline suggestion missing: %+v", items)
	}
}

func TestGenerateCapsAtSix(t *testing.T) {
	svc := NewSuggestionService(nil)

	items := svc.Generate([]string{
		"Weighted score currently below 50%",
		"Midterm or final exam not fully completed",
		"Weekly quiz trend is declining",
		"Not enough remaining weight to reach passing grade",
		"Absence level is critical (25+)",
		"Missing weekly submissions detected",
	}, 20)

	if len(items) > 6 {
		t.Fatalf("got %d suggestions, cap is 6", len(items))
	}
	if len(items) == 0 {
		t.Fatal("no suggestions generated")
	}
	for _, item := range items {
		if item.Title == "" || item.Why == "" || len(item.Actions) == 0 {
			t.Fatalf("incomplete suggestion: %+v", item)
		}
	}
}
