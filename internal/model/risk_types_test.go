package model

import (
	"strings"
	"testing"
)

func TestComponentWeightsValidate(t *testing.T) {
	valid := ComponentWeights{
		ComponentMidterm:     30,
		ComponentFinal:       40,
		ComponentQuizzes:     15,
		ComponentAssignments: 15,
		ComponentProjects:    0,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}

	short := ComponentWeights{
		ComponentMidterm: 30,
		ComponentFinal:   40,
		ComponentQuizzes: 25,
	}
	if err := short.Validate(); err == nil {
		t.Fatal("weights summing to 95 must be rejected")
	}

	negative := ComponentWeights{
		ComponentMidterm:     -10,
		ComponentFinal:       60,
		ComponentQuizzes:     25,
		ComponentAssignments: 25,
	}
	if err := negative.Validate(); err == nil {
		t.Fatal("negative weight must be rejected")
	}
}

func TestNormalizeWeights(t *testing.T) {
	weights, err := NormalizeWeights(map[string]float64{
		"midterm": 50,
		"final":   50,
	})
	if err != nil {
		t.Fatalf("NormalizeWeights: %v", err)
	}
	if weights[ComponentQuizzes] != 0 || weights[ComponentProjects] != 0 {
		t.Fatal("absent components must default to 0")
	}

	if _, err := NormalizeWeights(map[string]float64{"labs": 100}); err == nil {
		t.Fatal("unknown component name must be rejected")
	}
}

func TestBucketFor(t *testing.T) {
	tests := []struct {
		p    float64
		want RiskBucket
	}{
		{0, BucketGreen},
		{0.329999, BucketGreen},
		{0.33, BucketYellow},
		{0.659999, BucketYellow},
		{0.66, BucketRed},
		{1, BucketRed},
	}
	for _, tt := range tests {
		if got := BucketFor(tt.p); got != tt.want {
			t.Errorf("BucketFor(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestAbsenceStatusFor(t *testing.T) {
	tests := []struct {
		absences int
		want     AbsenceStatus
	}{
		{0, AbsenceOK},
		{19, AbsenceOK},
		{20, AbsenceWarning},
		{24, AbsenceWarning},
		{25, AbsenceCritical},
		{30, AbsenceCritical},
		{31, AbsenceAutoFail},
	}
	for _, tt := range tests {
		if got := AbsenceStatusFor(tt.absences); got != tt.want {
			t.Errorf("AbsenceStatusFor(%d) = %v, want %v", tt.absences, got, tt.want)
		}
	}
}

func ptr(v float64) *float64 { return &v }

func TestOverrideValidate(t *testing.T) {
	if err := (Override{}).Validate(15); err != nil {
		t.Fatalf("empty override rejected: %v", err)
	}

	ok := Override{MidtermScore: ptr(85), TotalAbsences: ptr(10)}
	if err := ok.Validate(15); err != nil {
		t.Fatalf("valid override rejected: %v", err)
	}

	bad := Override{
		MidtermScore:      ptr(150),
		TotalAbsences:     ptr(-1),
		MissingWeeksCount: ptr(16),
	}
	err := bad.Validate(15)
	if err == nil {
		t.Fatal("invalid override accepted")
	}
	for _, field := range []string{"midtermScore", "totalAbsences", "missingWeeksCount"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("error does not mention %s: %v", field, err)
		}
	}
}

func TestOverrideChanges(t *testing.T) {
	if !(Override{}).IsEmpty() {
		t.Fatal("zero override must report empty")
	}

	o := Override{FinalScore: ptr(90), MidtermScore: ptr(70), TotalAbsences: ptr(5)}
	changes := o.Changes()
	want := []string{"midtermScore", "finalScore", "totalAbsences"}
	if len(changes) != len(want) {
		t.Fatalf("got %d changes, want %d", len(changes), len(want))
	}
	for i, key := range want {
		if changes[i].Key != key {
			t.Errorf("changes[%d].Key = %s, want %s (canonical order)", i, changes[i].Key, key)
		}
	}
}
