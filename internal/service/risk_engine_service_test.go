package service

import (
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"course_risk_backend/internal/util"
	"errors"
	"math"
	"reflect"
	"testing"
)

func defaultEngine() *RiskEngineService {
	return NewRiskEngineService(config.RiskConfig{
		CourseWeeks:   15,
		MLBlendWeight: 0.7,
	})
}

func testWeights() model.ComponentWeights {
	return model.ComponentWeights{
		model.ComponentMidterm:     30,
		model.ComponentFinal:       40,
		model.ComponentQuizzes:     15,
		model.ComponentAssignments: 15,
		model.ComponentProjects:    0,
	}
}

func fptr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestCalculateAbsenceAutoFail(t *testing.T) {
	engine := defaultEngine()

	result := engine.Calculate(model.Computation{
		WeightedPercent:      80,
		MaxAchievablePercent: 95,
		TotalAbsences:        31,
		ExamCompletedRatio:   1,
	}, nil)

	if !result.IsAutoFail {
		t.Fatal("31 absences must auto-fail")
	}
	if result.ProbabilityFail != 1 {
		t.Fatalf("probability = %v, want 1", result.ProbabilityFail)
	}
	if result.Bucket != model.BucketRed {
		t.Fatalf("bucket = %v, want red", result.Bucket)
	}
	if len(result.Reasons) == 0 || result.Reasons[0] != "Absences exceed 30" {
		t.Fatalf("first reason = %v, want absence rule", result.Reasons)
	}
}

func TestCalculateThirtyAbsencesIsNotAutoFail(t *testing.T) {
	engine := defaultEngine()

	result := engine.Calculate(model.Computation{
		WeightedPercent:      80,
		MaxAchievablePercent: 95,
		TotalAbsences:        30,
		ExamCompletedRatio:   1,
	}, nil)

	if result.IsAutoFail {
		t.Fatal("exactly 30 absences must not auto-fail")
	}
	found := false
	for _, r := range result.Reasons {
		if r == "Absence level is critical (25+)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("critical absence reason missing: %v", result.Reasons)
	}
}

func TestCalculateCannotReachPassing(t *testing.T) {
	engine := defaultEngine()

	result := engine.Calculate(model.Computation{
		WeightedPercent:      20,
		RemainingWeight:      25,
		MaxAchievablePercent: 45,
		ExamCompletedRatio:   0.5,
	}, nil)

	if !result.IsAutoFail || result.ProbabilityFail != 1 {
		t.Fatalf("maxAchievable below 50 must auto-fail, got %+v", result)
	}
	if result.Reasons[0] != "Not enough remaining weight to reach passing grade" {
		t.Fatalf("first reason = %q", result.Reasons[0])
	}
}

func TestCalculateAllCompletedBelowPass(t *testing.T) {
	engine := defaultEngine()

	result := engine.Calculate(model.Computation{
		WeightedPercent:        40,
		MaxAchievablePercent:   60,
		AllComponentsCompleted: true,
		ExamCompletedRatio:     1,
	}, nil)

	if !result.IsAutoFail || result.ProbabilityFail != 1 {
		t.Fatalf("completed course below 50%% must auto-fail, got %+v", result)
	}
	if result.Reasons[0] != "Total weighted grade is below passing threshold (50%)" {
		t.Fatalf("first reason = %q", result.Reasons[0])
	}
}

func TestCalculateHeuristic(t *testing.T) {
	engine := defaultEngine()

	computation := model.Computation{
		WeightedPercent:      60,
		RemainingWeight:      30,
		MaxAchievablePercent: 90,
		TotalAbsences:        15,
		MissingWeeksCount:    3,
		ExamCompletedRatio:   0.5,
		QuizTrend:            -0.5,
	}
	result := engine.Calculate(computation, nil)

	// 0.45*0.4 + 0.20*(3/15) + 0.20*(15/30) + 0.15*0.1 + 0.05*0.5
	want := 0.18 + 0.04 + 0.10 + 0.015 + 0.025
	if !almostEqual(result.ProbabilityFail, want) {
		t.Fatalf("heuristic = %v, want %v", result.ProbabilityFail, want)
	}
	if result.IsAutoFail {
		t.Fatal("heuristic path must not auto-fail")
	}
	if result.Bucket != model.BucketYellow {
		t.Fatalf("bucket = %v, want yellow", result.Bucket)
	}
}

func TestCalculateBlendsEstimate(t *testing.T) {
	engine := defaultEngine()

	computation := model.Computation{
		WeightedPercent:      60,
		RemainingWeight:      30,
		MaxAchievablePercent: 90,
		TotalAbsences:        15,
		MissingWeeksCount:    3,
		ExamCompletedRatio:   0.5,
		QuizTrend:            -0.5,
	}
	heuristic := engine.Calculate(computation, nil).ProbabilityFail
	blended := engine.Calculate(computation, fptr(0.9)).ProbabilityFail

	want := 0.7*0.9 + 0.3*heuristic
	if !almostEqual(blended, want) {
		t.Fatalf("blended = %v, want %v", blended, want)
	}
}

func TestCalculateBlendWeightIsPolicy(t *testing.T) {
	engine := NewRiskEngineService(config.RiskConfig{CourseWeeks: 15, MLBlendWeight: 0.5})

	computation := model.Computation{
		WeightedPercent:      60,
		MaxAchievablePercent: 90,
		ExamCompletedRatio:   1,
	}
	heuristic := engine.Calculate(computation, nil).ProbabilityFail
	blended := engine.Calculate(computation, fptr(0.8)).ProbabilityFail
	if !almostEqual(blended, 0.5*0.8+0.5*heuristic) {
		t.Fatalf("blend ignored policy weight: %v", blended)
	}

	engine.ApplyPolicy(config.RiskConfig{CourseWeeks: 15, MLBlendWeight: 1})
	if got := engine.Calculate(computation, fptr(0.8)).ProbabilityFail; !almostEqual(got, 0.8) {
		t.Fatalf("full blend weight must return the estimate, got %v", got)
	}
}

func TestCalculateOutOfRangeEstimateIsClamped(t *testing.T) {
	engine := defaultEngine()

	computation := model.Computation{WeightedPercent: 90, MaxAchievablePercent: 100, ExamCompletedRatio: 1}
	result := engine.Calculate(computation, fptr(7.5))
	if result.ProbabilityFail > 1 {
		t.Fatalf("probability must stay in [0,1], got %v", result.ProbabilityFail)
	}
}

func TestCalculateReasonOrderAndDedupe(t *testing.T) {
	engine := defaultEngine()

	computation := model.Computation{
		WeightedPercent:      30,
		MaxAchievablePercent: 60,
		TotalAbsences:        26,
		MissingWeeksCount:    2,
		ExamCompletedRatio:   0.5,
		QuizTrend:            -0.5,
	}
	result := engine.Calculate(computation, nil)

	want := []string{
		"Weighted score currently below 50%",
		"Midterm or final exam not fully completed",
		"Missing weekly submissions detected",
		"Absence level is critical (25+)",
		"Weekly quiz trend is declining",
	}
	if !reflect.DeepEqual(result.Reasons, want) {
		t.Fatalf("reasons = %v, want %v", result.Reasons, want)
	}

	seen := map[string]bool{}
	for _, r := range result.Reasons {
		if seen[r] {
			t.Fatalf("duplicate reason %q", r)
		}
		seen[r] = true
	}
}

func TestCalculateWarningAbsenceReason(t *testing.T) {
	engine := defaultEngine()

	result := engine.Calculate(model.Computation{
		WeightedPercent:      70,
		MaxAchievablePercent: 90,
		TotalAbsences:        21,
		ExamCompletedRatio:   1,
	}, nil)

	for _, r := range result.Reasons {
		if r == "Absence level is critical (25+)" {
			t.Fatal("21 absences must not be critical")
		}
	}
	found := false
	for _, r := range result.Reasons {
		if r == "Absence level is in warning zone (20+)" {
			found = true
		}
	}
	if !found {
		t.Fatalf("warning absence reason missing: %v", result.Reasons)
	}
}

func TestCalculateIsDeterministic(t *testing.T) {
	engine := defaultEngine()

	computation := model.Computation{
		WeightedPercent:      55,
		MaxAchievablePercent: 80,
		TotalAbsences:        10,
		MissingWeeksCount:    1,
		ExamCompletedRatio:   0.5,
	}
	first := engine.Calculate(computation, nil)
	second := engine.Calculate(computation, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same input produced different results:\n%+v\n%+v", first, second)
	}
}

func TestBuildComputationDefaults(t *testing.T) {
	engine := defaultEngine()

	computation, err := engine.BuildComputation(testWeights(), 15, nil, nil, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}

	if computation.WeightedPercent != 0 {
		t.Errorf("weightedPercent = %v, want 0", computation.WeightedPercent)
	}
	if !almostEqual(computation.RemainingWeight, 100) {
		t.Errorf("remainingWeight = %v, want 100", computation.RemainingWeight)
	}
	if computation.MissingWeeksCount != 15 {
		t.Errorf("missingWeeksCount = %v, want 15", computation.MissingWeeksCount)
	}
	if computation.AllComponentsCompleted {
		t.Error("nothing submitted must not count as completed")
	}
	if computation.ExamCompletedRatio != 0 {
		t.Errorf("examCompletedRatio = %v, want 0", computation.ExamCompletedRatio)
	}
}

func TestBuildComputationOverridesCompleteComponents(t *testing.T) {
	engine := defaultEngine()

	override := model.Override{
		MidtermScore:       fptr(80),
		FinalScore:         fptr(70),
		QuizzesAverage:     fptr(90),
		AssignmentsAverage: fptr(85),
		TotalAbsences:      fptr(0),
		MissingWeeksCount:  fptr(0),
	}
	computation, err := engine.BuildComputation(testWeights(), 15, nil, nil, override)
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}

	if !computation.AllComponentsCompleted {
		t.Fatal("overridden components must count as completed")
	}
	if computation.RemainingWeight != 0 {
		t.Fatalf("remainingWeight = %v, want 0", computation.RemainingWeight)
	}
	want := 80*0.3 + 70*0.4 + 90*0.15 + 85*0.15
	if !almostEqual(computation.WeightedPercent, want) {
		t.Fatalf("weightedPercent = %v, want %v", computation.WeightedPercent, want)
	}
	if computation.ExamCompletedRatio != 1 {
		t.Fatalf("examCompletedRatio = %v, want 1", computation.ExamCompletedRatio)
	}
}

func TestBuildComputationMissingWeeksClamp(t *testing.T) {
	engine := defaultEngine()

	computation, err := engine.BuildComputation(testWeights(), 15, nil, nil, model.Override{
		MissingWeeksCount: fptr(40),
	})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}
	if computation.MissingWeeksCount != 15 {
		t.Fatalf("missingWeeksCount = %v, want clamp to 15", computation.MissingWeeksCount)
	}
}

func TestBuildComputationInvalidWeights(t *testing.T) {
	engine := defaultEngine()

	bad := model.ComponentWeights{
		model.ComponentMidterm: 30,
		model.ComponentFinal:   40,
		model.ComponentQuizzes: 25,
	}
	_, err := engine.BuildComputation(bad, 15, nil, nil, model.Override{})
	if err == nil {
		t.Fatal("weights summing to 95 must be rejected")
	}
	if !errors.Is(err, util.ErrInvalidWeights) {
		t.Fatalf("error = %v, want ErrInvalidWeights", err)
	}
}

func TestBuildComputationExamRecords(t *testing.T) {
	engine := defaultEngine()

	exams := []model.ExamRecord{{Type: model.ExamMidterm, Score: 60}}
	computation, err := engine.BuildComputation(testWeights(), 15, nil, exams, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}

	// midterm 60 * 30% is the only contribution
	if !almostEqual(computation.WeightedPercent, 18) {
		t.Fatalf("weightedPercent = %v, want 18", computation.WeightedPercent)
	}
	if computation.ExamCompletedRatio != 0.5 {
		t.Fatalf("examCompletedRatio = %v, want 0.5", computation.ExamCompletedRatio)
	}
	if !almostEqual(computation.RemainingWeight, 70) {
		t.Fatalf("remainingWeight = %v, want 70", computation.RemainingWeight)
	}
}

func TestBuildComputationQuizTrend(t *testing.T) {
	engine := defaultEngine()

	weeks := []model.WeekRecord{
		{WeekNumber: 3, QuizScore: fptr(80)},
		{WeekNumber: 1, QuizScore: fptr(40)},
		{WeekNumber: 4, QuizScore: fptr(90)},
		{WeekNumber: 2, QuizScore: fptr(50)},
	}
	computation, err := engine.BuildComputation(testWeights(), 15, weeks, nil, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}

	// halves sorted by week: (40+50)/2 vs (80+90)/2
	if !almostEqual(computation.QuizTrend, 0.4) {
		t.Fatalf("quizTrend = %v, want 0.4", computation.QuizTrend)
	}
}

func TestBuildComputationSinglePointTrendIsZero(t *testing.T) {
	engine := defaultEngine()

	weeks := []model.WeekRecord{{WeekNumber: 1, QuizScore: fptr(95)}}
	computation, err := engine.BuildComputation(testWeights(), 15, weeks, nil, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}
	if computation.QuizTrend != 0 {
		t.Fatalf("quizTrend = %v, want 0 for a single point", computation.QuizTrend)
	}
}

func TestBuildComputationAbsencesRounded(t *testing.T) {
	engine := defaultEngine()

	weeks := []model.WeekRecord{
		{WeekNumber: 1, AbsenceCountWeek: 1.4},
		{WeekNumber: 2, AbsenceCountWeek: 1.4},
	}
	computation, err := engine.BuildComputation(testWeights(), 15, weeks, nil, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}
	if computation.TotalAbsences != 3 {
		t.Fatalf("totalAbsences = %v, want round(2.8) = 3", computation.TotalAbsences)
	}
}
