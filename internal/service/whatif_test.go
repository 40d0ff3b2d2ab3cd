package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"course_risk_backend/internal/model"
)

type estimatorFunc func(context.Context, model.RiskFeatures) (float64, error)

func (f estimatorFunc) PredictCourseRisk(ctx context.Context, features model.RiskFeatures) (float64, error) {
	return f(ctx, features)
}

// scenarioFixture mirrors the production evaluation path over in-memory
// records so whatIfOutcome can run without storage.
func scenarioFixture(engine *RiskEngineService, estimator ProbabilityEstimator, weeks []model.WeekRecord, exams []model.ExamRecord) scenarioEval {
	return func(ctx context.Context, override model.Override) (model.Computation, model.RiskResult, error) {
		computation, err := engine.BuildComputation(testWeights(), engine.CourseWeeks(), weeks, exams, override)
		if err != nil {
			return model.Computation{}, model.RiskResult{}, err
		}
		result := engine.Calculate(computation, nil)
		if !result.IsAutoFail && estimator != nil {
			if ml, err := estimator.PredictCourseRisk(ctx, result.Features); err == nil {
				result = engine.Calculate(computation, &ml)
			}
		}
		return computation, result, nil
	}
}

func TestWhatIfEmptyOverrideHasZeroDelta(t *testing.T) {
	engine := defaultEngine()
	estimator := estimatorFunc(func(context.Context, model.RiskFeatures) (float64, error) {
		return 0.4, nil
	})
	weeks := []model.WeekRecord{
		{WeekNumber: 1, QuizScore: fptr(70), AssignmentScore: fptr(80)},
		{WeekNumber: 2, QuizScore: fptr(60), AbsenceCountWeek: 2},
	}
	exams := []model.ExamRecord{{Type: model.ExamMidterm, Score: 55}}
	eval := scenarioFixture(engine, estimator, weeks, exams)

	outcome, err := whatIfOutcome(context.Background(), eval, model.Override{})
	if err != nil {
		t.Fatalf("whatIfOutcome: %v", err)
	}
	if outcome.Delta != 0 {
		t.Fatalf("delta = %v, want exactly 0", outcome.Delta)
	}
	if outcome.NewProbability != outcome.BaselineProbability {
		t.Fatalf("new probability %v != baseline %v", outcome.NewProbability, outcome.BaselineProbability)
	}
	if len(outcome.ChangedFeatures) != 0 {
		t.Fatalf("changed features = %v, want none", outcome.ChangedFeatures)
	}
}

func TestWhatIfOverrideLowersRisk(t *testing.T) {
	engine := defaultEngine()
	eval := scenarioFixture(engine, nil, nil, nil)

	outcome, err := whatIfOutcome(context.Background(), eval, model.Override{FinalScore: fptr(100)})
	if err != nil {
		t.Fatalf("whatIfOutcome: %v", err)
	}
	if outcome.Delta >= 0 {
		t.Fatalf("delta = %v, want negative (a perfect final lowers risk)", outcome.Delta)
	}
	if !almostEqual(outcome.NewProbability-outcome.BaselineProbability, outcome.Delta) {
		t.Fatalf("delta %v does not match probabilities %v - %v",
			outcome.Delta, outcome.NewProbability, outcome.BaselineProbability)
	}
	want := []model.OverrideChange{{Key: "finalScore", NewValue: 100}}
	if !reflect.DeepEqual(outcome.ChangedFeatures, want) {
		t.Fatalf("changed features = %v, want %v", outcome.ChangedFeatures, want)
	}
	if !almostEqual(outcome.NewWeightedPercent, 40) {
		t.Fatalf("new weighted percent = %v, want 40", outcome.NewWeightedPercent)
	}
}

func TestWhatIfScenariosDegradeIndependently(t *testing.T) {
	engine := defaultEngine()
	// The estimator answers for the empty-submission baseline only; the
	// simulated scenario falls back to the heuristic.
	estimator := estimatorFunc(func(_ context.Context, features model.RiskFeatures) (float64, error) {
		if features.WeightedPercent == 0 {
			return 0.9, nil
		}
		return 0, errors.New("estimator down")
	})
	eval := scenarioFixture(engine, estimator, nil, nil)
	override := model.Override{FinalScore: fptr(100)}

	outcome, err := whatIfOutcome(context.Background(), eval, override)
	if err != nil {
		t.Fatalf("whatIfOutcome: %v", err)
	}

	baseComp, err := engine.BuildComputation(testWeights(), engine.CourseWeeks(), nil, nil, model.Override{})
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}
	blended := engine.Calculate(baseComp, fptr(0.9))
	if !almostEqual(outcome.BaselineProbability, blended.ProbabilityFail) {
		t.Fatalf("baseline = %v, want blended %v", outcome.BaselineProbability, blended.ProbabilityFail)
	}

	simComp, err := engine.BuildComputation(testWeights(), engine.CourseWeeks(), nil, nil, override)
	if err != nil {
		t.Fatalf("BuildComputation: %v", err)
	}
	heuristic := engine.Calculate(simComp, nil)
	if !almostEqual(outcome.NewProbability, heuristic.ProbabilityFail) {
		t.Fatalf("simulated = %v, want heuristic %v", outcome.NewProbability, heuristic.ProbabilityFail)
	}
	if outcome.Bucket != heuristic.Bucket {
		t.Fatalf("bucket = %v, want %v", outcome.Bucket, heuristic.Bucket)
	}
}

func TestWhatIfPropagatesEvaluationError(t *testing.T) {
	boom := errors.New("evaluation failed")
	eval := scenarioEval(func(context.Context, model.Override) (model.Computation, model.RiskResult, error) {
		return model.Computation{}, model.RiskResult{}, boom
	})

	if _, err := whatIfOutcome(context.Background(), eval, model.Override{}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
