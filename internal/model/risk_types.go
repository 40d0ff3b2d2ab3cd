package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// CourseComponent is one gradable category of a course.
type CourseComponent string

const (
	ComponentMidterm     CourseComponent = "midterm"
	ComponentFinal       CourseComponent = "final"
	ComponentQuizzes     CourseComponent = "quizzes"
	ComponentAssignments CourseComponent = "assignments"
	ComponentProjects    CourseComponent = "projects"
)

// AllComponents lists every component in canonical order.
var AllComponents = []CourseComponent{
	ComponentMidterm,
	ComponentFinal,
	ComponentQuizzes,
	ComponentAssignments,
	ComponentProjects,
}

// WeightSumTolerance is the allowed deviation of the weight sum from 100.
const WeightSumTolerance = 1e-4

// ComponentWeights maps every component to its weight percentage. The set
// is replaced wholesale on each syllabus update and must sum to 100.
type ComponentWeights map[CourseComponent]float64

func (w ComponentWeights) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Validate checks each weight is a finite value in [0,100] and that the
// sum is 100 within tolerance. A violation is a configuration error, never
// something to silently fix.
func (w ComponentWeights) Validate() error {
	for _, component := range AllComponents {
		v := w[component]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > 100 {
			return fmt.Errorf("weight for %s must be between 0 and 100, got %v", component, v)
		}
	}
	if total := w.Sum(); math.Abs(total-100) > WeightSumTolerance {
		return fmt.Errorf("weights must sum to 100, got %v", total)
	}
	return nil
}

// NormalizeWeights builds a full weight set from a raw name->value map,
// defaulting absent components to 0 and rejecting unknown names.
func NormalizeWeights(raw map[string]float64) (ComponentWeights, error) {
	weights := ComponentWeights{}
	for _, component := range AllComponents {
		weights[component] = 0
	}
	for name, value := range raw {
		component := CourseComponent(name)
		if _, ok := weights[component]; !ok {
			return nil, fmt.Errorf("unknown component %q", name)
		}
		weights[component] = value
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return weights, nil
}

// RiskBucket is the three-level discrete classification.
type RiskBucket string

const (
	BucketGreen  RiskBucket = "green"
	BucketYellow RiskBucket = "yellow"
	BucketRed    RiskBucket = "red"
)

// BucketFor maps a failure probability to its bucket. Boundaries round up:
// exactly 0.33 is yellow, exactly 0.66 is red.
func BucketFor(probability float64) RiskBucket {
	if probability < 0.33 {
		return BucketGreen
	}
	if probability < 0.66 {
		return BucketYellow
	}
	return BucketRed
}

// AbsenceStatus summarizes the attendance situation for dashboards.
type AbsenceStatus string

const (
	AbsenceOK       AbsenceStatus = "ok"
	AbsenceWarning  AbsenceStatus = "warning"
	AbsenceCritical AbsenceStatus = "critical"
	AbsenceAutoFail AbsenceStatus = "auto_fail"
)

func AbsenceStatusFor(totalAbsences int) AbsenceStatus {
	switch {
	case totalAbsences > 30:
		return AbsenceAutoFail
	case totalAbsences >= 25:
		return AbsenceCritical
	case totalAbsences >= 20:
		return AbsenceWarning
	default:
		return AbsenceOK
	}
}

// Computation is the ephemeral feature vector consumed by the classifier,
// recomputed from raw records on every request.
type Computation struct {
	WeightedPercent        float64 `json:"weightedPercent"`
	RemainingWeight        float64 `json:"remainingWeight"`
	MaxAchievablePercent   float64 `json:"maxAchievablePercent"`
	TotalAbsences          int     `json:"totalAbsences"`
	MissingWeeksCount      int     `json:"missingWeeksCount"`
	ExamCompletedRatio     float64 `json:"examCompletedRatio"`
	QuizTrend              float64 `json:"quizTrend"`
	AllComponentsCompleted bool    `json:"allComponentsCompleted"`
}

// RiskFeatures is the normalized feature set echoed in results and sent to
// the external estimator.
type RiskFeatures struct {
	WeightedPercent      float64 `json:"weightedPercent"`
	RemainingWeight      float64 `json:"remainingWeight"`
	MaxAchievablePercent float64 `json:"maxAchievablePercent"`
	TotalAbsences        float64 `json:"totalAbsences"`
	AbsencesRate         float64 `json:"absencesRate"`
	MissingWeeksCount    float64 `json:"missingWeeksCount"`
	ExamCompletedRatio   float64 `json:"examCompletedRatio"`
	QuizTrend            float64 `json:"quizTrend"`
}

// RiskResult is the output of one classification.
type RiskResult struct {
	ProbabilityFail float64      `json:"probabilityFail"`
	Bucket          RiskBucket   `json:"bucket"`
	IsAutoFail      bool         `json:"isAutoFail"`
	Reasons         []string     `json:"reasons"`
	Features        RiskFeatures `json:"features"`
}

// ExamRecord is an in-memory exam row as provided by the submission
// source: at most one per type, latest score wins.
type ExamRecord struct {
	Type  ExamType `json:"type"`
	Score float64  `json:"score"`
}

// WeekRecord is an in-memory weekly row joined with its week number.
type WeekRecord struct {
	WeekNumber       int      `json:"weekNumber"`
	QuizScore        *float64 `json:"quizScore"`
	AssignmentScore  *float64 `json:"assignmentScore"`
	AbsenceCountWeek float64  `json:"absenceCountWeek"`
}

// Override is a partial replacement of feature inputs used only for
// simulation; it is never persisted into the baseline.
type Override struct {
	MidtermScore       *float64 `json:"midtermScore,omitempty"`
	FinalScore         *float64 `json:"finalScore,omitempty"`
	QuizzesAverage     *float64 `json:"quizzesAverage,omitempty"`
	AssignmentsAverage *float64 `json:"assignmentsAverage,omitempty"`
	TotalAbsences      *float64 `json:"totalAbsences,omitempty"`
	MissingWeeksCount  *float64 `json:"missingWeeksCount,omitempty"`
}

// OverrideChange reports one overridden input of a simulation.
type OverrideChange struct {
	Key      string  `json:"key"`
	NewValue float64 `json:"newValue"`
}

func (o Override) IsEmpty() bool {
	return o.MidtermScore == nil && o.FinalScore == nil &&
		o.QuizzesAverage == nil && o.AssignmentsAverage == nil &&
		o.TotalAbsences == nil && o.MissingWeeksCount == nil
}

// Changes lists the overridden fields in canonical order.
func (o Override) Changes() []OverrideChange {
	changes := []OverrideChange{}
	add := func(key string, v *float64) {
		if v != nil {
			changes = append(changes, OverrideChange{Key: key, NewValue: *v})
		}
	}
	add("midtermScore", o.MidtermScore)
	add("finalScore", o.FinalScore)
	add("quizzesAverage", o.QuizzesAverage)
	add("assignmentsAverage", o.AssignmentsAverage)
	add("totalAbsences", o.TotalAbsences)
	add("missingWeeksCount", o.MissingWeeksCount)
	return changes
}

// Validate rejects out-of-range or non-finite values before they reach the
// feature builder. All offending fields are reported together.
func (o Override) Validate(maxWeeks int) error {
	var problems []string
	checkScore := func(field string, v *float64) {
		if v == nil {
			return
		}
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v > 100 {
			problems = append(problems, fmt.Sprintf("%s must be between 0 and 100", field))
		}
	}
	checkScore("midtermScore", o.MidtermScore)
	checkScore("finalScore", o.FinalScore)
	checkScore("quizzesAverage", o.QuizzesAverage)
	checkScore("assignmentsAverage", o.AssignmentsAverage)
	if v := o.TotalAbsences; v != nil {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
			problems = append(problems, "totalAbsences must be a non-negative number")
		}
	}
	if v := o.MissingWeeksCount; v != nil {
		if math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 || *v > float64(maxWeeks) {
			problems = append(problems, fmt.Sprintf("missingWeeksCount must be between 0 and %d", maxWeeks))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
