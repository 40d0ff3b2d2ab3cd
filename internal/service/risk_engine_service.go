package service

import (
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"course_risk_backend/internal/util"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/montanaflynn/stats"
)

const (
	absenceAutoFailLimit = 30
	passThreshold        = 50.0
	criticalAbsences     = 25
	warningAbsences      = 20
	decliningTrendLimit  = -0.2
)

const (
	reasonAbsencesExceeded   = "Absences exceed 30"
	reasonCannotReachPassing = "Not enough remaining weight to reach passing grade"
	reasonWeightedBelowPass  = "Total weighted grade is below passing threshold (50%)"
	reasonCurrentlyBelowPass = "Weighted score currently below 50%"
	reasonExamsIncomplete    = "Midterm or final exam not fully completed"
	reasonMissingWeeks       = "Missing weekly submissions detected"
	reasonAbsencesCritical   = "Absence level is critical (25+)"
	reasonAbsencesWarning    = "Absence level is in warning zone (20+)"
	reasonQuizDeclining      = "Weekly quiz trend is declining"
)

// RiskEngineService turns raw submission records into a feature vector and
// classifies it. Both steps are pure over their inputs; the only mutable
// state is the hot-reloadable policy configuration.
type RiskEngineService struct {
	mu sync.RWMutex

	courseWeeks         int
	completionThreshold int
	mlBlendWeight       float64
}

func NewRiskEngineService(cfg config.RiskConfig) *RiskEngineService {
	s := &RiskEngineService{}
	s.ApplyPolicy(cfg)
	return s
}

// ApplyPolicy swaps in new policy knobs; used at construction and by the
// config watcher.
func (s *RiskEngineService) ApplyPolicy(cfg config.RiskConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.courseWeeks = cfg.CourseWeeks
	if s.courseWeeks <= 0 {
		s.courseWeeks = 15
	}
	s.completionThreshold = cfg.CompletionThreshold
	if s.completionThreshold <= 0 {
		s.completionThreshold = s.courseWeeks
	}
	s.mlBlendWeight = cfg.MLBlendWeight
	if s.mlBlendWeight < 0 || s.mlBlendWeight > 1 {
		s.mlBlendWeight = 0.7
	}
}

func (s *RiskEngineService) CourseWeeks() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courseWeeks
}

func (s *RiskEngineService) policy() (weeks, threshold int, blend float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.courseWeeks, s.completionThreshold, s.mlBlendWeight
}

// BuildComputation assembles the feature vector from a course's configured
// weights and a student's raw records, applying the optional override. It
// fails fast on an invalid weight configuration and never errors on
// missing data: absent scores default to 0/uncompleted.
func (s *RiskEngineService) BuildComputation(weights model.ComponentWeights, totalWeeks int, weekRecords []model.WeekRecord, examRecords []model.ExamRecord, override model.Override) (model.Computation, error) {
	if err := weights.Validate(); err != nil {
		return model.Computation{}, fmt.Errorf("%w: %v", util.ErrInvalidWeights, err)
	}

	courseWeeks, completionThreshold, _ := s.policy()

	midtermScore := util.Clamp(overrideOr(override.MidtermScore, examScore(examRecords, model.ExamMidterm)), 0, 100)
	finalScore := util.Clamp(overrideOr(override.FinalScore, examScore(examRecords, model.ExamFinal)), 0, 100)

	quizScores := collectScores(weekRecords, func(r model.WeekRecord) *float64 { return r.QuizScore })
	assignmentScores := collectScores(weekRecords, func(r model.WeekRecord) *float64 { return r.AssignmentScore })

	quizzesAverage := util.Clamp(overrideOr(override.QuizzesAverage, meanOrZero(quizScores)), 0, 100)
	assignmentsAverage := util.Clamp(overrideOr(override.AssignmentsAverage, meanOrZero(assignmentScores)), 0, 100)

	absenceSum := 0.0
	for _, r := range weekRecords {
		absenceSum += r.AbsenceCountWeek
	}
	totalAbsences := int(math.Max(0, math.Round(overrideOr(override.TotalAbsences, absenceSum))))

	missingWeeks := overrideOr(override.MissingWeeksCount, math.Max(0, float64(totalWeeks-len(weekRecords))))
	missingWeeksCount := int(util.Clamp(math.Round(missingWeeks), 0, float64(courseWeeks)))

	completed := map[model.CourseComponent]bool{
		model.ComponentMidterm:     override.MidtermScore != nil || hasExam(examRecords, model.ExamMidterm),
		model.ComponentFinal:       override.FinalScore != nil || hasExam(examRecords, model.ExamFinal),
		model.ComponentQuizzes:     override.QuizzesAverage != nil || len(quizScores) >= completionThreshold,
		model.ComponentAssignments: override.AssignmentsAverage != nil || len(assignmentScores) >= completionThreshold,
		// No project-submission channel exists, so projects never complete.
		model.ComponentProjects: false,
	}

	remainingWeight := 0.0
	allCompleted := true
	for component, weight := range weights {
		if !completed[component] {
			remainingWeight += weight
			if weight != 0 {
				allCompleted = false
			}
		}
	}

	examsDone := 0
	for _, examType := range []model.ExamType{model.ExamMidterm, model.ExamFinal} {
		if completed[model.CourseComponent(examType)] {
			examsDone++
		}
	}

	weightedPercent := util.WeightedPercent(weights, midtermScore, finalScore, quizzesAverage, assignmentsAverage, 0)

	return model.Computation{
		WeightedPercent:        weightedPercent,
		RemainingWeight:        remainingWeight,
		MaxAchievablePercent:   util.MaxAchievablePercent(weightedPercent, remainingWeight),
		TotalAbsences:          totalAbsences,
		MissingWeeksCount:      missingWeeksCount,
		ExamCompletedRatio:     float64(examsDone) / 2,
		QuizTrend:              quizTrend(weekRecords),
		AllComponentsCompleted: allCompleted,
	}, nil
}

// Calculate runs the deterministic classification: hard rules first, then
// the heuristic optionally blended with the external estimate. Inputs are
// clamped defensively so the pass is total over any well-formed
// computation.
func (s *RiskEngineService) Calculate(computation model.Computation, mlProbability *float64) model.RiskResult {
	courseWeeks, _, blendWeight := s.policy()

	totalAbsences := computation.TotalAbsences
	if totalAbsences < 0 {
		totalAbsences = 0
	}
	absencesRate := util.Clamp(float64(totalAbsences)/float64(absenceAutoFailLimit), 0, 1)
	weightedPercent := util.Clamp(computation.WeightedPercent, 0, 100)
	remainingWeight := util.Clamp(computation.RemainingWeight, 0, 100)
	maxAchievablePercent := util.Clamp(computation.MaxAchievablePercent, 0, 100)
	missingWeeksCount := util.Clamp(float64(computation.MissingWeeksCount), 0, float64(courseWeeks))
	examCompletedRatio := util.Clamp(computation.ExamCompletedRatio, 0, 1)
	quizTrend := util.Clamp(computation.QuizTrend, -1, 1)

	var reasons []string
	isAutoFail := false
	probabilityFail := 0.0

	if totalAbsences > absenceAutoFailLimit {
		isAutoFail = true
		probabilityFail = 1
		reasons = appendUnique(reasons, reasonAbsencesExceeded)
	}

	if !isAutoFail && maxAchievablePercent < passThreshold {
		isAutoFail = true
		probabilityFail = 1
		reasons = appendUnique(reasons, reasonCannotReachPassing)
	}

	if !isAutoFail && computation.AllComponentsCompleted && weightedPercent < passThreshold {
		isAutoFail = true
		probabilityFail = 1
		reasons = appendUnique(reasons, reasonWeightedBelowPass)
	}

	if !isAutoFail {
		// Heuristic fallback risk model, also the blending component when
		// the external estimate is present.
		heuristic := util.Clamp(
			0.45*(1-weightedPercent/100)+
				0.20*(missingWeeksCount/float64(courseWeeks))+
				0.20*absencesRate+
				0.15*(1-maxAchievablePercent/100)+
				0.05*math.Max(0, -quizTrend),
			0, 1)

		if mlProbability != nil {
			ml := util.Clamp(*mlProbability, 0, 1)
			probabilityFail = util.Clamp(blendWeight*ml+(1-blendWeight)*heuristic, 0, 1)
		} else {
			probabilityFail = heuristic
		}
	}

	if weightedPercent < passThreshold {
		reasons = appendUnique(reasons, reasonCurrentlyBelowPass)
	}
	if examCompletedRatio < 1 {
		reasons = appendUnique(reasons, reasonExamsIncomplete)
	}
	if missingWeeksCount > 0 {
		reasons = appendUnique(reasons, reasonMissingWeeks)
	}
	if totalAbsences >= criticalAbsences {
		reasons = appendUnique(reasons, reasonAbsencesCritical)
	} else if totalAbsences >= warningAbsences {
		reasons = appendUnique(reasons, reasonAbsencesWarning)
	}
	if quizTrend < decliningTrendLimit {
		reasons = appendUnique(reasons, reasonQuizDeclining)
	}

	return model.RiskResult{
		ProbabilityFail: probabilityFail,
		Bucket:          model.BucketFor(probabilityFail),
		IsAutoFail:      isAutoFail,
		Reasons:         reasons,
		Features: model.RiskFeatures{
			WeightedPercent:      weightedPercent,
			RemainingWeight:      remainingWeight,
			MaxAchievablePercent: maxAchievablePercent,
			TotalAbsences:        float64(totalAbsences),
			AbsencesRate:         absencesRate,
			MissingWeeksCount:    missingWeeksCount,
			ExamCompletedRatio:   examCompletedRatio,
			QuizTrend:            quizTrend,
		},
	}
}

// quizTrend is a coarse two-bucket slope over the chronological quiz
// series: cheap and monotone-consistent, which is all the classifier
// needs. Fewer than two points means no trend.
func quizTrend(weekRecords []model.WeekRecord) float64 {
	type point struct {
		week  int
		score float64
	}
	var series []point
	for _, r := range weekRecords {
		if r.QuizScore != nil {
			series = append(series, point{week: r.WeekNumber, score: *r.QuizScore})
		}
	}
	if len(series) < 2 {
		return 0
	}
	sort.Slice(series, func(i, j int) bool { return series[i].week < series[j].week })

	midpoint := len(series) / 2
	firstHalf := make([]float64, 0, midpoint)
	secondHalf := make([]float64, 0, len(series)-midpoint)
	for i, p := range series {
		if i < midpoint {
			firstHalf = append(firstHalf, p.score)
		} else {
			secondHalf = append(secondHalf, p.score)
		}
	}
	return util.Clamp((meanOrZero(secondHalf)-meanOrZero(firstHalf))/100, -1, 1)
}

func meanOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return mean
}

func collectScores(records []model.WeekRecord, pick func(model.WeekRecord) *float64) []float64 {
	var scores []float64
	for _, r := range records {
		if v := pick(r); v != nil {
			scores = append(scores, *v)
		}
	}
	return scores
}

func examScore(records []model.ExamRecord, examType model.ExamType) float64 {
	for _, r := range records {
		if r.Type == examType {
			return r.Score
		}
	}
	return 0
}

func hasExam(records []model.ExamRecord, examType model.ExamType) bool {
	for _, r := range records {
		if r.Type == examType {
			return true
		}
	}
	return false
}

func overrideOr(override *float64, fallback float64) float64 {
	if override != nil {
		return *override
	}
	return fallback
}

// appendUnique keeps reasons insertion-ordered and de-duplicated so the
// list is deterministic and testable.
func appendUnique(reasons []string, reason string) []string {
	for _, existing := range reasons {
		if existing == reason {
			return reasons
		}
	}
	return append(reasons, reason)
}
