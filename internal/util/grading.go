package util

import (
	"course_risk_backend/internal/model"
)

// Clamp bounds v to [min, max].
func Clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// WeightedPercent computes the current grade given completed components
// only: each score contributes score*weight/100. Callers clamp individual
// scores to [0,100] beforehand; the result is clamped to [0,100].
func WeightedPercent(weights model.ComponentWeights, midtermScore, finalScore, quizzesAverage, assignmentsAverage, projectsScore float64) float64 {
	total := midtermScore*weights[model.ComponentMidterm]/100 +
		finalScore*weights[model.ComponentFinal]/100 +
		quizzesAverage*weights[model.ComponentQuizzes]/100 +
		assignmentsAverage*weights[model.ComponentAssignments]/100 +
		projectsScore*weights[model.ComponentProjects]/100
	return Clamp(total, 0, 100)
}

// MaxAchievablePercent is the optimistic ceiling: the grade reached if the
// student earns 100% of every remaining component.
func MaxAchievablePercent(weightedPercent, remainingWeight float64) float64 {
	return Clamp(weightedPercent+remainingWeight, 0, 100)
}
