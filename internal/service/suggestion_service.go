package service

import (
	"context"
	"course_risk_backend/internal/model"
	"course_risk_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const suggestionCacheTTL = 6 * time.Hour

// SuggestionService builds remediation advice from a risk report. Items are
// generated from deterministic templates keyed off the report's reasons and
// cached per (course, student) pair.
type SuggestionService struct {
	Redis *redis.Client
}

func NewSuggestionService(redisClient *redis.Client) *SuggestionService {
	return &SuggestionService{Redis: redisClient}
}

// GetOrGenerate returns cached suggestions when fresh, otherwise generates
// and caches a new set. Cache failures fall through to generation.
func (s *SuggestionService) GetOrGenerate(ctx context.Context, courseID string, studentID uint, reasons []string, weightedPercent float64) []model.SuggestionItem {
	key := fmt.Sprintf("suggestions:%s:%d", courseID, studentID)

	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var items []model.SuggestionItem
			if err := json.Unmarshal([]byte(cached), &items); err == nil && len(items) > 0 {
				return items
			}
		}
	}

	items := s.Generate(reasons, weightedPercent)

	if s.Redis != nil {
		if payload, err := json.Marshal(items); err == nil {
			if err := s.Redis.Set(ctx, key, payload, suggestionCacheTTL).Err(); err != nil {
				logger.Log.Debug("suggestion cache write failed", zap.Error(err))
			}
		}
	}
	return items
}

// Invalidate drops the cached set, used after new submissions change the
// underlying risk picture.
func (s *SuggestionService) Invalidate(ctx context.Context, courseID string, studentID uint) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf("suggestions:%s:%d", courseID, studentID)
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		logger.Log.Debug("suggestion cache invalidation failed", zap.Error(err))
	}
}

// Generate maps risk reasons to advice items: between 3 and 6 items, always
// deterministic for the same inputs.
func (s *SuggestionService) Generate(reasons []string, weightedPercent float64) []model.SuggestionItem {
	var items []model.SuggestionItem
	reasonText := strings.ToLower(strings.Join(reasons, " "))

	if strings.Contains(reasonText, "midterm") || weightedPercent < 50 {
		items = append(items, model.SuggestionItem{
			Title: "Focus on exam-style practice",
			Why:   "Current exam performance is a major pass/fail driver.",
			Actions: []string{
				"Solve 15-20 timed exam problems each week",
				"Review errors and build a correction log",
				"Attend office hour for weak topics",
			},
			ExpectedImpact: "Can improve exam component confidence by 10-20 points.",
		})
	}

	if strings.Contains(reasonText, "quiz") || strings.Contains(reasonText, "trend") {
		items = append(items, model.SuggestionItem{
			Title: "Stabilize weekly quiz consistency",
			Why:   "Quiz trend indicates unstable weekly understanding.",
			Actions: []string{
				"Complete short practice sets 3 times per week",
				"Use a fixed weekly revision window",
				"Track quiz score trend week-by-week",
			},
			ExpectedImpact: "Improves continuous assessment trajectory and reduces volatility.",
		})
	}

	if strings.Contains(reasonText, "remaining weight") || strings.Contains(reasonText, "passing grade") {
		items = append(items, model.SuggestionItem{
			Title: "Maximize remaining high-weight assessments",
			Why:   "Recovery margin is narrow and depends on pending weighted components.",
			Actions: []string{
				"Prioritize highest-weight pending component first",
				"Create a 2-week intensive revision plan",
				"Set target score milestones before submission",
			},
			ExpectedImpact: "Improves probability of staying above the 50% threshold.",
		})
	}

	if strings.Contains(reasonText, "absence") {
		items = append(items, model.SuggestionItem{
			Title: "Adopt attendance recovery plan",
			Why:   "Absence count is a hard risk accelerator and can trigger auto-fail.",
			Actions: []string{
				"Block lecture times in calendar as non-negotiable",
				"Use accountability check-ins with advisor",
				"Document missed material within 24 hours",
			},
			ExpectedImpact: "Reduces hard-rule failure risk from attendance breaches.",
		})
	}

	if len(items) < 3 {
		items = append(items, model.SuggestionItem{
			Title: "Structured weekly study cadence",
			Why:   "Consistent cadence reduces missing weeks and improves weighted outcomes.",
			Actions: []string{
				"Plan weekly goals every Monday",
				"Reserve fixed deep-work sessions",
				"Submit at least one graded activity per week",
			},
			ExpectedImpact: "Improves completion ratio and risk stability.",
		})
	}

	if len(items) > 6 {
		items = items[:6]
	}
	return items
}
