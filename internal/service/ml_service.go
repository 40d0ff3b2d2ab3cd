package service

import (
	"bytes"
	"context"
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"course_risk_backend/pkg/logger"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MLService is the HTTP client for the external failure-probability
// estimator. Every method degrades gracefully: the caller decides what to
// do without an estimate, the client never takes the request down.
type MLService struct {
	baseURL string
	client  *http.Client
}

func NewMLService(cfg *config.Config) *MLService {
	timeout := time.Duration(cfg.ML.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MLService{
		baseURL: cfg.ML.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	Features model.RiskFeatures `json:"features"`
}

type predictResponse struct {
	ProbabilityFail float64 `json:"probabilityFail"`
}

// PredictCourseRisk asks the estimator for a failure probability over the
// normalized feature vector.
func (s *MLService) PredictCourseRisk(ctx context.Context, features model.RiskFeatures) (float64, error) {
	body, err := json.Marshal(predictRequest{Features: features})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/predict-risk", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("ml service returned status %d", resp.StatusCode)
	}

	var parsed predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, err
	}
	return parsed.ProbabilityFail, nil
}

// Health reports the estimator status; an unreachable service is reported
// as down, not as an error.
func (s *MLService) Health(ctx context.Context) map[string]interface{} {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return map[string]interface{}{"status": "down"}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		logger.Log.Debug("ml health check failed", zap.Error(err))
		return map[string]interface{}{"status": "down"}
	}
	defer resp.Body.Close()

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || resp.StatusCode != http.StatusOK {
		return map[string]interface{}{"status": "down"}
	}
	return payload
}

// FeatureImportance proxies the estimator's model introspection endpoint.
func (s *MLService) FeatureImportance(ctx context.Context) (map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/feature-importance", nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ml service returned status %d", resp.StatusCode)
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}
	return payload, nil
}
