package service

import (
	"context"
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func mlServiceFor(t *testing.T, handler http.Handler) (*MLService, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc := NewMLService(&config.Config{
		ML: config.MLConfig{BaseURL: server.URL, TimeoutSeconds: 2},
	})
	return svc, server
}

func TestPredictCourseRisk(t *testing.T) {
	var received predictRequest
	svc, _ := mlServiceFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/predict-risk" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(predictResponse{ProbabilityFail: 0.42})
	}))

	features := model.RiskFeatures{WeightedPercent: 55, AbsencesRate: 0.2}
	got, err := svc.PredictCourseRisk(context.Background(), features)
	if err != nil {
		t.Fatalf("PredictCourseRisk: %v", err)
	}
	if got != 0.42 {
		t.Fatalf("probability = %v, want 0.42", got)
	}
	if received.Features.WeightedPercent != 55 {
		t.Fatalf("features not forwarded: %+v", received.Features)
	}
}

func TestPredictCourseRiskServerError(t *testing.T) {
	svc, _ := mlServiceFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	if _, err := svc.PredictCourseRisk(context.Background(), model.RiskFeatures{}); err == nil {
		t.Fatal("non-200 status must be an error")
	}
}

func TestHealthDownWhenUnreachable(t *testing.T) {
	svc := NewMLService(&config.Config{
		ML: config.MLConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1},
	})

	status := svc.Health(context.Background())
	if status["status"] != "down" {
		t.Fatalf("status = %v, want down", status["status"])
	}
}

func TestHealthUp(t *testing.T) {
	svc, _ := mlServiceFor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ok", "model_loaded": true})
	}))

	status := svc.Health(context.Background())
	if status["status"] != "ok" {
		t.Fatalf("status = %v, want ok", status["status"])
	}
}
