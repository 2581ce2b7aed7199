package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"crimerisk/internal/artifact"
	apierrors "crimerisk/internal/errors"
	"crimerisk/internal/services"
	"crimerisk/pkg/contracts/domain"
)

// MockPredictionService is a mock implementation of PredictionServiceInterface
type MockPredictionService struct {
	mock.Mock
}

func (m *MockPredictionService) Predict(ctx context.Context, area string, year int) (domain.Prediction, error) {
	args := m.Called(area, year)
	return args.Get(0).(domain.Prediction), args.Error(1)
}

func (m *MockPredictionService) Options() domain.SelectorOptions {
	args := m.Called()
	return args.Get(0).(domain.SelectorOptions)
}

func (m *MockPredictionService) Reload(ctx context.Context) (*artifact.Bundle, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*artifact.Bundle), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPredictionHandler(svc *MockPredictionService) *PredictionHandler {
	return NewPredictionHandler(svc, testLogger(), apierrors.NewErrorHandler(testLogger(), false))
}

func okPrediction(area string, year int, v float64) domain.Prediction {
	return domain.Prediction{Area: area, Year: year, Status: domain.PredictionOK, Value: &v, ArtifactID: "abc"}
}

func TestPredictionHandler_GetPrediction(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockPredictionService)
		expectedStatus int
		check          func(t *testing.T, body map[string]interface{})
	}{
		{
			name:  "known key returns value",
			query: "?area=Alpha&year=2005",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Alpha", 2005).Return(okPrediction("Alpha", 2005, 12.5), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "ok", body["status"])
				assert.Equal(t, 12.5, body["value"])
				assert.Equal(t, "Alpha", body["area"])
			},
		},
		{
			name:  "unknown key returns no-data with 200",
			query: "?area=Nowhere&year=2005",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Nowhere", 2005).Return(domain.NoData("Nowhere", 2005), nil)
			},
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "no-data", body["status"])
				_, hasValue := body["value"]
				assert.False(t, hasValue)
			},
		},
		{
			name:           "non integer year is rejected",
			query:          "?area=Alpha&year=abc",
			setupMock:      func(m *MockPredictionService) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeValidation, body["type"])
				assert.Equal(t, "VALIDATION_FAILED", body["error_code"])
			},
		},
		{
			name:           "year out of range is rejected",
			query:          "?area=Alpha&year=1700",
			setupMock:      func(m *MockPredictionService) {},
			expectedStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeValidation, body["type"])
			},
		},
		{
			name:           "missing area is rejected",
			query:          "?year=2005",
			setupMock:      func(m *MockPredictionService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "missing artifact maps to 503",
			query: "?area=Alpha&year=2005",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Alpha", 2005).Return(domain.Prediction{}, apierrors.NewArtifactNotFoundError("model.bin"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, apierrors.TypeModelMissing, body["type"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPredictionService)
			tt.setupMock(svc)
			h := newTestPredictionHandler(svc)

			req := httptest.NewRequest(http.MethodGet, "/predict"+tt.query, nil)
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.check != nil {
				var body map[string]interface{}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				tt.check(t, body)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestPredictionHandler_GetOptions(t *testing.T) {
	svc := new(MockPredictionService)
	svc.On("Options").Return(domain.SelectorOptions{Areas: []string{"Alpha", "Beta"}, Years: []int{2001, 2002}})
	h := newTestPredictionHandler(svc)

	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/options", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var opts domain.SelectorOptions
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &opts))
	assert.Equal(t, []string{"Alpha", "Beta"}, opts.Areas)
	assert.Equal(t, []int{2001, 2002}, opts.Years)
}

func TestPredictionHandler_ReloadModel(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(MockPredictionService)
		svc.On("Reload").Return(&artifact.Bundle{
			Features: []string{"a", "b"},
			Metadata: artifact.Metadata{ID: "abc", Target: "T", MAE: 1.5},
		}, nil)
		h := newTestPredictionHandler(svc)

		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model/reload", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var info ModelInfo
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
		assert.Equal(t, "abc", info.ArtifactID)
		assert.Equal(t, 2, info.Features)
		assert.Equal(t, 1.5, info.MAE)
	})

	t.Run("missing artifact", func(t *testing.T) {
		svc := new(MockPredictionService)
		svc.On("Reload").Return(nil, apierrors.NewArtifactNotFoundError("model.bin"))
		h := newTestPredictionHandler(svc)

		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model/reload", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("corrupt artifact", func(t *testing.T) {
		svc := new(MockPredictionService)
		svc.On("Reload").Return(nil, apierrors.NewArtifactError("bad checksum", nil))
		h := newTestPredictionHandler(svc)

		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/model/reload", nil))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), apierrors.TypeArtifact)
	})
}

func TestHTMLHandler_ServeIndex(t *testing.T) {
	opts := domain.SelectorOptions{Areas: []string{"Alpha", "Beta"}, Years: []int{2001, 2002}}

	tests := []struct {
		name      string
		query     string
		setupMock func(*MockPredictionService)
		contains  []string
		excludes  []string
	}{
		{
			name:      "form without selection",
			query:     "",
			setupMock: func(m *MockPredictionService) {},
			contains:  []string{`<option value="Alpha">Alpha</option>`, `<option value="2002">2002</option>`},
			excludes:  []string{`class="result`},
		},
		{
			name:  "prediction rendered inline",
			query: "?area=Beta&year=2002",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Beta", 2002).Return(okPrediction("Beta", 2002, 12.5), nil)
			},
			contains: []string{"12.50", `<option value="Beta" selected>Beta</option>`},
		},
		{
			name:  "no data sentinel",
			query: "?area=Beta&year=2001",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Beta", 2001).Return(domain.NoData("Beta", 2001), nil)
			},
			contains: []string{NoDataMessage},
		},
		{
			name:  "model not loaded",
			query: "?area=Beta&year=2001",
			setupMock: func(m *MockPredictionService) {
				m.On("Predict", "Beta", 2001).Return(domain.Prediction{}, apierrors.NewArtifactNotFoundError("model.bin"))
			},
			contains: []string{"No trained model is loaded"},
			excludes: []string{NoDataMessage},
		},
		{
			name:      "invalid year",
			query:     "?area=Beta&year=soon",
			setupMock: func(m *MockPredictionService) {},
			contains:  []string{"Select an area and a valid year"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockPredictionService)
			svc.On("Options").Return(opts)
			tt.setupMock(svc)
			h := NewHTMLHandler(svc, testLogger())

			rec := httptest.NewRecorder()
			h.ServeIndex(rec, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			body := rec.Body.String()
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler(t *testing.T) {
	h := NewHealthHandler(services.NewHealthService("test", services.NewPipelineContext()))

	tests := []struct {
		path           string
		expectedStatus int
		expectedState  string
	}{
		{"/", http.StatusOK, "degraded"},
		{"/ready", http.StatusServiceUnavailable, "not_ready"},
		{"/live", http.StatusOK, "alive"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedState, status.Status)
		})
	}
}

func TestMetricsHandler(t *testing.T) {
	custom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	MetricsHandler(custom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	MetricsHandler(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
