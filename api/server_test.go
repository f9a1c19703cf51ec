package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/laundry-sim/laundry-sim/sim/forecast"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// eveningModel predicts 8 at 21:00, 1 at 04:00 and 3 otherwise.
type eveningModel struct{}

func (eveningModel) Predict(X [][]float64) ([]int, error) {
	out := make([]int, len(X))
	for i, x := range X {
		switch int(x[0]) {
		case 21:
			out[i] = 8
		case 4:
			out[i] = 1
		default:
			out[i] = 3
		}
	}
	return out, nil
}

func newService(t *testing.T, ready bool) *forecast.Service {
	t.Helper()
	svc, err := forecast.NewService(forecast.DefaultMessages())
	require.NoError(t, err)
	if ready {
		p, err := forecast.NewPredictor(eveningModel{}, forecast.DefaultFeatures, forecast.ServingConfig{})
		require.NoError(t, err)
		svc.Install(p)
	}
	return svc
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPredict_OK(t *testing.T) {
	s := NewServer(newService(t, true))

	rec := get(t, s, "/predict?date=2026-10-19")

	require.Equal(t, http.StatusOK, rec.Code)
	var body forecast.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2026-10-19", body.Date)
	assert.Equal(t, "21:00 is expected to be very crowded", body.PeakMessage)
	assert.Equal(t, "Laundry is recommended from 4:00", body.RecommendMessage)
	require.Len(t, body.Timeline, 24)
	assert.Equal(t, 8, body.Timeline[21].PredictedCongestion)
	assert.Contains(t, rec.Body.String(), `"predicted_congestion"`)
}

func TestPredict_NotReady(t *testing.T) {
	// GIVEN the model is still loading
	s := NewServer(newService(t, false))

	// WHEN a forecast is requested
	rec := get(t, s, "/predict?date=2026-10-19")

	// THEN it is rejected immediately with a retry hint
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Retry-After"))
	assert.Contains(t, get(t, s, "/metrics").Body.String(), `laundry_forecast_rejected_total{reason="not_ready"} 1`)
}

func TestPredict_LoadFailureKeepsOtherRoutes(t *testing.T) {
	svc := newService(t, false)
	svc.Fail(errors.New("no such file"))
	s := NewServer(svc)

	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/predict?date=2026-10-19").Code)
	ready := get(t, s, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
	assert.Contains(t, ready.Body.String(), "no such file")
	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/metrics").Code)
}

func TestPredict_BadDate(t *testing.T) {
	s := NewServer(newService(t, true))
	for _, path := range []string{"/predict", "/predict?date=2026-02-30", "/predict?date=today"} {
		rec := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
	assert.Contains(t, get(t, s, "/metrics").Body.String(), `laundry_forecast_rejected_total{reason="invalid_input"} 3`)
}

func TestReadyz_Ready(t *testing.T) {
	rec := get(t, NewServer(newService(t, true)), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestMetrics_Exposition(t *testing.T) {
	s := NewServer(newService(t, true))
	get(t, s, "/predict?date=2026-10-24")
	get(t, s, "/healthz")

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `laundry_http_requests_total{code="200",route="/predict"} 1`)
	assert.Contains(t, text, "laundry_forecast_ready 1")
	assert.True(t, strings.Contains(text, "laundry_http_request_duration_seconds_bucket"))
}
