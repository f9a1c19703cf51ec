package forecast

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	s, err := NewService(DefaultMessages())
	require.NoError(t, err)
	return s
}

// fixedModel returns the same predictions for any input.
type fixedModel []int

func (m fixedModel) Predict([][]float64) ([]int, error) {
	return append([]int(nil), m...), nil
}

func peakAt(hour int) fixedModel {
	out := make([]int, 24)
	for h := range out {
		out[h] = 2
	}
	out[hour] = 10
	out[4] = 1
	return fixedModel(out)
}

func TestService_NotReadyBeforeInstall(t *testing.T) {
	s := newTestService(t)

	_, err := s.Forecast("2026-10-19")
	assert.True(t, errors.Is(err, ErrModelNotReady), "got %v", err)
	assert.True(t, errors.Is(s.Status(), ErrModelNotReady))
}

func TestService_NotReadyIsCheckedBeforeInput(t *testing.T) {
	// GIVEN no model, a malformed date still reports not-ready
	_, err := newTestService(t).Forecast("garbage")
	assert.True(t, errors.Is(err, ErrModelNotReady))
}

func TestService_FailedLoadStaysUnavailable(t *testing.T) {
	s := newTestService(t)
	s.Fail(errors.New("artifact missing"))

	_, err := s.Forecast("2026-10-19")
	assert.True(t, errors.Is(err, ErrModelNotReady))
	assert.ErrorContains(t, s.Status(), "artifact missing")
}

func TestService_ForecastAfterInstall(t *testing.T) {
	s := newTestService(t)
	p, err := NewPredictor(peakAt(21), DefaultFeatures, ServingConfig{})
	require.NoError(t, err)
	s.Install(p)

	require.NoError(t, s.Status())
	resp, err := s.Forecast("2026-10-19")
	require.NoError(t, err)

	assert.Equal(t, "2026-10-19", resp.Date)
	assert.Equal(t, "21:00 is expected to be very crowded", resp.PeakMessage)
	assert.Equal(t, "Laundry is recommended from 4:00", resp.RecommendMessage)
	require.Len(t, resp.Timeline, 24)
	assert.Equal(t, HourForecast{Hour: 21, PredictedCongestion: 10}, resp.Timeline[21])

	_, err = s.Forecast("2026-19-10")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestService_ConcurrentForecasts(t *testing.T) {
	s := newTestService(t)
	p, err := NewPredictor(peakAt(8), DefaultFeatures, ServingConfig{})
	require.NoError(t, err)
	s.Install(p)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Forecast("2026-10-24")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}

func TestNewService_BadTemplate(t *testing.T) {
	_, err := NewService(Messages{Peak: "{{.Hour", Recommend: "ok"})
	assert.Error(t, err)
}

func TestService_FailWithNilErrorIsNotReady(t *testing.T) {
	s := newTestService(t)
	s.Fail(nil)

	_, err := s.Forecast("2026-10-19")
	assert.True(t, errors.Is(err, ErrModelNotReady), "got %v", err)
}

func TestService_ForecastRacingWithFail(t *testing.T) {
	// GIVEN a ready service that is concurrently marked failed
	s := newTestService(t)
	p, err := NewPredictor(peakAt(12), DefaultFeatures, ServingConfig{})
	require.NoError(t, err)
	s.Install(p)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 200 {
			s.Fail(errors.New("reload failed"))
			s.Install(p)
		}
	}()

	// THEN every forecast either succeeds or reports not-ready, never panics
	for range 200 {
		resp, err := s.Forecast("2026-10-20")
		if err != nil {
			require.True(t, errors.Is(err, ErrModelNotReady), "got %v", err)
			continue
		}
		require.Len(t, resp.Timeline, 24)
	}
	wg.Wait()
}
