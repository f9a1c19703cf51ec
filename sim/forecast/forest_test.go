package forecast

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hourRows returns n rows [hour, 1] labeled 1 before noon and 2 after.
func hourRows(n int) ([][]float64, []int) {
	X := make([][]float64, n)
	y := make([]int, n)
	for i := range X {
		h := i % 24
		X[i] = []float64{float64(h), 1}
		y[i] = 1
		if h >= 12 {
			y[i] = 2
		}
	}
	return X, y
}

func smallForest() ForestConfig {
	cfg := DefaultForestConfig()
	cfg.Trees = 10
	cfg.MaxDepth = 6
	cfg.FeatureFraction = 1
	return cfg
}

func TestForest_LearnsSeparableLabels(t *testing.T) {
	// GIVEN labels determined by whether the hour is before noon
	X, y := hourRows(240)

	// WHEN a forest is fit
	f, err := ForestTrainer{Config: smallForest()}.FitForest(X, y)
	require.NoError(t, err)

	// THEN hours far from the boundary are classified correctly
	pred, err := f.Predict([][]float64{{0, 1}, {5, 1}, {18, 1}, {23, 1}})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 1, 2, 2}, pred)
	assert.Len(t, f.Trees, 10)
	assert.Equal(t, 2, f.NumFeatures)
}

func TestForest_DeterministicForSeed(t *testing.T) {
	X, y := hourRows(120)
	a, err := ForestTrainer{Config: smallForest()}.FitForest(X, y)
	require.NoError(t, err)
	b, err := ForestTrainer{Config: smallForest()}.FitForest(X, y)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestForest_SatisfiesTrainer(t *testing.T) {
	var tr Trainer = ForestTrainer{Config: smallForest()}
	X, y := hourRows(48)
	m, err := tr.Fit(X, y)
	require.NoError(t, err)
	pred, err := m.Predict(X)
	require.NoError(t, err)
	assert.Len(t, pred, len(X))
}

func TestForest_SingleClass(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	f, err := ForestTrainer{Config: smallForest()}.FitForest(X, []int{7, 7, 7})
	require.NoError(t, err)
	pred, err := f.Predict([][]float64{{100}})
	require.NoError(t, err)
	assert.Equal(t, []int{7}, pred)
}

func TestForest_PredictRejectsBadRows(t *testing.T) {
	X, y := hourRows(48)
	f, err := ForestTrainer{Config: smallForest()}.FitForest(X, y)
	require.NoError(t, err)

	_, err = f.Predict([][]float64{{1}})
	assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)

	_, err = f.Predict([][]float64{{math.NaN(), 1}})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestForestTrainer_RejectsBadInput(t *testing.T) {
	tr := ForestTrainer{Config: smallForest()}
	tests := []struct {
		name string
		X    [][]float64
		y    []int
	}{
		{"empty", nil, nil},
		{"label count", [][]float64{{1}, {2}}, []int{1}},
		{"ragged", [][]float64{{1, 2}, {3}}, []int{1, 2}},
		{"no features", [][]float64{{}}, []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.FitForest(tt.X, tt.y)
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}

func TestForestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ForestConfig)
	}{
		{"no trees", func(c *ForestConfig) { c.Trees = 0 }},
		{"negative depth", func(c *ForestConfig) { c.MaxDepth = -1 }},
		{"min split", func(c *ForestConfig) { c.MinSplit = 1 }},
		{"zero fraction", func(c *ForestConfig) { c.FeatureFraction = 0 }},
		{"fraction above one", func(c *ForestConfig) { c.FeatureFraction = 1.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultForestConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, DefaultForestConfig().Validate())
}

func TestPlurality_TieGoesToSmallestLabel(t *testing.T) {
	assert.Equal(t, 1, plurality(map[int]int{3: 2, 1: 2, 5: 1}))
	assert.Equal(t, 5, plurality(map[int]int{3: 2, 1: 2, 5: 3}))
}

func TestCandidateThresholds_Distinct(t *testing.T) {
	assert.Equal(t, []float64{4}, candidateThresholds([]float64{4, 4, 4, 4}))
	got := candidateThresholds([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Len(t, got, 9)
	for i := 1; i < len(got); i++ {
		assert.Less(t, got[i-1], got[i])
	}
}
