package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/laundry-sim/laundry-sim/sim"
)

// Trainer fits a classifier. Labels are ordinal congestion levels.
type Trainer interface {
	Fit(features [][]float64, labels []int) (Model, error)
}

// Model predicts one label per feature row, in input order.
// A trained Model is read-only and safe for concurrent use.
type Model interface {
	Predict(features [][]float64) ([]int, error)
}

// ForestConfig holds random-forest hyperparameters.
type ForestConfig struct {
	Trees           int     `yaml:"trees"`
	MaxDepth        int     `yaml:"max_depth"`
	MinSplit        int     `yaml:"min_split"`        // smallest node that may be split
	FeatureFraction float64 `yaml:"feature_fraction"` // share of features tried per split
	Seed            int64   `yaml:"seed"`
}

// DefaultForestConfig returns 100 trees of depth at most 10.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MaxDepth: 10, MinSplit: 2, FeatureFraction: 0.7, Seed: 42}
}

// Validate checks hyperparameter ranges.
func (c ForestConfig) Validate() error {
	if c.Trees <= 0 {
		return fmt.Errorf("trees must be positive, got %d", c.Trees)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be non-negative, got %d", c.MaxDepth)
	}
	if c.MinSplit < 2 {
		return fmt.Errorf("min_split must be at least 2, got %d", c.MinSplit)
	}
	if c.FeatureFraction <= 0 || c.FeatureFraction > 1 || math.IsNaN(c.FeatureFraction) {
		return fmt.Errorf("feature_fraction must be in (0, 1], got %v", c.FeatureFraction)
	}
	return nil
}

// splitQuantiles are the candidate thresholds tried per feature.
var splitQuantiles = []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}

// Node is one node of a classification tree. Leaves carry Label.
type Node struct {
	Leaf      bool    `json:"leaf,omitempty"`
	Label     int     `json:"label"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
	Left      *Node   `json:"left,omitempty"`  // Feature <= Threshold
	Right     *Node   `json:"right,omitempty"` // Feature > Threshold
}

func (n *Node) predict(x []float64) int {
	for !n.Leaf {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Label
}

// validate checks the subtree's structure against the feature width.
func (n *Node) validate(numFeatures int) error {
	if n == nil {
		return fmt.Errorf("missing tree node")
	}
	if n.Leaf {
		return nil
	}
	if n.Feature < 0 || n.Feature >= numFeatures {
		return fmt.Errorf("split feature %d out of range [0, %d)", n.Feature, numFeatures)
	}
	if err := n.Left.validate(numFeatures); err != nil {
		return err
	}
	return n.Right.validate(numFeatures)
}

// labels appends every leaf label of the subtree.
func (n *Node) labels(out []int) []int {
	if n.Leaf {
		return append(out, n.Label)
	}
	return n.Right.labels(n.Left.labels(out))
}

// Forest is a bagged ensemble of gini classification trees.
type Forest struct {
	NumFeatures int     `json:"num_features"`
	Trees       []*Node `json:"trees"`
}

// Predict returns the majority vote of all trees per row; ties go to the
// smallest label.
func (f *Forest) Predict(features [][]float64) ([]int, error) {
	out := make([]int, len(features))
	votes := make(map[int]int)
	for i, x := range features {
		if len(x) != f.NumFeatures {
			return nil, fmt.Errorf("%w: row %d has %d features, model expects %d",
				ErrInvalidInput, i, len(x), f.NumFeatures)
		}
		for j, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: row %d feature %d is not finite", ErrInvalidInput, i, j)
			}
		}
		clear(votes)
		for _, t := range f.Trees {
			votes[t.predict(x)]++
		}
		out[i] = plurality(votes)
	}
	return out, nil
}

// ForestTrainer fits a Forest.
type ForestTrainer struct {
	Config ForestConfig
}

// Fit implements Trainer.
func (t ForestTrainer) Fit(features [][]float64, labels []int) (Model, error) {
	return t.FitForest(features, labels)
}

// FitForest trains a forest on bootstrap samples of the rows.
// Training is deterministic for a fixed Config.Seed.
func (t ForestTrainer) FitForest(features [][]float64, labels []int) (*Forest, error) {
	if err := t.Config.Validate(); err != nil {
		return nil, fmt.Errorf("forest config: %w", err)
	}
	n := len(features)
	if n == 0 {
		return nil, fmt.Errorf("%w: no training rows", ErrInvalidInput)
	}
	if len(labels) != n {
		return nil, fmt.Errorf("%w: %d rows but %d labels", ErrInvalidInput, n, len(labels))
	}
	width := len(features[0])
	if width == 0 {
		return nil, fmt.Errorf("%w: rows have no features", ErrInvalidInput)
	}
	for i, x := range features {
		if len(x) != width {
			return nil, fmt.Errorf("%w: row %d has %d features, expected %d", ErrInvalidInput, i, len(x), width)
		}
	}

	b := &treeBuilder{
		X:        features,
		y:        labels,
		maxDepth: t.Config.MaxDepth,
		minSplit: t.Config.MinSplit,
		mtry:     max(1, min(width, int(math.Round(float64(width)*t.Config.FeatureFraction)))),
		rng:      sim.NewPartitionedRNG(sim.NewSimulationKey(t.Config.Seed)).ForSubsystem(sim.SubsystemTraining),
	}
	forest := &Forest{NumFeatures: width, Trees: make([]*Node, 0, t.Config.Trees)}
	for range t.Config.Trees {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = b.rng.Intn(n)
		}
		forest.Trees = append(forest.Trees, b.build(sample, 0))
	}
	return forest, nil
}

type treeBuilder struct {
	X        [][]float64
	y        []int
	maxDepth int
	minSplit int
	mtry     int
	rng      *rand.Rand
}

func (b *treeBuilder) build(idx []int, depth int) *Node {
	counts := b.count(idx)
	leaf := &Node{Leaf: true, Label: plurality(counts)}
	if len(counts) == 1 || depth >= b.maxDepth || len(idx) < b.minSplit {
		return leaf
	}

	bestFeature, bestThreshold := -1, 0.0
	bestScore := math.Inf(1)
	vals := make([]float64, len(idx))
	for _, f := range b.rng.Perm(len(b.X[0]))[:b.mtry] {
		for i, r := range idx {
			vals[i] = b.X[r][f]
		}
		sort.Float64s(vals)
		for _, th := range candidateThresholds(vals) {
			score, ok := b.splitScore(idx, f, th)
			if ok && score < bestScore {
				bestFeature, bestThreshold, bestScore = f, th, score
			}
		}
	}
	if bestFeature < 0 {
		return leaf
	}

	var left, right []int
	for _, r := range idx {
		if b.X[r][bestFeature] <= bestThreshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return &Node{
		Label:     leaf.Label,
		Feature:   bestFeature,
		Threshold: bestThreshold,
		Left:      b.build(left, depth+1),
		Right:     b.build(right, depth+1),
	}
}

// splitScore is the size-weighted gini impurity of a split; ok is false
// when one side would be empty.
func (b *treeBuilder) splitScore(idx []int, f int, th float64) (float64, bool) {
	left, right := make(map[int]int), make(map[int]int)
	nl, nr := 0, 0
	for _, r := range idx {
		if b.X[r][f] <= th {
			left[b.y[r]]++
			nl++
		} else {
			right[b.y[r]]++
			nr++
		}
	}
	if nl == 0 || nr == 0 {
		return 0, false
	}
	return float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr), true
}

func (b *treeBuilder) count(idx []int) map[int]int {
	counts := make(map[int]int)
	for _, r := range idx {
		counts[b.y[r]]++
	}
	return counts
}

// candidateThresholds returns the distinct empirical deciles of sorted vals.
func candidateThresholds(sorted []float64) []float64 {
	out := make([]float64, 0, len(splitQuantiles))
	for _, p := range splitQuantiles {
		q := stat.Quantile(p, stat.Empirical, sorted, nil)
		if len(out) == 0 || q != out[len(out)-1] {
			out = append(out, q)
		}
	}
	return out
}

func gini(counts map[int]int, n int) float64 {
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		g -= p * p
	}
	return g
}

// plurality returns the most frequent label, the smallest one on ties.
func plurality(counts map[int]int) int {
	best, bestCount := 0, -1
	for l, c := range counts {
		if c > bestCount || (c == bestCount && l < best) {
			best, bestCount = l, c
		}
	}
	return best
}
