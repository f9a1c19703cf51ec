package forecast

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/laundry-sim/laundry-sim/sim"
	"github.com/laundry-sim/laundry-sim/sim/label"
	"github.com/laundry-sim/laundry-sim/sim/slots"
)

// TrainConfig controls Train.
type TrainConfig struct {
	Policy       label.Policy `yaml:"policy"`
	Features     []string     `yaml:"features"`
	TestFraction float64      `yaml:"test_fraction"` // held out per class; 0 evaluates on training rows
	Seed         int64        `yaml:"seed"`          // split seed
	Forest       ForestConfig `yaml:"forest"`
}

// DefaultTrainConfig holds out 20% of each class and trains on the
// default feature schema with historical labels.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Policy:       label.PolicyHistorical,
		Features:     append([]string(nil), DefaultFeatures...),
		TestFraction: 0.2,
		Seed:         42,
		Forest:       DefaultForestConfig(),
	}
}

// Train fits a forest on a labeled slot table and evaluates it on a
// stratified held-out split.
func Train(table []slots.Slot, cfg TrainConfig) (*Artifact, *Evaluation, error) {
	X, y, err := Dataset(table, cfg.Features)
	if err != nil {
		return nil, nil, err
	}
	return fit(X, y, cfg)
}

// TrainRecords fits a live-policy forest on tick-level usage records,
// one row per simulated minute.
func TrainRecords(records []sim.UsageRecord, cfg TrainConfig) (*Artifact, *Evaluation, error) {
	if cfg.Policy != label.PolicyLive {
		return nil, nil, fmt.Errorf("%w: usage records are labeled with the %s policy, got %q",
			sim.ErrInvalidConfig, label.PolicyLive, cfg.Policy)
	}
	X, y, err := RecordDataset(records, cfg.Features)
	if err != nil {
		return nil, nil, err
	}
	return fit(X, y, cfg)
}

func fit(X [][]float64, y []int, cfg TrainConfig) (*Artifact, *Evaluation, error) {
	lo, hi, err := label.ClassRange(cfg.Policy)
	if err != nil {
		return nil, nil, err
	}
	if cfg.TestFraction < 0 || cfg.TestFraction >= 1 {
		return nil, nil, fmt.Errorf("%w: test_fraction must be in [0, 1), got %v", sim.ErrInvalidConfig, cfg.TestFraction)
	}
	for i, l := range y {
		if l < lo || l > hi {
			return nil, nil, fmt.Errorf("%w: row %d congestion %d outside %s range [%d, %d]",
				sim.ErrInvalidConfig, i, l, cfg.Policy, lo, hi)
		}
	}

	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	trainIdx, testIdx := StratifiedSplit(y, cfg.TestFraction, rng.ForSubsystem(sim.SubsystemSplit))
	forest, err := ForestTrainer{Config: cfg.Forest}.FitForest(pick(X, trainIdx), pick(y, trainIdx))
	if err != nil {
		return nil, nil, err
	}

	evalX, evalY := pick(X, testIdx), pick(y, testIdx)
	onTraining := len(testIdx) == 0
	if onTraining {
		evalX, evalY = pick(X, trainIdx), pick(y, trainIdx)
	}
	eval, err := Evaluate(forest, evalX, evalY, lo, hi)
	if err != nil {
		return nil, nil, err
	}
	eval.OnTrainingSet = onTraining

	logrus.Infof("Trained %d trees on %d rows (%d held out), accuracy %.3f",
		len(forest.Trees), len(trainIdx), len(testIdx), eval.Accuracy)

	art := &Artifact{
		Version:    ArtifactVersion,
		Policy:     cfg.Policy,
		NumClasses: hi - lo + 1,
		Features:   append([]string(nil), cfg.Features...),
		Forest:     forest,
	}
	return art, eval, nil
}

// StratifiedSplit shuffles each label's row indices and holds out
// floor(fraction*count) of them. Both index lists are returned ascending.
func StratifiedSplit(labels []int, fraction float64, rng *rand.Rand) (train, test []int) {
	byLabel := make(map[int][]int)
	for i, l := range labels {
		byLabel[l] = append(byLabel[l], i)
	}
	keys := make([]int, 0, len(byLabel))
	for l := range byLabel {
		keys = append(keys, l)
	}
	sort.Ints(keys)
	for _, l := range keys {
		idx := byLabel[l]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(fraction * float64(len(idx)))
		test = append(test, idx[:nTest]...)
		train = append(train, idx[nTest:]...)
	}
	sort.Ints(train)
	sort.Ints(test)
	return train, test
}

func pick[T any](rows []T, idx []int) []T {
	out := make([]T, len(idx))
	for i, r := range idx {
		out[i] = rows[r]
	}
	return out
}

// ClassReport is the per-label breakdown of an Evaluation.
type ClassReport struct {
	Label     int
	Precision float64
	Recall    float64
	Support   int
}

// Evaluation summarizes predictions against known labels.
type Evaluation struct {
	Rows          int
	Accuracy      float64
	Classes       []ClassReport
	OnTrainingSet bool
}

// Evaluate predicts X with m and scores it against y for labels lo..hi.
func Evaluate(m Model, X [][]float64, y []int, lo, hi int) (*Evaluation, error) {
	if len(X) == 0 {
		return nil, fmt.Errorf("%w: nothing to evaluate", sim.ErrInsufficientData)
	}
	pred, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	correct := make([]float64, len(y))
	tp := make(map[int]int)
	predicted := make(map[int]int)
	support := make(map[int]int)
	for i := range y {
		support[y[i]]++
		predicted[pred[i]]++
		if pred[i] == y[i] {
			correct[i] = 1
			tp[y[i]]++
		}
	}
	ev := &Evaluation{Rows: len(y), Accuracy: stat.Mean(correct, nil)}
	for l := lo; l <= hi; l++ {
		cr := ClassReport{Label: l, Support: support[l]}
		if predicted[l] > 0 {
			cr.Precision = float64(tp[l]) / float64(predicted[l])
		}
		if support[l] > 0 {
			cr.Recall = float64(tp[l]) / float64(support[l])
		}
		ev.Classes = append(ev.Classes, cr)
	}
	return ev, nil
}

// Print writes a classification report.
func (e *Evaluation) Print(w io.Writer) {
	set := "held-out"
	if e.OnTrainingSet {
		set = "training"
	}
	fmt.Fprintf(w, "=== Classification Report (%s, %d rows) ===\n", set, e.Rows)
	fmt.Fprintf(w, "Accuracy : %.4f\n", e.Accuracy)
	fmt.Fprintf(w, "%5s  %9s  %6s  %7s\n", "label", "precision", "recall", "support")
	for _, c := range e.Classes {
		fmt.Fprintf(w, "%5d  %9.3f  %6.3f  %7d\n", c.Label, c.Precision, c.Recall, c.Support)
	}
}
