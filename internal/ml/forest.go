package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ForestConfig controls random forest training.
type ForestConfig struct {
	NumTrees        int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 = sqrt(number of features)
	Bootstrap       bool
	Seed            int64
	Workers         int // 0 = GOMAXPROCS
}

// DefaultForestConfig mirrors the symptom model settings.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NumTrees:        100,
		MaxDepth:        30,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            42,
	}
}

// RandomForest is an ensemble of CART trees. It is safe for concurrent prediction.
type RandomForest struct {
	Trees       []DecisionTree
	NumClasses  int
	NumFeatures int
}

var (
	ErrNoSamples      = errors.New("no training samples")
	ErrLengthMismatch = errors.New("feature and label counts differ")
)

// TrainForest fits a forest on x and class labels y in [0, numClasses).
// Trees are grown concurrently; the result depends only on cfg.Seed.
func TrainForest(ctx context.Context, x []Vector, y []int, numClasses int, cfg ForestConfig) (*RandomForest, error) {
	if len(x) == 0 {
		return nil, ErrNoSamples
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vectors, %d labels", ErrLengthMismatch, len(x), len(y))
	}
	for i, c := range y {
		if c < 0 || c >= numClasses {
			return nil, fmt.Errorf("label %d at row %d out of range [0,%d)", c, i, numClasses)
		}
	}
	if cfg.NumTrees <= 0 {
		cfg.NumTrees = 100
	}
	numFeatures := x[0].Len()
	if cfg.MaxFeatures <= 0 {
		cfg.MaxFeatures = int(math.Sqrt(float64(numFeatures)))
		if cfg.MaxFeatures < 1 {
			cfg.MaxFeatures = 1
		}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	master := rand.New(rand.NewSource(cfg.Seed))
	seeds := make([]int64, cfg.NumTrees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	treeCfg := TreeConfig{
		MaxDepth:        cfg.MaxDepth,
		MinSamplesSplit: cfg.MinSamplesSplit,
		MinSamplesLeaf:  cfg.MinSamplesLeaf,
		MaxFeatures:     cfg.MaxFeatures,
	}
	trees := make([]DecisionTree, cfg.NumTrees)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for t := 0; t < cfg.NumTrees; t++ {
		t := t
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[t]))
			idx := make([]int, len(x))
			if cfg.Bootstrap {
				for i := range idx {
					idx[i] = rng.Intn(len(x))
				}
			} else {
				for i := range idx {
					idx[i] = i
				}
			}
			trees[t] = buildTree(x, y, numClasses, numFeatures, idx, treeCfg, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("train forest: %w", err)
	}
	return &RandomForest{Trees: trees, NumClasses: numClasses, NumFeatures: numFeatures}, nil
}

// PredictProba averages the leaf distributions of every tree.
func (f *RandomForest) PredictProba(x Vector) []float64 {
	out := make([]float64, f.NumClasses)
	if len(f.Trees) == 0 {
		return out
	}
	for i := range f.Trees {
		for c, p := range f.Trees[i].Distribution(x) {
			out[c] += p
		}
	}
	n := float64(len(f.Trees))
	for c := range out {
		out[c] /= n
	}
	return out
}

// Predict returns the most probable class and its probability.
func (f *RandomForest) Predict(x Vector) (int, float64) {
	probs := f.PredictProba(x)
	if len(probs) == 0 {
		return 0, 0
	}
	best := 0
	for c := 1; c < len(probs); c++ {
		if probs[c] > probs[best] {
			best = c
		}
	}
	return best, probs[best]
}

// Score returns accuracy over x, y.
func (f *RandomForest) Score(x []Vector, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i := range x {
		if c, _ := f.Predict(x[i]); c == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}

// ClassScore pairs a class index with its probability.
type ClassScore struct {
	Class       int
	Probability float64
}

// TopK returns the k most probable classes, highest first. Ties keep the lower class
// index first.
func TopK(probs []float64, k int) []ClassScore {
	scores := make([]ClassScore, len(probs))
	for i, p := range probs {
		scores[i] = ClassScore{Class: i, Probability: p}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Probability > scores[j].Probability })
	if k < len(scores) {
		scores = scores[:k]
	}
	return scores
}

// TrainTestSplit shuffles row indices [0, n) and holds out ceil(testFraction*n) of them.
func TrainTestSplit(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(testFraction * float64(n)))
	if nTest < 0 {
		nTest = 0
	}
	if nTest > n {
		nTest = n
	}
	return perm[nTest:], perm[:nTest]
}

// Select returns x[i] for every i in idx.
func Select[T any](x []T, idx []int) []T {
	out := make([]T, len(idx))
	for k, i := range idx {
		out[k] = x[i]
	}
	return out
}
