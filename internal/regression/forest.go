package regression

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	apperrors "crimerisk/internal/errors"
)

// ForestConfig configures a bagged ensemble of regression trees
type ForestConfig struct {
	NEstimators int
	Seed        int64
	// Workers bounds how many trees grow at once; 0 means GOMAXPROCS
	Workers   int
	Bootstrap bool
	Tree      TreeParams
}

// DefaultForestConfig returns 100 bootstrapped, fully grown trees seeded with 42
func DefaultForestConfig() ForestConfig {
	return ForestConfig{
		NEstimators: 100,
		Seed:        42,
		Bootstrap:   true,
		Tree:        DefaultTreeParams(),
	}
}

// Forest averages the predictions of independently grown regression trees
type Forest struct {
	Config    ForestConfig
	NFeatures int
	Trees     []*RegressionTree
}

// NewForest creates an unfitted forest
func NewForest(cfg ForestConfig) *Forest {
	if cfg.NEstimators <= 0 {
		cfg.NEstimators = 100
	}
	return &Forest{Config: cfg}
}

// Fit grows every tree. Tree i draws its bootstrap sample and feature
// subsets from the i-th seed of a sequence derived from Config.Seed, so the
// result is identical for any number of workers.
func (f *Forest) Fit(ctx context.Context, X [][]float64, y []float64) error {
	if len(X) == 0 {
		return apperrors.NewInsufficientDataError(0, "no rows to fit")
	}
	width, err := matrixWidth(X)
	if err != nil {
		return err
	}
	if len(y) != len(X) {
		return fmt.Errorf("X has %d rows but y has %d", len(X), len(y))
	}

	master := rand.New(rand.NewSource(f.Config.Seed))
	seeds := make([]int64, f.Config.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	workers := f.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	trees := make([]*RegressionTree, f.Config.NEstimators)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i := range trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(rand.NewSource(seeds[i]))
			sample := f.sample(len(X), rng)

			tree := NewRegressionTree(f.Config.Tree)
			if err := tree.Fit(X, y, sample, rng); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	f.NFeatures = width
	f.Trees = trees
	return nil
}

func (f *Forest) sample(n int, rng *rand.Rand) []int {
	idx := make([]int, n)
	for i := range idx {
		if f.Config.Bootstrap {
			idx[i] = rng.Intn(n)
		} else {
			idx[i] = i
		}
	}
	return idx
}

// PredictRow returns the mean of the tree predictions for x
func (f *Forest) PredictRow(x []float64) float64 {
	sum := 0.0
	for _, t := range f.Trees {
		sum += t.PredictRow(x)
	}
	return sum / float64(len(f.Trees))
}

// Predict returns one prediction per row of X
func (f *Forest) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = f.PredictRow(x)
	}
	return out
}

// Fitted reports whether the forest holds trees for a known width
func (f *Forest) Fitted() bool {
	return len(f.Trees) > 0 && f.NFeatures > 0
}

// FeatureImportances averages each tree's normalised impurity decrease and
// renormalises the result to sum to 1
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, f.NFeatures)
	if len(f.Trees) == 0 {
		return out
	}

	used := 0
	for _, t := range f.Trees {
		imp := t.NormalizedImportances()
		if floats.Sum(imp) == 0 {
			continue
		}
		floats.Add(out, imp)
		used++
	}
	if used == 0 {
		return out
	}

	floats.Scale(1/float64(used), out)
	if total := floats.Sum(out); total > 0 {
		floats.Scale(1/total, out)
	}
	return out
}
