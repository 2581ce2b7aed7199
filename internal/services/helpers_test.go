package services

import (
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"

	"crimerisk/internal/artifact"
	"crimerisk/internal/config"
	"crimerisk/internal/dataprocessing"
	"crimerisk/internal/infrastructure"
)

const testTarget = "T"

func quietLogger() *slog.Logger {
	return infrastructure.NewLogger(io.Discard, "error")
}

func testTrainingConfig() config.TrainingConfig {
	return config.TrainingConfig{
		Target:          testTarget,
		TestFraction:    0.2,
		Seed:            42,
		Estimators:      10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		TopFeatures:     2,
	}
}

// syntheticTable builds a lagged table for three areas over ten years in
// which T grows with F. The first year of each area has no lag value.
func syntheticTable() *dataprocessing.Table {
	var keys []dataprocessing.Key
	var f, lag, target []float64
	for a, area := range []string{"A", "B", "C"} {
		prev := math.NaN()
		for year := 2001; year <= 2010; year++ {
			value := float64(10*a + year - 2000)
			keys = append(keys, dataprocessing.Key{Area: area, Year: year})
			f = append(f, value)
			lag = append(lag, prev)
			target = append(target, 2*value)
			prev = 2 * value
		}
	}
	return &dataprocessing.Table{
		Keys: keys,
		Columns: []dataprocessing.Column{
			{Name: "F", Values: f},
			{Name: testTarget, Values: target},
			{Name: "T_lag1", Values: lag},
		},
	}
}

func testStore(t *testing.T) *artifact.Store {
	t.Helper()
	return artifact.NewStore(filepath.Join(t.TempDir(), "models", "test.model"), quietLogger())
}

func nan() float64 { return math.NaN() }

func isNaN(v float64) bool { return math.IsNaN(v) }
