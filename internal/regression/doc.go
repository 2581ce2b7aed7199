// Package regression implements the estimator used by crimerisk: a median
// imputer, a seeded train/test split, CART regression trees and a bagged
// forest of them, plus the error and importance measures reported after
// training.
//
// All randomness derives from explicit seeds so that a fit is reproducible
// regardless of how many workers grow the trees:
//
//	forest := regression.NewForest(regression.ForestConfig{
//	    NEstimators: 100,
//	    Seed:        42,
//	})
//	if err := forest.Fit(ctx, X, y); err != nil {
//	    return err
//	}
//	predictions := forest.Predict(Xtest)
//
// Every type here is plain data with exported fields so that a fitted
// model can be serialised with encoding/gob.
package regression
