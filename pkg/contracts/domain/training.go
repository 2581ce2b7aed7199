package domain

import "time"

// FeatureImportance is one entry of the ranked importance list
type FeatureImportance struct {
	Name       string  `json:"name"`
	Importance float64 `json:"importance"`
}

// TrainingReport carries the diagnostics of a training run.
// It is observable output only and is not part of the persisted artifact.
type TrainingReport struct {
	ArtifactID   string              `json:"artifact_id"`
	Target       string              `json:"target"`
	MAE          float64             `json:"mae"`
	TopFeatures  []FeatureImportance `json:"top_features"`
	TrainRows    int                 `json:"train_rows"`
	TestRows     int                 `json:"test_rows"`
	FeatureCount int                 `json:"feature_count"`
	Duration     time.Duration       `json:"duration"`
	TrainedAt    time.Time           `json:"trained_at"`
}

// EvaluationReport scores a persisted artifact against the current dataset
type EvaluationReport struct {
	ArtifactID  string              `json:"artifact_id"`
	MAE         float64             `json:"mae"`
	TopFeatures []FeatureImportance `json:"top_features"`
	Rows        int                 `json:"rows"`
}
