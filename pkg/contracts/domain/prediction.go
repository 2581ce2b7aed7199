package domain

// PredictionStatus tells the caller whether a prediction carries a value
type PredictionStatus string

const (
	// PredictionOK means Value holds the point estimate
	PredictionOK PredictionStatus = "ok"
	// PredictionNoData means no feature row exists for the requested area/year
	PredictionNoData PredictionStatus = "no-data"
)

// PredictionRequest is an (area, year) pair collected by the front-end
type PredictionRequest struct {
	Area string `json:"area" validate:"required"`
	Year int    `json:"year" validate:"required,min=1800,max=2200"`
}

// Prediction is the outcome of a single prediction request.
// A no-data outcome is not an error and never carries a value.
type Prediction struct {
	Area       string           `json:"area"`
	Year       int              `json:"year"`
	Status     PredictionStatus `json:"status"`
	Value      *float64         `json:"value,omitempty"`
	ArtifactID string           `json:"artifact_id,omitempty"`
}

// NoData builds the sentinel result for a missing (area, year) row
func NoData(area string, year int) Prediction {
	return Prediction{Area: area, Year: year, Status: PredictionNoData}
}

// HasValue reports whether the prediction carries an estimate
func (p Prediction) HasValue() bool {
	return p.Status == PredictionOK && p.Value != nil
}

// SelectorOptions lists the distinct values a front-end may offer
type SelectorOptions struct {
	Areas []string `json:"areas"`
	Years []int    `json:"years"`
}
