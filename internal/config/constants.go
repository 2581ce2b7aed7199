package config

import "time"

// Application constants
const (
	AppName    = "crimerisk"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable (CRIME_SERVER_PORT, ...)
	EnvPrefix = "CRIME"

	// Rate Limiting
	DefaultRateLimit = 20 // requests per second
	DefaultBurstSize = 40

	DefaultRequestTimeout = 30 * time.Second

	// File Paths (relative to the base directory)
	DefaultDataDir      = "data"
	DefaultModelsDir    = "models"
	DefaultReportsDir   = "reports"
	DefaultLogsDir      = "logs"
	DefaultArtifactFile = "crime_risk.model"
	DefaultLogFile      = "logs/app.log"

	// Log Settings
	DefaultLogLevel = "info"

	// Training defaults
	DefaultTarget       = "Victims_of_Rape_Total"
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
	DefaultEstimators   = 100
	DefaultTopFeatures  = 10

	// API Endpoints
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/api/v1/health"
	MetricsEndpoint = "/metrics"

	// Report files
	MergedCSV    = "merged.csv"
	LaggedCSV    = "lagged.csv"
	TrainingCSV  = "training.csv"
	TrainingXLSX = "training.xlsx"
	ReportCSV    = "feature_importance.csv"
)
