package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "crimerisk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Training  TrainingConfig  `yaml:"training" envconfig:"TRAINING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Sources   []SourceConfig  `yaml:"sources" ignored:"true" validate:"required,min=1,dive"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system locations. Relative directories are
// resolved against BaseDir, which defaults to the executable directory.
type PathsConfig struct {
	BaseDir      string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	ModelsDir    string `yaml:"models_dir" envconfig:"MODELS_DIR" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" envconfig:"REPORTS_DIR" validate:"required"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
	ArtifactFile string `yaml:"artifact_file" envconfig:"ARTIFACT_FILE" validate:"required"`
}

// TrainingConfig holds the model fitting parameters
type TrainingConfig struct {
	Target          string  `yaml:"target" envconfig:"TARGET" validate:"required"`
	TestFraction    float64 `yaml:"test_fraction" envconfig:"TEST_FRACTION" validate:"gt=0,lt=1"`
	Seed            int64   `yaml:"seed" envconfig:"SEED"`
	Estimators      int     `yaml:"estimators" envconfig:"ESTIMATORS" validate:"min=1"`
	MaxDepth        int     `yaml:"max_depth" envconfig:"MAX_DEPTH" validate:"gte=0"`
	MinSamplesSplit int     `yaml:"min_samples_split" envconfig:"MIN_SAMPLES_SPLIT" validate:"min=2"`
	MinSamplesLeaf  int     `yaml:"min_samples_leaf" envconfig:"MIN_SAMPLES_LEAF" validate:"min=1"`
	Workers         int     `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`
	TopFeatures     int     `yaml:"top_features" envconfig:"TOP_FEATURES" validate:"min=1"`
}

// TelemetryConfig toggles metrics and trace export
type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	EnableMetrics bool   `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	EnableTracing bool   `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
}

// SourceConfig describes one raw input file
type SourceConfig struct {
	Name         string   `yaml:"name" validate:"required"`
	File         string   `yaml:"file" validate:"required"`
	Sheet        string   `yaml:"sheet"`
	AreaColumn   string   `yaml:"area_column" validate:"required"`
	YearColumn   string   `yaml:"year_column" validate:"required"`
	GroupColumn  string   `yaml:"group_column"`
	FilterColumn string   `yaml:"filter_column" validate:"required_with=FilterValue"`
	FilterValue  string   `yaml:"filter_value"`
	Measurements []string `yaml:"measurements"`
}

// Load builds the configuration from defaults, an optional YAML file and
// CRIME_* environment variables, in increasing order of precedence.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks struct constraints and normalises logging settings
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	if c.Logging.Output == "" {
		c.Logging.Output = "console"
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	seen := make(map[string]bool, len(c.Sources))
	for _, src := range c.Sources {
		if seen[src.Name] {
			return fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = true
	}

	return nil
}

// getConfigFilePath returns the first config file found in the usual places
func getConfigFilePath() string {
	locations := []string{
		"crimerisk.yaml",
		"configs/crimerisk.yaml",
		"../configs/crimerisk.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     false,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "console",
			FilePath: DefaultLogFile,
		},
		Paths: PathsConfig{
			DataDir:      DefaultDataDir,
			ModelsDir:    DefaultModelsDir,
			ReportsDir:   DefaultReportsDir,
			LogsDir:      DefaultLogsDir,
			ArtifactFile: DefaultArtifactFile,
		},
		Training: TrainingConfig{
			Target:          DefaultTarget,
			TestFraction:    DefaultTestFraction,
			Seed:            DefaultSeed,
			Estimators:      DefaultEstimators,
			MaxDepth:        0,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
			TopFeatures:     DefaultTopFeatures,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			EnableMetrics: true,
		},
		Sources: DefaultSources(),
	}
}

// DefaultSources mirrors the layout of the published crime tables
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{
			Name:        "property",
			File:        "crime/10_Property_stolen_and_recovered.csv",
			AreaColumn:  "Area_Name",
			YearColumn:  "Year",
			GroupColumn: "Sub_Group_Name",
			Measurements: []string{
				"Cases_Property_Recovered",
				"Cases_Property_Stolen",
				"Value_of_Property_Recovered",
				"Value_of_Property_Stolen",
			},
		},
		{
			Name:         "rape",
			File:         "crime/20_Victims_of_rape.csv",
			AreaColumn:   "Area_Name",
			YearColumn:   "Year",
			FilterColumn: "Subgroup",
			FilterValue:  "Total Rape Victims",
		},
		{
			Name:       "police",
			File:       "crime/25_Complaints_against_police.csv",
			AreaColumn: "Area_Name",
			YearColumn: "Year",
		},
	}
}
