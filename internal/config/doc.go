// Package config provides centralized configuration management for crimerisk.
// It loads settings from several sources, validates them, and resolves the
// file system layout used by the pipeline binaries and the server.
//
// # Configuration Sources
//
// Configuration is assembled in order of increasing precedence:
//
//	1. Default values (Default)
//	2. A YAML file (crimerisk.yaml or configs/crimerisk.yaml, or an explicit path)
//	3. Environment variables
//
// # Environment Variables
//
// All environment variables use the CRIME_ prefix:
//
//	CRIME_SERVER_PORT=8080
//	CRIME_LOGGING_LEVEL=debug
//	CRIME_PATHS_BASE_DIR=/srv/crimerisk
//	CRIME_TRAINING_ESTIMATORS=200
//
// Source definitions are only read from the YAML file.
//
// # Path Management
//
// Paths resolves every directory against a single base directory:
//
//	paths, err := config.NewPaths(cfg.Paths)
//	artifact := paths.ArtifactPath()
//	source := paths.SourcePath("crime/20_Victims_of_rape.csv")
package config
