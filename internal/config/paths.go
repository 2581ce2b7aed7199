package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Every relative entry of PathsConfig is resolved against BaseDir.
type Paths struct {
	BaseDir    string
	DataDir    string
	ModelsDir  string
	ReportsDir string
	LogsDir    string
	Artifact   string
}

// NewPaths resolves the configured layout. An empty BaseDir falls back to
// the directory of the running executable.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory %s: %w", cfg.BaseDir, err)
	}

	modelsDir := resolve(base, cfg.ModelsDir)
	return &Paths{
		BaseDir:    base,
		DataDir:    resolve(base, cfg.DataDir),
		ModelsDir:  modelsDir,
		ReportsDir: resolve(base, cfg.ReportsDir),
		LogsDir:    resolve(base, cfg.LogsDir),
		Artifact:   resolve(modelsDir, cfg.ArtifactFile),
	}, nil
}

// executableDir returns the directory holding the running binary
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	return filepath.Dir(exe), nil
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the writable directories if they don't exist.
// The data directory is only read and is left alone.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ModelsDir,
		p.ReportsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		slog.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// SourcePath returns the location of a raw source file
func (p *Paths) SourcePath(file string) string {
	return resolve(p.DataDir, file)
}

// ArtifactPath returns the location of the persisted model bundle
func (p *Paths) ArtifactPath() string {
	return p.Artifact
}

// ReportPath returns a path inside the reports directory
func (p *Paths) ReportPath(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPath resolves the log file against the base directory
func (p *Paths) LogPath(file string) string {
	return resolve(p.BaseDir, file)
}

// LogPathResolution logs the resolved layout for debugging
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("models", p.ModelsDir),
			slog.String("reports", p.ReportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.String("artifact", p.Artifact))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
