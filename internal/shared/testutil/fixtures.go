package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"crimerisk/internal/config"
)

// PropertyCSV is a grouped source: two areas over two years, one
// sub-group per row
const PropertyCSV = "Area_Name,Year,Sub_Group_Name,Cases_Property_Stolen\n" +
	"X,2001,1. Burglary,10\n" +
	"X,2002,1. Burglary,12\n" +
	"Y,2001,1. Burglary,3\n" +
	"Y,2002,1. Burglary,5\n"

// RapeCSV is a filtered source. Y has no 2001 total, so the gap filler
// back-fills it from 2002.
const RapeCSV = "Area_Name,Year,Subgroup,Victims_of_Rape_Total\n" +
	"X,2001,Total Rape Victims,4\n" +
	"X,2001,Victims of Incest Rape,1\n" +
	"X,2002,Total Rape Victims,6\n" +
	"Y,2002,Total Rape Victims,2\n"

// WriteFile writes content to dir/name, creating parent directories
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CrimeSources writes PropertyCSV and RapeCSV into dataDir and returns the
// matching source configuration. The default target
// (Victims_of_Rape_Total) comes from the rape source.
func CrimeSources(t *testing.T, dataDir string) []config.SourceConfig {
	t.Helper()
	WriteFile(t, dataDir, "property.csv", PropertyCSV)
	WriteFile(t, dataDir, "rape.csv", RapeCSV)

	return []config.SourceConfig{
		{
			Name: "property", File: "property.csv",
			AreaColumn: "Area_Name", YearColumn: "Year", GroupColumn: "Sub_Group_Name",
			Measurements: []string{"Cases_Property_Stolen"},
		},
		{
			Name: "rape", File: "rape.csv",
			AreaColumn: "Area_Name", YearColumn: "Year",
			FilterColumn: "Subgroup", FilterValue: "Total Rape Victims",
		},
	}
}

// TestConfig returns the default configuration rooted at a temporary
// directory with CrimeSources in its data directory. Rate limiting and
// the Prometheus exporter are off and the forest is small.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Security.RateLimit.Enabled = false
	cfg.Telemetry.EnableMetrics = false
	cfg.Training.Estimators = 5
	cfg.Sources = CrimeSources(t, filepath.Join(cfg.Paths.BaseDir, cfg.Paths.DataDir))
	return cfg
}
