package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crimerisk/internal/config"
	"crimerisk/internal/dataprocessing"
	apperrors "crimerisk/internal/errors"
)

func writeSources(t *testing.T, dataDir string) []config.SourceConfig {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "crime"), 0755))

	files := map[string]string{
		"crime/property.csv": "Area_Name,Year,Sub_Group_Name,Cases_Property_Stolen\n" +
			"X,2001,1. Burglary,10\n" +
			"X,2001,2. Dacoity,5\n" +
			"X,2002,1. Burglary,12\n" +
			"Y,2001,1. Burglary,3\n",
		"crime/rape.csv": "Area_Name,Year,Subgroup,Victims_of_Rape_Total\n" +
			"X,2001,Total Rape Victims,4\n" +
			"X,2001,Victims of Incest Rape,1\n" +
			"X,2002,Total Rape Victims,6\n" +
			"Y,2002,Total Rape Victims,2\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dataDir, name), []byte(content), 0644))
	}

	return []config.SourceConfig{
		{
			Name: "property", File: "crime/property.csv",
			AreaColumn: "Area_Name", YearColumn: "Year", GroupColumn: "Sub_Group_Name",
			Measurements: []string{"Cases_Property_Stolen"},
		},
		{
			Name: "rape", File: "crime/rape.csv",
			AreaColumn: "Area_Name", YearColumn: "Year",
			FilterColumn: "Subgroup", FilterValue: "Total Rape Victims",
		},
	}
}

func testDatasetService(t *testing.T) (*DatasetService, *PipelineContext, *config.Paths) {
	t.Helper()
	base := t.TempDir()

	cfg := config.Default()
	cfg.Training.Target = "Victims_of_Rape_Total"
	paths, err := config.NewPaths(config.PathsConfig{
		BaseDir: base, DataDir: "data", ModelsDir: "models", ReportsDir: "reports",
		LogsDir: "logs", ArtifactFile: "test.model",
	})
	require.NoError(t, err)
	cfg.Sources = writeSources(t, paths.DataDir)

	pctx := NewPipelineContext()
	return NewDatasetService(cfg, paths, pctx, nil, quietLogger()), pctx, paths
}

func TestDatasetService_SourceSpecs(t *testing.T) {
	svc, _, paths := testDatasetService(t)
	specs := svc.SourceSpecs()

	require.Len(t, specs, 2)
	assert.Equal(t, filepath.Join(paths.DataDir, "crime", "property.csv"), specs[0].Path)
	assert.True(t, specs[0].Grouped())
	assert.False(t, specs[0].HasFilter())
	assert.Equal(t, dataprocessing.Filter{Column: "Subgroup", Value: "Total Rape Victims"}, specs[1].Filter)
}

func TestDatasetService_BuildAndExport(t *testing.T) {
	svc, pctx, paths := testDatasetService(t)
	ctx := context.Background()

	result, err := svc.Build(ctx)
	require.NoError(t, err)

	ds := pctx.Dataset()
	require.NotNil(t, ds)
	assert.Same(t, result.Lagged, ds.Lagged)
	assert.Same(t, result.Training, ds.Training)

	i, ok := result.Lagged.Find(dataprocessing.Key{Area: "X", Year: 2001})
	require.True(t, ok)
	row := result.Lagged.Row(i)
	assert.Equal(t, 10.0, row["Cases_Property_Stolen_1_Burglary"])
	assert.Equal(t, 4.0, row["Victims_of_Rape_Total"])

	// Y/2001 has no rape row but is backward filled from Y/2002
	j, ok := result.Training.Find(dataprocessing.Key{Area: "Y", Year: 2001})
	require.True(t, ok)
	assert.Equal(t, 2.0, result.Training.Row(j)["Victims_of_Rape_Total"])

	written, err := svc.Export(ctx, result, ExportOptions{Merged: true, XLSX: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		paths.ReportPath(config.MergedCSV),
		paths.ReportPath(config.LaggedCSV),
		paths.ReportPath(config.TrainingCSV),
		paths.ReportPath(config.TrainingXLSX),
	}, written)
	for _, p := range written {
		assert.FileExists(t, p)
	}
}

func TestDatasetService_MissingSourceFile(t *testing.T) {
	svc, pctx, paths := testDatasetService(t)
	require.NoError(t, os.Remove(filepath.Join(paths.DataDir, "crime", "rape.csv")))

	_, err := svc.Build(context.Background())
	assert.Error(t, err)
	assert.Nil(t, pctx.Dataset())
}

func TestDatasetService_SchemaMismatch(t *testing.T) {
	svc, _, paths := testDatasetService(t)
	require.NoError(t, os.WriteFile(filepath.Join(paths.DataDir, "crime", "rape.csv"),
		[]byte("Region,Year,Subgroup,Victims_of_Rape_Total\nX,2001,Total Rape Victims,4\n"), 0644))

	_, err := svc.Build(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}
