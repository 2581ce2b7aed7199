package dataprocessing

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "crimerisk/internal/errors"
	"crimerisk/internal/infrastructure"
)

var (
	specA = SourceSpec{Name: "a", AreaColumn: "Area_Name", YearColumn: "Year"}
	specB = SourceSpec{Name: "b", AreaColumn: "Area_Name", YearColumn: "Year", GroupColumn: "Group"}
	specC = SourceSpec{Name: "c", AreaColumn: "Area_Name", YearColumn: "Year"}
)

func testPipeline(target string) *Pipeline {
	return NewPipeline(target, nil, infrastructure.NewLogger(io.Discard, "error"))
}

func TestPipeline_MergeScenario(t *testing.T) {
	sources := []LoadedSource{
		{Spec: specA, Raw: rawCSV(t, "a", "Area_Name,Year,M\nX,2010,5\n")},
		{Spec: specB, Raw: rawCSV(t, "b", "Area_Name,Year,Group,N\nX,2010,Total,3\n")},
		{Spec: specC, Raw: rawCSV(t, "c", "Area_Name,Year,C\nY,2010,1\n")},
	}

	result, err := testPipeline("").BuildFromRaw(context.Background(), sources)
	require.NoError(t, err)

	i, ok := result.Merged.Find(Key{"X", 2010})
	require.True(t, ok)
	row := result.Merged.Row(i)
	assert.Equal(t, 5.0, row["M"])
	assert.Equal(t, 3.0, row["N_Total"])
	assert.True(t, IsMissing(row["C"]))
	assert.Nil(t, result.Training)
}

func TestPipeline_FillScenario(t *testing.T) {
	sources := []LoadedSource{
		{Spec: specA, Raw: rawCSV(t, "a", "Area_Name,Year,M\nX,2010,5\n")},
		{Spec: specB, Raw: rawCSV(t, "b", "Area_Name,Year,Group,N\nX,2010,Total,3\n")},
		{Spec: specC, Raw: rawCSV(t, "c", "Area_Name,Year,C\nX,2009,7\n")},
	}

	result, err := testPipeline("M").BuildFromRaw(context.Background(), sources)
	require.NoError(t, err)

	i, ok := result.Filled.Find(Key{"X", 2010})
	require.True(t, ok)
	assert.Equal(t, 7.0, result.Filled.Row(i)["C"])

	assert.Equal(t, keys("X", 2009, "X", 2010), result.Lagged.Keys)
	assertColumn(t, result.Lagged, "C_lag1", nan, 7)
	assertColumn(t, result.Lagged, "M_lag1", nan, 5)

	// the 2009 row is kept: its lags are missing but its target was back-filled
	assert.Equal(t, 2, result.Training.Len())
	assert.Equal(t, 3, result.Merge.Columns)
	assert.Equal(t, 2, result.Fill.BackwardFilled)
	assert.Equal(t, 1, result.Fill.ForwardFilled)
}

func TestPipeline_Build(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		return path
	}

	property := specB
	property.Name = "property"
	property.Path = write("property.csv", "Area_Name,Year,Group,Stolen\nX,2009,Burglary,1\nX,2010,Burglary,2\nX,2011,Burglary,4\n")
	rape := SourceSpec{
		Name: "rape", AreaColumn: "Area_Name", YearColumn: "Year",
		Filter: Filter{Column: "Subgroup", Value: "Total Rape Victims"},
		Path:   write("rape.csv", "Area_Name,Year,Subgroup,Victims\nX,2010,Total Rape Victims,10\nX,2010,Other,99\nX,2011,Total Rape Victims,12\n"),
	}

	result, err := testPipeline("Victims").Build(context.Background(), []SourceSpec{property, rape})
	require.NoError(t, err)

	assert.Len(t, result.Sources, 2)
	assert.Equal(t, []string{"Stolen_Burglary", "Victims", "Stolen_Burglary_lag1", "Victims_lag1"}, result.Lagged.Names())
	assertColumn(t, result.Training, "Victims", 10, 10, 12)
	assertColumn(t, result.Training, "Victims_lag1", nan, 10, 10)
}

func TestPipeline_SchemaMismatchIsFatal(t *testing.T) {
	sources := []LoadedSource{
		{Spec: specA, Raw: rawCSV(t, "a", "Area,Year,M\nX,2010,5\n")},
	}

	_, err := testPipeline("M").BuildFromRaw(context.Background(), sources)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrSchemaMismatch)
}

func TestPipeline_MissingFile(t *testing.T) {
	spec := specA
	spec.Path = filepath.Join(t.TempDir(), "absent.csv")

	_, err := testPipeline("M").Build(context.Background(), []SourceSpec{spec})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sources := []LoadedSource{{Spec: specA, Raw: rawCSV(t, "a", "Area_Name,Year,M\nX,2010,5\n")}}
	_, err := testPipeline("M").BuildFromRaw(ctx, sources)
	assert.ErrorIs(t, err, context.Canceled)
}
