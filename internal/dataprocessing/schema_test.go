package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFeatureName_Name(t *testing.T) {
	tests := []struct {
		name string
		pair FeatureName
		want string
	}{
		{"no category", FeatureName{"Victims_of_Rape_Total", ""}, "Victims_of_Rape_Total"},
		{"spaces", FeatureName{"Cases_Property_Stolen", "Motor Vehicles"}, "Cases_Property_Stolen_Motor_Vehicles"},
		{"period", FeatureName{"Cases_Property_Stolen", "Dacoity."}, "Cases_Property_Stolen_Dacoity_"},
		{"space and period collapse", FeatureName{"M", "Total . Property"}, "M_Total_Property"},
		{"abbreviation", FeatureName{"M", "Misc. Property"}, "M_Misc_Property"},
		{"other characters kept", FeatureName{"M", "Stolen & Recovered"}, "M_Stolen_&_Recovered"},
		{"leading space", FeatureName{"M", " Burglary"}, "M_Burglary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pair.Name())
		})
	}
}

func TestColumnSchema_CollisionKeepsFirst(t *testing.T) {
	first := FeatureName{"M", "Misc Property"}
	second := FeatureName{"M", "Misc. Property"}
	other := FeatureName{"N", "Misc Property"}

	schema := NewColumnSchema([]FeatureName{first, second, other})

	assert.Equal(t, []string{"M_Misc_Property", "N_Misc_Property"}, schema.Names())
	assert.Equal(t, []FeatureName{first, other}, schema.Columns())
	assert.Equal(t, []FeatureName{second}, schema.Dropped())
	assert.Equal(t, 2, schema.Len())

	name, ok := schema.Lookup(first)
	assert.True(t, ok)
	assert.Equal(t, "M_Misc_Property", name)

	_, ok = schema.Lookup(second)
	assert.False(t, ok)
}

func TestColumnSchema_Deterministic(t *testing.T) {
	pairs := []FeatureName{{"A", "x y"}, {"A", "z"}, {"B", "x y"}}
	assert.Equal(t, NewColumnSchema(pairs).Names(), NewColumnSchema(pairs).Names())
}

func TestLagName(t *testing.T) {
	assert.Equal(t, "Victims_of_Rape_Total_lag1", LagName("Victims_of_Rape_Total"))
}
