package fermentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/eco-bot/internal/common"
)

func TestNewRecipe(t *testing.T) {
	tests := []struct {
		name  string
		waste float64
		want  Recipe
	}{
		{"девять кг", 9, Recipe{WasteKg: 9, SugarKg: 3, WaterLtr: 30}},
		{"ноль", 0, Recipe{}},
		{"отрицательный", -3, Recipe{}},
		{"пять кг", 5, Recipe{WasteKg: 5, SugarKg: 1.67, WaterLtr: 16.67}},
		{"полкило", 0.5, Recipe{WasteKg: 0.5, SugarKg: 0.17, WaterLtr: 1.67}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRecipe(tt.waste))
		})
	}
}

func TestParseWeight(t *testing.T) {
	valid := map[string]int64{
		"2":       2000,
		"2.5":     2500,
		"2,5":     2500,
		" 3 кг ":  3000,
		"0.125kg": 125,
		"1000":    1000000,
	}
	for in, want := range valid {
		got, err := ParseWeight(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	invalid := []string{"", "abc", "0", "-1", "0.0001", "NaN", "Inf", "1001", "кг"}
	for _, in := range invalid {
		_, err := ParseWeight(in)
		assert.ErrorIs(t, err, common.ErrInvalidWeight, in)
	}
}

func TestGramsSumIsExact(t *testing.T) {
	weights := []string{"0,1", "0,2", "0,3", "2", "3"}
	var total int64
	for _, w := range weights {
		g, err := ParseWeight(w)
		require.NoError(t, err)
		total += g
	}
	assert.Equal(t, int64(5600), total)
	assert.Equal(t, 5.6, GramsToKg(total))
}
