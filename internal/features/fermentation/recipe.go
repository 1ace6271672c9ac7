package fermentation

import (
	"math"
	"strconv"
	"strings"

	"serotonyl.ru/eco-bot/internal/common"
)

// MaxWeightKg - верхняя граница одной записи журнала.
// Защищает от опечаток вида «10000» вместо «10».
const MaxWeightKg = 1000

// Recipe - пропорция 1:3:10 (отходы : сахар : вода).
type Recipe struct {
	WasteKg  float64 // Органические отходы, кг
	SugarKg  float64 // Сахар, кг
	WaterLtr float64 // Вода, литры
}

// NewRecipe считает рецепт по весу отходов.
// Значения округляются до двух знаков; отрицательный вес даёт нули.
func NewRecipe(wasteKg float64) Recipe {
	if wasteKg <= 0 || math.IsNaN(wasteKg) {
		return Recipe{}
	}
	sugar := wasteKg / 3
	return Recipe{
		WasteKg:  common.Round2(wasteKg),
		SugarKg:  common.Round2(sugar),
		WaterLtr: common.Round2(sugar * 10),
	}
}

// KgToGrams переводит килограммы в целые граммы.
func KgToGrams(kg float64) int64 {
	return int64(math.Round(kg * 1000))
}

// GramsToKg переводит граммы в килограммы.
func GramsToKg(g int64) float64 {
	return float64(g) / 1000
}

// ParseWeight разбирает вес в килограммах из пользовательского ввода.
// Принимает запятую как десятичный разделитель и необязательный суффикс «кг».
// Возвращает вес в граммах или common.ErrInvalidWeight.
func ParseWeight(input string) (int64, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	s = strings.TrimSuffix(s, "кг")
	s = strings.TrimSuffix(s, "kg")
	s = strings.TrimSpace(strings.Replace(s, ",", ".", 1))
	if s == "" {
		return 0, common.ErrInvalidWeight
	}

	kg, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(kg) || math.IsInf(kg, 0) {
		return 0, common.ErrInvalidWeight
	}
	if kg > MaxWeightKg {
		return 0, common.ErrInvalidWeight
	}

	grams := KgToGrams(kg)
	if grams <= 0 {
		return 0, common.ErrInvalidWeight
	}
	return grams, nil
}
