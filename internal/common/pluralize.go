// Package common - pluralize.go содержит вспомогательные функции
// для форматирования сумм и весов в сообщениях.
package common

import (
	"fmt"
	"strings"
)

// FormatPointsAmount создаёт строку вида "+100 баллов" или "-50 баллов".
// Знак «+» или «-» добавляется автоматически.
//
// Примеры:
//
//	FormatPointsAmount(100)  → "+100 баллов"
//	FormatPointsAmount(-50)  → "-50 баллов"
//	FormatPointsAmount(1)    → "+1 балл"
func FormatPointsAmount(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizePoints(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizePoints(amount))
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}

// FormatKg форматирует вес с двумя знаками и запятой: 2.5 → "2,50 кг".
func FormatKg(kg float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", kg), ".", ",", 1) + " кг"
}

// FormatLiters форматирует объём: 30 → "30,00 л".
func FormatLiters(l float64) string {
	return strings.Replace(fmt.Sprintf("%.2f", l), ".", ",", 1) + " л"
}

// ProgressBar рисует текстовую полосу прогресса из width символов.
// Пример: ProgressBar(50, 10) → "▓▓▓▓▓░░░░░"
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100
	return strings.Repeat("▓", filled) + strings.Repeat("░", width-filled)
}
