package economy

import (
	"fmt"
	"strings"
	"time"

	"serotonyl.ru/eco-bot/internal/common"
)

// FormatBalance - ответ на !баллы.
func FormatBalance(balance int64) string {
	return fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(balance))
}

// FormatHistory - история транзакций.
func FormatHistory(transactions []*Transaction, loc *time.Location) string {
	if len(transactions) == 0 {
		return "📋 У вас пока нет транзакций"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(transactions)))

	lines := make([]string, 0, len(transactions))
	for i, tx := range transactions {
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt, loc),
			common.FormatPointsAmount(tx.Amount),
			tx.Description,
		))
	}

	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}

// FormatCatalog - каталог ваучеров.
func FormatCatalog(balance int64) string {
	var sb strings.Builder
	sb.WriteString("🎟 Ваучеры:\n\n")
	for _, v := range Catalog {
		mark := "🔒"
		if balance >= v.Cost {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s %s — %s (!обменять %s)\n", mark, v.Title, common.FormatBalance(v.Cost), v.Code))
	}
	sb.WriteString(fmt.Sprintf("\nВаш баланс: %s", common.FormatBalance(balance)))
	return sb.String()
}

// FormatRedemption - ответ на успешный обмен.
func FormatRedemption(r *Redemption) string {
	return fmt.Sprintf("🎉 %s\nКод получения: %s\nОстаток: %s",
		r.Voucher.Title, r.Code, common.FormatBalance(r.Balance))
}
