package tree

import (
	"fmt"
	"strings"

	"serotonyl.ru/eco-bot/internal/common"
)

var categoryIcons = map[Category]string{
	CategoryEco:      "♻️",
	CategoryHealth:   "💪",
	CategoryLearning: "📚",
}

var weekdayNames = []string{"Пн", "Вт", "Ср", "Чт", "Пт", "Сб", "Вс"}

// FormatTasks - список задач на сегодня.
func FormatTasks(tasks []*Task) string {
	var sb strings.Builder
	sb.WriteString("📝 Задачи на сегодня:\n\n")
	done := 0
	for i, t := range tasks {
		mark := "⬜"
		if t.Done {
			mark = "✅"
			done++
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s %s\n", i+1, mark, categoryIcons[t.Category], t.Title))
	}
	sb.WriteString(fmt.Sprintf("\nВыполнено %d из %d. Отметить: !готово <номер>", done, len(tasks)))
	return sb.String()
}

// FormatTree - состояние дерева.
func FormatTree(v *View) string {
	green, yellow := 0, 0
	for _, l := range v.Leaves {
		if l.Color == LeafGreen {
			green++
		} else {
			yellow++
		}
	}

	var sb strings.Builder
	sb.WriteString("🌳 Ваше дерево\n\n")
	sb.WriteString(fmt.Sprintf("Листья за 30 дней: 🟢 %d  🟡 %d\n", green, yellow))
	sb.WriteString(fmt.Sprintf("Собрано плодов: %d (%s)\n", v.Harvested, common.FormatBalance(v.Points)))

	if len(v.Fruits) == 0 {
		sb.WriteString("\nСпелых плодов нет. Выполните все задачи дня, и завтра вырастет новый")
		return sb.String()
	}
	sb.WriteString("\nСпелые плоды:\n")
	for i, f := range v.Fruits {
		sb.WriteString(fmt.Sprintf("%d. 🍎 за %s (%s)\n", i+1, f.Date, common.FormatPointsAmount(f.Points)))
	}
	sb.WriteString("\nСобрать: !урожай <номер>")
	return sb.String()
}

// FormatWeek - недельный прогресс.
func FormatWeek(week []WeekDay) string {
	icons := map[DayStatus]string{DayDone: "✅", DayMissed: "❌", DayPending: "⏳"}
	parts := make([]string, 0, len(week))
	for i, d := range week {
		parts = append(parts, fmt.Sprintf("%s %s", weekdayNames[i%7], icons[d.Status]))
	}
	return "📈 Неделя: " + strings.Join(parts, "  ")
}

// FormatMilestone - награда за серию.
func FormatMilestone(m *Milestone) string {
	text := fmt.Sprintf("🔥 Серия: %d/%d %s\n%s",
		m.Current, m.Target, common.PluralizeDays(m.Target), common.ProgressBar(m.Current*100/m.Target, 10))
	switch {
	case m.Claimed:
		text += "\n🏅 Награда за этот месяц получена"
	case m.Ready:
		text += fmt.Sprintf("\n🎁 Награда доступна: %s. Забрать: !награда", common.FormatPointsAmount(m.Points))
	default:
		text += fmt.Sprintf("\nВыполняйте хотя бы одну задачу каждый день %s подряд", common.FormatDays(m.Target))
	}
	return text
}
