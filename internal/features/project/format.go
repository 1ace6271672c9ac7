// Package project - format.go готовит тексты ответов.
// Используется и Telegram-обработчиками, и утилитой ecoctl.
package project

import (
	"fmt"
	"strings"
	"time"

	"serotonyl.ru/eco-bot/internal/common"
	"serotonyl.ru/eco-bot/internal/features/timeline"
)

// FormatOverview - экран состояния проекта.
func FormatOverview(o *Overview, loc *time.Location) string {
	p := o.Project
	var sb strings.Builder

	sb.WriteString("🍊 Эко-энзим\n\n")
	sb.WriteString(fmt.Sprintf("Статус: %s\n", p.Status.Title()))
	sb.WriteString(fmt.Sprintf("Отходы: %s\n", common.FormatKg(o.Recipe.WasteKg)))
	sb.WriteString(fmt.Sprintf("Сахар: %s\n", common.FormatKg(o.Recipe.SugarKg)))
	sb.WriteString(fmt.Sprintf("Вода: %s\n", common.FormatLiters(o.Recipe.WaterLtr)))

	if !o.Active {
		sb.WriteString("\nДобавляйте отходы командой !сдать <кг>, затем запустите ферментацию: !старт")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n%s %d%%\n", common.ProgressBar(o.Percent, 10), o.Percent))
	sb.WriteString(fmt.Sprintf("Прошло: %s, осталось: %s\n",
		common.FormatDays(o.DaysCompleted), common.FormatDays(o.DaysRemaining)))
	if harvest, ok := p.Clock().Harvest(); ok {
		sb.WriteString(fmt.Sprintf("Сбор урожая: %s\n", common.FormatDate(harvest, loc)))
	}
	if o.CurrentDay > 0 {
		sb.WriteString(fmt.Sprintf("День %d из %d, месяц %d\n", o.CurrentDay, timeline.TotalDays, o.Month))
	}
	if p.IsClaimed {
		sb.WriteString("\n🏆 Итоговый бонус получен")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatJournal - журнал отходов.
func FormatJournal(p *Project, entries []*Entry, loc *time.Location) string {
	if len(entries) == 0 {
		return "📒 Журнал пуст. Добавьте отходы: !сдать <кг>"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📒 Журнал отходов (%d):\n\n", len(entries)))
	for i, e := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s | %s\n", i+1, common.FormatDateTime(e.CreatedAt, loc), common.FormatKg(e.WeightKg())))
	}
	sb.WriteString(fmt.Sprintf("\nИтого: %s", common.FormatKg(p.WeightKg())))
	return sb.String()
}

// FormatEntryAdded - ответ на запись отходов.
func FormatEntryAdded(p *Project, e *Entry) string {
	return fmt.Sprintf("✅ Записано %s\nВсего отходов: %s",
		common.FormatKg(e.WeightKg()), common.FormatKg(p.WeightKg()))
}

// FormatStarted - ответ на запуск ферментации.
func FormatStarted(p *Project, loc *time.Location) string {
	var harvest string
	if h, ok := p.Clock().Harvest(); ok {
		harvest = common.FormatDate(h, loc)
	}
	return fmt.Sprintf("🚀 Ферментация запущена!\nСбор урожая: %s\nОтмечайтесь каждый день: !чекин", harvest)
}

// FormatTimeline - сводка таймлайна по месяцам.
func FormatTimeline(v *TimelineView, loc *time.Location) string {
	var sb strings.Builder

	sb.WriteString("🗓 Таймлайн\n\n")
	sb.WriteString(fmt.Sprintf("Старт: %s\n", common.FormatDate(v.Start, loc)))
	if v.CurrentDay == 0 {
		sb.WriteString("Таймлайн ещё не начался\n")
	} else {
		sb.WriteString(fmt.Sprintf("Сегодня: день %d из %d\n", v.CurrentDay, timeline.TotalDays))
	}
	sb.WriteString(fmt.Sprintf("Общий прогресс: %s %d%%\n", common.ProgressBar(v.Overall, 10), v.Overall))
	sb.WriteString(fmt.Sprintf("Серия: %s\n\n", common.FormatDays(v.Streak)))

	for _, m := range v.Months {
		photo := "нет фото"
		if m.Photo != "" {
			photo = "фото есть"
		}
		sb.WriteString(fmt.Sprintf("Месяц %d: %d/%d (%d%%), %s\n", m.Month, m.Done, m.Total, m.Percent, photo))
	}

	sb.WriteString("\n")
	sb.WriteString(FormatEligibility(v.Eligibility))
	return sb.String()
}

// FormatEligibility - условия итогового бонуса.
func FormatEligibility(e timeline.Eligibility) string {
	mark := func(ok bool) string {
		if ok {
			return "✅"
		}
		return "⬜"
	}
	switch {
	case e.IsClaimed:
		return "🏆 Бонус получен"
	case e.IsReady:
		return "🎁 Все условия выполнены! Заберите бонус: !забрать"
	default:
		return fmt.Sprintf("%s Все 90 чекинов\n%s Три фото за месяцы", mark(e.AllCheckinsDone), mark(e.AllPhotosUploaded))
	}
}

// FormatWeek - одна неделя таймлайна с отметками.
func FormatWeek(v *TimelineView, w timeline.Week, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Неделя %d (месяц %d)\n\n", w.Number, w.Month))
	for i, d := range w.Days {
		state := "🔒"
		switch {
		case v.Checkins.IsChecked(d):
			state = "✅"
		case timeline.IsDayUnlocked(d, v.CurrentDay):
			state = "⬜"
		}
		date := common.FormatDate(timeline.DayDate(v.Start, d), loc)
		sb.WriteString(fmt.Sprintf("%s День %d (%s): %s\n", state, d, date, w.Kinds[i]))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatCheckin - ответ на чекин.
func FormatCheckin(r *CheckinResult) string {
	if r.AlreadyChecked {
		return fmt.Sprintf("ℹ️ День %d уже отмечен", r.Day)
	}
	text := fmt.Sprintf("✅ День %d отмечен: %s\nСерия: %s",
		r.Day, timeline.KindOf(r.Day), common.FormatDays(r.View.Streak))
	if timeline.KindOf(r.Day) == timeline.DayPhoto {
		text += fmt.Sprintf("\n📸 Не забудьте фото за месяц %d", timeline.MonthOf(r.Day))
	}
	if r.View.Eligibility.IsReady && !r.View.Eligibility.IsClaimed {
		text += "\n🎁 Все условия выполнены! Заберите бонус: !забрать"
	}
	return text
}
