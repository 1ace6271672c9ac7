package timeline

// DayKind - тип задания на день таймлайна.
type DayKind int

const (
	// DayRoutine - обычный ежедневный чекин
	DayRoutine DayKind = iota
	// DayGasRelease - день сброса газа (каждый 7-й день)
	DayGasRelease
	// DayPhoto - день фото за месяц (30, 60, 90)
	DayPhoto
)

// WeeksTotal - недель в таймлайне (последняя неделя неполная).
const WeeksTotal = (TotalDays + 6) / 7

// String возвращает подпись задания для сообщений.
func (k DayKind) String() string {
	switch k {
	case DayGasRelease:
		return "сброс газа"
	case DayPhoto:
		return "фото месяца"
	default:
		return "ежедневная проверка"
	}
}

// KindOf определяет тип задания для дня.
// Фото-день важнее дня сброса газа.
func KindOf(day int) DayKind {
	if day%MonthDays == 0 {
		return DayPhoto
	}
	if day%7 == 0 {
		return DayGasRelease
	}
	return DayRoutine
}

// Week - одна неделя таймлайна.
type Week struct {
	Number int       // Номер недели 1..13
	Month  int       // Месяц, к которому неделя отнесена
	From   int       // Первый день недели
	To     int       // Последний день недели
	Days   []int     // Номера дней недели
	Kinds  []DayKind // Задание на каждый день
}

// WeekOf строит неделю по номеру (1..13). ok=false для неверного номера.
func WeekOf(number int) (Week, bool) {
	if number < 1 || number > WeeksTotal {
		return Week{}, false
	}
	from := (number-1)*7 + 1
	to := min(number*7, TotalDays)
	w := Week{Number: number, From: from, To: to, Month: DominantMonth(from, to)}
	for d := from; d <= to; d++ {
		w.Days = append(w.Days, d)
		w.Kinds = append(w.Kinds, KindOf(d))
	}
	return w, true
}

// Weeks возвращает все недели таймлайна по порядку.
func Weeks() []Week {
	out := make([]Week, 0, WeeksTotal)
	for n := 1; n <= WeeksTotal; n++ {
		w, _ := WeekOf(n)
		out = append(out, w)
	}
	return out
}

// WeekOfDay - номер недели, в которую попадает день.
func WeekOfDay(day int) int {
	if day < 1 {
		return 1
	}
	return min((day-1)/7+1, WeeksTotal)
}
