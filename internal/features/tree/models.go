// Package tree - трекер ежедневных задач в виде растущего дерева.
// Каждый день пользователь получает фиксированный список задач;
// выполненные дни превращаются в листья и плоды, плоды обмениваются на баллы.
package tree

import "time"

// Category - направление задачи.
type Category string

const (
	CategoryEco      Category = "eco"      // Эко-действие
	CategoryHealth   Category = "health"   // Здоровье
	CategoryLearning Category = "learning" // Обучение
)

// Template - задача из ежедневного каталога.
type Template struct {
	Code     string
	Title    string
	Category Category
}

// DailyCatalog - задачи, которые создаются каждому пользователю на каждый день.
var DailyCatalog = []Template{
	{Code: "sort_waste", Title: "Рассортировать отходы", Category: CategoryEco},
	{Code: "walk", Title: "Прогулка 30 минут", Category: CategoryHealth},
	{Code: "read_eco", Title: "Прочитать статью об экологии", Category: CategoryLearning},
}

// Task - задача пользователя на конкретный день (строка чек-листа).
type Task struct {
	ID        string     // ID строки чек-листа
	UserID    int64      // Владелец
	Date      string     // День в формате 2006-01-02
	Code      string     // Код задачи из каталога
	Title     string     // Название
	Category  Category   // Направление
	Done      bool       // Выполнена
	DoneAt    *time.Time // Когда выполнена
	CreatedAt time.Time
}

// LeafColor - цвет листа на дереве.
type LeafColor string

const (
	LeafGreen  LeafColor = "green"  // Задача выполнена
	LeafYellow LeafColor = "yellow" // Задача не выполнена
)

// Leaf - лист дерева, одна строка чек-листа за последние 30 дней.
type Leaf struct {
	ChecklistID string
	Date        string
	Color       LeafColor
}

// Fruit - плод за день, в который выполнены все задачи.
type Fruit struct {
	ID        string     // ID плода
	UserID    int64      // Владелец
	Date      string     // За какой день
	Claimed   bool       // Собран
	Points    int64      // Баллы за сбор
	ClaimedAt *time.Time // Когда собран
	CreatedAt time.Time
}

// DayStatus - состояние дня в недельном прогрессе.
type DayStatus string

const (
	DayDone    DayStatus = "done"    // Есть выполненная задача
	DayMissed  DayStatus = "missed"  // День прошёл, ничего не выполнено
	DayPending DayStatus = "pending" // Сегодня или будущее
)

// WeekDay - один день недели в недельном прогрессе.
type WeekDay struct {
	Date   time.Time
	Status DayStatus
}

// View - состояние дерева пользователя.
type View struct {
	Leaves    []Leaf
	Fruits    []*Fruit // Несобранные плоды
	Harvested int      // Собрано плодов за всё время
	Points    int64    // Баллы дерева = собрано × цена плода
}

// Milestone - награда за серию дней с задачами.
type Milestone struct {
	Current int    // Текущая серия, не больше Target
	Target  int    // Нужная серия
	Points  int64  // Награда
	Period  string // Период, в котором награду можно получить (2006-01)
	Claimed bool   // Уже получена в этом периоде
	Ready   bool   // Можно получить
}
