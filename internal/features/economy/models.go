// Package economy управляет эко-баллами: баланс, история операций
// и обмен баллов на ваучеры.
// models.go описывает структуры для балансов, транзакций и ваучеров.
package economy

import (
	"strings"
	"time"
)

// Transaction представляет одну операцию с баллами.
// Все движения баллов (бонусы, урожай, обмен, выдача админом) записываются сюда.
type Transaction struct {
	ID              int64     // ID транзакции
	UserID          int64     // Чей счёт
	Amount          int64     // Сумма: > 0 начисление, < 0 списание
	TransactionType string    // Тип: 'eco_claim', 'tree_fruit', 'voucher', и т.д.
	Description     string    // Описание для отображения
	CreatedAt       time.Time // Время транзакции
}

// TransactionTypes - допустимые типы транзакций
const (
	TxTypeEcoClaim      = "eco_claim"      // Итоговый бонус эко-энзима
	TxTypeTreeFruit     = "tree_fruit"     // Собранный плод дерева
	TxTypeTreeMilestone = "tree_milestone" // Награда за серию задач
	TxTypeVoucher       = "voucher"        // Обмен на ваучер
	TxTypeAdminGive     = "admin_give"     // Выдача админом
	TxTypeAdminTake     = "admin_take"     // Изъятие админом
)

// Voucher - позиция каталога, которую можно получить за баллы.
type Voucher struct {
	Code  string // Код для команды !обменять
	Title string // Название
	Cost  int64  // Цена в баллах
}

// Catalog - фиксированный каталог ваучеров.
var Catalog = []Voucher{
	{Code: "seeds", Title: "Набор семян для огорода", Cost: 50},
	{Code: "cup", Title: "Многоразовый стакан", Cost: 120},
	{Code: "bag", Title: "Эко-сумка из переработанного хлопка", Cost: 200},
	{Code: "tree", Title: "Посадка дерева от вашего имени", Cost: 300},
}

// FindVoucher ищет ваучер по коду без учёта регистра.
func FindVoucher(code string) (Voucher, bool) {
	for _, v := range Catalog {
		if strings.EqualFold(v.Code, strings.TrimSpace(code)) {
			return v, true
		}
	}
	return Voucher{}, false
}

// Redemption - выданный ваучер.
type Redemption struct {
	Voucher Voucher
	Code    string // Уникальный код для получения
	Balance int64  // Баланс после списания
}
