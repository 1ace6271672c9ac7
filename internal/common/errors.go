// Package common - errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации - ввод отклоняется до любого запроса к хранилищу
var (
	// ErrInvalidWeight - вес не число или не положительный
	ErrInvalidWeight = errors.New("вес должен быть положительным числом")
	// ErrInvalidDay - номер дня вне диапазона 1..90
	ErrInvalidDay = errors.New("номер дня должен быть от 1 до 90")
	// ErrInvalidMonth - номер месяца вне диапазона 1..3
	ErrInvalidMonth = errors.New("номер месяца должен быть от 1 до 3")
	// ErrEmptyPhoto - пустая ссылка на фото
	ErrEmptyPhoto = errors.New("фото не приложено")
	// ErrInvalidAmount - некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
)

// Ошибки предусловий - состояние не меняется
var (
	// ErrDayLocked - день ещё не наступил
	ErrDayLocked = errors.New("этот день ещё не наступил")
	// ErrAlreadyClaimed - бонус уже получен
	ErrAlreadyClaimed = errors.New("бонус уже получен")
	// ErrNotEligible - условия получения бонуса не выполнены
	ErrNotEligible = errors.New("условия для получения бонуса не выполнены")
	// ErrNoWaste - попытка начать ферментацию без отходов
	ErrNoWaste = errors.New("сначала добавьте органические отходы")
	// ErrAlreadyStarted - ферментация уже запущена
	ErrAlreadyStarted = errors.New("ферментация уже запущена")
	// ErrFermentationStarted - отходы нельзя добавлять после старта
	ErrFermentationStarted = errors.New("ферментация уже идёт, новые отходы добавить нельзя")
	// ErrActiveProjectExists - у пользователя уже есть незавершённый проект
	ErrActiveProjectExists = errors.New("у вас уже есть незавершённый проект")
	// ErrTimelineInactive - таймлайн не активен (ферментация не запущена)
	ErrTimelineInactive = errors.New("таймлайн ещё не начался")
	// ErrInvalidTransition - переход статуса назад или через шаг
	ErrInvalidTransition = errors.New("недопустимая смена статуса проекта")
	// ErrInsufficientBalance - недостаточно баллов на счёте
	ErrInsufficientBalance = errors.New("недостаточно баллов на счёте")
)

// Ошибки поиска
var (
	// ErrNoProject - у пользователя нет активного проекта
	ErrNoProject = errors.New("проект не найден")
	// ErrNotFound - запись не найдена в хранилище
	ErrNotFound = errors.New("запись не найдена")
	// ErrUserNotFound - пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки транспорта и бэкенда
var (
	// ErrBackend - бэкенд вернул ошибку или недоступен
	ErrBackend = errors.New("сервер недоступен, попробуйте позже")
	// ErrUnauthorized - бэкенд отклонил токен
	ErrUnauthorized = errors.New("требуется авторизация")
	// ErrUnsupported - операция не поддерживается этим хранилищем
	ErrUnsupported = errors.New("операция не поддерживается")
)

// Ошибки админки
var (
	// ErrNotAdmin - пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword - неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts - слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired - сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)

// userFacing - ошибки, текст которых можно показывать пользователю как есть.
var userFacing = []error{
	ErrInvalidWeight, ErrInvalidDay, ErrInvalidMonth, ErrEmptyPhoto, ErrInvalidAmount,
	ErrDayLocked, ErrAlreadyClaimed, ErrNotEligible, ErrNoWaste, ErrAlreadyStarted,
	ErrFermentationStarted, ErrActiveProjectExists, ErrTimelineInactive, ErrInvalidTransition,
	ErrInsufficientBalance, ErrNoProject, ErrNotFound, ErrUserNotFound,
	ErrBackend, ErrUnauthorized, ErrUnsupported,
	ErrNotAdmin, ErrWrongPassword, ErrTooManyAttempts, ErrSessionExpired,
}

// UserMessage возвращает текст для пользователя, если err - одна из известных ошибок.
// ok=false означает внутреннюю ошибку: её нужно залогировать и ответить общим текстом.
func UserMessage(err error) (msg string, ok bool) {
	for _, known := range userFacing {
		if errors.Is(err, known) {
			return known.Error(), true
		}
	}
	return "", false
}
