// Package keyring хранит токен удалённого бэкенда в системном хранилище
// секретов. Токен привязан к адресу бэкенда: для разных адресов
// хранятся разные токены.
package keyring

import (
	"errors"
	"fmt"
	"strings"

	gokeyring "github.com/zalando/go-keyring"
)

// Service - имя сервиса в системном хранилище.
const Service = "ecoctl"

var (
	// ErrNotFound - токен для адреса не сохранён
	ErrNotFound = errors.New("токен не найден, выполните ecoctl login <токен>")
	// ErrUnavailable - системное хранилище недоступно
	ErrUnavailable = errors.New("системное хранилище секретов недоступно")
)

// account нормализует адрес бэкенда: регистр и завершающий слэш не важны.
func account(baseURL string) string {
	return strings.TrimRight(strings.ToLower(strings.TrimSpace(baseURL)), "/")
}

// GetToken возвращает токен для адреса бэкенда.
func GetToken(baseURL string) (string, error) {
	token, err := gokeyring.Get(Service, account(baseURL))
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

// SetToken сохраняет токен для адреса бэкенда.
func SetToken(baseURL, token string) error {
	if strings.TrimSpace(baseURL) == "" {
		return errors.New("адрес бэкенда не указан")
	}
	if strings.TrimSpace(token) == "" {
		return errors.New("токен не может быть пустым")
	}
	if err := gokeyring.Set(Service, account(baseURL), token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// DeleteToken удаляет токен. Отсутствующий токен даёт ErrNotFound.
func DeleteToken(baseURL string) error {
	err := gokeyring.Delete(Service, account(baseURL))
	if err != nil {
		if errors.Is(err, gokeyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
