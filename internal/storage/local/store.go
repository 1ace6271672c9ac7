// Package local хранит проекты и баллы в локальном KV-хранилище устройства.
// Каждая сущность лежит под фиксированным ключом, значения кодируются в JSON.
//
// Ключи:
//
//	ecoEnzymeProjects_<user>     список проектов пользователя
//	ecoEnzymeOwner_<project>     владелец проекта
//	ecoEnzymeJournal_<project>   журнал отходов
//	ecoEnzymeTimeline_<project>  отметки дней
//	ecoEnzymePhotos_<project>    фото за месяцы
//	ecoEnzymePoints_<user>       баланс баллов
//	ecoEnzymeLedger_<user>       история операций
package local

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"

	"serotonyl.ru/eco-bot/internal/storage/kv"
)

// Префиксы ключей
const (
	keyProjects = "ecoEnzymeProjects_"
	keyOwner    = "ecoEnzymeOwner_"
	keyJournal  = "ecoEnzymeJournal_"
	keyTimeline = "ecoEnzymeTimeline_"
	keyPhotos   = "ecoEnzymePhotos_"
	keyPoints   = "ecoEnzymePoints_"
	keyLedger   = "ecoEnzymeLedger_"
)

// Store реализует project.Repository и economy.Repository поверх kv.Store.
// Все изменения идут под одним мьютексом: чтение, изменение и запись
// значения не пересекаются с другими операциями этого процесса.
// Операция, которая меняет несколько ключей, пишет их одним kv.Batch.
type Store struct {
	kv kv.Store
	mu sync.Mutex
}

// New создаёт хранилище поверх KV.
func New(store kv.Store) *Store {
	return &Store{kv: store}
}

func userKey(prefix string, userID int64) string {
	return prefix + strconv.FormatInt(userID, 10)
}

// load читает значение ключа в dst. Отсутствующий ключ оставляет dst нулевым.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := sonic.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("разбор %q: %w", key, err)
	}
	return true, nil
}

// save кодирует value и пишет под ключ.
func (s *Store) save(ctx context.Context, key string, value any) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("кодирование %q: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

// stage кодирует value и добавляет запись в пакет.
func stage(b *kv.Batch, key string, value any) error {
	raw, err := sonic.Marshal(value)
	if err != nil {
		return fmt.Errorf("кодирование %q: %w", key, err)
	}
	b.Set(key, raw)
	return nil
}
