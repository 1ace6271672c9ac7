// Package kv - локальное хранилище «ключ → значение» для работы без сервера.
// Значения - произвольные байты; структурой ключей управляет storage/local.
package kv

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound - ключа нет в хранилище.
var ErrNotFound = errors.New("kv: ключ не найден")

// Store - хранилище значений по строковым ключам.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Apply применяет пакет целиком или не применяет ничего.
	Apply(ctx context.Context, b *Batch) error
}

// op - одна операция пакета. value=nil означает удаление.
type op struct {
	key    string
	value  []byte
	delete bool
}

// Batch - набор записей и удалений, которые применяются вместе.
// Для одного ключа побеждает последняя операция.
type Batch struct {
	ops []op
}

// NewBatch создаёт пустой пакет.
func NewBatch() *Batch {
	return &Batch{}
}

// Set добавляет запись в пакет.
func (b *Batch) Set(key string, value []byte) {
	b.ops = append(b.ops, op{key: key, value: append([]byte(nil), value...)})
}

// Delete добавляет удаление в пакет.
func (b *Batch) Delete(key string) {
	b.ops = append(b.ops, op{key: key, delete: true})
}

// Len - число операций в пакете.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Keys - ключи пакета в порядке добавления.
func (b *Batch) Keys() []string {
	keys := make([]string, 0, len(b.ops))
	for _, o := range b.ops {
		keys = append(keys, o.key)
	}
	return keys
}

// Memory - хранилище в памяти процесса. Безопасно для конкурентного доступа.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemory создаёт пустое хранилище в памяти.
func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

// Get возвращает копию значения или ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Set сохраняет копию значения.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// Delete удаляет ключ. Отсутствующий ключ не ошибка.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Apply применяет пакет под одной блокировкой.
func (m *Memory) Apply(_ context.Context, b *Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range b.ops {
		if o.delete {
			delete(m.data, o.key)
			continue
		}
		m.data[o.key] = o.value
	}
	return nil
}
