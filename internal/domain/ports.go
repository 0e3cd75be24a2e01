package domain

import (
	"context"
	"time"
)

// Table — содержимое одной таблицы: заголовок и строки ячеек.
type Table struct {
	Header []string
	Rows   [][]string
}

// TableStore хранит таблицы целиком: чтение и запись всегда полные.
type TableStore interface {
	// ReadTable возвращает всю таблицу. Ошибки оборачивают ErrStorageUnavailable.
	ReadTable(ctx context.Context, name string) (Table, error)
	// WriteTable заменяет таблицу целиком. Ошибки оборачивают ErrStorageWriteFailed.
	WriteTable(ctx context.Context, name string, table Table) error
	// EnsureTable создаёт пустую таблицу с заголовком, если её ещё нет.
	EnsureTable(ctx context.Context, name string, header []string) error
	// Ping проверяет доступность хранилища.
	Ping(ctx context.Context) error
}

// ChangeAction — вид изменения записи.
type ChangeAction string

const (
	ChangeCreated  ChangeAction = "created"
	ChangeReplaced ChangeAction = "replaced"
	ChangePatched  ChangeAction = "patched"
	ChangeDeleted  ChangeAction = "deleted"
)

// ChangeEvent описывает успешную мутацию коллекции.
type ChangeEvent struct {
	Collection string
	Action     ChangeAction
	RecordID   string
	Record     map[string]any
	OccurredAt time.Time
}

// ChangePublisher публикует события изменений наружу.
type ChangePublisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}
