package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// tableStoreInMemory — in-memory реализация TableStore для локальной разработки и тестов.
type tableStoreInMemory struct {
	mu     sync.RWMutex
	tables map[string]domain.Table
}

// NewTableStore возвращает пустое in-memory хранилище таблиц.
func NewTableStore() domain.TableStore {
	return &tableStoreInMemory{
		tables: make(map[string]domain.Table),
	}
}

// ReadTable возвращает копию таблицы или ErrStorageUnavailable, если её нет.
func (s *tableStoreInMemory) ReadTable(_ context.Context, name string) (domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[name]
	if !ok {
		return domain.Table{}, fmt.Errorf("%w: table %s does not exist", domain.ErrStorageUnavailable, name)
	}
	return cloneTable(table), nil
}

// WriteTable заменяет таблицу копией переданной.
func (s *tableStoreInMemory) WriteTable(ctx context.Context, name string, table domain.Table) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	// Сохраняем копию, чтобы избежать мутаций извне.
	s.tables[name] = cloneTable(table)
	return nil
}

// EnsureTable создаёт таблицу только с заголовком, если её ещё нет.
func (s *tableStoreInMemory) EnsureTable(_ context.Context, name string, header []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tables[name]; ok {
		return nil
	}
	s.tables[name] = cloneTable(domain.Table{Header: header})
	return nil
}

func (s *tableStoreInMemory) Ping(context.Context) error { return nil }

func cloneTable(t domain.Table) domain.Table {
	out := domain.Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, append([]string(nil), row...))
	}
	return out
}

var _ domain.TableStore = (*tableStoreInMemory)(nil)
