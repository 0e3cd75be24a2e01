// Package storage переводит таблицы хранилища в типизированные записи и обратно.
package storage

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// Repository читает и пишет коллекцию записей одного вида поверх TableStore.
// Каждая операция работает с таблицей целиком.
type Repository[R domain.Record] struct {
	tables    domain.TableStore
	schema    domain.Schema
	newRecord func() R
}

// NewRepository создаёт репозиторий для вида с указанной схемой.
func NewRepository[R domain.Record](tables domain.TableStore, schema domain.Schema, newRecord func() R) *Repository[R] {
	return &Repository[R]{tables: tables, schema: schema, newRecord: newRecord}
}

// Schema возвращает схему вида.
func (r *Repository[R]) Schema() domain.Schema { return r.schema }

// Ensure создаёт пустую таблицу с заголовком, если её ещё нет.
func (r *Repository[R]) Ensure(ctx context.Context) error {
	return r.tables.EnsureTable(ctx, r.schema.Collection, r.schema.Header())
}

// Load загружает всю коллекцию в порядке строк таблицы.
func (r *Repository[R]) Load(ctx context.Context) ([]R, error) {
	table, err := r.tables.ReadTable(ctx, r.schema.Collection)
	if err != nil {
		return nil, err
	}
	return Decode(r.schema, table, r.newRecord)
}

// Save перезаписывает таблицу целиком.
func (r *Repository[R]) Save(ctx context.Context, records []R) error {
	return r.tables.WriteTable(ctx, r.schema.Collection, Encode(r.schema, records))
}

// Decode разбирает таблицу в записи. Объявленные целые колонки приводятся к int64,
// колонки вне схемы сохраняются как текст.
func Decode[R domain.Record](schema domain.Schema, table domain.Table, newRecord func() R) ([]R, error) {
	if len(table.Header) == 0 {
		if len(table.Rows) > 0 {
			return nil, fmt.Errorf("%w: %s: rows without header", domain.ErrStorageUnavailable, schema.Collection)
		}
		return []R{}, nil
	}

	declared := make(map[int]domain.Column, len(table.Header))
	seen := make(map[string]bool, len(table.Header))
	for i, name := range table.Header {
		if col, ok := schema.Column(name); ok && col.Name == name {
			declared[i] = col
			seen[col.Name] = true
		}
	}
	for _, col := range schema.Columns {
		if !seen[col.Name] {
			return nil, fmt.Errorf("%w: %s: missing column %s", domain.ErrStorageUnavailable, schema.Collection, col.Name)
		}
	}

	records := make([]R, 0, len(table.Rows))
	for n, row := range table.Rows {
		if len(row) != len(table.Header) {
			return nil, fmt.Errorf("%w: %s: row %d has %d cells, header has %d",
				domain.ErrStorageUnavailable, schema.Collection, n+1, len(row), len(table.Header))
		}
		rec := newRecord()
		for i, cell := range row {
			col, ok := declared[i]
			if !ok {
				rec.SetExtra(table.Header[i], cell)
				continue
			}
			v, err := domain.ParseValue(col.Type, cell)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: row %d column %s: %v",
					domain.ErrStorageUnavailable, schema.Collection, n+1, col.Name, err)
			}
			if err := rec.SetField(col.Name, v); err != nil {
				return nil, fmt.Errorf("%w: %s: row %d: %v", domain.ErrStorageUnavailable, schema.Collection, n+1, err)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Encode собирает таблицу: сначала колонки схемы, затем дополнительные в порядке появления.
func Encode[R domain.Record](schema domain.Schema, records []R) domain.Table {
	header := schema.Header()
	known := make(map[string]bool, len(header))
	for _, name := range header {
		known[name] = true
	}
	for _, rec := range records {
		for _, name := range rec.ExtraNames() {
			if !known[name] {
				known[name] = true
				header = append(header, name)
			}
		}
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		row := make([]string, len(header))
		for i, name := range header {
			if i < len(schema.Columns) {
				v, _ := rec.Field(name)
				row[i] = v.String()
				continue
			}
			row[i], _ = rec.Extra(name)
		}
		rows = append(rows, row)
	}
	return domain.Table{Header: header, Rows: rows}
}
