package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
)

// tableStore хранит таблицы в record_tables (заголовок) и record_rows (строки по позициям).
type tableStore struct {
	store *Store
}

// NewTableStore возвращает TableStore поверх PostgreSQL. Схема должна быть применена заранее.
func NewTableStore(store *Store) domain.TableStore {
	return &tableStore{store: store}
}

func (t *tableStore) ReadTable(ctx context.Context, name string) (domain.Table, error) {
	if t.store == nil || t.store.db == nil {
		return domain.Table{}, fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, errNotInitialized)
	}

	var headerRaw []byte
	err := t.store.db.QueryRowContext(ctx,
		`SELECT header FROM record_tables WHERE name = $1`, name,
	).Scan(&headerRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Table{}, fmt.Errorf("%w: table %s does not exist", domain.ErrStorageUnavailable, name)
	}
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read header of %s: %v", domain.ErrStorageUnavailable, name, err)
	}

	table := domain.Table{Rows: [][]string{}}
	if err := json.Unmarshal(headerRaw, &table.Header); err != nil {
		return domain.Table{}, fmt.Errorf("%w: decode header of %s: %v", domain.ErrStorageUnavailable, name, err)
	}

	rows, err := t.store.db.QueryContext(ctx,
		`SELECT cells FROM record_rows WHERE table_name = $1 ORDER BY position`, name)
	if err != nil {
		return domain.Table{}, fmt.Errorf("%w: read rows of %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return domain.Table{}, fmt.Errorf("%w: scan row of %s: %v", domain.ErrStorageUnavailable, name, err)
		}
		var cells []string
		if err := json.Unmarshal(raw, &cells); err != nil {
			return domain.Table{}, fmt.Errorf("%w: decode row of %s: %v", domain.ErrStorageUnavailable, name, err)
		}
		table.Rows = append(table.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return domain.Table{}, fmt.Errorf("%w: iterate rows of %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	return table, nil
}

// WriteTable заменяет заголовок и все строки в одной транзакции.
func (t *tableStore) WriteTable(ctx context.Context, name string, table domain.Table) error {
	if t.store == nil || t.store.db == nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, errNotInitialized)
	}
	if err := t.write(ctx, name, table, true); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrStorageWriteFailed, name, err)
	}
	return nil
}

// EnsureTable создаёт пустую таблицу, если её ещё нет.
func (t *tableStore) EnsureTable(ctx context.Context, name string, header []string) error {
	if t.store == nil || t.store.db == nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, errNotInitialized)
	}
	if err := t.write(ctx, name, domain.Table{Header: header}, false); err != nil {
		return fmt.Errorf("%w: ensure %s: %v", domain.ErrStorageUnavailable, name, err)
	}
	return nil
}

func (t *tableStore) Ping(ctx context.Context) error {
	if err := t.store.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)
	}
	return nil
}

func (t *tableStore) write(ctx context.Context, name string, table domain.Table, overwrite bool) error {
	header, err := json.Marshal(table.Header)
	if err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	tx, err := t.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !overwrite {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO record_tables (name, header) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			name, string(header))
		if err != nil {
			return fmt.Errorf("insert table: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}
		return tx.Commit()
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO record_tables (name, header, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET header = EXCLUDED.header, updated_at = NOW()
	`, name, string(header)); err != nil {
		return fmt.Errorf("upsert table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_rows WHERE table_name = $1`, name); err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	for i, row := range table.Rows {
		cells, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", i+1, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO record_rows (table_name, position, cells) VALUES ($1, $2, $3)`,
			name, i, string(cells)); err != nil {
			return fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

var _ domain.TableStore = (*tableStore)(nil)
