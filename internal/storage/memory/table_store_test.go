package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/memory"
)

func TestTableStore_EnsureReadWrite(t *testing.T) {
	ctx := context.Background()
	store := memory.NewTableStore()

	if _, err := store.ReadTable(ctx, "shops"); !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable for missing table, got %v", err)
	}

	if err := store.EnsureTable(ctx, "shops", []string{"SHOP_ID", "SHOP_NAME"}); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	table, err := store.ReadTable(ctx, "shops")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(table.Header) != 2 || len(table.Rows) != 0 {
		t.Fatalf("unexpected table after ensure: %+v", table)
	}

	written := domain.Table{Header: []string{"SHOP_ID", "SHOP_NAME"}, Rows: [][]string{{"1", "Bal"}}}
	if err := store.WriteTable(ctx, "shops", written); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	// мутация исходной таблицы не должна попасть в хранилище
	written.Rows[0][1] = "Changed"

	table, err = store.ReadTable(ctx, "shops")
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if table.Rows[0][1] != "Bal" {
		t.Fatalf("expected stored copy to be isolated, got %q", table.Rows[0][1])
	}

	// повторный ensure не затирает данные
	if err := store.EnsureTable(ctx, "shops", []string{"SHOP_ID"}); err != nil {
		t.Fatalf("ensure failed: %v", err)
	}
	table, _ = store.ReadTable(ctx, "shops")
	if len(table.Rows) != 1 {
		t.Fatalf("expected rows to survive ensure, got %d", len(table.Rows))
	}
}

func TestTableStore_WriteHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := memory.NewTableStore().WriteTable(ctx, "shops", domain.Table{})
	if !errors.Is(err, domain.ErrStorageWriteFailed) {
		t.Fatalf("expected ErrStorageWriteFailed, got %v", err)
	}
}
