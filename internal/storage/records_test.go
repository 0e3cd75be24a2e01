package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/memory"
)

func TestDecodeCoercesIntegersAndKeepsExtras(t *testing.T) {
	table := domain.Table{
		Header: []string{"COSTUME_ID", "COSTUME_NAME", "TYPE", "SIZE", "AVAILABLE", "SHOP_ID", "OFFER_ID"},
		Rows: [][]string{
			{"c-1", "Pirate", "Adult", "M", "4", "1", "o-1"},
			{"c-2", "Witch", "Kids", "S", "", "2", ""},
		},
	}

	costumes, err := storage.Decode(domain.CostumeSchema, table, domain.NewCostume)
	require.NoError(t, err)
	require.Len(t, costumes, 2)

	assert.Equal(t, int64(4), costumes[0].Available)
	assert.Equal(t, int64(1), costumes[0].ShopID)
	offerID, ok := costumes[0].Extra("OFFER_ID")
	require.True(t, ok)
	assert.Equal(t, "o-1", offerID)

	// пустая целая ячейка читается как 0
	assert.Equal(t, int64(0), costumes[1].Available)
}

func TestDecodeFailures(t *testing.T) {
	cases := map[string]domain.Table{
		"non numeric integer": {
			Header: domain.ShopSchema.Header(),
			Rows:   [][]string{{"one", "Bal", "Kraków", "Rynek 1", "123"}},
		},
		"missing declared column": {
			Header: []string{"SHOP_ID", "SHOP_NAME"},
			Rows:   [][]string{{"1", "Bal"}},
		},
		"ragged row": {
			Header: domain.ShopSchema.Header(),
			Rows:   [][]string{{"1", "Bal"}},
		},
	}
	for name, table := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := storage.Decode(domain.ShopSchema, table, domain.NewShop)
			assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
		})
	}
}

func TestDecodeEmptyTable(t *testing.T) {
	shops, err := storage.Decode(domain.ShopSchema, domain.Table{}, domain.NewShop)
	require.NoError(t, err)
	assert.Empty(t, shops)
}

func TestEncodeWritesSchemaOrderThenExtras(t *testing.T) {
	a := &domain.Costume{ID: "c-1", Name: "Pirate", Type: "Adult", Size: "M", Available: 3, ShopID: 1}
	a.SetExtra("OFFER_ID", "o-1")
	b := &domain.Costume{ID: "c-2", Name: "Witch", Type: "Kids", Size: "S", Available: 1, ShopID: 2}

	table := storage.Encode(domain.CostumeSchema, []*domain.Costume{a, b})
	assert.Equal(t, []string{"COSTUME_ID", "COSTUME_NAME", "TYPE", "SIZE", "AVAILABLE", "SHOP_ID", "OFFER_ID"}, table.Header)
	assert.Equal(t, []string{"c-1", "Pirate", "Adult", "M", "3", "1", "o-1"}, table.Rows[0])
	assert.Equal(t, []string{"c-2", "Witch", "Kids", "S", "1", "2", ""}, table.Rows[1])
}

func TestRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(memory.NewTableStore(), domain.OfferSchema, domain.NewOffer)
	require.NoError(t, repo.Ensure(ctx))

	offers, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, offers)

	in := []*domain.Offer{
		{ID: "o-1", ShopID: 1, Discount: "20%", Title: "Halloween", Description: "Masks, wigs"},
		{ID: "o-2", ShopID: 2, Discount: "5%", Title: "Carnival", Description: `Say "hi"`},
	}
	require.NoError(t, repo.Save(ctx, in))

	out, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
