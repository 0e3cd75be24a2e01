package catalog

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage"
)

// Catalog объединяет сервисы трёх коллекций над одним хранилищем таблиц.
type Catalog struct {
	Shops    *Collection[*domain.Shop]
	Costumes *Collection[*domain.Costume]
	Offers   *Collection[*domain.Offer]

	shopRepo    *storage.Repository[*domain.Shop]
	costumeRepo *storage.Repository[*domain.Costume]
	offerRepo   *storage.Repository[*domain.Offer]
	tables      domain.TableStore
}

// New собирает каталог. Магазины всегда нумеруются последовательно;
// стратегия из WithIdentity применяется к костюмам и акциям (по умолчанию — миллисекунды).
func New(tables domain.TableStore, options ...Option) *Catalog {
	opts := Options{}
	for _, option := range options {
		option(&opts)
	}

	shopOpts := opts
	shopOpts.Identity = nil

	c := &Catalog{
		shopRepo:    storage.NewRepository(tables, domain.ShopSchema, domain.NewShop),
		costumeRepo: storage.NewRepository(tables, domain.CostumeSchema, domain.NewCostume),
		offerRepo:   storage.NewRepository(tables, domain.OfferSchema, domain.NewOffer),
		tables:      tables,
	}
	textIdentity := IdentityStrategy(ClockIdentity{Now: opts.Clock})
	c.Shops = newCollection[*domain.Shop](domain.ShopSchema, c.shopRepo, domain.NewShop, SequentialIdentity{}, shopOpts)
	c.Costumes = newCollection[*domain.Costume](domain.CostumeSchema, c.costumeRepo, domain.NewCostume, textIdentity, opts)
	c.Offers = newCollection[*domain.Offer](domain.OfferSchema, c.offerRepo, domain.NewOffer, textIdentity, opts)
	return c
}

// EnsureTables создаёт отсутствующие таблицы с заголовками.
func (c *Catalog) EnsureTables(ctx context.Context) error {
	for _, ensure := range []func(context.Context) error{
		c.shopRepo.Ensure,
		c.costumeRepo.Ensure,
		c.offerRepo.Ensure,
	} {
		if err := ensure(ctx); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}
	}
	return nil
}

// Ping проверяет доступность хранилища.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.tables.Ping(ctx)
}
