package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/costumeshop/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/costumeshop/internal/health"
	"github.com/vladislavdragonenkov/costumeshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/costumeshop/internal/metrics"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/catalog"
	"github.com/vladislavdragonenkov/costumeshop/internal/service/outbox"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/csvfile"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/costumeshop/internal/storage/postgres"
)

// runtimeDependencies — всё, что собирается до запуска серверов.
type runtimeDependencies struct {
	tables         domain.TableStore
	catalog        *catalog.Catalog
	metrics        *metrics.CatalogMetrics
	producer       *kafka.Producer
	relay          *outbox.Relay
	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies выбирает хранилище, подключает Kafka и собирает каталог.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	tables, closeStorage, err := openTableStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	identity, err := catalog.IdentityByName(cfg.IDStrategy)
	if err != nil {
		_ = closeStorage()
		return nil, err
	}

	deps := &runtimeDependencies{
		tables:  tables,
		metrics: metrics.NewCatalogMetrics(),
	}

	options := []catalog.Option{
		catalog.WithLogger(logger.WithField("layer", "catalog")),
		catalog.WithMetrics(deps.metrics),
		catalog.WithSerializedWrites(cfg.SerializeWrites),
	}
	if cfg.IDStrategy == "uuid" {
		options = append(options, catalog.WithIdentity(identity))
	}

	producer, err := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Warn("continuing without change events")
	}
	if producer != nil {
		deps.producer = producer
		deps.relay = outbox.NewRelay(producer, outbox.WithLogger(logger.WithField("layer", "outbox")))
		options = append(options, catalog.WithPublisher(deps.relay))
	}

	deps.catalog = catalog.New(tables, options...)
	deps.storageChecker = healthcheck.NewPingChecker("storage", deps.catalog, 0, 0)
	deps.closeFn = func() error {
		closeKafka(deps.producer, logger)
		return closeStorage()
	}

	if err := deps.catalog.EnsureTables(ctx); err != nil {
		_ = deps.closeFn()
		return nil, err
	}
	return deps, nil
}

// openTableStore открывает хранилище выбранного драйвера и функцию его закрытия.
func openTableStore(ctx context.Context, cfg Config, logger *log.Entry) (domain.TableStore, func() error, error) {
	noop := func() error { return nil }

	switch cfg.StorageDriver {
	case StorageDriverCSV:
		store, err := csvfile.NewOnDisk(cfg.DataDir, csvfile.WithLogger(logger.WithField("layer", "csv")))
		if err != nil {
			return nil, nil, fmt.Errorf("open csv storage: %w", err)
		}
		logger.WithField("dir", cfg.DataDir).Info("csv storage initialized")
		return store, noop, nil
	case StorageDriverMemory:
		logger.Info("memory storage initialized")
		return memory.NewTableStore(), noop, nil
	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, nil, errors.New("postgres dsn is required for postgres storage")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		logger.Info("postgres storage initialized")
		return postgres.NewTableStore(store), store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
}
