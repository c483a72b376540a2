package app

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/storefront/internal/health"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
	"github.com/vladislavdragonenkov/storefront/internal/storage/postgres"
)

// runtimeDependencies содержит репозитории, выбранные по драйверу хранилища.
// Сессионные корзины всегда живут в памяти, независимо от драйвера.
type runtimeDependencies struct {
	orders       domain.OrderRepository
	carts        domain.CartRepository
	sessionCarts domain.CartRepository
	products     domain.ProductRepository
	outboxRepo   domain.OutboxRepository
	timelineRepo domain.TimelineRepository

	storageChecker healthcheck.Checker
	closeFn        func() error
}

// initRuntimeDependencies создаёт репозитории согласно конфигурации.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory, "":
		logger.Info("using in-memory storage")
		return &runtimeDependencies{
			orders:       memory.NewOrderRepository(),
			carts:        memory.NewCartRepository(),
			sessionCarts: memory.NewCartRepository(),
			products:     memory.NewProductRepository(),
			outboxRepo:   memory.NewOutboxRepository(),
			timelineRepo: memory.NewTimelineRepository(),
		}, nil

	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage driver requires a DSN")
		}

		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}

		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
			logger.Info("postgres migrations applied")
		}

		logger.Info("using postgres storage")
		return &runtimeDependencies{
			orders:         postgres.NewOrderRepository(store),
			carts:          postgres.NewCartRepository(store),
			sessionCarts:   memory.NewCartRepository(),
			products:       postgres.NewProductRepository(store),
			outboxRepo:     postgres.NewOutboxRepository(store),
			timelineRepo:   postgres.NewTimelineRepository(store),
			storageChecker: healthcheck.NewPingChecker("postgres", 2*time.Second, store.Ping),
			closeFn:        store.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}
}

func closeRuntimeDependencies(deps *runtimeDependencies, logger *log.Entry) {
	if deps == nil || deps.closeFn == nil {
		return
	}
	if err := deps.closeFn(); err != nil {
		logger.WithError(err).Warn("failed to close storage")
	}
}
