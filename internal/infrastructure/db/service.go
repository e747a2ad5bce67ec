package db

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	badgerdb "github.com/arkade-os/nftd/internal/infrastructure/db/badger"
	pgdb "github.com/arkade-os/nftd/internal/infrastructure/db/postgres"
	sqlitedb "github.com/arkade-os/nftd/internal/infrastructure/db/sqlite"
	watermilldb "github.com/arkade-os/nftd/internal/infrastructure/db/watermill"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigration embed.FS

type factory[T any] func(...interface{}) (T, error)

var (
	eventStoreTypes = map[string]factory[domain.EventRepository]{
		"badger":   badgerdb.NewEventRepository,
		"postgres": watermilldb.NewPostgresEventRepository,
	}
	assetStoreTypes = map[string]factory[domain.AssetRepository]{
		"badger":   badgerdb.NewAssetRepository,
		"sqlite":   sqlitedb.NewAssetRepository,
		"postgres": pgdb.NewAssetRepository,
	}
	itemStoreTypes = map[string]factory[domain.ItemRepository]{
		"badger":   badgerdb.NewItemRepository,
		"sqlite":   sqlitedb.NewItemRepository,
		"postgres": pgdb.NewItemRepository,
	}
	auctionStoreTypes = map[string]factory[domain.AuctionRepository]{
		"badger":   badgerdb.NewAuctionRepository,
		"sqlite":   sqlitedb.NewAuctionRepository,
		"postgres": pgdb.NewAuctionRepository,
	}
	swapStoreTypes = map[string]factory[domain.SwapRepository]{
		"badger":   badgerdb.NewSwapRepository,
		"sqlite":   sqlitedb.NewSwapRepository,
		"postgres": pgdb.NewSwapRepository,
	}
	chainStoreTypes = map[string]factory[domain.ChainRepository]{
		"badger":   badgerdb.NewChainRepository,
		"sqlite":   sqlitedb.NewChainRepository,
		"postgres": pgdb.NewChainRepository,
	}
	roleStoreTypes = map[string]factory[domain.RoleRepository]{
		"badger":   badgerdb.NewRoleRepository,
		"sqlite":   sqlitedb.NewRoleRepository,
		"postgres": pgdb.NewRoleRepository,
	}
)

const (
	sqliteDbFile = "sqlite.db"
)

// ServiceConfig selects the backends of the event store and of the data
// (projection) store.
//
// Event store configs: badger takes (baseDir string, logger badger.Logger),
// postgres takes (dsn string, autoCreate bool).
// Data store configs: badger as above, sqlite takes (baseDir string),
// postgres takes (dsn string, autoCreate bool).
type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore   domain.EventRepository
	assetStore   domain.AssetRepository
	itemStore    domain.ItemRepository
	auctionStore domain.AuctionRepository
	swapStore    domain.SwapRepository
	chainStore   domain.ChainRepository
	roleStore    domain.RoleRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("event store type not supported")
	}
	if _, ok := assetStoreTypes[config.DataStoreType]; !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var eventStore domain.EventRepository
	var err error

	switch config.EventStoreType {
	case "badger":
		eventStore, err = eventStoreFactory(config.EventStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
	case "postgres":
		db, err := openPostgres(config.EventStoreConfig)
		if err != nil {
			return nil, err
		}

		eventStore, err = eventStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
	default:
		return nil, fmt.Errorf("unknown event store db type")
	}

	var dataStoreConfig []interface{}
	switch config.DataStoreType {
	case "badger":
		dataStoreConfig = config.DataStoreConfig

	case "postgres":
		db, err := openPostgres(config.DataStoreConfig)
		if err != nil {
			return nil, err
		}

		pgDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}

		source, err := iofs.New(pgMigration, "postgres/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed postgres migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "postgres", pgDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run postgres migrations: %s", err)
		}

		dataStoreConfig = []interface{}{db}

	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}

		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := ":memory:"
		if baseDir != "" {
			dbFile = filepath.Join(baseDir, sqliteDbFile)
		}
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}

		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed migrations: %s", err)
		}

		m, err := migrate.NewWithInstance("iofs", source, "nftdb", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration instance: %s", err)
		}

		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations: %s", err)
		}

		dataStoreConfig = []interface{}{db}
	}

	svc := &service{eventStore: eventStore}
	if svc.assetStore, err = assetStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open asset store: %s", err)
	}
	if svc.itemStore, err = itemStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open item store: %s", err)
	}
	if svc.auctionStore, err = auctionStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open auction store: %s", err)
	}
	if svc.swapStore, err = swapStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open swap store: %s", err)
	}
	if svc.chainStore, err = chainStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open chain store: %s", err)
	}
	if svc.roleStore, err = roleStoreTypes[config.DataStoreType](dataStoreConfig...); err != nil {
		return nil, fmt.Errorf("failed to open role store: %s", err)
	}

	return svc, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Assets() domain.AssetRepository {
	return s.assetStore
}

func (s *service) Items() domain.ItemRepository {
	return s.itemStore
}

func (s *service) Auctions() domain.AuctionRepository {
	return s.auctionStore
}

func (s *service) Swaps() domain.SwapRepository {
	return s.swapStore
}

func (s *service) Chains() domain.ChainRepository {
	return s.chainStore
}

func (s *service) Roles() domain.RoleRepository {
	return s.roleStore
}

func (s *service) Close() {
	s.eventStore.Close()
	s.assetStore.Close()
	s.itemStore.Close()
	s.auctionStore.Close()
	s.swapStore.Close()
	s.chainStore.Close()
	s.roleStore.Close()
}

func openPostgres(config []interface{}) (*sql.DB, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid data store config for postgres")
	}

	dsn, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid DSN for postgres")
	}

	autoCreate, ok := config[1].(bool)
	if !ok {
		return nil, fmt.Errorf("invalid autocreate flag for postgres")
	}

	db, err := pgdb.OpenDb(dsn, autoCreate)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres db: %s", err)
	}
	return db, nil
}
