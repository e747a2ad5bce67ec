package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkade-os/nftd/internal/core/application"
	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/arkade-os/nftd/internal/core/ports"
	"github.com/arkade-os/nftd/internal/infrastructure/attestation"
	inmemoryledger "github.com/arkade-os/nftd/internal/infrastructure/currency/inmemory"
	redisledger "github.com/arkade-os/nftd/internal/infrastructure/currency/redis"
	"github.com/arkade-os/nftd/internal/infrastructure/db"
	"github.com/arkade-os/nftd/internal/infrastructure/scheduler/chainclock"
	timescheduler "github.com/arkade-os/nftd/internal/infrastructure/scheduler/gocron"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	supportedEventDbs = supportedType{
		"badger":   {},
		"postgres": {},
	}
	supportedDbs = supportedType{
		"badger":   {},
		"sqlite":   {},
		"postgres": {},
	}
	supportedSchedulers = supportedType{
		"gocron":     {},
		"chainclock": {},
	}
	supportedCurrencies = supportedType{
		"inmemory": {},
		"redis":    {},
	}
)

type Config struct {
	Datadir  string
	Port     uint32
	LogLevel int

	ChainId            uint64
	AdminAddress       string
	BaseURI            string
	AutoSettle         bool
	MinAuctionDuration int64

	DbType      string
	EventDbType string
	DbDir       string
	DbUrl       string
	EventDbUrl  string
	EventDbDir  string

	CurrencyType      string
	RedisUrl          string
	RedisNumOfRetries int

	SchedulerType string
	ChainRpcUrl   string

	repo      ports.RepoManager
	ledger    ports.CurrencyLedger
	scheduler ports.SchedulerService
	verifier  ports.AttestationVerifier
	svc       application.Service
}

const envPrefix = "NFTD_"

func env(name string) []string {
	return []string{envPrefix + name}
}

var (
	defaultDatadir           = appDataDir()
	defaultPort              = uint(7170)
	defaultLogLevel          = 4
	defaultDbType            = "sqlite"
	defaultEventDbType       = "badger"
	defaultCurrencyType      = "inmemory"
	defaultRedisNumOfRetries = 10
	defaultSchedulerType     = "gocron"

	Datadir = &cli.StringFlag{
		Usage: "directory to store the daemon data",
		Name:  "datadir", EnvVars: env("DATADIR"),
		Value: defaultDatadir,
	}
	Port = &cli.UintFlag{
		Usage: "port of the JSON-RPC interface",
		Name:  "port", EnvVars: env("PORT"),
		Value: defaultPort,
	}
	LogLevel = &cli.IntFlag{
		Usage: "logging level, from 0 (panic) to 6 (trace)",
		Name:  "log-level", EnvVars: env("LOG_LEVEL"),
		Value: defaultLogLevel,
	}
	ChainId = &cli.Uint64Flag{
		Usage: "id of the chain this instance serves",
		Name:  "chain-id", EnvVars: env("CHAIN_ID"),
	}
	AdminAddress = &cli.StringFlag{
		Usage: "address granted the admin role at bootstrap",
		Name:  "admin-address", EnvVars: env("ADMIN_ADDRESS"),
	}
	BaseURI = &cli.StringFlag{
		Usage: "prefix prepended to token URIs",
		Name:  "base-uri", EnvVars: env("BASE_URI"),
	}
	DbType = &cli.StringFlag{
		Usage: "data store type: " + supportedDbs.String(),
		Name:  "db-type", EnvVars: env("DB_TYPE"),
		Value: defaultDbType,
	}
	DbUrl = &cli.StringFlag{
		Usage: "postgres connection url of the data store",
		Name:  "pg-db-url", EnvVars: env("PG_DB_URL"),
	}
	EventDbType = &cli.StringFlag{
		Usage: "event store type: " + supportedEventDbs.String(),
		Name:  "event-db-type", EnvVars: env("EVENT_DB_TYPE"),
		Value: defaultEventDbType,
	}
	EventDbUrl = &cli.StringFlag{
		Usage: "postgres connection url of the event store",
		Name:  "pg-event-db-url", EnvVars: env("PG_EVENT_DB_URL"),
	}
	CurrencyType = &cli.StringFlag{
		Usage: "currency ledger type: " + supportedCurrencies.String(),
		Name:  "currency-type", EnvVars: env("CURRENCY_TYPE"),
		Value: defaultCurrencyType,
	}
	RedisUrl = &cli.StringFlag{
		Usage: "redis url of the currency ledger",
		Name:  "redis-url", EnvVars: env("REDIS_URL"),
	}
	RedisNumOfRetries = &cli.IntFlag{
		Usage: "max number of retries of a conflicting ledger transaction",
		Name:  "redis-num-of-retries", EnvVars: env("REDIS_NUM_OF_RETRIES"),
		Value: defaultRedisNumOfRetries,
	}
	SchedulerType = &cli.StringFlag{
		Usage: "scheduler type: " + supportedSchedulers.String(),
		Name:  "scheduler-type", EnvVars: env("SCHEDULER_TYPE"),
		Value: defaultSchedulerType,
	}
	ChainRpcUrl = &cli.StringFlag{
		Usage: "JSON-RPC url of the chain node, used by the chainclock scheduler",
		Name:  "chain-rpc-url", EnvVars: env("CHAIN_RPC_URL"),
	}
	AutoSettle = &cli.BoolFlag{
		Usage: "settle auctions automatically once they end",
		Name:  "auto-settle", EnvVars: env("AUTO_SETTLE"),
	}
	MinAuctionDuration = &cli.Int64Flag{
		Usage: "min auction duration in seconds",
		Name:  "min-auction-duration", EnvVars: env("MIN_AUCTION_DURATION"),
		Value: domain.MinAuctionDuration,
	}
)

var Flags = []cli.Flag{
	Datadir,
	Port,
	LogLevel,
	ChainId,
	AdminAddress,
	BaseURI,
	DbType,
	DbUrl,
	EventDbType,
	EventDbUrl,
	CurrencyType,
	RedisUrl,
	RedisNumOfRetries,
	SchedulerType,
	ChainRpcUrl,
	AutoSettle,
	MinAuctionDuration,
}

func LoadConfig(c *cli.Context) (*Config, error) {
	if err := initDatadir(c); err != nil {
		return nil, fmt.Errorf("failed to create datadir: %s", err)
	}

	dbPath := filepath.Join(c.String(Datadir.Name), "db")

	var eventDbUrl string
	if c.String(EventDbType.Name) == "postgres" {
		eventDbUrl = c.String(EventDbUrl.Name)
		if eventDbUrl == "" {
			return nil, fmt.Errorf("event db type set to 'postgres' but event db url is missing")
		}
	}

	var dbUrl string
	if c.String(DbType.Name) == "postgres" {
		dbUrl = c.String(DbUrl.Name)
		if dbUrl == "" {
			return nil, fmt.Errorf("db type set to 'postgres' but db url is missing")
		}
	}

	var redisUrl string
	if c.String(CurrencyType.Name) == "redis" {
		redisUrl = c.String(RedisUrl.Name)
		if redisUrl == "" {
			return nil, fmt.Errorf("currency type set to 'redis' but redis url is missing")
		}
	}

	var chainRpcUrl string
	if c.String(SchedulerType.Name) == "chainclock" {
		chainRpcUrl = c.String(ChainRpcUrl.Name)
		if chainRpcUrl == "" {
			return nil, fmt.Errorf("scheduler type set to 'chainclock' but chain rpc url is missing")
		}
	}

	return &Config{
		Datadir:            c.String(Datadir.Name),
		Port:               uint32(c.Uint(Port.Name)),
		LogLevel:           c.Int(LogLevel.Name),
		ChainId:            c.Uint64(ChainId.Name),
		AdminAddress:       c.String(AdminAddress.Name),
		BaseURI:            c.String(BaseURI.Name),
		AutoSettle:         c.Bool(AutoSettle.Name),
		MinAuctionDuration: c.Int64(MinAuctionDuration.Name),
		DbType:             c.String(DbType.Name),
		EventDbType:        c.String(EventDbType.Name),
		DbDir:              dbPath,
		DbUrl:              dbUrl,
		EventDbDir:         dbPath,
		EventDbUrl:         eventDbUrl,
		CurrencyType:       c.String(CurrencyType.Name),
		RedisUrl:           redisUrl,
		RedisNumOfRetries:  c.Int(RedisNumOfRetries.Name),
		SchedulerType:      c.String(SchedulerType.Name),
		ChainRpcUrl:        chainRpcUrl,
	}, nil
}

func (c *Config) Validate() error {
	if !supportedEventDbs.supports(c.EventDbType) {
		return fmt.Errorf(
			"event db type not supported, please select one of: %s",
			supportedEventDbs,
		)
	}
	if !supportedDbs.supports(c.DbType) {
		return fmt.Errorf("db type not supported, please select one of: %s", supportedDbs)
	}
	if !supportedSchedulers.supports(c.SchedulerType) {
		return fmt.Errorf(
			"scheduler type not supported, please select one of: %s",
			supportedSchedulers,
		)
	}
	if !supportedCurrencies.supports(c.CurrencyType) {
		return fmt.Errorf(
			"currency type not supported, please select one of: %s",
			supportedCurrencies,
		)
	}
	if c.ChainId == 0 {
		return fmt.Errorf("missing chain id")
	}
	if _, err := domain.ParseAddress(c.AdminAddress); err != nil {
		return fmt.Errorf("invalid admin address: %s", err)
	}
	if c.MinAuctionDuration <= 0 {
		return fmt.Errorf("min auction duration must be greater than 0")
	}
	if c.MinAuctionDuration < domain.MinAuctionDuration {
		log.Warnf(
			"min auction duration set to %ds, lower than the default %ds",
			c.MinAuctionDuration, domain.MinAuctionDuration,
		)
	}

	if err := c.repoManager(); err != nil {
		return err
	}
	if err := c.ledgerService(); err != nil {
		return err
	}
	if err := c.schedulerService(); err != nil {
		return err
	}
	c.verifier = attestation.NewVerifier()
	return c.appService()
}

func (c *Config) AppService() (application.Service, error) {
	if c.svc == nil {
		if err := c.appService(); err != nil {
			return nil, err
		}
	}
	return c.svc, nil
}

func (c *Config) Verifier() ports.AttestationVerifier {
	return c.verifier
}

func (c *Config) RepoManager() ports.RepoManager {
	return c.repo
}

func (c *Config) Scheduler() ports.SchedulerService {
	return c.scheduler
}

func (c *Config) Ledger() ports.CurrencyLedger {
	return c.ledger
}

func (c *Config) repoManager() error {
	var eventStoreConfig []interface{}
	var dataStoreConfig []interface{}
	logger := log.New()
	logger.SetLevel(log.WarnLevel)

	switch c.EventDbType {
	case "badger":
		eventStoreConfig = []interface{}{c.EventDbDir, logger}
	case "postgres":
		eventStoreConfig = []interface{}{c.EventDbUrl, true}
	default:
		return fmt.Errorf("unknown event db type")
	}

	switch c.DbType {
	case "badger":
		dataStoreConfig = []interface{}{c.DbDir, logger}
	case "sqlite":
		if err := makeDirectoryIfNotExists(c.DbDir); err != nil {
			return err
		}
		dataStoreConfig = []interface{}{c.DbDir}
	case "postgres":
		dataStoreConfig = []interface{}{c.DbUrl, true}
	default:
		return fmt.Errorf("unknown db type")
	}

	svc, err := db.NewService(db.ServiceConfig{
		EventStoreType:   c.EventDbType,
		DataStoreType:    c.DbType,
		EventStoreConfig: eventStoreConfig,
		DataStoreConfig:  dataStoreConfig,
	})
	if err != nil {
		return err
	}

	c.repo = svc
	return nil
}

func (c *Config) ledgerService() error {
	var ledger ports.CurrencyLedger
	switch c.CurrencyType {
	case "inmemory":
		ledger = inmemoryledger.NewLedger()
	case "redis":
		redisOpts, err := redis.ParseURL(c.RedisUrl)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		ledger = redisledger.NewLedger(rdb, c.RedisNumOfRetries)
	default:
		return fmt.Errorf("unknown currency type")
	}

	c.ledger = ledger
	return nil
}

func (c *Config) schedulerService() error {
	var svc ports.SchedulerService
	var err error
	switch c.SchedulerType {
	case "gocron":
		svc = timescheduler.NewScheduler()
	case "chainclock":
		svc, err = chainclock.NewScheduler(c.ChainRpcUrl)
	default:
		err = fmt.Errorf("unknown scheduler type")
	}
	if err != nil {
		return err
	}

	c.scheduler = svc
	return nil
}

func (c *Config) appService() error {
	svc, err := application.NewService(
		application.Config{
			ChainId:            c.ChainId,
			AdminAddress:       c.AdminAddress,
			BaseURI:            c.BaseURI,
			MinAuctionDuration: c.MinAuctionDuration,
			AutoSettle:         c.AutoSettle,
		},
		c.repo, c.ledger, c.scheduler, c.verifier,
	)
	if err != nil {
		return err
	}

	c.svc = svc
	return nil
}

func initDatadir(c *cli.Context) error {
	datadir := c.String(Datadir.Name)
	return makeDirectoryIfNotExists(datadir)
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0o755)
	}
	return nil
}

func appDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".nftd"
	}
	return filepath.Join(home, ".nftd")
}

type supportedType map[string]struct{}

func (t supportedType) String() string {
	types := make([]string, 0, len(t))
	for tt := range t {
		types = append(types, tt)
	}
	return strings.Join(types, " | ")
}

func (t supportedType) supports(typeStr string) bool {
	_, ok := t[typeStr]
	return ok
}
