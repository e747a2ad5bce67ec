package config_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arkade-os/nftd/internal/config"
	"github.com/arkade-os/nftd/internal/core/domain"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const admin = "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266"

func loadConfig(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var cfg *config.Config
	var loadErr error
	app := cli.NewApp()
	app.Flags = config.Flags
	app.Action = func(c *cli.Context) error {
		cfg, loadErr = config.LoadConfig(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"nftd"}, args...)))
	return cfg, loadErr
}

func TestLoadConfig(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		datadir := t.TempDir()
		cfg, err := loadConfig(t,
			"--datadir", datadir, "--chain-id", "97", "--admin-address", admin,
			"--base-uri", "ipfs://", "--auto-settle",
		)
		require.NoError(t, err)
		require.Equal(t, uint64(97), cfg.ChainId)
		require.Equal(t, admin, cfg.AdminAddress)
		require.Equal(t, "ipfs://", cfg.BaseURI)
		require.True(t, cfg.AutoSettle)
		require.Equal(t, domain.MinAuctionDuration, cfg.MinAuctionDuration)
		require.Equal(t, "sqlite", cfg.DbType)
		require.Equal(t, "badger", cfg.EventDbType)
		require.Equal(t, "gocron", cfg.SchedulerType)
		require.Equal(t, "inmemory", cfg.CurrencyType)
		require.Equal(t, filepath.Join(datadir, "db"), cfg.DbDir)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("NFTD_CHAIN_ID", "4")
		t.Setenv("NFTD_PORT", "9000")
		cfg, err := loadConfig(t, "--datadir", t.TempDir())
		require.NoError(t, err)
		require.Equal(t, uint64(4), cfg.ChainId)
		require.Equal(t, uint32(9000), cfg.Port)
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name string
			args []string
		}{
			{name: "postgres without url", args: []string{"--db-type", "postgres"}},
			{name: "postgres events without url", args: []string{"--event-db-type", "postgres"}},
			{name: "redis without url", args: []string{"--currency-type", "redis"}},
			{name: "chainclock without url", args: []string{"--scheduler-type", "chainclock"}},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				args := append([]string{"--datadir", t.TempDir()}, f.args...)
				cfg, err := loadConfig(t, args...)
				require.Error(t, err)
				require.Nil(t, cfg)
			})
		}
	})
}

func validConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		Datadir:            dir,
		ChainId:            4,
		AdminAddress:       admin,
		MinAuctionDuration: domain.MinAuctionDuration,
		DbType:             "badger",
		EventDbType:        "badger",
		DbDir:              filepath.Join(dir, "db"),
		EventDbDir:         filepath.Join(dir, "db"),
		CurrencyType:       "inmemory",
		SchedulerType:      "gocron",
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, dbType := range []string{"badger", "sqlite"} {
			t.Run(dbType, func(t *testing.T) {
				cfg := validConfig(t)
				cfg.DbType = dbType
				require.NoError(t, cfg.Validate())
				t.Cleanup(cfg.RepoManager().Close)

				svc, err := cfg.AppService()
				require.NoError(t, err)
				require.NotNil(t, svc)
				require.NotNil(t, cfg.Verifier())
				require.NotNil(t, cfg.Ledger())

				ok, err := svc.Admin().HasRole(context.Background(), admin, domain.RoleAdmin)
				require.NoError(t, err)
				require.True(t, ok)
			})
		}
	})

	t.Run("invalid", func(t *testing.T) {
		fixtures := []struct {
			name   string
			modify func(*config.Config)
		}{
			{name: "db type", modify: func(c *config.Config) { c.DbType = "mysql" }},
			{name: "event db type", modify: func(c *config.Config) { c.EventDbType = "sqlite" }},
			{name: "scheduler type", modify: func(c *config.Config) { c.SchedulerType = "block" }},
			{name: "currency type", modify: func(c *config.Config) { c.CurrencyType = "erc20" }},
			{name: "chain id", modify: func(c *config.Config) { c.ChainId = 0 }},
			{name: "admin address", modify: func(c *config.Config) { c.AdminAddress = "admin" }},
			{name: "auction duration", modify: func(c *config.Config) { c.MinAuctionDuration = 0 }},
			{name: "redis url", modify: func(c *config.Config) {
				c.CurrencyType = "redis"
				c.RedisUrl = "http://not-redis"
			}},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				cfg := validConfig(t)
				f.modify(cfg)
				err := cfg.Validate()
				require.Error(t, err)
				if repo := cfg.RepoManager(); repo != nil {
					repo.Close()
				}
			})
		}
	})
}
