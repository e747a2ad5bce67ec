package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arkade-os/nftd/internal/config"
	jsonrpcservice "github.com/arkade-os/nftd/internal/interface/jsonrpc"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Version = Version
	app.Name = "nftd"
	app.Usage = "cross-chain NFT marketplace daemon and client"
	app.Flags = config.Flags
	app.Action = runDaemon
	app.Commands = append(
		app.Commands,
		&nftCommand,
		&marketCommand,
		&bridgeCommand,
		&tokenCommand,
		&adminCommand,
		&eventsCommand,
		&chainsCommand,
	)

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

func runDaemon(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx)
	if err != nil {
		return fmt.Errorf("invalid config: %s", err)
	}

	log.SetLevel(log.Level(cfg.LogLevel))

	svc, err := jsonrpcservice.NewService(jsonrpcservice.Config{Port: cfg.Port}, cfg)
	if err != nil {
		return fmt.Errorf("failed to create service: %s", err)
	}

	log.Infof(
		"nftd config: chain %s, db %s, event db %s, currency %s, scheduler %s",
		chainLabel(cfg.ChainId), cfg.DbType, cfg.EventDbType, cfg.CurrencyType, cfg.SchedulerType,
	)

	log.Info("starting service...")
	if err := svc.Start(); err != nil {
		return fmt.Errorf("failed to start service: %s", err)
	}

	log.RegisterExitHandler(svc.Stop)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(
		sigChan, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGHUP, os.Interrupt,
	)
	<-sigChan

	log.Info("shutting down service...")
	log.Exit(0)
	return nil
}
