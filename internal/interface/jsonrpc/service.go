package jsonrpcservice

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/arkade-os/nftd/internal/config"
	interfaces "github.com/arkade-os/nftd/internal/interface"
	log "github.com/sirupsen/logrus"
)

type service struct {
	config        Config
	appConfig     *config.Config
	server        *http.Server
	appSvcStarted atomic.Bool
}

func NewService(svcConfig Config, appConfig *config.Config) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{
		config:    svcConfig,
		appConfig: appConfig,
	}, nil
}

func (s *service) Start() error {
	if err := s.startAppServices(); err != nil {
		return err
	}

	appSvc, err := s.appConfig.AppService()
	if err != nil {
		return err
	}
	auth := &authenticator{
		verifier:  s.appConfig.Verifier(),
		maxExpiry: s.config.maxRequestExpiry(),
		now:       time.Now,
	}
	mux := http.NewServeMux()
	mux.Handle("/", newHandler(appSvc, auth))
	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("json-rpc server stopped")
		}
	}()

	log.Infof("started listening at %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	if s.appSvcStarted.CompareAndSwap(true, false) {
		appSvc, _ := s.appConfig.AppService()
		if appSvc != nil {
			appSvc.Stop()
		}
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			_ = s.server.Close()
		}
	}

	if scheduler := s.appConfig.Scheduler(); scheduler != nil {
		scheduler.Stop()
	}
	if ledger := s.appConfig.Ledger(); ledger != nil {
		ledger.Close()
	}
	if repo := s.appConfig.RepoManager(); repo != nil {
		repo.Close()
	}
	log.Info("shutdown service")
}

func (s *service) startAppServices() error {
	if !s.appSvcStarted.CompareAndSwap(false, true) {
		return nil
	}

	appSvc, err := s.appConfig.AppService()
	if err != nil {
		s.appSvcStarted.Store(false)
		return fmt.Errorf("failed to create app service: %w", err)
	}
	s.appConfig.Scheduler().Start()
	if err := appSvc.Start(); err != nil {
		s.appSvcStarted.Store(false)
		return fmt.Errorf("failed to start app service: %w", err)
	}
	log.Info("started app service")
	return nil
}
