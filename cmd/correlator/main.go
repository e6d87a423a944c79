/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/correlator/pkg/config"
	"github.com/carverauto/correlator/pkg/config/kvnats"
	"github.com/carverauto/correlator/pkg/correlation"
	"github.com/carverauto/correlator/pkg/correlationsvc"
	"github.com/carverauto/correlator/pkg/db"
	"github.com/carverauto/correlator/pkg/gateway"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/natsutil"
	"github.com/carverauto/correlator/pkg/version"
)

const serviceName = "correlator"

var errNATSClosed = errors.New("nats connection closed")

func main() {
	configPath := flag.String("config", "/etc/correlator/correlator.json", "Path to correlator config file")
	once := flag.Bool("once", false, "Run a single correlation pass and exit")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath, *once)
	cancel()

	if err != nil {
		log.Fatalf("correlator: %v", err)
	}
}

func run(ctx context.Context, configPath string, once bool) error {
	var cfg correlationsvc.Config
	if err := loadConfig(ctx, configPath, &cfg); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = logger.DefaultConfig()
	}

	appLogger, err := logger.NewComponent(ctx, serviceName, logCfg)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	appLogger.Info().Str("version", version.Get().String()).Msg("Starting " + serviceName)

	if safe, err := models.FilterSensitiveFields(&cfg); err == nil {
		appLogger.Debug().Interface("config", safe).Msg("Loaded configuration")
	}

	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("correlator: logger shutdown: %v", err)
		}
	}()

	if _, err := logger.InitializeMetrics(ctx, logger.MetricsConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Get().Version,
		OTel:           &logCfg.OTel,
	}); err != nil && !errors.Is(err, logger.ErrOTelMetricsDisabled) {
		appLogger.Warn().Err(err).Msg("Metrics export disabled")
	}

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.Get().Version,
		Logger:         appLogger,
		OTel:           &logCfg.OTel,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = tp.Shutdown(shutdownCtx)
	}()

	closed := make(chan struct{})

	nc, err := natsutil.Connect(&cfg.NATS, serviceName, appLogger,
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }))
	if err != nil {
		return err
	}
	defer nc.Close()

	gw, err := gateway.New(nc, cfg.Gateway, appLogger)
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	defer gw.Close()

	engine, err := correlation.NewEngine(gw, appLogger,
		correlation.WithTimeout(time.Duration(cfg.ExecutionTimeout)))
	if err != nil {
		return err
	}

	publisher, err := natsutil.NewResultPublisher(ctx, nc, cfg.PublisherConfig(), appLogger)
	if err != nil {
		return fmt.Errorf("create result publisher: %w", err)
	}

	source, closeSource, err := newEntitySource(ctx, &cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeSource()

	svc, err := correlationsvc.NewService(engine, source, publisher, time.Duration(cfg.Interval), appLogger)
	if err != nil {
		return err
	}

	if once {
		_, err := svc.RunOnce(ctx)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svc.Run(gctx)
	})

	g.Go(func() error {
		select {
		case <-gctx.Done():
			return nil
		case <-closed:
			return errNATSClosed
		}
	})

	return g.Wait()
}

func loadConfig(ctx context.Context, path string, cfg *correlationsvc.Config) error {
	loader := config.NewConfig(nil)

	if strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "kv") {
		kv, closeKV, err := kvnats.NewFromEnv(ctx, serviceName, nil)
		if err != nil {
			return err
		}
		defer closeKV()

		loader.SetKVStore(kv)
	}

	return loader.LoadAndValidate(ctx, path, cfg)
}

func newEntitySource(ctx context.Context, cfg *correlationsvc.Config, log logger.Logger) (correlationsvc.EntitySource, func(), error) {
	if cfg.Database == nil {
		src, err := correlationsvc.NewFileSource(cfg.EntitiesFile)
		return src, func() {}, err
	}

	pool, err := db.NewPool(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, err
	}

	if cfg.RunMigrations {
		if err := db.RunMigrations(ctx, pool, log); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	store, err := db.NewEntityStore(pool, cfg.Database, log)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}

	return store, pool.Close, nil
}
