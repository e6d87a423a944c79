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

	"github.com/nats-io/nats.go"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/correlator/pkg/adapters"
	"github.com/carverauto/correlator/pkg/config"
	"github.com/carverauto/correlator/pkg/config/kvnats"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/natsutil"
	"github.com/carverauto/correlator/pkg/version"
)

const serviceName = "correlation-plugins"

var errNATSClosed = errors.New("nats connection closed")

func main() {
	configPath := flag.String("config", "/etc/correlator/correlation-plugins.json", "Path to plugin responder config file")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get())
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, *configPath)
	cancel()

	if err != nil {
		log.Fatalf("correlation-plugins: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	var cfg adapters.ResponderConfig

	loader := config.NewConfig(nil)

	if strings.EqualFold(os.Getenv("CONFIG_SOURCE"), "kv") {
		kv, closeKV, err := kvnats.NewFromEnv(ctx, serviceName, nil)
		if err != nil {
			return err
		}

		loader.SetKVStore(kv)
		defer closeKV()
	}

	if err := loader.LoadAndValidate(ctx, configPath, &cfg); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	appLogger, err := logger.NewComponent(ctx, serviceName, cfg.Logging)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}

	appLogger.Info().Str("version", version.Get().String()).Msg("Starting " + serviceName)

	if safe, err := models.FilterSensitiveFields(&cfg); err == nil {
		appLogger.Debug().Interface("config", safe).Msg("Loaded configuration")
	}

	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("correlation-plugins: logger shutdown: %v", err)
		}
	}()

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	closed := make(chan struct{})

	nc, err := natsutil.Connect(&cfg.NATS, serviceName, appLogger,
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }))
	if err != nil {
		return err
	}
	defer nc.Close()

	responder := adapters.NewResponder(nc, registry, cfg.SubjectPrefix, appLogger)
	if err := responder.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		<-gctx.Done()
		responder.Stop()

		return nil
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
