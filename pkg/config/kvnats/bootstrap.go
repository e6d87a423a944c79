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

package kvnats

import (
	"context"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/natsutil"
)

// DefaultBucket holds configuration documents when KV_BUCKET is unset.
const DefaultBucket = "correlator-config"

// EnvNATSConfig describes the bootstrap connection used before any config
// file has been read: NATS_URL, NATS_DOMAIN, NATS_CREDS_FILE and, for mTLS,
// NATS_CERT_FILE, NATS_KEY_FILE, NATS_CA_FILE and NATS_SERVER_NAME.
func EnvNATSConfig() *models.NATSConfig {
	cfg := &models.NATSConfig{
		URL:             os.Getenv("NATS_URL"),
		Domain:          os.Getenv("NATS_DOMAIN"),
		CredentialsFile: os.Getenv("NATS_CREDS_FILE"),
	}

	if cert := os.Getenv("NATS_CERT_FILE"); cert != "" {
		cfg.Security = &models.SecurityConfig{
			Mode:       models.SecurityModeMTLS,
			ServerName: os.Getenv("NATS_SERVER_NAME"),
			TLS: models.TLSConfig{
				CertFile: cert,
				KeyFile:  os.Getenv("NATS_KEY_FILE"),
				CAFile:   os.Getenv("NATS_CA_FILE"),
			},
		}
	}

	return cfg
}

// NewFromEnv dials the bootstrap connection and opens the KV_BUCKET bucket.
// The returned close function drains the connection.
func NewFromEnv(ctx context.Context, name string, log logger.Logger) (*Client, func(), error) {
	bucket := os.Getenv("KV_BUCKET")
	if bucket == "" {
		bucket = DefaultBucket
	}

	natsCfg := EnvNATSConfig()

	nc, err := natsutil.Connect(natsCfg, name+"-config", log)
	if err != nil {
		return nil, nil, fmt.Errorf("config bootstrap: %w", err)
	}

	client, err := New(ctx, nc, natsCfg.Domain, bucket)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return client, func() { drain(nc) }, nil
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}
