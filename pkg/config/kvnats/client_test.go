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
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, srv.JetStreamEnabled, 5*time.Second, 50*time.Millisecond,
		"embedded NATS server not ready for JetStream")

	t.Cleanup(srv.Shutdown)

	return srv
}

func TestClient(t *testing.T) {
	srv := runJetStreamServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := New(ctx, nc, "", "correlator-config")
	require.NoError(t, err)

	_, found, err := client.Get(ctx, "config/correlator.json")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.Create(ctx, "config/correlator.json", []byte(`{"interval":"5m"}`)))
	require.ErrorIs(t, client.Create(ctx, "config/correlator.json", []byte(`{}`)), ErrKeyExists)

	value, found, err := client.Get(ctx, "config/correlator.json")
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `{"interval":"5m"}`, string(value))
}

func TestEnvNATSConfig(t *testing.T) {
	t.Setenv("NATS_URL", "nats://nats:4222")
	t.Setenv("NATS_DOMAIN", "edge")
	t.Setenv("NATS_CERT_FILE", "client.pem")
	t.Setenv("NATS_KEY_FILE", "client-key.pem")
	t.Setenv("NATS_CA_FILE", "root.pem")

	cfg := EnvNATSConfig()
	assert.Equal(t, "nats://nats:4222", cfg.URL)
	assert.Equal(t, "edge", cfg.Domain)
	require.NotNil(t, cfg.Security)
	assert.Equal(t, models.SecurityModeMTLS, cfg.Security.Mode)
	assert.Equal(t, "root.pem", cfg.Security.TLS.CAFile)
}

func TestNewFromEnv(t *testing.T) {
	srv := runJetStreamServer(t)

	t.Setenv("NATS_URL", srv.ClientURL())
	t.Setenv("KV_BUCKET", "bootstrap-test")

	ctx, cancel := context.WithTimeout(t.Context(), 5*time.Second)
	defer cancel()

	client, closeFn, err := NewFromEnv(ctx, "correlator", logger.NewTestLogger())
	require.NoError(t, err)
	defer closeFn()

	require.NoError(t, client.Create(ctx, "config/correlator.json", []byte(`{}`)))

	value, found, err := client.Get(ctx, "config/correlator.json")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{}`, string(value))
}

func TestNewFromEnvWithoutURL(t *testing.T) {
	t.Setenv("NATS_URL", "")

	_, _, err := NewFromEnv(t.Context(), "correlator", nil)
	require.Error(t, err)
}
