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

package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

var errMissingName = errors.New("name is required")

type testConfig struct {
	Name     string             `json:"name"`
	Interval models.Duration    `json:"interval"`
	Timeout  time.Duration      `json:"timeout"`
	Tags     []string           `json:"tags"`
	Enabled  bool               `json:"enabled"`
	NATS     *models.NATSConfig `json:"nats,omitempty"`
	Logging  logger.Config      `json:"logging"`
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return errMissingName
	}

	return nil
}

type fakeKVStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (f *fakeKVStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]

	return v, ok, nil
}

func (f *fakeKVStore) Create(_ context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.data == nil {
		f.data = make(map[string][]byte)
	}

	f.data[key] = value

	return nil
}

func writeJSON(t *testing.T, path string, value interface{}) {
	t.Helper()

	data, err := json.Marshal(value)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestLoadAndValidate_File(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	path := filepath.Join(t.TempDir(), "correlator.json")
	writeJSON(t, path, map[string]interface{}{
		"name":     "correlator",
		"interval": "10m",
		"nats": map[string]interface{}{
			"url": "nats://127.0.0.1:4222",
			"security": map[string]interface{}{
				"mode":     "mtls",
				"cert_dir": "/etc/correlator/certs",
				"tls": map[string]interface{}{
					"cert_file": "client.pem",
					"key_file":  "client-key.pem",
					"ca_file":   "/opt/ca.pem",
				},
			},
		},
	})

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "correlator", cfg.Name)
	assert.Equal(t, models.Duration(10*time.Minute), cfg.Interval)

	require.NotNil(t, cfg.NATS)
	tls := cfg.NATS.Security.TLS
	assert.Equal(t, "/etc/correlator/certs/client.pem", tls.CertFile)
	assert.Equal(t, "/etc/correlator/certs/client-key.pem", tls.KeyFile)
	assert.Equal(t, "/opt/ca.pem", tls.CAFile)
	assert.Equal(t, "/opt/ca.pem", tls.ClientCAFile)
}

func TestLoadAndValidate_ValidationFails(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "file")

	path := filepath.Join(t.TempDir(), "correlator.json")
	writeJSON(t, path, map[string]interface{}{"interval": "1m"})

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errMissingName)
}

func TestLoadAndValidate_InvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg testConfig
	err := NewConfig(nil).LoadAndValidate(context.Background(), "unused.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadAndValidate_Env(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "")
	t.Setenv("CORRELATOR_NAME", "from-env")
	t.Setenv("CORRELATOR_INTERVAL", "90s")
	t.Setenv("CORRELATOR_TIMEOUT", "2m")
	t.Setenv("CORRELATOR_TAGS", "a, b ,c")
	t.Setenv("CORRELATOR_ENABLED", "true")
	t.Setenv("CORRELATOR_NATS_URL", "nats://nats:4222")
	t.Setenv("CORRELATOR_LOGGING_LEVEL", "debug")

	var cfg testConfig
	require.NoError(t, NewConfig(logger.NewTestLogger()).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "from-env", cfg.Name)
	assert.Equal(t, models.Duration(90*time.Second), cfg.Interval)
	assert.Equal(t, 2*time.Minute, cfg.Timeout)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.True(t, cfg.Enabled)
	require.NotNil(t, cfg.NATS)
	assert.Equal(t, "nats://nats:4222", cfg.NATS.URL)
	assert.Nil(t, cfg.NATS.Security)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestEnvConfigLoader_ConfigJSON(t *testing.T) {
	t.Setenv("TEST_CONFIG_JSON", `{"name":"json","interval":"1h"}`)

	var cfg testConfig
	require.NoError(t, NewEnvConfigLoader(nil, "TEST_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "json", cfg.Name)
	assert.Equal(t, models.Duration(time.Hour), cfg.Interval)

	var notStruct string
	require.ErrorIs(t, NewEnvConfigLoader(nil, "NONE_").Load(context.Background(), "", &notStruct), ErrDstMustBePointerToStruct)
	require.ErrorIs(t, NewEnvConfigLoader(nil, "NONE_").Load(context.Background(), "", nil), ErrDstMustBeNonNilPointer)
}

func TestLoadAndValidate_KV(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "kv")

	dir := t.TempDir()
	path := filepath.Join(dir, "correlator.json")
	writeJSON(t, path, map[string]interface{}{"name": "from-file"})

	t.Run("requires store", func(t *testing.T) {
		var cfg testConfig
		require.ErrorIs(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg), errKVStoreNotSet)
	})

	t.Run("falls back to file and seeds", func(t *testing.T) {
		store := &fakeKVStore{}
		loader := NewConfig(logger.NewTestLogger())
		loader.SetKVStore(store)

		var cfg testConfig
		require.NoError(t, loader.LoadAndValidate(context.Background(), path, &cfg))
		assert.Equal(t, "from-file", cfg.Name)

		seeded, ok, err := store.Get(context.Background(), "config/correlator.json")
		require.NoError(t, err)
		require.True(t, ok)
		assert.JSONEq(t, `{"name":"from-file"}`, string(seeded))
	})

	t.Run("prefers KV", func(t *testing.T) {
		store := &fakeKVStore{data: map[string][]byte{
			"config/correlator.json": []byte(`{"name":"from-kv"}`),
		}}
		loader := NewConfig(logger.NewTestLogger())
		loader.SetKVStore(store)

		var cfg testConfig
		require.NoError(t, loader.LoadAndValidate(context.Background(), path, &cfg))
		assert.Equal(t, "from-kv", cfg.Name)
	})
}

func TestNormalizeTLSPaths(t *testing.T) {
	tls := models.TLSConfig{CertFile: "a.pem", KeyFile: "/abs/b.pem", CAFile: "ca.pem", ClientCAFile: "client-ca.pem"}
	NormalizeTLSPaths(&tls, "/certs")

	assert.Equal(t, models.TLSConfig{
		CertFile:     "/certs/a.pem",
		KeyFile:      "/abs/b.pem",
		CAFile:       "/certs/ca.pem",
		ClientCAFile: "/certs/client-ca.pem",
	}, tls)
}
