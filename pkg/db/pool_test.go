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

package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/models"
)

func TestBuildConnURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr error
	}{
		{
			name: "defaults",
			cfg:  Config{Host: "db", Database: "cmdb"},
			want: "postgres://db:5432/cmdb?sslmode=disable",
		},
		{
			name: "credentials and params",
			cfg: Config{
				Host:               "db",
				Port:               6432,
				Database:           "cmdb",
				Username:           "correlator",
				Password:           "s3cret",
				ApplicationName:    "correlator",
				ExtraRuntimeParams: map[string]string{"search_path": "public"},
			},
			want: "postgres://correlator:s3cret@db:6432/cmdb?application_name=correlator&search_path=public&sslmode=disable",
		},
		{
			name: "tls defaults to verify-full",
			cfg:  Config{Host: "db", Database: "cmdb", TLS: &models.TLSConfig{}},
			want: "postgres://db:5432/cmdb?sslmode=verify-full",
		},
		{
			name:    "tls with sslmode disable",
			cfg:     Config{Host: "db", Database: "cmdb", SSLMode: "disable", TLS: &models.TLSConfig{}},
			wantErr: ErrTLSDisabled,
		},
		{
			name:    "missing host",
			cfg:     Config{Database: "cmdb"},
			wantErr: ErrMissingHost,
		},
		{
			name:    "missing database",
			cfg:     Config{Host: "db"},
			wantErr: ErrMissingDatabase,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildConnURL(&tt.cfg)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestBuildTLSConfig(t *testing.T) {
	got, err := buildTLSConfig(&Config{Host: "db"})
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = buildTLSConfig(&Config{Host: "db", TLS: &models.TLSConfig{CertFile: "client.pem"}})
	require.ErrorIs(t, err, ErrLackingTLSFiles)

	_, err = buildTLSConfig(&Config{
		Host:    "db",
		CertDir: t.TempDir(),
		TLS:     &models.TLSConfig{CertFile: "client.pem", KeyFile: "client-key.pem", CAFile: "root.pem"},
	})
	require.Error(t, err)
}

func TestNewPoolRejectsInvalidConfig(t *testing.T) {
	_, err := NewPool(t.Context(), &Config{Database: "cmdb", StatementTimeout: models.Duration(time.Second)}, nil)
	require.ErrorIs(t, err, ErrMissingHost)
}
