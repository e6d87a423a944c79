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

package adapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/models"
)

func TestParseCorrelationResult(t *testing.T) {
	tests := []struct {
		name    string
		plugin  Plugin
		result  models.CommandResult
		want    string
		wantErr error
	}{
		{
			name:   "aws instance id",
			plugin: NewAWSPlugin(),
			result: models.CommandResult{Result: "i-0123456789abcdef0\n", OS: models.OSLinux},
			want:   "i-0123456789abcdef0",
		},
		{
			name:    "aws html error page",
			plugin:  NewAWSPlugin(),
			result:  models.CommandResult{Result: "<html>404 - Not Found</html>", OS: models.OSLinux},
			wantErr: ErrUnrecognizedOutput,
		},
		{
			name:   "gcp numeric id",
			plugin: NewGCPPlugin(),
			result: models.CommandResult{Result: "4520031799277581759\r\n", OS: models.OSWindows},
			want:   "4520031799277581759",
		},
		{
			name:    "gcp empty",
			plugin:  NewGCPPlugin(),
			result:  models.CommandResult{Result: "  \n"},
			wantErr: ErrUnrecognizedOutput,
		},
		{
			name:   "azure vm id",
			plugin: NewAzurePlugin(),
			result: models.CommandResult{Result: "02AAB8A4-74EF-476E-8182-F6D2BA4166A6"},
			want:   "02aab8a4-74ef-476e-8182-f6d2ba4166a6",
		},
		{
			name:    "azure not a uuid",
			plugin:  NewAzurePlugin(),
			result:  models.CommandResult{Result: "curl: (28) Connection timed out"},
			wantErr: ErrUnrecognizedOutput,
		},
		{
			name:   "esx dmidecode",
			plugin: NewESXPlugin(),
			result: models.CommandResult{Result: "4221a9c2-2b1a-4d3c-8e9f-001122334455\n", OS: models.OSLinux},
			want:   "4221a9c2-2b1a-4d3c-8e9f-001122334455",
		},
		{
			name:   "esx wmic with header",
			plugin: NewESXPlugin(),
			result: models.CommandResult{Result: "UUID  \r\n4221A9C2-2B1A-4D3C-8E9F-001122334455  \r\n\r\n", OS: models.OSWindows},
			want:   "4221a9c2-2b1a-4d3c-8e9f-001122334455",
		},
		{
			name:   "esx little endian smbios",
			plugin: NewESXPlugin(),
			result: models.CommandResult{Result: "c2a92142-1a2b-3c4d-8e9f-001122334455", OS: models.OSLinux},
			want:   "4221a9c2-2b1a-4d3c-8e9f-001122334455",
		},
		{
			name:    "esx header only",
			plugin:  NewESXPlugin(),
			result:  models.CommandResult{Result: "UUID\r\n", OS: models.OSWindows},
			wantErr: ErrUnrecognizedOutput,
		},
		{
			name:   "active directory dn",
			plugin: NewActiveDirectoryPlugin(),
			result: models.CommandResult{Result: "CN=HOST1,OU=Servers,DC=corp,DC=example,DC=com\r\n", OS: models.OSWindows},
			want:   "CN=HOST1,OU=Servers,DC=corp,DC=example,DC=com",
		},
		{
			name:    "active directory on linux",
			plugin:  NewActiveDirectoryPlugin(),
			result:  models.CommandResult{Result: "CN=HOST1,DC=corp", OS: models.OSLinux},
			wantErr: ErrUnsupportedOS,
		},
		{
			name:    "active directory not joined",
			plugin:  NewActiveDirectoryPlugin(),
			result:  models.CommandResult{Result: "You cannot call a method on a null-valued expression.", OS: models.OSWindows},
			wantErr: ErrUnrecognizedOutput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.plugin.ParseCorrelationResult(tt.result)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCorrelationCommands(t *testing.T) {
	registry := NewBuiltinRegistry()

	for _, name := range registry.Names() {
		p, ok := registry.Plugin(name)
		require.True(t, ok)

		commands := p.CorrelationCommands(name + "_0")
		assert.NotEmpty(t, commands, name)

		for osType, cmd := range commands {
			assert.NotEmpty(t, cmd, "%s %s", name, osType)
		}
	}

	ad, _ := registry.Plugin(ActiveDirectoryPluginName)
	assert.Equal(t, []models.OSType{models.OSWindows}, keys(ad.CorrelationCommands("ad_0")))
}

func keys(m map[models.OSType]string) []models.OSType {
	out := make([]models.OSType, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	return out
}

func TestRegistry(t *testing.T) {
	registry := NewBuiltinRegistry()

	assert.Equal(t, []string{
		ActiveDirectoryPluginName, AWSPluginName, AzurePluginName, ESXPluginName, GCPPluginName,
	}, registry.Names())

	require.ErrorIs(t, registry.Register(NewAWSPlugin()), ErrDuplicatePlugin)
	require.ErrorIs(t, registry.AddInstance(Instance{PluginName: "nope", PluginUniqueName: "nope_0"}), ErrUnknownPlugin)

	require.NoError(t, registry.AddInstance(Instance{PluginName: AWSPluginName, PluginUniqueName: "aws_1"}))
	require.NoError(t, registry.AddInstance(Instance{PluginName: AWSPluginName, PluginUniqueName: "aws_0"}))
	require.ErrorIs(t, registry.AddInstance(Instance{PluginName: GCPPluginName, PluginUniqueName: "aws_0"}), ErrInstanceConflict)

	assert.Equal(t, []Instance{
		{PluginName: AWSPluginName, PluginUniqueName: "aws_0"},
		{PluginName: AWSPluginName, PluginUniqueName: "aws_1"},
	}, registry.Instances())

	p, ok := registry.PluginForInstance("aws_1")
	require.True(t, ok)
	assert.Equal(t, AWSPluginName, p.Name())

	_, ok = registry.PluginForInstance("gcp_0")
	assert.False(t, ok)
}
