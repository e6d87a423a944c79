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

package correlation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/models"
)

func TestResolveOSType(t *testing.T) {
	tests := []struct {
		name    string
		devices []models.AdapterDevice
		want    *models.OSType
		wantErr bool
	}{
		{
			name: "only unknowns",
			devices: []models.AdapterDevice{
				adapterDevice("esx_adapter", "esx_1", "u-1", nil),
				{PluginName: "wmi_adapter", PluginUniqueName: "wmi_1", Data: models.AdapterDeviceData{ID: "h", OS: &models.OSInfo{}}},
			},
		},
		{
			name: "one known",
			devices: []models.AdapterDevice{
				adapterDevice("esx_adapter", "esx_1", "u-1", nil),
				adapterDevice("aws_adapter", "aws_1", "i-1", osPtr(models.OSLinux)),
				adapterDevice("gcp_adapter", "gcp_1", "1", osPtr(models.OSLinux)),
			},
			want: osPtr(models.OSLinux),
		},
		{
			name: "disagreement",
			devices: []models.AdapterDevice{
				adapterDevice("aws_adapter", "aws_1", "i-1", osPtr(models.OSWindows)),
				adapterDevice("gcp_adapter", "gcp_1", "1", osPtr(models.OSLinux)),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := entity("E1", tt.devices...)

			got, err := resolveOSType(&e)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrOSTypeInconsistency)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandTable(t *testing.T) {
	table := commandTable{
		{pluginName: "aws_adapter", commands: map[models.OSType]string{models.OSLinux: "curl aws"}},
		{pluginName: "gcp_adapter"},
		{pluginName: "esx_adapter", commands: map[models.OSType]string{
			models.OSLinux:   "dmidecode",
			models.OSWindows: "wmic",
		}},
	}

	assert.True(t, table.supportsAnything())
	assert.False(t, commandTable{{pluginName: "gcp_adapter"}}.supportsAnything())
	assert.Equal(t, []models.OSType{models.OSLinux, models.OSWindows}, table.knownOSTypes())

	cmds, ok := table.commandsFor(models.OSWindows)
	require.True(t, ok)
	assert.Equal(t, []string{placeholderCommand, placeholderCommand, "wmic"}, cmds)

	_, ok = table.commandsFor(models.OSX)
	assert.False(t, ok)

	shell, ok := table.shellCommand(osPtr(models.OSX))
	assert.False(t, ok)
	assert.Empty(t, shell)

	shell, ok = table.shellCommand(nil)
	require.True(t, ok)
	assert.Len(t, shell, 2)
	assert.Equal(t, []string{"curl aws", placeholderCommand, "dmidecode"}, shell[models.OSLinux])
}

func TestIsPlaceholderOutput(t *testing.T) {
	assert.True(t, isPlaceholderOutput(NoCommandOutput))
	assert.True(t, isPlaceholderOutput(" "+NoCommandOutput+"\r\n"))
	assert.False(t, isPlaceholderOutput("i-0abc"))
	assert.False(t, isPlaceholderOutput(""))
}
