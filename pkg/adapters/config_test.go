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

func TestResponderConfig(t *testing.T) {
	cfg := ResponderConfig{
		NATS: models.NATSConfig{URL: "nats://localhost:4222"},
		Instances: []Instance{
			{PluginName: "aws_adapter", PluginUniqueName: "aws_adapter_0"},
			{PluginName: "esx_adapter", PluginUniqueName: "esx_adapter_0"},
		},
	}

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "correlator", cfg.SubjectPrefix)

	registry, err := cfg.Registry()
	require.NoError(t, err)
	assert.Len(t, registry.Instances(), 2)

	p, ok := registry.PluginForInstance("esx_adapter_0")
	require.True(t, ok)
	assert.Equal(t, "esx_adapter", p.Name())
}

func TestResponderConfigErrors(t *testing.T) {
	noNATS := ResponderConfig{Instances: []Instance{{PluginName: "aws_adapter", PluginUniqueName: "a"}}}
	require.Error(t, noNATS.Validate())

	noInstances := ResponderConfig{NATS: models.NATSConfig{URL: "nats://x"}}
	require.ErrorIs(t, noInstances.Validate(), errNoInstances)

	unknown := ResponderConfig{
		NATS:      models.NATSConfig{URL: "nats://x"},
		Instances: []Instance{{PluginName: "splunk_adapter", PluginUniqueName: "splunk_0"}},
	}
	require.NoError(t, unknown.Validate())

	_, err := unknown.Registry()
	require.ErrorIs(t, err, ErrUnknownPlugin)
}
