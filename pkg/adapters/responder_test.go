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
	"context"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/gateway"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()

	srv, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1})
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	t.Cleanup(srv.Shutdown)

	return srv
}

func TestResponderServesGateway(t *testing.T) {
	srv := runNATSServer(t)

	pluginConn, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(pluginConn.Close)

	engineConn, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(engineConn.Close)

	registry := NewBuiltinRegistry()
	require.NoError(t, registry.AddInstance(Instance{PluginName: ESXPluginName, PluginUniqueName: "esx_adapter_0"}))

	responder := NewResponder(pluginConn, registry, "test", logger.NewTestLogger())
	require.NoError(t, responder.Start())
	t.Cleanup(responder.Stop)

	require.Error(t, responder.Start())

	gw, err := gateway.New(engineConn, gateway.Config{
		SubjectPrefix:  "test",
		RequestTimeout: models.Duration(2 * time.Second),
	}, logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(gw.Close)

	ctx := context.Background()

	commands, err := gw.CorrelationCommands(ctx, "esx_adapter_0")
	require.NoError(t, err)
	assert.Equal(t, NewESXPlugin().CorrelationCommands("esx_adapter_0"), commands)

	// Not declared as an instance, so nobody answers.
	commands, err = gw.CorrelationCommands(ctx, "aws_adapter_0")
	require.NoError(t, err)
	assert.Empty(t, commands)

	id, err := gw.ParseResult(ctx, ESXPluginName, models.CommandResult{
		Result: "UUID\r\n4221A9C2-2B1A-4D3C-8E9F-001122334455\r\n",
		OS:     models.OSWindows,
	})
	require.NoError(t, err)
	assert.Equal(t, "4221a9c2-2b1a-4d3c-8e9f-001122334455", id)

	_, err = gw.ParseResult(ctx, AWSPluginName, models.CommandResult{Result: "nope", OS: models.OSLinux})
	require.ErrorIs(t, err, gateway.ErrParseFailed)
}
