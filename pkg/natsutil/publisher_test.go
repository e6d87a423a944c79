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

package natsutil

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

var errTestFixture = errors.New("fixture")

func TestEnsureSubjectList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		subjects []string
		subject  string
		want     []string
	}{
		{"adds subject when list empty", nil, "correlator.results.>", []string{"correlator.results.>"}},
		{"keeps list when greater wildcard matches", []string{"correlator.>"}, "correlator.results.>", []string{"correlator.>"}},
		{"single wildcard does not cover greater", []string{"correlator.results.*"}, "correlator.results.>",
			[]string{"correlator.results.*", "correlator.results.>"}},
		{"appends when unmatched", []string{"events.>"}, "correlator.results.>", []string{"events.>", "correlator.results.>"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ensureSubjectList(append([]string(nil), tc.subjects...), tc.subject))
		})
	}
}

func TestMatchesSubject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		pattern  string
		subject  string
		expected bool
	}{
		{"exact match", "correlator.results.warning", "correlator.results.warning", true},
		{"single wildcard", "correlator.*.warning", "correlator.results.warning", true},
		{"greater wildcard", "correlator.>", "correlator.results.warning", true},
		{"greater covers greater", "correlator.results.>", "correlator.results.>", true},
		{"no match length", "correlator.*", "correlator.results.warning", false},
		{"no match tokens", "events.*.warning", "correlator.results.warning", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, matchesSubject(tc.pattern, tc.subject))
		})
	}
}

func TestIsStreamMissingErr(t *testing.T) {
	t.Parallel()

	assert.True(t, isStreamMissingErr(jetstream.ErrStreamNotFound))
	assert.True(t, isStreamMissingErr(nats.ErrStreamNotFound))
	assert.True(t, isStreamMissingErr(nats.ErrNoResponders))
	assert.False(t, isStreamMissingErr(errTestFixture))
}

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

func TestConnect(t *testing.T) {
	_, err := Connect(nil, "test", nil)
	require.ErrorIs(t, err, ErrMissingNATS)

	_, err = Connect(&models.NATSConfig{}, "test", nil)
	require.Error(t, err)

	srv := runJetStreamServer(t)

	nc, err := Connect(&models.NATSConfig{URL: srv.ClientURL()}, "test", logger.NewTestLogger())
	require.NoError(t, err)
	t.Cleanup(nc.Close)
	assert.True(t, nc.IsConnected())
}

func TestResultPublisher(t *testing.T) {
	srv := runJetStreamServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, err := NewResultPublisher(ctx, nc, PublisherConfig{StreamName: "CORR_TEST", SubjectPrefix: "test"}, logger.NewTestLogger())
	require.NoError(t, err)

	correlation := models.NewCorrelation(
		models.AdapterIdentity{Plugin: "ad_1", ID: "CN=host1"},
		models.AdapterIdentity{Plugin: "ad_2", ID: "CN=host1"},
		models.ReasonLogic, "They have the same plugin name and id")

	require.NoError(t, pub.Publish(ctx, "run-1", correlation))
	require.NoError(t, pub.Publish(ctx, "run-1", models.Warning{
		Title:            "Correlation execution timed out",
		NotificationType: models.NotificationExecutionTimeout,
	}))
	require.Error(t, pub.Publish(ctx, "run-1", nil))

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "CORR_TEST")
	require.NoError(t, err)

	msg, err := stream.GetLastMsgForSubject(ctx, "test.results.correlation")
	require.NoError(t, err)

	var event struct {
		models.CloudEvent
		Data struct {
			RunID   string             `json:"run_id"`
			Kind    models.ResultKind  `json:"kind"`
			Payload models.Correlation `json:"payload"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &event))

	assert.Equal(t, "com.carverauto.correlator.correlation", event.Type)
	assert.Equal(t, "1.0", event.SpecVersion)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, "run-1", event.Data.RunID)
	assert.Equal(t, correlation, event.Data.Payload)

	_, err = stream.GetLastMsgForSubject(ctx, "test.results.warning")
	require.NoError(t, err)

	// A second publisher on the same stream reuses it.
	_, err = NewResultPublisher(ctx, nc, PublisherConfig{StreamName: "CORR_TEST", SubjectPrefix: "test"}, nil)
	require.NoError(t, err)
}

func TestResultPublisher_ExtendsExistingStream(t *testing.T) {
	srv := runJetStreamServer(t)

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{Name: "SHARED", Subjects: []string{"events.>"}})
	require.NoError(t, err)

	_, err = NewResultPublisher(ctx, nc, PublisherConfig{StreamName: "SHARED"}, nil)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "SHARED")
	require.NoError(t, err)
	assert.Equal(t, []string{"events.>", "correlator.results.>"}, stream.CachedInfo().Config.Subjects)
}
