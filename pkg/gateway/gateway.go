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

// Package gateway connects the correlation engine to the execution controller
// and to adapter plugins over NATS request/reply.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/correlator/pkg/correlation"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/promise"
)

const (
	defaultRequestTimeout   = 10 * time.Second
	defaultExecutionTimeout = 10 * time.Minute
)

// Config controls subjects and per-request timeouts.
type Config struct {
	SubjectPrefix string `json:"subject_prefix"`
	// RequestTimeout bounds command lookups and parse requests.
	RequestTimeout models.Duration `json:"request_timeout"`
	// ExecutionTimeout bounds how long a submitted action may stay in flight,
	// independently of how long the engine waits for it.
	ExecutionTimeout models.Duration `json:"execution_timeout"`
}

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeout <= 0 {
		return defaultRequestTimeout
	}

	return time.Duration(c.RequestTimeout)
}

func (c Config) executionTimeout() time.Duration {
	if c.ExecutionTimeout <= 0 {
		return defaultExecutionTimeout
	}

	return time.Duration(c.ExecutionTimeout)
}

// Gateway implements correlation.Gateway on a NATS connection.
type Gateway struct {
	nc     *nats.Conn
	cfg    Config
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

var _ correlation.Gateway = (*Gateway)(nil)

// New creates a gateway. Close must be called to release in-flight executions.
func New(nc *nats.Conn, cfg Config, log logger.Logger) (*Gateway, error) {
	if nc == nil {
		return nil, ErrMissingConn
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Gateway{
		nc:     nc,
		cfg:    cfg,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// SubmitExecution publishes the action and returns at once. The promise is
// settled from a background goroutine when the controller replies.
func (g *Gateway) SubmitExecution(_ context.Context, action *models.ShellAction) (*correlation.ExecutionPromise, error) {
	subj, err := ExecuteSubject(g.cfg.SubjectPrefix, action.InternalID)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(action)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shell action: %w", err)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil, ErrClosed
	}

	p := promise.New[models.ExecutionResponse]()

	g.wg.Add(1)

	go g.awaitExecution(subj, action.InternalID, payload, p)

	return p, nil
}

func (g *Gateway) awaitExecution(subj, internalID string, payload []byte, p *correlation.ExecutionPromise) {
	defer g.wg.Done()

	ctx, cancel := context.WithTimeout(g.ctx, g.cfg.executionTimeout())
	defer cancel()

	msg, err := g.request(ctx, subj, payload)
	if err != nil {
		g.logger.Debug().Err(err).Str("internal_id", internalID).Msg("Correlation execution failed")
		_ = p.Reject(err)

		return
	}

	var resp models.ExecutionResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		_ = p.Reject(fmt.Errorf("failed to decode execution response: %w", err))
		return
	}

	_ = p.Resolve(resp)
}

// CorrelationCommands asks an adapter instance for its per-OS commands. An
// instance nobody answers for is unsupported, not an error.
func (g *Gateway) CorrelationCommands(ctx context.Context, pluginUniqueName string) (map[models.OSType]string, error) {
	subj, err := CommandsSubject(g.cfg.SubjectPrefix, pluginUniqueName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.requestTimeout())
	defer cancel()

	msg, err := g.request(ctx, subj, nil)
	if errors.Is(err, ErrNoResponders) {
		g.logger.Debug().Str("plugin_unique_name", pluginUniqueName).Msg("Adapter does not serve correlation commands")
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	var commands map[models.OSType]string
	if err := json.Unmarshal(msg.Data, &commands); err != nil {
		return nil, fmt.Errorf("failed to decode correlation commands from %s: %w", pluginUniqueName, err)
	}

	return commands, nil
}

// ParseResult hands one command output to the adapter type's parser.
func (g *Gateway) ParseResult(ctx context.Context, pluginName string, result models.CommandResult) (string, error) {
	subj, err := ParseSubject(g.cfg.SubjectPrefix, pluginName)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal command result: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.requestTimeout())
	defer cancel()

	msg, err := g.request(ctx, subj, payload)
	if err != nil {
		return "", err
	}

	var reply models.ParseReply
	if err := json.Unmarshal(msg.Data, &reply); err != nil {
		return "", fmt.Errorf("failed to decode parse reply from %s: %w", pluginName, err)
	}

	if reply.Error != "" {
		return "", fmt.Errorf("%w: %s: %s", ErrParseFailed, pluginName, reply.Error)
	}

	return reply.ID, nil
}

func (g *Gateway) request(ctx context.Context, subj string, payload []byte) (*nats.Msg, error) {
	msg, err := g.nc.RequestWithContext(ctx, subj, payload)
	if errors.Is(err, nats.ErrNoResponders) {
		return nil, fmt.Errorf("%w: %s", ErrNoResponders, subj)
	}

	if err != nil {
		return nil, fmt.Errorf("request %s: %w", subj, err)
	}

	return msg, nil
}

// Close rejects new submissions, abandons in-flight executions and waits for
// their goroutines. It does not close the NATS connection.
func (g *Gateway) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()

	g.cancel()
	g.wg.Wait()
}
