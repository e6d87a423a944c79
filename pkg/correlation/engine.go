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

// Package correlation decides which adapter-devices describe the same entity.
//
// A call to Engine.Correlate runs once over a batch of entities:
//
//  1. Logic: two instances of one adapter type reporting the same id.
//  2. OS check: entities whose adapters disagree on the OS are excluded from execution.
//  3. Command table: one correlation command set per adapter type.
//  4. Execution: one shell action per entity, awaited together under a single deadline.
//  5. Parsing: each command output is handed to its adapter's parser.
//  6. Contradictions: an entity whose execution disagrees with recorded ids loses all its evidence.
//  7. Emission: new ids become Execution correlations, or are deferred when the target is not in the batch.
//  8. Deduction: two entities deferring to the same missing device are correlated with each other.
//
// The engine keeps no state between calls.
package correlation

import (
	"context"
	"errors"
	"iter"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

const (
	// DefaultExecutionTimeout bounds the wait for every execution of one call.
	DefaultExecutionTimeout = 5 * time.Minute

	tracerName = "github.com/carverauto/correlator/pkg/correlation"
)

// Engine correlates adapter-devices across a batch of entities.
type Engine struct {
	gateway Gateway
	logger  logger.Logger
	timeout time.Duration
	tracer  trace.Tracer
}

// Option customises an Engine.
type Option func(*Engine)

// WithTimeout overrides DefaultExecutionTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(e *Engine) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine creates an engine bound to gateway.
func NewEngine(gateway Gateway, log logger.Logger, opts ...Option) (*Engine, error) {
	if gateway == nil {
		return nil, ErrNilGateway
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	e := &Engine{
		gateway: gateway,
		logger:  log,
		timeout: DefaultExecutionTimeout,
		tracer:  logger.GetTracer(tracerName),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e, nil
}

// Timeout returns the execution wait budget of one call.
func (e *Engine) Timeout() time.Duration {
	return e.timeout
}

// Correlate lazily yields correlations and warnings for entities. The input is
// never modified. A non-nil error is always the last value yielded and means
// the batch was aborted: either ErrDuplicateAdapterDevice or the caller's
// context ending during the execution wait.
func (e *Engine) Correlate(ctx context.Context, entities []models.Entity) iter.Seq2[models.Result, error] {
	return func(yield func(models.Result, error) bool) {
		ctx, span := e.tracer.Start(ctx, "correlation.Correlate",
			trace.WithAttributes(attribute.Int("entities", len(entities))))
		defer span.End()

		seen := make(map[[2]models.AdapterIdentity]struct{})
		var correlations, warnings int

		emit := func(result models.Result) bool {
			switch r := result.(type) {
			case models.Correlation:
				key := r.PairKey()
				if _, dup := seen[key]; dup {
					return true
				}

				seen[key] = struct{}{}
				correlations++
				recordCorrelation(ctx, r.Reason)
			case models.Warning:
				warnings++
				recordWarning(ctx, r.NotificationType)
			}

			return yield(result, nil)
		}

		r := newRun(e, entities)

		err := r.correlate(ctx, emit)
		if err == nil {
			for _, c := range r.deduceUnavailable() {
				if !emit(c) {
					err = errStopped
					break
				}
			}
		}

		span.SetAttributes(attribute.Int("correlations", correlations), attribute.Int("warnings", warnings))

		if err != nil && !errors.Is(err, errStopped) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			e.logger.Error().Err(err).Int("entities", len(entities)).Msg("Correlation batch aborted")
			yield(nil, err)

			return
		}

		e.logger.Info().
			Int("entities", len(entities)).
			Int("correlations", correlations).
			Int("warnings", warnings).
			Msg("Correlation batch finished")
	}
}

// CorrelateAll drains Correlate into slices.
func (e *Engine) CorrelateAll(ctx context.Context, entities []models.Entity) ([]models.Correlation, []models.Warning, error) {
	var (
		correlations []models.Correlation
		warnings     []models.Warning
	)

	for result, err := range e.Correlate(ctx, entities) {
		if err != nil {
			return correlations, warnings, err
		}

		switch r := result.(type) {
		case models.Correlation:
			correlations = append(correlations, r)
		case models.Warning:
			warnings = append(warnings, r)
		}
	}

	return correlations, warnings, nil
}
