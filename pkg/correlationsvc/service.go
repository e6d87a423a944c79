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

package correlationsvc

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

// Correlator is satisfied by *correlation.Engine.
type Correlator interface {
	Correlate(ctx context.Context, entities []models.Entity) iter.Seq2[models.Result, error]
}

// Publisher delivers one result of a run.
type Publisher interface {
	Publish(ctx context.Context, runID string, result models.Result) error
}

// RunSummary describes one finished run.
type RunSummary struct {
	RunID        string
	Entities     int
	Correlations int
	Warnings     int
	Duration     time.Duration
}

// Service loads a batch, correlates it and publishes the results on a fixed interval.
type Service struct {
	correlator Correlator
	source     EntitySource
	publisher  Publisher
	interval   time.Duration
	clock      Clock
	logger     logger.Logger
	newRunID   func() string
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires a service. interval <= 0 uses the default.
func NewService(
	correlator Correlator,
	source EntitySource,
	publisher Publisher,
	interval time.Duration,
	log logger.Logger,
	opts ...ServiceOption,
) (*Service, error) {
	switch {
	case correlator == nil:
		return nil, errMissingEngine
	case source == nil:
		return nil, errMissingSource
	case publisher == nil:
		return nil, errMissingPublisher
	}

	if interval <= 0 {
		interval = defaultInterval
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	s := &Service{
		correlator: correlator,
		source:     source,
		publisher:  publisher,
		interval:   interval,
		clock:      realClock{},
		logger:     log,
		newRunID:   uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Run performs a run immediately and then once per interval until ctx ends.
// A failed run is logged and the loop keeps going.
func (s *Service) Run(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("Starting correlation service")

	ticker := s.clock.Ticker(s.interval)
	defer ticker.Stop()

	s.runAndLog(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Stopping correlation service")
			return nil
		case <-ticker.Chan():
			s.runAndLog(ctx)
		}
	}
}

func (s *Service) runAndLog(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error().Err(err).Msg("Correlation run failed")
	}
}

// RunOnce correlates the current batch and publishes every result. Results
// published before a failure stay published; rerunning is safe because the
// engine keeps no state.
func (s *Service) RunOnce(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{RunID: s.newRunID()}
	start := s.clock.Now()

	log := s.logger.With().Str("run_id", summary.RunID).Logger()

	entities, err := s.source.LoadEntities(ctx)
	if err != nil {
		return summary, fmt.Errorf("load entities: %w", err)
	}

	summary.Entities = len(entities)

	log.Debug().Int("entities", summary.Entities).Msg("Starting correlation run")

	for result, err := range s.correlator.Correlate(ctx, entities) {
		if err != nil {
			return summary, fmt.Errorf("correlate: %w", err)
		}

		if err := s.publisher.Publish(ctx, summary.RunID, result); err != nil {
			return summary, fmt.Errorf("publish %s: %w", result.Kind(), err)
		}

		switch result.Kind() {
		case models.ResultKindCorrelation:
			summary.Correlations++
		case models.ResultKindWarning:
			summary.Warnings++
		}
	}

	summary.Duration = s.clock.Now().Sub(start)

	log.Info().
		Int("entities", summary.Entities).
		Int("correlations", summary.Correlations).
		Int("warnings", summary.Warnings).
		Dur("duration", summary.Duration).
		Msg("Correlation run finished")

	return summary, nil
}
