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
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

const (
	// DefaultStreamName is the JetStream stream holding correlation results.
	DefaultStreamName = "CORRELATIONS"

	eventSource      = "correlator/engine"
	eventTypePrefix  = "com.carverauto.correlator."
	cloudEventsSpec  = "1.0"
	jsonContentType  = "application/json"
	defaultSubjRoot  = "correlator"
	resultsSubjToken = "results"
)

var errUnknownResult = errors.New("unknown result kind")

// PublisherConfig selects where results go.
type PublisherConfig struct {
	Domain        string
	StreamName    string
	SubjectPrefix string
}

// ResultPublisher publishes correlations and warnings as CloudEvents.
type ResultPublisher struct {
	js     jetstream.JetStream
	stream string
	prefix string
	logger logger.Logger
	now    func() time.Time
}

// NewResultPublisher binds to JetStream and makes sure the stream captures
// <prefix>.results.>, creating or extending it as needed.
func NewResultPublisher(ctx context.Context, nc *nats.Conn, cfg PublisherConfig, log logger.Logger) (*ResultPublisher, error) {
	if log == nil {
		log = logger.NewTestLogger()
	}

	var (
		js  jetstream.JetStream
		err error
	)

	if cfg.Domain != "" {
		js, err = jetstream.NewWithDomain(nc, cfg.Domain)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context with domain %s: %w", cfg.Domain, err)
		}
	} else {
		js, err = jetstream.New(nc)
		if err != nil {
			return nil, fmt.Errorf("failed to create JetStream context: %w", err)
		}
	}

	p := &ResultPublisher{
		js:     js,
		stream: cfg.StreamName,
		prefix: cfg.SubjectPrefix,
		logger: log,
		now:    time.Now,
	}

	if p.stream == "" {
		p.stream = DefaultStreamName
	}

	if p.prefix == "" {
		p.prefix = defaultSubjRoot
	}

	if err := p.ensureStream(ctx); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *ResultPublisher) subjectWildcard() string {
	return p.prefix + "." + resultsSubjToken + ".>"
}

// Subject returns the subject results of kind are published on.
func (p *ResultPublisher) Subject(kind models.ResultKind) string {
	return p.prefix + "." + resultsSubjToken + "." + string(kind)
}

func (p *ResultPublisher) ensureStream(ctx context.Context) error {
	wildcard := p.subjectWildcard()

	stream, err := p.js.Stream(ctx, p.stream)
	if err != nil {
		if !isStreamMissingErr(err) {
			return fmt.Errorf("failed to look up stream %s: %w", p.stream, err)
		}

		_, err = p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     p.stream,
			Subjects: []string{wildcard},
		})
		if err != nil {
			return fmt.Errorf("failed to create stream %s: %w", p.stream, err)
		}

		p.logger.Info().Str("stream", p.stream).Str("subjects", wildcard).Msg("Created correlation result stream")

		return nil
	}

	cfg := stream.CachedInfo().Config

	subjects := ensureSubjectList(slices.Clone(cfg.Subjects), wildcard)
	if len(subjects) == len(cfg.Subjects) {
		return nil
	}

	cfg.Subjects = subjects

	if _, err := p.js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to add %s to stream %s: %w", wildcard, p.stream, err)
	}

	p.logger.Info().Str("stream", p.stream).Strs("subjects", subjects).Msg("Extended correlation result stream")

	return nil
}

// Publish wraps one engine result in a CloudEvent and waits for the stream ack.
func (p *ResultPublisher) Publish(ctx context.Context, runID string, result models.Result) error {
	if result == nil {
		return errUnknownResult
	}

	kind := result.Kind()
	if kind != models.ResultKindCorrelation && kind != models.ResultKindWarning {
		return fmt.Errorf("%w: %s", errUnknownResult, kind)
	}

	now := p.now().UTC()
	event := models.CloudEvent{
		SpecVersion:     cloudEventsSpec,
		ID:              uuid.NewString(),
		Source:          eventSource,
		Type:            eventTypePrefix + string(kind),
		DataContentType: jsonContentType,
		Subject:         p.Subject(kind),
		Time:            &now,
		Data: models.CorrelationEventData{
			RunID:   runID,
			Kind:    kind,
			Payload: result,
		},
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", kind, err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, data, jetstream.WithMsgID(event.ID))
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", kind, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published correlation event")

	return nil
}

// ensureSubjectList appends subject unless an existing pattern already covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	for _, pattern := range subjects {
		if matchesSubject(pattern, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

// matchesSubject reports whether pattern covers subject. A subject that is
// itself a wildcard is covered only by a pattern at least as broad.
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, token := range pt {
		if token == ">" {
			return len(st) > i
		}

		if i >= len(st) {
			return false
		}

		if st[i] == ">" || (token != "*" && token != st[i]) {
			return false
		}
	}

	return len(pt) == len(st)
}

func isStreamMissingErr(err error) bool {
	return errors.Is(err, jetstream.ErrStreamNotFound) ||
		errors.Is(err, jetstream.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrStreamNotFound) ||
		errors.Is(err, nats.ErrNoStreamResponse) ||
		errors.Is(err, nats.ErrNoResponders)
}
