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
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/promise"
)

// pendingExecution is one submitted shell action and the OS it was resolved for.
type pendingExecution struct {
	entity  int
	os      *models.OSType
	promise *ExecutionPromise
}

// submitExecutions sends one shell action per eligible entity without waiting.
// Entities no adapter can serve are skipped, as are failed submissions.
func (r *run) submitExecutions(ctx context.Context, table commandTable, eligible []eligibleEntity) []pendingExecution {
	log := r.engine.logger
	pending := make([]pendingExecution, 0, len(eligible))

	for _, el := range eligible {
		entity := &r.entities[el.index]

		shell, ok := table.shellCommand(el.os)
		if !ok {
			log.Debug().
				Str("internal_id", entity.InternalID).
				Interface("os_type", el.os).
				Msg("No correlation command for entity OS, skipping execution")

			continue
		}

		action := &models.ShellAction{
			ActionType:   models.ActionExecuteShell,
			InternalID:   entity.InternalID,
			ShellCommand: shell,
		}

		p, err := r.engine.gateway.SubmitExecution(ctx, action)
		if err != nil || p == nil {
			log.Warn().
				Err(err).
				Str("internal_id", entity.InternalID).
				Msg("Failed to submit correlation execution")

			continue
		}

		pending = append(pending, pendingExecution{entity: el.index, os: el.os, promise: p})
	}

	recordSubmitted(ctx, len(pending))

	return pending
}

// awaitExecutions is the engine's only blocking point: one wait for every
// promise under the call's timeout. timedOut reports that the budget ran out;
// the caller's own context ending is returned as an error.
func (r *run) awaitExecutions(ctx context.Context, pending []pendingExecution) (timedOut bool, err error) {
	ctx, span := r.engine.tracer.Start(ctx, "correlation.wait")
	defer span.End()

	waitCtx, cancel := context.WithTimeout(ctx, r.engine.timeout)
	defer cancel()

	promises := make([]*ExecutionPromise, len(pending))
	for i := range pending {
		promises[i] = pending[i].promise
	}

	start := time.Now()

	for {
		remaining := promise.PendingOf(promises...)
		if len(remaining) == 0 {
			break
		}

		err = promise.WaitAll(waitCtx, remaining...)
		if err == nil {
			continue
		}

		if ctx.Err() != nil {
			return false, ctx.Err()
		}

		if errors.Is(err, context.DeadlineExceeded) {
			timedOut = true
			break
		}

		return false, err
	}

	elapsed := time.Since(start)
	recordWait(ctx, elapsed, timedOut)
	span.SetAttributes(attribute.Int("submitted", len(pending)), attribute.Bool("timed_out", timedOut))

	r.engine.logger.Debug().
		Int("submitted", len(pending)).
		Dur("elapsed", elapsed).
		Bool("timed_out", timedOut).
		Msg("Correlation executions settled")

	return timedOut, nil
}

func (r *run) timeoutWarning(pending []pendingExecution) models.Warning {
	var unresolved []string

	for _, pe := range pending {
		if pe.promise.IsPending() {
			unresolved = append(unresolved, r.entities[pe.entity].InternalID)
		}
	}

	return models.Warning{
		Title: "Correlation execution timed out",
		Content: map[string]interface{}{
			"timeout":      r.engine.timeout.String(),
			"submitted":    len(pending),
			"unresolved":   len(unresolved),
			"internal_ids": unresolved,
		},
		NotificationType: models.NotificationExecutionTimeout,
	}
}
