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

	"github.com/carverauto/correlator/pkg/models"
)

// flatDevice locates one adapter-device inside the batch.
type flatDevice struct {
	entity int
	device *models.AdapterDevice
}

type pluginIDKey struct {
	pluginName string
	id         string
}

// deferredCorrelation points at a device the batch does not contain.
type deferredCorrelation struct {
	src       models.AdapterIdentity
	srcEntity int
	dst       models.AdapterIdentity
}

// run holds everything scoped to one Correlate call.
type run struct {
	engine   *Engine
	entities []models.Entity
	flat     []flatDevice

	// byPluginID keeps the first adapter-device seen per (plugin_name, id).
	byPluginID map[pluginIDKey]flatDevice
	unbound    map[int]map[models.AdapterIdentity]struct{}

	deferred       []deferredCorrelation
	emittedTargets map[models.AdapterIdentity]struct{}
}

func newRun(e *Engine, entities []models.Entity) *run {
	r := &run{
		engine:         e,
		entities:       entities,
		byPluginID:     make(map[pluginIDKey]flatDevice),
		unbound:        make(map[int]map[models.AdapterIdentity]struct{}),
		emittedTargets: make(map[models.AdapterIdentity]struct{}),
	}

	for i := range entities {
		for j := range entities[i].AdapterDevices {
			fd := flatDevice{entity: i, device: &entities[i].AdapterDevices[j]}
			r.flat = append(r.flat, fd)

			key := pluginIDKey{pluginName: fd.device.PluginName, id: fd.device.Data.ID}
			if _, ok := r.byPluginID[key]; !ok {
				r.byPluginID[key] = fd
			}
		}
	}

	return r
}

// correlate runs every stage up to emission. Deferred correlations are left
// in r.deferred for deduceUnavailable.
func (r *run) correlate(ctx context.Context, emit func(models.Result) bool) error {
	log := r.engine.logger

	logic, err := r.logicCorrelations()
	if err != nil {
		return err
	}

	log.Debug().Int("count", len(logic)).Msg("Logic correlations computed")

	for _, c := range logic {
		if !emit(c) {
			return errStopped
		}
	}

	eligible := make([]eligibleEntity, 0, len(r.entities))

	for i := range r.entities {
		osType, err := resolveOSType(&r.entities[i])
		if err != nil {
			if !emit(osInconsistencyWarning(&r.entities[i], err)) {
				return errStopped
			}

			continue
		}

		eligible = append(eligible, eligibleEntity{index: i, os: osType})
	}

	if len(eligible) == 0 {
		return nil
	}

	table := r.buildCommandTable(ctx)
	if !table.supportsAnything() {
		log.Debug().Msg("No adapter in the batch supports correlation commands")
		return nil
	}

	pending := r.submitExecutions(ctx, table, eligible)
	if len(pending) == 0 {
		return nil
	}

	timedOut, err := r.awaitExecutions(ctx, pending)
	if err != nil {
		return err
	}

	if timedOut {
		if !emit(r.timeoutWarning(pending)) {
			return errStopped
		}
	}

	results := make([]executionResult, 0, len(pending))

	for _, pe := range pending {
		if res, ok := r.parseExecution(ctx, table, pe); ok {
			results = append(results, res)
		}
	}

	kept, warnings := r.findContradictions(results)
	for _, w := range warnings {
		if !emit(w) {
			return errStopped
		}
	}

	for _, c := range r.executionCorrelations(kept) {
		if !emit(c) {
			return errStopped
		}
	}

	return nil
}

// isUnbound reports whether entity forbids correlating with target.
func (r *run) isUnbound(entity int, target models.AdapterIdentity) bool {
	forbidden, ok := r.unbound[entity]
	if !ok {
		forbidden = make(map[models.AdapterIdentity]struct{})

		pairs, err := r.entities[entity].StronglyUnboundWith()
		if err != nil {
			r.engine.logger.Error().Err(err).Msg("Ignoring malformed unbound tag")
		}

		for _, p := range pairs {
			forbidden[p] = struct{}{}
		}

		r.unbound[entity] = forbidden
	}

	_, found := forbidden[target]

	return found
}

// forbidden applies the unbound constraint in both directions. otherEntity is
// -1 when the second side is not part of the batch.
func (r *run) forbidden(firstEntity int, first, second models.AdapterIdentity, otherEntity int) bool {
	if r.isUnbound(firstEntity, second) {
		return true
	}

	return otherEntity >= 0 && r.isUnbound(otherEntity, first)
}
