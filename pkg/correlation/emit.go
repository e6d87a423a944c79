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
	"fmt"

	"github.com/carverauto/correlator/pkg/models"
)

// executionCorrelations turns surviving evidence into Execution correlations.
// Targets missing from the batch are deferred for deduceUnavailable.
func (r *run) executionCorrelations(results []executionResult) []models.Correlation {
	log := r.engine.logger

	var out []models.Correlation

	for _, res := range results {
		entity := &r.entities[res.entity]

		responder, ok := entity.AdapterDeviceByUniqueName(res.responder)
		if !ok {
			log.Warn().
				Str("internal_id", entity.InternalID).
				Str("responder", res.responder).
				Msg("Execution responder is not an adapter of the entity, ignoring its result")

			continue
		}

		first := responder.Identity()

		for _, d := range res.discovered {
			if entity.HasPlugin(d.pluginName) {
				continue
			}

			byType := models.AdapterIdentity{Plugin: d.pluginName, ID: d.id}

			target, found := r.byPluginID[pluginIDKey{pluginName: d.pluginName, id: d.id}]
			if !found {
				r.deferred = append(r.deferred, deferredCorrelation{src: first, srcEntity: res.entity, dst: byType})
				continue
			}

			c := models.NewCorrelation(first, byType, models.ReasonExecution,
				fmt.Sprintf("%s ran the %s correlation command and found id %s", first, d.pluginName, d.id)).
				WithSecond(target.device.Identity())

			if c.IsSelf() {
				log.Error().
					Str("internal_id", entity.InternalID).
					Str("device", first.String()).
					Msg("Execution correlated a device with itself, dropping")

				continue
			}

			second := c.Second()
			if r.forbidden(res.entity, first, second, target.entity) || r.isUnbound(res.entity, byType) {
				log.Debug().
					Str("first", first.String()).
					Str("second", second.String()).
					Msg("Skipping execution correlation of strongly unbound devices")

				continue
			}

			if _, dup := r.emittedTargets[second]; dup {
				continue
			}

			r.emittedTargets[second] = struct{}{}
			out = append(out, c)
		}
	}

	return out
}
