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
	"cmp"
	"fmt"
	"slices"

	"github.com/carverauto/correlator/pkg/models"
)

const logicDescription = "They have the same plugin name and id"

// logicCorrelations pairs adapter-devices reported by two instances of the
// same adapter type with the same id. Sorting makes every such group
// contiguous, so comparing neighbours finds them all in O(n log n).
func (r *run) logicCorrelations() ([]models.Correlation, error) {
	sorted := slices.Clone(r.flat)
	slices.SortStableFunc(sorted, func(a, b flatDevice) int {
		return cmp.Or(
			cmp.Compare(a.device.PluginName, b.device.PluginName),
			cmp.Compare(a.device.Data.ID, b.device.Data.ID),
			cmp.Compare(a.device.PluginUniqueName, b.device.PluginUniqueName),
		)
	})

	var out []models.Correlation

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]

		if prev.device.PluginName != cur.device.PluginName || prev.device.Data.ID != cur.device.Data.ID {
			continue
		}

		if prev.device.PluginUniqueName == cur.device.PluginUniqueName {
			return nil, fmt.Errorf("%w: plugin %s instance %s id %s (entities %s and %s)",
				ErrDuplicateAdapterDevice,
				cur.device.PluginName, cur.device.PluginUniqueName, cur.device.Data.ID,
				r.entities[prev.entity].InternalID, r.entities[cur.entity].InternalID)
		}

		// Already merged into one entity, nothing to do.
		if prev.entity == cur.entity {
			continue
		}

		first, second := prev.device.Identity(), cur.device.Identity()
		if r.forbidden(prev.entity, first, second, cur.entity) {
			r.engine.logger.Debug().
				Str("first", first.String()).
				Str("second", second.String()).
				Msg("Skipping logic correlation of strongly unbound devices")

			continue
		}

		out = append(out, models.NewCorrelation(first, second, models.ReasonLogic, logicDescription))
	}

	return out, nil
}
