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

// deduceUnavailable correlates sources that independently resolved to the
// same device absent from the batch. Sorting by destination puts every such
// group next to each other.
func (r *run) deduceUnavailable() []models.Correlation {
	if len(r.deferred) < 2 {
		return nil
	}

	sorted := slices.Clone(r.deferred)
	slices.SortStableFunc(sorted, func(a, b deferredCorrelation) int {
		return cmp.Or(
			cmp.Compare(a.dst.Plugin, b.dst.Plugin),
			cmp.Compare(a.dst.ID, b.dst.ID),
			cmp.Compare(a.src.Plugin, b.src.Plugin),
			cmp.Compare(a.src.ID, b.src.ID),
		)
	})

	var out []models.Correlation

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]

		if prev.dst != cur.dst || prev.src == cur.src {
			continue
		}

		if r.forbidden(prev.srcEntity, prev.src, cur.src, cur.srcEntity) {
			continue
		}

		out = append(out, models.NewCorrelation(prev.src, cur.src, models.ReasonNonexistentDeduction,
			fmt.Sprintf("Both devices resolve to %s, which is not in this batch", cur.dst)))
	}

	if len(out) > 0 {
		r.engine.logger.Debug().
			Int("deferred", len(r.deferred)).
			Int("deduced", len(out)).
			Msg("Deduced correlations through unavailable devices")
	}

	return out
}
