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
	"slices"

	"github.com/carverauto/correlator/pkg/models"
)

type contradiction struct {
	PluginName   string   `json:"plugin_name"`
	RecordedIDs  []string `json:"recorded_ids"`
	DiscoveredID string   `json:"discovered_id"`
}

// findContradictions drops every result whose entity already records a
// different id for a plugin the execution reported on. One conflict discards
// the whole result: the responding device can no longer be trusted.
func (r *run) findContradictions(results []executionResult) ([]executionResult, []models.Warning) {
	kept := make([]executionResult, 0, len(results))

	var warnings []models.Warning

	for _, res := range results {
		entity := &r.entities[res.entity]

		var conflicts []contradiction

		for _, d := range res.discovered {
			recorded := entity.IDsForPlugin(d.pluginName)
			if len(recorded) > 0 && !slices.Contains(recorded, d.id) {
				conflicts = append(conflicts, contradiction{
					PluginName:   d.pluginName,
					RecordedIDs:  recorded,
					DiscoveredID: d.id,
				})
			}
		}

		if len(conflicts) == 0 {
			kept = append(kept, res)
			continue
		}

		r.engine.logger.Warn().
			Str("internal_id", entity.InternalID).
			Str("responder", res.responder).
			Int("conflicts", len(conflicts)).
			Msg("Execution contradicts recorded adapter ids, dropping its correlations")

		warnings = append(warnings, models.Warning{
			Title: "Correlation contradiction",
			Content: map[string]interface{}{
				"internal_id": entity.InternalID,
				"responder":   res.responder,
				"conflicts":   conflicts,
			},
			NotificationType: models.NotificationCorrelationContradiction,
		})
	}

	return kept, warnings
}
