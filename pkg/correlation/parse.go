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
	"strings"

	"github.com/carverauto/correlator/pkg/models"
)

// discoveredID is an adapter's id for the device, as found by execution.
type discoveredID struct {
	pluginName string
	id         string
}

// executionResult is the usable evidence from one entity's execution.
// responder is the plugin_unique_name of the adapter-device that ran it.
type executionResult struct {
	entity     int
	responder  string
	discovered []discoveredID
}

// parseExecution turns a settled execution into discovered ids. Anything that
// did not succeed is absent evidence, not an error.
func (r *run) parseExecution(ctx context.Context, table commandTable, pe pendingExecution) (executionResult, bool) {
	log := r.engine.logger
	internalID := r.entities[pe.entity].InternalID

	if !pe.promise.IsFulfilled() {
		if err := pe.promise.Err(); err != nil {
			log.Debug().Err(err).Str("internal_id", internalID).Msg("Correlation execution rejected")
		}

		return executionResult{}, false
	}

	resp, _ := pe.promise.Value()
	if !resp.Succeeded() {
		log.Debug().
			Str("internal_id", internalID).
			Str("result", resp.Output.Result).
			Msg("Correlation execution did not succeed")

		return executionResult{}, false
	}

	if len(resp.Output.Product) != len(table) {
		log.Warn().
			Str("internal_id", internalID).
			Int("outputs", len(resp.Output.Product)).
			Int("commands", len(table)).
			Msg("Correlation output does not match the command table, ignoring")

		return executionResult{}, false
	}

	var osType models.OSType

	switch {
	case resp.OSType != nil:
		osType = *resp.OSType
	case pe.os != nil:
		osType = *pe.os
	}

	result := executionResult{entity: pe.entity, responder: resp.Responder}

	for i, output := range resp.Output.Product {
		entry := table[i]

		if isPlaceholderOutput(output) {
			continue
		}

		id, err := r.engine.gateway.ParseResult(ctx, entry.pluginName, models.CommandResult{Result: output, OS: osType})
		if err != nil {
			log.Debug().
				Err(err).
				Str("internal_id", internalID).
				Str("plugin_name", entry.pluginName).
				Msg("Adapter could not parse correlation output")

			continue
		}

		if id = strings.TrimSpace(id); id != "" {
			result.discovered = append(result.discovered, discoveredID{pluginName: entry.pluginName, id: id})
		}
	}

	if len(result.discovered) == 0 {
		return executionResult{}, false
	}

	return result, true
}
