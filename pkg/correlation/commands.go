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
	"slices"
	"strings"

	"github.com/carverauto/correlator/pkg/models"
)

// NoCommandOutput is printed by the placeholder run for adapters that have no
// command for a device's OS. Its output is dropped before parsing.
const NoCommandOutput = "__correlation_no_command__"

// placeholderCommand prints NoCommandOutput in cmd.exe and POSIX shells alike.
const placeholderCommand = "echo " + NoCommandOutput

// commandEntry is one adapter type's correlation commands.
type commandEntry struct {
	pluginName       string
	pluginUniqueName string
	commands         map[models.OSType]string
}

// commandTable is ordered; execution output is zipped against it by position.
type commandTable []commandEntry

// buildCommandTable asks one representative instance per adapter type for its
// commands, in first-seen order. Lookup failures count as unsupported.
func (r *run) buildCommandTable(ctx context.Context) commandTable {
	var table commandTable

	seen := make(map[string]struct{})

	for _, fd := range r.flat {
		name := fd.device.PluginName
		if _, ok := seen[name]; ok {
			continue
		}

		seen[name] = struct{}{}

		commands, err := r.engine.gateway.CorrelationCommands(ctx, fd.device.PluginUniqueName)
		if err != nil {
			r.engine.logger.Warn().
				Err(err).
				Str("plugin_unique_name", fd.device.PluginUniqueName).
				Msg("Failed to fetch correlation commands, treating adapter as unsupported")

			commands = nil
		}

		table = append(table, commandEntry{
			pluginName:       name,
			pluginUniqueName: fd.device.PluginUniqueName,
			commands:         commands,
		})
	}

	return table
}

func (t commandTable) supportsAnything() bool {
	for _, entry := range t {
		if len(entry.commands) > 0 {
			return true
		}
	}

	return false
}

// commandsFor returns one command per table entry for osType, substituting the
// placeholder where an adapter has none. ok is false when every entry is a
// placeholder.
func (t commandTable) commandsFor(osType models.OSType) (cmds []string, ok bool) {
	cmds = make([]string, 0, len(t))

	for _, entry := range t {
		cmd, found := entry.commands[osType]
		if !found || strings.TrimSpace(cmd) == "" {
			cmds = append(cmds, placeholderCommand)
			continue
		}

		cmds = append(cmds, cmd)
		ok = true
	}

	return cmds, ok
}

// knownOSTypes lists every OS some adapter has a command for.
func (t commandTable) knownOSTypes() []models.OSType {
	var out []models.OSType

	for _, entry := range t {
		for osType := range entry.commands {
			if !slices.Contains(out, osType) {
				out = append(out, osType)
			}
		}
	}

	slices.Sort(out)

	return out
}

// shellCommand builds the per-OS command lists for an entity. With a known OS
// only that list is sent; otherwise every supported OS is offered and the
// responder picks. ok is false when nothing can run.
func (t commandTable) shellCommand(osType *models.OSType) (map[models.OSType][]string, bool) {
	candidates := t.knownOSTypes()
	if osType != nil {
		candidates = []models.OSType{*osType}
	}

	shell := make(map[models.OSType][]string, len(candidates))

	for _, candidate := range candidates {
		if cmds, ok := t.commandsFor(candidate); ok {
			shell[candidate] = cmds
		}
	}

	return shell, len(shell) > 0
}

func isPlaceholderOutput(output string) bool {
	return strings.TrimSpace(output) == NoCommandOutput
}
