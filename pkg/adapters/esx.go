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

package adapters

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/carverauto/correlator/pkg/models"
)

// ESXPluginName is the plugin_name of the vSphere adapter.
const ESXPluginName = "esx_adapter"

// VMware guests expose a BIOS UUID starting with 0x42.
const vmwareUUIDPrefix = 0x42

type esxPlugin struct{}

// NewESXPlugin correlates vSphere guests by their SMBIOS system UUID.
func NewESXPlugin() Plugin { return esxPlugin{} }

func (esxPlugin) Name() string { return ESXPluginName }

func (esxPlugin) CorrelationCommands(string) map[models.OSType]string {
	return map[models.OSType]string{
		models.OSLinux:   "cat /sys/class/dmi/id/product_uuid 2>/dev/null || dmidecode -s system-uuid",
		models.OSWindows: "wmic csproduct get uuid",
		models.OSX:       `ioreg -rd1 -c IOPlatformExpertDevice | awk -F'"' '/IOPlatformUUID/{print $4}'`,
	}
}

func (esxPlugin) ParseCorrelationResult(result models.CommandResult) (string, error) {
	line := lastLine(result.Result, "UUID")
	if line == "" {
		return "", fmt.Errorf("%s: %w", ESXPluginName, ErrUnrecognizedOutput)
	}

	id, err := uuid.Parse(line)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", ESXPluginName, ErrUnrecognizedOutput, err)
	}

	return normalizeVMwareUUID(id).String(), nil
}

// normalizeVMwareUUID undoes the little-endian SMBIOS encoding some firmware
// and older dmidecode versions report, so every OS yields the vSphere form.
func normalizeVMwareUUID(id uuid.UUID) uuid.UUID {
	if id[0] == vmwareUUIDPrefix || id[3] != vmwareUUIDPrefix {
		return id
	}

	swapped := id
	swapped[0], swapped[1], swapped[2], swapped[3] = id[3], id[2], id[1], id[0]
	swapped[4], swapped[5] = id[5], id[4]
	swapped[6], swapped[7] = id[7], id[6]

	return swapped
}
