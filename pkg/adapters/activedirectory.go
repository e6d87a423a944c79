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
	"strings"

	"github.com/carverauto/correlator/pkg/models"
)

// ActiveDirectoryPluginName is the plugin_name of the AD adapter.
const ActiveDirectoryPluginName = "active_directory_adapter"

const adComputerDNCommand = `powershell -NoProfile -Command "([adsisearcher]'(&(objectCategory=computer)(name=' + $env:COMPUTERNAME + '))').FindOne().Properties.distinguishedname"`

type activeDirectoryPlugin struct{}

// NewActiveDirectoryPlugin correlates domain-joined Windows hosts by the
// distinguished name of their computer object.
func NewActiveDirectoryPlugin() Plugin { return activeDirectoryPlugin{} }

func (activeDirectoryPlugin) Name() string { return ActiveDirectoryPluginName }

func (activeDirectoryPlugin) CorrelationCommands(string) map[models.OSType]string {
	return map[models.OSType]string{models.OSWindows: adComputerDNCommand}
}

func (activeDirectoryPlugin) ParseCorrelationResult(result models.CommandResult) (string, error) {
	if result.OS != "" && result.OS != models.OSWindows {
		return "", fmt.Errorf("%s: %w: %s", ActiveDirectoryPluginName, ErrUnsupportedOS, result.OS)
	}

	dn := lastLine(result.Result)

	upper := strings.ToUpper(dn)
	if !strings.HasPrefix(upper, "CN=") || !strings.Contains(upper, ",DC=") {
		return "", fmt.Errorf("%s: %w: %q is not a distinguished name", ActiveDirectoryPluginName, ErrUnrecognizedOutput, dn)
	}

	return dn, nil
}
