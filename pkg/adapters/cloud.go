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
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/carverauto/correlator/pkg/models"
)

// Plugin names of the cloud adapters.
const (
	AWSPluginName   = "aws_adapter"
	GCPPluginName   = "gcp_adapter"
	AzurePluginName = "azure_adapter"
)

const (
	awsInstanceIDURL = "http://169.254.169.254/latest/meta-data/instance-id"
	gcpInstanceIDURL = "http://metadata.google.internal/computeMetadata/v1/instance/id"
	azureVMIDURL     = "http://169.254.169.254/metadata/instance/compute/vmId?api-version=2021-02-01&format=text"
)

var (
	awsInstanceID = regexp.MustCompile(`^i-[0-9a-f]{8,17}$`)
	gcpInstanceID = regexp.MustCompile(`^[0-9]{1,20}$`)
)

// metadataPlugin reads the instance id from a cloud metadata service.
type metadataPlugin struct {
	name     string
	commands map[models.OSType]string
	parse    func(line string) (string, error)
}

func (p *metadataPlugin) Name() string { return p.name }

func (p *metadataPlugin) CorrelationCommands(string) map[models.OSType]string {
	out := make(map[models.OSType]string, len(p.commands))
	for osType, cmd := range p.commands {
		out[osType] = cmd
	}

	return out
}

func (p *metadataPlugin) ParseCorrelationResult(result models.CommandResult) (string, error) {
	line := lastLine(result.Result)
	if line == "" {
		return "", fmt.Errorf("%s: %w", p.name, ErrUnrecognizedOutput)
	}

	id, err := p.parse(line)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.name, err)
	}

	return id, nil
}

func curl(url string, headers ...string) string {
	var b strings.Builder

	b.WriteString("curl -s -m 5")

	for _, h := range headers {
		fmt.Fprintf(&b, " -H '%s'", h)
	}

	fmt.Fprintf(&b, " '%s'", url)

	return b.String()
}

func invokeRestMethod(url, headers string) string {
	if headers != "" {
		headers = " -Headers " + headers
	}

	return fmt.Sprintf(`powershell -NoProfile -Command "Invoke-RestMethod -TimeoutSec 5%s -Uri '%s'"`, headers, url)
}

// NewAWSPlugin correlates EC2 instances by instance id.
func NewAWSPlugin() Plugin {
	return &metadataPlugin{
		name: AWSPluginName,
		commands: map[models.OSType]string{
			models.OSLinux:   curl(awsInstanceIDURL),
			models.OSWindows: invokeRestMethod(awsInstanceIDURL, ""),
		},
		parse: func(line string) (string, error) {
			if !awsInstanceID.MatchString(line) {
				return "", fmt.Errorf("%w: %q is not an instance id", ErrUnrecognizedOutput, line)
			}

			return line, nil
		},
	}
}

// NewGCPPlugin correlates Compute Engine instances by numeric instance id.
func NewGCPPlugin() Plugin {
	return &metadataPlugin{
		name: GCPPluginName,
		commands: map[models.OSType]string{
			models.OSLinux:   curl(gcpInstanceIDURL, "Metadata-Flavor: Google"),
			models.OSWindows: invokeRestMethod(gcpInstanceIDURL, "@{'Metadata-Flavor'='Google'}"),
		},
		parse: func(line string) (string, error) {
			if !gcpInstanceID.MatchString(line) {
				return "", fmt.Errorf("%w: %q is not an instance id", ErrUnrecognizedOutput, line)
			}

			return line, nil
		},
	}
}

// NewAzurePlugin correlates Azure VMs by vmId.
func NewAzurePlugin() Plugin {
	return &metadataPlugin{
		name: AzurePluginName,
		commands: map[models.OSType]string{
			models.OSLinux:   curl(azureVMIDURL, "Metadata: true"),
			models.OSWindows: invokeRestMethod(azureVMIDURL, "@{'Metadata'='true'}"),
		},
		parse: func(line string) (string, error) {
			id, err := uuid.Parse(line)
			if err != nil {
				return "", fmt.Errorf("%w: %w", ErrUnrecognizedOutput, err)
			}

			return id.String(), nil
		},
	}
}
