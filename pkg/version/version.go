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

// Package version reports which build of the correlator binaries is running.
package version

// Overridden at link time, e.g.
// -ldflags "-X github.com/carverauto/correlator/pkg/version.version=1.2.0".
//
//nolint:gochecknoglobals // ldflags injection
var (
	version = "dev"
	buildID = "dev"
)

// Info identifies one build.
type Info struct {
	Version string `json:"version"`
	BuildID string `json:"build_id"`
}

// Get returns the build of the running binary.
func Get() Info {
	return Info{Version: version, BuildID: buildID}
}

func (i Info) String() string {
	if i.BuildID == "" || i.BuildID == i.Version {
		return i.Version
	}

	return i.Version + " (build " + i.BuildID + ")"
}
