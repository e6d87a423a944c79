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

import "errors"

var (
	// ErrDuplicateAdapterDevice marks two adapter-devices sharing plugin name,
	// unique name and id. It signals corrupt input and aborts the batch.
	ErrDuplicateAdapterDevice = errors.New("duplicate adapter device")
	// ErrOSTypeInconsistency marks an entity whose adapters disagree on its OS.
	ErrOSTypeInconsistency = errors.New("os type inconsistency")
	// ErrNilGateway is returned by NewEngine without a gateway.
	ErrNilGateway = errors.New("correlation gateway is required")

	errStopped = errors.New("consumer stopped iteration")
)
