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

//go:generate mockgen -destination=mock_gateway.go -package=correlation github.com/carverauto/correlator/pkg/correlation Gateway

import (
	"context"

	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/promise"
)

// ExecutionPromise settles with the output of one shell action.
type ExecutionPromise = promise.Promise[models.ExecutionResponse]

// Gateway is the engine's only view of the outside world: the execution
// controller and the adapters' correlation hooks.
type Gateway interface {
	// SubmitExecution hands a shell action to the execution controller and
	// returns immediately. The promise settles when a responder replies.
	SubmitExecution(ctx context.Context, action *models.ShellAction) (*ExecutionPromise, error)

	// CorrelationCommands returns the per-OS command an adapter instance runs to
	// discover its own id for a device. An empty map means unsupported.
	CorrelationCommands(ctx context.Context, pluginUniqueName string) (map[models.OSType]string, error)

	// ParseResult asks the adapter type to turn command output into its device id.
	// An empty id means the output identified nothing.
	ParseResult(ctx context.Context, pluginName string, result models.CommandResult) (string, error)
}
