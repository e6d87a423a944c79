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

package models

// ActionExecuteShell is the only action type the correlator submits.
const ActionExecuteShell = "execute_shell"

// ExecutionSuccess is the result value of a successful execution.
const ExecutionSuccess = "Success"

// ShellAction asks the execution controller to run an ordered command list on one device.
type ShellAction struct {
	ActionType   string              `json:"action_type"`
	InternalID   string              `json:"internal_id"`
	ShellCommand map[OSType][]string `json:"shell_command"`
}

// ExecutionResponse is the value a fulfilled execution promise resolves with.
// Responder is the plugin_unique_name of the adapter-device that ran the commands.
type ExecutionResponse struct {
	Output    ExecutionOutput `json:"output"`
	Responder string          `json:"responder"`
	OSType    *OSType         `json:"os_type,omitempty"`
}

// ExecutionOutput holds one stdout string per submitted command, in order.
type ExecutionOutput struct {
	Result  string   `json:"result"`
	Product []string `json:"product,omitempty"`
}

// Succeeded reports whether the output can be zipped against the command table.
func (r *ExecutionResponse) Succeeded() bool {
	return r != nil && r.Output.Result == ExecutionSuccess && r.Output.Product != nil
}

// CommandResult is what an adapter parser receives for one command.
type CommandResult struct {
	Result string `json:"result"`
	OS     OSType `json:"os"`
}

// ParseReply is the wire reply of a remote parse request. An empty ID means
// the output did not identify a device.
type ParseReply struct {
	ID    string `json:"id,omitempty"`
	Error string `json:"error,omitempty"`
}
