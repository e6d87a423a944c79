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

package correlationsvc

import "errors"

var (
	errNoEntitySource      = errors.New("either database or entities_file must be configured")
	errMultipleSources     = errors.New("database and entities_file are mutually exclusive")
	errNegativeInterval    = errors.New("interval must not be negative")
	errExecutionBudget     = errors.New("gateway execution_timeout must not be shorter than execution_timeout")
	errMissingEngine       = errors.New("correlation engine is required")
	errMissingSource       = errors.New("entity source is required")
	errMissingPublisher    = errors.New("result publisher is required")
	errMissingEntitiesFile = errors.New("entities file path is required")
)
