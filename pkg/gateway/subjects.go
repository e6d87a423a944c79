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

package gateway

import (
	"fmt"
	"strings"
)

const (
	// DefaultSubjectPrefix roots every correlation subject.
	DefaultSubjectPrefix = "correlator"

	// QueueGroup load-balances plugin requests across responder processes.
	QueueGroup = "correlation-plugins"
)

// ExecuteSubject addresses the execution controller for one entity.
func ExecuteSubject(prefix, internalID string) (string, error) {
	return subject(prefix, "execute", internalID)
}

// ExecuteWildcard matches every execution request under prefix.
func ExecuteWildcard(prefix string) string {
	return prefixOrDefault(prefix) + ".execute.*"
}

// CommandsSubject addresses one adapter instance's correlation commands.
func CommandsSubject(prefix, pluginUniqueName string) (string, error) {
	return subject(prefix, "plugins", pluginUniqueName, "commands")
}

// ParseSubject addresses an adapter type's output parser.
func ParseSubject(prefix, pluginName string) (string, error) {
	return subject(prefix, "plugins", pluginName, "parse")
}

func subject(prefix string, tokens ...string) (string, error) {
	for _, token := range tokens {
		if err := validateToken(token); err != nil {
			return "", err
		}
	}

	return prefixOrDefault(prefix) + "." + strings.Join(tokens, "."), nil
}

func prefixOrDefault(prefix string) string {
	if prefix == "" {
		return DefaultSubjectPrefix
	}

	return prefix
}

func validateToken(token string) error {
	if token == "" || strings.ContainsAny(token, ". \t\r\n*>") {
		return fmt.Errorf("%w: %q", ErrInvalidSubjectToken, token)
	}

	return nil
}
