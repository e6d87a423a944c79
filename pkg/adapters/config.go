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
	"errors"
	"fmt"

	"github.com/carverauto/correlator/pkg/gateway"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

var errNoInstances = errors.New("at least one adapter instance is required")

// ResponderConfig is the configuration of the correlation-plugins binary.
type ResponderConfig struct {
	NATS          models.NATSConfig `json:"nats"`
	SubjectPrefix string            `json:"subject_prefix,omitempty"`
	Instances     []Instance        `json:"instances"`
	Logging       *logger.Config    `json:"logging,omitempty"`
}

func (c *ResponderConfig) Validate() error {
	if err := c.NATS.Validate(); err != nil {
		return fmt.Errorf("nats: %w", err)
	}

	if len(c.Instances) == 0 {
		return errNoInstances
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = gateway.DefaultSubjectPrefix
	}

	return nil
}

// Registry builds the built-in registry with every configured instance.
func (c *ResponderConfig) Registry() (*Registry, error) {
	r := NewBuiltinRegistry()

	for _, inst := range c.Instances {
		if err := r.AddInstance(inst); err != nil {
			return nil, err
		}
	}

	return r, nil
}
