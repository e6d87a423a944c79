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

// Package correlationsvc runs the correlation engine periodically over the
// entity batch and publishes what it finds.
package correlationsvc

import (
	"fmt"
	"time"

	"github.com/carverauto/correlator/pkg/correlation"
	"github.com/carverauto/correlator/pkg/db"
	"github.com/carverauto/correlator/pkg/gateway"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
	"github.com/carverauto/correlator/pkg/natsutil"
)

const defaultInterval = 15 * time.Minute

// Config is the on-disk configuration of the correlator service.
type Config struct {
	NATS         models.NATSConfig `json:"nats"`
	Database     *db.Config        `json:"database,omitempty"`
	EntitiesFile string            `json:"entities_file,omitempty"`

	// Interval between runs. The first run starts immediately.
	Interval         models.Duration `json:"interval"`
	ExecutionTimeout models.Duration `json:"execution_timeout"`

	StreamName    string         `json:"stream_name,omitempty"`
	SubjectPrefix string         `json:"subject_prefix,omitempty"`
	Gateway       gateway.Config `json:"gateway"`
	// RunMigrations applies the entities schema at startup.
	RunMigrations bool `json:"run_migrations,omitempty"`

	Logging *logger.Config `json:"logging,omitempty"`
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if err := c.NATS.Validate(); err != nil {
		return fmt.Errorf("nats: %w", err)
	}

	switch {
	case c.Database == nil && c.EntitiesFile == "":
		return errNoEntitySource
	case c.Database != nil && c.EntitiesFile != "":
		return errMultipleSources
	case c.Database != nil:
		if err := c.Database.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if c.Interval < 0 {
		return errNegativeInterval
	}

	if c.Interval == 0 {
		c.Interval = models.Duration(defaultInterval)
	}

	if c.ExecutionTimeout <= 0 {
		c.ExecutionTimeout = models.Duration(correlation.DefaultExecutionTimeout)
	}

	if c.SubjectPrefix == "" {
		c.SubjectPrefix = gateway.DefaultSubjectPrefix
	}

	if c.StreamName == "" {
		c.StreamName = natsutil.DefaultStreamName
	}

	if c.Gateway.SubjectPrefix == "" {
		c.Gateway.SubjectPrefix = c.SubjectPrefix
	}

	if c.Gateway.ExecutionTimeout > 0 && c.Gateway.ExecutionTimeout < c.ExecutionTimeout {
		return errExecutionBudget
	}

	return nil
}

// PublisherConfig derives the JetStream publisher settings.
func (c *Config) PublisherConfig() natsutil.PublisherConfig {
	return natsutil.PublisherConfig{
		Domain:        c.NATS.Domain,
		StreamName:    c.StreamName,
		SubjectPrefix: c.SubjectPrefix,
	}
}
