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
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/correlator/pkg/gateway"
	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

var errAlreadyStarted = errors.New("responder already started")

// Responder answers the gateway's command and parse requests for every
// plugin and instance in a registry.
type Responder struct {
	nc       *nats.Conn
	registry *Registry
	prefix   string
	logger   logger.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewResponder(nc *nats.Conn, registry *Registry, subjectPrefix string, log logger.Logger) *Responder {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Responder{
		nc:       nc,
		registry: registry,
		prefix:   subjectPrefix,
		logger:   log,
	}
}

// Start subscribes to the commands subject of every instance and the parse
// subject of every plugin, all in gateway.QueueGroup.
func (r *Responder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subs) > 0 {
		return errAlreadyStarted
	}

	for _, inst := range r.registry.Instances() {
		subj, err := gateway.CommandsSubject(r.prefix, inst.PluginUniqueName)
		if err != nil {
			r.unsubscribeLocked()
			return err
		}

		uniqueName := inst.PluginUniqueName

		sub, err := r.nc.QueueSubscribe(subj, gateway.QueueGroup, func(msg *nats.Msg) {
			r.handleCommands(msg, uniqueName)
		})
		if err != nil {
			r.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", subj, err)
		}

		r.subs = append(r.subs, sub)
	}

	for _, name := range r.registry.Names() {
		subj, err := gateway.ParseSubject(r.prefix, name)
		if err != nil {
			r.unsubscribeLocked()
			return err
		}

		pluginName := name

		sub, err := r.nc.QueueSubscribe(subj, gateway.QueueGroup, func(msg *nats.Msg) {
			r.handleParse(msg, pluginName)
		})
		if err != nil {
			r.unsubscribeLocked()
			return fmt.Errorf("subscribe %s: %w", subj, err)
		}

		r.subs = append(r.subs, sub)
	}

	if err := r.nc.Flush(); err != nil {
		r.unsubscribeLocked()
		return fmt.Errorf("flush subscriptions: %w", err)
	}

	r.logger.Info().
		Int("plugins", len(r.registry.Names())).
		Int("instances", len(r.registry.Instances())).
		Msg("Correlation plugin responder started")

	return nil
}

func (r *Responder) handleCommands(msg *nats.Msg, uniqueName string) {
	commands := map[models.OSType]string{}

	if p, ok := r.registry.PluginForInstance(uniqueName); ok {
		commands = p.CorrelationCommands(uniqueName)
	}

	r.respond(msg, commands)
}

func (r *Responder) handleParse(msg *nats.Msg, pluginName string) {
	var reply models.ParseReply

	p, ok := r.registry.Plugin(pluginName)
	if !ok {
		reply.Error = fmt.Sprintf("%s: %s", ErrUnknownPlugin, pluginName)
		r.respond(msg, reply)

		return
	}

	var result models.CommandResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		reply.Error = fmt.Sprintf("invalid command result: %v", err)
		r.respond(msg, reply)

		return
	}

	id, err := p.ParseCorrelationResult(result)
	if err != nil {
		r.logger.Debug().Err(err).Str("plugin_name", pluginName).Msg("Correlation output not recognized")
		reply.Error = err.Error()
	} else {
		reply.ID = id
	}

	r.respond(msg, reply)
}

func (r *Responder) respond(msg *nats.Msg, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		r.logger.Error().Err(err).Str("subject", msg.Subject).Msg("Failed to marshal correlation reply")
		return
	}

	if err := msg.Respond(data); err != nil {
		r.logger.Warn().Err(err).Str("subject", msg.Subject).Msg("Failed to send correlation reply")
	}
}

// Stop drains every subscription.
func (r *Responder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unsubscribeLocked()
}

func (r *Responder) unsubscribeLocked() {
	for _, sub := range r.subs {
		if err := sub.Drain(); err != nil {
			r.logger.Debug().Err(err).Str("subject", sub.Subject).Msg("Failed to drain subscription")
		}
	}

	r.subs = nil
}
