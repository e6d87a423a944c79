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

// Package adapters holds the correlation hooks of the built-in adapters and
// serves them to the correlator over NATS.
package adapters

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/carverauto/correlator/pkg/models"
)

var (
	// ErrUnrecognizedOutput is returned when command output does not contain an id.
	ErrUnrecognizedOutput = errors.New("output does not contain a device id")
	// ErrUnsupportedOS is returned by parsers that only understand some OS types.
	ErrUnsupportedOS = errors.New("os type not supported by adapter")
	// ErrUnknownPlugin is returned for plugin names nobody registered.
	ErrUnknownPlugin = errors.New("unknown plugin")
	// ErrDuplicatePlugin is returned when a plugin name is registered twice.
	ErrDuplicatePlugin = errors.New("plugin already registered")
	// ErrInstanceConflict is returned when a unique name is bound to two plugins.
	ErrInstanceConflict = errors.New("plugin instance bound to another plugin")
)

// Plugin is the correlation side of one adapter type.
type Plugin interface {
	// Name is the adapter's plugin_name.
	Name() string
	// CorrelationCommands returns the command that prints this adapter's id
	// for the device it runs on, per OS type.
	CorrelationCommands(uniqueName string) map[models.OSType]string
	// ParseCorrelationResult extracts the adapter's id from command output.
	ParseCorrelationResult(result models.CommandResult) (string, error)
}

// Instance binds a running adapter instance to its plugin.
type Instance struct {
	PluginName       string `json:"plugin_name"`
	PluginUniqueName string `json:"plugin_unique_name"`
}

// Registry maps plugin names to plugins and instance names to plugin names.
type Registry struct {
	mu        sync.RWMutex
	plugins   map[string]Plugin
	instances map[string]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:   make(map[string]Plugin),
		instances: make(map[string]string),
	}
}

// NewBuiltinRegistry returns a registry holding every built-in plugin.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()

	for _, p := range []Plugin{
		NewAWSPlugin(),
		NewGCPPlugin(),
		NewAzurePlugin(),
		NewESXPlugin(),
		NewActiveDirectoryPlugin(),
	} {
		// Names are distinct constants.
		_ = r.Register(p)
	}

	return r
}

func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[p.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePlugin, p.Name())
	}

	r.plugins[p.Name()] = p

	return nil
}

// AddInstance declares a running adapter instance of a registered plugin.
func (r *Registry) AddInstance(inst Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[inst.PluginName]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlugin, inst.PluginName)
	}

	if bound, ok := r.instances[inst.PluginUniqueName]; ok && bound != inst.PluginName {
		return fmt.Errorf("%w: %s is %s", ErrInstanceConflict, inst.PluginUniqueName, bound)
	}

	r.instances[inst.PluginUniqueName] = inst.PluginName

	return nil
}

// Plugin looks a plugin up by name.
func (r *Registry) Plugin(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[name]

	return p, ok
}

// PluginForInstance resolves an instance's unique name to its plugin.
func (r *Registry) PluginForInstance(uniqueName string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.instances[uniqueName]
	if !ok {
		return nil, false
	}

	p, ok := r.plugins[name]

	return p, ok
}

// Names lists registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}

// Instances lists declared instances, sorted by unique name.
func (r *Registry) Instances() []Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Instance, 0, len(r.instances))
	for unique, name := range r.instances {
		out = append(out, Instance{PluginName: name, PluginUniqueName: unique})
	}

	slices.SortFunc(out, func(a, b Instance) int {
		return strings.Compare(a.PluginUniqueName, b.PluginUniqueName)
	})

	return out
}

// lastLine returns the last non-empty trimmed line of output, skipping any
// line equal to one of the given headers.
func lastLine(output string, headers ...string) string {
	lines := strings.Split(strings.ReplaceAll(output, "\r", ""), "\n")

	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		if slices.ContainsFunc(headers, func(h string) bool { return strings.EqualFold(h, line) }) {
			continue
		}

		return line
	}

	return ""
}
