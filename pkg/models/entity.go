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

import (
	"encoding/json"
	"fmt"
)

// OSType is the normalized operating system family reported by an adapter.
type OSType string

const (
	OSWindows OSType = "Windows"
	OSLinux   OSType = "Linux"
	OSX       OSType = "OS X"
)

// EntityType distinguishes device entities from user entities.
type EntityType string

const (
	EntityTypeDevice EntityType = "device"
	EntityTypeUser   EntityType = "user"
)

// TagStronglyUnboundWith names the tag holding identities that must never be
// correlated with the entity carrying it.
const TagStronglyUnboundWith = "strongly_unbound_with"

// Entity is the merged, multi-adapter view of one real-world device or user.
type Entity struct {
	InternalID     string          `json:"internal_id"`
	Type           EntityType      `json:"type,omitempty"`
	AdapterDevices []AdapterDevice `json:"adapters"`
	Tags           []Tag           `json:"tags,omitempty"`
}

// AdapterDevice is one adapter instance's view of an entity.
type AdapterDevice struct {
	PluginName       string            `json:"plugin_name"`
	PluginUniqueName string            `json:"plugin_unique_name"`
	Data             AdapterDeviceData `json:"data"`
}

// AdapterDeviceData carries the normalized fields an adapter reported.
type AdapterDeviceData struct {
	ID       string                 `json:"id"`
	OS       *OSInfo                `json:"OS,omitempty"`
	Hostname string                 `json:"hostname,omitempty"`
	Fields   map[string]interface{} `json:"fields,omitempty"`
}

// OSInfo is the normalized OS block. A nil Type means the adapter could not tell.
type OSInfo struct {
	Type *OSType `json:"type"`
}

// Tag is a labelled annotation attached to an entity.
type Tag struct {
	Name string          `json:"name"`
	Type string          `json:"type,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AdapterIdentity names one adapter-device: the plugin (unique or type name) and its id.
type AdapterIdentity struct {
	Plugin string `json:"plugin"`
	ID     string `json:"id"`
}

func (a AdapterIdentity) String() string {
	return fmt.Sprintf("%s:%s", a.Plugin, a.ID)
}

// MarshalJSON encodes the identity as a ["plugin", "id"] pair.
func (a AdapterIdentity) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{a.Plugin, a.ID})
}

// UnmarshalJSON accepts the ["plugin", "id"] pair form.
func (a *AdapterIdentity) UnmarshalJSON(b []byte) error {
	var pair [2]string
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("adapter identity must be a [plugin, id] pair: %w", err)
	}

	a.Plugin, a.ID = pair[0], pair[1]

	return nil
}

// Identity returns the unique-name identity of the adapter-device.
func (d *AdapterDevice) Identity() AdapterIdentity {
	return AdapterIdentity{Plugin: d.PluginUniqueName, ID: d.Data.ID}
}

// OSType returns the reported OS type or nil when unknown.
func (d *AdapterDevice) OSType() *OSType {
	if d.Data.OS == nil {
		return nil
	}

	return d.Data.OS.Type
}

// HasPlugin reports whether any adapter-device of the entity comes from pluginName.
func (e *Entity) HasPlugin(pluginName string) bool {
	for i := range e.AdapterDevices {
		if e.AdapterDevices[i].PluginName == pluginName {
			return true
		}
	}

	return false
}

// IDsForPlugin lists the ids recorded under pluginName, in adapter order.
func (e *Entity) IDsForPlugin(pluginName string) []string {
	var ids []string

	for i := range e.AdapterDevices {
		if e.AdapterDevices[i].PluginName == pluginName {
			ids = append(ids, e.AdapterDevices[i].Data.ID)
		}
	}

	return ids
}

// AdapterDeviceByUniqueName returns the first adapter-device reported by the
// given adapter instance.
func (e *Entity) AdapterDeviceByUniqueName(uniqueName string) (*AdapterDevice, bool) {
	for i := range e.AdapterDevices {
		if e.AdapterDevices[i].PluginUniqueName == uniqueName {
			return &e.AdapterDevices[i], true
		}
	}

	return nil, false
}

// StronglyUnboundWith decodes every strongly_unbound_with tag into identities.
// Malformed tag payloads are reported rather than silently ignored.
func (e *Entity) StronglyUnboundWith() ([]AdapterIdentity, error) {
	var out []AdapterIdentity

	for _, tag := range e.Tags {
		if tag.Name != TagStronglyUnboundWith || len(tag.Data) == 0 {
			continue
		}

		var pairs []AdapterIdentity
		if err := json.Unmarshal(tag.Data, &pairs); err != nil {
			return nil, fmt.Errorf("entity %s: %s tag: %w", e.InternalID, TagStronglyUnboundWith, err)
		}

		out = append(out, pairs...)
	}

	return out, nil
}
