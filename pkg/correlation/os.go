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

import (
	"fmt"
	"slices"

	"github.com/carverauto/correlator/pkg/models"
)

// eligibleEntity passed the OS check. A nil os means no adapter stated one.
type eligibleEntity struct {
	index int
	os    *models.OSType
}

// resolveOSType returns the single OS the entity's adapters agree on, nil if
// none of them know, or ErrOSTypeInconsistency.
func resolveOSType(entity *models.Entity) (*models.OSType, error) {
	var found []models.OSType

	for i := range entity.AdapterDevices {
		osType := entity.AdapterDevices[i].OSType()
		if osType == nil || *osType == "" {
			continue
		}

		if !slices.Contains(found, *osType) {
			found = append(found, *osType)
		}
	}

	switch len(found) {
	case 0:
		return nil, nil
	case 1:
		return &found[0], nil
	default:
		slices.Sort(found)
		return nil, fmt.Errorf("%w: %v", ErrOSTypeInconsistency, found)
	}
}

func osInconsistencyWarning(entity *models.Entity, err error) models.Warning {
	reported := make(map[string]string, len(entity.AdapterDevices))

	for i := range entity.AdapterDevices {
		ad := &entity.AdapterDevices[i]
		if osType := ad.OSType(); osType != nil {
			reported[ad.PluginUniqueName] = string(*osType)
		}
	}

	return models.Warning{
		Title: "OS type inconsistency",
		Content: map[string]interface{}{
			"internal_id": entity.InternalID,
			"os_types":    reported,
			"error":       err.Error(),
		},
		NotificationType: models.NotificationOSInconsistency,
	}
}
