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

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/carverauto/correlator/pkg/models"
)

// EntitySource yields the batch handed to one correlation run.
type EntitySource interface {
	LoadEntities(ctx context.Context) ([]models.Entity, error)
}

// FileSource reads a JSON array of entities from disk on every load.
type FileSource struct {
	path string
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) (*FileSource, error) {
	if path == "" {
		return nil, errMissingEntitiesFile
	}

	return &FileSource{path: path}, nil
}

func (s *FileSource) LoadEntities(_ context.Context) ([]models.Entity, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read entities file: %w", err)
	}

	var entities []models.Entity
	if err := json.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("decode entities file %s: %w", s.path, err)
	}

	return entities, nil
}
