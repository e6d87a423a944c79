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

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

const (
	defaultPageSize         = 500
	loadEntitiesConcurrency = 4

	countEntitiesSQL = `SELECT count(*) FROM entities WHERE entity_type = $1`
	pageEntitiesSQL  = `SELECT internal_id, adapters, tags
		FROM entities
		WHERE entity_type = $1
		ORDER BY internal_id
		LIMIT $2 OFFSET $3`
)

// Querier is the subset of pgxpool.Pool the store needs.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// EntityStore reads entity batches from the entities table.
type EntityStore struct {
	db         Querier
	entityType models.EntityType
	pageSize   int
	logger     logger.Logger
}

// NewEntityStore wraps a pool (or any Querier).
func NewEntityStore(db Querier, cfg *Config, log logger.Logger) (*EntityStore, error) {
	if db == nil {
		return nil, ErrNilPool
	}

	s := &EntityStore{
		db:         db,
		entityType: models.EntityTypeDevice,
		pageSize:   defaultPageSize,
		logger:     log,
	}

	if cfg != nil {
		if cfg.EntityType != "" {
			s.entityType = cfg.EntityType
		}

		if cfg.PageSize > 0 {
			s.pageSize = cfg.PageSize
		}
	}

	return s, nil
}

// LoadEntities returns every entity of the configured type, ordered by internal_id.
func (s *EntityStore) LoadEntities(ctx context.Context) ([]models.Entity, error) {
	var total int
	if err := s.db.QueryRow(ctx, countEntitiesSQL, string(s.entityType)).Scan(&total); err != nil {
		return nil, fmt.Errorf("count entities: %w", err)
	}

	if total == 0 {
		return nil, nil
	}

	pages := (total + s.pageSize - 1) / s.pageSize
	results := make([][]models.Entity, pages)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadEntitiesConcurrency)

	var mu sync.Mutex

	for page := 0; page < pages; page++ {
		g.Go(func() error {
			batch, err := s.loadPage(gctx, page*s.pageSize)
			if err != nil {
				return err
			}

			mu.Lock()
			results[page] = batch
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	entities := make([]models.Entity, 0, total)
	for _, batch := range results {
		entities = append(entities, batch...)
	}

	if s.logger != nil {
		s.logger.Debug().
			Int("entities", len(entities)).
			Int("pages", pages).
			Str("entity_type", string(s.entityType)).
			Msg("Loaded entities")
	}

	return entities, nil
}

func (s *EntityStore) loadPage(ctx context.Context, offset int) ([]models.Entity, error) {
	rows, err := s.db.Query(ctx, pageEntitiesSQL, string(s.entityType), s.pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("query entities at offset %d: %w", offset, err)
	}
	defer rows.Close()

	var out []models.Entity

	for rows.Next() {
		var (
			id       string
			adapters []byte
			tags     []byte
		)

		if err := rows.Scan(&id, &adapters, &tags); err != nil {
			return nil, fmt.Errorf("scan entity row: %w", err)
		}

		entity, err := decodeEntity(id, s.entityType, adapters, tags)
		if err != nil {
			return nil, err
		}

		out = append(out, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entity rows: %w", err)
	}

	return out, nil
}

func decodeEntity(id string, entityType models.EntityType, adapters, tags []byte) (models.Entity, error) {
	entity := models.Entity{InternalID: id, Type: entityType}

	if len(adapters) > 0 {
		if err := json.Unmarshal(adapters, &entity.AdapterDevices); err != nil {
			return models.Entity{}, fmt.Errorf("entity %s: decode adapters: %w", id, err)
		}
	}

	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &entity.Tags); err != nil {
			return models.Entity{}, fmt.Errorf("entity %s: decode tags: %w", id, err)
		}
	}

	return entity, nil
}
