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
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/correlator/pkg/logger"
	"github.com/carverauto/correlator/pkg/models"
)

type entityRow struct {
	id       string
	kind     string
	adapters string
	tags     string
}

type fakeQuerier struct {
	rows     []entityRow
	queryErr error

	mu      sync.Mutex
	offsets []int
}

func (f *fakeQuerier) matching(kind string) []entityRow {
	var out []entityRow

	for _, r := range f.rows {
		if r.kind == kind {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })

	return out
}

func (f *fakeQuerier) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return countRow{n: len(f.matching(args[0].(string)))}
}

func (f *fakeQuerier) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	limit, offset := args[1].(int), args[2].(int)

	f.mu.Lock()
	f.offsets = append(f.offsets, offset)
	f.mu.Unlock()

	all := f.matching(args[0].(string))
	end := min(offset+limit, len(all))

	return &fakeRows{rows: all[offset:end], idx: -1}, nil
}

type countRow struct{ n int }

func (c countRow) Scan(dest ...any) error {
	*(dest[0].(*int)) = c.n
	return nil
}

type fakeRows struct {
	rows []entityRow
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx < len(r.rows)
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.rows[r.idx]
	*(dest[0].(*string)) = row.id
	*(dest[1].(*[]byte)) = []byte(row.adapters)
	*(dest[2].(*[]byte)) = []byte(row.tags)

	return nil
}

func deviceRow(id, plugin, unique, deviceID string) entityRow {
	return entityRow{
		id:   id,
		kind: string(models.EntityTypeDevice),
		adapters: fmt.Sprintf(`[{"plugin_name":%q,"plugin_unique_name":%q,"data":{"id":%q}}]`,
			plugin, unique, deviceID),
		tags: `[]`,
	}
}

func TestNewEntityStore(t *testing.T) {
	_, err := NewEntityStore(nil, nil, nil)
	require.ErrorIs(t, err, ErrNilPool)

	store, err := NewEntityStore(&fakeQuerier{}, &Config{EntityType: models.EntityTypeUser, PageSize: 7}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.EntityTypeUser, store.entityType)
	assert.Equal(t, 7, store.pageSize)
}

func TestLoadEntitiesPagesInOrder(t *testing.T) {
	q := &fakeQuerier{}
	for i := 9; i >= 0; i-- {
		q.rows = append(q.rows, deviceRow(fmt.Sprintf("E%02d", i), "aws_adapter", "aws_adapter_0", fmt.Sprintf("i-%d", i)))
	}

	q.rows = append(q.rows, entityRow{id: "U1", kind: string(models.EntityTypeUser), adapters: `[]`})

	store, err := NewEntityStore(q, &Config{PageSize: 3}, logger.NewTestLogger())
	require.NoError(t, err)

	entities, err := store.LoadEntities(t.Context())
	require.NoError(t, err)
	require.Len(t, entities, 10)

	for i, e := range entities {
		assert.Equal(t, fmt.Sprintf("E%02d", i), e.InternalID)
		assert.Equal(t, models.EntityTypeDevice, e.Type)
		require.Len(t, e.AdapterDevices, 1)
		assert.Equal(t, fmt.Sprintf("i-%d", i), e.AdapterDevices[0].Data.ID)
	}

	sort.Ints(q.offsets)
	assert.Equal(t, []int{0, 3, 6, 9}, q.offsets)
}

func TestLoadEntitiesEmpty(t *testing.T) {
	store, err := NewEntityStore(&fakeQuerier{}, nil, nil)
	require.NoError(t, err)

	entities, err := store.LoadEntities(t.Context())
	require.NoError(t, err)
	assert.Empty(t, entities)
}

func TestLoadEntitiesQueryError(t *testing.T) {
	boom := errors.New("boom")
	q := &fakeQuerier{rows: []entityRow{deviceRow("E1", "aws_adapter", "aws_adapter_0", "i-1")}, queryErr: boom}

	store, err := NewEntityStore(q, nil, nil)
	require.NoError(t, err)

	_, err = store.LoadEntities(t.Context())
	require.ErrorIs(t, err, boom)
}

func TestDecodeEntity(t *testing.T) {
	e, err := decodeEntity("E1", models.EntityTypeDevice,
		[]byte(`[{"plugin_name":"esx_adapter","plugin_unique_name":"esx_adapter_0","data":{"id":"vm-1","OS":{"type":"Linux"}}}]`),
		[]byte(`[{"name":"strongly_unbound_with","data":[["aws_adapter_0","i-1"]]}]`))
	require.NoError(t, err)

	require.Len(t, e.AdapterDevices, 1)
	require.NotNil(t, e.AdapterDevices[0].OSType())
	assert.Equal(t, models.OSLinux, *e.AdapterDevices[0].OSType())

	unbound, err := e.StronglyUnboundWith()
	require.NoError(t, err)
	assert.Equal(t, []models.AdapterIdentity{{Plugin: "aws_adapter_0", ID: "i-1"}}, unbound)

	_, err = decodeEntity("E2", models.EntityTypeDevice, []byte(`{`), nil)
	require.Error(t, err)
}
