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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQLStatements(t *testing.T) {
	sql := `CREATE TABLE a (x TEXT DEFAULT 'a;b');
-- trailing
CREATE FUNCTION f() RETURNS void AS $$ BEGIN PERFORM 1; END; $$ LANGUAGE plpgsql;

INSERT INTO a VALUES ("semi;colon");`

	got := splitSQLStatements(sql)
	require.Len(t, got, 3)
	assert.Equal(t, `CREATE TABLE a (x TEXT DEFAULT 'a;b')`, got[0])
	assert.Contains(t, got[1], "PERFORM 1; END; $$ LANGUAGE plpgsql")
	assert.Equal(t, `INSERT INTO a VALUES ("semi;colon")`, got[2])
}

func TestExtractVersion(t *testing.T) {
	assert.Equal(t, "00001", extractVersion("00001_entities.up.sql"))
	assert.Equal(t, "bare", extractVersion("bare.up.sql"))
}

func TestUpMigrations(t *testing.T) {
	names, err := upMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "00001_entities.up.sql", names[0])

	for _, name := range names {
		assert.NotContains(t, name, ".down.")
	}
}

func TestRunMigrationsNilPool(t *testing.T) {
	require.ErrorIs(t, RunMigrations(t.Context(), nil, nil), ErrNilPool)
}
