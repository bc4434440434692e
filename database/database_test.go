package database_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agroinnova-backend/database"
)

func openMemory(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString())
	db, err := database.Initialize(dsn, nil)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, database.Migrate(db))

	tables := []string{
		"auth", "verification", "countries", "zones", "user_profile", "indicators", "tags",
		"socio_demographic", "family_composition", "family_member", "farm_profile", "infrastructure",
		"productive_info", "main_product", "technology_practice", "products", "product_reviews",
		"tipo_denuncia", "subtipo_denuncia", "denuncias_anonimas",
	}
	for _, table := range tables {
		var name string
		err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		assert.NoError(t, err, "table %s should exist", table)
	}

	version, dirty, err := database.Version(db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(4), version)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.Migrate(db))
}

func TestMigrateDown(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, database.Migrate(db))
	require.NoError(t, database.MigrateDown(db, 1))

	version, _, err := database.Version(db)
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM sqlite_master WHERE name = 'products'`))
	assert.Zero(t, count)

	assert.Error(t, database.MigrateDown(db, 0))
}

func TestSeedIsRepeatable(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, database.Migrate(db))

	first, err := database.Seed(db)
	require.NoError(t, err)
	assert.Greater(t, first.Countries, 0)
	assert.Equal(t, 3, first.Tipos)
	assert.Equal(t, 7, first.Subtipos)

	second, err := database.Seed(db)
	require.NoError(t, err)
	assert.Zero(t, second.Countries)
	assert.Zero(t, second.Tipos)
	assert.Zero(t, second.Subtipos)

	var colombia string
	require.NoError(t, db.Get(&colombia, `SELECT phone_code FROM countries WHERE code = 'CO'`))
	assert.Equal(t, "+57", colombia)
}

func TestForeignKeysEnforced(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, database.Migrate(db))

	_, err := db.Exec(`INSERT INTO user_profile (user_id) VALUES (999)`)
	assert.Error(t, err)
}
