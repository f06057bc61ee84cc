package inventory

import (
	"context"
	"testing"

	"github.com/hemolink/bloodbank-backend/pkg/enums"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupStockTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS blood_stock (
  blood_group TEXT PRIMARY KEY,
  unit INTEGER NOT NULL DEFAULT 0 CHECK (unit >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositorySetAndListStock(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupOPositive, 12))
	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupABNegative, 3))

	// second set overwrites, no duplicate row
	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupOPositive, 9))

	rows, err := repo.ListStock(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byGroup := map[enums.BloodGroup]int{}
	for _, row := range rows {
		byGroup[row.BloodGroup] = row.Unit
	}
	assert.Equal(t, 9, byGroup[enums.BloodGroupOPositive])
	assert.Equal(t, 3, byGroup[enums.BloodGroupABNegative])
}

func TestRepositoryFindByGroup(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupANegative, 5))

	row, err := repo.FindByGroup(ctx, enums.BloodGroupANegative)
	require.NoError(t, err)
	assert.Equal(t, enums.BloodGroupANegative, row.BloodGroup)
	assert.Equal(t, 5, row.Unit)

	_, err = repo.FindByGroup(ctx, enums.BloodGroupBPositive)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryTotalUnits(t *testing.T) {
	db := setupStockTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	total, err := repo.TotalUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupAPositive, 4))
	require.NoError(t, repo.SetStock(ctx, enums.BloodGroupONegative, 6))

	total, err = repo.TotalUnits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, total)
}
