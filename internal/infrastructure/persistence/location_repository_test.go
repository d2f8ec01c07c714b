package persistence

import (
	"context"
	"testing"

	"github.com/distro/backoffice/internal/domain/inventory"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func businessLocation(name, businessID string) *inventory.Location {
	return &inventory.Location{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		BusinessID: strPtr(businessID),
	}
}

func TestGormLocationRepository_FindMainWarehouse(t *testing.T) {
	ctx := context.Background()

	t.Run("returns not found on a fresh store", func(t *testing.T) {
		repo := NewGormLocationRepository(setupFreeIssueTestDB(t))

		loc, err := repo.FindMainWarehouse(ctx)

		assert.Nil(t, loc)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("ignores business owned locations of the same name", func(t *testing.T) {
		db := setupFreeIssueTestDB(t)
		repo := NewGormLocationRepository(db)

		owned := businessLocation(inventory.MainWarehouseName, "wireman")
		require.NoError(t, repo.Create(ctx, owned))

		_, err := repo.FindMainWarehouse(ctx)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		mainWarehouse := inventory.NewMainWarehouse()
		require.NoError(t, repo.Create(ctx, mainWarehouse))

		loc, err := repo.FindMainWarehouse(ctx)
		require.NoError(t, err)
		assert.Equal(t, mainWarehouse.ID, loc.ID)
		assert.True(t, loc.IsShared())
	})
}

func TestGormLocationRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("second shared Main Warehouse is ignored", func(t *testing.T) {
		db := setupFreeIssueTestDB(t)
		repo := NewGormLocationRepository(db)

		first := inventory.NewMainWarehouse()
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, inventory.NewMainWarehouse()))

		assert.Equal(t, int64(1), countRows(t, db, &inventory.Location{}))
		loc, err := repo.FindMainWarehouse(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.ID, loc.ID)
	})

	t.Run("business locations may share a name", func(t *testing.T) {
		db := setupFreeIssueTestDB(t)
		repo := NewGormLocationRepository(db)

		require.NoError(t, repo.Create(ctx, businessLocation("Shop", "wireman")))
		require.NoError(t, repo.Create(ctx, businessLocation("Shop", "retail")))

		var owners []string
		require.NoError(t, db.Model(&inventory.Location{}).Where("name = ?", "Shop").Order("business_id").Pluck("business_id", &owners).Error)
		assert.Equal(t, []string{"retail", "wireman"}, owners)
	})
}

func TestGormLocationRepository_FindMainWarehouse_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormLocationRepository(gormDB)

	t.Run("queries the shared location by name", func(t *testing.T) {
		rows := mockRows("id", "name", "business_id").AddRow("loc-1", "Main Warehouse", nil)
		mock.ExpectQuery(`SELECT \* FROM "locations" WHERE business_id IS NULL AND name = \$1 ORDER BY created_at ASC.* LIMIT \$2`).
			WithArgs(inventory.MainWarehouseName, 1).
			WillReturnRows(rows)

		loc, err := repo.FindMainWarehouse(context.Background())

		require.NoError(t, err)
		assert.Equal(t, "loc-1", loc.ID)
		assert.Nil(t, loc.BusinessID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps record not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "locations"`).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindMainWarehouse(context.Background())

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
