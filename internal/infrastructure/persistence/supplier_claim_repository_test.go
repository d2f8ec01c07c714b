package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/distro/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSupplierClaimRepository_CountAndCreate(t *testing.T) {
	ctx := context.Background()
	db := setupFreeIssueTestDB(t)
	repo := NewGormSupplierClaimRepository(db)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	seedClaims(t, db, 3)
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	c, err := claim.NewAutoClaim(claim.NextClaimNumber(count), "S1", "wireman", "INV-9")
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, c))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "CLM-AUTO-1004", found.ClaimNumber)
	assert.Equal(t, "Auto-generated from free issue bill INV-9", found.Notes)
	assertDecimal(t, "0", found.TotalClaimAmount)
}

func TestGormSupplierClaimRepository_Create_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewGormSupplierClaimRepository(setupFreeIssueTestDB(t))

	first, _ := claim.NewAutoClaim("CLM-AUTO-1001", "S1", "wireman", "INV-1")
	second, _ := claim.NewAutoClaim("CLM-AUTO-1001", "S2", "wireman", "INV-2")

	require.NoError(t, repo.Create(ctx, first))
	assert.Error(t, repo.Create(ctx, second))
}

func TestGormSupplierClaimRepository_FindByID_NotFound(t *testing.T) {
	repo := NewGormSupplierClaimRepository(setupFreeIssueTestDB(t))

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSupplierClaimRepository_List(t *testing.T) {
	ctx := context.Background()
	db := setupFreeIssueTestDB(t)
	repo := NewGormSupplierClaimRepository(db)

	create := func(number, supplier, business string, at time.Time) {
		c, err := claim.NewAutoClaim(number, supplier, business, "INV")
		require.NoError(t, err)
		c.CreatedAt = at
		c.UpdatedAt = at
		require.NoError(t, repo.Create(ctx, c))
	}
	create("CLM-AUTO-1001", "S1", "wireman", testEpoch)
	create("CLM-AUTO-1002", "S2", "wireman", testEpoch.Add(time.Hour))
	create("CLM-AUTO-1003", "S1", "wireman", testEpoch.Add(2*time.Hour))
	create("CLM-AUTO-1004", "S1", "retail", testEpoch.Add(3*time.Hour))

	t.Run("scopes to the business, newest first", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["business_id"] = "wireman"

		claims, total, err := repo.List(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, claims, 3)
		assert.Equal(t, "CLM-AUTO-1003", claims[0].ClaimNumber)
		assert.Equal(t, "CLM-AUTO-1001", claims[2].ClaimNumber)
	})

	t.Run("filters by supplier and paginates", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["business_id"] = "wireman"
		f.Filters["supplier_id"] = "S1"
		f.Page = 2
		f.PageSize = 1

		claims, total, err := repo.List(ctx, f)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, claims, 1)
		assert.Equal(t, "CLM-AUTO-1001", claims[0].ClaimNumber)
	})

	t.Run("sorts by a whitelisted field", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["business_id"] = "wireman"
		f.OrderBy = "supplier_id"
		f.OrderDir = "asc"

		claims, _, err := repo.List(ctx, f)
		require.NoError(t, err)
		require.Len(t, claims, 3)
		assert.Equal(t, "CLM-AUTO-1001", claims[0].ClaimNumber)
		assert.Equal(t, "CLM-AUTO-1003", claims[1].ClaimNumber)
		assert.Equal(t, "CLM-AUTO-1002", claims[2].ClaimNumber)
	})

	t.Run("falls back to creation order for unknown fields", func(t *testing.T) {
		f := shared.DefaultFilter()
		f.Filters["business_id"] = "wireman"
		f.OrderBy = "notes; DROP TABLE supplier_claims"

		claims, _, err := repo.List(ctx, f)
		require.NoError(t, err)
		require.Len(t, claims, 3)
		assert.Equal(t, "CLM-AUTO-1003", claims[0].ClaimNumber)
	})
}
