package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/distro/backoffice/internal/domain/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderItemRepository_FindUnclaimedByProduct(t *testing.T) {
	ctx := context.Background()
	db := setupFreeIssueTestDB(t)
	repo := NewGormOrderItemRepository(db)

	seedOrderItem(t, db, "late", "P1", 2, nil, 30)
	seedOrderItem(t, db, "early", "P1", 3, strPtr(claim.ClaimStatusUnclaimed), 10)
	seedOrderItem(t, db, "middle", "P1", 5, nil, 20)
	seedOrderItem(t, db, "approved", "P1", 4, strPtr(claim.ClaimStatusApproved), 5)
	seedOrderItem(t, db, "no-free", "P1", 0, nil, 1)
	seedOrderItem(t, db, "other", "P2", 9, nil, 2)

	items, err := repo.FindUnclaimedByProduct(ctx, "P1")
	require.NoError(t, err)

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	assert.Equal(t, []string{"early", "middle", "late"}, ids)
}

func TestGormOrderItemRepository_MarkApproved(t *testing.T) {
	ctx := context.Background()

	t.Run("links every listed item to the claim", func(t *testing.T) {
		db := setupFreeIssueTestDB(t)
		repo := NewGormOrderItemRepository(db)
		seedOrderItem(t, db, "a", "P1", 3, nil, 1)
		seedOrderItem(t, db, "b", "P1", 5, strPtr(claim.ClaimStatusUnclaimed), 2)
		seedOrderItem(t, db, "c", "P1", 1, nil, 3)

		n, err := repo.MarkApproved(ctx, []string{"a", "b", "ghost"}, "claim-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		for _, id := range []string{"a", "b"} {
			item := orderItem(t, db, id)
			assert.True(t, item.IsApproved())
			require.NotNil(t, item.ClaimBatchID)
			assert.Equal(t, "claim-1", *item.ClaimBatchID)
		}
		assert.Nil(t, orderItem(t, db, "c").ClaimStatus)

		batch, err := repo.FindByClaimBatch(ctx, "claim-1")
		require.NoError(t, err)
		assert.Len(t, batch, 2)
	})

	t.Run("already approved items are moved to the new batch", func(t *testing.T) {
		db := setupFreeIssueTestDB(t)
		repo := NewGormOrderItemRepository(db)
		seedOrderItem(t, db, "a", "P1", 3, strPtr(claim.ClaimStatusApproved), 1)

		n, err := repo.MarkApproved(ctx, []string{"a"}, "claim-2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
		assert.Equal(t, "claim-2", *orderItem(t, db, "a").ClaimBatchID)
	})

	t.Run("empty id list is a no-op", func(t *testing.T) {
		repo := NewGormOrderItemRepository(setupFreeIssueTestDB(t))

		n, err := repo.MarkApproved(ctx, nil, "claim-1")
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestGormOrderItemRepository_SQL(t *testing.T) {
	gormDB, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	repo := NewGormOrderItemRepository(gormDB)

	t.Run("unclaimed query filters and orders oldest first", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE product_id = \$1 AND free_quantity > 0 AND \(claim_status IS NULL OR claim_status = \$2\) ORDER BY created_at ASC, id ASC`).
			WithArgs("P1", claim.ClaimStatusUnclaimed).
			WillReturnRows(mockRows("id", "product_id", "free_quantity").AddRow("a", "P1", "3"))

		items, err := repo.FindUnclaimedByProduct(context.Background(), "P1")

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "a", items[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("approval is one bulk update", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "order_items" SET "claim_batch_id"=\$1,"claim_status"=\$2 WHERE id IN \(\$3,\$4\)`).
			WithArgs("claim-1", claim.ClaimStatusApproved, "a", "b").
			WillReturnResult(sqlmock.NewResult(0, 2))

		n, err := repo.MarkApproved(context.Background(), []string{"a", "b"}, "claim-1")

		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
