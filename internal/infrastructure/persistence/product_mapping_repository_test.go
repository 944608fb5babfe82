package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/persistence/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SellerModel{}, &models.ProductMappingModel{})
	require.NoError(t, err)

	return db
}

func newTestMapping(t *testing.T, externalProductID string, sellerID uuid.UUID, margin string) *catalog.ProductMapping {
	t.Helper()
	mapping, err := catalog.NewProductMapping(
		externalProductID,
		uuid.New(),
		sellerID,
		"product "+externalProductID,
		mustDec(t, "10.00"),
		mustDec(t, margin),
	)
	require.NoError(t, err)
	return mapping
}

func TestGormProductMappingRepository_Upsert(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductMappingRepository(db)
	ctx := context.Background()

	seller := uuid.New()

	t.Run("inserts a new mapping", func(t *testing.T) {
		mapping := newTestMapping(t, "19", seller, "10")

		err := repo.Upsert(ctx, mapping)
		require.NoError(t, err)

		found, err := repo.FindByExternalID(ctx, "19")
		require.NoError(t, err)
		assert.Equal(t, mapping.ID, found.ID)
		assert.True(t, found.Active)
		assert.True(t, found.MarginPercent.Equal(mustDec(t, "10")))
	})

	t.Run("upsert on the same external id keeps the row identity", func(t *testing.T) {
		first, err := repo.FindByExternalID(ctx, "19")
		require.NoError(t, err)

		replacement := newTestMapping(t, "19", seller, "12.5")
		err = repo.Upsert(ctx, replacement)
		require.NoError(t, err)

		assert.Equal(t, first.ID, replacement.ID)

		var count int64
		require.NoError(t, db.Model(&models.ProductMappingModel{}).Where("external_product_id = ?", "19").Count(&count).Error)
		assert.Equal(t, int64(1), count)

		found, err := repo.FindByExternalID(ctx, "19")
		require.NoError(t, err)
		assert.True(t, found.MarginPercent.Equal(mustDec(t, "12.5")))
	})
}

func TestGormProductMappingRepository_Deactivate(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductMappingRepository(db)
	ctx := context.Background()

	mapping := newTestMapping(t, "20", uuid.New(), "7")
	require.NoError(t, repo.Upsert(ctx, mapping))

	t.Run("deactivates an existing mapping", func(t *testing.T) {
		err := repo.Deactivate(ctx, "20")
		require.NoError(t, err)

		found, err := repo.FindByExternalID(ctx, "20")
		require.NoError(t, err)
		assert.False(t, found.Active)
	})

	t.Run("unknown external id yields not found", func(t *testing.T) {
		err := repo.Deactivate(ctx, "does-not-exist")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormProductMappingRepository_Resolve(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductMappingRepository(db)
	ctx := context.Background()

	seller := uuid.New()
	mapping := newTestMapping(t, "19", seller, "10")
	require.NoError(t, repo.Upsert(ctx, mapping))

	t.Run("resolves an active mapping", func(t *testing.T) {
		resolved, err := repo.Resolve(ctx, "19")
		require.NoError(t, err)
		assert.Equal(t, seller, resolved.SellerID)
		assert.Equal(t, mapping.ProductID, resolved.ProductID)
		assert.True(t, resolved.MarginPercent.Equal(mustDec(t, "10")))
	})

	t.Run("unknown product yields not found", func(t *testing.T) {
		_, err := repo.Resolve(ctx, "99")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deactivated mapping yields mapping inactive", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, "19"))

		_, err := repo.Resolve(ctx, "19")
		assert.ErrorIs(t, err, shared.ErrMappingInactive)
	})
}

func TestGormProductMappingRepository_Listing(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormProductMappingRepository(db)
	ctx := context.Background()

	sellerA := uuid.New()
	sellerB := uuid.New()

	require.NoError(t, repo.Upsert(ctx, newTestMapping(t, "19", sellerA, "10")))
	require.NoError(t, repo.Upsert(ctx, newTestMapping(t, "20", sellerA, "7")))
	require.NoError(t, repo.Upsert(ctx, newTestMapping(t, "21", sellerB, "5")))
	require.NoError(t, repo.Deactivate(ctx, "20"))

	t.Run("FindAll returns every mapping", func(t *testing.T) {
		mappings, err := repo.FindAll(ctx, shared.DefaultFilter())
		require.NoError(t, err)
		assert.Len(t, mappings, 3)
	})

	t.Run("FindAllBySeller scopes to one seller", func(t *testing.T) {
		mappings, err := repo.FindAllBySeller(ctx, sellerA, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, mappings, 2)
		for _, m := range mappings {
			assert.Equal(t, sellerA, m.SellerID)
		}
	})

	t.Run("Count honors the active filter", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters = map[string]any{"active": true}

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("pagination limits the page size", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.PageSize = 2

		mappings, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Len(t, mappings, 2)
	})
}

func TestGormSellerRepository(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewGormSellerRepository(db)
	ctx := context.Background()

	t.Run("Ensure inserts a missing seller", func(t *testing.T) {
		seller, err := catalog.NewSeller("Acme Outfitters")
		require.NoError(t, err)

		require.NoError(t, repo.Ensure(ctx, seller))

		found, err := repo.FindByID(ctx, seller.ID)
		require.NoError(t, err)
		assert.Equal(t, "Acme Outfitters", found.Name)
	})

	t.Run("Ensure leaves an existing seller untouched", func(t *testing.T) {
		seller, err := catalog.NewSeller("Original Name")
		require.NoError(t, err)
		require.NoError(t, repo.Ensure(ctx, seller))

		renamed := *seller
		renamed.Name = "Renamed"
		require.NoError(t, repo.Ensure(ctx, &renamed))

		found, err := repo.FindByID(ctx, seller.ID)
		require.NoError(t, err)
		assert.Equal(t, "Original Name", found.Name)
	})

	t.Run("unknown id yields not found", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
