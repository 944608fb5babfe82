package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/persistence/models"
)

// GormProductMappingRepository implements catalog.ProductMappingRepository
// and catalog.Resolver using GORM
type GormProductMappingRepository struct {
	db *gorm.DB
}

// NewGormProductMappingRepository creates a new GormProductMappingRepository
func NewGormProductMappingRepository(db *gorm.DB) *GormProductMappingRepository {
	return &GormProductMappingRepository{db: db}
}

// ---------------------------------------------------------------------------
// ProductMappingReader implementation
// ---------------------------------------------------------------------------

// FindByExternalID finds a mapping by its external product id
func (r *GormProductMappingRepository) FindByExternalID(ctx context.Context, externalProductID string) (*catalog.ProductMapping, error) {
	var model models.ProductMappingModel
	if err := r.db.WithContext(ctx).First(&model, "external_product_id = ?", externalProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all mappings matching the filter
func (r *GormProductMappingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductMapping, error) {
	var mappingModels []models.ProductMappingModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductMappingModel{}), filter)

	if err := query.Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]catalog.ProductMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// FindAllBySeller finds all mappings owned by one seller
func (r *GormProductMappingRepository) FindAllBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]catalog.ProductMapping, error) {
	var mappingModels []models.ProductMappingModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.ProductMappingModel{}).Where("seller_id = ?", sellerID),
		filter,
	)

	if err := query.Find(&mappingModels).Error; err != nil {
		return nil, err
	}

	mappings := make([]catalog.ProductMapping, len(mappingModels))
	for i, model := range mappingModels {
		mappings[i] = *model.ToDomain()
	}
	return mappings, nil
}

// Count counts mappings matching the filter
func (r *GormProductMappingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ProductMappingModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// ProductMappingWriter implementation
// ---------------------------------------------------------------------------

// Upsert inserts the mapping or replaces the row holding its external id.
// The existing row keeps its primary key so sale items written against the
// old mapping stay valid.
func (r *GormProductMappingRepository) Upsert(ctx context.Context, mapping *catalog.ProductMapping) error {
	var model models.ProductMappingModel
	model.FromDomain(mapping)

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"product_id", "seller_id", "name", "base_cost", "margin_percent", "active", "updated_at",
		}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	// Re-read so the caller sees the canonical row identity
	var saved models.ProductMappingModel
	if err := r.db.WithContext(ctx).First(&saved, "external_product_id = ?", mapping.ExternalProductID).Error; err != nil {
		return err
	}
	*mapping = *saved.ToDomain()
	return nil
}

// Deactivate soft-deletes a mapping by external product id
func (r *GormProductMappingRepository) Deactivate(ctx context.Context, externalProductID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductMappingModel{}).
		Where("external_product_id = ?", externalProductID).
		Updates(map[string]any{"active": false, "updated_at": gorm.Expr("CURRENT_TIMESTAMP")})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolver implementation
// ---------------------------------------------------------------------------

// Resolve resolves an external product id for the ingest pipeline
func (r *GormProductMappingRepository) Resolve(ctx context.Context, externalProductID string) (catalog.ResolvedProduct, error) {
	mapping, err := r.FindByExternalID(ctx, externalProductID)
	if err != nil {
		return catalog.ResolvedProduct{}, err
	}
	if !mapping.Active {
		return catalog.ResolvedProduct{}, shared.ErrMappingInactive
	}
	return mapping.Resolved(), nil
}

// ---------------------------------------------------------------------------
// Filter helpers
// ---------------------------------------------------------------------------

// applyFilter applies filter options to the query
func (r *GormProductMappingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductMappingSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormProductMappingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if active, ok := filter.Filters["active"].(bool); ok {
		query = query.Where("active = ?", active)
	}

	if sellerID, ok := filter.Filters["seller_id"].(uuid.UUID); ok {
		query = query.Where("seller_id = ?", sellerID)
	}

	if filter.Search != "" {
		escaped := escapeLikePattern(filter.Search)
		pattern := "%" + escaped + "%"
		query = query.Where("name ILIKE ? OR external_product_id ILIKE ?", pattern, pattern)
	}

	return query
}

// escapeLikePattern escapes special characters in LIKE patterns
func escapeLikePattern(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

// Interface guards
var (
	_ catalog.ProductMappingRepository = (*GormProductMappingRepository)(nil)
	_ catalog.Resolver                 = (*GormProductMappingRepository)(nil)
)
