package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/persistence/models"
)

// GormSellerRepository implements catalog.SellerRepository using GORM
type GormSellerRepository struct {
	db *gorm.DB
}

// NewGormSellerRepository creates a new GormSellerRepository
func NewGormSellerRepository(db *gorm.DB) *GormSellerRepository {
	return &GormSellerRepository{db: db}
}

// FindByID finds a seller by its id
func (r *GormSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Seller, error) {
	var model models.SellerModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Ensure inserts the seller if its id is not present yet. Existing rows are
// left untouched so a redelivered webhook cannot rename a seller.
func (r *GormSellerRepository) Ensure(ctx context.Context, seller *catalog.Seller) error {
	var model models.SellerModel
	model.FromDomain(seller)

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&model).Error
}

// FindAll finds all sellers matching the filter
func (r *GormSellerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Seller, error) {
	var sellerModels []models.SellerModel
	query := r.db.WithContext(ctx).Model(&models.SellerModel{})

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, CommonSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	if err := query.Find(&sellerModels).Error; err != nil {
		return nil, err
	}

	sellers := make([]catalog.Seller, len(sellerModels))
	for i, model := range sellerModels {
		sellers[i] = *model.ToDomain()
	}
	return sellers, nil
}

var _ catalog.SellerRepository = (*GormSellerRepository)(nil)
