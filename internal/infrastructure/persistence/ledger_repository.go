package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/marketledger/backend/internal/domain/ledger"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/persistence/models"
)

// GormLedgerRepository implements ledger.LedgerRepository using GORM.
// Seller-facing reads are rooted in Database.ForSeller so every query
// carries the seller predicate from the start.
type GormLedgerRepository struct {
	db *Database
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *Database) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// ---------------------------------------------------------------------------
// OrderRepository implementation
// ---------------------------------------------------------------------------

// FindByID finds an order by its id
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	var model models.OrderModel
	if err := r.db.DB.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByExternalID finds an order by its external id
func (r *GormLedgerRepository) FindByExternalID(ctx context.Context, externalID string) (*ledger.Order, error) {
	var model models.OrderModel
	if err := r.db.DB.WithContext(ctx).First(&model, "external_id = ?", externalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// UpsertByExternalID inserts the order or updates the row holding its
// external id, then rewrites the entity's identity to the canonical row
func (r *GormLedgerRepository) UpsertByExternalID(ctx context.Context, order *ledger.Order) error {
	return r.upsertOrder(r.db.DB.WithContext(ctx), order)
}

func (r *GormLedgerRepository) upsertOrder(tx *gorm.DB, order *ledger.Order) error {
	var model models.OrderModel
	model.FromDomain(order)

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"buyer_name", "buyer_email", "total_amount", "status", "updated_at",
		}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	var saved models.OrderModel
	if err := tx.First(&saved, "external_id = ?", order.ExternalID).Error; err != nil {
		return err
	}
	*order = *saved.ToDomain()
	return nil
}

// ---------------------------------------------------------------------------
// ReconciliationWriter implementation
// ---------------------------------------------------------------------------

// SaveReconciliation persists one payload's full write set in a single
// transaction. Redeliveries converge onto the same rows: sales upsert by
// (order_id, seller_id), items by (sale_id, position). The pipeline never
// deletes; rows written by an earlier delivery stay in place and
// corrections land as idempotent upserts. A duplicate-key failure from two
// deliveries racing on first insert is retried once.
func (r *GormLedgerRepository) SaveReconciliation(ctx context.Context, order *ledger.Order, sales []*ledger.Sale) error {
	err := r.saveReconciliation(ctx, order, sales)
	if err != nil && isDuplicateKey(err) {
		err = r.saveReconciliation(ctx, order, sales)
	}
	return err
}

func (r *GormLedgerRepository) saveReconciliation(ctx context.Context, order *ledger.Order, sales []*ledger.Sale) error {
	return r.db.Transaction(ctx, func(tx *gorm.DB) error {
		if err := r.upsertOrder(tx, order); err != nil {
			return err
		}

		for _, sale := range sales {
			sale.OrderID = order.ID
			if err := r.upsertSale(tx, sale); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormLedgerRepository) upsertSale(tx *gorm.DB, sale *ledger.Sale) error {
	var model models.SaleModel
	model.FromDomain(sale)
	model.Items = nil

	err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "order_id"}, {Name: "seller_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"sale_price", "commission", "seller_earnings", "item_count", "updated_at",
		}),
	}).Create(&model).Error
	if err != nil {
		return err
	}

	var saved models.SaleModel
	if err := tx.First(&saved, "order_id = ? AND seller_id = ?", sale.OrderID, sale.SellerID).Error; err != nil {
		return err
	}
	canonicalID := saved.ID

	for i := range sale.Items {
		item := &sale.Items[i]
		item.SaleID = canonicalID

		var itemModel models.SaleItemModel
		itemModel.FromDomain(item)

		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "sale_id"}, {Name: "position"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"external_product_id", "product_id", "product_name", "unit_price", "quantity", "updated_at",
			}),
		}).Create(&itemModel).Error
		if err != nil {
			return err
		}
	}

	sale.ID = canonicalID
	sale.CreatedAt = saved.CreatedAt
	sale.UpdatedAt = saved.UpdatedAt
	return nil
}

// isDuplicateKey reports whether the error is a unique-constraint violation
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// ---------------------------------------------------------------------------
// SaleReader implementation
// ---------------------------------------------------------------------------

// FindByIDForSeller finds one of a seller's sales with its items
func (r *GormLedgerRepository) FindByIDForSeller(ctx context.Context, sellerID, id uuid.UUID) (*ledger.Sale, error) {
	var model models.SaleModel
	err := r.db.ForSeller(sellerID.String()).WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		First(&model, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForSeller finds a seller's sales matching the filter
func (r *GormLedgerRepository) FindAllForSeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]ledger.Sale, error) {
	var saleModels []models.SaleModel
	query := r.applySaleFilter(
		r.db.ForSeller(sellerID.String()).WithContext(ctx).Model(&models.SaleModel{}),
		filter,
	).Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})

	if err := query.Find(&saleModels).Error; err != nil {
		return nil, err
	}

	sales := make([]ledger.Sale, len(saleModels))
	for i, model := range saleModels {
		sales[i] = *model.ToDomain()
	}
	return sales, nil
}

// CountForSeller counts a seller's sales matching the filter
func (r *GormLedgerRepository) CountForSeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applySaleFilterWithoutPagination(
		r.db.ForSeller(sellerID.String()).WithContext(ctx).Model(&models.SaleModel{}),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindAllByOrder finds every sale split off one order, items included
func (r *GormLedgerRepository) FindAllByOrder(ctx context.Context, orderID uuid.UUID) ([]ledger.Sale, error) {
	var saleModels []models.SaleModel
	err := r.db.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&saleModels).Error
	if err != nil {
		return nil, err
	}

	sales := make([]ledger.Sale, len(saleModels))
	for i, model := range saleModels {
		sales[i] = *model.ToDomain()
	}
	return sales, nil
}

// StatsForSeller aggregates a seller's ledger position
func (r *GormLedgerRepository) StatsForSeller(ctx context.Context, sellerID uuid.UUID) (*ledger.SellerStats, error) {
	var saleRow struct {
		SaleCount       int64
		GrossRevenue    decimal.Decimal
		TotalCommission decimal.Decimal
		TotalEarnings   decimal.Decimal
	}
	err := r.db.ForSeller(sellerID.String()).WithContext(ctx).
		Model(&models.SaleModel{}).
		Select("COUNT(*) AS sale_count, " +
			"COALESCE(SUM(sale_price), 0) AS gross_revenue, " +
			"COALESCE(SUM(commission), 0) AS total_commission, " +
			"COALESCE(SUM(seller_earnings), 0) AS total_earnings").
		Scan(&saleRow).Error
	if err != nil {
		return nil, err
	}

	var itemRow struct {
		ItemsSold        int64
		DistinctProducts int64
	}
	err = r.db.DB.WithContext(ctx).
		Model(&models.SaleItemModel{}).
		Select("COALESCE(SUM(sale_items.quantity), 0) AS items_sold, "+
			"COUNT(DISTINCT sale_items.external_product_id) AS distinct_products").
		Joins("JOIN sales ON sales.id = sale_items.sale_id").
		Where("sales.seller_id = ?", sellerID).
		Scan(&itemRow).Error
	if err != nil {
		return nil, err
	}

	return &ledger.SellerStats{
		SellerID:         sellerID,
		SaleCount:        saleRow.SaleCount,
		GrossRevenue:     saleRow.GrossRevenue,
		TotalCommission:  saleRow.TotalCommission,
		TotalEarnings:    saleRow.TotalEarnings,
		ItemsSold:        itemRow.ItemsSold,
		DistinctProducts: itemRow.DistinctProducts,
	}, nil
}

// ---------------------------------------------------------------------------
// Filter helpers
// ---------------------------------------------------------------------------

func (r *GormLedgerRepository) applySaleFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applySaleFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, SaleSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

func (r *GormLedgerRepository) applySaleFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if orderID, ok := filter.Filters["order_id"].(uuid.UUID); ok {
		query = query.Where("order_id = ?", orderID)
	}
	return query
}

var _ ledger.LedgerRepository = (*GormLedgerRepository)(nil)
