package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/shared"
)

// ProductMapping links an external marketplace product id to the internal
// catalog product and the seller who owns it. The margin percent drives the
// commission split on every sale of the product.
type ProductMapping struct {
	shared.BaseEntity
	ExternalProductID string
	ProductID         uuid.UUID
	SellerID          uuid.UUID
	Name              string
	BaseCost          decimal.Decimal
	MarginPercent     decimal.Decimal
	Active            bool
}

// NewProductMapping creates an active mapping for an external product
func NewProductMapping(externalProductID string, productID, sellerID uuid.UUID, name string, baseCost, marginPercent decimal.Decimal) (*ProductMapping, error) {
	if externalProductID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "external product id cannot be empty")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "seller id cannot be empty")
	}
	if marginPercent.IsNegative() || marginPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "margin percent must be between 0 and 100")
	}
	return &ProductMapping{
		BaseEntity:        shared.NewBaseEntity(),
		ExternalProductID: externalProductID,
		ProductID:         productID,
		SellerID:          sellerID,
		Name:              name,
		BaseCost:          baseCost,
		MarginPercent:     marginPercent,
		Active:            true,
	}, nil
}

// Deactivate soft-deletes the mapping; future deliveries skip its items
func (m *ProductMapping) Deactivate() {
	m.Active = false
}

// Activate re-enables the mapping
func (m *ProductMapping) Activate() {
	m.Active = true
}

// ResolvedProduct is the resolver output consumed by the ingest pipeline
type ResolvedProduct struct {
	ProductID     uuid.UUID
	SellerID      uuid.UUID
	Name          string
	BaseCost      decimal.Decimal
	MarginPercent decimal.Decimal
}

// Resolved converts an active mapping into its pipeline view
func (m *ProductMapping) Resolved() ResolvedProduct {
	return ResolvedProduct{
		ProductID:     m.ProductID,
		SellerID:      m.SellerID,
		Name:          m.Name,
		BaseCost:      m.BaseCost,
		MarginPercent: m.MarginPercent,
	}
}

// ---- Repository interfaces ----

// ProductMappingReader provides read access to product mappings
type ProductMappingReader interface {
	FindByExternalID(ctx context.Context, externalProductID string) (*ProductMapping, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]ProductMapping, error)
	FindAllBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]ProductMapping, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// ProductMappingWriter provides write access to product mappings
type ProductMappingWriter interface {
	// Upsert inserts the mapping or replaces the row holding its external id
	Upsert(ctx context.Context, mapping *ProductMapping) error
	Deactivate(ctx context.Context, externalProductID string) error
}

// ProductMappingRepository combines read and write access
type ProductMappingRepository interface {
	ProductMappingReader
	ProductMappingWriter
}

// Resolver resolves external product ids for the ingest pipeline.
// Unknown mappings yield shared.ErrNotFound, deactivated ones
// shared.ErrMappingInactive; both are skippable line-item conditions.
type Resolver interface {
	Resolve(ctx context.Context, externalProductID string) (ResolvedProduct, error)
}
