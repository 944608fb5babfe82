package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketledger/backend/internal/domain/shared"
)

// Seller is a marketplace vendor. Sales and product mappings reference it;
// the row itself carries no balance, earnings live on sales.
type Seller struct {
	shared.BaseEntity
	Name string
}

// NewSeller creates a seller with a generated id
func NewSeller(name string) (*Seller, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "seller name cannot be empty")
	}
	return &Seller{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
	}, nil
}

// SellerRepository provides access to sellers
type SellerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Seller, error)
	// Ensure inserts the seller if its id is not present yet
	Ensure(ctx context.Context, seller *Seller) error
	FindAll(ctx context.Context, filter shared.Filter) ([]Seller, error)
}
