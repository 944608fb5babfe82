package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/marketledger/backend/internal/domain/shared"
)

// OrderReader provides read access to reconciled orders
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByExternalID(ctx context.Context, externalID string) (*Order, error)
}

// OrderRepository provides read and write access to orders
type OrderRepository interface {
	OrderReader
	// UpsertByExternalID inserts the order or updates the row holding its
	// external id. On update the entity's ID and CreatedAt are rewritten to
	// the canonical row's values.
	UpsertByExternalID(ctx context.Context, order *Order) error
}

// SaleReader provides seller-scoped read access to sales. Every method
// filters by seller inside the query; there is no unscoped listing.
type SaleReader interface {
	FindByIDForSeller(ctx context.Context, sellerID, id uuid.UUID) (*Sale, error)
	FindAllForSeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]Sale, error)
	CountForSeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) (int64, error)
	FindAllByOrder(ctx context.Context, orderID uuid.UUID) ([]Sale, error)
	StatsForSeller(ctx context.Context, sellerID uuid.UUID) (*SellerStats, error)
}

// ReconciliationWriter persists the full write set of one payload in a
// single transaction: the order upsert plus every per-seller sale with its
// items. A returned error means nothing was written.
type ReconciliationWriter interface {
	SaveReconciliation(ctx context.Context, order *Order, sales []*Sale) error
}

// LedgerRepository is the full persistence surface of the ledger
type LedgerRepository interface {
	OrderRepository
	SaleReader
	ReconciliationWriter
}
