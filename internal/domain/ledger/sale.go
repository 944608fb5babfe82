package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/shared"
)

// Sale is one seller's slice of one order. Each order produces at most one
// sale per seller; the pair (OrderID, SellerID) is unique in storage.
type Sale struct {
	shared.BaseEntity
	OrderID        uuid.UUID
	SellerID       uuid.UUID
	SalePrice      decimal.Decimal
	Commission     decimal.Decimal
	SellerEarnings decimal.Decimal
	ItemCount      int
	Items          []SaleItem
}

// SaleItem is a single resolved line within a sale. Position preserves the
// line's index in the original payload.
type SaleItem struct {
	shared.BaseEntity
	SaleID            uuid.UUID
	ExternalProductID string
	ProductID         uuid.UUID
	ProductName       string
	UnitPrice         decimal.Decimal
	Quantity          int
	Position          int
}

// LineTotal returns unit price times quantity
func (i *SaleItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// NewSale assembles a seller's sale from its items and commission breakdown.
// Item sale ids are stamped here; persistence keeps them stable across
// redeliveries.
func NewSale(orderID, sellerID uuid.UUID, items []SaleItem, breakdown CommissionBreakdown) (*Sale, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "sale requires an order id")
	}
	if sellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "sale requires a seller id")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "sale requires at least one item")
	}
	sale := &Sale{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        orderID,
		SellerID:       sellerID,
		SalePrice:      breakdown.SalePrice,
		Commission:     breakdown.Commission,
		SellerEarnings: breakdown.SellerEarnings,
		ItemCount:      len(items),
		Items:          items,
	}
	for i := range sale.Items {
		sale.Items[i].SaleID = sale.ID
	}
	return sale, nil
}

// Consistent reports whether the monetary identity holds exactly
func (s *Sale) Consistent() bool {
	return s.Commission.Add(s.SellerEarnings).Equal(s.SalePrice)
}

// SellerStats aggregates a seller's ledger position
type SellerStats struct {
	SellerID         uuid.UUID       `json:"seller_id"`
	SaleCount        int64           `json:"sale_count"`
	GrossRevenue     decimal.Decimal `json:"gross_revenue"`
	TotalCommission  decimal.Decimal `json:"total_commission"`
	TotalEarnings    decimal.Decimal `json:"total_earnings"`
	ItemsSold        int64           `json:"items_sold"`
	DistinctProducts int64           `json:"distinct_products"`
}
