package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/shared"
)

// OrderStatus is the lifecycle state reported by the source platform
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusApproved  OrderStatus = "approved"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is the reconciled view of one external marketplace order. It is
// keyed by the external platform id; redelivered payloads update the row in
// place and never create a second one.
type Order struct {
	shared.BaseEntity
	ExternalID  string
	BuyerName   string
	BuyerEmail  string
	TotalAmount decimal.Decimal
	Status      OrderStatus
}

// NewOrder creates an order from a webhook payload header
func NewOrder(externalID, buyerName, buyerEmail string, totalAmount decimal.Decimal, status OrderStatus) (*Order, error) {
	if externalID == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "external order id cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "order total cannot be negative")
	}
	if status == "" {
		status = OrderStatusApproved
	}
	return &Order{
		BaseEntity:  shared.NewBaseEntity(),
		ExternalID:  externalID,
		BuyerName:   buyerName,
		BuyerEmail:  buyerEmail,
		TotalAmount: totalAmount,
		Status:      status,
	}, nil
}

// Refresh applies the mutable fields of a redelivered payload. Identity
// fields (id, external id) are never touched.
func (o *Order) Refresh(buyerName, buyerEmail string, totalAmount decimal.Decimal, status OrderStatus) {
	o.BuyerName = buyerName
	o.BuyerEmail = buyerEmail
	o.TotalAmount = totalAmount
	if status != "" {
		o.Status = status
	}
}
