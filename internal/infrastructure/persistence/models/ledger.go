package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/ledger"
)

// OrderModel is the persistence model for reconciled orders.
// ExternalID carries the source platform's order id and is the idempotency
// key for redeliveries.
type OrderModel struct {
	BaseModel
	ExternalID  string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_orders_external_id"`
	BuyerName   string          `gorm:"type:varchar(255);not null"`
	BuyerEmail  string          `gorm:"type:varchar(255)"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Status      string          `gorm:"type:varchar(32);not null;default:'approved'"`

	Sales []SaleModel `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for OrderModel
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the model to a domain order
func (m *OrderModel) ToDomain() *ledger.Order {
	return &ledger.Order{
		BaseEntity:  m.BaseModel.ToDomain(),
		ExternalID:  m.ExternalID,
		BuyerName:   m.BuyerName,
		BuyerEmail:  m.BuyerEmail,
		TotalAmount: m.TotalAmount,
		Status:      ledger.OrderStatus(m.Status),
	}
}

// FromDomain populates the model from a domain order
func (m *OrderModel) FromDomain(o *ledger.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ExternalID = o.ExternalID
	m.BuyerName = o.BuyerName
	m.BuyerEmail = o.BuyerEmail
	m.TotalAmount = o.TotalAmount
	m.Status = string(o.Status)
}

// SaleModel is the persistence model for per-seller sales.
// The (order_id, seller_id) pair is unique: one order yields at most one
// sale per seller, and redelivered payloads upsert into the same row.
type SaleModel struct {
	BaseModel
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_order_seller,priority:1"`
	SellerID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sales_order_seller,priority:2;index:idx_sales_seller"`
	SalePrice      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Commission     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	SellerEarnings decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	ItemCount      int             `gorm:"not null;default:0"`

	Items []SaleItemModel `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for SaleModel
func (SaleModel) TableName() string {
	return "sales"
}

// ToDomain converts the model to a domain sale
func (m *SaleModel) ToDomain() *ledger.Sale {
	sale := &ledger.Sale{
		BaseEntity:     m.BaseModel.ToDomain(),
		OrderID:        m.OrderID,
		SellerID:       m.SellerID,
		SalePrice:      m.SalePrice,
		Commission:     m.Commission,
		SellerEarnings: m.SellerEarnings,
		ItemCount:      m.ItemCount,
	}
	if len(m.Items) > 0 {
		sale.Items = make([]ledger.SaleItem, len(m.Items))
		for i := range m.Items {
			sale.Items[i] = *m.Items[i].ToDomain()
		}
	}
	return sale
}

// FromDomain populates the model from a domain sale, items included
func (m *SaleModel) FromDomain(s *ledger.Sale) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.OrderID = s.OrderID
	m.SellerID = s.SellerID
	m.SalePrice = s.SalePrice
	m.Commission = s.Commission
	m.SellerEarnings = s.SellerEarnings
	m.ItemCount = s.ItemCount
	if len(s.Items) > 0 {
		m.Items = make([]SaleItemModel, len(s.Items))
		for i := range s.Items {
			m.Items[i].FromDomain(&s.Items[i])
		}
	}
}

// SaleItemModel is the persistence model for sale line items.
// (sale_id, position) is unique so redelivered lines converge onto the
// same rows while an order may legitimately carry the same external
// product on several lines.
type SaleItemModel struct {
	BaseModel
	SaleID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sale_items_sale_position,priority:1"`
	ExternalProductID string          `gorm:"type:varchar(64);not null;index"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName       string          `gorm:"type:varchar(255);not null"`
	UnitPrice         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity          int             `gorm:"not null;default:1"`
	Position          int             `gorm:"not null;default:0;uniqueIndex:idx_sale_items_sale_position,priority:2"`
}

// TableName specifies the table name for SaleItemModel
func (SaleItemModel) TableName() string {
	return "sale_items"
}

// ToDomain converts the model to a domain sale item
func (m *SaleItemModel) ToDomain() *ledger.SaleItem {
	return &ledger.SaleItem{
		BaseEntity:        m.BaseModel.ToDomain(),
		SaleID:            m.SaleID,
		ExternalProductID: m.ExternalProductID,
		ProductID:         m.ProductID,
		ProductName:       m.ProductName,
		UnitPrice:         m.UnitPrice,
		Quantity:          m.Quantity,
		Position:          m.Position,
	}
}

// FromDomain populates the model from a domain sale item
func (m *SaleItemModel) FromDomain(i *ledger.SaleItem) {
	m.FromDomainBaseEntity(i.BaseEntity)
	m.SaleID = i.SaleID
	m.ExternalProductID = i.ExternalProductID
	m.ProductID = i.ProductID
	m.ProductName = i.ProductName
	m.UnitPrice = i.UnitPrice
	m.Quantity = i.Quantity
	m.Position = i.Position
}
