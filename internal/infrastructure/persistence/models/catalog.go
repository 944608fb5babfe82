package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/catalog"
)

// SellerModel is the persistence model for marketplace sellers
type SellerModel struct {
	BaseModel
	Name string `gorm:"type:varchar(255);not null"`
}

// TableName specifies the table name for SellerModel
func (SellerModel) TableName() string {
	return "sellers"
}

// ToDomain converts the model to a domain seller
func (m *SellerModel) ToDomain() *catalog.Seller {
	return &catalog.Seller{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// FromDomain populates the model from a domain seller
func (m *SellerModel) FromDomain(s *catalog.Seller) {
	m.FromDomainBaseEntity(s.BaseEntity)
	m.Name = s.Name
}

// ProductMappingModel is the persistence model for external product mappings.
// ExternalProductID is globally unique: one external product belongs to
// exactly one seller.
type ProductMappingModel struct {
	BaseModel
	ExternalProductID string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_product_mappings_external_id"`
	ProductID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name              string          `gorm:"type:varchar(255);not null"`
	BaseCost          decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MarginPercent     decimal.Decimal `gorm:"type:decimal(7,4);not null"`
	Active            bool            `gorm:"not null;default:true"`
}

// TableName specifies the table name for ProductMappingModel
func (ProductMappingModel) TableName() string {
	return "product_mappings"
}

// ToDomain converts the model to a domain product mapping
func (m *ProductMappingModel) ToDomain() *catalog.ProductMapping {
	return &catalog.ProductMapping{
		BaseEntity:        m.BaseModel.ToDomain(),
		ExternalProductID: m.ExternalProductID,
		ProductID:         m.ProductID,
		SellerID:          m.SellerID,
		Name:              m.Name,
		BaseCost:          m.BaseCost,
		MarginPercent:     m.MarginPercent,
		Active:            m.Active,
	}
}

// FromDomain populates the model from a domain product mapping
func (m *ProductMappingModel) FromDomain(p *catalog.ProductMapping) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.ExternalProductID = p.ExternalProductID
	m.ProductID = p.ProductID
	m.SellerID = p.SellerID
	m.Name = p.Name
	m.BaseCost = p.BaseCost
	m.MarginPercent = p.MarginPercent
	m.Active = p.Active
}
