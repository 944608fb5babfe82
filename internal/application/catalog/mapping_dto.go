package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/catalog"
)

// UpsertMappingRequest creates or replaces the mapping for one external
// product id
type UpsertMappingRequest struct {
	ExternalProductID string          `json:"external_product_id" binding:"required,max=64"`
	ProductID         uuid.UUID       `json:"product_id" binding:"required"`
	SellerID          uuid.UUID       `json:"seller_id" binding:"required"`
	SellerName        string          `json:"seller_name" binding:"omitempty,max=255"`
	Name              string          `json:"name" binding:"required,max=255"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
}

// ListMappingsQuery carries the supported query parameters for mapping lists
type ListMappingsQuery struct {
	SellerID *uuid.UUID `form:"seller_id"`
	Active   *bool      `form:"active"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// MappingResponse represents a product mapping in API responses
type MappingResponse struct {
	ID                uuid.UUID       `json:"id"`
	ExternalProductID string          `json:"external_product_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	SellerID          uuid.UUID       `json:"seller_id"`
	Name              string          `json:"name"`
	BaseCost          decimal.Decimal `json:"base_cost"`
	MarginPercent     decimal.Decimal `json:"margin_percent"`
	Active            bool            `json:"active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// ToMappingResponse converts a domain mapping to its API representation
func ToMappingResponse(m *catalog.ProductMapping) MappingResponse {
	return MappingResponse{
		ID:                m.ID,
		ExternalProductID: m.ExternalProductID,
		ProductID:         m.ProductID,
		SellerID:          m.SellerID,
		Name:              m.Name,
		BaseCost:          m.BaseCost,
		MarginPercent:     m.MarginPercent,
		Active:            m.Active,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
