package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/ledger"
)

// ListSalesQuery carries the supported query parameters for a sale listing
type ListSalesQuery struct {
	Page            int    `form:"page" binding:"omitempty,min=1"`
	PageSize        int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy         string `form:"order_by" binding:"omitempty,max=64"`
	OrderDir        string `form:"order_dir" binding:"omitempty,oneof=asc desc ASC DESC"`
	OrderExternalID string `form:"order_external_id" binding:"omitempty,max=64"`
}

// SaleItemResponse represents a sale line item in API responses
type SaleItemResponse struct {
	ID                uuid.UUID       `json:"id"`
	ExternalProductID string          `json:"external_product_id"`
	ProductID         uuid.UUID       `json:"product_id"`
	ProductName       string          `json:"product_name"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	Quantity          int             `json:"quantity"`
	Position          int             `json:"position"`
}

// SaleResponse represents a sale in API responses
type SaleResponse struct {
	ID             uuid.UUID          `json:"id"`
	OrderID        uuid.UUID          `json:"order_id"`
	SellerID       uuid.UUID          `json:"seller_id"`
	SalePrice      decimal.Decimal    `json:"sale_price"`
	Commission     decimal.Decimal    `json:"commission"`
	SellerEarnings decimal.Decimal    `json:"seller_earnings"`
	ItemCount      int                `json:"item_count"`
	Items          []SaleItemResponse `json:"items"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// OrderResponse represents a reconciled order with its sales
type OrderResponse struct {
	ID          uuid.UUID       `json:"id"`
	ExternalID  string          `json:"external_id"`
	BuyerName   string          `json:"buyer_name"`
	BuyerEmail  string          `json:"buyer_email"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	Sales       []SaleResponse  `json:"sales"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToSaleItemResponse converts a domain sale item to its API representation
func ToSaleItemResponse(item *ledger.SaleItem) SaleItemResponse {
	return SaleItemResponse{
		ID:                item.ID,
		ExternalProductID: item.ExternalProductID,
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		UnitPrice:         item.UnitPrice,
		Quantity:          item.Quantity,
		Position:          item.Position,
	}
}

// ToSaleResponse converts a domain sale to its API representation
func ToSaleResponse(sale *ledger.Sale) SaleResponse {
	items := make([]SaleItemResponse, len(sale.Items))
	for i := range sale.Items {
		items[i] = ToSaleItemResponse(&sale.Items[i])
	}
	return SaleResponse{
		ID:             sale.ID,
		OrderID:        sale.OrderID,
		SellerID:       sale.SellerID,
		SalePrice:      sale.SalePrice,
		Commission:     sale.Commission,
		SellerEarnings: sale.SellerEarnings,
		ItemCount:      sale.ItemCount,
		Items:          items,
		CreatedAt:      sale.CreatedAt,
		UpdatedAt:      sale.UpdatedAt,
	}
}

// ToOrderResponse converts a domain order and its sales to an API response
func ToOrderResponse(order *ledger.Order, sales []ledger.Sale) OrderResponse {
	saleResponses := make([]SaleResponse, len(sales))
	for i := range sales {
		saleResponses[i] = ToSaleResponse(&sales[i])
	}
	return OrderResponse{
		ID:          order.ID,
		ExternalID:  order.ExternalID,
		BuyerName:   order.BuyerName,
		BuyerEmail:  order.BuyerEmail,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		Sales:       saleResponses,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
