package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/marketledger/backend/internal/application/ledger"
)

// SellerSalesHandler exposes the per-seller ledger read API
type SellerSalesHandler struct {
	BaseHandler
	saleQueries *ledgerapp.SaleQueryService
}

// NewSellerSalesHandler creates a new SellerSalesHandler
func NewSellerSalesHandler(saleQueries *ledgerapp.SaleQueryService) *SellerSalesHandler {
	return &SellerSalesHandler{
		saleQueries: saleQueries,
	}
}

// ListSales handles GET /sellers/:seller_id/sales
func (h *SellerSalesHandler) ListSales(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	var query ledgerapp.ListSalesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.saleQueries.ListSales(c.Request.Context(), sellerID, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetSale handles GET /sellers/:seller_id/sales/:sale_id
func (h *SellerSalesHandler) GetSale(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	saleID, err := uuid.Parse(c.Param("sale_id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale ID format")
		return
	}

	sale, err := h.saleQueries.GetSale(c.Request.Context(), sellerID, saleID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, sale)
}

// GetStats handles GET /sellers/:seller_id/stats
func (h *SellerSalesHandler) GetStats(c *gin.Context) {
	sellerID, err := getSellerID(c)
	if err != nil {
		h.BadRequest(c, "Invalid seller ID format")
		return
	}

	stats, err := h.saleQueries.Stats(c.Request.Context(), sellerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetOrder handles GET /orders/:external_id
func (h *SellerSalesHandler) GetOrder(c *gin.Context) {
	externalID := c.Param("external_id")
	if externalID == "" {
		h.BadRequest(c, "Order external ID is required")
		return
	}

	order, err := h.saleQueries.GetOrderByExternalID(c.Request.Context(), externalID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// RegisterRoutes registers seller ledger read routes
func (h *SellerSalesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sellers := rg.Group("/sellers/:seller_id")
	{
		sellers.GET("/sales", h.ListSales)
		sellers.GET("/sales/:sale_id", h.GetSale)
		sellers.GET("/stats", h.GetStats)
	}

	orders := rg.Group("/orders")
	{
		orders.GET("/:external_id", h.GetOrder)
	}
}
