package handler

import (
	"github.com/gin-gonic/gin"

	catalogapp "github.com/marketledger/backend/internal/application/catalog"
	"github.com/marketledger/backend/internal/interfaces/http/router"
)

// CatalogMappingHandler manages product mappings between marketplace
// listings and seller catalog entries
type CatalogMappingHandler struct {
	BaseHandler
	mappingService *catalogapp.MappingService
}

// NewCatalogMappingHandler creates a new CatalogMappingHandler
func NewCatalogMappingHandler(mappingService *catalogapp.MappingService) *CatalogMappingHandler {
	return &CatalogMappingHandler{
		mappingService: mappingService,
	}
}

// Upsert handles POST /catalog/mappings
func (h *CatalogMappingHandler) Upsert(c *gin.Context) {
	var req catalogapp.UpsertMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	mapping, err := h.mappingService.Upsert(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, mapping)
}

// Get handles GET /catalog/mappings/:external_product_id
func (h *CatalogMappingHandler) Get(c *gin.Context) {
	externalProductID := c.Param("external_product_id")
	if externalProductID == "" {
		h.BadRequest(c, "External product ID is required")
		return
	}

	mapping, err := h.mappingService.Get(c.Request.Context(), externalProductID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, mapping)
}

// List handles GET /catalog/mappings
func (h *CatalogMappingHandler) List(c *gin.Context) {
	var query catalogapp.ListMappingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.mappingService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Deactivate handles DELETE /catalog/mappings/:external_product_id.
// The mapping row is kept so previously reconciled sales stay explainable.
func (h *CatalogMappingHandler) Deactivate(c *gin.Context) {
	externalProductID := c.Param("external_product_id")
	if externalProductID == "" {
		h.BadRequest(c, "External product ID is required")
		return
	}

	if err := h.mappingService.Deactivate(c.Request.Context(), externalProductID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers catalog mapping routes
func (h *CatalogMappingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := router.NewDomainGroup("catalog", "/catalog")

	mappings := group.Group("mappings", "/mappings")
	mappings.POST("", h.Upsert)
	mappings.GET("", h.List)
	mappings.GET("/:external_product_id", h.Get)
	mappings.DELETE("/:external_product_id", h.Deactivate)

	group.RegisterRoutes(rg)
}
