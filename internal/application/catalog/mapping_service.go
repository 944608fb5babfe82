package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/logger"
)

// MappingService maintains the external-product-to-seller catalog the
// reconciliation pipeline resolves against
type MappingService struct {
	mappings catalog.ProductMappingRepository
	sellers  catalog.SellerRepository
}

// NewMappingService creates a new MappingService
func NewMappingService(mappings catalog.ProductMappingRepository, sellers catalog.SellerRepository) *MappingService {
	return &MappingService{
		mappings: mappings,
		sellers:  sellers,
	}
}

// Upsert creates or replaces the mapping for an external product id,
// creating the seller row first if it does not exist yet
func (s *MappingService) Upsert(ctx context.Context, req UpsertMappingRequest) (*MappingResponse, error) {
	mapping, err := catalog.NewProductMapping(
		req.ExternalProductID,
		req.ProductID,
		req.SellerID,
		req.Name,
		req.BaseCost,
		req.MarginPercent,
	)
	if err != nil {
		return nil, err
	}

	sellerName := req.SellerName
	if sellerName == "" {
		sellerName = fmt.Sprintf("seller-%s", req.SellerID)
	}
	seller, err := catalog.NewSeller(sellerName)
	if err != nil {
		return nil, err
	}
	seller.ID = req.SellerID
	if err := s.sellers.Ensure(ctx, seller); err != nil {
		return nil, err
	}

	if err := s.mappings.Upsert(ctx, mapping); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("Product mapping upserted",
		zap.String("external_product_id", mapping.ExternalProductID),
		zap.String("seller_id", mapping.SellerID.String()))

	response := ToMappingResponse(mapping)
	return &response, nil
}

// Get fetches one mapping by external product id
func (s *MappingService) Get(ctx context.Context, externalProductID string) (*MappingResponse, error) {
	mapping, err := s.mappings.FindByExternalID(ctx, externalProductID)
	if err != nil {
		return nil, err
	}
	response := ToMappingResponse(mapping)
	return &response, nil
}

// List returns one page of mappings, optionally confined to one seller
func (s *MappingService) List(ctx context.Context, query ListMappingsQuery) (*shared.Paginated[MappingResponse], error) {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.Active != nil {
		filter.Filters["active"] = *query.Active
	}
	if query.SellerID != nil && *query.SellerID != uuid.Nil {
		filter.Filters["seller_id"] = *query.SellerID
	}

	mappings, err := s.mappings.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.mappings.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]MappingResponse, len(mappings))
	for i := range mappings {
		responses[i] = ToMappingResponse(&mappings[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Deactivate soft-deletes a mapping; future deliveries skip its items
func (s *MappingService) Deactivate(ctx context.Context, externalProductID string) error {
	if err := s.mappings.Deactivate(ctx, externalProductID); err != nil {
		return err
	}
	logger.L(ctx).Info("Product mapping deactivated",
		zap.String("external_product_id", externalProductID))
	return nil
}
