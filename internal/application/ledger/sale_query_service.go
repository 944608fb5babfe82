package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/marketledger/backend/internal/domain/ledger"
	"github.com/marketledger/backend/internal/domain/shared"
)

// LedgerReader is the read surface the query service works against
type LedgerReader interface {
	ledger.OrderReader
	ledger.SaleReader
}

// SaleQueryService serves the seller-facing read APIs. Every sale read is
// scoped to one seller inside the repository; the service never widens it.
type SaleQueryService struct {
	reader LedgerReader
}

// NewSaleQueryService creates a new SaleQueryService
func NewSaleQueryService(reader LedgerReader) *SaleQueryService {
	return &SaleQueryService{reader: reader}
}

// ListSales returns one page of a seller's sales, items included
func (s *SaleQueryService) ListSales(ctx context.Context, sellerID uuid.UUID, query ListSalesQuery) (*shared.Paginated[SaleResponse], error) {
	filter := shared.DefaultFilter()
	if query.Page > 0 {
		filter.Page = query.Page
	}
	if query.PageSize > 0 {
		filter.PageSize = query.PageSize
	}
	if query.OrderBy != "" {
		filter.OrderBy = query.OrderBy
	}
	if query.OrderDir != "" {
		filter.OrderDir = query.OrderDir
	}

	if query.OrderExternalID != "" {
		order, err := s.reader.FindByExternalID(ctx, query.OrderExternalID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				empty := shared.NewPaginated([]SaleResponse{}, 0, filter.Page, filter.PageSize)
				return &empty, nil
			}
			return nil, err
		}
		filter.Filters["order_id"] = order.ID
	}

	sales, err := s.reader.FindAllForSeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.reader.CountForSeller(ctx, sellerID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]SaleResponse, len(sales))
	for i := range sales {
		responses[i] = ToSaleResponse(&sales[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// GetSale returns one of the seller's sales with its items. Sales owned by
// other sellers are indistinguishable from absent ones.
func (s *SaleQueryService) GetSale(ctx context.Context, sellerID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.reader.FindByIDForSeller(ctx, sellerID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// Stats returns the seller's ledger aggregates
func (s *SaleQueryService) Stats(ctx context.Context, sellerID uuid.UUID) (*ledger.SellerStats, error) {
	return s.reader.StatsForSeller(ctx, sellerID)
}

// GetOrderByExternalID returns a reconciled order with every sale split off
// it. This is the operator read surface, not seller-scoped.
func (s *SaleQueryService) GetOrderByExternalID(ctx context.Context, externalID string) (*OrderResponse, error) {
	order, err := s.reader.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	sales, err := s.reader.FindAllByOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	response := ToOrderResponse(order, sales)
	return &response, nil
}
