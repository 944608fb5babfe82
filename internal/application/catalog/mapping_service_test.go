package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/shared"
)

// MockProductMappingRepository is a mock implementation of ProductMappingRepository
type MockProductMappingRepository struct {
	mock.Mock
}

func (m *MockProductMappingRepository) FindByExternalID(ctx context.Context, externalProductID string) (*catalog.ProductMapping, error) {
	args := m.Called(ctx, externalProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.ProductMapping), args.Error(1)
}

func (m *MockProductMappingRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.ProductMapping, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.ProductMapping), args.Error(1)
}

func (m *MockProductMappingRepository) FindAllBySeller(ctx context.Context, sellerID uuid.UUID, filter shared.Filter) ([]catalog.ProductMapping, error) {
	args := m.Called(ctx, sellerID, filter)
	return args.Get(0).([]catalog.ProductMapping), args.Error(1)
}

func (m *MockProductMappingRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductMappingRepository) Upsert(ctx context.Context, mapping *catalog.ProductMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockProductMappingRepository) Deactivate(ctx context.Context, externalProductID string) error {
	args := m.Called(ctx, externalProductID)
	return args.Error(0)
}

// MockSellerRepository is a mock implementation of SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Seller, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Seller), args.Error(1)
}

func (m *MockSellerRepository) Ensure(ctx context.Context, seller *catalog.Seller) error {
	args := m.Called(ctx, seller)
	return args.Error(0)
}

func (m *MockSellerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Seller, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Seller), args.Error(1)
}

func upsertRequest(sellerID uuid.UUID) UpsertMappingRequest {
	return UpsertMappingRequest{
		ExternalProductID: "19",
		ProductID:         uuid.New(),
		SellerID:          sellerID,
		SellerName:        "Acme Outfitters",
		Name:              "Leather Satchel",
		BaseCost:          decimal.RequireFromString("40.00"),
		MarginPercent:     decimal.NewFromInt(10),
	}
}

func TestMappingService_Upsert(t *testing.T) {
	ctx := context.Background()

	t.Run("ensures the seller before writing the mapping", func(t *testing.T) {
		mappings := new(MockProductMappingRepository)
		sellers := new(MockSellerRepository)
		sellerID := uuid.New()

		sellers.On("Ensure", mock.Anything, mock.MatchedBy(func(s *catalog.Seller) bool {
			return s.ID == sellerID && s.Name == "Acme Outfitters"
		})).Return(nil)
		mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		service := NewMappingService(mappings, sellers)
		response, err := service.Upsert(ctx, upsertRequest(sellerID))

		require.NoError(t, err)
		assert.Equal(t, "19", response.ExternalProductID)
		assert.Equal(t, sellerID, response.SellerID)
		assert.True(t, response.Active)
		sellers.AssertExpectations(t)
		mappings.AssertExpectations(t)
	})

	t.Run("rejects an out-of-range margin", func(t *testing.T) {
		service := NewMappingService(new(MockProductMappingRepository), new(MockSellerRepository))

		req := upsertRequest(uuid.New())
		req.MarginPercent = decimal.NewFromInt(101)

		_, err := service.Upsert(ctx, req)
		require.Error(t, err)

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
	})

	t.Run("falls back to a generated seller name", func(t *testing.T) {
		mappings := new(MockProductMappingRepository)
		sellers := new(MockSellerRepository)
		sellerID := uuid.New()

		sellers.On("Ensure", mock.Anything, mock.MatchedBy(func(s *catalog.Seller) bool {
			return s.Name != ""
		})).Return(nil)
		mappings.On("Upsert", mock.Anything, mock.Anything).Return(nil)

		req := upsertRequest(sellerID)
		req.SellerName = ""

		service := NewMappingService(mappings, sellers)
		_, err := service.Upsert(ctx, req)
		require.NoError(t, err)
		sellers.AssertExpectations(t)
	})
}

func TestMappingService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("seller filter is applied inside the repository filter", func(t *testing.T) {
		mappings := new(MockProductMappingRepository)
		sellerID := uuid.New()

		mappings.On("FindAll", mock.Anything, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["seller_id"] == sellerID
		})).Return([]catalog.ProductMapping{}, nil)
		mappings.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil)

		service := NewMappingService(mappings, new(MockSellerRepository))
		page, err := service.List(ctx, ListMappingsQuery{SellerID: &sellerID})

		require.NoError(t, err)
		assert.Equal(t, int64(0), page.Total)
		mappings.AssertExpectations(t)
	})
}

func TestMappingService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("propagates not found", func(t *testing.T) {
		mappings := new(MockProductMappingRepository)
		mappings.On("Deactivate", mock.Anything, "missing").Return(shared.ErrNotFound)

		service := NewMappingService(mappings, new(MockSellerRepository))
		err := service.Deactivate(ctx, "missing")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
