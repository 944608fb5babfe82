package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/marketledger/backend/internal/domain/catalog"
	"github.com/marketledger/backend/internal/domain/ledger"
	"github.com/marketledger/backend/internal/domain/shared"
	"github.com/marketledger/backend/internal/infrastructure/logger"
	"github.com/marketledger/backend/internal/infrastructure/telemetry"
)

// LedgerWriter is the persistence surface the pipeline writes through
type LedgerWriter interface {
	ledger.OrderRepository
	ledger.ReconciliationWriter
}

// WebhookService drives the order reconciliation pipeline: it validates
// inbound payloads, resolves line items through the product catalog, splits
// them into per-seller sales with computed commissions, and persists each
// payload's write set atomically. Payload failures are isolated; one bad
// element never aborts its batch siblings.
type WebhookService struct {
	writer    LedgerWriter
	resolver  catalog.Resolver
	dedupe    shared.IdempotencyStore
	dedupeTTL time.Duration
	validate  *validator.Validate
}

// NewWebhookService creates a new WebhookService. The idempotency store is
// optional; pass nil to disable the delivery dedupe fast path.
func NewWebhookService(
	writer LedgerWriter,
	resolver catalog.Resolver,
	dedupe shared.IdempotencyStore,
	dedupeTTL time.Duration,
) *WebhookService {
	return &WebhookService{
		writer:    writer,
		resolver:  resolver,
		dedupe:    dedupe,
		dedupeTTL: dedupeTTL,
		validate:  validator.New(),
	}
}

// ProcessBatch processes every payload of one webhook delivery independently
func (s *WebhookService) ProcessBatch(ctx context.Context, payloads []OrderPayload) *BatchResult {
	result := &BatchResult{}
	for i := range payloads {
		result.add(s.ProcessPayload(ctx, payloads[i]))
	}
	return result
}

// ProcessPayload runs the full reconciliation sequence for one payload
func (s *WebhookService) ProcessPayload(ctx context.Context, payload OrderPayload) PayloadOutcome {
	ctx, span := telemetry.StartSpan(ctx, "webhook.process_payload",
		telemetry.WithAttribute("order.external_id", payload.ExternalID),
	)
	defer span.End()

	log := logger.L(ctx).With(zap.String("order_external_id", payload.ExternalID))

	if err := s.validatePayload(payload); err != nil {
		log.Warn("Payload rejected", zap.String("reason", err.Error()))
		return PayloadOutcome{
			Status:          OutcomeRejected,
			OrderExternalID: payload.ExternalID,
			Message:         err.Error(),
		}
	}

	digest := payloadDigest(payload)
	if s.isDuplicateDelivery(ctx, digest) {
		log.Info("Duplicate delivery short-circuited", zap.String("digest", digest))
		return PayloadOutcome{
			Status:          OutcomeDuplicate,
			OrderExternalID: payload.ExternalID,
			Message:         "delivery already processed",
		}
	}

	order, err := ledger.NewOrder(
		payload.ExternalID,
		payload.BuyerName,
		payload.BuyerEmail,
		*payload.Total,
		ledger.OrderStatus(payload.Status),
	)
	if err != nil {
		return PayloadOutcome{
			Status:          OutcomeRejected,
			OrderExternalID: payload.ExternalID,
			Message:         err.Error(),
		}
	}

	resolved, skipped, err := s.resolveItems(ctx, payload.Items)
	if err != nil {
		telemetry.RecordError(span, err)
		log.Error("Catalog lookup failed", zap.Error(err))
		return PayloadOutcome{
			Status:          OutcomeFailed,
			OrderExternalID: payload.ExternalID,
			Message:         "catalog lookup failed",
		}
	}

	if len(resolved) == 0 {
		// No sale can be split off, but the order itself is still real
		if err := s.writer.UpsertByExternalID(ctx, order); err != nil {
			telemetry.RecordError(span, err)
			log.Error("Order upsert failed", zap.Error(err))
			return PayloadOutcome{
				Status:          OutcomeFailed,
				OrderExternalID: payload.ExternalID,
				Message:         "storage failure, delivery should be retried",
			}
		}
		s.markDelivered(ctx, digest)
		log.Info("Payload fully skipped, no resolvable items",
			zap.Int("skipped_items", len(skipped)))
		return PayloadOutcome{
			Status:          OutcomeSkipped,
			OrderExternalID: payload.ExternalID,
			SkippedItems:    skipped,
			Message:         "no resolvable items",
		}
	}

	sales, err := s.splitSales(order, resolved)
	if err != nil {
		telemetry.RecordError(span, err)
		return PayloadOutcome{
			Status:          OutcomeRejected,
			OrderExternalID: payload.ExternalID,
			Message:         err.Error(),
		}
	}

	s.checkDeclaredTotal(log, payload, sales)

	if err := s.writer.SaveReconciliation(ctx, order, sales); err != nil {
		telemetry.RecordError(span, err)
		log.Error("Reconciliation write failed", zap.Error(err))
		return PayloadOutcome{
			Status:          OutcomeFailed,
			OrderExternalID: payload.ExternalID,
			Message:         "storage failure, delivery should be retried",
		}
	}

	s.markDelivered(ctx, digest)
	log.Info("Payload reconciled",
		zap.Int("sales", len(sales)),
		zap.Int("skipped_items", len(skipped)))

	return PayloadOutcome{
		Status:          OutcomeProcessed,
		OrderExternalID: payload.ExternalID,
		SaleCount:       len(sales),
		SkippedItems:    skipped,
	}
}

// ---------------------------------------------------------------------------
// Pipeline stages
// ---------------------------------------------------------------------------

func (s *WebhookService) validatePayload(payload OrderPayload) error {
	if err := s.validate.Struct(payload); err != nil {
		return fmt.Errorf("invalid payload shape: %w", err)
	}
	if payload.Total.IsNegative() {
		return fmt.Errorf("order total cannot be negative")
	}
	for i, item := range payload.Items {
		if item.Price.IsNegative() {
			return fmt.Errorf("item %d: unit price cannot be negative", i)
		}
	}
	return nil
}

// resolvedItem pairs a payload line with its catalog resolution
type resolvedItem struct {
	payload  ItemPayload
	product  catalog.ResolvedProduct
	position int
}

// resolveItems maps each line item through the product catalog. Unknown and
// deactivated mappings are skippable; any other resolver error aborts the
// payload as a storage failure.
func (s *WebhookService) resolveItems(ctx context.Context, items []ItemPayload) ([]resolvedItem, []SkippedItem, error) {
	resolved := make([]resolvedItem, 0, len(items))
	var skipped []SkippedItem

	for i, item := range items {
		product, err := s.resolver.Resolve(ctx, item.ExternalProductID)
		switch {
		case err == nil:
			resolved = append(resolved, resolvedItem{payload: item, product: product, position: i})
		case errors.Is(err, shared.ErrNotFound):
			skipped = append(skipped, SkippedItem{
				ExternalProductID: item.ExternalProductID,
				Reason:            "no catalog mapping",
			})
		case errors.Is(err, shared.ErrMappingInactive):
			skipped = append(skipped, SkippedItem{
				ExternalProductID: item.ExternalProductID,
				Reason:            "mapping deactivated",
			})
		default:
			return nil, nil, err
		}
	}
	return resolved, skipped, nil
}

// splitSales groups resolved items by seller preserving first-seen order and
// builds one sale per seller with its commission breakdown
func (s *WebhookService) splitSales(order *ledger.Order, items []resolvedItem) ([]*ledger.Sale, error) {
	groups := make(map[uuid.UUID][]resolvedItem)
	sellerOrder := make([]uuid.UUID, 0, len(items))

	for _, item := range items {
		sellerID := item.product.SellerID
		if _, seen := groups[sellerID]; !seen {
			sellerOrder = append(sellerOrder, sellerID)
		}
		groups[sellerID] = append(groups[sellerID], item)
	}

	sales := make([]*ledger.Sale, 0, len(sellerOrder))
	for _, sellerID := range sellerOrder {
		group := groups[sellerID]

		saleItems := make([]ledger.SaleItem, len(group))
		lines := make([]ledger.CommissionLine, len(group))
		for i, item := range group {
			quantity := item.payload.Quantity
			if quantity == 0 {
				quantity = 1
			}
			name := item.payload.Name
			if name == "" {
				name = item.product.Name
			}
			saleItems[i] = ledger.SaleItem{
				BaseEntity:        shared.NewBaseEntity(),
				ExternalProductID: item.payload.ExternalProductID,
				ProductID:         item.product.ProductID,
				ProductName:       name,
				UnitPrice:         item.payload.Price,
				Quantity:          quantity,
				Position:          item.position,
			}
			lines[i] = ledger.CommissionLine{
				LineTotal:     saleItems[i].LineTotal(),
				MarginPercent: item.product.MarginPercent,
			}
		}

		breakdown, err := ledger.ComputeCommission(lines)
		if err != nil {
			return nil, err
		}

		sale, err := ledger.NewSale(order.ID, sellerID, saleItems, breakdown)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}
	return sales, nil
}

// checkDeclaredTotal logs a warning when the platform's declared order total
// does not match the sum of the split sales. The ledger keeps the computed
// numbers; the declared total is stored on the order as reported.
func (s *WebhookService) checkDeclaredTotal(log *logger.ContextLogger, payload OrderPayload, sales []*ledger.Sale) {
	sum := decimal.Zero
	for _, sale := range sales {
		sum = sum.Add(sale.SalePrice)
	}
	if !sum.Equal(*payload.Total) {
		log.Warn("Declared order total differs from split sales",
			zap.String("declared_total", payload.Total.String()),
			zap.String("computed_total", sum.String()))
	}
}

// ---------------------------------------------------------------------------
// Delivery dedupe
// ---------------------------------------------------------------------------

// payloadDigest is a stable fingerprint of one payload's content
func payloadDigest(payload OrderPayload) string {
	raw, err := json.Marshal(payload)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// isDuplicateDelivery consults the idempotency store. Best effort only: any
// store error means "not a duplicate" and the DB upserts stay authoritative.
func (s *WebhookService) isDuplicateDelivery(ctx context.Context, digest string) bool {
	if s.dedupe == nil || digest == "" {
		return false
	}
	seen, err := s.dedupe.IsProcessed(ctx, digest)
	if err != nil {
		logger.L(ctx).Warn("Idempotency store lookup failed", zap.Error(err))
		return false
	}
	return seen
}

func (s *WebhookService) markDelivered(ctx context.Context, digest string) {
	if s.dedupe == nil || digest == "" {
		return
	}
	if _, err := s.dedupe.MarkProcessed(ctx, digest, s.dedupeTTL); err != nil {
		logger.L(ctx).Warn("Idempotency store mark failed", zap.Error(err))
	}
}
