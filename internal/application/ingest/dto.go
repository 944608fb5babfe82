package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderPayload is one inbound order notification from the sales platform.
// Monetary fields arrive as decimal strings and are parsed exactly. Total
// is a pointer so a payload that omits it is told apart from a genuine
// zero and rejected as malformed.
type OrderPayload struct {
	ExternalID string           `json:"id" validate:"required,max=64"`
	BuyerName  string           `json:"customer_name" validate:"required,max=255"`
	BuyerEmail string           `json:"customer_email" validate:"required,email,max=255"`
	Total      *decimal.Decimal `json:"total" validate:"required"`
	Status     string           `json:"status" validate:"omitempty,oneof=pending approved cancelled"`
	Items      []ItemPayload    `json:"items" validate:"required,min=1,dive"`
}

// ItemPayload is one line item within an order payload
type ItemPayload struct {
	ExternalProductID string          `json:"product_id" validate:"required,max=64"`
	Name              string          `json:"name" validate:"max=255"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity" validate:"omitempty,min=1"`
}

// DecodeBatch parses a webhook body that is either a single payload object
// or an array of payloads, sniffed from the first non-space byte. An empty
// array is an error: the platform never sends one and it would otherwise
// produce an empty 200.
func DecodeBatch(body []byte) ([]OrderPayload, error) {
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty request body")
	}

	switch trimmed[0] {
	case '[':
		var payloads []OrderPayload
		if err := json.Unmarshal(trimmed, &payloads); err != nil {
			return nil, fmt.Errorf("malformed payload array: %w", err)
		}
		if len(payloads) == 0 {
			return nil, fmt.Errorf("payload array is empty")
		}
		return payloads, nil
	case '{':
		var payload OrderPayload
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return nil, fmt.Errorf("malformed payload object: %w", err)
		}
		return []OrderPayload{payload}, nil
	default:
		return nil, fmt.Errorf("request body must be a JSON object or array")
	}
}

// Payload outcome statuses
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// SkippedItem records one line item that could not be resolved
type SkippedItem struct {
	ExternalProductID string `json:"external_product_id"`
	Reason            string `json:"reason"`
}

// PayloadOutcome is the per-payload result reported back to the caller
type PayloadOutcome struct {
	Status          string        `json:"status"`
	OrderExternalID string        `json:"order_external_id,omitempty"`
	SaleCount       int           `json:"sale_count"`
	SkippedItems    []SkippedItem `json:"skipped_items,omitempty"`
	Message         string        `json:"message,omitempty"`
}

// BatchResult aggregates the outcomes of one webhook delivery
type BatchResult struct {
	Outcomes   []PayloadOutcome `json:"outcomes"`
	Processed  int              `json:"processed"`
	Duplicates int              `json:"duplicates"`
	Rejected   int              `json:"rejected"`
	Skipped    int              `json:"skipped"`
	Failed     int              `json:"failed"`
}

func (r *BatchResult) add(outcome PayloadOutcome) {
	r.Outcomes = append(r.Outcomes, outcome)
	switch outcome.Status {
	case OutcomeProcessed:
		r.Processed++
	case OutcomeDuplicate:
		r.Duplicates++
	case OutcomeRejected:
		r.Rejected++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
	}
}

// Succeeded reports whether at least one payload was applied to the ledger
// or recognized as an earlier delivery
func (r *BatchResult) Succeeded() bool {
	return r.Processed > 0 || r.Duplicates > 0 || r.Skipped > 0
}

// AllRejected reports whether validation rejected every payload
func (r *BatchResult) AllRejected() bool {
	return r.Rejected == len(r.Outcomes)
}

// OnlyFailures reports whether storage failures prevented every non-rejected
// payload from completing
func (r *BatchResult) OnlyFailures() bool {
	return r.Failed > 0 && r.Failed+r.Rejected == len(r.Outcomes)
}
