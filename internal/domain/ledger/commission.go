package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/marketledger/backend/internal/domain/shared"
)

var oneHundred = decimal.NewFromInt(100)

// CommissionLine is one resolved payload line entering the commission split
type CommissionLine struct {
	LineTotal     decimal.Decimal
	MarginPercent decimal.Decimal
}

// CommissionBreakdown is the exact monetary decomposition of a sale.
// Commission plus SellerEarnings always equals SalePrice to the cent;
// truncation remainders accrue to the seller.
type CommissionBreakdown struct {
	SalePrice      decimal.Decimal
	Commission     decimal.Decimal
	SellerEarnings decimal.Decimal
}

// ComputeCommission splits a seller's lines into marketplace commission and
// seller earnings. Per line, commission is the margin percentage of the
// line total truncated to two decimal places; the sale commission is the
// sum over lines and earnings absorb whatever truncation left over.
func ComputeCommission(lines []CommissionLine) (CommissionBreakdown, error) {
	if len(lines) == 0 {
		return CommissionBreakdown{}, shared.NewDomainError("INVALID_INPUT", "commission requires at least one line")
	}
	salePrice := decimal.Zero
	commission := decimal.Zero
	for _, line := range lines {
		if line.LineTotal.IsNegative() {
			return CommissionBreakdown{}, shared.NewDomainError("INVALID_INPUT", "line total cannot be negative")
		}
		if line.MarginPercent.IsNegative() || line.MarginPercent.GreaterThan(oneHundred) {
			return CommissionBreakdown{}, shared.NewDomainError("INVALID_INPUT", "margin percent must be between 0 and 100")
		}
		salePrice = salePrice.Add(line.LineTotal)
		commission = commission.Add(line.LineTotal.Mul(line.MarginPercent).Div(oneHundred).Truncate(2))
	}
	return CommissionBreakdown{
		SalePrice:      salePrice,
		Commission:     commission,
		SellerEarnings: salePrice.Sub(commission),
	}, nil
}
