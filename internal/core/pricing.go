package core

import "github.com/shopspring/decimal"

// Pure pricing arithmetic. No I/O, no rounding mid-calculation: amounts are
// carried at full decimal precision and rounded to 2 places only at the
// persistence/response boundary (Round2).

var hundred = decimal.NewFromInt(100)

// LineAmounts is the computed money breakdown of a single order line.
type LineAmounts struct {
	Subtotal  decimal.Decimal // quantity × unit price
	TaxAmount decimal.Decimal // (subtotal − discount) × rate/100
	Total     decimal.Decimal // subtotal − discount + tax
}

// OrderAmounts is the computed money breakdown of an order header.
type OrderAmounts struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeLineItem computes subtotal, tax, and total for one line.
//
//	subtotal = quantity × unitPrice
//	tax      = (subtotal − discount) × taxRate/100
//	total    = subtotal − discount + tax
//
// Inputs outside their valid ranges yield a ValidationError.
func ComputeLineItem(quantity int, unitPrice, taxRate, discount decimal.Decimal) (LineAmounts, error) {
	if quantity <= 0 {
		return LineAmounts{}, validationErr("quantity", "must be greater than zero, got %d", quantity)
	}
	if unitPrice.IsNegative() {
		return LineAmounts{}, validationErr("unit_price", "cannot be negative, got %s", unitPrice)
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(hundred) {
		return LineAmounts{}, validationErr("tax_rate", "must be between 0 and 100, got %s", taxRate)
	}
	if discount.IsNegative() {
		return LineAmounts{}, validationErr("discount_amount", "cannot be negative, got %s", discount)
	}

	subtotal := decimal.NewFromInt(int64(quantity)).Mul(unitPrice)
	if discount.GreaterThan(subtotal) {
		return LineAmounts{}, validationErr("discount_amount",
			"cannot exceed line subtotal %s, got %s", subtotal, discount)
	}

	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxRate).Div(hundred)

	return LineAmounts{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     taxable.Add(tax),
	}, nil
}

// ComputeOrderTotals aggregates line amounts into order-level totals. A
// non-zero discountPercentage takes precedence over the flat discountAmount.
func ComputeOrderTotals(lines []LineAmounts, discountPercentage, discountAmount decimal.Decimal) (OrderAmounts, error) {
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
		return OrderAmounts{}, validationErr("discount_percentage",
			"must be between 0 and 100, got %s", discountPercentage)
	}
	if discountAmount.IsNegative() {
		return OrderAmounts{}, validationErr("discount_amount", "cannot be negative, got %s", discountAmount)
	}

	var subtotal, tax decimal.Decimal
	for _, l := range lines {
		subtotal = subtotal.Add(l.Subtotal)
		tax = tax.Add(l.TaxAmount)
	}

	discount := discountAmount
	if discountPercentage.IsPositive() {
		discount = subtotal.Mul(discountPercentage).Div(hundred)
	}
	if discount.GreaterThan(subtotal) {
		return OrderAmounts{}, validationErr("discount_amount",
			"cannot exceed order subtotal %s, got %s", subtotal, discount)
	}

	return OrderAmounts{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxAmount:      tax,
		Total:          subtotal.Sub(discount).Add(tax),
	}, nil
}

// Round2 rounds a monetary amount to 2 decimal places for persistence or
// response serialization.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
