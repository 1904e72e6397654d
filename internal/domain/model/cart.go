package model

import "github.com/shopspring/decimal"

// CartLine is one finalized cart entry.
type CartLine struct {
	ProductID     *int64
	ProductName   string
	Size          string
	Icing         string
	Eggs          string
	CustomMessage string
	UnitPrice     decimal.Decimal
	Quantity      int
}

// CartSnapshot is the immutable cart content handed over at checkout.
type CartSnapshot struct {
	Lines []CartLine
}

// Empty reports whether the snapshot carries no units.
func (c CartSnapshot) Empty() bool {
	for _, line := range c.Lines {
		if line.Quantity > 0 {
			return false
		}
	}
	return true
}

// Total sums unit price times quantity across all lines.
func (c CartSnapshot) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}
