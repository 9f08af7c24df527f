package expenses

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SplitExact divides total into n per-person amounts that sum back to total
// to the cent. Each amount is the rounded per-share value; the leftover cents
// go to index 0. The assignment is deterministic so recomputing over the same
// debtor ordering yields the same result.
func SplitExact(total decimal.Decimal, n int) ([]decimal.Decimal, error) {
	if n <= 0 {
		return nil, fmt.Errorf("split requires at least one participant, got %d", n)
	}

	base := total.Div(decimal.NewFromInt(int64(n))).Round(2)
	remainder := total.Sub(base.Mul(decimal.NewFromInt(int64(n)))).Round(2)

	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = base
	}
	amounts[0] = base.Add(remainder)
	return amounts, nil
}
