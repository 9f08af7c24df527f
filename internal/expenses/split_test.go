package expenses

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSplitExactSumInvariant(t *testing.T) {
	cases := []struct {
		name  string
		total string
		n     int
	}{
		{name: "even split", total: "30.00", n: 3},
		{name: "remainder case", total: "10.00", n: 3},
		{name: "single participant", total: "42.55", n: 1},
		{name: "cent total", total: "0.01", n: 2},
		{name: "large uneven", total: "100.00", n: 7},
		{name: "awkward cents", total: "99.97", n: 6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			total := decimal.RequireFromString(tc.total)
			amounts, err := SplitExact(total, tc.n)
			if err != nil {
				t.Fatalf("split: %v", err)
			}
			if len(amounts) != tc.n {
				t.Fatalf("expected %d amounts, got %d", tc.n, len(amounts))
			}

			sum := decimal.Zero
			for _, amount := range amounts {
				sum = sum.Add(amount)
			}
			if !sum.Equal(total) {
				t.Fatalf("sum %s does not equal total %s", sum, total)
			}
		})
	}
}

func TestSplitExactRemainderGoesToFirst(t *testing.T) {
	amounts, err := SplitExact(decimal.RequireFromString("10.00"), 3)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	want := []string{"3.34", "3.33", "3.33"}
	for i, w := range want {
		if !amounts[i].Equal(decimal.RequireFromString(w)) {
			t.Fatalf("amount[%d] = %s, want %s", i, amounts[i], w)
		}
	}
}

func TestSplitExactDeterministic(t *testing.T) {
	total := decimal.RequireFromString("25.01")
	first, err := SplitExact(total, 4)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	second, err := SplitExact(total, 4)
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("split not deterministic at index %d: %s vs %s", i, first[i], second[i])
		}
	}
}

func TestSplitExactRejectsNonPositiveCount(t *testing.T) {
	if _, err := SplitExact(decimal.RequireFromString("10.00"), 0); err == nil {
		t.Fatalf("expected error for n=0")
	}
	if _, err := SplitExact(decimal.RequireFromString("10.00"), -1); err == nil {
		t.Fatalf("expected error for negative n")
	}
}
