package enums

import "fmt"

// ExpenseCategory tags a logged expense for display and filtering.
type ExpenseCategory string

const (
	ExpenseCategoryCourt          ExpenseCategory = "court"
	ExpenseCategoryEquipment      ExpenseCategory = "equipment"
	ExpenseCategorySupplies       ExpenseCategory = "supplies"
	ExpenseCategoryFood           ExpenseCategory = "food"
	ExpenseCategoryRefreshments   ExpenseCategory = "refreshments"
	ExpenseCategoryTransportation ExpenseCategory = "transportation"
	ExpenseCategoryAccommodation  ExpenseCategory = "accommodation"
	ExpenseCategoryBookingFee     ExpenseCategory = "booking_fee"
	ExpenseCategorySoftware       ExpenseCategory = "software"
	ExpenseCategoryDecorations    ExpenseCategory = "decorations"
	ExpenseCategoryGifts          ExpenseCategory = "gifts"
	ExpenseCategoryDonation       ExpenseCategory = "donation"
	ExpenseCategoryEntryFee       ExpenseCategory = "entry_fee"
	ExpenseCategoryOther          ExpenseCategory = "other"
)

var validExpenseCategories = []ExpenseCategory{
	ExpenseCategoryCourt,
	ExpenseCategoryEquipment,
	ExpenseCategorySupplies,
	ExpenseCategoryFood,
	ExpenseCategoryRefreshments,
	ExpenseCategoryTransportation,
	ExpenseCategoryAccommodation,
	ExpenseCategoryBookingFee,
	ExpenseCategorySoftware,
	ExpenseCategoryDecorations,
	ExpenseCategoryGifts,
	ExpenseCategoryDonation,
	ExpenseCategoryEntryFee,
	ExpenseCategoryOther,
}

// String implements fmt.Stringer.
func (c ExpenseCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ExpenseCategory.
func (c ExpenseCategory) IsValid() bool {
	for _, candidate := range validExpenseCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseExpenseCategory converts raw input into an ExpenseCategory.
func ParseExpenseCategory(value string) (ExpenseCategory, error) {
	for _, candidate := range validExpenseCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid expense category %q", value)
}
