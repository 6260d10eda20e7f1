package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/model/customerr"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func today() time.Time {
	return expense.DateOnly(time.Now())
}

func assertValidationError(t *testing.T, err error, msg string) {
	t.Helper()
	require.Error(t, err)
	var vErr *customerr.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, msg, vErr.Err)
}

func Test_Create_ShouldAcceptValidInput(t *testing.T) {
	err := Create(amt("25.50"), "Lunch at the corner place", "Food", today())
	assert.NoError(t, err)
}

func Test_Create_AmountBoundaries(t *testing.T) {
	assert.NoError(t, Create(amt("10000.00"), "new laptop", "Electronics", today()))
	assertValidationError(t,
		Create(amt("10000.01"), "new laptop", "Electronics", today()),
		"Amount cannot exceed $10,000")
	assertValidationError(t,
		Create(amt("0"), "coffee", "Food", today()),
		"Amount must be positive")
	assertValidationError(t,
		Create(amt("-5"), "coffee", "Food", today()),
		"Amount must be positive")
}

func Test_Create_ShouldRejectMoreThanTwoDecimalPlaces(t *testing.T) {
	assertValidationError(t,
		Create(amt("10.125"), "coffee", "Food", today()),
		"Amount cannot have more than 2 decimal places")
	// A trailing zero third digit is still two effective decimal places.
	assert.NoError(t, Create(amt("10.120"), "coffee", "Food", today()))
}

func Test_Create_DescriptionRules(t *testing.T) {
	assertValidationError(t,
		Create(amt("10"), "   ", "Food", today()),
		"Description is required")
	assertValidationError(t,
		Create(amt("10"), strings.Repeat("x", 300), "Food", today()),
		"Description cannot exceed 255 characters")
}

func Test_Create_CategoryRules(t *testing.T) {
	assertValidationError(t,
		Create(amt("10"), "coffee", "  ", today()),
		"Category is required")
}

func Test_Create_DateRules(t *testing.T) {
	tomorrow := today().AddDate(0, 0, 1)
	assertValidationError(t,
		Create(amt("10"), "coffee", "Food", tomorrow),
		"Date cannot be in the future")

	assert.NoError(t, Create(amt("10"), "coffee", "Food", today()))

	tooOld := today().AddDate(-2, 0, -1)
	assertValidationError(t,
		Create(amt("10"), "coffee", "Food", tooOld),
		"Date cannot be more than 2 years in the past")

	assertValidationError(t,
		Create(amt("10"), "coffee", "Food", time.Time{}),
		"Date is required")
}

func Test_Create_TestExpensesStayUnderCap(t *testing.T) {
	assertValidationError(t,
		Create(amt("1500"), "load TEST run", "Other", today()),
		"Test expenses cannot exceed $1000")
	assert.NoError(t, Create(amt("900"), "load test run", "Other", today()))
}

func Test_Update_ShouldRejectEmptyUpdate(t *testing.T) {
	assertValidationError(t, Update(expense.Update{}), "No fields provided for update")
}

func Test_Update_ChecksOnlySuppliedFields(t *testing.T) {
	bad := amt("-1")
	assertValidationError(t, Update(expense.Update{Amount: &bad}), "Amount must be positive")

	desc := "groceries run"
	assert.NoError(t, Update(expense.Update{Description: &desc}))
}

func Test_Update_AllowsDatesOlderThanTwoYears(t *testing.T) {
	old := today().AddDate(-3, 0, 0)
	assert.NoError(t, Update(expense.Update{Date: &old}))

	future := today().AddDate(0, 0, 1)
	assertValidationError(t, Update(expense.Update{Date: &future}), "Date cannot be in the future")
}
