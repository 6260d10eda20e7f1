package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expense-tracker/internal/entity/expense"
)

func rec(category, amount string) expense.Record {
	return expense.Record{
		Category: category,
		Amount:   decimal.RequireFromString(amount),
		Date:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

func Test_Summarize_GroupsAndSumsByCategory(t *testing.T) {
	summary := Summarize([]expense.Record{
		rec("Food", "30"),
		rec("Food", "20"),
		rec("Transportation", "50"),
	})

	assert.Equal(t, 2, summary.CategoryCount)
	assert.True(t, summary.TotalAmount.Equal(decimal.RequireFromString("100")))

	require.Len(t, summary.Categories, 2)
	for _, cat := range summary.Categories {
		assert.True(t, cat.Amount.Equal(decimal.RequireFromString("50")))
		require.NotNil(t, cat.Percentage)
		assert.InDelta(t, 50.0, *cat.Percentage, 1e-9)
	}
}

func Test_Summarize_TopCategoryTieBreaksLexicographically(t *testing.T) {
	summary := Summarize([]expense.Record{
		rec("Transportation", "50"),
		rec("Food", "50"),
	})

	require.NotNil(t, summary.TopCategory)
	assert.Equal(t, "Food", summary.TopCategory.Category)
	assert.Equal(t, "Food", summary.Categories[0].Category)
}

func Test_Summarize_OrdersCategoriesByTotalDescending(t *testing.T) {
	summary := Summarize([]expense.Record{
		rec("Food", "10"),
		rec("Shopping", "300"),
		rec("Healthcare", "120"),
	})

	require.Len(t, summary.Categories, 3)
	assert.Equal(t, "Shopping", summary.Categories[0].Category)
	assert.Equal(t, "Healthcare", summary.Categories[1].Category)
	assert.Equal(t, "Food", summary.Categories[2].Category)
	assert.Equal(t, "Shopping", summary.TopCategory.Category)
}

func Test_Summarize_PercentagesRoundHalfUpAtFourPlaces(t *testing.T) {
	summary := Summarize([]expense.Record{
		rec("Food", "1"),
		rec("Shopping", "2"),
	})

	// 1/3 = 0.3333..., rounds to 0.3333 -> 33.33
	// 2/3 = 0.6666..., rounds to 0.6667 -> 66.67
	require.Len(t, summary.Categories, 2)
	assert.InDelta(t, 66.67, *summary.Categories[0].Percentage, 1e-9)
	assert.InDelta(t, 33.33, *summary.Categories[1].Percentage, 1e-9)
}

func Test_Summarize_EmptyInput(t *testing.T) {
	summary := Summarize(nil)

	assert.Zero(t, summary.CategoryCount)
	assert.True(t, summary.TotalAmount.IsZero())
	assert.Nil(t, summary.TopCategory)
	assert.Empty(t, summary.Categories)
	for _, cat := range summary.Categories {
		assert.Nil(t, cat.Percentage)
	}
}

func Test_SumAmounts_ExactDecimalAddition(t *testing.T) {
	// 0.1 + 0.2 is exactly 0.3 in decimal arithmetic.
	total := SumAmounts([]expense.Record{rec("Food", "0.1"), rec("Food", "0.2")})
	assert.True(t, total.Equal(decimal.RequireFromString("0.3")))
}
