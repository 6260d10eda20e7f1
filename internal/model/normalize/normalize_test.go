package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Category_ShouldMapSynonymsToCanonicalNames(t *testing.T) {
	cases := map[string]string{
		"food":       "Food",
		"DINING":     "Food",
		"Restaurant": "Food",
		"groceries":  "Food",
		"transport":  "Transportation",
		"GAS":        "Transportation",
		"uber":       "Transportation",
		"taxi":       "Transportation",
		"fun":        "Entertainment",
		"Movies":     "Entertainment",
		"games":      "Entertainment",
		"clothes":    "Shopping",
		"RETAIL":     "Shopping",
		"medical":    "Healthcare",
		"pharmacy":   "Healthcare",
		"doctor":     "Healthcare",
	}

	for raw, want := range cases {
		assert.Equal(t, want, Category(raw), "raw=%q", raw)
	}
}

func Test_Category_ShouldFallBackToOtherOnEmptyInput(t *testing.T) {
	assert.Equal(t, "Other", Category(""))
	assert.Equal(t, "Other", Category("   "))
}

func Test_Category_ShouldPassThroughUnknownValuesTitleCased(t *testing.T) {
	assert.Equal(t, "Rent", Category("rent"))
	assert.Equal(t, "Utilities", Category("  UTILITIES  "))
	// Only the first rune is capitalized; multi-word input is not
	// per-word title-cased.
	assert.Equal(t, "Home improvement", Category("home improvement"))
	assert.Equal(t, "Home improvement", Category("HOME IMPROVEMENT"))
}

func Test_Description_ShouldCollapseWhitespaceRuns(t *testing.T) {
	assert.Equal(t, "a b", Description(" a   b "))
	assert.Equal(t, "lunch with client", Description("lunch\t with \n client"))
	assert.Equal(t, "", Description(""))
	assert.Equal(t, "", Description("   "))
}

func Test_Description_ShouldTruncateLongInput(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := Description(long)
	assert.Len(t, got, 255)
	assert.Equal(t, strings.Repeat("x", 255), got)
}

func Test_Description_BoundFollowsPreCollapseLength(t *testing.T) {
	// 250 chars of text plus a 10-space run: the pre-collapse trimmed
	// length is 260, so the bound is 255, but the collapsed string is
	// only 251 runes and survives whole.
	raw := strings.Repeat("x", 125) + strings.Repeat(" ", 10) + strings.Repeat("y", 125)
	got := Description(raw)
	assert.Equal(t, strings.Repeat("x", 125)+" "+strings.Repeat("y", 125), got)
}
