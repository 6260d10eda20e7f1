package expense

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is a single persisted expense. ID is zero until the storage
// assigns one; CreatedAt is set once at creation and never changes.
type Record struct {
	ID          int64
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        time.Time
	CreatedAt   time.Time
}

// NewRecord builds an unsaved record with CreatedAt stamped to today.
func NewRecord(amount decimal.Decimal, description, category string, date time.Time) Record {
	return Record{
		Amount:      amount,
		Description: description,
		Category:    category,
		Date:        DateOnly(date),
		CreatedAt:   DateOnly(time.Now()),
	}
}

// Update carries the fields of a partial update. A nil field means the
// caller did not mention it and the stored value is kept. There is no way
// to clear a field through an Update.
type Update struct {
	Amount      *decimal.Decimal
	Description *string
	Category    *string
	Date        *time.Time
}

// Empty reports whether the update touches no field at all.
func (u Update) Empty() bool {
	return u.Amount == nil && u.Description == nil && u.Category == nil && u.Date == nil
}

// DateOnly drops the time-of-day part, keeping a calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
