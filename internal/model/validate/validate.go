// Package validate holds the field-level and cross-field rules checked
// before an expense is persisted. Validation fails fast: the first
// violated rule is reported and the rest are not evaluated.
package validate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"expense-tracker/internal/entity/expense"
	"expense-tracker/internal/model/customerr"
)

const (
	maxDescriptionLen = 255
	maxPastYears      = 2
)

var (
	maxAmount     = decimal.New(1000000, -2) // 10000.00
	testAmountCap = decimal.New(1000, 0)
)

// Create checks a full create request: amount bounds and scale,
// description, category, then date. Raw values are validated as the
// caller sent them; normalization happens after validation passes.
func Create(amount decimal.Decimal, description, category string, date time.Time) error {
	if err := amountRules(amount); err != nil {
		return err
	}
	if err := descriptionRules(description); err != nil {
		return err
	}
	if err := categoryRules(category); err != nil {
		return err
	}
	if err := dateRules(date, true); err != nil {
		return err
	}
	// Inherited rule: expenses marked as tests stay under $1000.
	if strings.Contains(strings.ToLower(description), "test") && amount.GreaterThan(testAmountCap) {
		return &customerr.ValidationError{Err: "Test expenses cannot exceed $1000"}
	}
	return nil
}

// Update checks only the fields the caller supplied. The two-year floor
// is a creation-time rule and is not applied here.
func Update(u expense.Update) error {
	if u.Empty() {
		return &customerr.ValidationError{Err: "No fields provided for update"}
	}
	if u.Amount != nil {
		if err := amountRules(*u.Amount); err != nil {
			return err
		}
	}
	if u.Description != nil {
		if err := descriptionRules(*u.Description); err != nil {
			return err
		}
	}
	if u.Category != nil {
		if err := categoryRules(*u.Category); err != nil {
			return err
		}
	}
	if u.Date != nil {
		if err := dateRules(*u.Date, false); err != nil {
			return err
		}
	}
	return nil
}

func amountRules(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return &customerr.ValidationError{Err: "Amount must be positive"}
	}
	if amount.GreaterThan(maxAmount) {
		return &customerr.ValidationError{Err: "Amount cannot exceed $10,000"}
	}
	if !amount.Equal(amount.Truncate(2)) {
		return &customerr.ValidationError{Err: "Amount cannot have more than 2 decimal places"}
	}
	return nil
}

func descriptionRules(description string) error {
	if strings.TrimSpace(description) == "" {
		return &customerr.ValidationError{Err: "Description is required"}
	}
	if len([]rune(description)) > maxDescriptionLen {
		return &customerr.ValidationError{Err: fmt.Sprintf("Description cannot exceed %d characters", maxDescriptionLen)}
	}
	return nil
}

func categoryRules(category string) error {
	if strings.TrimSpace(category) == "" {
		return &customerr.ValidationError{Err: "Category is required"}
	}
	return nil
}

func dateRules(date time.Time, creating bool) error {
	if date.IsZero() {
		return &customerr.ValidationError{Err: "Date is required"}
	}
	today := expense.DateOnly(time.Now())
	day := expense.DateOnly(date)
	if day.After(today) {
		return &customerr.ValidationError{Err: "Date cannot be in the future"}
	}
	if creating && day.Before(today.AddDate(-maxPastYears, 0, 0)) {
		return &customerr.ValidationError{Err: fmt.Sprintf("Date cannot be more than %d years in the past", maxPastYears)}
	}
	return nil
}
