package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Typed views of the synced entities. The engine itself treats payloads as
// opaque JSON; these structs exist for code that produces or inspects
// payloads (seed data, dev server, tests) so that amounts stay exact.

// Account represents a money account row.
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     string          `json:"type"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// Transaction represents a single ledger entry.
type Transaction struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"account_id"`
	CategoryID string          `json:"category_id,omitempty"`
	Date       time.Time       `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note,omitempty"`
}

// Category represents a spending category.
type Category struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id,omitempty"`
	Name     string `json:"name"`
	Icon     string `json:"icon,omitempty"`
}

// Budget represents a per-category spending limit for a period.
type Budget struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"category_id"`
	Period     string          `json:"period"`
	Limit      decimal.Decimal `json:"limit"`
}

// Goal represents a savings goal.
type Goal struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Target   decimal.Decimal `json:"target"`
	Saved    decimal.Decimal `json:"saved"`
	Deadline *time.Time      `json:"deadline,omitempty"`
}

// Loan represents a loan with an EMI schedule.
type Loan struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Principal decimal.Decimal `json:"principal"`
	RatePct   decimal.Decimal `json:"rate_pct"`
	Months    int             `json:"months"`
}

// Investment represents a holding.
type Investment struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Units    decimal.Decimal `json:"units"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}
