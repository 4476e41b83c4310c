package domain

import "time"

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TypeIncome  TransactionType = "income"
	TypeExpense TransactionType = "expense"
)

// Valid reports whether t is one of the two known types.
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

type Transaction struct {
	ID              int64           `db:"id" json:"id"`
	OwnerID         int64           `db:"owner_id" json:"owner_id"`
	Type            TransactionType `db:"type" json:"type"`
	Amount          int64           `db:"amount" json:"amount"`
	Category        string          `db:"category" json:"category"`
	Description     *string         `db:"description" json:"description,omitempty"`
	TransactionDate Date            `db:"transaction_date" json:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// DateRange is an inclusive calendar-date interval.
type DateRange struct {
	Start Date
	End   Date
}

// TransactionFilter narrows a list query. Nil fields are not applied.
// Dates is only honored as a pair; callers must not set a half-open range.
type TransactionFilter struct {
	Dates    *DateRange
	Type     *TransactionType
	Category string // substring match, case-insensitive; empty means no filter
}

// TransactionUpdate carries a partial update. A nil field means "leave
// unchanged". Description is an OptionalString so an explicit null in the
// payload clears the column instead of being dropped.
type TransactionUpdate struct {
	Type            *TransactionType
	Amount          *int64
	Category        *string
	Description     OptionalString
	TransactionDate *Date
}

// IsZero reports whether the update carries no fields at all.
func (u TransactionUpdate) IsZero() bool {
	return u.Type == nil && u.Amount == nil && u.Category == nil &&
		!u.Description.Set && u.TransactionDate == nil
}

// CategoryTotal is one row of a per-category aggregation.
type CategoryTotal struct {
	Category string `json:"category"`
	Total    int64  `json:"total"`
}

// Summary is the aggregate view over an owner's ledger. The date range, when
// present, bounds the three totals; the category breakdowns always cover the
// owner's full history.
type Summary struct {
	TotalIncome       int64           `json:"total_income"`
	TotalExpense      int64           `json:"total_expense"`
	NetBalance        int64           `json:"net_balance"`
	ExpenseByCategory []CategoryTotal `json:"expense_by_category"`
	IncomeByCategory  []CategoryTotal `json:"income_by_category"`
}
