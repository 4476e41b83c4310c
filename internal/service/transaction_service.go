package service

import (
	"context"
	"errors"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
)

const maxCategoryLen = 255

// TransactionStore is the persistence contract the service runs against.
// Every method takes the owner id explicitly; implementations must scope
// every statement to it.
type TransactionStore interface {
	Create(ctx context.Context, tx *domain.Transaction) error
	Find(ctx context.Context, ownerID, id int64) (*domain.Transaction, error)
	List(ctx context.Context, ownerID int64, f domain.TransactionFilter) ([]*domain.Transaction, error)
	Update(ctx context.Context, ownerID, id int64, u domain.TransactionUpdate) (*domain.Transaction, error)
	Delete(ctx context.Context, ownerID, id int64) error
	SumByType(ctx context.Context, ownerID int64, txType domain.TransactionType, dates *domain.DateRange) (int64, error)
	SumByCategory(ctx context.Context, ownerID int64, txType domain.TransactionType) ([]domain.CategoryTotal, error)
}

// TransactionService validates untrusted input and orchestrates the store.
type TransactionService struct {
	store TransactionStore
}

func NewTransactionService(store TransactionStore) *TransactionService {
	return &TransactionService{store: store}
}

type CreateTransactionInput struct {
	Type            string  `json:"type"`
	Amount          int64   `json:"amount"`
	Category        string  `json:"category"`
	Description     *string `json:"description"`
	TransactionDate string  `json:"transaction_date"`
}

// UpdateTransactionInput is a PATCH body. Description is an OptionalString
// because "description": null means "clear it", which a plain pointer cannot
// tell apart from the key being absent.
type UpdateTransactionInput struct {
	Type            *string               `json:"type"`
	Amount          *int64                `json:"amount"`
	Category        *string               `json:"category"`
	Description     domain.OptionalString `json:"description"`
	TransactionDate *string               `json:"transaction_date"`
}

// ListTransactionsInput carries raw query filters. The date range is only
// applied when both bounds are present; a single bound is ignored entirely.
type ListTransactionsInput struct {
	StartDate string
	EndDate   string
	Type      string
	Category  string
}

// List returns the owner's transactions, newest first.
func (s *TransactionService) List(ctx context.Context, ownerID int64, in ListTransactionsInput) ([]*domain.Transaction, error) {
	filter := domain.TransactionFilter{Category: in.Category}

	dates, err := parseDateRange(in.StartDate, in.EndDate)
	if err != nil {
		return nil, err
	}
	filter.Dates = dates

	if in.Type != "" {
		t := domain.TransactionType(in.Type)
		filter.Type = &t
	}

	return s.store.List(ctx, ownerID, filter)
}

// Create validates the input and persists a new transaction.
func (s *TransactionService) Create(ctx context.Context, ownerID int64, in CreateTransactionInput) (*domain.Transaction, error) {
	fe := fieldErrors{}

	txType := domain.TransactionType(in.Type)
	if !txType.Valid() {
		fe.add("type", "must be either income or expense")
	}
	validateAmount(fe, in.Amount)
	validateCategory(fe, in.Category)

	var txDate domain.Date
	if in.TransactionDate == "" {
		fe.add("transaction_date", "is required")
	} else {
		d, err := domain.ParseDate(in.TransactionDate)
		if err != nil {
			fe.add("transaction_date", "must be a valid date (YYYY-MM-DD)")
		} else {
			txDate = d
		}
	}

	if err := fe.err(); err != nil {
		return nil, err
	}

	tx := &domain.Transaction{
		OwnerID:         ownerID,
		Type:            txType,
		Amount:          in.Amount,
		Category:        in.Category,
		Description:     in.Description,
		TransactionDate: txDate,
	}
	if err := s.store.Create(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Get returns one transaction owned by ownerID.
func (s *TransactionService) Get(ctx context.Context, ownerID, id int64) (*domain.Transaction, error) {
	tx, err := s.store.Find(ctx, ownerID, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return tx, nil
}

// Update applies the supplied fields after validating each one. Omitted
// fields keep their stored value; an explicit null description clears it.
func (s *TransactionService) Update(ctx context.Context, ownerID, id int64, in UpdateTransactionInput) (*domain.Transaction, error) {
	fe := fieldErrors{}
	u := domain.TransactionUpdate{Description: in.Description}

	if in.Type != nil {
		t := domain.TransactionType(*in.Type)
		if !t.Valid() {
			fe.add("type", "must be either income or expense")
		} else {
			u.Type = &t
		}
	}
	if in.Amount != nil {
		validateAmount(fe, *in.Amount)
		u.Amount = in.Amount
	}
	if in.Category != nil {
		validateCategory(fe, *in.Category)
		u.Category = in.Category
	}
	if in.TransactionDate != nil {
		d, err := domain.ParseDate(*in.TransactionDate)
		if err != nil {
			fe.add("transaction_date", "must be a valid date (YYYY-MM-DD)")
		} else {
			u.TransactionDate = &d
		}
	}

	if err := fe.err(); err != nil {
		return nil, err
	}

	tx, err := s.store.Update(ctx, ownerID, id, u)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return tx, nil
}

// Delete removes one transaction owned by ownerID.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id int64) error {
	if err := s.store.Delete(ctx, ownerID, id); err != nil {
		return mapStoreErr(err)
	}
	return nil
}

// Summary computes the owner's aggregate view. The date range, when both
// bounds are supplied, applies to the income/expense totals and the net
// balance. The category breakdowns always cover the full history; changing
// that would silently change every existing dashboard, so both sides are
// pinned by tests.
func (s *TransactionService) Summary(ctx context.Context, ownerID int64, startDate, endDate string) (*domain.Summary, error) {
	dates, err := parseDateRange(startDate, endDate)
	if err != nil {
		return nil, err
	}

	totalIncome, err := s.store.SumByType(ctx, ownerID, domain.TypeIncome, dates)
	if err != nil {
		return nil, err
	}
	totalExpense, err := s.store.SumByType(ctx, ownerID, domain.TypeExpense, dates)
	if err != nil {
		return nil, err
	}

	expenseByCategory, err := s.store.SumByCategory(ctx, ownerID, domain.TypeExpense)
	if err != nil {
		return nil, err
	}
	incomeByCategory, err := s.store.SumByCategory(ctx, ownerID, domain.TypeIncome)
	if err != nil {
		return nil, err
	}

	return &domain.Summary{
		TotalIncome:       totalIncome,
		TotalExpense:      totalExpense,
		NetBalance:        totalIncome - totalExpense,
		ExpenseByCategory: expenseByCategory,
		IncomeByCategory:  incomeByCategory,
	}, nil
}

// parseDateRange turns raw query bounds into a range. Only a complete pair
// is honored; malformed bounds in a complete pair are a validation error.
func parseDateRange(startDate, endDate string) (*domain.DateRange, error) {
	if startDate == "" || endDate == "" {
		return nil, nil
	}

	fe := fieldErrors{}
	start, err := domain.ParseDate(startDate)
	if err != nil {
		fe.add("start_date", "must be a valid date (YYYY-MM-DD)")
	}
	end, err := domain.ParseDate(endDate)
	if err != nil {
		fe.add("end_date", "must be a valid date (YYYY-MM-DD)")
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	return &domain.DateRange{Start: start, End: end}, nil
}

func validateAmount(fe fieldErrors, amount int64) {
	if amount < 1 {
		fe.add("amount", "must be an integer of at least 1")
	}
}

func validateCategory(fe fieldErrors, category string) {
	if category == "" {
		fe.add("category", "is required")
	} else if len(category) > maxCategoryLen {
		fe.add("category", "must be at most 255 characters")
	}
}

func mapStoreErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
