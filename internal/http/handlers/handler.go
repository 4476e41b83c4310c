package handlers

import (
	"fintrack/internal/repository"
	"fintrack/internal/service"
	"fintrack/internal/ws"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Handler struct {
	DB           *pgxpool.Pool
	Transactions *service.TransactionService
	Feed         *ws.Hub
}

func NewHandler(db *pgxpool.Pool, feed *ws.Hub) *Handler {
	return &Handler{
		DB:           db,
		Transactions: service.NewTransactionService(repository.NewTransactionRepository(db)),
		Feed:         feed,
	}
}

// getUserID extracts the authenticated owner id set by the JWT middleware.
func getUserID(c interface{ Get(string) (any, bool) }) (int64, bool) {
	uidVal, ok := c.Get("user_id")
	if !ok {
		return 0, false
	}
	switch v := uidVal.(type) {
	case int64:
		return v, true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
