package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"fintrack/internal/domain"
	"fintrack/internal/service"
	"fintrack/internal/ws"

	"github.com/gin-gonic/gin"
)

// ListTransactions returns the owner's transactions, newest first. Query
// params: start_date, end_date (honored only as a pair), type, category.
func (h *Handler) ListTransactions(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	in := service.ListTransactionsInput{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Type:      c.Query("type"),
		Category:  c.Query("category"),
	}

	transactions, err := h.Transactions.List(c.Request.Context(), ownerID, in)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters", "fields": ve.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}

	if transactions == nil {
		transactions = []*domain.Transaction{}
	}
	c.JSON(http.StatusOK, transactions)
}

// CreateTransaction records a new ledger entry.
func (h *Handler) CreateTransaction(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	var in service.CreateTransactionInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	tx, err := h.Transactions.Create(c.Request.Context(), ownerID, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Feed.Publish(ownerID, ws.Event{Type: ws.EventCreated, Transaction: tx})

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Transaction created successfully",
		"transaction": tx,
	})
}

// GetTransaction returns a single owned transaction.
func (h *Handler) GetTransaction(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	tx, err := h.Transactions.Get(c.Request.Context(), ownerID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, tx)
}

// UpdateTransaction applies a partial update to an owned transaction.
func (h *Handler) UpdateTransaction(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	var in service.UpdateTransactionInput
	if err := c.BindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
		return
	}

	tx, err := h.Transactions.Update(c.Request.Context(), ownerID, id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.Feed.Publish(ownerID, ws.Event{Type: ws.EventUpdated, Transaction: tx})

	c.JSON(http.StatusOK, gin.H{
		"message":     "Transaction updated successfully",
		"transaction": tx,
	})
}

// DeleteTransaction removes an owned transaction.
func (h *Handler) DeleteTransaction(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.Transactions.Delete(c.Request.Context(), ownerID, id); err != nil {
		respondServiceError(c, err)
		return
	}

	h.Feed.Publish(ownerID, ws.Event{Type: ws.EventDeleted, ID: id})

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}

// Summary returns the owner's aggregate totals and category breakdowns.
// start_date/end_date bound the totals only.
func (h *Handler) Summary(c *gin.Context) {
	ownerID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}

	summary, err := h.Transactions.Summary(c.Request.Context(), ownerID, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filters", "fields": ve.Fields})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// parseID reads the :id path param. A non-numeric id responds exactly like a
// missing record so probing ids stays uninformative.
func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
		return 0, false
	}
	return id, true
}

func respondServiceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "transaction not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
	}
}
