package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"fintrack/internal/domain"
	"fintrack/internal/repository"
	"fintrack/internal/service"
	"fintrack/internal/ws"

	"github.com/gin-gonic/gin"
)

// ---- fake store ----

type fakeStore struct {
	transactions map[int64]*domain.Transaction
	nextID       int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[int64]*domain.Transaction), nextID: 1}
}

func (f *fakeStore) Create(_ context.Context, tx *domain.Transaction) error {
	tx.ID = f.nextID
	f.nextID++
	tx.CreatedAt = time.Now()
	cp := *tx
	f.transactions[tx.ID] = &cp
	return nil
}

func (f *fakeStore) Find(_ context.Context, ownerID, id int64) (*domain.Transaction, error) {
	tx, ok := f.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeStore) List(_ context.Context, ownerID int64, _ domain.TransactionFilter) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for _, tx := range f.transactions {
		if tx.OwnerID == ownerID {
			cp := *tx
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeStore) Update(_ context.Context, ownerID, id int64, u domain.TransactionUpdate) (*domain.Transaction, error) {
	tx, ok := f.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return nil, repository.ErrNotFound
	}
	if u.Type != nil {
		tx.Type = *u.Type
	}
	if u.Amount != nil {
		tx.Amount = *u.Amount
	}
	if u.Category != nil {
		tx.Category = *u.Category
	}
	if u.Description.Set {
		tx.Description = u.Description.Value
	}
	if u.TransactionDate != nil {
		tx.TransactionDate = *u.TransactionDate
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, ownerID, id int64) error {
	tx, ok := f.transactions[id]
	if !ok || tx.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeStore) SumByType(_ context.Context, ownerID int64, txType domain.TransactionType, _ *domain.DateRange) (int64, error) {
	var total int64
	for _, tx := range f.transactions {
		if tx.OwnerID == ownerID && tx.Type == txType {
			total += tx.Amount
		}
	}
	return total, nil
}

func (f *fakeStore) SumByCategory(_ context.Context, ownerID int64, txType domain.TransactionType) ([]domain.CategoryTotal, error) {
	totals := make(map[string]int64)
	for _, tx := range f.transactions {
		if tx.OwnerID == ownerID && tx.Type == txType {
			totals[tx.Category] += tx.Amount
		}
	}
	result := []domain.CategoryTotal{}
	for category, total := range totals {
		result = append(result, domain.CategoryTotal{Category: category, Total: total})
	}
	return result, nil
}

// ---- helpers ----

func fakeAuth(ownerID int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", ownerID)
		c.Next()
	}
}

func newTestRouter(store service.TransactionStore, ownerID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{
		Transactions: service.NewTransactionService(store),
		Feed:         ws.NewHub(),
	}

	tx := r.Group("/transactions")
	tx.Use(fakeAuth(ownerID))
	tx.GET("", h.ListTransactions)
	tx.POST("", h.CreateTransaction)
	tx.GET("/summary", h.Summary)
	tx.GET("/:id", h.GetTransaction)
	tx.PATCH("/:id", h.UpdateTransaction)
	tx.DELETE("/:id", h.DeleteTransaction)
	return r
}

func doRequest(router *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createOne(t *testing.T, router *gin.Engine, body map[string]any) map[string]any {
	t.Helper()
	w := doRequest(router, http.MethodPost, "/transactions", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Transaction map[string]any `json:"transaction"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Transaction
}

// ---- tests ----

func TestCreateTransaction_Created(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	tx := createOne(t, router, map[string]any{
		"type":             "income",
		"amount":           100,
		"category":         "salary",
		"transaction_date": "2024-01-10",
	})
	if tx["type"] != "income" {
		t.Errorf("expected type income, got %v", tx["type"])
	}
	if tx["transaction_date"] != "2024-01-10" {
		t.Errorf("expected date-only encoding, got %v", tx["transaction_date"])
	}
}

func TestCreateTransaction_ValidationFields(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	w := doRequest(router, http.MethodPost, "/transactions", map[string]any{
		"type":             "bogus",
		"amount":           0,
		"category":         "",
		"transaction_date": "2024-01-10",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}

	var resp struct {
		Fields map[string]string `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	for _, want := range []string{"type", "amount", "category"} {
		if _, ok := resp.Fields[want]; !ok {
			t.Errorf("expected %q in fields, got %v", want, resp.Fields)
		}
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	w := doRequest(router, http.MethodGet, "/transactions/99", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetTransaction_NonNumericID(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	w := doRequest(router, http.MethodGet, "/transactions/abc", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for non-numeric id, got %d", w.Code)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	store := newFakeStore()
	ownerA := newTestRouter(store, 1)
	ownerB := newTestRouter(store, 2)

	created := createOne(t, ownerA, map[string]any{
		"type":             "expense",
		"amount":           50,
		"category":         "food",
		"transaction_date": "2024-01-05",
	})
	id := int64(created["id"].(float64))
	url := "/transactions/" + strconv.FormatInt(id, 10)

	if w := doRequest(ownerB, http.MethodGet, url, nil); w.Code != http.StatusNotFound {
		t.Errorf("get as other owner: expected 404, got %d", w.Code)
	}
	if w := doRequest(ownerB, http.MethodPatch, url, map[string]any{"amount": 1}); w.Code != http.StatusNotFound {
		t.Errorf("update as other owner: expected 404, got %d", w.Code)
	}
	if w := doRequest(ownerB, http.MethodDelete, url, nil); w.Code != http.StatusNotFound {
		t.Errorf("delete as other owner: expected 404, got %d", w.Code)
	}
	if w := doRequest(ownerA, http.MethodGet, url, nil); w.Code != http.StatusOK {
		t.Errorf("owner still sees own record: expected 200, got %d", w.Code)
	}
}

func TestUpdateTransaction_Partial(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	created := createOne(t, router, map[string]any{
		"type":             "expense",
		"amount":           80,
		"category":         "food",
		"transaction_date": "2024-01-05",
	})
	id := int64(created["id"].(float64))

	w := doRequest(router, http.MethodPatch, "/transactions/"+strconv.FormatInt(id, 10), map[string]any{
		"category": "groceries",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Transaction map[string]any `json:"transaction"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transaction["category"] != "groceries" {
		t.Errorf("expected updated category, got %v", resp.Transaction["category"])
	}
	if resp.Transaction["amount"] != float64(80) || resp.Transaction["type"] != "expense" {
		t.Errorf("untouched fields changed: %v", resp.Transaction)
	}
	if resp.Transaction["transaction_date"] != "2024-01-05" {
		t.Errorf("transaction_date changed: %v", resp.Transaction["transaction_date"])
	}
}

func TestUpdateTransaction_DescriptionNullClears(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	created := createOne(t, router, map[string]any{
		"type":             "expense",
		"amount":           80,
		"category":         "food",
		"description":      "team lunch",
		"transaction_date": "2024-01-05",
	})
	id := int64(created["id"].(float64))
	url := "/transactions/" + strconv.FormatInt(id, 10)

	// a patch that leaves description out must not touch it
	w := doRequest(router, http.MethodPatch, url, map[string]any{"amount": 90})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Transaction map[string]any `json:"transaction"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Transaction["description"] != "team lunch" {
		t.Fatalf("omitted description changed: %v", resp.Transaction["description"])
	}

	// an explicit null clears it
	w = doRequest(router, http.MethodPatch, url, map[string]any{"description": nil})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp.Transaction = nil
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, present := resp.Transaction["description"]; present {
		t.Errorf("description should be cleared, got %v", resp.Transaction["description"])
	}
}

func TestDeleteThenGet(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	created := createOne(t, router, map[string]any{
		"type":             "income",
		"amount":           10,
		"category":         "misc",
		"transaction_date": "2024-01-01",
	})
	id := int64(created["id"].(float64))
	url := "/transactions/" + strconv.FormatInt(id, 10)

	if w := doRequest(router, http.MethodDelete, url, nil); w.Code != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", w.Code)
	}
	if w := doRequest(router, http.MethodGet, url, nil); w.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", w.Code)
	}
}

func TestListTransactions_EmptyIsArray(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	w := doRequest(router, http.MethodGet, "/transactions", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("expected empty JSON array, got %s", got)
	}
}

func TestListTransactions_MalformedDates(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	w := doRequest(router, http.MethodGet, "/transactions?start_date=nope&end_date=2024-01-31", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestSummary_Computed(t *testing.T) {
	router := newTestRouter(newFakeStore(), 1)

	for _, body := range []map[string]any{
		{"type": "income", "amount": 100, "category": "salary", "transaction_date": "2024-01-01"},
		{"type": "income", "amount": 200, "category": "bonus", "transaction_date": "2024-01-02"},
		{"type": "expense", "amount": 50, "category": "food", "transaction_date": "2024-01-03"},
	} {
		createOne(t, router, body)
	}

	w := doRequest(router, http.MethodGet, "/transactions/summary", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var summary domain.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalIncome != 300 || summary.TotalExpense != 50 || summary.NetBalance != 250 {
		t.Errorf("got totals %d/%d/%d, want 300/50/250",
			summary.TotalIncome, summary.TotalExpense, summary.NetBalance)
	}
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := &Handler{
		Transactions: service.NewTransactionService(newFakeStore()),
		Feed:         ws.NewHub(),
	}
	// no auth middleware: the context carries no user_id
	r.GET("/transactions", h.ListTransactions)

	w := doRequest(r, http.MethodGet, "/transactions", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}
