package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confetex/api/internal/accounting/handler"
	"github.com/confetex/api/internal/auth"
	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/middleware"
)

const testJWTSecret = "test-secret"

// --- Mock Cashbox Store ---

type mockCashboxStore struct {
	transactions []database.CashTransaction
	nextNumber   int32
	summaries    []database.CashBoxSummaryRow
}

func newMockCashboxStore() *mockCashboxStore {
	return &mockCashboxStore{nextNumber: 1}
}

func (m *mockCashboxStore) GetNextCashTransactionNumber(ctx context.Context, schoolID uuid.UUID) (int32, error) {
	return m.nextNumber, nil
}

func (m *mockCashboxStore) CreateCashTransaction(ctx context.Context, arg database.CreateCashTransactionParams) (database.CashTransaction, error) {
	tx := database.CashTransaction{
		ID:           uuid.New(),
		SchoolID:     arg.SchoolID,
		Box:          arg.Box,
		Kind:         arg.Kind,
		Code:         arg.Code,
		Concept:      arg.Concept,
		Amount:       arg.Amount,
		EntryDate:    arg.EntryDate,
		OrderID:      arg.OrderID,
		AlterationID: arg.AlterationID,
		CreatedBy:    arg.CreatedBy,
		CreatedAt:    time.Now(),
	}
	m.transactions = append(m.transactions, tx)
	m.nextNumber++
	return tx, nil
}

func (m *mockCashboxStore) ListCashTransactions(ctx context.Context, arg database.ListCashTransactionsParams) ([]database.CashTransaction, error) {
	var out []database.CashTransaction
	for _, tx := range m.transactions {
		if tx.SchoolID != arg.SchoolID {
			continue
		}
		if arg.Box.Valid && tx.Box != arg.Box.String {
			continue
		}
		if arg.Kind.Valid && tx.Kind != arg.Kind.String {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockCashboxStore) SummarizeCashBoxes(ctx context.Context, schoolID uuid.UUID) ([]database.CashBoxSummaryRow, error) {
	return m.summaries, nil
}

// --- Helper functions ---

func setupCashboxRouter(store handler.CashboxStore) *chi.Mux {
	h := handler.NewCashboxHandler(store)
	r := chi.NewRouter()
	r.Route("/schools/{sid}/accounting", func(r chi.Router) {
		r.Use(middleware.Authenticate(testJWTSecret))
		h.RegisterRoutes(r)
	})
	return r
}

func doCashboxRequest(t *testing.T, router *chi.Mux, method, path string, body interface{}, userID, schoolID uuid.UUID, role string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	token, err := auth.GenerateToken(testJWTSecret, userID, schoolID, role)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func makeNumeric(t *testing.T, s string) pgtype.Numeric {
	t.Helper()
	var n pgtype.Numeric
	if err := n.Scan(s); err != nil {
		t.Fatalf("failed to scan numeric %q: %v", s, err)
	}
	return n
}

// --- Tests ---

func TestCreateCashTransaction(t *testing.T) {
	store := newMockCashboxStore()
	router := setupCashboxRouter(store)
	userID := uuid.New()
	schoolID := uuid.New()

	body := map[string]string{
		"box":        "caja_menor",
		"kind":       "expense",
		"concept":    "Compra de hilos",
		"amount":     "35000.00",
		"entry_date": "2026-08-20",
	}
	rec := doCashboxRequest(t, router, "POST", fmt.Sprintf("/schools/%s/accounting/transactions", schoolID), body, userID, schoolID, "admin")

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if resp["code"] != "TRX-0001" {
		t.Errorf("expected code 'TRX-0001', got %v", resp["code"])
	}
	if resp["amount"] != "35000.00" {
		t.Errorf("expected amount '35000.00', got %v", resp["amount"])
	}
	if resp["entry_date"] != "2026-08-20" {
		t.Errorf("expected entry_date '2026-08-20', got %v", resp["entry_date"])
	}
	if len(store.transactions) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(store.transactions))
	}
	if store.transactions[0].CreatedBy != userID {
		t.Errorf("expected created_by %s, got %s", userID, store.transactions[0].CreatedBy)
	}
}

func TestCreateCashTransaction_Invalid(t *testing.T) {
	store := newMockCashboxStore()
	router := setupCashboxRouter(store)
	userID := uuid.New()
	schoolID := uuid.New()

	cases := []struct {
		name string
		body map[string]string
	}{
		{"unknown box", map[string]string{"box": "caja_grande", "kind": "income", "concept": "x", "amount": "100"}},
		{"unknown kind", map[string]string{"box": "caja_menor", "kind": "transfer", "concept": "x", "amount": "100"}},
		{"missing concept", map[string]string{"box": "caja_menor", "kind": "income", "amount": "100"}},
		{"zero amount", map[string]string{"box": "caja_menor", "kind": "income", "concept": "x", "amount": "0"}},
		{"negative amount", map[string]string{"box": "caja_menor", "kind": "income", "concept": "x", "amount": "-5"}},
		{"bad date", map[string]string{"box": "caja_menor", "kind": "income", "concept": "x", "amount": "100", "entry_date": "20/08/2026"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doCashboxRequest(t, router, "POST", fmt.Sprintf("/schools/%s/accounting/transactions", schoolID), tc.body, userID, schoolID, "admin")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			var resp map[string]interface{}
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}
			if _, ok := resp["detail"]; !ok {
				t.Errorf("expected detail field in error response, got %s", rec.Body.String())
			}
		})
	}

	if len(store.transactions) != 0 {
		t.Errorf("expected no stored transactions, got %d", len(store.transactions))
	}
}

func TestListCashTransactions_Filters(t *testing.T) {
	store := newMockCashboxStore()
	router := setupCashboxRouter(store)
	userID := uuid.New()
	schoolID := uuid.New()

	store.transactions = []database.CashTransaction{
		{
			ID:        uuid.New(),
			SchoolID:  schoolID,
			Box:       "caja_menor",
			Kind:      "expense",
			Code:      "TRX-0001",
			Concept:   "Papelería",
			Amount:    makeNumeric(t, "12000.00"),
			CreatedBy: userID,
		},
		{
			ID:        uuid.New(),
			SchoolID:  schoolID,
			Box:       "caja_mayor",
			Kind:      "income",
			Code:      "TRX-0002",
			Concept:   "Venta mostrador",
			Amount:    makeNumeric(t, "80000.00"),
			CreatedBy: userID,
		},
	}

	rec := doCashboxRequest(t, router, "GET", fmt.Sprintf("/schools/%s/accounting/transactions?box=caja_mayor", schoolID), nil, userID, schoolID, "admin")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(resp))
	}
	if resp[0]["code"] != "TRX-0002" {
		t.Errorf("expected code 'TRX-0002', got %v", resp[0]["code"])
	}

	rec = doCashboxRequest(t, router, "GET", fmt.Sprintf("/schools/%s/accounting/transactions?box=bolsillo", schoolID), nil, userID, schoolID, "admin")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unknown box, got %d", rec.Code)
	}
}

func TestCashBoxSummary(t *testing.T) {
	store := newMockCashboxStore()
	router := setupCashboxRouter(store)
	userID := uuid.New()
	schoolID := uuid.New()

	store.summaries = []database.CashBoxSummaryRow{
		{Box: "caja_mayor", Income: makeNumeric(t, "500000.00"), Expense: makeNumeric(t, "120000.00")},
		{Box: "caja_menor", Income: makeNumeric(t, "0.00"), Expense: makeNumeric(t, "45000.00")},
	}

	rec := doCashboxRequest(t, router, "GET", fmt.Sprintf("/schools/%s/accounting/summary", schoolID), nil, userID, schoolID, "owner")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp []map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("expected 2 box summaries, got %d", len(resp))
	}
	if resp[0]["balance"] != "380000.00" {
		t.Errorf("expected caja_mayor balance '380000.00', got %v", resp[0]["balance"])
	}
	if resp[1]["balance"] != "-45000.00" {
		t.Errorf("expected caja_menor balance '-45000.00', got %v", resp[1]["balance"])
	}
}
