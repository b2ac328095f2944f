package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/handler"
	"github.com/confetex/api/internal/middleware"
	"github.com/confetex/api/internal/status"
)

type mockAlterationStore struct {
	getNextAlterationNumberFn  func(ctx context.Context) (int32, error)
	createAlterationFn         func(ctx context.Context, arg database.CreateAlterationParams) (database.Alteration, error)
	getAlterationFn            func(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	getAlterationForUpdateFn   func(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	listAlterationsFn          func(ctx context.Context, arg database.ListAlterationsParams) ([]database.Alteration, error)
	updateAlterationFn         func(ctx context.Context, arg database.UpdateAlterationParams) (database.Alteration, error)
	updateAlterationStatusFn   func(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error)
	cancelAlterationFn         func(ctx context.Context, id uuid.UUID) (database.Alteration, error)
	createAlterationPaymentFn  func(ctx context.Context, arg database.CreateAlterationPaymentParams) (database.AlterationPayment, error)
	listPaymentsByAlterationFn func(ctx context.Context, alterationID uuid.UUID) ([]database.AlterationPayment, error)
	sumPaymentsByAlterationFn  func(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error)
}

func (m *mockAlterationStore) GetNextAlterationNumber(ctx context.Context) (int32, error) {
	if m.getNextAlterationNumberFn != nil {
		return m.getNextAlterationNumberFn(ctx)
	}
	return 1, nil
}

func (m *mockAlterationStore) CreateAlteration(ctx context.Context, arg database.CreateAlterationParams) (database.Alteration, error) {
	if m.createAlterationFn != nil {
		return m.createAlterationFn(ctx, arg)
	}
	now := time.Now()
	return database.Alteration{
		ID:                uuid.New(),
		Code:              arg.Code,
		ClientID:          arg.ClientID,
		ClientName:        arg.ClientName,
		ClientPhone:       arg.ClientPhone,
		Garment:           arg.Garment,
		Description:       arg.Description,
		Cost:              arg.Cost,
		Status:            status.AlterationReceived,
		ReceivedDate:      arg.ReceivedDate,
		EstimatedDelivery: arg.EstimatedDelivery,
		CreatedBy:         arg.CreatedBy,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

func (m *mockAlterationStore) GetAlteration(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
	if m.getAlterationFn != nil {
		return m.getAlterationFn(ctx, id)
	}
	return database.Alteration{}, pgx.ErrNoRows
}

func (m *mockAlterationStore) GetAlterationForUpdate(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
	if m.getAlterationForUpdateFn != nil {
		return m.getAlterationForUpdateFn(ctx, id)
	}
	return database.Alteration{}, pgx.ErrNoRows
}

func (m *mockAlterationStore) ListAlterations(ctx context.Context, arg database.ListAlterationsParams) ([]database.Alteration, error) {
	if m.listAlterationsFn != nil {
		return m.listAlterationsFn(ctx, arg)
	}
	return []database.Alteration{}, nil
}

func (m *mockAlterationStore) UpdateAlteration(ctx context.Context, arg database.UpdateAlterationParams) (database.Alteration, error) {
	if m.updateAlterationFn != nil {
		return m.updateAlterationFn(ctx, arg)
	}
	return database.Alteration{}, pgx.ErrNoRows
}

func (m *mockAlterationStore) UpdateAlterationStatus(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error) {
	if m.updateAlterationStatusFn != nil {
		return m.updateAlterationStatusFn(ctx, arg)
	}
	return database.Alteration{}, pgx.ErrNoRows
}

func (m *mockAlterationStore) CancelAlteration(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
	if m.cancelAlterationFn != nil {
		return m.cancelAlterationFn(ctx, id)
	}
	return database.Alteration{}, pgx.ErrNoRows
}

func (m *mockAlterationStore) CreateAlterationPayment(ctx context.Context, arg database.CreateAlterationPaymentParams) (database.AlterationPayment, error) {
	if m.createAlterationPaymentFn != nil {
		return m.createAlterationPaymentFn(ctx, arg)
	}
	return database.AlterationPayment{
		ID:           uuid.New(),
		AlterationID: arg.AlterationID,
		Method:       arg.Method,
		Amount:       arg.Amount,
		RecordedBy:   arg.RecordedBy,
		RecordedAt:   time.Now(),
	}, nil
}

func (m *mockAlterationStore) ListPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) ([]database.AlterationPayment, error) {
	if m.listPaymentsByAlterationFn != nil {
		return m.listPaymentsByAlterationFn(ctx, alterationID)
	}
	return []database.AlterationPayment{}, nil
}

func (m *mockAlterationStore) SumPaymentsByAlteration(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
	if m.sumPaymentsByAlterationFn != nil {
		return m.sumPaymentsByAlterationFn(ctx, alterationID)
	}
	return testNumeric("0.00"), nil
}

func setupAlterationRouter(store *mockAlterationStore) chi.Router {
	h := handler.NewAlterationHandler(store, &mockPool{}, func(db database.DBTX) handler.AlterationStore {
		return store
	})
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/global/alterations", h.RegisterRoutes)
	return r
}

func testAlteration(st status.AlterationStatus) database.Alteration {
	now := time.Now()
	return database.Alteration{
		ID:           uuid.New(),
		Code:         "ARR-0001",
		ClientName:   pgtype.Text{String: "Carlos Ruiz", Valid: true},
		ClientPhone:  pgtype.Text{String: "3001234567", Valid: true},
		Garment:      "Pantalón de sudadera",
		Description:  pgtype.Text{String: "Ajustar bota", Valid: true},
		Cost:         testNumeric("25000.00"),
		Status:       st,
		ReceivedDate: pgtype.Date{Time: now, Valid: true},
		CreatedBy:    uuid.New(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// --- Tests ---

func TestAlterationCreate_HappyPath(t *testing.T) {
	store := &mockAlterationStore{
		getNextAlterationNumberFn: func(ctx context.Context) (int32, error) {
			return 12, nil
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]interface{}{
		"client_name":  "Carlos Ruiz",
		"client_phone": "3001234567",
		"garment":      "Pantalón de sudadera",
		"description":  "Ajustar bota",
		"cost":         "25000.00",
	}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["code"] != "ARR-0012" {
		t.Errorf("expected code ARR-0012, got %v", resp["code"])
	}
	if resp["status"] != "received" {
		t.Errorf("expected status received, got %v", resp["status"])
	}
	if resp["paid_amount"] != "0.00" {
		t.Errorf("expected paid_amount 0.00, got %v", resp["paid_amount"])
	}
	if resp["balance"] != "25000.00" {
		t.Errorf("expected balance 25000.00, got %v", resp["balance"])
	}
	if resp["next_status"] != "in_progress" {
		t.Errorf("expected next_status in_progress, got %v", resp["next_status"])
	}
}

func TestAlterationCreate_CodeRetryOnCollision(t *testing.T) {
	calls := 0
	store := &mockAlterationStore{
		getNextAlterationNumberFn: func(ctx context.Context) (int32, error) {
			calls++
			return int32(calls), nil
		},
	}
	collided := false
	store.createAlterationFn = func(ctx context.Context, arg database.CreateAlterationParams) (database.Alteration, error) {
		if !collided {
			collided = true
			return database.Alteration{}, &pgconn.PgError{Code: "23505"}
		}
		a := testAlteration(status.AlterationReceived)
		a.Code = arg.Code
		return a, nil
	}
	router := setupAlterationRouter(store)

	body := map[string]interface{}{"client_name": "Carlos Ruiz", "garment": "Camisa", "cost": "10000"}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 after retry, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["code"] != "ARR-0002" {
		t.Errorf("expected retried code ARR-0002, got %v", resp["code"])
	}
}

func TestAlterationCreate_Validation(t *testing.T) {
	store := &mockAlterationStore{}
	router := setupAlterationRouter(store)
	claims := testClaims(uuid.New(), "seller")

	cases := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing garment", map[string]interface{}{"client_name": "Carlos", "cost": "10000"}},
		{"both client modes", map[string]interface{}{"client_id": uuid.New().String(), "client_name": "Carlos", "garment": "Camisa", "cost": "10000"}},
		{"neither client mode", map[string]interface{}{"garment": "Camisa", "cost": "10000"}},
		{"negative cost", map[string]interface{}{"client_name": "Carlos", "garment": "Camisa", "cost": "-5000"}},
		{"garbage cost", map[string]interface{}{"client_name": "Carlos", "garment": "Camisa", "cost": "mucho"}},
		{"bad received date", map[string]interface{}{"client_name": "Carlos", "garment": "Camisa", "cost": "10000", "received_date": "15/08/2026"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations", tc.body, claims)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
			resp := decodeResponse(t, rr)
			if resp["detail"] == nil || resp["detail"] == "" {
				t.Error("expected a detail message")
			}
		})
	}
}

func TestAlterationGet_BalanceFromPayments(t *testing.T) {
	alteration := testAlteration(status.AlterationInProgress)
	store := &mockAlterationStore{
		getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		sumPaymentsByAlterationFn: func(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
			return testNumeric("10000.00"), nil
		},
	}
	router := setupAlterationRouter(store)

	rr := doAuthRequest(t, router, http.MethodGet, "/global/alterations/"+alteration.ID.String(), nil, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["paid_amount"] != "10000.00" {
		t.Errorf("expected paid_amount 10000.00, got %v", resp["paid_amount"])
	}
	if resp["balance"] != "15000.00" {
		t.Errorf("expected balance 15000.00, got %v", resp["balance"])
	}
	if resp["status_label"] != "En proceso" {
		t.Errorf("expected label En proceso, got %v", resp["status_label"])
	}
}

func TestAlterationUpdate_BlockedOnTerminal(t *testing.T) {
	for _, st := range []status.AlterationStatus{status.AlterationDelivered, status.AlterationCancelled} {
		alteration := testAlteration(st)
		store := &mockAlterationStore{
			getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
				return alteration, nil
			},
			updateAlterationFn: func(ctx context.Context, arg database.UpdateAlterationParams) (database.Alteration, error) {
				t.Errorf("terminal alteration %s must not be updated", st)
				return database.Alteration{}, nil
			},
		}
		router := setupAlterationRouter(store)

		body := map[string]interface{}{"garment": "Camisa", "cost": "30000"}
		rr := doAuthRequest(t, router, http.MethodPatch, "/global/alterations/"+alteration.ID.String(), body, testClaims(uuid.New(), "seller"))

		if rr.Code != http.StatusConflict {
			t.Errorf("status %s: expected 409, got %d", st, rr.Code)
		}
	}
}

func TestAlterationUpdateStatus_ForwardJump(t *testing.T) {
	alteration := testAlteration(status.AlterationReceived)
	store := &mockAlterationStore{
		getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		updateAlterationStatusFn: func(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error) {
			if arg.PrevStatus != status.AlterationReceived {
				t.Errorf("expected prev_status received, got %s", arg.PrevStatus)
			}
			updated := alteration
			updated.Status = arg.Status
			return updated, nil
		},
	}
	router := setupAlterationRouter(store)

	// received → ready skips in_progress; forward jumps are allowed.
	body := map[string]string{"status": "ready"}
	rr := doAuthRequest(t, router, http.MethodPatch, "/global/alterations/"+alteration.ID.String()+"/status", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != "ready" {
		t.Errorf("expected status ready, got %v", resp["status"])
	}
	if resp["status_label"] != "Listo" {
		t.Errorf("expected label Listo, got %v", resp["status_label"])
	}
}

func TestAlterationUpdateStatus_BackwardRejected(t *testing.T) {
	alteration := testAlteration(status.AlterationReady)
	store := &mockAlterationStore{
		getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		updateAlterationStatusFn: func(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error) {
			t.Error("backward transition must not reach the store")
			return database.Alteration{}, nil
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]string{"status": "received"}
	rr := doAuthRequest(t, router, http.MethodPatch, "/global/alterations/"+alteration.ID.String()+"/status", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAlterationUpdateStatus_TerminalRejected(t *testing.T) {
	for _, st := range []status.AlterationStatus{status.AlterationDelivered, status.AlterationCancelled} {
		alteration := testAlteration(st)
		store := &mockAlterationStore{
			getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
				return alteration, nil
			},
		}
		router := setupAlterationRouter(store)

		body := map[string]string{"status": "ready"}
		rr := doAuthRequest(t, router, http.MethodPatch, "/global/alterations/"+alteration.ID.String()+"/status", body, testClaims(uuid.New(), "seller"))

		if rr.Code != http.StatusConflict {
			t.Errorf("status %s: expected 409, got %d", st, rr.Code)
		}
	}
}

func TestAlterationUpdateStatus_LostRace(t *testing.T) {
	alteration := testAlteration(status.AlterationReceived)
	store := &mockAlterationStore{
		getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		updateAlterationStatusFn: func(ctx context.Context, arg database.UpdateAlterationStatusParams) (database.Alteration, error) {
			// Concurrent writer already moved the row past prev_status.
			return database.Alteration{}, pgx.ErrNoRows
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]string{"status": "in_progress"}
	rr := doAuthRequest(t, router, http.MethodPatch, "/global/alterations/"+alteration.ID.String()+"/status", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAlterationPayment_HappyPath(t *testing.T) {
	alteration := testAlteration(status.AlterationInProgress)
	claims := testClaims(uuid.New(), "seller")
	store := &mockAlterationStore{
		getAlterationForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		sumPaymentsByAlterationFn: func(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
			return testNumeric("5000.00"), nil
		},
		createAlterationPaymentFn: func(ctx context.Context, arg database.CreateAlterationPaymentParams) (database.AlterationPayment, error) {
			if arg.RecordedBy != claims.UserID {
				t.Errorf("expected recorded_by %s, got %s", claims.UserID, arg.RecordedBy)
			}
			return database.AlterationPayment{
				ID:           uuid.New(),
				AlterationID: arg.AlterationID,
				Method:       arg.Method,
				Amount:       arg.Amount,
				RecordedBy:   arg.RecordedBy,
				RecordedAt:   time.Now(),
			}, nil
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]string{"method": "cash", "amount": "10000"}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations/"+alteration.ID.String()+"/pay", body, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["paid_amount"] != "15000.00" {
		t.Errorf("expected paid_amount 15000.00, got %v", resp["paid_amount"])
	}
	if resp["balance"] != "10000.00" {
		t.Errorf("expected balance 10000.00, got %v", resp["balance"])
	}
	if resp["paid"] != false {
		t.Errorf("expected paid false, got %v", resp["paid"])
	}
}

func TestAlterationPayment_Overpayment(t *testing.T) {
	alteration := testAlteration(status.AlterationInProgress)
	store := &mockAlterationStore{
		getAlterationForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		sumPaymentsByAlterationFn: func(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
			return testNumeric("20000.00"), nil
		},
		createAlterationPaymentFn: func(ctx context.Context, arg database.CreateAlterationPaymentParams) (database.AlterationPayment, error) {
			t.Error("overpayment must not be persisted")
			return database.AlterationPayment{}, nil
		},
	}
	router := setupAlterationRouter(store)

	// Balance is 5000.00; one cent over must be refused.
	body := map[string]string{"method": "cash", "amount": "5000.01"}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations/"+alteration.ID.String()+"/pay", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	detail, _ := resp["detail"].(string)
	if !strings.Contains(detail, "no puede ser mayor") {
		t.Errorf("expected overpayment message, got %q", detail)
	}
	if !strings.Contains(detail, "5000.00") {
		t.Errorf("expected message to include remaining balance, got %q", detail)
	}
}

func TestAlterationPayment_ExactBalance(t *testing.T) {
	alteration := testAlteration(status.AlterationReady)
	store := &mockAlterationStore{
		getAlterationForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
		sumPaymentsByAlterationFn: func(ctx context.Context, alterationID uuid.UUID) (pgtype.Numeric, error) {
			return testNumeric("20000.00"), nil
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]string{"method": "transfer", "amount": "5000.00"}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations/"+alteration.ID.String()+"/pay", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["balance"] != "0.00" {
		t.Errorf("expected balance 0.00, got %v", resp["balance"])
	}
	if resp["paid"] != true {
		t.Errorf("expected paid true, got %v", resp["paid"])
	}
}

func TestAlterationPayment_CancelledRejected(t *testing.T) {
	alteration := testAlteration(status.AlterationCancelled)
	store := &mockAlterationStore{
		getAlterationForUpdateFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			return alteration, nil
		},
	}
	router := setupAlterationRouter(store)

	body := map[string]string{"method": "cash", "amount": "1000"}
	rr := doAuthRequest(t, router, http.MethodPost, "/global/alterations/"+alteration.ID.String()+"/pay", body, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestAlterationPayment_InvalidInput(t *testing.T) {
	store := &mockAlterationStore{}
	router := setupAlterationRouter(store)
	claims := testClaims(uuid.New(), "seller")
	path := "/global/alterations/" + uuid.New().String() + "/pay"

	cases := []struct {
		name string
		body map[string]string
	}{
		{"zero amount", map[string]string{"method": "cash", "amount": "0"}},
		{"negative amount", map[string]string{"method": "cash", "amount": "-100"}},
		{"garbage amount", map[string]string{"method": "cash", "amount": "plata"}},
		{"unknown method", map[string]string{"method": "cheque", "amount": "1000"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doAuthRequest(t, router, http.MethodPost, path, tc.body, claims)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
			}
		})
	}
}

func TestAlterationCancel_Found(t *testing.T) {
	alteration := testAlteration(status.AlterationInProgress)
	store := &mockAlterationStore{
		cancelAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
			cancelled := alteration
			cancelled.Status = status.AlterationCancelled
			return cancelled, nil
		},
	}
	router := setupAlterationRouter(store)

	rr := doAuthRequest(t, router, http.MethodDelete, "/global/alterations/"+alteration.ID.String(), nil, testClaims(uuid.New(), "seller"))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["status"] != "cancelled" {
		t.Errorf("expected status cancelled, got %v", resp["status"])
	}
}

func TestAlterationCancel_TerminalVsMissing(t *testing.T) {
	delivered := testAlteration(status.AlterationDelivered)

	t.Run("already terminal", func(t *testing.T) {
		store := &mockAlterationStore{
			cancelAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
				return database.Alteration{}, pgx.ErrNoRows
			},
			getAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
				return delivered, nil
			},
		}
		router := setupAlterationRouter(store)
		rr := doAuthRequest(t, router, http.MethodDelete, "/global/alterations/"+delivered.ID.String(), nil, testClaims(uuid.New(), "seller"))
		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		store := &mockAlterationStore{
			cancelAlterationFn: func(ctx context.Context, id uuid.UUID) (database.Alteration, error) {
				return database.Alteration{}, pgx.ErrNoRows
			},
		}
		router := setupAlterationRouter(store)
		rr := doAuthRequest(t, router, http.MethodDelete, "/global/alterations/"+uuid.New().String(), nil, testClaims(uuid.New(), "seller"))
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
		}
	})
}

func TestAlterationList_StatusFilter(t *testing.T) {
	store := &mockAlterationStore{
		listAlterationsFn: func(ctx context.Context, arg database.ListAlterationsParams) ([]database.Alteration, error) {
			if arg.Status.String != "ready" {
				t.Errorf("expected status filter ready, got %q", arg.Status.String)
			}
			return []database.Alteration{testAlteration(status.AlterationReady)}, nil
		},
	}
	router := setupAlterationRouter(store)
	claims := testClaims(uuid.New(), "seller")

	rr := doAuthRequest(t, router, http.MethodGet, "/global/alterations?status=ready", nil, claims)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 1 {
		t.Fatalf("expected 1 alteration, got %d", len(resp))
	}

	rr = doAuthRequest(t, router, http.MethodGet, "/global/alterations?status=archived", nil, claims)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rr.Code)
	}
}
