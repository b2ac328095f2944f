package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/confetex/api/internal/database"
	"github.com/confetex/api/internal/service"
)

// --- Mock pgx.Tx / TxBeginner ---

type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error { return m.rollbackErr }
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *mockTx) Conn() *pgx.Conn                                               { panic("not implemented") }

type mockPool struct {
	tx *mockTx
}

func (m *mockPool) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.tx == nil {
		m.tx = &mockTx{}
	}
	return m.tx, nil
}

// --- Mock OrderStore ---

type mockOrderStore struct {
	getNextOrderNumberFn  func(ctx context.Context, schoolID uuid.UUID) (int32, error)
	getProductForOrderFn  func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error)
	reserveProductStockFn func(ctx context.Context, arg database.ReserveProductStockParams) (int32, error)
	createOrderFn         func(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	createOrderItemFn     func(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
}

func (m *mockOrderStore) GetNextOrderNumber(ctx context.Context, schoolID uuid.UUID) (int32, error) {
	if m.getNextOrderNumberFn != nil {
		return m.getNextOrderNumberFn(ctx, schoolID)
	}
	return 1, nil
}

func (m *mockOrderStore) GetProductForOrder(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
	if m.getProductForOrderFn != nil {
		return m.getProductForOrderFn(ctx, arg)
	}
	return database.GetProductForOrderRow{}, pgx.ErrNoRows
}

func (m *mockOrderStore) ReserveProductStock(ctx context.Context, arg database.ReserveProductStockParams) (int32, error) {
	if m.reserveProductStockFn != nil {
		return m.reserveProductStockFn(ctx, arg)
	}
	return 0, pgx.ErrNoRows
}

func (m *mockOrderStore) CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error) {
	if m.createOrderFn != nil {
		return m.createOrderFn(ctx, arg)
	}
	return database.Order{ID: uuid.New(), Code: arg.Code, Subtotal: arg.Subtotal, TaxAmount: arg.TaxAmount, Total: arg.Total}, nil
}

func (m *mockOrderStore) CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error) {
	if m.createOrderItemFn != nil {
		return m.createOrderItemFn(ctx, arg)
	}
	return database.OrderItem{ID: uuid.New(), ProductID: arg.ProductID, Quantity: arg.Quantity}, nil
}

// --- Helpers ---

func newService(store *mockOrderStore) (*service.OrderService, *mockPool) {
	pool := &mockPool{}
	svc := service.NewOrderService(pool, func(db database.DBTX) service.OrderStore { return store })
	return svc, pool
}

func numericString(t *testing.T, n pgtype.Numeric) string {
	t.Helper()
	val, err := n.Value()
	if err != nil || val == nil {
		t.Fatalf("numeric value: %v", err)
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		t.Fatalf("parse numeric: %v", err)
	}
	return d.StringFixed(2)
}

func activeProduct(price string) func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
	return func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
		var n pgtype.Numeric
		_ = n.Scan(price)
		return database.GetProductForOrderRow{
			ID:       arg.ID,
			Name:     "Camisa blanca",
			Price:    n,
			Stock:    10,
			IsActive: true,
		}, nil
	}
}

// --- Tests ---

func TestCreateOrderComputesTotals(t *testing.T) {
	store := &mockOrderStore{getProductForOrderFn: activeProduct("50000.00")}
	svc, pool := newService(store)

	result, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana Pérez",
		Items: []service.CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	if got := numericString(t, result.Order.Subtotal); got != "100000.00" {
		t.Errorf("subtotal = %s, want 100000.00", got)
	}
	// 19% IVA over 100000.
	if got := numericString(t, result.Order.TaxAmount); got != "19000.00" {
		t.Errorf("tax = %s, want 19000.00", got)
	}
	if got := numericString(t, result.Order.Total); got != "119000.00" {
		t.Errorf("total = %s, want 119000.00", got)
	}
	if result.Order.Code != "PED-0001" {
		t.Errorf("code = %s, want PED-0001", result.Order.Code)
	}
	if !pool.tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestCreateOrderClientModesAreExclusive(t *testing.T) {
	store := &mockOrderStore{getProductForOrderFn: activeProduct("10000.00")}
	svc, _ := newService(store)

	items := []service.CreateOrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}}

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientID:   uuid.NewString(),
		ClientName: "Externo",
		Items:      items,
	})
	if !errors.Is(err, service.ErrClientConflict) {
		t.Errorf("both modes: err = %v, want ErrClientConflict", err)
	}

	_, err = svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:  uuid.New(),
		CreatedBy: uuid.New(),
		Items:     items,
	})
	if !errors.Is(err, service.ErrClientRequired) {
		t.Errorf("neither mode: err = %v, want ErrClientRequired", err)
	}
}

func TestCreateOrderRejectsEmptyItems(t *testing.T) {
	svc, _ := newService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana",
	})
	if !errors.Is(err, service.ErrEmptyItems) {
		t.Errorf("err = %v, want ErrEmptyItems", err)
	}
}

func TestCreateOrderRequiresMeasurementsForYomber(t *testing.T) {
	store := &mockOrderStore{
		getProductForOrderFn: func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
			row, _ := activeProduct("80000.00")(ctx, arg)
			row.RequiresMeasurements = true
			return row, nil
		},
	}
	svc, _ := newService(store)

	req := service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana",
		Items: []service.CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Quantity: 1},
		},
	}
	if _, err := svc.CreateOrder(context.Background(), req); !errors.Is(err, service.ErrMeasurementsRequired) {
		t.Errorf("err = %v, want ErrMeasurementsRequired", err)
	}

	req.Items[0].Measurements = json.RawMessage(`{"busto":"82","cintura":"64","largo":"95"}`)
	if _, err := svc.CreateOrder(context.Background(), req); err != nil {
		t.Errorf("with measurements: %v", err)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	store := &mockOrderStore{
		getProductForOrderFn: activeProduct("30000.00"),
		reserveProductStockFn: func(ctx context.Context, arg database.ReserveProductStockParams) (int32, error) {
			return 0, pgx.ErrNoRows
		},
	}
	svc, _ := newService(store)

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana",
		Items: []service.CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Quantity: 3, ReserveStock: true},
		},
	})
	if !errors.Is(err, service.ErrInsufficientStock) {
		t.Errorf("err = %v, want ErrInsufficientStock", err)
	}
}

func TestCreateOrderRejectsInvalidQuantity(t *testing.T) {
	svc, _ := newService(&mockOrderStore{})
	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana",
		Items: []service.CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Quantity: 0},
		},
	})
	if !errors.Is(err, service.ErrInvalidQuantity) {
		t.Errorf("err = %v, want ErrInvalidQuantity", err)
	}
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	store := &mockOrderStore{
		getProductForOrderFn: func(ctx context.Context, arg database.GetProductForOrderParams) (database.GetProductForOrderRow, error) {
			return database.GetProductForOrderRow{ID: arg.ID, Price: numericValue("10000.00"), IsActive: false}, nil
		},
	}
	svc, _ := newService(store)

	_, err := svc.CreateOrder(context.Background(), service.CreateOrderRequest{
		SchoolID:   uuid.New(),
		CreatedBy:  uuid.New(),
		ClientName: "Ana",
		Items: []service.CreateOrderItemRequest{
			{ProductID: uuid.NewString(), Quantity: 1},
		},
	})
	if !errors.Is(err, service.ErrProductInactive) {
		t.Errorf("err = %v, want ErrProductInactive", err)
	}
}

func numericValue(s string) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(s)
	return n
}
