package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/confetex/api/pkg/client"
)

func TestLoginStoresToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"access_token":  "token-123",
				"refresh_token": "refresh-456",
				"role":          "admin",
			})
		case "/global/alterations":
			gotAuth = r.Header.Get("Authorization")
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	session, err := c.Login(context.Background(), client.LoginRequest{Email: "a@b.co", Password: "secret"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if session.AccessToken != "token-123" {
		t.Errorf("expected access token 'token-123', got %q", session.AccessToken)
	}

	if _, err := c.Alterations.List(context.Background(), client.ListAlterationsOptions{}); err != nil {
		t.Fatalf("list alterations failed: %v", err)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("expected Authorization 'Bearer token-123', got %q", gotAuth)
	}
}

func TestPayRejectsOverpaymentWithoutRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s, overpayment must be rejected locally", r.URL.Path)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("t"))
	order := &client.OrderDetail{PaidAmount: "40000.00", Balance: "60000.00"}
	order.Total = "100000.00"

	_, err := c.Orders.Pay(context.Background(), "school-1", order, client.PaymentInput{
		Method: "cash",
		Amount: "60000.01",
	})
	if err == nil {
		t.Fatal("expected overpayment to be rejected")
	}
	if !strings.Contains(err.Error(), "no puede ser mayor") {
		t.Errorf("expected 'no puede ser mayor' in error, got %q", err.Error())
	}

	// Exactly the balance is allowed past the guard (server handles the rest),
	// but zero and negative amounts are not.
	for _, amount := range []string{"0", "-10", "abc"} {
		_, err := c.Orders.Pay(context.Background(), "school-1", order, client.PaymentInput{Method: "cash", Amount: amount})
		if err != client.ErrInvalidAmount {
			t.Errorf("amount %q: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
}

func TestPayAllowsExactBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"payment":     map[string]interface{}{"method": "cash", "amount": "60000.00"},
			"paid_amount": "100000.00",
			"balance":     "0.00",
			"paid":        true,
		})
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("t"))
	order := &client.OrderDetail{Balance: "60000.00"}

	result, err := c.Orders.Pay(context.Background(), "school-1", order, client.PaymentInput{Method: "cash", Amount: "60000.00"})
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if !result.Paid {
		t.Error("expected paid flag after settling the balance")
	}
	if result.Balance != "0.00" {
		t.Errorf("expected balance '0.00', got %q", result.Balance)
	}
}

func TestCreateOrderClientModeGuard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected request, client-mode conflicts must be rejected locally")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := client.New(srv.URL, client.WithToken("t"))

	_, err := c.Orders.Create(context.Background(), "school-1", client.CreateOrderInput{
		ClientID:   "11111111-1111-1111-1111-111111111111",
		ClientName: "Ana Gómez",
		Items:      []client.OrderItemInput{{ProductID: "p", Quantity: 1}},
	})
	if err != client.ErrClientConflict {
		t.Errorf("expected ErrClientConflict, got %v", err)
	}

	_, err = c.Orders.Create(context.Background(), "school-1", client.CreateOrderInput{
		Items: []client.OrderItemInput{{ProductID: "p", Quantity: 1}},
	})
	if err != client.ErrClientRequired {
		t.Errorf("expected ErrClientRequired, got %v", err)
	}

	_, err = c.Alterations.Create(context.Background(), client.AlterationInput{
		ClientID:   "11111111-1111-1111-1111-111111111111",
		ClientName: "Ana Gómez",
		Garment:    "Pantalón",
		Cost:       "15000",
	})
	if err != client.ErrClientConflict {
		t.Errorf("expected ErrClientConflict for alteration, got %v", err)
	}
}

func TestAPIErrorFlattening(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{
			name:   "string detail",
			status: http.StatusConflict,
			body:   `{"detail": "el encargo ya está en un estado final"}`,
			want:   "el encargo ya está en un estado final",
		},
		{
			name:   "validation array",
			status: http.StatusUnprocessableEntity,
			body:   `{"detail": [{"msg": "el nombre es obligatorio", "loc": ["body", "name"]}, {"msg": "el precio debe ser mayor que cero", "loc": ["body", "price"]}]}`,
			want:   "el nombre es obligatorio; el precio debe ser mayor que cero",
		},
		{
			name:   "no envelope",
			status: http.StatusBadGateway,
			body:   `upstream exploded`,
			want:   "error inesperado del servidor (HTTP 502)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c := client.New(srv.URL, client.WithToken("t"))
			_, err := c.Schools.List(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			apiErr, ok := err.(*client.APIError)
			if !ok {
				t.Fatalf("expected *client.APIError, got %T", err)
			}
			if apiErr.StatusCode != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, apiErr.StatusCode)
			}
			if apiErr.Error() != tc.want {
				t.Errorf("expected error %q, got %q", tc.want, apiErr.Error())
			}
		})
	}
}

func TestGroupedCatalogQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"garment_type": {"name": "Camisa", "requires_measurements": false}, "sizes": ["8", "10", "M"], "variants": []}]`))
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	groups, err := c.Products.GroupedGlobalCatalog(context.Background(), "with_stock")
	if err != nil {
		t.Fatalf("grouped catalog failed: %v", err)
	}
	if gotQuery != "stock=with_stock" {
		t.Errorf("expected query 'stock=with_stock', got %q", gotQuery)
	}
	if len(groups) != 1 || groups[0].GarmentType.Name != "Camisa" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if len(groups[0].Sizes) != 3 || groups[0].Sizes[0] != "8" {
		t.Errorf("unexpected sizes: %v", groups[0].Sizes)
	}
}
