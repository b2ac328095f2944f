package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// OrdersService covers the school-scoped order endpoints, including payments.
type OrdersService struct {
	client *Client
}

type OrderItemInput struct {
	ProductID      string          `json:"product_id"`
	Quantity       int32           `json:"quantity"`
	Measurements   json.RawMessage `json:"measurements,omitempty"`
	EmbroideryText string          `json:"embroidery_text,omitempty"`
	ReserveStock   bool            `json:"reserve_stock"`
}

type CreateOrderInput struct {
	ClientID     string           `json:"client_id,omitempty"`
	ClientName   string           `json:"client_name,omitempty"`
	ClientPhone  string           `json:"client_phone,omitempty"`
	DeliveryDate string           `json:"delivery_date,omitempty"`
	Notes        string           `json:"notes,omitempty"`
	Items        []OrderItemInput `json:"items"`
}

type ListOrdersOptions struct {
	Status string
	Search string
	Limit  int
	Offset int
}

type PaymentInput struct {
	Method    string `json:"method"`
	Amount    string `json:"amount"`
	Reference string `json:"reference,omitempty"`
}

func (s *OrdersService) List(ctx context.Context, schoolID string, opts ListOrdersOptions) ([]Order, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Search != "" {
		q.Set("search", opts.Search)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	var orders []Order
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/orders", schoolID), q, nil, &orders)
	return orders, err
}

func (s *OrdersService) Create(ctx context.Context, schoolID string, input CreateOrderInput) (*OrderDetail, error) {
	if err := checkClientMode(input.ClientID, input.ClientName); err != nil {
		return nil, err
	}
	var order OrderDetail
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/orders", schoolID), nil, input, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) Get(ctx context.Context, schoolID, orderID string) (*OrderDetail, error) {
	var order OrderDetail
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/orders/%s", schoolID, orderID), nil, nil, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) UpdateStatus(ctx context.Context, schoolID, orderID, status string) (*Order, error) {
	body := map[string]string{"status": status}
	var order Order
	err := s.client.do(ctx, "PATCH", fmt.Sprintf("/schools/%s/orders/%s/status", schoolID, orderID), nil, body, &order)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *OrdersService) UpdateItemStatus(ctx context.Context, schoolID, orderID, itemID, status string) (*OrderItem, error) {
	body := map[string]string{"status": status}
	var item OrderItem
	err := s.client.do(ctx, "PATCH", fmt.Sprintf("/schools/%s/orders/%s/items/%s/status", schoolID, orderID, itemID), nil, body, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Cancel voids the order and releases any reserved stock.
func (s *OrdersService) Cancel(ctx context.Context, schoolID, orderID string) error {
	return s.client.do(ctx, "DELETE", fmt.Sprintf("/schools/%s/orders/%s", schoolID, orderID), nil, nil, nil)
}

// Pay records a payment against the order snapshot. The amount is validated
// against the snapshot's balance before any request is sent.
func (s *OrdersService) Pay(ctx context.Context, schoolID string, order *OrderDetail, input PaymentInput) (*PaymentResult, error) {
	if err := checkPayment(input.Amount, order.Balance); err != nil {
		return nil, err
	}
	var result PaymentResult
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/orders/%s/payments", schoolID, order.ID), nil, input, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *OrdersService) ListPayments(ctx context.Context, schoolID, orderID string) ([]Payment, error) {
	var payments []Payment
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/orders/%s/payments", schoolID, orderID), nil, nil, &payments)
	return payments, err
}
