package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AlterationsService covers the global workshop queue.
type AlterationsService struct {
	client *Client
}

type AlterationInput struct {
	ClientID          string `json:"client_id,omitempty"`
	ClientName        string `json:"client_name,omitempty"`
	ClientPhone       string `json:"client_phone,omitempty"`
	Garment           string `json:"garment"`
	Description       string `json:"description,omitempty"`
	Cost              string `json:"cost"`
	ReceivedDate      string `json:"received_date,omitempty"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

type UpdateAlterationInput struct {
	Garment           string `json:"garment"`
	Description       string `json:"description,omitempty"`
	Cost              string `json:"cost"`
	EstimatedDelivery string `json:"estimated_delivery,omitempty"`
}

type ListAlterationsOptions struct {
	Status string
	Search string
	Limit  int
	Offset int
}

func (s *AlterationsService) List(ctx context.Context, opts ListAlterationsOptions) ([]Alteration, error) {
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

	var alterations []Alteration
	err := s.client.do(ctx, "GET", "/global/alterations", q, nil, &alterations)
	return alterations, err
}

func (s *AlterationsService) Create(ctx context.Context, input AlterationInput) (*AlterationDetail, error) {
	if err := checkClientMode(input.ClientID, input.ClientName); err != nil {
		return nil, err
	}
	var alteration AlterationDetail
	err := s.client.do(ctx, "POST", "/global/alterations", nil, input, &alteration)
	if err != nil {
		return nil, err
	}
	return &alteration, nil
}

func (s *AlterationsService) Get(ctx context.Context, alterationID string) (*AlterationDetail, error) {
	var alteration AlterationDetail
	err := s.client.do(ctx, "GET", "/global/alterations/"+alterationID, nil, nil, &alteration)
	if err != nil {
		return nil, err
	}
	return &alteration, nil
}

func (s *AlterationsService) Update(ctx context.Context, alterationID string, input UpdateAlterationInput) (*Alteration, error) {
	var alteration Alteration
	err := s.client.do(ctx, "PATCH", "/global/alterations/"+alterationID, nil, input, &alteration)
	if err != nil {
		return nil, err
	}
	return &alteration, nil
}

func (s *AlterationsService) UpdateStatus(ctx context.Context, alterationID, status string) (*Alteration, error) {
	body := map[string]string{"status": status}
	var alteration Alteration
	err := s.client.do(ctx, "PATCH", fmt.Sprintf("/global/alterations/%s/status", alterationID), nil, body, &alteration)
	if err != nil {
		return nil, err
	}
	return &alteration, nil
}

// Pay records a payment against the alteration snapshot, validating the
// amount against the snapshot's balance first.
func (s *AlterationsService) Pay(ctx context.Context, alteration *AlterationDetail, input PaymentInput) (*AlterationPaymentResult, error) {
	if err := checkPayment(input.Amount, alteration.Balance); err != nil {
		return nil, err
	}
	var result AlterationPaymentResult
	err := s.client.do(ctx, "POST", fmt.Sprintf("/global/alterations/%s/pay", alteration.ID), nil, input, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *AlterationsService) ListPayments(ctx context.Context, alterationID string) ([]AlterationPayment, error) {
	var payments []AlterationPayment
	err := s.client.do(ctx, "GET", fmt.Sprintf("/global/alterations/%s/payments", alterationID), nil, nil, &payments)
	return payments, err
}

func (s *AlterationsService) Cancel(ctx context.Context, alterationID string) error {
	return s.client.do(ctx, "DELETE", "/global/alterations/"+alterationID, nil, nil, nil)
}
