package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AccountingService covers the Caja Menor / Caja Mayor ledger.
type AccountingService struct {
	client *Client
}

type CashTransactionInput struct {
	Box          string `json:"box"`
	Kind         string `json:"kind"`
	Concept      string `json:"concept"`
	Amount       string `json:"amount"`
	EntryDate    string `json:"entry_date,omitempty"`
	OrderID      string `json:"order_id,omitempty"`
	AlterationID string `json:"alteration_id,omitempty"`
}

type ListCashTransactionsOptions struct {
	Box       string
	Kind      string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

func (s *AccountingService) ListTransactions(ctx context.Context, schoolID string, opts ListCashTransactionsOptions) ([]CashTransaction, error) {
	q := url.Values{}
	if opts.Box != "" {
		q.Set("box", opts.Box)
	}
	if opts.Kind != "" {
		q.Set("kind", opts.Kind)
	}
	if opts.StartDate != "" {
		q.Set("start_date", opts.StartDate)
	}
	if opts.EndDate != "" {
		q.Set("end_date", opts.EndDate)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	var txs []CashTransaction
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/accounting/transactions", schoolID), q, nil, &txs)
	return txs, err
}

func (s *AccountingService) CreateTransaction(ctx context.Context, schoolID string, input CashTransactionInput) (*CashTransaction, error) {
	var tx CashTransaction
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/accounting/transactions", schoolID), nil, input, &tx)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (s *AccountingService) Summary(ctx context.Context, schoolID string) ([]BoxSummary, error) {
	var summary []BoxSummary
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/accounting/summary", schoolID), nil, nil, &summary)
	return summary, err
}
