package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// PQRSService covers the support-ticket endpoints. Submit is public; the rest
// require an owner or admin token.
type PQRSService struct {
	client *Client
}

type PqrsInput struct {
	SchoolID string `json:"school_id,omitempty"`
	Type     string `json:"type"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Message  string `json:"message"`
}

type ListPqrsOptions struct {
	Status string
	Type   string
	Limit  int
	Offset int
}

func (s *PQRSService) Submit(ctx context.Context, input PqrsInput) (*PqrsTicket, error) {
	var ticket PqrsTicket
	err := s.client.do(ctx, "POST", "/global/pqrs", nil, input, &ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *PQRSService) List(ctx context.Context, opts ListPqrsOptions) ([]PqrsTicket, error) {
	q := url.Values{}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	if opts.Type != "" {
		q.Set("type", opts.Type)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}

	var tickets []PqrsTicket
	err := s.client.do(ctx, "GET", "/global/pqrs", q, nil, &tickets)
	return tickets, err
}

func (s *PQRSService) Get(ctx context.Context, ticketID string) (*PqrsTicket, error) {
	var ticket PqrsTicket
	err := s.client.do(ctx, "GET", "/global/pqrs/"+ticketID, nil, nil, &ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (s *PQRSService) UpdateStatus(ctx context.Context, ticketID, status string) (*PqrsTicket, error) {
	body := map[string]string{"status": status}
	var ticket PqrsTicket
	err := s.client.do(ctx, "PATCH", fmt.Sprintf("/global/pqrs/%s/status", ticketID), nil, body, &ticket)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
