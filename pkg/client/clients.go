package client

import (
	"context"
	"fmt"
)

// ClientsService manages a school's customer records.
type ClientsService struct {
	client *Client
}

type ClientInput struct {
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`
	Document string `json:"document,omitempty"`
}

func (s *ClientsService) List(ctx context.Context, schoolID string) ([]ClientRecord, error) {
	var clients []ClientRecord
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/clients", schoolID), nil, nil, &clients)
	return clients, err
}

func (s *ClientsService) Create(ctx context.Context, schoolID string, input ClientInput) (*ClientRecord, error) {
	var record ClientRecord
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/clients", schoolID), nil, input, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ClientsService) Get(ctx context.Context, schoolID, clientID string) (*ClientRecord, error) {
	var record ClientRecord
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/clients/%s", schoolID, clientID), nil, nil, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ClientsService) Update(ctx context.Context, schoolID, clientID string, input ClientInput) (*ClientRecord, error) {
	var record ClientRecord
	err := s.client.do(ctx, "PUT", fmt.Sprintf("/schools/%s/clients/%s", schoolID, clientID), nil, input, &record)
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *ClientsService) Delete(ctx context.Context, schoolID, clientID string) error {
	return s.client.do(ctx, "DELETE", fmt.Sprintf("/schools/%s/clients/%s", schoolID, clientID), nil, nil, nil)
}
