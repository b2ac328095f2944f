package client

import "context"

type SchoolsService struct {
	client *Client
}

type SchoolInput struct {
	Name    string `json:"name"`
	Slug    string `json:"slug,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

func (s *SchoolsService) List(ctx context.Context) ([]School, error) {
	var schools []School
	err := s.client.do(ctx, "GET", "/global/schools", nil, nil, &schools)
	return schools, err
}

func (s *SchoolsService) Create(ctx context.Context, input SchoolInput) (*School, error) {
	var school School
	err := s.client.do(ctx, "POST", "/global/schools", nil, input, &school)
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *SchoolsService) Get(ctx context.Context, schoolID string) (*School, error) {
	var school School
	err := s.client.do(ctx, "GET", "/global/schools/"+schoolID, nil, nil, &school)
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *SchoolsService) Update(ctx context.Context, schoolID string, input SchoolInput) (*School, error) {
	var school School
	err := s.client.do(ctx, "PUT", "/global/schools/"+schoolID, nil, input, &school)
	if err != nil {
		return nil, err
	}
	return &school, nil
}

func (s *SchoolsService) Delete(ctx context.Context, schoolID string) error {
	return s.client.do(ctx, "DELETE", "/global/schools/"+schoolID, nil, nil, nil)
}
