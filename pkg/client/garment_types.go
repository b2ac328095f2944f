package client

import (
	"context"
	"fmt"
)

type GarmentTypesService struct {
	client *Client
}

type GarmentTypeInput struct {
	Name                 string `json:"name"`
	Description          string `json:"description,omitempty"`
	RequiresMeasurements bool   `json:"requires_measurements"`
	IsActive             *bool  `json:"is_active,omitempty"`
}

func (s *GarmentTypesService) List(ctx context.Context, schoolID string) ([]GarmentType, error) {
	var types []GarmentType
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/garment-types", schoolID), nil, nil, &types)
	return types, err
}

func (s *GarmentTypesService) Create(ctx context.Context, schoolID string, input GarmentTypeInput) (*GarmentType, error) {
	var gt GarmentType
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/garment-types", schoolID), nil, input, &gt)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

func (s *GarmentTypesService) Update(ctx context.Context, schoolID, typeID string, input GarmentTypeInput) (*GarmentType, error) {
	var gt GarmentType
	err := s.client.do(ctx, "PUT", fmt.Sprintf("/schools/%s/garment-types/%s", schoolID, typeID), nil, input, &gt)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

func (s *GarmentTypesService) Delete(ctx context.Context, schoolID, typeID string) error {
	return s.client.do(ctx, "DELETE", fmt.Sprintf("/schools/%s/garment-types/%s", schoolID, typeID), nil, nil, nil)
}

func (s *GarmentTypesService) ListGlobal(ctx context.Context) ([]GarmentType, error) {
	var types []GarmentType
	err := s.client.do(ctx, "GET", "/global/garment-types", nil, nil, &types)
	return types, err
}

func (s *GarmentTypesService) CreateGlobal(ctx context.Context, input GarmentTypeInput) (*GarmentType, error) {
	var gt GarmentType
	err := s.client.do(ctx, "POST", "/global/garment-types", nil, input, &gt)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

func (s *GarmentTypesService) UpdateGlobal(ctx context.Context, typeID string, input GarmentTypeInput) (*GarmentType, error) {
	var gt GarmentType
	err := s.client.do(ctx, "PUT", "/global/garment-types/"+typeID, nil, input, &gt)
	if err != nil {
		return nil, err
	}
	return &gt, nil
}

func (s *GarmentTypesService) DeleteGlobal(ctx context.Context, typeID string) error {
	return s.client.do(ctx, "DELETE", "/global/garment-types/"+typeID, nil, nil, nil)
}
