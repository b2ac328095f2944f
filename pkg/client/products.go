package client

import (
	"context"
	"fmt"
	"net/url"
)

// ProductsService covers school-scoped products, the global shared catalog,
// and the grouped storefront views.
type ProductsService struct {
	client *Client
}

type ProductInput struct {
	GarmentTypeID string `json:"garment_type_id"`
	Name          string `json:"name"`
	Size          string `json:"size"`
	Color         string `json:"color"`
	Price         string `json:"price"`
	Stock         int32  `json:"stock"`
	ImageURL      string `json:"image_url,omitempty"`
	IsActive      *bool  `json:"is_active,omitempty"`
}

func (s *ProductsService) List(ctx context.Context, schoolID string) ([]Product, error) {
	var products []Product
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/products", schoolID), nil, nil, &products)
	return products, err
}

func (s *ProductsService) Create(ctx context.Context, schoolID string, input ProductInput) (*Product, error) {
	var product Product
	err := s.client.do(ctx, "POST", fmt.Sprintf("/schools/%s/products", schoolID), nil, input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Get(ctx context.Context, schoolID, productID string) (*Product, error) {
	var product Product
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/products/%s", schoolID, productID), nil, nil, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Update(ctx context.Context, schoolID, productID string, input ProductInput) (*Product, error) {
	var product Product
	err := s.client.do(ctx, "PUT", fmt.Sprintf("/schools/%s/products/%s", schoolID, productID), nil, input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) Delete(ctx context.Context, schoolID, productID string) error {
	return s.client.do(ctx, "DELETE", fmt.Sprintf("/schools/%s/products/%s", schoolID, productID), nil, nil, nil)
}

func (s *ProductsService) ListGlobal(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.client.do(ctx, "GET", "/global/products", nil, nil, &products)
	return products, err
}

func (s *ProductsService) CreateGlobal(ctx context.Context, input ProductInput) (*Product, error) {
	var product Product
	err := s.client.do(ctx, "POST", "/global/products", nil, input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) UpdateGlobal(ctx context.Context, productID string, input ProductInput) (*Product, error) {
	var product Product
	err := s.client.do(ctx, "PUT", "/global/products/"+productID, nil, input, &product)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductsService) DeleteGlobal(ctx context.Context, productID string) error {
	return s.client.do(ctx, "DELETE", "/global/products/"+productID, nil, nil, nil)
}

// GroupedCatalog fetches a school's merged catalog grouped by garment type.
// stock is "", "all", or "with_stock".
func (s *ProductsService) GroupedCatalog(ctx context.Context, schoolID, stock string) ([]CatalogGroup, error) {
	q := url.Values{}
	if stock != "" {
		q.Set("stock", stock)
	}
	var groups []CatalogGroup
	err := s.client.do(ctx, "GET", fmt.Sprintf("/schools/%s/catalog/grouped", schoolID), q, nil, &groups)
	return groups, err
}

// GroupedGlobalCatalog fetches the shared storefront catalog. No auth needed.
func (s *ProductsService) GroupedGlobalCatalog(ctx context.Context, stock string) ([]CatalogGroup, error) {
	q := url.Values{}
	if stock != "" {
		q.Set("stock", stock)
	}
	var groups []CatalogGroup
	err := s.client.do(ctx, "GET", "/global/catalog/grouped", q, nil, &groups)
	return groups, err
}
