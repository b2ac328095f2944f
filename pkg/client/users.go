package client

import (
	"context"
	"fmt"
)

type UsersService struct {
	client *Client
}

type CreateUserInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
}

type UpdateUserInput struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

func (s *UsersService) List(ctx context.Context) ([]User, error) {
	var users []User
	err := s.client.do(ctx, "GET", "/global/users", nil, nil, &users)
	return users, err
}

func (s *UsersService) Create(ctx context.Context, input CreateUserInput) (*User, error) {
	var user User
	err := s.client.do(ctx, "POST", "/global/users", nil, input, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersService) Get(ctx context.Context, userID string) (*UserDetail, error) {
	var user UserDetail
	err := s.client.do(ctx, "GET", "/global/users/"+userID, nil, nil, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UsersService) Update(ctx context.Context, userID string, input UpdateUserInput) (*User, error) {
	var user User
	err := s.client.do(ctx, "PUT", "/global/users/"+userID, nil, input, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AssignRole grants the user a role in the given school, replacing any
// existing assignment there.
func (s *UsersService) AssignRole(ctx context.Context, userID, schoolID, role string) (*UserSchoolRole, error) {
	body := map[string]string{"role": role}
	var assignment UserSchoolRole
	err := s.client.do(ctx, "PUT", fmt.Sprintf("/global/users/%s/schools/%s/role", userID, schoolID), nil, body, &assignment)
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *UsersService) RevokeRole(ctx context.Context, userID, schoolID string) error {
	return s.client.do(ctx, "DELETE", fmt.Sprintf("/global/users/%s/schools/%s/role", userID, schoolID), nil, nil, nil)
}
