package client

import "context"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	SchoolID string `json:"school_id,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	SchoolID     string `json:"school_id,omitempty"`
}

// Login authenticates and stores the access token on the client for
// subsequent calls.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, "POST", "/auth/login", nil, req, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}

// Refresh swaps a refresh token for a new session and stores the new access
// token on the client.
func (c *Client) Refresh(ctx context.Context, req RefreshRequest) (*Session, error) {
	var session Session
	if err := c.do(ctx, "POST", "/auth/refresh", nil, req, &session); err != nil {
		return nil, err
	}
	c.SetToken(session.AccessToken)
	return &session, nil
}
