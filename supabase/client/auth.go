package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Auth returns an auth client.
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

// AuthClient handles GoTrue authentication operations.
type AuthClient struct {
	client *Client
}

// SignUpMetadata is the academic profile captured at registration and
// stored as GoTrue user metadata; the backend's trigger seeds the
// user_profiles row from it.
type SignUpMetadata struct {
	FullName  string `json:"full_name"`
	StudentID string `json:"student_id"`
	Semester  string `json:"semester"`
}

// SignUp registers a new user with profile metadata.
func (a *AuthClient) SignUp(ctx context.Context, email, password string, meta SignUpMetadata) (*Session, error) {
	if meta.Semester == "" {
		meta.Semester = "1"
	}
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     meta,
	}
	return a.sessionRequest(ctx, a.client.baseURL+"/auth/v1/signup", payload)
}

// SignIn exchanges credentials for a session via the password grant.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	payload := map[string]any{
		"email":    email,
		"password": password,
	}
	return a.sessionRequest(ctx, a.client.baseURL+"/auth/v1/token?grant_type=password", payload)
}

// SignOut revokes the session belonging to the access token.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.client.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", a.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.do(req)
	if err != nil {
		return err
	}
	return resp.Err()
}

// GetUser returns the user owning the access token.
func (a *AuthClient) GetUser(ctx context.Context, accessToken string) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.client.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", a.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := a.client.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var user User
	if err := json.Unmarshal(resp.Body, &user); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return &user, nil
}

func (a *AuthClient) sessionRequest(ctx context.Context, reqURL string, payload any) (*Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("apikey", a.client.apiKey)
	req.Header.Set("Authorization", "Bearer "+a.client.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(resp.Body, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// Session is the token bundle returned by auth operations.
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

// User represents a Supabase auth user.
type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Role             string         `json:"role"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	CreatedAt        string         `json:"created_at"`
	UpdatedAt        string         `json:"updated_at"`
	AppMetadata      map[string]any `json:"app_metadata"`
	UserMetadata     map[string]any `json:"user_metadata"`
}
