// Package identity talks to the external identity provider that owns
// login credentials. The API only mirrors accounts locally; creating,
// verifying and deleting the provider side happens here.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDPrefix marks provider-issued account ids. Route parameters
// starting with it are resolved against identity_id instead of the
// internal primary key.
const IDPrefix = "user_"

// IsProviderID reports whether id looks like a provider account id.
func IsProviderID(id string) bool { return strings.HasPrefix(id, IDPrefix) }

// Account is the provider-side view of a principal.
type Account struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department"`
	ImageURL   string `json:"image_url"`
}

// Client calls the identity provider's management REST API. With Skip
// set it fabricates deterministic accounts so the stack runs without
// provider credentials.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client.
func New(baseURL, apiKey string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Skip:    skip,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// CreateAccount provisions a login for a new user or student. Role and
// department land in the account's public metadata so the provider's
// session tokens carry them.
func (c *Client) CreateAccount(ctx context.Context, email, name, role, department string) (*Account, error) {
	if c.Skip {
		return &Account{
			ID:         IDPrefix + uuid.NewString(),
			Email:      email,
			Name:       name,
			Role:       role,
			Department: department,
		}, nil
	}
	if email == "" {
		return nil, fmt.Errorf("email required")
	}

	body, _ := json.Marshal(map[string]any{
		"email": email,
		"name":  name,
		"public_metadata": map[string]string{
			"role":       role,
			"department": department,
		},
	})
	var out Account
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMetadata pushes role/department changes back to the provider.
func (c *Client) UpdateMetadata(ctx context.Context, accountID, role, department string) error {
	if c.Skip {
		return nil
	}
	body, _ := json.Marshal(map[string]any{
		"public_metadata": map[string]string{
			"role":       role,
			"department": department,
		},
	})
	return c.do(ctx, http.MethodPatch, "/v1/accounts/"+accountID, body, nil)
}

// DeleteAccount removes the provider login. Callers treat failures as
// best-effort cleanup.
func (c *Client) DeleteAccount(ctx context.Context, accountID string) error {
	if c.Skip {
		return nil
	}
	return c.do(ctx, http.MethodDelete, "/v1/accounts/"+accountID, nil, nil)
}

// VerifySession asks the provider to validate one of its session
// tokens and returns the account it belongs to.
func (c *Client) VerifySession(ctx context.Context, sessionToken string) (*Account, error) {
	if c.Skip {
		// Dev sessions are "<role>:<department>:<email>".
		parts := strings.SplitN(sessionToken, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid session token")
		}
		return &Account{
			ID:         IDPrefix + uuid.NewString(),
			Role:       parts[0],
			Department: parts[1],
			Email:      parts[2],
			Name:       parts[2],
		}, nil
	}

	body, _ := json.Marshal(map[string]string{"token": sessionToken})
	var out Account
	if err := c.do(ctx, http.MethodPost, "/v1/sessions/verify", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health checks provider availability.
func (c *Client) Health(ctx context.Context) error {
	if c.Skip {
		return nil
	}
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("identity provider error %s: %s", resp.Status, string(raw))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
