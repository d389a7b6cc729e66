// Package client is a Go client for the family recipes API.
//
// Anonymous calls hang off Client. Register and Login return a Session that
// carries the bearer token and the signed-in user; every authenticated call
// is a Session method. A Session is closed by Logout and rejects further
// calls with ErrSessionClosed.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var ErrSessionClosed = errors.New("client: session closed")

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}
	return fmt.Sprintf("api error: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New targets baseURL, the server root without the /api prefix.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type authResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	var result authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", nil, input, &result); err != nil {
		return nil, err
	}
	return newSession(c, result), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var result authResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", nil, body, &result); err != nil {
		return nil, err
	}
	return newSession(c, result), nil
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", "", nil, nil, nil)
}

func (c *Client) PublicRecipe(ctx context.Context, slug string) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/public/"+url.PathEscape(slug), "", nil, nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Recipe reads a recipe anonymously; private recipes answer 401.
func (c *Client) Recipe(ctx context.Context, recipeID string) (*Recipe, error) {
	var recipe Recipe
	if err := c.do(ctx, http.MethodGet, "/recipes/"+url.PathEscape(recipeID), "", nil, nil, &recipe); err != nil {
		return nil, err
	}
	return &recipe, nil
}

// Search lists public recipes only.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]RecipeSummary, error) {
	var result []RecipeSummary
	if err := c.do(ctx, http.MethodGet, "/recipes/search", "", params.values(), nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, query url.Values, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	target := c.BaseURL + "/api" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Message string            `json:"message"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

type ListParams struct {
	Query     string
	Category  string
	Tag       string
	CreatorID string
	Page      int
	Limit     int
}

type SearchParams struct {
	ListParams
	FamilyID string
}

func (p ListParams) values() url.Values {
	values := url.Values{}
	setIfNotEmpty(values, "q", p.Query)
	setIfNotEmpty(values, "category", p.Category)
	setIfNotEmpty(values, "tag", p.Tag)
	setIfNotEmpty(values, "creator_id", p.CreatorID)
	if p.Page > 0 {
		values.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		values.Set("limit", strconv.Itoa(p.Limit))
	}
	return values
}

func (p SearchParams) values() url.Values {
	values := p.ListParams.values()
	setIfNotEmpty(values, "family_id", p.FamilyID)
	return values
}

func setIfNotEmpty(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
