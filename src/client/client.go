package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasksmith/src/domain/entities"
)

// APIError é devolvido para qualquer resposta fora da faixa 2xx.
type APIError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *APIError) Error() string {
	if len(e.Details) > 0 {
		return fmt.Sprintf("api error %d: %s (%s)", e.StatusCode, e.Message, strings.Join(e.Details, "; "))
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client fala com a API REST de entidades.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: 10 * time.Second})
}

func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// List busca todas as entidades do tipo. Um orderBy vazio usa o padrão do servidor.
func (c *Client) List(ctx context.Context, entityType string, orderBy string) ([]entities.Entity, error) {
	return c.ListWhere(ctx, entityType, orderBy, nil)
}

// ListWhere filtra por igualdade de campos, enviados como query string.
func (c *Client) ListWhere(ctx context.Context, entityType string, orderBy string, conditions map[string]string) ([]entities.Entity, error) {
	query := url.Values{}
	if orderBy != "" {
		query.Set("orderBy", orderBy)
	}
	for key, value := range conditions {
		query.Set(key, value)
	}

	path := "/api/entities/" + url.PathEscape(entityType)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var items []entities.Entity
	if err := c.do(ctx, http.MethodGet, path, nil, &items); err != nil {
		return nil, err
	}
	return fillType(items, entityType), nil
}

func (c *Client) Get(ctx context.Context, entityType string, id int64) (*entities.Entity, error) {
	var entity entities.Entity
	if err := c.do(ctx, http.MethodGet, entityPath(entityType, id), nil, &entity); err != nil {
		return nil, err
	}
	entity.Type = entityType
	return &entity, nil
}

func (c *Client) Create(ctx context.Context, entityType string, data map[string]any) (*entities.Entity, error) {
	var entity entities.Entity
	path := "/api/entities/" + url.PathEscape(entityType)
	if err := c.do(ctx, http.MethodPost, path, map[string]any{"data": data}, &entity); err != nil {
		return nil, err
	}
	entity.Type = entityType
	return &entity, nil
}

func (c *Client) Update(ctx context.Context, entityType string, id int64, patch map[string]any) (*entities.Entity, error) {
	var entity entities.Entity
	if err := c.do(ctx, http.MethodPut, entityPath(entityType, id), map[string]any{"data": patch}, &entity); err != nil {
		return nil, err
	}
	entity.Type = entityType
	return &entity, nil
}

func (c *Client) Delete(ctx context.Context, entityType string, id int64) error {
	return c.do(ctx, http.MethodDelete, entityPath(entityType, id), nil, nil)
}

func entityPath(entityType string, id int64) string {
	return fmt.Sprintf("/api/entities/%s/%d", url.PathEscape(entityType), id)
}

func fillType(items []entities.Entity, entityType string) []entities.Entity {
	for i := range items {
		items[i].Type = entityType
	}
	return items
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response of %s %s: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
	}

	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	var body struct {
		Error   string   `json:"error"`
		Details []string `json:"details"`
	}

	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Details = body.Details
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
