package adminclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"portfolio-api/domain"
)

const maxResponseSize = 4 * 1024 * 1024

// Client talks to the portfolio API on behalf of the admin dashboard.
type Client struct {
	baseURL string
	token   string
	hc      *http.Client
}

func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		hc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the API, carrying the envelope message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: unexpected status %d", e.Status)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return err
	}

	var env envelope
	if len(raw) > 0 {
		if err := sonic.ConfigStd.Unmarshal(raw, &env); err != nil {
			return &APIError{Status: resp.StatusCode}
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 || !env.Success {
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}
	if out != nil && len(env.Data) > 0 {
		return sonic.ConfigStd.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &projects)
	return projects, err
}

func (c *Client) ReorderProjects(ctx context.Context, updates []domain.OrderUpdate) error {
	body := map[string][]domain.OrderUpdate{"projects": updates}
	return c.do(ctx, http.MethodPut, "/api/projects/reorder", body, nil)
}

func (c *Client) ListSkills(ctx context.Context) ([]domain.Skill, error) {
	var skills []domain.Skill
	err := c.do(ctx, http.MethodGet, "/api/skills", nil, &skills)
	return skills, err
}

func (c *Client) ReorderSkills(ctx context.Context, updates []domain.OrderUpdate) error {
	body := map[string][]domain.OrderUpdate{"skills": updates}
	return c.do(ctx, http.MethodPut, "/api/skills/reorder", body, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.SkillCategory, error) {
	var categories []domain.SkillCategory
	err := c.do(ctx, http.MethodGet, "/api/skills/categories", nil, &categories)
	return categories, err
}

func (c *Client) ReorderCategories(ctx context.Context, updates []domain.OrderUpdate) error {
	body := map[string][]domain.OrderUpdate{"categories": updates}
	return c.do(ctx, http.MethodPut, "/api/skills/categories/reorder", body, nil)
}
