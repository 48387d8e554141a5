// Package cli implements the admin terminal client for the codepad API.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mkarpenko/codepad/internal/common"
)

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type FileInfo struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Language     string    `json:"language"`
	LastModified time.Time `json:"lastModified"`
}

type listFilesResponse struct {
	Files []FileInfo `json:"files"`
}

type bootstrapResponse struct {
	Created bool `json:"created"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client is a thin JSON client over the server's HTTP API.
type Client struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		var e apiError
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, e.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) Register(ctx context.Context, email, name, password string) error {
	pair := &TokenPair{}
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    email,
		"name":     name,
		"password": password,
	}, pair)
	if err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	return nil
}

func (c *Client) Login(ctx context.Context, email, password string) error {
	pair := &TokenPair{}
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, pair)
	if err != nil {
		return err
	}
	c.accessToken = pair.AccessToken
	return nil
}

func (c *Client) Bootstrap(ctx context.Context) (bool, error) {
	out := &bootstrapResponse{}
	if err := c.do(ctx, http.MethodPost, "/api/admin/storage", nil, out); err != nil {
		return false, err
	}
	return out.Created, nil
}

func (c *Client) ListFiles(ctx context.Context) ([]FileInfo, error) {
	out := &listFilesResponse{}
	if err := c.do(ctx, http.MethodGet, "/api/editor/files", nil, out); err != nil {
		return nil, err
	}
	return out.Files, nil
}
