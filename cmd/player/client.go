package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/magnets-referee/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: %s", method, path, resp.Status)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}

// CreateSession starts a session on configID, or the server default when empty
func (c *Client) CreateSession(ctx context.Context, configID string) (*service.SessionInfo, error) {
	var body interface{}
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

// GetSession fetches the current session, for resuming
func (c *Client) GetSession(ctx context.Context, id string) (*service.SessionInfo, error) {
	var session service.SessionInfo
	if err := c.do(ctx, http.MethodGet, "/api/sessions/"+url.PathEscape(id), nil, &session); err != nil {
		return nil, err
	}
	c.sessionID = session.ID
	return &session, nil
}

// Place submits one raw output line, exactly as a player would print it
func (c *Client) Place(ctx context.Context, line string) (*service.PlaceResult, error) {
	var result service.PlaceResult
	path := fmt.Sprintf("/api/sessions/%s/place", url.PathEscape(c.sessionID))
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"line": line}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SessionID returns the session being played
func (c *Client) SessionID() string {
	return c.sessionID
}
