package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/imyashkale/mcpdashboard/internal/logger"
	"github.com/imyashkale/mcpdashboard/internal/models"
)

// Generic messages used when the backend gives no error text
const (
	msgSetCredential = "Failed to set Gemini API key"
	msgConnect       = "Failed to connect to server"
	msgDisconnect    = "Failed to disconnect server"
	msgQuery         = "Failed to process query"
	msgListServers   = "Failed to get servers"
	msgListTools     = "Failed to get tools"
)

// Client talks to the MCP backend. Every call is exactly one round trip:
// there is no retry, no caching and no client-imposed timeout beyond ctx.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client for the given base URL
// (e.g. "http://localhost:3001/api").
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type credentialRequest struct {
	APIKey string `json:"apiKey"`
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Response string `json:"response"`
}

type toolsResponse struct {
	Tools []models.ToolDescriptor `json:"tools"`
}

type serversResponse struct {
	Servers []string `json:"servers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// SetCredential hands the model API key to the backend
func (c *Client) SetCredential(ctx context.Context, apiKey string) error {
	return c.do(ctx, http.MethodPost, "/gemini/key", credentialRequest{APIKey: apiKey}, nil, "set credential", msgSetCredential)
}

// Connect asks the backend to connect to server and returns the tools it
// discovered.
func (c *Client) Connect(ctx context.Context, server models.ServerDescriptor) ([]models.ToolDescriptor, error) {
	var out toolsResponse
	if err := c.do(ctx, http.MethodPost, "/servers/connect", server, &out, "connect", msgConnect); err != nil {
		return nil, err
	}
	if out.Tools == nil {
		out.Tools = []models.ToolDescriptor{}
	}
	return out.Tools, nil
}

// Disconnect asks the backend to drop the connection to serverID
func (c *Client) Disconnect(ctx context.Context, serverID string) error {
	path := "/servers/" + url.PathEscape(serverID) + "/disconnect"
	return c.do(ctx, http.MethodPost, path, nil, nil, "disconnect", msgDisconnect)
}

// SendQuery submits a chat query and returns the assistant's reply
func (c *Client) SendQuery(ctx context.Context, query string) (string, error) {
	var out queryResponse
	if err := c.do(ctx, http.MethodPost, "/chat", queryRequest{Query: query}, &out, "chat", msgQuery); err != nil {
		return "", err
	}
	return out.Response, nil
}

// ListServers returns the names of servers the backend holds connections to
func (c *Client) ListServers(ctx context.Context) ([]string, error) {
	var out serversResponse
	if err := c.do(ctx, http.MethodGet, "/servers", nil, &out, "list servers", msgListServers); err != nil {
		return nil, err
	}
	return out.Servers, nil
}

// ListTools returns every tool across the backend's connected servers
func (c *Client) ListTools(ctx context.Context) ([]models.ToolDescriptor, error) {
	var out toolsResponse
	if err := c.do(ctx, http.MethodGet, "/tools", nil, &out, "list tools", msgListTools); err != nil {
		return nil, err
	}
	return out.Tools, nil
}

// do performs one request. A nil body sends no payload; a nil out discards
// the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, op, fallback string) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "failed to encode %s request", op)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build %s request", op)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.WithFields(map[string]interface{}{
		"method": method,
		"path":   path,
	}).Debug("Calling MCP backend")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s request failed", op)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s response", op)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := &GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    fallback,
		}
		var payload errorResponse
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			gwErr.Message = payload.Error
		}
		logger.WithFields(map[string]interface{}{
			"path":   path,
			"status": resp.StatusCode,
			"error":  gwErr.Message,
		}).Warn("MCP backend returned an error")
		return gwErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "failed to decode %s response", op)
	}
	return nil
}
