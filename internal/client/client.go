package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// EndpointSuffix is the path every endpoint URL must end with.
const EndpointSuffix = "/exec"

const snippetLen = 120

type Action string

const (
	ActionList   Action = "list"
	ActionUpsert Action = "upsert"
	ActionDelete Action = "delete"
	ActionPing   Action = "ping"
)

// Response is the decoded body of every remote call.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Rows  []Row  `json:"rows,omitempty"`
}

// envelope defers row decoding so one bad row does not sink the listing.
type envelope struct {
	OK    bool              `json:"ok"`
	Error string            `json:"error"`
	Rows  []json.RawMessage `json:"rows"`
}

// Client talks to a single remote record store. It holds no state between
// calls.
type Client struct {
	Endpoint string
	Token    string

	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(endpoint, token string, opts ...Option) *Client {
	c := &Client{
		Endpoint:   strings.TrimSpace(endpoint),
		Token:      strings.TrimSpace(token),
		httpClient: &http.Client{},
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Validate checks the configuration without touching the network.
func (c *Client) Validate() error {
	if c.Endpoint == "" || !strings.HasSuffix(c.Endpoint, EndpointSuffix) {
		return ErrInvalidEndpoint
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// Call posts {token, action, ...payload} and decodes the reply. A reply
// with ok=false becomes a *RemoteError, a body that is not JSON a
// *ResponseError. Rows that fail to decode are kept as rows whose Shift
// method reports the error. Call sets no deadline of its own; ctx does.
func (c *Client) Call(ctx context.Context, action Action, payload map[string]any) (*Response, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["token"] = c.Token
	body["action"] = action

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", action, err)
	}
	c.logger.Debug("remote call", "action", action, "status", resp.StatusCode, "duration", time.Since(start))

	if !json.Valid(raw) {
		return nil, &ResponseError{Status: resp.StatusCode, Snippet: snippet(raw)}
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", action, err)
	}
	if !env.OK {
		msg := env.Error
		if msg == "" {
			msg = "remote error"
		}
		return nil, &RemoteError{Action: action, Message: msg}
	}

	out := &Response{OK: true}
	for i, m := range env.Rows {
		var r Row
		if err := json.Unmarshal(m, &r); err != nil {
			c.logger.Warn("undecodable remote row", "index", i, "error", err)
			r = Row{decodeErr: fmt.Errorf("row %d: %w", i, err)}
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// List returns every remote row.
func (c *Client) List(ctx context.Context) ([]Row, error) {
	resp, err := c.Call(ctx, ActionList, nil)
	if err != nil {
		return nil, err
	}
	return resp.Rows, nil
}

// Upsert creates or replaces the row with r.ID.
func (c *Client) Upsert(ctx context.Context, r Row) error {
	_, err := c.Call(ctx, ActionUpsert, map[string]any{"record": r})
	return err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	_, err := c.Call(ctx, ActionDelete, map[string]any{"id": id})
	return err
}

// Ping checks that the endpoint answers and accepts the token.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Call(ctx, ActionPing, nil)
	return err
}

// snippet returns the first snippetLen runes of b.
func snippet(b []byte) string {
	r := []rune(string(b))
	if len(r) > snippetLen {
		r = r[:snippetLen]
	}
	return string(r)
}
