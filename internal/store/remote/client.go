// Package remote is the HTTP client for the to-do item service.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/oklog/ulid/v2"

	"github.com/idilsaglam/todoview/internal/model"
)

const (
	DefaultBaseURL   = "http://localhost:8080"
	DefaultItemsPath = "/todos"
	DefaultTimeout   = 10 * time.Second

	userAgent = "todoview/1"
	maxBody   = 4 << 20
)

// Options configure a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL    string
	ItemsPath  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *log.Logger
}

// Client talks to the item collection endpoint. It never retries; a failed
// call is returned to the caller as an *Error.
type Client struct {
	httpClient *http.Client
	endpoint   string
	log        *log.Logger

	mu sync.Mutex
	// numeric holds ids the server sent as JSON numbers.
	numeric map[model.ID]bool
}

// listEnvelope is the list response shape: {"items": [...]}.
type listEnvelope struct {
	Items []json.RawMessage `json:"items"`
}

// wireItem is the update body. ID is a string or a json.Number, matching
// the form the server used.
type wireItem struct {
	ID        any       `json:"_id"`
	Title     string    `json:"title,omitempty"`
	Done      bool      `json:"done"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type createBody struct {
	Title string `json:"title"`
	Done  bool   `json:"done"`
}

// New validates the base URL and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimSpace(opts.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("api url %q: scheme must be http or https", base)
	}

	path := opts.ItemsPath
	if path == "" {
		path = DefaultItemsPath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Client{
		httpClient: hc,
		endpoint:   strings.TrimRight(u.String(), "/") + strings.TrimRight(path, "/"),
		log:        logger.WithPrefix("remote"),
		numeric:    map[model.ID]bool{},
	}, nil
}

// Endpoint is the collection URL the client talks to.
func (c *Client) Endpoint() string { return c.endpoint }

// List fetches the whole collection. Accepts {"items": [...]} or a bare array.
func (c *Client) List(ctx context.Context) ([]model.Item, error) {
	body, err := c.do(ctx, "list", http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(body)
	var raws []json.RawMessage
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, fmt.Errorf("list: decode: %w", err)
		}
	} else {
		var env listEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("list: decode: %w", err)
		}
		raws = env.Items
	}

	items := make([]model.Item, 0, len(raws))
	for _, raw := range raws {
		it, err := c.decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("list: decode: %w", err)
		}
		items = append(items, it)
	}
	return items, nil
}

// decodeItem decodes one item and notes whether its id was a JSON number.
func (c *Client) decodeItem(raw json.RawMessage) (model.Item, error) {
	var it model.Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return model.Item{}, err
	}
	var key struct {
		ID json.RawMessage `json:"_id"`
	}
	if json.Unmarshal(raw, &key) == nil && it.ID != "" {
		id := bytes.TrimSpace(key.ID)
		c.mu.Lock()
		c.numeric[it.ID] = len(id) > 0 && id[0] != '"'
		c.mu.Unlock()
	}
	return it, nil
}

func (c *Client) wire(it model.Item) wireItem {
	c.mu.Lock()
	numeric := c.numeric[it.ID]
	c.mu.Unlock()

	var id any = it.ID.String()
	if numeric {
		id = json.Number(it.ID.String())
	}
	return wireItem{ID: id, Title: it.Title, Done: it.Done, UpdatedAt: it.UpdatedAt}
}

// Update sends patch as the new state of item id.
func (c *Client) Update(ctx context.Context, id model.ID, patch model.Item) error {
	patch.ID = id
	_, err := c.do(ctx, "update", http.MethodPatch, c.itemURL(id), c.wire(patch))
	return err
}

// Delete removes item id.
func (c *Client) Delete(ctx context.Context, id model.ID) error {
	_, err := c.do(ctx, "delete", http.MethodDelete, c.itemURL(id), nil)
	return err
}

// Create adds a pending item. The returned item is whatever the server echoed
// back; servers that answer with an empty body yield a zero ID.
func (c *Client) Create(ctx context.Context, title string) (model.Item, error) {
	body, err := c.do(ctx, "create", http.MethodPost, c.endpoint, createBody{Title: title})
	if err != nil {
		return model.Item{}, err
	}
	var it model.Item
	if len(bytes.TrimSpace(body)) > 0 {
		if it, err = c.decodeItem(body); err != nil {
			c.log.Debug("create: ignoring undecodable body", "err", err)
			it = model.Item{}
		}
	}
	if it.Title == "" {
		it.Title = title
	}
	return it, nil
}

func (c *Client) itemURL(id model.ID) string {
	return c.endpoint + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, op, method, target string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("%s: marshal: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	reqID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-Id", reqID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", "op", op, "method", method, "url", target, "request_id", reqID, "err", err)
		return nil, errNetwork(op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, errNetwork(op, fmt.Errorf("read body: %w", err))
	}
	c.log.Debug("request", "op", op, "method", method, "url", target,
		"status", resp.StatusCode, "request_id", reqID, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := errStatus(op, resp.StatusCode, errorMessage(respBody))
		c.log.Error("request rejected", "op", op, "status", resp.StatusCode, "request_id", reqID, "err", err)
		return nil, err
	}
	if len(respBody) > maxBody {
		err := errTooLarge(op)
		c.log.Error("response too large", "op", op, "url", target, "request_id", reqID, "limit", maxBody)
		return nil, err
	}
	return respBody, nil
}

// errorMessage pulls {"error": ...} or {"message": ...} out of an error body.
func errorMessage(body []byte) string {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}
		return apiErr.Message
	}
	return ""
}
