package profileapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	applog "github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profile"
)

const (
	defaultBaseURL      = "http://localhost:8080"
	defaultResourcePath = "/profile"
	defaultUserAgent    = "profile-sync"
	maxResponseBytes    = 1 << 20 // 1 MB
	maxMessageRunes     = 512
)

// Client implements API over HTTP.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	resourcePath string
	userAgent    string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the scheme and host of the API (useful for testing).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithResourcePath overrides the collection path, "/profile" by default.
func WithResourcePath(p string) Option {
	return func(c *Client) {
		c.resourcePath = "/" + strings.Trim(p, "/")
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new profile API client.
func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:   httpClient,
		baseURL:      defaultBaseURL,
		resourcePath: defaultResourcePath,
		userAgent:    defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type saveResponse struct {
	profile.Profile
	Message string `json:"message"`
}

func (c *Client) collectionURL() string {
	return c.baseURL + c.resourcePath
}

func (c *Client) itemURL(id string) string {
	return c.collectionURL() + "/" + url.PathEscape(id)
}

func (c *Client) doRequest(ctx context.Context, method, u string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.httpClient.Do(req)
}

// call performs the request and decodes a 2xx body into target.
// Every failure path returns a *Failure for op.
func (c *Client) call(ctx context.Context, op Operation, method, u string, body, target any) error {
	resp, err := c.doRequest(ctx, method, u, body)
	if err != nil {
		applog.LogWarn(ctx, "profile api request failed",
			zap.String("op", string(op)),
			zap.String("method", method),
			zap.Error(err),
		)
		return NewFailure(op, ErrTransport, "", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return NewFailure(op, ErrTransport, "", fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return failureFromResponse(ctx, op, resp.StatusCode, data)
	}

	if err := json.Unmarshal(data, target); err != nil {
		applog.LogWarn(ctx, "profile api response malformed",
			zap.String("op", string(op)),
			zap.Int("status", resp.StatusCode),
			zap.Error(err),
		)
		return NewFailure(op, ErrDecode, "", fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

// List fetches the whole collection in server order.
func (c *Client) List(ctx context.Context) ([]profile.Profile, error) {
	var profiles []profile.Profile
	if err := c.call(ctx, OpList, http.MethodGet, c.collectionURL(), nil, &profiles); err != nil {
		return nil, err
	}
	if profiles == nil {
		profiles = []profile.Profile{}
	}
	return profiles, nil
}

// Get fetches one profile by id.
func (c *Client) Get(ctx context.Context, id string) (*profile.Profile, error) {
	var p profile.Profile
	if err := c.call(ctx, OpGet, http.MethodGet, c.itemURL(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert creates p with POST, or replaces it with PUT when isEditing is set.
func (c *Client) Upsert(ctx context.Context, p profile.Profile, isEditing bool) (*SaveResult, error) {
	method, u := http.MethodPost, c.collectionURL()
	if isEditing {
		if p.ID == "" {
			return nil, NewFailure(OpSave, ErrUpstream, "", errors.New("update requires a profile id"))
		}
		method, u = http.MethodPut, c.itemURL(p.ID)
	} else {
		p.ID = ""
	}

	var out saveResponse
	if err := c.call(ctx, OpSave, method, u, p, &out); err != nil {
		return nil, err
	}
	return &SaveResult{Profile: out.Profile, Message: strings.TrimSpace(out.Message)}, nil
}

func failureFromResponse(ctx context.Context, op Operation, status int, body []byte) *Failure {
	kind := ErrUpstream
	if status == http.StatusNotFound {
		kind = ErrNotFound
	}
	applog.LogWarn(ctx, "profile api returned error",
		zap.String("op", string(op)),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
	)
	f := NewFailure(op, kind, messageFromBody(body), nil)
	f.Status = status
	if len(body) > 0 {
		f.Body = body
	}
	return f
}

// messageFromBody extracts human-readable text from an error body.
// It returns "" when the body holds nothing usable.
func messageFromBody(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err != nil {
		if !utf8.Valid(trimmed) {
			return ""
		}
		return truncate(string(trimmed))
	}

	switch v := decoded.(type) {
	case string:
		return truncate(strings.TrimSpace(v))
	case map[string]any:
		if s := stringField(v, "message"); s != "" {
			return truncate(s)
		}
		if s := stringField(v, "detail"); s != "" {
			return truncate(s)
		}
		if nested, ok := v["error"].(map[string]any); ok {
			if s := stringField(nested, "message"); s != "" {
				return truncate(s)
			}
		}
		if s := stringField(v, "error"); s != "" {
			return truncate(s)
		}
		return truncate(stringField(v, "title"))
	}
	return ""
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return strings.TrimSpace(s)
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxMessageRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxMessageRunes]) + "…"
}

// Compile-time interface check
var _ API = (*Client)(nil)
