package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/artwall/internal/client/models"
	"github.com/dmitrijs2005/artwall/internal/common"
)

const maxResponseBytes = 32 << 20

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	tokens  TokenSource
}

// NewHTTPClient returns a client for the API rooted at baseURL. tokens may
// be nil when no gated calls are made.
func NewHTTPClient(baseURL string, timeout time.Duration, tokens TokenSource) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse api url: unsupported scheme %q", u.Scheme)
	}
	return &HTTPClient{
		baseURL: u,
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
	}, nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// BaseURL is the API root used to resolve image paths.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL.String()
}

func (c *HTTPClient) endpoint(parts ...string) string {
	u := *c.baseURL
	escaped := make([]string, 0, len(parts))
	for _, p := range parts {
		escaped = append(escaped, url.PathEscape(p))
	}
	u.Path = c.baseURL.Path + "/" + strings.Join(parts, "/")
	u.RawPath = c.baseURL.EscapedPath() + "/" + strings.Join(escaped, "/")
	return u.String()
}

func (c *HTTPClient) do(ctx context.Context, method, target string, body io.Reader, contentType string, gated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if gated && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.mapError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, c.mapError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, data)
	}
	return data, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, target string, in any, gated bool) ([]byte, error) {
	var body io.Reader
	ct := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
		ct = "application/json"
	}
	return c.do(ctx, method, target, body, ct, gated)
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	data, err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "health"), nil, false)
	if err != nil {
		return err
	}
	var st struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(data, &st); err != nil || st.Status != "ok" {
		return fmt.Errorf("health check: %w", common.ErrServer)
	}
	return nil
}

func (c *HTTPClient) ListWorks(ctx context.Context) ([]models.Work, error) {
	data, err := c.doJSON(ctx, http.MethodGet, c.endpoint("api", "works"), nil, false)
	if err != nil {
		return nil, err
	}
	return models.DecodeWorks(data)
}

func (c *HTTPClient) CreateWork(ctx context.Context, r models.UploadRequest) (*models.Work, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"title", r.Title},
		{"description", r.Description},
		{"username", r.AuthorName},
		{"realName", r.AuthorRealName},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("encode upload: %w", err)
		}
	}
	for _, img := range r.Images {
		part, err := mw.CreateFormFile("images", img.Filename)
		if err != nil {
			return nil, fmt.Errorf("encode upload: %w", err)
		}
		if _, err := part.Write(img.Content); err != nil {
			return nil, fmt.Errorf("encode upload: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("encode upload: %w", err)
	}

	data, err := c.do(ctx, http.MethodPost, c.endpoint("api", "works"), &buf, mw.FormDataContentType(), false)
	if err != nil {
		return nil, err
	}
	return models.DecodeWork(data)
}

func (c *HTTPClient) DeleteWork(ctx context.Context, workID string) error {
	_, err := c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "works", workID), nil, true)
	return err
}

func (c *HTTPClient) ToggleLike(ctx context.Context, workID, userID string) (*models.LikeResult, error) {
	in := map[string]string{"user_id": userID}
	data, err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "works", workID, "like"), in, false)
	if err != nil {
		return nil, err
	}
	return models.DecodeLike(data)
}

func (c *HTTPClient) TogglePin(ctx context.Context, workID string) (*models.PinResult, error) {
	data, err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "works", workID, "pin"), nil, true)
	if err != nil {
		return nil, err
	}
	return models.DecodePin(data)
}

func (c *HTTPClient) AddComment(ctx context.Context, workID string, nc models.NewComment) (*models.Comment, error) {
	in := map[string]string{
		"content":  nc.Content,
		"user_id":  nc.UserID,
		"username": nc.DisplayName,
	}
	data, err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "works", workID, "comments"), in, false)
	if err != nil {
		return nil, err
	}
	return models.DecodeComment(data, workID)
}

// DeleteComment sends the requester's user id in the body; the server
// allows the comment's author or a bearer of the admin token.
func (c *HTTPClient) DeleteComment(ctx context.Context, workID, commentID, userID string) error {
	in := map[string]string{"user_id": userID}
	_, err := c.doJSON(ctx, http.MethodDelete, c.endpoint("api", "works", workID, "comments", commentID), in, true)
	return err
}

func (c *HTTPClient) AdminLogin(ctx context.Context, password []byte) (string, error) {
	in := map[string]string{"password": string(password)}
	data, err := c.doJSON(ctx, http.MethodPost, c.endpoint("api", "admin", "login"), in, false)
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			return "", fmt.Errorf("%w: %v", common.ErrBadCredentials, err)
		}
		return "", err
	}
	return models.DecodeLogin(data)
}

func (c *HTTPClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrNetwork, err)
}

// statusError maps a non-2xx response to a sentinel, keeping the server's
// message when the body carries one.
func statusError(code int, body []byte) error {
	var e models.ErrorDTO
	msg := http.StatusText(code)
	if json.Unmarshal(body, &e) == nil && e.Text() != "" {
		msg = e.Text()
	}

	var kind error
	switch {
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		kind = common.ErrValidation
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		kind = common.ErrUnauthorized
	case code == http.StatusNotFound:
		kind = common.ErrNotFound
	case code == http.StatusRequestEntityTooLarge:
		kind = common.ErrValidation
	default:
		kind = common.ErrServer
	}
	return fmt.Errorf("%w: %d %s", kind, code, msg)
}
