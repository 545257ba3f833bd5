package provider

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

	"github.com/blues/nftsender/internal/config"
	"github.com/blues/nftsender/internal/logger"
	"golang.org/x/time/rate"
)

// Client 外部铸造服务的 REST 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient 创建客户端；超时为 0 时不设置超时，限流为 0 时不限流
func NewClient(cfg config.ProviderConfig) *Client {
	httpClient := &http.Client{}
	if cfg.TimeoutSeconds > 0 {
		httpClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		limiter:    limiter,
	}
}

// Response 原始响应
type Response struct {
	Status int
	Body   []byte
}

// OK 是否为 2xx
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// APIError 外部服务返回的非 2xx 响应
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.Status, e.Message)
}

// MintRequest 铸造请求体
type MintRequest struct {
	Recipient  string `json:"recipient"`
	TemplateId string `json:"templateId,omitempty"`
}

// MintNFT POST /collections/{id}/nfts；只有传输失败才返回 error
func (c *Client) MintNFT(ctx context.Context, apiKey, collectionID string, req MintRequest) (*Response, error) {
	return c.do(ctx, http.MethodPost, "/collections/"+url.PathEscape(collectionID)+"/nfts", apiKey, req)
}

// GetCollection GET /collections/{id}
func (c *Client) GetCollection(ctx context.Context, apiKey, collectionID string) (*Collection, error) {
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(collectionID), apiKey, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError(resp)
	}

	var collection Collection
	if err := json.Unmarshal(resp.Body, &collection); err != nil {
		return nil, fmt.Errorf("decode collection: %w", err)
	}
	return &collection, nil
}

// ListTemplates GET /collections/{id}/templates
func (c *Client) ListTemplates(ctx context.Context, apiKey, collectionID string) ([]Template, error) {
	resp, err := c.do(ctx, http.MethodGet, "/collections/"+url.PathEscape(collectionID)+"/templates", apiKey, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, apiError(resp)
	}
	return decodeTemplates(resp.Body)
}

func (c *Client) do(ctx context.Context, method, path, apiKey string, payload interface{}) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("accept", "application/json")
	if payload != nil {
		req.Header.Set("content-type", "application/json")
	}

	logger.Debug("provider request %s %s", method, path)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	logger.Debug("provider response %s %s (%d): %s", method, path, resp.StatusCode, raw)
	return &Response{Status: resp.StatusCode, Body: raw}, nil
}

func apiError(resp *Response) error {
	return &APIError{
		Status:  resp.Status,
		Message: ExtractMessage(Body(resp.Body), http.StatusText(resp.Status)),
	}
}
