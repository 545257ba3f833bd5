package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blues/nftsender/internal/logger"
	"github.com/blues/nftsender/internal/provider"
)

// Client 通过 HTTP 调用（可能在远端部署的）边缘函数
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient url 为完整的 crossmint-nft 函数地址
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{url: url, httpClient: httpClient}
}

// Mint 发送请求并解析成统一结构
func (c *Client) Mint(ctx context.Context, req Request) provider.Result {
	payload, err := json.Marshal(req)
	if err != nil {
		return provider.Failure(http.StatusBadRequest, fmt.Sprintf("encode request: %v", err), nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return provider.NetworkFailure(err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("accept", "application/json")

	logger.Debug("invoking edge function %s for record=%s", c.url, req.RecordId)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.Error("edge function invoke error: %v", err)
		return provider.NetworkFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return provider.NetworkFailure(err)
	}
	logger.Debug("edge function response (%d): %s", resp.StatusCode, raw)
	return provider.FromEnvelope(resp.StatusCode, raw)
}
