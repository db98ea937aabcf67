package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"treasury_dashboard/internal/domain/entity"
	"treasury_dashboard/pkg/metrics"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DeBankClient defines the interface for interacting with the DeBank Pro API.
type DeBankClient interface {
	GetTotalBalance(ctx context.Context, address string) (float64, error)
	GetTokenList(ctx context.Context, address string) ([]entity.RawToken, error)
	GetProtocolList(ctx context.Context, address string) ([]entity.RawProtocol, error)
}

// deBankClientImpl is the implementation of DeBankClient.
type deBankClientImpl struct {
	client    *fasthttp.Client
	baseURL   string
	accessKey string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewDeBankClient creates a new instance of deBankClientImpl.
func NewDeBankClient(baseURL, accessKey string, timeout time.Duration, logger *zap.Logger) DeBankClient {
	return &deBankClientImpl{
		client:    &fasthttp.Client{},
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		timeout:   timeout,
		logger:    logger.Named("DeBankClient"),
	}
}

type totalBalanceResponse struct {
	TotalUSDValue float64 `json:"total_usd_value"`
}

// GetTotalBalance fetches the wallet-level USD balance summary for an address.
func (c *deBankClientImpl) GetTotalBalance(ctx context.Context, address string) (float64, error) {
	var out totalBalanceResponse
	if err := c.doGet(ctx, "/v1/user/total_balance", url.Values{"id": {address}}, &out); err != nil {
		return 0, err
	}
	return out.TotalUSDValue, nil
}

// GetTokenList fetches the full token list for an address.
func (c *deBankClientImpl) GetTokenList(ctx context.Context, address string) ([]entity.RawToken, error) {
	var out []entity.RawToken
	if err := c.doGet(ctx, "/v1/user/all_token_list", url.Values{"id": {address}, "is_all": {"true"}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProtocolList fetches the complex protocol position list for an address.
func (c *deBankClientImpl) GetProtocolList(ctx context.Context, address string) ([]entity.RawProtocol, error) {
	var out []entity.RawProtocol
	if err := c.doGet(ctx, "/v1/user/all_complex_protocol_list", url.Values{"id": {address}}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// doGet executes a GET request against the DeBank API and decodes the JSON body into out.
func (c *deBankClientImpl) doGet(ctx context.Context, path string, params url.Values, out interface{}) error {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}
	c.logger.Debug("Requesting DeBank endpoint", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	req.Header.Set("AccessKey", c.accessKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to DeBank", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to DeBank (with default timeout)", zap.String("url", requestURL), zap.Error(err))
			return fmt.Errorf("failed to execute request to %s with default timeout: %w", requestURL, err)
		}
	}
	metrics.ObserveUpstreamRequest("debank", path, time.Since(start))

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK {
		c.logger.Error("DeBank returned non-OK status",
			zap.String("url", requestURL),
			zap.Int("statusCode", statusCode),
			zap.ByteString("body", resp.Body()))
		return fmt.Errorf("debank request to %s failed with status %d", path, statusCode)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		c.logger.Error("Failed to unmarshal DeBank response", zap.String("url", requestURL), zap.Error(err))
		return fmt.Errorf("failed to unmarshal debank response from %s: %w", path, err)
	}
	return nil
}
