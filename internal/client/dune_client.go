package client

import (
	"context"
	"fmt"
	"strings"
	"time"

	"treasury_dashboard/pkg/metrics"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// DuneClient defines the interface for fetching stored query results
// from the Dune Analytics API.
type DuneClient interface {
	GetQueryRows(ctx context.Context, queryID int64) ([]map[string]interface{}, error)
}

// duneClientImpl is the implementation of DuneClient.
type duneClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewDuneClient creates a new instance of duneClientImpl.
func NewDuneClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) DuneClient {
	return &duneClientImpl{
		client:  &fasthttp.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("DuneClient"),
	}
}

type duneResultsResponse struct {
	Result struct {
		Rows []map[string]interface{} `json:"rows"`
	} `json:"result"`
}

// GetQueryRows fetches the latest stored result rows of a query. Row keys are
// query-defined, so rows are returned as loosely typed maps for the transformer.
func (c *duneClientImpl) GetQueryRows(ctx context.Context, queryID int64) ([]map[string]interface{}, error) {
	requestURL := fmt.Sprintf("%s/api/v1/query/%d/results", c.baseURL, queryID)
	c.logger.Debug("Requesting Dune query results", zap.Int64("queryID", queryID), zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Dune-API-Key", c.apiKey)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	start := time.Now()
	deadline, ok := ctx.Deadline()
	if ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute request to Dune", zap.Int64("queryID", queryID), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request for query %d: %w", queryID, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute request to Dune (with default timeout)", zap.Int64("queryID", queryID), zap.Error(err))
			return nil, fmt.Errorf("failed to execute request for query %d with default timeout: %w", queryID, err)
		}
	}
	metrics.ObserveUpstreamRequest("dune", "query_results", time.Since(start))

	statusCode := resp.StatusCode()
	if statusCode != fasthttp.StatusOK {
		c.logger.Error("Dune returned non-OK status",
			zap.Int64("queryID", queryID),
			zap.Int("statusCode", statusCode))
		return nil, fmt.Errorf("dune query %d failed with status %d", queryID, statusCode)
	}

	var out duneResultsResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		c.logger.Error("Failed to unmarshal Dune response", zap.Int64("queryID", queryID), zap.Error(err))
		return nil, fmt.Errorf("failed to unmarshal dune response for query %d: %w", queryID, err)
	}
	c.logger.Debug("Dune query results received", zap.Int64("queryID", queryID), zap.Int("rows", len(out.Result.Rows)))
	return out.Result.Rows, nil
}
