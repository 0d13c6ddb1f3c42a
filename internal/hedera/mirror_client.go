package hedera

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"hedera-order-bot-go/internal/config"
)

// MirrorClientInterface defines the mirror-node REST operations the engine
// depends on.
type MirrorClientInterface interface {
	GetToken(ctx context.Context, tokenID string) (*TokenInfo, error)
	GetContractResult(ctx context.Context, txHash string) (*ContractResult, error)
}

// TokenInfo is the subset of mirror-node token metadata the engine uses.
type TokenInfo struct {
	TokenID  string
	Symbol   string
	Decimals int32
}

// ContractResult carries the outcome details of a contract execution as seen
// by the mirror node, notably the revert reason when a call failed.
type ContractResult struct {
	Status       string
	ErrorMessage string
	GasUsed      int64
}

// MirrorClient is a client for the Hedera mirror-node REST API.
type MirrorClient struct {
	client  *resty.Client
	logger  *zap.Logger
	limiter *rate.Limiter

	mu    sync.RWMutex
	cache map[string]*TokenInfo // token metadata is immutable once created
}

var _ MirrorClientInterface = (*MirrorClient)(nil)

// NewMirrorClient creates a new mirror-node REST client.
func NewMirrorClient(cfg *config.Hedera, logger *zap.Logger) *MirrorClient {
	client := resty.New().SetBaseURL(cfg.MirrorBaseURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &MirrorClient{
		client:  client,
		logger:  logger,
		limiter: limiter,
		cache:   make(map[string]*TokenInfo),
	}
}

// doRequest executes a request with rate limiting and bounded retries on
// throttling and server errors.
func (c *MirrorClient) doRequest(ctx context.Context, method, url string, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing mirror request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = req.SetContext(ctx).Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && resp.StatusCode() > 0 {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			} else if statusCode == http.StatusNotFound {
				return nil, fmt.Errorf("mirror node: %s not found", url)
			}
		} else {
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("mirror request failed with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		c.logger.Warn("Mirror request failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("mirror request failed after %d attempts: %w", maxRetries, err)
}

// tokenResponse mirrors /api/v1/tokens/{id}. Decimals arrives as a string.
type tokenResponse struct {
	TokenID  string `json:"token_id"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// GetToken fetches token metadata, serving repeated lookups from the cache.
func (c *MirrorClient) GetToken(ctx context.Context, tokenID string) (*TokenInfo, error) {
	c.mu.RLock()
	if info, ok := c.cache[tokenID]; ok {
		c.mu.RUnlock()
		return info, nil
	}
	c.mu.RUnlock()

	var tr tokenResponse
	req := c.client.R().
		SetResult(&tr).
		SetHeader("Content-Type", "application/json")

	if _, err := c.doRequest(ctx, "GET", "/tokens/"+tokenID, req); err != nil {
		return nil, fmt.Errorf("failed to get token %s: %w", tokenID, err)
	}

	decimals, err := strconv.ParseInt(tr.Decimals, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("token %s has unparseable decimals %q: %w", tokenID, tr.Decimals, err)
	}

	info := &TokenInfo{
		TokenID:  tr.TokenID,
		Symbol:   tr.Symbol,
		Decimals: int32(decimals),
	}

	c.mu.Lock()
	c.cache[tokenID] = info
	c.mu.Unlock()

	return info, nil
}

// contractResultResponse mirrors /api/v1/contracts/results/{hash}.
type contractResultResponse struct {
	Result       string `json:"result"`
	ErrorMessage string `json:"error_message"`
	GasUsed      int64  `json:"gas_used"`
}

// GetContractResult fetches the mirror node's view of a contract execution.
// Used to surface revert reasons, which the relay receipt does not carry.
func (c *MirrorClient) GetContractResult(ctx context.Context, txHash string) (*ContractResult, error) {
	var cr contractResultResponse
	req := c.client.R().
		SetResult(&cr).
		SetHeader("Content-Type", "application/json")

	if _, err := c.doRequest(ctx, "GET", "/contracts/results/"+txHash, req); err != nil {
		return nil, fmt.Errorf("failed to get contract result %s: %w", txHash, err)
	}

	return &ContractResult{
		Status:       cr.Result,
		ErrorMessage: cr.ErrorMessage,
		GasUsed:      cr.GasUsed,
	}, nil
}
