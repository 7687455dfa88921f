package registry

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/flexprice/feeledger/internal/config"
	"github.com/flexprice/feeledger/internal/domain/payer"
	ierr "github.com/flexprice/feeledger/internal/errors"
	"github.com/flexprice/feeledger/internal/logger"
	"github.com/flexprice/feeledger/internal/types"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	defaultTimeout  = 5 * time.Second
	retryWaitMin    = 100 * time.Millisecond
	retryWaitMax    = 2 * time.Second
	headerAPIKey    = "X-API-Key"
	payersPathFmt   = "%s/payers/%s"
	maxErrorBodyLen = 512
)

// Client checks payers against the student registry over HTTP
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *retryablehttp.Client
	logger     *logger.Logger
}

// NewDirectory returns the registry backed payer.Directory. A registry is
// required in every deployment mode.
func NewDirectory(cfg *config.Configuration, log *logger.Logger) (payer.Directory, error) {
	if cfg.PayerDirectory.BaseURL == "" {
		return nil, ierr.NewError("payer_directory.base_url is not configured").
			WithHint("Set FEELEDGER_PAYER_DIRECTORY_BASE_URL to the student registry URL").
			Mark(ierr.ErrSystem)
	}
	return NewClient(cfg.PayerDirectory, log), nil
}

// NewClient builds a registry client with retries on transport errors and 5xx
func NewClient(cfg config.PayerDirectoryConfig, log *logger.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = cfg.RetryMax
	httpClient.RetryWaitMin = retryWaitMin
	httpClient.RetryWaitMax = retryWaitMax
	httpClient.HTTPClient.Timeout = timeout
	httpClient.Logger = log.GetRetryableHTTPLogger()

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     log,
	}
}

// Exists returns true on 200, false on 404 and an error otherwise
func (c *Client) Exists(ctx context.Context, payerID string) (bool, error) {
	endpoint := fmt.Sprintf(payersPathFmt, c.baseURL, url.PathEscape(payerID))

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to build payer registry request").
			Mark(ierr.ErrInternal)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		req.Header.Set(types.HeaderRequestID, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorw("payer registry request failed",
			"payer_id", payerID,
			"error", err)
		return false, ierr.WithError(err).
			WithHint("Unable to reach the payer registry").
			WithReportableDetails(map[string]any{
				"payer_id": payerID,
			}).
			Mark(ierr.ErrHTTPClient)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		c.logger.Errorw("unexpected payer registry response",
			"payer_id", payerID,
			"status", resp.StatusCode,
			"body", string(body))
		return false, ierr.NewErrorf("payer registry returned status %d", resp.StatusCode).
			WithHint("Unexpected response from the payer registry").
			WithReportableDetails(map[string]any{
				"payer_id": payerID,
				"status":   resp.StatusCode,
			}).
			Mark(ierr.ErrHTTPClient)
	}
}
