package catalogapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"merchant-studio/internal/domain"
	"merchant-studio/pkg/logger"
	"merchant-studio/pkg/storage"
	"merchant-studio/pkg/utils"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// ImageNormalizer re-encodes an uploaded image before it is stored.
type ImageNormalizer func(r io.Reader, filename string) ([]byte, string, error)

// Client talks to the upstream catalog API on behalf of the merchant whose bearer
// credential travels in the request context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	objects    storage.ObjectStore
	normalize  ImageNormalizer
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit throttles outbound calls. rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithObjectStore sets where media binaries go before they are registered upstream.
func WithObjectStore(store storage.ObjectStore) Option {
	return func(c *Client) { c.objects = store }
}

func WithImageNormalizer(fn ImageNormalizer) Option {
	return func(c *Client) { c.normalize = fn }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		normalize:  utils.ProcessImage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ domain.CatalogGateway = (*Client)(nil)

// call describes one round trip. write marks operations whose 4xx rejections are
// reported as persistence errors instead of network errors.
type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   interface{}
	out    interface{}
	write  bool
}

// apiError is the error body shape of the catalog API.
type apiError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Field   string `json:"field"`
}

func (c *Client) do(ctx context.Context, cl call) error {
	token, ok := domain.BearerFrom(ctx)
	if !ok {
		return &domain.NetworkError{Op: cl.op, Err: domain.ErrMissingBearer}
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return &domain.NetworkError{Op: cl.op, Err: err}
	}

	var body io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("%s: marshal payload: %w", cl.op, err)
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + cl.path
	if len(cl.query) > 0 {
		target += "?" + cl.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, target, body)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", cl.op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &domain.NetworkError{Op: cl.op, Err: err}
		logger.UpstreamCall(ctx, cl.op, 0, time.Since(start), netErr)
		return netErr
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := statusError(cl, resp)
		logger.UpstreamCall(ctx, cl.op, resp.StatusCode, time.Since(start), statusErr)
		return statusErr
	}

	if cl.out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(cl.out); err != nil && !errors.Is(err, io.EOF) {
			decodeErr := &domain.NetworkError{Op: cl.op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
			logger.UpstreamCall(ctx, cl.op, resp.StatusCode, time.Since(start), decodeErr)
			return decodeErr
		}
	}
	logger.UpstreamCall(ctx, cl.op, resp.StatusCode, time.Since(start), nil)
	return nil
}

// statusError maps a non-2xx answer. Only validation style rejections of writes carry
// the server's message; everything else is a retryable network failure.
func statusError(cl call, resp *http.Response) error {
	if cl.write {
		switch resp.StatusCode {
		case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
			var body apiError
			raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = json.Unmarshal(raw, &body)
			msg := body.Message
			if msg == "" {
				msg = body.Error
			}
			return &domain.PersistenceError{
				Op:      cl.op,
				Field:   body.Field,
				Message: msg,
				Status:  resp.StatusCode,
			}
		}
	}
	return &domain.NetworkError{Op: cl.op, Status: resp.StatusCode}
}

func escape(id string) string {
	return url.PathEscape(id)
}
