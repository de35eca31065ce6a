package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"go-remote-handlebars/internal/interfaces"
	"go-remote-handlebars/internal/models"
)

// DefaultTimeout bounds a single template fetch
const DefaultTimeout = 10 * time.Second

// Ensure HTTPTransport implements interfaces.Transport
var _ interfaces.Transport = (*HTTPTransport)(nil)

// HTTPTransport fetches remote templates with net/http
type HTTPTransport struct {
	client *http.Client
	logger *zap.Logger
}

// NewHTTPTransport creates a transport. A nil client gets a default one with DefaultTimeout.
func NewHTTPTransport(client *http.Client, logger *zap.Logger) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPTransport{
		client: client,
		logger: logger,
	}
}

// Fetch issues a GET request. Any status is returned as a response; only
// transport failures are errors.
func (t *HTTPTransport) Fetch(ctx context.Context, req *models.Request) (*models.Response, error) {
	if req == nil || req.URL == "" {
		return nil, fmt.Errorf("%w: request url is required", models.ErrFetch)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %v", models.ErrFetch, req.URL, err)
	}
	for name, values := range req.Header {
		for _, value := range values {
			httpReq.Header.Add(name, value)
		}
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %w", models.ErrFetch, req.URL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body of %s: %w", models.ErrFetch, req.URL, err)
	}

	t.logger.Debug("Fetched remote template",
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)))

	return &models.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}
