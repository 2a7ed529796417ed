// Package http provides a handler that submits reports to a crash ingestion
// endpoint as JSON over HTTP with bearer authentication.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"

	"github.com/strongdm/crash-relay/pkg/crashrelay"
)

// ReportsEndpoint is the ingestion path appended to the service URL.
const ReportsEndpoint = "/v1/ingest/crash-reports"

// Client is the minimal interface for making HTTP requests.
// *http.Client satisfies this interface.
type Client interface {
	Do(req *http.Request) (*http.Response, error)
}

// HandlerOption configures the HTTP handler.
type HandlerOption func(*handlerConfig)

type handlerConfig struct {
	client  Client
	appName string
}

// WithClient injects a custom HTTP client. If not provided, a default
// http.Client is used.
func WithClient(client Client) HandlerOption {
	return func(c *handlerConfig) {
		c.client = client
	}
}

// WithAppName sets the X-Crash-Relay-App header value for server-side
// attribution.
func WithAppName(name string) HandlerOption {
	return func(c *handlerConfig) {
		c.appName = name
	}
}

// httpHandler submits reports to an ingestion service.
type httpHandler struct {
	client     Client
	serviceURL string
	authKey    string
	appName    string
	hostname   string
}

// NewHandler creates a handler that POSTs reports to
// serviceURL+ReportsEndpoint. A trailing slash on serviceURL is trimmed.
func NewHandler(serviceURL, authKey string, opts ...HandlerOption) crashrelay.Handler {
	cfg := &handlerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.client == nil {
		cfg.client = &http.Client{}
	}

	if len(serviceURL) > 0 && serviceURL[len(serviceURL)-1] == '/' {
		serviceURL = serviceURL[:len(serviceURL)-1]
	}

	return &httpHandler{
		client:     cfg.client,
		serviceURL: serviceURL,
		authKey:    authKey,
		appName:    cfg.appName,
		hostname:   hostname(),
	}
}

// Handle submits one report to the ingestion service.
func (h *httpHandler) Handle(ctx context.Context, report crashrelay.Report) error {
	body, err := json.Marshal(report.ToWire())
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	url := h.serviceURL + ReportsEndpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.authKey)
	req.Header.Set("X-Crash-Relay-Hostname", h.hostname)
	req.Header.Set("X-Crash-Relay-OSArch", runtime.GOOS+"/"+runtime.GOARCH)
	if h.appName != "" {
		req.Header.Set("X-Crash-Relay-App", h.appName)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}

// hostname returns the current hostname.
func hostname() string {
	if h, err := os.Hostname(); err == nil {
		return h
	}
	return "unknown"
}
