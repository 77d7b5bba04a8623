package services

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"examprep/internal/logger"
	"examprep/internal/version"
)

// maxCapturedBody bounds how much of an error body is kept for diagnostics.
const maxCapturedBody = 4096

// Exchange is one captured provider HTTP round trip.
type Exchange struct {
	Method     string              `json:"method"`
	URL        string              `json:"url"`
	Headers    map[string][]string `json:"headers"`
	StatusCode int                 `json:"statusCode,omitempty"`
	Error      string              `json:"error,omitempty"`
	Body       string              `json:"body,omitempty"` // only kept for non-2xx responses
	DurationMS int64               `json:"durationMs"`
}

// DebugTransportService wraps provider HTTP traffic so raw error bodies reach the
// log and never the user. It also stamps the examprep User-Agent on every request.
type DebugTransportService struct {
	mu          sync.RWMutex
	last        *Exchange
	base        http.RoundTripper
	initialized bool
}

// NewDebugTransportService creates a new DebugTransportService instance.
func NewDebugTransportService() *DebugTransportService {
	return &DebugTransportService{base: http.DefaultTransport}
}

// Name returns the service name "debug-transport" for registration.
func (d *DebugTransportService) Name() string {
	return "debug-transport"
}

// Initialize sets up the DebugTransportService for operation.
func (d *DebugTransportService) Initialize() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = nil
	d.initialized = true
	logger.ServiceOperation("debug-transport", "initialize", "completed")
	return nil
}

// CreateTransport returns a RoundTripper that records each exchange.
func (d *DebugTransportService) CreateTransport() http.RoundTripper {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.initialized {
		logger.Error("Debug transport service not initialized")
		return d.base
	}
	return &debugTransport{base: d.base, service: d}
}

// HTTPClient returns an http.Client using CreateTransport.
func (d *DebugTransportService) HTTPClient() *http.Client {
	return &http.Client{Transport: d.CreateTransport()}
}

// LastExchange returns the most recent captured exchange, or nil.
func (d *DebugTransportService) LastExchange() *Exchange {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.last == nil {
		return nil
	}
	copied := *d.last
	return &copied
}

// LastExchangeJSON returns LastExchange encoded as JSON, or "" when nothing was captured.
func (d *DebugTransportService) LastExchangeJSON() string {
	exchange := d.LastExchange()
	if exchange == nil {
		return ""
	}
	data, err := json.Marshal(exchange)
	if err != nil {
		return ""
	}
	return string(data)
}

func (d *DebugTransportService) record(exchange *Exchange) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = exchange
}

type debugTransport struct {
	base    http.RoundTripper
	service *DebugTransportService
}

// RoundTrip implements http.RoundTripper.
func (dt *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", version.UserAgent())

	exchange := &Exchange{
		Method:  req.Method,
		URL:     sanitizeURL(req.URL.String()),
		Headers: sanitizeHeaders(req.Header),
	}

	start := time.Now()
	resp, err := dt.base.RoundTrip(req)
	exchange.DurationMS = time.Since(start).Milliseconds()

	if err != nil {
		exchange.Error = err.Error()
		dt.service.record(exchange)
		logger.Debug("Provider request failed", "url", exchange.URL, "error", err, "duration_ms", exchange.DurationMS)
		return resp, err
	}

	exchange.StatusCode = resp.StatusCode
	if resp.StatusCode >= 300 && resp.Body != nil {
		body, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		resp.Body = io.NopCloser(bytes.NewReader(body))
		if readErr == nil {
			if len(body) > maxCapturedBody {
				body = body[:maxCapturedBody]
			}
			exchange.Body = string(body)
		}
		logger.Debug("Provider returned error status", "url", exchange.URL, "status", resp.StatusCode, "body", exchange.Body)
	} else {
		logger.Debug("Provider request completed", "url", exchange.URL, "status", resp.StatusCode, "duration_ms", exchange.DurationMS)
	}

	dt.service.record(exchange)
	return resp, nil
}

// sanitizeHeaders masks credentials.
func sanitizeHeaders(headers http.Header) map[string][]string {
	sanitized := make(map[string][]string, len(headers))
	for name, values := range headers {
		lowerName := strings.ToLower(name)
		if strings.Contains(lowerName, "authorization") ||
			strings.Contains(lowerName, "api-key") ||
			strings.Contains(lowerName, "token") {
			sanitized[name] = []string{"***[MASKED]***"}
			continue
		}
		sanitized[name] = append([]string(nil), values...)
	}
	return sanitized
}

// sanitizeURL masks a "key" query parameter.
func sanitizeURL(raw string) string {
	idx := strings.Index(raw, "key=")
	if idx < 0 {
		return raw
	}
	end := strings.IndexByte(raw[idx:], '&')
	if end < 0 {
		return raw[:idx] + "key=***"
	}
	return raw[:idx] + "key=***" + raw[idx+end:]
}
