package forwarder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"
)

// ClientTimeout bounds the connect, response and body phases of a report request.
const ClientTimeout = 10 * time.Second

// ErrInvalidEndpoint is returned by NewSender for endpoints that cannot be requested.
var ErrInvalidEndpoint = errors.New("invalid report endpoint")

// StatusError reports a non-2xx answer from the status page.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("remote endpoint returned status %d", e.StatusCode)
}

// Sender posts Reports to a single endpoint.
type Sender struct {
	client    *http.Client
	endpoint  string
	token     string
	userAgent string
	logger    *slog.Logger
}

// NewSender returns a Sender for endpoint. Redirects are not followed.
func NewSender(endpoint, token, userAgent string, logger *slog.Logger) (*Sender, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEndpoint, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidEndpoint, parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidEndpoint)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		client:    newClient(),
		endpoint:  endpoint,
		token:     token,
		userAgent: userAgent,
		logger:    logger,
	}, nil
}

func newClient() *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   ClientTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   ClientTimeout,
		ResponseHeaderTimeout: ClientTimeout,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConnsPerHost:   1,
	}
	return &http.Client{
		Transport: transport,
		// connect + write/read + body drain, each capped at ClientTimeout
		Timeout: 3 * ClientTimeout,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Send POSTs the report and returns nil only for a 2xx answer.
func (s *Sender) Send(ctx context.Context, report Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	s.logger.Debug("dispatching report",
		slog.String("url", s.endpoint),
		slog.String("replica", report.Replica),
		slog.Float64("cpu", report.Load.CPU),
		slog.Float64("ram", report.Load.RAM),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	req.SetBasicAuth("", s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("report dispatch failed", slog.String("error", err.Error()))
		return fmt.Errorf("send report: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		s.logger.Warn("report rejected", slog.Int("status", resp.StatusCode))
		return &StatusError{StatusCode: resp.StatusCode}
	}
	s.logger.Debug("report accepted", slog.Int("status", resp.StatusCode))
	return nil
}
