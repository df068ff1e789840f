// internal/sink/httpbasic/client.go
package httpbasic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tamzrod/fatigue-relay/internal/sink"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// DefaultTimeout bounds one POST when none is configured.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response is kept for the log.
const maxErrorBody = 512

// Config is minimal transport config.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

// Sink POSTs snapshots as JSON with HTTP Basic authentication.
type Sink struct {
	cfg    Config
	client *http.Client
}

// New validates config and builds the sink. The client may be nil.
func New(cfg Config, client *http.Client) (*Sink, error) {
	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	if cfg.Endpoint == "" {
		return nil, errors.New("sink http: endpoint required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("sink http: access key and secret key required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Sink{cfg: cfg, client: client}, nil
}

func (s *Sink) Name() string { return "http" }

func (s *Sink) Deliver(ctx context.Context, snap status.Snapshot) error {
	body, err := status.Marshal(snap)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sink http: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", IdempotencyKey(snap))
	req.SetBasicAuth(s.cfg.AccessKey, s.cfg.SecretKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("sink http: post %s: %w", s.cfg.Endpoint, err)
	}
	defer resp.Body.Close()

	if sink.Success(resp.StatusCode) {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &sink.StatusError{
		Sink:   s.Name(),
		Code:   resp.StatusCode,
		Detail: strings.TrimSpace(string(detail)),
	}
}

// Close releases idle keep-alive connections.
func (s *Sink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// IdempotencyKey is stable for a given device and timestamp, so a receiver
// can drop the duplicates that at-least-once delivery produces.
func IdempotencyKey(snap status.Snapshot) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(snap.DeviceID+"/"+snap.Timestamp.String())).String()
}
