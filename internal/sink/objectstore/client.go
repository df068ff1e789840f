// internal/sink/objectstore/client.go
package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/tamzrod/fatigue-relay/internal/sink"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// DefaultFolder is the key prefix used when none is configured.
const DefaultFolder = "fatigue_data/"

// Config is minimal object store config.
type Config struct {
	Endpoint  string // e.g. https://obs.cn-east-3.myhuaweicloud.com
	AccessKey string
	SecretKey string
	Bucket    string
	Folder    string
	Region    string
	Timeout   time.Duration
}

// putter is the one object store call the sink makes.
type putter interface {
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Sink PUTs each snapshot as its own object.
type Sink struct {
	cfg    Config
	client putter
}

// New connects an S3 compatible client to cfg.Endpoint.
func New(cfg Config) (*Sink, error) {
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errors.New("sink objectstore: access key and secret key required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("sink objectstore: bucket required")
	}

	host, secure, err := splitEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	opts := &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	}
	if cfg.Timeout > 0 {
		tr, err := minio.DefaultTransport(secure)
		if err != nil {
			return nil, fmt.Errorf("sink objectstore: transport: %w", err)
		}
		tr.ResponseHeaderTimeout = cfg.Timeout
		opts.Transport = tr
	}

	cli, err := minio.New(host, opts)
	if err != nil {
		return nil, fmt.Errorf("sink objectstore: client: %w", err)
	}
	return newWithClient(cfg, cli), nil
}

func newWithClient(cfg Config, cli putter) *Sink {
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	return &Sink{cfg: cfg, client: cli}
}

func (s *Sink) Name() string { return "objectstore" }

func (s *Sink) Deliver(ctx context.Context, snap status.Snapshot) error {
	body, err := status.Marshal(snap)
	if err != nil {
		return err
	}

	key := ObjectKey(s.cfg.Folder, snap)
	_, err = s.client.PutObject(ctx, s.cfg.Bucket, key, bytes.NewReader(body), int64(len(body)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err == nil {
		return nil
	}

	if resp := minio.ToErrorResponse(err); resp.StatusCode != 0 && !sink.Success(resp.StatusCode) {
		return &sink.StatusError{
			Sink:   s.Name(),
			Code:   resp.StatusCode,
			Detail: fmt.Sprintf("%s %s/%s", resp.Code, s.cfg.Bucket, key),
		}
	}
	return fmt.Errorf("sink objectstore: put %s/%s: %w", s.cfg.Bucket, key, err)
}

// Close is a no-op: the client keeps no session.
func (s *Sink) Close() error { return nil }

// keyReplacer maps characters that are unsafe in object keys.
var keyReplacer = strings.NewReplacer(
	":", "-",
	"/", "-",
	"\\", "-",
	" ", "_",
	"?", "-",
	"#", "-",
	"*", "-",
	"\"", "-",
	"<", "-",
	">", "-",
	"|", "-",
)

// ObjectKey builds "<folder><device_id>_<timestamp>.json".
func ObjectKey(folder string, snap status.Snapshot) string {
	return folder + keyReplacer.Replace(snap.DeviceID) + "_" + keyReplacer.Replace(snap.Timestamp.String()) + ".json"
}

func splitEndpoint(endpoint string) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, errors.New("sink objectstore: endpoint required")
	}
	if !strings.Contains(endpoint, "://") {
		return endpoint, true, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("sink objectstore: endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("sink objectstore: endpoint %q has no host", endpoint)
	}
	switch u.Scheme {
	case "https":
		return u.Host, true, nil
	case "http":
		return u.Host, false, nil
	default:
		return "", false, fmt.Errorf("sink objectstore: unsupported scheme %q", u.Scheme)
	}
}
