package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/adamkadaban/hotfix-tui/internal/catalog"
)

// SessionCookie is the cookie that carries the dashboard session id.
const SessionCookie = "user-session"

const maxResponseBytes = 16 << 20

// HTTPOptions configure an HTTPSource.
type HTTPOptions struct {
	BaseURL string
	Session string
	Timeout time.Duration
	Retry   *RetryConfig
	Client  *http.Client
	Logger  *zap.Logger
}

// HTTPSource reads the catalog and node data from the dashboard REST backend.
type HTTPSource struct {
	base    *url.URL
	session string
	client  *http.Client
	retry   RetryConfig
	logger  *zap.Logger
}

// NewHTTPSource validates the base URL and returns a source.
func NewHTTPSource(opts HTTPOptions) (*HTTPSource, error) {
	base, err := url.Parse(strings.TrimSpace(opts.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must be http or https", opts.BaseURL)
	}
	if base.Path == "" {
		base.Path = "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	retry := DefaultRetryConfig()
	if opts.Retry != nil {
		retry = *opts.Retry
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &HTTPSource{
		base:    base,
		session: opts.Session,
		client:  opts.Client,
		retry:   retry,
		logger:  opts.Logger.Named("http-source"),
	}, nil
}

// Catalog fetches the hotfix manifest.
func (s *HTTPSource) Catalog(ctx context.Context) (catalog.Manifest, error) {
	body, err := s.get(ctx, "cloud_manifest")
	if err != nil {
		return catalog.Manifest{}, err
	}
	return catalog.Decode(body)
}

// Nodes fetches the node roster.
func (s *HTTPSource) Nodes(ctx context.Context) ([]Node, error) {
	body, err := s.get(ctx, "list_nodes")
	if err != nil {
		return nil, err
	}
	var nodes []Node
	if err := json.Unmarshal(body, &nodes); err != nil {
		return nil, fmt.Errorf("decode node list: %w", err)
	}
	if nodes == nil {
		nodes = []Node{}
	}
	return nodes, nil
}

// NodeData fetches the role, status and event log of one node. Node ids may
// contain slashes; they are kept as path separators.
func (s *HTTPSource) NodeData(ctx context.Context, id string) (NodeData, error) {
	if id == "" {
		return NodeData{}, ErrNotFound
	}
	body, err := s.get(ctx, "node_data", id)
	if err != nil {
		return NodeData{}, err
	}
	var data NodeData
	if err := json.Unmarshal(body, &data); err != nil {
		return NodeData{}, fmt.Errorf("decode node data: %w", err)
	}
	return data, nil
}

func (s *HTTPSource) get(ctx context.Context, elems ...string) ([]byte, error) {
	target := s.base.JoinPath(elems...)
	build := func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if s.session != "" {
			req.AddCookie(&http.Cookie{Name: SessionCookie, Value: s.session})
		}
		return req, nil
	}

	resp, err := doWithRetry(ctx, s.client, build, s.retry, s.logger)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", target.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", target.Path, err)
	}
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("get %s: %w", target.Path, ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &StatusError{StatusCode: resp.StatusCode, Path: target.Path, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}

// StatusError reports a non-success response that is not retried.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("get %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("get %s: status %d: %s", e.Path, e.StatusCode, e.Body)
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
