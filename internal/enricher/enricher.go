package enricher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Default configuration values. The per-gateway timeout must stay well
// below the caller's overall enrichment budget so a hung gateway leaves
// room for the fallbacks.
const (
	DefaultGatewayTimeout = 2 * time.Second
	maxMetadataBytes      = 1 << 20
)

// DefaultGateways are the public IPFS gateways tried in order.
var DefaultGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://dweb.link/ipfs/",
}

// reservedKeys are authoritative on-chain fields that off-chain metadata
// may never override.
var reservedKeys = map[string]struct{}{
	"address": {},
	"name":    {},
	"ticker":  {},
}

// Fetcher resolves token metadata from IPFS with ordered gateway fallback.
// Failures are non-fatal; callers get their base fields back unchanged.
type Fetcher struct {
	client   *http.Client
	gateways []string
	timeout  time.Duration
	log      *zap.Logger
}

// Option configures Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// WithGateways replaces the gateway list. Each entry is a base URL the CID
// is appended to.
func WithGateways(gateways []string) Option {
	return func(f *Fetcher) {
		f.gateways = gateways
	}
}

// WithGatewayTimeout sets the per-gateway timeout.
func WithGatewayTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a metadata fetcher over the default public gateways.
func NewFetcher(log *zap.Logger, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:   &http.Client{},
		gateways: DefaultGateways,
		timeout:  DefaultGatewayTimeout,
		log:      log,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CID extracts the content identifier from a token URI as its last
// non-empty path segment. Handles both gateway URLs and ipfs:// URIs.
func CID(uri string) (string, bool) {
	trimmed := strings.TrimPrefix(uri, "ipfs://")
	segments := strings.Split(trimmed, "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if seg := strings.TrimSpace(segments[i]); seg != "" {
			return seg, true
		}
	}
	return "", false
}

// Enrich resolves the URI's metadata and merges it over the base fields.
// Base fields win for reserved keys; on any failure the base map is
// returned unchanged.
func (f *Fetcher) Enrich(ctx context.Context, uri string, base map[string]interface{}) map[string]interface{} {
	cid, ok := CID(uri)
	if !ok {
		return base
	}

	meta, err := f.fetch(ctx, cid)
	if err != nil {
		f.log.Warn("metadata fetch failed on all gateways",
			zap.String("cid", cid), zap.Error(err))
		return base
	}

	merged := make(map[string]interface{}, len(base)+len(meta))
	for k, v := range meta {
		merged[k] = v
	}
	for k, v := range base {
		if _, reserved := reservedKeys[k]; reserved {
			merged[k] = v
			continue
		}
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	return merged
}

// fetch tries each gateway in order and returns the first JSON object.
func (f *Fetcher) fetch(ctx context.Context, cid string) (map[string]interface{}, error) {
	var lastErr error
	for _, gateway := range f.gateways {
		meta, err := f.fetchOne(ctx, gateway+cid)
		if err == nil {
			return meta, nil
		}
		lastErr = err
		f.log.Debug("gateway failed",
			zap.String("gateway", gateway), zap.String("cid", cid), zap.Error(err))

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no gateways configured")
	}
	return nil, lastErr
}

func (f *Fetcher) fetchOne(ctx context.Context, url string) (map[string]interface{}, error) {
	reqCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var meta map[string]interface{}
	if err := json.Unmarshal(body, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return meta, nil
}
