// Package keycache fetches and caches the identity provider's JWKS
// (RFC 7517) signing keys, keyed by key ID.
//
// Lookups take a read lock on the current snapshot; a miss forces a single
// refresh shared by all concurrent missers, so key rotation never fans out
// into parallel upstream fetches.
package keycache

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/sync/singleflight"
)

// ErrKeyNotFound is returned when a key ID is absent even after a refresh.
var ErrKeyNotFound = errors.New("keycache: key not found")

// Cache holds the current signing key set for one JWKS endpoint.
type Cache struct {
	jwksURL         string
	httpClient      *http.Client
	refreshInterval time.Duration

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey // kid → public key
	lastFetch time.Time

	group singleflight.Group
}

// Option configures the Cache.
type Option func(*Cache)

// WithHTTPClient sets a custom HTTP client for fetching the JWKS.
func WithHTTPClient(c *http.Client) Option {
	return func(k *Cache) { k.httpClient = c }
}

// WithRefreshInterval sets how long a fetched key set is considered fresh.
// Default: 1 hour.
func WithRefreshInterval(d time.Duration) Option {
	return func(k *Cache) { k.refreshInterval = d }
}

// New creates a cache for the given JWKS URL. No fetch happens until the
// first lookup.
func New(jwksURL string, opts ...Option) *Cache {
	c := &Cache{
		jwksURL:         jwksURL,
		httpClient:      http.DefaultClient,
		refreshInterval: 1 * time.Hour,
		keys:            make(map[string]*rsa.PublicKey),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// DiscoverJWKSURL resolves the jwks_uri from the issuer's OIDC discovery
// document. If discovery fails it falls back to the conventional
// <issuer>/.well-known/jwks.json location.
func DiscoverJWKSURL(ctx context.Context, issuer string) string {
	fallback := strings.TrimRight(issuer, "/") + "/.well-known/jwks.json"
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return fallback
	}
	var meta struct {
		JWKSURI string `json:"jwks_uri"`
	}
	if err := provider.Claims(&meta); err != nil || meta.JWKSURI == "" {
		return fallback
	}
	return meta.JWKSURI
}

// Key returns the RSA public key for the given kid. On a miss (or a stale
// set) it refreshes the key set; concurrent misses share one fetch.
func (c *Cache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, found := c.keys[kid]
	stale := time.Since(c.lastFetch) > c.refreshInterval
	c.mu.RUnlock()

	if found && !stale {
		return key, nil
	}

	if _, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	}); err != nil {
		if found {
			return key, nil // stale key beats no key when the endpoint is down
		}
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if key, ok := c.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("%w: kid %q", ErrKeyNotFound, kid)
}

// refresh fetches the JWKS and replaces the cached set wholesale.
func (c *Cache) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.jwksURL, nil)
	if err != nil {
		return fmt.Errorf("keycache: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("keycache: fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("keycache: fetch returned status %d", resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return fmt.Errorf("keycache: decode: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, jwk := range doc.Keys {
		if jwk.Kty != "RSA" || (jwk.Use != "" && jwk.Use != "sig") {
			continue
		}
		pub, err := jwk.rsaPublicKey()
		if err != nil {
			continue // skip malformed keys
		}
		keys[jwk.Kid] = pub
	}

	if len(keys) == 0 {
		return fmt.Errorf("keycache: no usable RSA signing keys at %s", c.jwksURL)
	}

	c.mu.Lock()
	c.keys = keys
	c.lastFetch = time.Now()
	c.mu.Unlock()

	return nil
}

// JWKS JSON types

type jwksDocument struct {
	Keys []jwkKey `json:"keys"`
}

type jwkKey struct {
	Kty string `json:"kty"`
	Use string `json:"use"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k *jwkKey) rsaPublicKey() (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
