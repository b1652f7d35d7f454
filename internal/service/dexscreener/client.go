package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/service/ratelimit"
	pkgcache "PairPulse/pkg/cache"
	xhttp "PairPulse/pkg/http"
	applogger "PairPulse/pkg/logger"
)

// DefaultImageURL is shown when a pair has no logo.
const DefaultImageURL = "https://i.imgur.com/7YUyFyl.png"

const (
	endpointTokens = "tokens"
	endpointPairs  = "pairs"
)

// Option configures Client.
type Option func(*Client)

// WithLimiter throttles outgoing requests per endpoint.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithCache caches successful resolves for ttl.
func WithCache(svc pkgcache.Service, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = svc
		c.cacheTTL = ttl
	}
}

// WithLogger sets the logger used for cache failures.
func WithLogger(l *applogger.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client implements QuoteSource backed by the Dexscreener REST API.
type Client struct {
	baseURL  string
	http     *xhttp.Client
	limiter  *ratelimit.Limiter
	cache    pkgcache.Service
	cacheTTL time.Duration
	logger   *applogger.Logger
}

// New creates a Dexscreener QuoteSource.
func New(baseURL string, httpClient *xhttp.Client, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  applogger.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ drepo.QuoteSource = (*Client)(nil)

// Resolve looks up the pairs trading a token and returns the first one.
func (c *Client) Resolve(ctx context.Context, identifier string) (*models.TokenInfo, error) {
	identifier = strings.TrimSpace(identifier)
	key := pkgcache.GenerateKey("resolve", strings.ToLower(identifier))

	if c.cache != nil {
		if cached, err := pkgcache.GetTyped[models.TokenInfo](ctx, c.cache, key); err == nil {
			info, err := c.refresh(ctx, cached)
			if err == nil {
				return info, nil
			}
			c.logger.Debug("cached resolve refresh failed", applogger.String("identifier", identifier), applogger.Error(err))
		} else if !errors.Is(err, pkgcache.ErrCacheMiss) {
			c.logger.Warn("resolve cache read failed", applogger.Error(err))
		}
	}

	if err := c.allow(endpointTokens); err != nil {
		return nil, err
	}

	var res tokensResponse
	u := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, url.PathEscape(identifier))
	if err := c.http.GetJSON(ctx, u, &res); err != nil {
		return nil, c.wrap("resolve "+identifier, err)
	}
	if len(res.Pairs) == 0 || res.Pairs[0].PairAddress == "" {
		return nil, fmt.Errorf("resolve %s: %w", identifier, drepo.ErrTokenNotFound)
	}

	info := toTokenInfo(res.Pairs[0])
	if c.cache != nil && c.cacheTTL > 0 {
		if err := c.cache.Set(ctx, key, identity(info), c.cacheTTL); err != nil {
			c.logger.Warn("resolve cache write failed", applogger.Error(err))
		}
	}
	return &info, nil
}

// refresh re-reads the market snapshot of a cached pair so a rescan never
// shows figures older than one request.
func (c *Client) refresh(ctx context.Context, cached models.TokenInfo) (*models.TokenInfo, error) {
	p, err := c.pair(ctx, cached.Instrument)
	if err != nil {
		return nil, err
	}
	info := toTokenInfo(*p)
	if info.Instrument.IsZero() {
		info.Instrument = cached.Instrument
	}
	if info.Name == "" {
		info.Name, info.Symbol = cached.Name, cached.Symbol
	}
	return &info, nil
}

// identity strips the market fields; only the pair and its metadata are cached.
func identity(info models.TokenInfo) models.TokenInfo {
	info.PriceUSD = 0
	info.LiquidityUSD = 0
	info.MarketCap = 0
	info.Volume24h = 0
	return info
}

// Poll fetches the current USD price of a pair.
func (c *Client) Poll(ctx context.Context, inst models.Instrument) (*models.Quote, error) {
	if inst.IsZero() {
		return nil, fmt.Errorf("poll: empty instrument: %w", drepo.ErrNoPrice)
	}
	p, err := c.pair(ctx, inst)
	if err != nil {
		return nil, err
	}
	if !p.PriceUSD.Valid || !p.PriceUSD.Decimal.IsPositive() {
		return nil, fmt.Errorf("poll %s: %w", inst.Key(), drepo.ErrNoPrice)
	}
	return &models.Quote{Instrument: inst, PriceUSD: floatOf(p.PriceUSD)}, nil
}

func (c *Client) pair(ctx context.Context, inst models.Instrument) (*pair, error) {
	if err := c.allow(endpointPairs); err != nil {
		return nil, err
	}

	var res pairsResponse
	u := fmt.Sprintf("%s/latest/dex/pairs/%s/%s", c.baseURL, url.PathEscape(inst.ChainID), url.PathEscape(inst.PairAddress))
	if err := c.http.GetJSON(ctx, u, &res); err != nil {
		return nil, c.wrap("poll "+inst.Key(), err)
	}
	p := res.first()
	if p == nil {
		return nil, fmt.Errorf("poll %s: %w", inst.Key(), drepo.ErrNoPrice)
	}
	return p, nil
}

func (c *Client) allow(endpoint string) error {
	if c.limiter != nil && !c.limiter.Allow(endpoint) {
		return fmt.Errorf("%s: %w", endpoint, drepo.ErrRateLimited)
	}
	return nil
}

func (c *Client) wrap(op string, err error) error {
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return fmt.Errorf("%s: %w", op, drepo.ErrTokenNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func toTokenInfo(p pair) models.TokenInfo {
	info := models.TokenInfo{
		Instrument: models.Instrument{ChainID: p.ChainID, PairAddress: p.PairAddress},
		Name:       p.BaseToken.Name,
		Symbol:     p.BaseToken.Symbol,
		ImageURL:   DefaultImageURL,
		PriceUSD:   floatOf(p.PriceUSD),
		MarketCap:  floatOf(p.FDV),
	}
	if p.Info != nil && p.Info.ImageURL != "" {
		info.ImageURL = p.Info.ImageURL
	}
	if p.Liquidity != nil {
		info.LiquidityUSD = floatOf(p.Liquidity.USD)
	}
	if p.Volume != nil {
		info.Volume24h = floatOf(p.Volume.H24)
	}
	return info
}
