package dexscreener

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"PairPulse/internal/domain/models"
	drepo "PairPulse/internal/domain/repository"
	"PairPulse/internal/service/ratelimit"
	pkgcache "PairPulse/pkg/cache"
	xhttp "PairPulse/pkg/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokensBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [{
    "chainId": "solana",
    "dexId": "raydium",
    "pairAddress": "PAIR1",
    "baseToken": {"address": "TOK", "name": "Dog Wif Hat", "symbol": "WIF"},
    "quoteToken": {"address": "SOL", "name": "Wrapped SOL", "symbol": "SOL"},
    "priceUsd": "2.345",
    "liquidity": {"usd": 1234567.89},
    "fdv": 2300000000,
    "volume": {"h24": 98765.4},
    "info": {"imageUrl": "https://img.example/wif.png"}
  }]
}`

func newTestServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestResolve(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/TOK", r.URL.Path)
		_, _ = w.Write([]byte(tokensBody))
	})

	c := New(srv.URL+"/", xhttp.NewClient())
	info, err := c.Resolve(context.Background(), " TOK ")
	require.NoError(t, err)

	assert.Equal(t, models.Instrument{ChainID: "solana", PairAddress: "PAIR1"}, info.Instrument)
	assert.Equal(t, "Dog Wif Hat", info.Name)
	assert.Equal(t, "WIF", info.Symbol)
	assert.InDelta(t, 2.345, info.PriceUSD, 1e-12)
	assert.InDelta(t, 1234567.89, info.LiquidityUSD, 1e-6)
	assert.InDelta(t, 2.3e9, info.MarketCap, 1)
	assert.InDelta(t, 98765.4, info.Volume24h, 1e-6)
	assert.Equal(t, "https://img.example/wif.png", info.ImageURL)
}

func TestResolve_NoPairsIsNotFound(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":null}`))
	})

	_, err := New(srv.URL, xhttp.NewClient()).Resolve(context.Background(), "nope")
	assert.ErrorIs(t, err, drepo.ErrTokenNotFound)
}

func TestResolve_DefaultImage(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[{"chainId":"bsc","pairAddress":"P","baseToken":{"name":"N","symbol":"S"},"priceUsd":"1"}]}`))
	})

	info, err := New(srv.URL, xhttp.NewClient()).Resolve(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, DefaultImageURL, info.ImageURL)
	assert.Zero(t, info.LiquidityUSD)
}

const pairBody = `{"pair":{
  "chainId": "solana",
  "pairAddress": "PAIR1",
  "baseToken": {"address": "TOK", "name": "Dog Wif Hat", "symbol": "WIF"},
  "priceUsd": "3.5",
  "liquidity": {"usd": 2000},
  "fdv": 3400000000,
  "volume": {"h24": 10}
}}`

func TestResolve_CachedHitRefreshesMarketFields(t *testing.T) {
	var tokenHits, pairHits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest/dex/tokens/TOK", "/latest/dex/tokens/tok":
			tokenHits.Add(1)
			_, _ = w.Write([]byte(tokensBody))
		case "/latest/dex/pairs/solana/PAIR1":
			pairHits.Add(1)
			_, _ = w.Write([]byte(pairBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	c := New(srv.URL, xhttp.NewClient(), WithCache(mc, time.Minute))

	first, err := c.Resolve(context.Background(), "TOK")
	require.NoError(t, err)
	assert.InDelta(t, 2.345, first.PriceUSD, 1e-12)

	cached, err := pkgcache.GetTyped[models.TokenInfo](context.Background(), mc, pkgcache.GenerateKey("resolve", "tok"))
	require.NoError(t, err)
	assert.Equal(t, first.Instrument, cached.Instrument)
	assert.Zero(t, cached.PriceUSD, "market fields are not cached")
	assert.Zero(t, cached.LiquidityUSD)

	second, err := c.Resolve(context.Background(), "tok")
	require.NoError(t, err)

	assert.Equal(t, int32(1), tokenHits.Load(), "token search is served from cache")
	assert.Equal(t, int32(1), pairHits.Load())
	assert.Equal(t, first.Instrument, second.Instrument)
	assert.Equal(t, "Dog Wif Hat", second.Name)
	assert.InDelta(t, 3.5, second.PriceUSD, 1e-12)
	assert.InDelta(t, 2000, second.LiquidityUSD, 1e-9)
	assert.InDelta(t, 10, second.Volume24h, 1e-9)
}

func TestResolve_CachedRefreshFailureFallsBackToSearch(t *testing.T) {
	var tokenHits atomic.Int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/latest/dex/pairs/solana/PAIR1" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		tokenHits.Add(1)
		_, _ = w.Write([]byte(tokensBody))
	})

	mc := pkgcache.NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	c := New(srv.URL, xhttp.NewClient(), WithCache(mc, time.Minute))

	_, err := c.Resolve(context.Background(), "TOK")
	require.NoError(t, err)
	info, err := c.Resolve(context.Background(), "TOK")
	require.NoError(t, err)

	assert.Equal(t, int32(2), tokenHits.Load())
	assert.InDelta(t, 2.345, info.PriceUSD, 1e-12)
}

func TestPoll(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/pairs/solana/PAIR1", r.URL.Path)
		_, _ = w.Write([]byte(`{"pair":{"chainId":"solana","pairAddress":"PAIR1","priceUsd":"0.00001234"}}`))
	})

	inst := models.Instrument{ChainID: "solana", PairAddress: "PAIR1"}
	q, err := New(srv.URL, xhttp.NewClient()).Poll(context.Background(), inst)
	require.NoError(t, err)
	assert.Equal(t, inst, q.Instrument)
	assert.InDelta(t, 0.00001234, q.PriceUSD, 1e-15)
}

func TestPoll_PairsArray(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pairs":[{"pairAddress":"P","priceUsd":"3"}]}`))
	})

	q, err := New(srv.URL, xhttp.NewClient()).Poll(context.Background(), models.Instrument{ChainID: "c", PairAddress: "P"})
	require.NoError(t, err)
	assert.Equal(t, 3.0, q.PriceUSD)
}

func TestPoll_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"missing price", http.StatusOK, `{"pair":{"pairAddress":"P"}}`, drepo.ErrNoPrice},
		{"zero price", http.StatusOK, `{"pair":{"pairAddress":"P","priceUsd":"0"}}`, drepo.ErrNoPrice},
		{"no pair", http.StatusOK, `{"pair":null}`, drepo.ErrNoPrice},
		{"404", http.StatusNotFound, `not found`, drepo.ErrTokenNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := New(srv.URL, xhttp.NewClient()).Poll(context.Background(), models.Instrument{ChainID: "c", PairAddress: "P"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPoll_UpstreamFailure(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := New(srv.URL, xhttp.NewClient()).Poll(context.Background(), models.Instrument{ChainID: "c", PairAddress: "P"})
	require.Error(t, err)
	var se *xhttp.StatusError
	assert.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestPoll_EmptyInstrument(t *testing.T) {
	_, err := New("http://unused", xhttp.NewClient()).Poll(context.Background(), models.Instrument{})
	assert.ErrorIs(t, err, drepo.ErrNoPrice)
}

func TestRateLimited(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"pair":{"pairAddress":"P","priceUsd":"1"}}`))
	})

	c := New(srv.URL, xhttp.NewClient(), WithLimiter(ratelimit.New(1, 0)))
	inst := models.Instrument{ChainID: "c", PairAddress: "P"}

	_, err := c.Poll(context.Background(), inst)
	require.NoError(t, err)
	_, err = c.Poll(context.Background(), inst)
	assert.ErrorIs(t, err, drepo.ErrRateLimited)
}
