package dexscreener

import "github.com/shopspring/decimal"

// Wire types for the Dexscreener REST API. Only the fields used are declared.

type tokenRef struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type pairInfo struct {
	ImageURL string `json:"imageUrl"`
}

type usdAmount struct {
	USD decimal.NullDecimal `json:"usd"`
}

type volume struct {
	H24 decimal.NullDecimal `json:"h24"`
}

type pair struct {
	ChainID     string              `json:"chainId"`
	DexID       string              `json:"dexId"`
	PairAddress string              `json:"pairAddress"`
	BaseToken   tokenRef            `json:"baseToken"`
	QuoteToken  tokenRef            `json:"quoteToken"`
	PriceUSD    decimal.NullDecimal `json:"priceUsd"`
	Liquidity   *usdAmount          `json:"liquidity"`
	FDV         decimal.NullDecimal `json:"fdv"`
	Volume      *volume             `json:"volume"`
	Info        *pairInfo           `json:"info"`
}

// tokensResponse is returned by /latest/dex/tokens/{address}.
type tokensResponse struct {
	Pairs []pair `json:"pairs"`
}

// pairsResponse is returned by /latest/dex/pairs/{chain}/{pair}. Older
// deployments return a single "pair", newer ones a "pairs" array.
type pairsResponse struct {
	Pair  *pair  `json:"pair"`
	Pairs []pair `json:"pairs"`
}

func (r pairsResponse) first() *pair {
	if r.Pair != nil {
		return r.Pair
	}
	if len(r.Pairs) > 0 {
		return &r.Pairs[0]
	}
	return nil
}

func floatOf(d decimal.NullDecimal) float64 {
	if !d.Valid {
		return 0
	}
	f, _ := d.Decimal.Float64()
	return f
}
