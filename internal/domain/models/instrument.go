package models

// Instrument identifies the pair being polled.
type Instrument struct {
	ChainID     string `json:"chain_id"`
	PairAddress string `json:"pair_address"`
}

// IsZero reports whether no instrument is set.
func (i Instrument) IsZero() bool { return i.ChainID == "" || i.PairAddress == "" }

// Key is a stable identifier used for cache keys and message keys.
func (i Instrument) Key() string { return i.ChainID + ":" + i.PairAddress }

// TokenInfo is the metadata and market snapshot returned when a token is resolved.
type TokenInfo struct {
	Instrument
	Name         string  `json:"name"`
	Symbol       string  `json:"symbol"`
	ImageURL     string  `json:"image_url"`
	PriceUSD     float64 `json:"price_usd"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	MarketCap    float64 `json:"market_cap"`
	Volume24h    float64 `json:"volume_24h"`
}

// Quote is a single polled price for an already resolved instrument.
type Quote struct {
	Instrument
	PriceUSD float64 `json:"price_usd"`
}
