package models

// SessionState is a read-only view of the chart session.
type SessionState struct {
	Instrument  Instrument `json:"instrument"`
	Token       *TokenInfo `json:"token,omitempty"`
	Timeframe   int64      `json:"timeframe"`
	Generation  uint64     `json:"generation"`
	SampleCount int        `json:"sample_count"`
	CandleCount int        `json:"candle_count"`
	Polling     bool       `json:"polling"`
	LastError   string     `json:"last_error,omitempty"` // "not_found", "upstream"
	LastPrice   float64    `json:"last_price,omitempty"`
}

// ChartFrame is what every observer receives after a render pass.
type ChartFrame struct {
	Instrument Instrument `json:"instrument"`
	Generation uint64     `json:"generation"`
	Timeframe  int64      `json:"timeframe"`
	Samples    int        `json:"samples"`
	Candles    []Candle   `json:"candles"`
}

// SampleEvent is published for every appended sample.
type SampleEvent struct {
	Instrument
	Generation uint64  `json:"generation"`
	Timestamp  int64   `json:"t"`
	Price      float64 `json:"p"`
}
