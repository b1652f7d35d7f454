package models

import "time"

// Sample is one timestamped price observation for the active pair.
type Sample struct {
	Timestamp int64   `json:"t"` // unix seconds
	Price     float64 `json:"p"`
}

// Time returns the sample timestamp as time.Time.
func (s Sample) Time() time.Time { return time.Unix(s.Timestamp, 0) }

// Candle is an OHLC summary of the samples in [Start, Start+timeframe).
type Candle struct {
	Start   int64   `json:"start"`
	Open    float64 `json:"open"`
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Close   float64 `json:"close"`
	Samples int     `json:"samples"`
}

// Up reports whether the candle closed at or above its open.
func (c Candle) Up() bool { return c.Close >= c.Open }
