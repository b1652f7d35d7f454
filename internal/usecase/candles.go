package usecase

import (
	"PairPulse/internal/domain/models"
)

// MinSamples is the smallest sample count that produces a chart.
const MinSamples = 3

// Aggregate buckets samples into candles of timeframe seconds.
//
// Buckets start at the first sample and advance while the bucket start is
// strictly before the last sample's timestamp, so a sample sitting exactly on
// the final boundary is left out until a later sample extends the range.
// Empty buckets are skipped. samples must be sorted by timestamp.
func Aggregate(samples []models.Sample, timeframe int64) []models.Candle {
	if len(samples) < MinSamples || timeframe <= 0 {
		return []models.Candle{}
	}

	start := samples[0].Timestamp
	end := samples[len(samples)-1].Timestamp

	// At most one candle per sample, however wide the time span.
	capacity := len(samples)
	if n := (end-start)/timeframe + 1; n < int64(capacity) {
		capacity = int(n)
	}
	candles := make([]models.Candle, 0, capacity)

	i := 0
	for t := start; t < end; {
		// The final bucket runs past end; t+timeframe may not fit in an int64.
		last := timeframe > end-t
		for i < len(samples) && samples[i].Timestamp < t {
			i++
		}

		var c models.Candle
		n := 0
		for j := i; j < len(samples) && (last || samples[j].Timestamp < t+timeframe); j++ {
			p := samples[j].Price
			if n == 0 {
				c = models.Candle{Start: t, Open: p, High: p, Low: p}
			}
			if p > c.High {
				c.High = p
			}
			if p < c.Low {
				c.Low = p
			}
			c.Close = p
			n++
		}
		if n == 0 {
			// Jump to the bucket holding the next sample; buckets in between are empty.
			t += (samples[i].Timestamp - t) / timeframe * timeframe
			continue
		}
		c.Samples = n
		candles = append(candles, c)
		if last {
			break
		}
		t += timeframe
	}
	return candles
}
