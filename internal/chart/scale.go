package chart

import (
	"errors"

	"PairPulse/internal/domain/models"
)

var ErrNoCandles = errors.New("chart: no candles")

// ComputeRange returns the highest high and the lowest low across candles.
func ComputeRange(candles []models.Candle) (maxPrice, minPrice float64, err error) {
	if len(candles) == 0 {
		return 0, 0, ErrNoCandles
	}
	maxPrice, minPrice = candles[0].High, candles[0].Low
	for _, c := range candles[1:] {
		if c.High > maxPrice {
			maxPrice = c.High
		}
		if c.Low < minPrice {
			minPrice = c.Low
		}
	}
	return maxPrice, minPrice, nil
}

// Scale maps a price onto a y coordinate in [0, height], top = maxPrice.
// A flat range puts every price on the vertical midline.
func Scale(value, maxPrice, minPrice, height float64) float64 {
	if maxPrice == minPrice {
		return height / 2
	}
	return (maxPrice - value) / (maxPrice - minPrice) * height
}

// Transform binds a price range to a surface height.
type Transform struct {
	Max, Min, Height float64
}

// NewTransform computes the transform for candles on a surface of the given height.
func NewTransform(candles []models.Candle, height float64) (Transform, error) {
	hi, lo, err := ComputeRange(candles)
	if err != nil {
		return Transform{}, err
	}
	return Transform{Max: hi, Min: lo, Height: height}, nil
}

// Y maps price to a pixel row.
func (t Transform) Y(price float64) float64 { return Scale(price, t.Max, t.Min, t.Height) }

// Price is the inverse of Y, used for axis labels.
func (t Transform) Price(y float64) float64 {
	if t.Height == 0 || t.Max == t.Min {
		return t.Max
	}
	return t.Max - y/t.Height*(t.Max-t.Min)
}
