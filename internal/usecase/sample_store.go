package usecase

import (
	"errors"
	"fmt"
	"math"

	"PairPulse/internal/domain/models"
)

var (
	ErrOutOfOrder   = errors.New("sample older than last appended sample")
	ErrInvalidPrice = errors.New("sample price must be positive and finite")
)

// SampleStore is an append-only, time-ordered buffer of samples for one instrument.
// It is not safe for concurrent use; the Session serialises access.
type SampleStore struct {
	samples    []models.Sample
	maxSamples int
}

// NewSampleStore creates an empty store. maxSamples <= 0 keeps every sample.
func NewSampleStore(maxSamples int) *SampleStore {
	return &SampleStore{maxSamples: maxSamples}
}

// Append adds s to the end of the store.
func (st *SampleStore) Append(s models.Sample) error {
	if s.Price <= 0 || math.IsNaN(s.Price) || math.IsInf(s.Price, 0) {
		return fmt.Errorf("append %v: %w", s.Price, ErrInvalidPrice)
	}
	if n := len(st.samples); n > 0 && s.Timestamp < st.samples[n-1].Timestamp {
		return fmt.Errorf("append t=%d after t=%d: %w", s.Timestamp, st.samples[n-1].Timestamp, ErrOutOfOrder)
	}
	st.samples = append(st.samples, s)
	if st.maxSamples > 0 && len(st.samples) > st.maxSamples*2 {
		// Trim in batches so the copy cost is amortised.
		st.samples = append([]models.Sample(nil), st.samples[len(st.samples)-st.maxSamples:]...)
	}
	return nil
}

// Snapshot returns a copy of the retained samples.
func (st *SampleStore) Snapshot() []models.Sample {
	out := make([]models.Sample, len(st.samples))
	copy(out, st.samples)
	return out
}

// Last returns the most recent sample.
func (st *SampleStore) Last() (models.Sample, bool) {
	if len(st.samples) == 0 {
		return models.Sample{}, false
	}
	return st.samples[len(st.samples)-1], true
}

// Len returns the number of retained samples.
func (st *SampleStore) Len() int { return len(st.samples) }

// Reset discards all samples.
func (st *SampleStore) Reset() { st.samples = nil }
