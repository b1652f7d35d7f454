package repository

import (
	"context"

	"PairPulse/internal/domain/models"
)

// QuoteSource is the external price feed a session polls.
type QuoteSource interface {
	// Resolve looks up a token by contract address or search term and returns
	// the pair to poll together with a market snapshot.
	Resolve(ctx context.Context, identifier string) (*models.TokenInfo, error)
	// Poll returns the current price for an already resolved pair.
	Poll(ctx context.Context, inst models.Instrument) (*models.Quote, error)
}

// ChartObserver receives every aggregation pass. Implementations must not block.
type ChartObserver interface {
	OnFrame(frame models.ChartFrame)
}

// SamplePublisher forwards appended samples to downstream consumers.
type SamplePublisher interface {
	PublishSample(ctx context.Context, ev models.SampleEvent) error
	Close() error
}

type Metrics interface {
	RecordScan(result string)
	RecordTick(result string)
	RecordSample(pair string, price float64)
	RecordAggregate(seconds float64)
	RecordError(kind string)
}
