package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	applogger "PairPulse/pkg/logger"
)

// ErrBufferFull is returned when a failed sample cannot be queued for retry.
var ErrBufferFull = errors.New("publish buffer full")

// PublishPipeline sits between the session and a SamplePublisher. Invalid
// events are rejected, and events the downstream refuses are buffered and
// retried in the background with exponential backoff.
type PublishPipeline struct {
	next       domrepo.SamplePublisher
	metrics    domrepo.Metrics
	logger     *applogger.Logger
	bufSize    int
	backoffMin time.Duration
	backoffMax time.Duration
	retryWait  time.Duration

	bufCh     chan models.SampleEvent
	stopCh    chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type PipelineOption func(*PublishPipeline)

// WithBufferSize sets how many failed events are kept for retry.
func WithBufferSize(n int) PipelineOption {
	return func(p *PublishPipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// WithBackoff bounds the delay after a failed retry.
func WithBackoff(minDelay, maxDelay time.Duration) PipelineOption {
	return func(p *PublishPipeline) {
		if minDelay > 0 && maxDelay >= minDelay {
			p.backoffMin = minDelay
			p.backoffMax = maxDelay
		}
	}
}

// WithRetryTimeout bounds a single retried publish.
func WithRetryTimeout(d time.Duration) PipelineOption {
	return func(p *PublishPipeline) {
		if d > 0 {
			p.retryWait = d
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(l *applogger.Logger) PipelineOption {
	return func(p *PublishPipeline) { p.logger = l }
}

// NewPublishPipeline wraps next and starts the retry worker.
func NewPublishPipeline(next domrepo.SamplePublisher, metrics domrepo.Metrics, opts ...PipelineOption) *PublishPipeline {
	p := &PublishPipeline{
		next:       next,
		metrics:    metrics,
		logger:     applogger.NewNop(),
		bufSize:    1000,
		backoffMin: 50 * time.Millisecond,
		backoffMax: 2 * time.Second,
		retryWait:  5 * time.Second,
		stopCh:     make(chan struct{}),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.bufCh = make(chan models.SampleEvent, p.bufSize)
	go p.retryLoop()
	return p
}

var _ domrepo.SamplePublisher = (*PublishPipeline)(nil)

// PublishSample forwards ev. A downstream failure queues ev for retry and is
// not reported unless the queue is full.
func (p *PublishPipeline) PublishSample(ctx context.Context, ev models.SampleEvent) error {
	if err := validateEvent(ev); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}

	err := p.next.PublishSample(ctx, ev)
	if err == nil {
		return nil
	}
	p.metrics.RecordError("pipeline_process")

	select {
	case p.bufCh <- ev:
		p.logger.Debug("sample buffered for retry",
			applogger.Int("depth", len(p.bufCh)),
			applogger.Error(err),
		)
		return nil
	default:
		p.metrics.RecordError("pipeline_buffer_full")
		return fmt.Errorf("%w: %v", ErrBufferFull, err)
	}
}

// Pending returns the number of events waiting for retry.
func (p *PublishPipeline) Pending() int { return len(p.bufCh) }

// Close stops the retry worker, drops what is still buffered and closes
// the downstream publisher.
func (p *PublishPipeline) Close() error {
	p.closeOnce.Do(func() { close(p.stopCh) })
	<-p.done
	if n := len(p.bufCh); n > 0 {
		p.logger.Warn("dropping buffered samples on close", applogger.Int("count", n))
	}
	return p.next.Close()
}

func (p *PublishPipeline) retryLoop() {
	defer close(p.done)

	backoff := p.backoffMin
	for {
		select {
		case <-p.stopCh:
			return
		case ev := <-p.bufCh:
			ctx, cancel := context.WithTimeout(context.Background(), p.retryWait)
			err := p.next.PublishSample(ctx, ev)
			cancel()
			if err == nil {
				backoff = p.backoffMin
				continue
			}

			p.metrics.RecordError("pipeline_flush")
			select {
			case p.bufCh <- ev:
			default:
				p.metrics.RecordError("pipeline_buffer_drop")
			}

			select {
			case <-p.stopCh:
				return
			case <-time.After(backoff):
			}
			if backoff < p.backoffMax {
				backoff = min(backoff*2, p.backoffMax)
			}
		}
	}
}

func validateEvent(ev models.SampleEvent) error {
	switch {
	case ev.Instrument.IsZero():
		return fmt.Errorf("sample event: empty instrument")
	case ev.Timestamp <= 0:
		return fmt.Errorf("sample event: invalid timestamp %d", ev.Timestamp)
	case !(ev.Price > 0) || math.IsInf(ev.Price, 0):
		return fmt.Errorf("sample event: invalid price %v", ev.Price)
	}
	return nil
}
