package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"PairPulse/internal/domain/models"
	domrepo "PairPulse/internal/domain/repository"
	applogger "PairPulse/pkg/logger"
)

var (
	ErrEmptyIdentifier  = errors.New("identifier required")
	ErrInvalidTimeframe = errors.New("timeframe must be a positive number of seconds")
)

// Session result states exposed through SessionState.LastError.
const (
	StateNotFound = "not_found"
	StateUpstream = "upstream"
)

// Outcomes recorded in metrics.
const (
	resultOK    = "ok"
	tickSkipped = "skipped"
	tickStale   = "stale"
)

// SessionConfig holds the polling parameters of a Session.
type SessionConfig struct {
	PollInterval     time.Duration
	FetchTimeout     time.Duration
	PublishTimeout   time.Duration
	DefaultTimeframe int64
	MaxSamples       int
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithClock overrides the wall clock used to timestamp samples.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) { s.now = now }
}

// WithPublisher forwards every appended sample to p.
func WithPublisher(p domrepo.SamplePublisher) SessionOption {
	return func(s *Session) { s.publisher = p }
}

// WithObserver registers an observer at construction time.
func WithObserver(o domrepo.ChartObserver) SessionOption {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// Session tracks one instrument at a time: it resolves a token, polls its
// price on a fixed cadence into a SampleStore and pushes a fresh candle
// aggregation to observers after every change.
//
// Lifecycle operations (StartScan, Stop) are serialised by lifeMu; state read
// by ticks and handlers is guarded by mu. At most one poller runs at a time.
type Session struct {
	source    domrepo.QuoteSource
	metrics   domrepo.Metrics
	publisher domrepo.SamplePublisher
	logger    *applogger.Logger
	cfg       SessionConfig
	now       func() time.Time

	lifeMu     sync.Mutex
	pollCancel context.CancelFunc
	pollDone   chan struct{}

	mu         sync.Mutex
	inst       models.Instrument
	token      *models.TokenInfo
	timeframe  int64
	store      *SampleStore
	generation uint64
	lastErr    string
	observers  []domrepo.ChartObserver
}

// NewSession creates an idle session.
func NewSession(source domrepo.QuoteSource, metrics domrepo.Metrics, l *applogger.Logger, cfg SessionConfig, opts ...SessionOption) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = cfg.PollInterval
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = time.Second
	}
	if !domrepo.IsValidTimeframe(cfg.DefaultTimeframe) {
		cfg.DefaultTimeframe = domrepo.DefaultTimeframe()
	}
	s := &Session{
		source:    source,
		metrics:   metrics,
		logger:    l,
		cfg:       cfg,
		now:       time.Now,
		timeframe: cfg.DefaultTimeframe,
		store:     NewSampleStore(cfg.MaxSamples),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Observe registers o for every subsequent frame.
func (s *Session) Observe(o domrepo.ChartObserver) {
	s.mu.Lock()
	s.observers = append(s.observers, o)
	s.mu.Unlock()
}

// StartScan resolves identifier and, on success, replaces the tracked
// instrument, empties the sample store and restarts polling. A failed
// resolve leaves the current instrument and poller untouched.
func (s *Session) StartScan(ctx context.Context, identifier string) (*models.TokenInfo, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrEmptyIdentifier
	}

	info, err := s.source.Resolve(ctx, identifier)
	if err == nil && (info == nil || info.Instrument.IsZero()) {
		err = fmt.Errorf("resolve %s: %w", identifier, domrepo.ErrTokenNotFound)
	}
	if err != nil {
		kind := StateUpstream
		if errors.Is(err, domrepo.ErrTokenNotFound) {
			kind = StateNotFound
			s.logger.Info("token not found", applogger.String("identifier", identifier))
		} else {
			s.logger.Error("scan failed", applogger.String("identifier", identifier), applogger.Error(err))
		}
		s.mu.Lock()
		s.lastErr = kind
		s.mu.Unlock()
		s.metrics.RecordScan(kind)
		return nil, err
	}

	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	s.stopPollerLocked()

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inst = info.Instrument
	tok := *info
	s.token = &tok
	s.lastErr = ""
	s.store.Reset()
	frame := s.frameLocked()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	pollCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.pollCancel = cancel
	s.pollDone = done
	go s.poll(pollCtx, info.Instrument, gen, done)

	s.metrics.RecordScan(resultOK)
	s.logger.Info("scan started",
		applogger.String("name", info.Name),
		applogger.String("symbol", info.Symbol),
		applogger.String("chain", info.ChainID),
		applogger.String("pair", info.PairAddress),
		applogger.Float64("price_usd", info.PriceUSD),
		applogger.Any("generation", gen),
	)

	// Observers see the cleared chart straight away.
	notify(observers, frame)
	return &tok, nil
}

// SetTimeframe changes the bucket width and re-aggregates the current
// samples immediately. No quote is fetched.
func (s *Session) SetTimeframe(seconds int64) error {
	if !domrepo.IsValidTimeframe(seconds) {
		return fmt.Errorf("set timeframe %d: %w", seconds, ErrInvalidTimeframe)
	}
	s.mu.Lock()
	s.timeframe = seconds
	frame := s.frameLocked()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	s.logger.Debug("timeframe changed",
		applogger.Int64("timeframe", seconds),
		applogger.Int("candles", len(frame.Candles)),
	)
	notify(observers, frame)
	return nil
}

// Stop cancels polling and waits for the poller to exit. Samples are kept
// so the last chart can still be served.
func (s *Session) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.stopPollerLocked() {
		s.logger.Info("polling stopped")
	}
}

// Frame returns the current aggregation.
func (s *Session) Frame() models.ChartFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameLocked()
}

// Candles returns the current aggregation of the sample store.
func (s *Session) Candles() []models.Candle {
	return s.Frame().Candles
}

// Samples returns a copy of the sample store.
func (s *Session) Samples() []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Snapshot()
}

// State returns a read-only view of the session.
func (s *Session) State() models.SessionState {
	s.lifeMu.Lock()
	polling := s.pollCancel != nil
	s.lifeMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	st := models.SessionState{
		Instrument:  s.inst,
		Timeframe:   s.timeframe,
		Generation:  s.generation,
		SampleCount: s.store.Len(),
		CandleCount: len(Aggregate(s.store.samples, s.timeframe)),
		Polling:     polling,
		LastError:   s.lastErr,
	}
	if s.token != nil {
		tok := *s.token
		st.Token = &tok
	}
	if last, ok := s.store.Last(); ok {
		st.LastPrice = last.Price
	}
	return st
}

// stopPollerLocked cancels the running poller and waits for it. lifeMu must be held.
func (s *Session) stopPollerLocked() bool {
	if s.pollCancel == nil {
		return false
	}
	s.pollCancel()
	<-s.pollDone
	s.pollCancel = nil
	s.pollDone = nil
	return true
}

func (s *Session) poll(ctx context.Context, inst models.Instrument, gen uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx, inst, gen)
		}
	}
}

// tick fetches one quote and appends it. Any failure skips the tick.
func (s *Session) tick(ctx context.Context, inst models.Instrument, gen uint64) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	q, err := s.source.Poll(fetchCtx, inst)
	cancel()
	if ctx.Err() != nil {
		// A rescan or Stop cancelled this poller while the fetch was in
		// flight. The new generation only starts once this tick returns.
		s.metrics.RecordTick(tickStale)
		return
	}
	if err == nil && (q == nil || q.PriceUSD <= 0) {
		err = domrepo.ErrNoPrice
	}
	if err != nil {
		s.metrics.RecordTick(tickSkipped)
		s.logger.Warn("tick skipped",
			applogger.String("pair", inst.PairAddress),
			applogger.Error(err),
		)
		return
	}

	s.mu.Lock()
	sample := models.Sample{Timestamp: s.now().Unix(), Price: q.PriceUSD}
	if err := s.store.Append(sample); err != nil {
		s.mu.Unlock()
		s.metrics.RecordTick(tickSkipped)
		s.logger.Warn("sample rejected", applogger.Error(err))
		return
	}
	frame := s.frameLocked()
	observers := s.snapshotObservers()
	s.mu.Unlock()

	s.metrics.RecordTick(resultOK)
	s.metrics.RecordSample(inst.PairAddress, sample.Price)
	s.logger.Debug("sample appended",
		applogger.Int64("t", sample.Timestamp),
		applogger.Float64("price", sample.Price),
	)

	if s.publisher != nil {
		pubCtx, cancel := context.WithTimeout(ctx, s.cfg.PublishTimeout)
		err := s.publisher.PublishSample(pubCtx, models.SampleEvent{
			Instrument: inst,
			Generation: gen,
			Timestamp:  sample.Timestamp,
			Price:      sample.Price,
		})
		cancel()
		if err != nil {
			s.metrics.RecordError("publish")
			s.logger.Warn("sample publish failed", applogger.Error(err))
		}
	}

	notify(observers, frame)
}

// frameLocked aggregates the store with the current timeframe. mu must be held.
func (s *Session) frameLocked() models.ChartFrame {
	start := time.Now()
	candles := Aggregate(s.store.samples, s.timeframe)
	s.metrics.RecordAggregate(time.Since(start).Seconds())
	return models.ChartFrame{
		Instrument: s.inst,
		Generation: s.generation,
		Timeframe:  s.timeframe,
		Samples:    s.store.Len(),
		Candles:    candles,
	}
}

func (s *Session) snapshotObservers() []domrepo.ChartObserver {
	out := make([]domrepo.ChartObserver, len(s.observers))
	copy(out, s.observers)
	return out
}

func notify(observers []domrepo.ChartObserver, frame models.ChartFrame) {
	for _, o := range observers {
		o.OnFrame(frame)
	}
}
