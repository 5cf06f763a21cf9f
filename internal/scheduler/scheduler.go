package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanyoungcy/arbwatch/internal/arbitrage"
	"github.com/alanyoungcy/arbwatch/internal/domain"
	"github.com/alanyoungcy/arbwatch/internal/engine"
)

// State is the scan state machine: Idle between refreshes, Scanning while
// a fetch is in flight. There is never more than one fetch in flight.
type State int

const (
	StateIdle State = iota
	StateScanning
)

func (s State) String() string {
	if s == StateScanning {
		return "scanning"
	}
	return "idle"
}

// Fetcher produces a fresh scan result. The scanapi client satisfies this
// through a thin adapter in the app wiring.
type Fetcher interface {
	Fetch(ctx context.Context) (domain.ScanResult, error)
}

// Sink receives each completed refresh: the new display snapshot plus the
// opportunities that crossed the alert threshold this cycle.
type Sink interface {
	Publish(ctx context.Context, snap Snapshot, alerts []domain.Opportunity)
}

// Row is one display line: an opportunity plus the stake split for the
// configured bankroll. Stakes is nil when either implied probability is
// missing from the feed.
type Row struct {
	domain.Opportunity
	Stakes *arbitrage.Stakes `json:"stakes,omitempty"`
}

// Snapshot is the immutable result of one refresh cycle after filtering
// and ranking. A failed refresh never produces a Snapshot; the previous
// one stays current with LastError set.
type Snapshot struct {
	CycleID     string          `json:"cycle_id"`
	RefreshedAt time.Time       `json:"refreshed_at"`
	Mode        string          `json:"mode"`
	Rows        []Row           `json:"rows"`
	TotalCount  int             `json:"total_count"`
	Meta        domain.ScanMeta `json:"meta"`
	LastError   string          `json:"last_error,omitempty"`
}

// Config holds the scheduler's tunable parameters.
type Config struct {
	Cadence        Cadence
	Bankroll       float64
	NotifyAbovePct float64
	Criteria       domain.FilterCriteria
	Metric         domain.SortMetric
}

// Scheduler owns the refresh loop. It ticks once per second, reconciles
// the countdown against the current cadence band, and fires a refresh when
// the countdown reaches zero or Trigger is called. All view mutations
// (criteria, sort) re-derive the snapshot from the last raw list without
// touching the backend.
type Scheduler struct {
	fetch  Fetcher
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	cfg       Config
	columns   *engine.ColumnState
	detector  *engine.ChangeDetector
	state     State
	mode      Mode
	countdown int
	raw       []domain.Opportunity
	snapshot  Snapshot
}

// New creates a Scheduler. sink may be nil when no downstream consumer is
// wired (the one-shot scan mode).
func New(fetch Fetcher, sink Sink, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Metric == "" {
		cfg.Metric = domain.SortNet
	}
	s := &Scheduler{
		fetch:    fetch,
		sink:     sink,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
		columns:  &engine.ColumnState{},
		detector: engine.NewChangeDetector(),
	}
	s.mode = cfg.Cadence.Mode(s.now())
	if target, active := cfg.Cadence.Interval(s.mode); active {
		s.countdown = int(target.Seconds())
	}
	return s
}

// Run drives the one-second tick loop until ctx is cancelled. It fires an
// immediate refresh on startup when the cadence is active so the dashboard
// does not sit empty for a full interval.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, active := s.cfg.Cadence.Interval(s.cfg.Cadence.Mode(s.now())); active {
		if err := s.Trigger(ctx); err != nil {
			s.logger.WarnContext(ctx, "scheduler: startup refresh not started", slog.Any("error", err))
		}
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick advances the countdown by one second. When the cadence band shrank
// since the last tick, the countdown is clamped down to the new target
// before decrementing, so a band transition takes effect within one tick.
func (s *Scheduler) Tick(ctx context.Context) {
	s.mu.Lock()

	mode := s.cfg.Cadence.Mode(s.now())
	if mode != s.mode {
		s.logger.InfoContext(ctx, "scheduler: cadence change",
			slog.String("from", s.mode.String()),
			slog.String("to", mode.String()),
		)
		s.mode = mode
	}

	target, active := s.cfg.Cadence.Interval(mode)
	if !active {
		s.countdown = 0
		s.mu.Unlock()
		return
	}

	secs := int(target.Seconds())
	if s.countdown > secs || s.countdown <= 0 {
		s.countdown = secs
	}
	s.countdown--

	if s.countdown > 0 {
		s.mu.Unlock()
		return
	}
	s.countdown = secs
	if s.state == StateScanning {
		// Previous refresh still running; skip this cycle rather than stack.
		s.mu.Unlock()
		return
	}
	s.state = StateScanning
	s.mu.Unlock()

	go s.refresh(ctx, "timer")
}

// Trigger starts a manual refresh. It returns domain.ErrScanInFlight when
// a refresh is already running; callers treat that as a no-op.
func (s *Scheduler) Trigger(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		return domain.ErrScanInFlight
	}
	s.state = StateScanning
	if target, active := s.cfg.Cadence.Interval(s.mode); active {
		s.countdown = int(target.Seconds())
	}
	s.mu.Unlock()

	go s.refresh(ctx, "manual")
	return nil
}

// refresh performs one full cycle: fetch, local edge and stake derivation,
// change detection, filter, rank, publish. The Scanning state is released
// on every path.
func (s *Scheduler) refresh(ctx context.Context, reason string) {
	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	start := s.now()
	res, err := s.fetch.Fetch(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "scheduler: refresh failed",
			slog.String("reason", reason),
			slog.Any("error", err),
		)
		s.mu.Lock()
		s.snapshot.LastError = err.Error()
		s.mu.Unlock()
		return
	}

	// The backend's percentages are advisory; re-derive them from the leg
	// probabilities so the display never disagrees with the stake math.
	for i := range res.Opportunities {
		o := &res.Opportunities[i]
		if !o.HasBothProbs() {
			continue
		}
		edge, evalErr := arbitrage.Evaluate(
			*o.LegA.ImpliedProb, *o.LegB.ImpliedProb,
			o.LegA.FeeFraction(), o.LegB.FeeFraction(),
		)
		if evalErr != nil {
			continue
		}
		o.GrossArbPct = arbitrage.Round2(edge.GrossPct)
		o.NetArbPct = arbitrage.Round2(edge.NetPct)
	}

	s.mu.Lock()
	alerts := s.detector.Apply(res.Opportunities, s.cfg.NotifyAbovePct)
	s.raw = res.Opportunities
	snap := s.buildSnapshotLocked(res.Meta)
	s.snapshot = snap
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "scheduler: refresh complete",
		slog.String("reason", reason),
		slog.String("cycle_id", snap.CycleID),
		slog.Int("total", snap.TotalCount),
		slog.Int("visible", len(snap.Rows)),
		slog.Int("alerts", len(alerts)),
		slog.Duration("elapsed", s.now().Sub(start)),
	)

	if s.sink != nil {
		s.sink.Publish(ctx, snap, alerts)
	}
}

// buildSnapshotLocked derives the display snapshot from s.raw. Callers
// hold s.mu.
func (s *Scheduler) buildSnapshotLocked(meta domain.ScanMeta) Snapshot {
	visible := engine.Filter(s.raw, s.cfg.Criteria)
	engine.Rank(visible, s.cfg.Metric, s.columns)

	rows := make([]Row, 0, len(visible))
	for _, o := range visible {
		row := Row{Opportunity: o}
		if st, err := arbitrage.AllocateFor(o, s.cfg.Bankroll); err == nil {
			stakes := st
			row.Stakes = &stakes
		}
		rows = append(rows, row)
	}

	return Snapshot{
		CycleID:     uuid.NewString(),
		RefreshedAt: s.now(),
		Mode:        s.mode.String(),
		Rows:        rows,
		TotalCount:  len(s.raw),
		Meta:        meta,
	}
}

// RunOnce performs a single synchronous refresh and returns the resulting
// snapshot. The one-shot scan mode uses it instead of the tick loop.
func (s *Scheduler) RunOnce(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		return Snapshot{}, domain.ErrScanInFlight
	}
	s.state = StateScanning
	s.mu.Unlock()

	s.refresh(ctx, "once")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot.CycleID == "" {
		return s.snapshot, errors.New(s.snapshot.LastError)
	}
	return s.snapshot, nil
}

// Seed installs a previously published snapshot as the current view, so a
// restarted process serves data before its first refresh completes. The raw
// list is rebuilt from the snapshot rows; the next refresh replaces both.
func (s *Scheduler) Seed(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := make([]domain.Opportunity, 0, len(snap.Rows))
	for _, row := range snap.Rows {
		raw = append(raw, row.Opportunity)
	}
	s.raw = raw
	s.snapshot = snap
}

// reproject rebuilds the snapshot from the cached raw list after a view
// mutation and republishes it without alerts.
func (s *Scheduler) reproject(ctx context.Context) {
	s.mu.Lock()
	meta := s.snapshot.Meta
	snap := s.buildSnapshotLocked(meta)
	// A view mutation is still the same refresh cycle.
	snap.CycleID = s.snapshot.CycleID
	snap.RefreshedAt = s.snapshot.RefreshedAt
	snap.LastError = s.snapshot.LastError
	s.snapshot = snap
	s.mu.Unlock()

	if s.sink != nil {
		s.sink.Publish(ctx, snap, nil)
	}
}

// SetCriteria replaces the filter criteria and re-derives the view.
func (s *Scheduler) SetCriteria(ctx context.Context, c domain.FilterCriteria) {
	s.mu.Lock()
	s.cfg.Criteria = c
	s.mu.Unlock()
	s.reproject(ctx)
}

// SetMetric switches the ranking metric, clearing any column override.
func (s *Scheduler) SetMetric(ctx context.Context, m domain.SortMetric) {
	s.mu.Lock()
	s.cfg.Metric = m
	s.columns.Clear()
	s.mu.Unlock()
	s.reproject(ctx)
}

// ClickColumn applies a header click: first click on a column sorts it
// descending, a repeat click flips direction.
func (s *Scheduler) ClickColumn(ctx context.Context, col domain.Column) domain.SortDirection {
	dir := s.columns.Click(col)
	s.reproject(ctx)
	return dir
}

// SetBankroll changes the stake-split bankroll and re-derives the rows.
func (s *Scheduler) SetBankroll(ctx context.Context, bankroll float64) {
	s.mu.Lock()
	s.cfg.Bankroll = bankroll
	s.mu.Unlock()
	s.reproject(ctx)
}

// Snapshot returns the current display snapshot. Rows are copied so
// callers can serialize without holding the lock.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot
	snap.Rows = append([]Row(nil), snap.Rows...)
	return snap
}

// Status reports the live scheduler state for the status endpoint.
type Status struct {
	State       string    `json:"state"`
	Mode        string    `json:"mode"`
	CountdownS  int       `json:"countdown_s"`
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
	SeenIDs     int       `json:"seen_ids"`
}

// Status returns the scheduler's current state machine view.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		State:       s.state.String(),
		Mode:        s.mode.String(),
		CountdownS:  s.countdown,
		LastRefresh: s.snapshot.RefreshedAt,
		LastError:   s.snapshot.LastError,
		SeenIDs:     s.detector.SeenCount(),
	}
}

// Countdown returns the seconds remaining until the next automatic
// refresh; zero when the cadence is off.
func (s *Scheduler) Countdown() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countdown
}
