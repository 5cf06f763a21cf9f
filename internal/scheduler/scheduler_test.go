package scheduler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

type fetchFunc func(ctx context.Context) (domain.ScanResult, error)

func (f fetchFunc) Fetch(ctx context.Context) (domain.ScanResult, error) { return f(ctx) }

type captureSink struct {
	mu     sync.Mutex
	snaps  []Snapshot
	alerts [][]domain.Opportunity
}

func (c *captureSink) Publish(_ context.Context, snap Snapshot, alerts []domain.Opportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, snap)
	c.alerts = append(c.alerts, alerts)
}

func (c *captureSink) last() (Snapshot, []domain.Opportunity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.snaps) == 0 {
		return Snapshot{}, nil
	}
	return c.snaps[len(c.snaps)-1], c.alerts[len(c.alerts)-1]
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testOpp builds an opportunity whose zero-fee net edge comes out to
// netPct once the refresh re-derives it from the leg probabilities.
func testOpp(id string, netPct float64) domain.Opportunity {
	pa := 0.5
	pb := 0.5 - netPct/100
	return domain.Opportunity{
		ID:         id,
		Type:       "arb",
		Sport:      "NBA",
		Event:      "A @ B",
		MarketType: domain.MarketMoneyline,
		LegA:       domain.Leg{PlatformName: "Kalshi", Side: "A", ImpliedProb: &pa},
		LegB:       domain.Leg{PlatformName: "Pinnacle", Side: "B", ImpliedProb: &pb},
	}
}

func resultOf(opps ...domain.Opportunity) domain.ScanResult {
	return domain.ScanResult{Opportunities: opps, Meta: domain.ScanMeta{ArbCount: len(opps)}}
}

// runRefresh executes one refresh cycle synchronously.
func runRefresh(t *testing.T, s *Scheduler) {
	t.Helper()
	s.mu.Lock()
	if s.state == StateScanning {
		s.mu.Unlock()
		t.Fatal("refresh already in flight")
	}
	s.state = StateScanning
	s.mu.Unlock()
	s.refresh(context.Background(), "test")
}

func newTestScheduler(fetch Fetcher, sink Sink, cfg Config) *Scheduler {
	return New(fetch, sink, cfg, discard())
}

func TestCountdownClampsOnCadenceShrink(t *testing.T) {
	hour := 15 // extended band
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) { return resultOf(), nil }),
		nil,
		Config{Cadence: Cadence{Location: time.UTC, ExtendedInterval: 120 * time.Second}},
	)
	s.now = func() time.Time { return at(hour) }

	s.mu.Lock()
	s.countdown = 50
	s.mu.Unlock()

	// Move into the prime band; target drops from 120s to 30s.
	hour = 20
	s.Tick(context.Background())

	if got := s.Countdown(); got > 30 {
		t.Fatalf("countdown after band shrink = %d, want <= 30", got)
	}
	if got := s.Countdown(); got != 29 {
		t.Errorf("countdown = %d, want 29 (clamp to 30 then decrement)", got)
	}
}

func TestTickOffBandIdles(t *testing.T) {
	fired := false
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			fired = true
			return resultOf(), nil
		}),
		nil,
		Config{Cadence: Cadence{Location: time.UTC}},
	)
	s.now = func() time.Time { return at(3) }

	for i := 0; i < 5; i++ {
		s.Tick(context.Background())
	}
	if s.Countdown() != 0 {
		t.Errorf("countdown in off band = %d, want 0", s.Countdown())
	}
	if fired {
		t.Error("refresh fired during off band")
	}
}

func TestTriggerWhileScanningIsRejected(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			close(started)
			<-release
			return resultOf(), nil
		}),
		nil,
		Config{Cadence: Cadence{Location: time.UTC}},
	)
	s.now = func() time.Time { return at(15) }

	if err := s.Trigger(context.Background()); err != nil {
		t.Fatalf("first trigger: %v", err)
	}
	<-started

	if err := s.Trigger(context.Background()); !errors.Is(err, domain.ErrScanInFlight) {
		t.Fatalf("second trigger error = %v, want ErrScanInFlight", err)
	}

	close(release)
	waitIdle(t, s)
}

func TestScanningStateReleasedOnFailure(t *testing.T) {
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			return domain.ScanResult{}, errors.New("backend down")
		}),
		nil,
		Config{Cadence: Cadence{Location: time.UTC}},
	)
	s.now = func() time.Time { return at(15) }

	runRefresh(t, s)

	if st := s.Status(); st.State != "idle" {
		t.Errorf("state after failed refresh = %s, want idle", st.State)
	}
	if err := s.Trigger(context.Background()); err != nil {
		t.Errorf("trigger after failure: %v", err)
	}
	waitIdle(t, s)
}

func TestFailedRefreshKeepsPreviousSnapshot(t *testing.T) {
	var fail bool
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			if fail {
				return domain.ScanResult{}, errors.New("timeout")
			}
			return resultOf(testOpp("a", 4), testOpp("b", 3)), nil
		}),
		nil,
		Config{Cadence: Cadence{Location: time.UTC}, Bankroll: 100},
	)
	s.now = func() time.Time { return at(15) }

	runRefresh(t, s)
	if len(s.Snapshot().Rows) != 2 {
		t.Fatalf("rows after success = %d, want 2", len(s.Snapshot().Rows))
	}

	fail = true
	runRefresh(t, s)

	snap := s.Snapshot()
	if len(snap.Rows) != 2 {
		t.Errorf("rows after failure = %d, want previous 2", len(snap.Rows))
	}
	if snap.LastError == "" {
		t.Error("failed refresh must record LastError")
	}
}

func TestRefreshAlertsThroughSink(t *testing.T) {
	sink := &captureSink{}
	calls := 0
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			calls++
			if calls == 1 {
				return resultOf(testOpp("a", 4)), nil
			}
			return resultOf(testOpp("a", 4), testOpp("b", 5), testOpp("c", 1)), nil
		}),
		sink,
		Config{Cadence: Cadence{Location: time.UTC}, Bankroll: 100, NotifyAbovePct: 2},
	)
	s.now = func() time.Time { return at(15) }

	runRefresh(t, s)
	_, alerts := sink.last()
	if len(alerts) != 0 {
		t.Fatalf("first refresh produced %d alerts, want 0", len(alerts))
	}

	runRefresh(t, s)
	snap, alerts := sink.last()
	if len(alerts) != 1 || alerts[0].ID != "b" {
		t.Fatalf("alerts = %v, want just b (new and above threshold)", alerts)
	}
	if len(snap.Rows) != 3 {
		t.Errorf("visible rows = %d, want 3", len(snap.Rows))
	}
}

func TestRefreshDerivesEdgesAndStakes(t *testing.T) {
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			o := testOpp("a", 5)
			o.NetArbPct = 99 // backend value must be overwritten
			return resultOf(o), nil
		}),
		nil,
		Config{Cadence: Cadence{Location: time.UTC}, Bankroll: 100},
	)
	s.now = func() time.Time { return at(15) }

	runRefresh(t, s)

	snap := s.Snapshot()
	if len(snap.Rows) != 1 {
		t.Fatal("want one row")
	}
	row := snap.Rows[0]
	if row.NetArbPct != 5 {
		t.Errorf("net pct = %v, want locally derived 5", row.NetArbPct)
	}
	if row.Stakes == nil {
		t.Fatal("row has no stake split")
	}
	if row.Stakes.StakeA != 50 || row.Stakes.StakeB != 45 {
		t.Errorf("stakes = %v/%v, want 50/45", row.Stakes.StakeA, row.Stakes.StakeB)
	}
}

func TestViewMutationsReprojectWithoutFetch(t *testing.T) {
	sink := &captureSink{}
	calls := 0
	s := newTestScheduler(
		fetchFunc(func(context.Context) (domain.ScanResult, error) {
			calls++
			a := testOpp("a", 4)
			b := testOpp("b", 2)
			b.Sport = "NFL"
			return resultOf(a, b), nil
		}),
		sink,
		Config{Cadence: Cadence{Location: time.UTC}, Bankroll: 100},
	)
	s.now = func() time.Time { return at(15) }

	runRefresh(t, s)
	cycleID := s.Snapshot().CycleID

	s.SetCriteria(context.Background(), domain.FilterCriteria{Sports: []string{"nfl"}})
	if calls != 1 {
		t.Fatalf("criteria change fetched from backend (%d calls)", calls)
	}
	snap := s.Snapshot()
	if len(snap.Rows) != 1 || snap.Rows[0].ID != "b" {
		t.Errorf("filtered rows = %v, want just b", snap.Rows)
	}
	if snap.CycleID != cycleID {
		t.Errorf("cycle id = %s, view mutation should keep %s", snap.CycleID, cycleID)
	}

	s.SetCriteria(context.Background(), domain.FilterCriteria{})
	s.ClickColumn(context.Background(), domain.ColumnSport)
	snap = s.Snapshot()
	if snap.Rows[0].Sport != "NFL" {
		t.Errorf("sport column desc: first row sport = %s, want NFL", snap.Rows[0].Sport)
	}
	if dir := s.ClickColumn(context.Background(), domain.ColumnSport); dir != domain.SortAscending {
		t.Errorf("second click direction = %v, want ascending", dir)
	}
	if snap := s.Snapshot(); snap.Rows[0].Sport != "NBA" {
		t.Errorf("sport column asc: first row sport = %s, want NBA", snap.Rows[0].Sport)
	}
}

func waitIdle(t *testing.T, s *Scheduler) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Status().State == "idle" {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("scheduler did not return to idle")
}
