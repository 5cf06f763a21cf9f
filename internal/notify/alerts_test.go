package notify

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/alanyoungcy/arbwatch/internal/arbitrage"
	"github.com/alanyoungcy/arbwatch/internal/domain"
)

type fakeSender struct {
	mu       sync.Mutex
	titles   []string
	messages []string
	fail     bool
}

func (f *fakeSender) Send(_ context.Context, title, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return context.DeadlineExceeded
	}
	f.titles = append(f.titles, title)
	f.messages = append(f.messages, message)
	return nil
}

func (f *fakeSender) Name() string { return "fake" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleOpp() domain.Opportunity {
	return domain.Opportunity{
		ID:          "x1",
		Sport:       "NBA",
		Event:       "Lakers @ Celtics",
		MarketType:  domain.MarketMoneyline,
		LegA:        domain.Leg{PlatformName: "Kalshi", Side: "Lakers", AmericanOdds: 138},
		LegB:        domain.Leg{PlatformName: "Pinnacle", Side: "Celtics", AmericanOdds: -113},
		GrossArbPct: 5,
		NetArbPct:   4,
		TimeDisplay: "2h 15m",
	}
}

func TestOpportunityFoundFormatsBothLegs(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier([]Sender{s}, []string{EventNewArb}, discardLogger())

	stakes := &arbitrage.Stakes{StakeA: 45, StakeB: 50, GuaranteedProfit: 5, ROIPct: 5.26}
	if err := n.OpportunityFound(context.Background(), sampleOpp(), stakes); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(s.messages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(s.messages))
	}
	msg := s.messages[0]
	for _, want := range []string{"Kalshi: Lakers +138", "Pinnacle: Celtics -113", "net 4.00%", "Stake 45.00 / 50.00", "2h 15m"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}

func TestOpportunityFoundWithoutStakes(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier([]Sender{s}, nil, discardLogger())

	if err := n.OpportunityFound(context.Background(), sampleOpp(), nil); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if strings.Contains(s.messages[0], "Stake") {
		t.Error("message must omit stake line when stakes are unknown")
	}
}

func TestEventFilterSuppressesUnlistedEvents(t *testing.T) {
	s := &fakeSender{}
	n := NewNotifier([]Sender{s}, []string{EventNewArb}, discardLogger())

	if err := n.ScanFailed(context.Background(), "backend down"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(s.messages) != 0 {
		t.Error("scan_error must be filtered when not in the event list")
	}
}

func TestDispatchContinuesPastFailingSender(t *testing.T) {
	bad := &fakeSender{fail: true}
	good := &fakeSender{}
	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())

	err := n.ScanFailed(context.Background(), "timeout")
	if err == nil {
		t.Fatal("expected combined error from failing sender")
	}
	if len(good.messages) != 1 {
		t.Error("healthy sender must still receive the notification")
	}
}
