package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/alanyoungcy/arbwatch/internal/arbitrage"
	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// Event types emitted by the refresh cycle.
const (
	EventNewArb    = "new_arb"
	EventScanError = "scan_error"
)

// OpportunityFound notifies all channels about a newly detected opportunity
// that crossed the alert threshold. stakes may be nil when the feed did not
// carry both implied probabilities.
func (n *Notifier) OpportunityFound(ctx context.Context, o domain.Opportunity, stakes *arbitrage.Stakes) error {
	title := fmt.Sprintf("New arb: %s %.2f%% net", o.Sport, o.NetArbPct)
	return n.Notify(ctx, EventNewArb, title, formatOpportunity(o, stakes))
}

// ScanFailed notifies all channels that a refresh cycle failed; the dashboard
// keeps showing the previous snapshot meanwhile.
func (n *Notifier) ScanFailed(ctx context.Context, reason string) error {
	return n.Notify(ctx, EventScanError, "Scan failed", reason)
}

// formatOpportunity renders the alert body: event line, both legs with their
// platforms and sides, the edge, and the stake split when available.
func formatOpportunity(o domain.Opportunity, stakes *arbitrage.Stakes) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s", o.Event)
	if o.MarketType != "" && o.MarketType != domain.MarketUnknown {
		fmt.Fprintf(&b, " (%s)", o.MarketType)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s: %s", o.LegA.PlatformName, o.LegA.Side)
	if o.LegA.AmericanOdds != 0 {
		fmt.Fprintf(&b, " %+d", o.LegA.AmericanOdds)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s", o.LegB.PlatformName, o.LegB.Side)
	if o.LegB.AmericanOdds != 0 {
		fmt.Fprintf(&b, " %+d", o.LegB.AmericanOdds)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Gross %.2f%%, net %.2f%%", o.GrossArbPct, o.NetArbPct)

	if stakes != nil {
		fmt.Fprintf(&b, "\nStake %.2f / %.2f for %.2f guaranteed (%.2f%% ROI)",
			stakes.StakeA, stakes.StakeB, stakes.GuaranteedProfit, stakes.ROIPct)
	}
	if o.TimeDisplay != "" {
		fmt.Fprintf(&b, "\nStarts in %s", o.TimeDisplay)
	}
	if o.IsLive {
		b.WriteString("\nLIVE")
	}

	return b.String()
}
