// Package arbitrage implements the two-leg arbitrage math: gross and net
// profit percentages and equal-payout stake allocation.
//
// The fee model is authoritative for every profitability number in the
// system: a platform fee taxes only the winnings portion of a leg's return,
// not the full stake. Changing it changes everything downstream.
package arbitrage

import (
	"math"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// Edge holds the profitability of a two-leg opportunity before and after
// fees. Net is always <= Gross for non-negative fees.
type Edge struct {
	GrossPct float64 `json:"gross_arb_pct"`
	NetPct   float64 `json:"net_arb_pct"`
	Cost     float64 `json:"cost"`
	NetCost  float64 `json:"net_cost"`
}

// Evaluate computes the gross and net arbitrage percentages for implied
// probabilities pa, pb and fee fractions fa, fb (fractions of winnings, 0-1).
// It returns domain.ErrInsufficientData when either probability is not in
// (0,1).
func Evaluate(pa, pb, fa, fb float64) (Edge, error) {
	if pa <= 0 || pa >= 1 || pb <= 0 || pb >= 1 {
		return Edge{}, domain.ErrInsufficientData
	}

	cost := pa + pb

	// Each leg's fee is charged on the (1-p) winnings portion of a unit
	// payout, raising its effective cost.
	netCost := (pa + (1-pa)*fa) + (pb + (1-pb)*fb)

	return Edge{
		GrossPct: (1 - cost) * 100,
		NetPct:   (1 - netCost) * 100,
		Cost:     cost,
		NetCost:  netCost,
	}, nil
}

// Stakes is an equal-payout stake allocation for a target bankroll. Whichever
// leg wins, the payout equals the bankroll; the guaranteed profit is the
// bankroll minus the total staked. Monetary fields carry full floating
// precision; rounding happens only at the presentation boundary.
type Stakes struct {
	StakeA           float64 `json:"stake_a"`
	StakeB           float64 `json:"stake_b"`
	TotalStaked      float64 `json:"total_staked"`
	Payout           float64 `json:"payout"`
	GuaranteedProfit float64 `json:"guaranteed_profit"`
	ROIPct           float64 `json:"roi_pct"`
}

// Allocate computes equal-payout stakes for bankroll B. It returns
// domain.ErrInsufficientData when either probability is undefined or not
// strictly positive, so callers report "unavailable" instead of a silently
// wrong split.
func Allocate(pa, pb, bankroll float64) (Stakes, error) {
	if pa <= 0 || pb <= 0 || bankroll <= 0 {
		return Stakes{}, domain.ErrInsufficientData
	}

	stakeA := bankroll * pa
	stakeB := bankroll * pb
	total := stakeA + stakeB
	profit := bankroll - total

	var roi float64
	if total > 0 {
		roi = profit / total * 100
	}

	return Stakes{
		StakeA:           stakeA,
		StakeB:           stakeB,
		TotalStaked:      total,
		Payout:           bankroll,
		GuaranteedProfit: profit,
		ROIPct:           roi,
	}, nil
}

// AllocateFor derives the stake allocation for an opportunity from its legs'
// implied probabilities. Opportunities missing a probability on either leg
// get domain.ErrInsufficientData; the caller disables stake display for that
// row only.
func AllocateFor(o domain.Opportunity, bankroll float64) (Stakes, error) {
	if !o.HasBothProbs() {
		return Stakes{}, domain.ErrInsufficientData
	}
	return Allocate(*o.LegA.ImpliedProb, *o.LegB.ImpliedProb, bankroll)
}

// Round2 rounds a monetary amount to two decimal places. Presentation
// boundary only: never feed the result back into further arithmetic.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
