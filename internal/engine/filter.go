// Package engine implements the per-refresh evaluation pipeline applied to
// each scan result: the multi-predicate filter, the two-stage ranking engine,
// and the new-opportunity change detector.
package engine

import (
	"strings"

	"github.com/alanyoungcy/arbwatch/internal/domain"
)

// Filter applies the criteria's predicates to opps, ANDed, preserving input
// order. A predicate whose criterion set is empty passes everything, so an
// all-default criteria value returns the input unchanged. Filtering an
// already-filtered slice with the same criteria is a no-op.
func Filter(opps []domain.Opportunity, c domain.FilterCriteria) []domain.Opportunity {
	out := make([]domain.Opportunity, 0, len(opps))
	for _, o := range opps {
		if Matches(o, c) {
			out = append(out, o)
		}
	}
	return out
}

// Matches reports whether a single opportunity passes every predicate.
func Matches(o domain.Opportunity, c domain.FilterCriteria) bool {
	return matchesSport(o, c.Sports) &&
		matchesPlatform(o, c.Platforms) &&
		matchesMarketType(o, c.MarketTypes) &&
		matchesLive(o, c.IncludeLive) &&
		o.NetArbPct >= c.MinNetPct
}

func matchesSport(o domain.Opportunity, sports []string) bool {
	if len(sports) == 0 {
		return true
	}
	sport := strings.ToLower(o.Sport)
	for _, s := range sports {
		if s == "" {
			continue
		}
		if strings.Contains(sport, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func matchesPlatform(o domain.Opportunity, platforms []string) bool {
	if len(platforms) == 0 {
		return true
	}
	a := strings.ToLower(o.LegA.PlatformName)
	b := strings.ToLower(o.LegB.PlatformName)
	for _, p := range platforms {
		if p == "" {
			continue
		}
		tok := strings.ToLower(p)
		if strings.Contains(a, tok) || strings.Contains(b, tok) {
			return true
		}
	}
	return false
}

// matchesMarketType passes when the opportunity's type is selected, when the
// opportunity is a prop and "props" is selected, or when the opportunity is a
// generic binary market and moneyline is selected (binary markets are
// moneyline-equivalent). Unknown market types fail any active type filter.
func matchesMarketType(o domain.Opportunity, selected []string) bool {
	if len(selected) == 0 {
		return true
	}

	isProp := o.IsProp || o.MarketType.IsProp()

	for _, s := range selected {
		tok := strings.ToLower(strings.TrimSpace(s))
		switch tok {
		case "":
			continue
		case "props", "player_props":
			if isProp {
				return true
			}
		case "moneyline", string(domain.MarketMoneyline):
			if o.MarketType == domain.MarketMoneyline || o.MarketType == domain.MarketBinary {
				return true
			}
		default:
			if o.MarketType != domain.MarketUnknown && string(o.MarketType) == tok {
				return true
			}
		}
	}
	return false
}

func matchesLive(o domain.Opportunity, includeLive bool) bool {
	if includeLive {
		return true
	}
	return !o.IsLive
}
