package domain

// FilterCriteria is the transient value object built from the current
// dashboard selections. An empty slice or zero value leaves the corresponding
// predicate open (passes everything).
type FilterCriteria struct {
	// Sports are tokens matched case-insensitively as substrings of the
	// opportunity's sport field (selecting "NFL" also passes "nfl_preseason").
	Sports []string

	// Platforms are tokens matched case-insensitively as substrings of either
	// leg's platform name.
	Platforms []string

	// MarketTypes selects market types by token: "h2h" (moneyline), "spreads",
	// "totals", "props". Prop opportunities match a selected "props" token;
	// binary markets are moneyline-equivalent.
	MarketTypes []string

	// IncludeLive keeps in-play opportunities when true.
	IncludeLive bool

	// MinNetPct is the inclusive lower bound on net arb percentage.
	MinNetPct float64
}
