package domain

// SortMetric is a named ranking key.
type SortMetric string

const (
	SortNet        SortMetric = "net"
	SortGross      SortMetric = "gross"
	SortTime       SortMetric = "time"
	SortLiquidity  SortMetric = "liquidity"
	SortConfidence SortMetric = "confidence"
)

// Column identifies a table column the user can click to override the metric
// sort.
type Column string

const (
	ColumnSport      Column = "sport"
	ColumnEvent      Column = "event"
	ColumnMarket     Column = "market"
	ColumnPlatformA  Column = "platform_a"
	ColumnPlatformB  Column = "platform_b"
	ColumnGross      Column = "gross"
	ColumnNet        Column = "net"
	ColumnConfidence Column = "confidence"
	ColumnTime       Column = "time"
	ColumnLiquidity  Column = "liquidity"
)

// SortDirection is the direction of a column sort.
type SortDirection int

const (
	SortDescending SortDirection = iota
	SortAscending
)

// IsString reports whether the column compares as text (locale-style string
// ordering) rather than numerically.
func (c Column) IsString() bool {
	switch c {
	case ColumnSport, ColumnEvent, ColumnMarket, ColumnPlatformA, ColumnPlatformB:
		return true
	default:
		return false
	}
}
