package domain

import "time"

// ScanMeta is the metadata block the backend returns alongside each scan.
type ScanMeta struct {
	ScanTime        float64                 `json:"scan_time"`
	Timestamp       time.Time               `json:"timestamp"`
	TotalCount      int                     `json:"total_opportunities"`
	ArbCount        int                     `json:"arb_count"`
	EVCount         int                     `json:"ev_count"`
	Sources         map[string]SourceStatus `json:"sources"`
	Errors          []string                `json:"errors"`
	IsDemo          bool                    `json:"is_demo"`
	PolyCount       int                     `json:"poly_count"`
	KalshiCount     int                     `json:"kalshi_count"`
	SportsbookCount int                     `json:"sportsbook_count"`
}

// ScanResult is one backend scan response: the raw opportunity list plus its
// metadata. Opportunities arrive presorted by the backend but the monitor
// re-ranks them after filtering.
type ScanResult struct {
	Opportunities []Opportunity `json:"opportunities"`
	Meta          ScanMeta      `json:"meta"`
}
