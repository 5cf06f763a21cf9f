package domain

// SourceStatus is the per-source status reported by the scan backend.
type SourceStatus string

const (
	StatusOK            SourceStatus = "ok"
	StatusEmpty         SourceStatus = "empty"
	StatusError         SourceStatus = "error"
	StatusNoKey         SourceStatus = "no_key"
	StatusPending       SourceStatus = "pending"
	StatusOKNoArbs      SourceStatus = "ok_no_arbs"
	StatusQuotaExceeded SourceStatus = "quota_exceeded"
	StatusInvalidKey    SourceStatus = "invalid_key"
	StatusDemo          SourceStatus = "demo"
)

// Severity buckets a source status for display and alerting.
type Severity string

const (
	SeverityOK    Severity = "ok"
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// ParseSourceStatus maps a wire value onto the closed enumeration. Unknown
// values degrade to StatusError rather than crashing the refresh.
func ParseSourceStatus(s string) SourceStatus {
	switch SourceStatus(s) {
	case StatusOK, StatusEmpty, StatusError, StatusNoKey, StatusPending,
		StatusOKNoArbs, StatusQuotaExceeded, StatusInvalidKey, StatusDemo:
		return SourceStatus(s)
	default:
		return StatusError
	}
}

// Severity returns the display severity for the status. The mapping is
// exhaustive over the closed enumeration; anything else is an error.
func (s SourceStatus) Severity() Severity {
	switch s {
	case StatusOK, StatusOKNoArbs, StatusDemo:
		return SeverityOK
	case StatusEmpty, StatusNoKey, StatusPending:
		return SeverityWarn
	case StatusError, StatusQuotaExceeded, StatusInvalidKey:
		return SeverityError
	default:
		return SeverityError
	}
}
