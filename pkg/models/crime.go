package models

import "time"

// CrimePoint is one normalized incident as consumed from the crime
// store. Severity assignment and crime-type classification happen
// upstream of the core; this type treats CrimeType as an opaque label.
type CrimePoint struct {
	Coordinate
	Severity    int       `json:"severity"` // 1-10, see geo.SeverityWeight
	CrimeType   string    `json:"crime_type"`
	OccurredAt  time.Time `json:"occurred_at"`
	AgeHours    float64   `json:"age_hours"`

	// DistanceToSegmentM is a transient, per-query scratch field set by
	// the exposure model while scoring a specific segment. It is not
	// part of the crime store's contract and must not be read before a
	// scoring pass populates it for the segment in question.
	DistanceToSegmentM float64 `json:"-"`
}

// IsCritical reports whether the incident is recent enough to count
// toward a segment's critical_crimes_24h.
func (c CrimePoint) IsCritical(criticalHours float64) bool {
	return c.AgeHours <= criticalHours
}

// IsHighSeverity reports whether the incident counts toward a
// segment's high_severity_crimes.
func (c CrimePoint) IsHighSeverity() bool {
	return c.Severity >= 7
}

// BlockedArea is a critical-recent incident wrapped with its fixed
// advisory radius, as returned by the blocked-areas endpoint.
type BlockedArea struct {
	Coordinate
	Severity      int     `json:"severity"`
	CrimeType     string  `json:"crime_type"`
	HoursAgo      float64 `json:"hours_ago"`
	BlockedRadius float64 `json:"blocked_radius"`
	PenaltyLevel  string  `json:"penalty_level"`
}
