package models

// RouteType distinguishes the baseline route from the crime-aware
// alternative in a response.
type RouteType string

const (
	RouteTypeFastest RouteType = "fastest"
	RouteTypeSafest  RouteType = "safest"
)

// Segment is one edge of a returned polyline, annotated with the
// safety metrics computed by the exposure model.
type Segment struct {
	Start                Coordinate `json:"start"`
	End                  Coordinate `json:"end"`
	DistanceM            float64    `json:"distance_m"`
	SafetyScore          float64    `json:"safety_score"` // 0-100
	CrimeDensity         float64    `json:"crime_density"` // crimes per km within influence radius
	HighSeverityCrimes   int        `json:"high_severity_crimes"`
	CriticalCrimes24h    int        `json:"critical_crimes_24h"`
	HoursToNearestCrime  float64    `json:"hours_to_nearest_crime"` // sentinel NoCrimeSentinel if none
	EdgeWeight           float64    `json:"edge_weight"`           // distance_m + segment_penalty
	Penalty              float64    `json:"-"`                      // retained for route-level aggregation
}

// NoCrimeSentinel marks HoursToNearestCrime when no crime falls within
// the segment's influence radius.
const NoCrimeSentinel = -1.0

// CrimeZoneView is a critical crime zone attached to a route response.
type CrimeZoneView struct {
	Coordinate
	CrimeType string  `json:"crime_type"`
	Severity  int     `json:"severity"`
	HoursAgo  float64 `json:"hours_ago"`
}

// Route is an ordered sequence of Segments plus route-level totals.
type Route struct {
	RouteType          RouteType       `json:"route_type"`
	TotalDistanceM     float64         `json:"total_distance"`
	TotalDurationS     float64         `json:"total_duration"`
	TotalSafetyScore   float64         `json:"total_safety_score"`  // 0-100
	TotalCrimePenalty  float64         `json:"total_crime_penalty"`
	PathCoordinates    []Coordinate    `json:"path_coordinates"`
	Segments           []Segment       `json:"segments"`
	CriticalCrimeZones []CrimeZoneView `json:"critical_crime_zones"`
}

// Comparison reports deltas between the safest and fastest routes.
type Comparison struct {
	TimeDifferenceSeconds    float64 `json:"time_difference_seconds"`
	TimeDifferenceMinutes    float64 `json:"time_difference_minutes"`
	DistanceDifferenceMeters float64 `json:"distance_difference_meters"`
	DistanceDifferencePct    float64 `json:"distance_difference_percent"`
	SafetyImprovement        float64 `json:"safety_improvement"`
	SafetyImprovementPct     float64 `json:"safety_improvement_percent"`
}

// RouteResponse is the public shape returned for an optimal-route request.
type RouteResponse struct {
	RequestID    string     `json:"request_id"`
	FastestRoute Route      `json:"fastest_route"`
	SafestRoute  Route      `json:"safest_route"`
	Comparison   Comparison `json:"comparison"`
	Fallback     bool       `json:"fallback,omitempty"` // true if the alternative oracle call failed
}

// DensityCell is one grid cell in the heatmap.
type DensityCell struct {
	Coordinate
	Density   float64 `json:"density"`
	Intensity float64 `json:"intensity"` // 0-1
}

// HeatmapResponse is the public shape returned for a heatmap request.
type HeatmapResponse struct {
	HeatmapData        []DensityCell `json:"heatmap_data"`
	TotalCrimes         int           `json:"total_crimes"`
	CriticalCrimes24h   int           `json:"critical_crimes_24h"`
	HighSeverityCrimes  int           `json:"high_severity_crimes"`
}
