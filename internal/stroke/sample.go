package stroke

// Point is a position on the capture surface, in surface units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sample represents a single digitizer reading. Samples are values and are
// never modified once created.
type Sample struct {
	Timestamp float64 `json:"timestamp"` // Seconds, monotonic within a recording session
	Location  Point   `json:"location"`  // Precise location on the capture surface
	Force     float64 `json:"force"`     // Pressure reported by the device
	Altitude  float64 `json:"altitude"`  // Altitude angle in radians
	Azimuth   float64 `json:"azimuth"`   // Azimuth angle in radians
}

// Stats summarises a stream for display next to its preview.
type Stats struct {
	Count        int     // Number of samples
	Duration     float64 // Seconds between the first and the last sample
	AverageForce float64 // Mean force over all samples, 0 for an empty stream
}
