package domain

// Axis names one of the two time axes of an envelope.
type Axis string

const (
	AxisVersion    Axis = "VERSION"
	AxisCorrection Axis = "CORRECTION"
)
