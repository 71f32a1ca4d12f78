package physics

// ContactType is the kind of touch that launched the current flight.
type ContactType string

const (
	Serve    ContactType = "serve"
	Pass     ContactType = "pass"
	Dig      ContactType = "dig"
	Set      ContactType = "set"
	Attack   ContactType = "attack"
	Block    ContactType = "block"
	FreeBall ContactType = "freeball"
)

// ContactTypes lists every contact type in a stable order.
var ContactTypes = []ContactType{Serve, Pass, Dig, Set, Attack, Block, FreeBall}

// Quality grades a touch. It drives in-system tracking and contact errors.
type Quality string

const (
	Perfect Quality = "perfect"
	Good    Quality = "good"
	Poor    Quality = "poor"
	Error   Quality = "error"
)

// InSystem reports whether a pass or dig of this quality keeps the offense
// in system.
func (q Quality) InSystem() bool {
	return q == Perfect || q == Good
}

// Skill is the accuracy and power of one player for one contact type, both
// in [0, 1].
type Skill struct {
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	Power    float64 `json:"power" yaml:"power"`
}

// Params tunes flights for one contact type.
type Params struct {
	MinDuration     float64 `json:"minDuration" yaml:"min_duration"`         // seconds
	MaxDuration     float64 `json:"maxDuration" yaml:"max_duration"`         // seconds
	DurationPerUnit float64 `json:"durationPerUnit" yaml:"duration_per_unit"` // seconds per normalized unit of ground distance
	PowerReduction  float64 `json:"powerReduction" yaml:"power_reduction"`   // fraction of the distance term removed at power 1
	PeakBase        float64 `json:"peakBase" yaml:"peak_base"`               // meters
	PeakPerUnit     float64 `json:"peakPerUnit" yaml:"peak_per_unit"`        // meters per normalized unit
	PowerLift       float64 `json:"powerLift" yaml:"power_lift"`             // fractional peak increase at power 1
	MaxSpread       float64 `json:"maxSpread" yaml:"max_spread"`             // normalized aim error at accuracy 0
	LaunchHeight    float64 `json:"launchHeight" yaml:"launch_height"`       // meters
}

// Table maps contact types to their flight parameters.
type Table map[ContactType]Params

// For returns the params for c, falling back to the pass entry.
func (t Table) For(c ContactType) Params {
	if p, ok := t[c]; ok {
		return p
	}
	if p, ok := t[Pass]; ok {
		return p
	}
	return DefaultTable()[Pass]
}

// DefaultTable returns the stock flight parameters.
func DefaultTable() Table {
	return Table{
		Serve: {
			MinDuration: 0.9, MaxDuration: 2.2, DurationPerUnit: 1.6, PowerReduction: 0.45,
			PeakBase: 3.2, PeakPerUnit: 1.4, PowerLift: 0.05, MaxSpread: 0.12, LaunchHeight: 2.6,
		},
		Pass: {
			MinDuration: 0.8, MaxDuration: 1.8, DurationPerUnit: 2.2, PowerReduction: 0.15,
			PeakBase: 3.0, PeakPerUnit: 2.0, PowerLift: 0.05, MaxSpread: 0.10, LaunchHeight: 0.8,
		},
		Dig: {
			MinDuration: 0.7, MaxDuration: 1.6, DurationPerUnit: 2.0, PowerReduction: 0.1,
			PeakBase: 2.8, PeakPerUnit: 2.2, PowerLift: 0.05, MaxSpread: 0.14, LaunchHeight: 0.6,
		},
		Set: {
			MinDuration: 0.5, MaxDuration: 1.4, DurationPerUnit: 1.8, PowerReduction: 0.2,
			PeakBase: 3.3, PeakPerUnit: 1.5, PowerLift: 0.04, MaxSpread: 0.06, LaunchHeight: 2.4,
		},
		Attack: {
			MinDuration: 0.35, MaxDuration: 0.9, DurationPerUnit: 0.9, PowerReduction: 0.4,
			PeakBase: 3.0, PeakPerUnit: 0.2, PowerLift: 0.02, MaxSpread: 0.10, LaunchHeight: 3.1,
		},
		Block: {
			MinDuration: 0.3, MaxDuration: 0.8, DurationPerUnit: 1.0, PowerReduction: 0.2,
			PeakBase: 2.9, PeakPerUnit: 0.5, PowerLift: 0.02, MaxSpread: 0.16, LaunchHeight: 2.9,
		},
		FreeBall: {
			MinDuration: 0.9, MaxDuration: 1.8, DurationPerUnit: 1.8, PowerReduction: 0.1,
			PeakBase: 3.6, PeakPerUnit: 1.2, PowerLift: 0.03, MaxSpread: 0.10, LaunchHeight: 1.0,
		},
	}
}
