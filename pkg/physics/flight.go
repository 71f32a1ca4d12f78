package physics

import (
	"math"

	"github.com/picogrid/volley-simulations/pkg/geometry"
)

// FlightPhase describes the vertical motion of the ball.
type FlightPhase string

const (
	Rising   FlightPhase = "rising"
	Falling  FlightPhase = "falling"
	Grounded FlightPhase = "grounded"
)

// interiorMargin keeps perturbed in-court targets off the lines.
const interiorMargin = 0.02

// finiteDiffStep is the time step used to estimate velocity.
const finiteDiffStep = 1e-3

// Flight describes one ball arc from a contact to the floor.
type Flight struct {
	Contact   ContactType   `json:"contact"`
	Origin    geometry.Vec3 `json:"origin"`
	Intended  geometry.Vec2 `json:"intended"`
	Target    geometry.Vec2 `json:"target"`
	StartTime float64       `json:"startTime"`
	Duration  float64       `json:"duration"`
	Peak      float64       `json:"peak"`
}

// Rand is the subset of *math/rand.Rand the physics layer draws from.
type Rand interface {
	Float64() float64
}

// Duration returns the clamped flight time for a ground distance.
func (p Params) Duration(distance, power float64) float64 {
	power = geometry.Clamp(power, 0, 1)
	d := p.MinDuration + distance*p.DurationPerUnit*(1-power*p.PowerReduction)
	return geometry.Clamp(d, p.MinDuration, p.MaxDuration)
}

// PeakHeight returns the apex height for a ground distance.
func (p Params) PeakHeight(distance, power float64) float64 {
	power = geometry.Clamp(power, 0, 1)
	return (p.PeakBase + distance*p.PeakPerUnit) * (1 + power*p.PowerLift)
}

// Spread returns the standard deviation of aim error for an accuracy.
func (p Params) Spread(accuracy float64) float64 {
	return p.MaxSpread * (1 - geometry.Clamp(accuracy, 0, 1))
}

// Launch builds the flight produced by a contact at origin aimed at target.
// The aim is perturbed by Gaussian error scaled by (1 - accuracy). In-court
// targets stay inside the court and on their intended half. Targets already
// out of bounds are perturbed but never clamped.
func Launch(origin geometry.Vec3, target geometry.Vec2, contact ContactType, skill Skill, start float64, rng Rand, court geometry.Court, table Table) Flight {
	params := table.For(contact)
	ground := geometry.Ground(origin)
	distance := geometry.Dist(ground, target)

	actual := target
	if spread := params.Spread(skill.Accuracy); spread > 0 && rng != nil {
		gx, gy := BoxMuller(rng)
		actual = geometry.Vec2{target[0] + gx*spread, target[1] + gy*spread}
	}
	if court.InBounds(target) {
		side := court.SideOf(target)
		actual = court.ClampToInterior(actual, interiorMargin)
		if court.SideOf(actual) != side {
			actual = court.ClampToSide(actual, side, interiorMargin/2)
		}
	}

	return Flight{
		Contact:   contact,
		Origin:    origin,
		Intended:  target,
		Target:    actual,
		StartTime: start,
		Duration:  params.Duration(distance, skill.Power),
		Peak:      params.PeakHeight(distance, skill.Power),
	}
}

// BoxMuller draws two independent standard normal values.
func BoxMuller(rng Rand) (float64, float64) {
	u1 := rng.Float64()
	if u1 < 1e-12 {
		u1 = 1e-12
	}
	u2 := rng.Float64()
	r := math.Sqrt(-2 * math.Log(u1))
	theta := 2 * math.Pi * u2
	return r * math.Cos(theta), r * math.Sin(theta)
}

// Elapsed returns time since launch, never negative.
func (f Flight) Elapsed(t float64) float64 {
	e := t - f.StartTime
	if e < 0 {
		return 0
	}
	return e
}

// Progress returns the normalized flight progress in [0, 1].
func (f Flight) Progress(t float64) float64 {
	if f.Duration <= 0 {
		return 1
	}
	return geometry.Clamp(f.Elapsed(t)/f.Duration, 0, 1)
}

// LandingTime returns the absolute time the ball reaches the floor.
func (f Flight) LandingTime() float64 {
	return f.StartTime + f.Duration
}

// height fits z through (0, launch), (0.5, peak), (1, 0).
func (f Flight) height(s float64) float64 {
	h0 := f.Origin[2]
	return h0*2*(s-0.5)*(s-1) - f.Peak*4*s*(s-1)
}

// PositionAt returns the ball position at absolute time t.
func (f Flight) PositionAt(t float64) geometry.Vec3 {
	s := f.Progress(t)
	ground := geometry.Lerp(geometry.Ground(f.Origin), f.Target, s)
	z := f.height(s)
	if z < 0 {
		z = 0
	}
	return geometry.Vec3{ground[0], ground[1], z}
}

// VelocityAt estimates velocity at t by central finite difference.
func (f Flight) VelocityAt(t float64) geometry.Vec3 {
	if f.Complete(t) {
		return geometry.Vec3{}
	}
	a := f.PositionAt(t - finiteDiffStep)
	b := f.PositionAt(t + finiteDiffStep)
	return b.Sub(a).Mul(1 / (2 * finiteDiffStep))
}

// PhaseAt reports whether the ball is rising, falling or grounded at t.
func (f Flight) PhaseAt(t float64) FlightPhase {
	if f.Complete(t) {
		return Grounded
	}
	s := f.Progress(t)
	// derivative of height with respect to s
	dz := f.Origin[2]*(4*s-3) - f.Peak*(8*s-4)
	if dz > 0 {
		return Rising
	}
	return Falling
}

// Complete reports whether the flight has reached the floor, i.e. the elapsed
// time has reached the duration.
func (f Flight) Complete(t float64) bool {
	return f.Duration <= 0 || t >= f.LandingTime()
}

// CrossedNet reports whether the ball's ground position at t is on the other
// half from where it was launched.
func (f Flight) CrossedNet(t float64, court geometry.Court) bool {
	origin := court.SideOf(geometry.Ground(f.Origin))
	now := court.SideOf(geometry.Ground(f.PositionAt(t)))
	return origin != now
}

// Contactable reports whether a player could touch the ball at t.
func (f Flight) Contactable(t, maxReach float64) bool {
	if f.Complete(t) {
		return false
	}
	return f.PositionAt(t)[2] <= maxReach
}
