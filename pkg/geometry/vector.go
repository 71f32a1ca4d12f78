package geometry

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a court-normalized ground position or velocity.
type Vec2 = mgl64.Vec2

// Vec3 is a ground position plus height in meters.
type Vec3 = mgl64.Vec3

// ErrNonFinite is returned when a vector contains NaN or Inf components.
var ErrNonFinite = errors.New("non-finite vector component")

// V2 builds a Vec2
func V2(x, y float64) Vec2 { return Vec2{x, y} }

// V3 builds a Vec3
func V3(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Ground drops the height component.
func Ground(v Vec3) Vec2 { return Vec2{v[0], v[1]} }

// Dist returns the euclidean distance between two ground points.
func Dist(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

// SafeNormalize returns the unit vector of v, or the zero vector when v is
// shorter than epsilon. mgl64's Normalize divides by zero on empty input.
func SafeNormalize(v Vec2) Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return v.Mul(1 / l)
}

// Perp returns v rotated 90 degrees counter-clockwise.
func Perp(v Vec2) Vec2 {
	return Vec2{-v[1], v[0]}
}

// Lerp interpolates from a to b by t.
func Lerp(a, b Vec2, t float64) Vec2 {
	return a.Add(b.Sub(a).Mul(t))
}

// ClampLen scales v down so its length does not exceed max.
func ClampLen(v Vec2, max float64) Vec2 {
	l := v.Len()
	if l <= max || l == 0 {
		return v
	}
	return v.Mul(max / l)
}

// Clamp clamps a scalar into [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return mgl64.Clamp(v, lo, hi)
}

// ClampVec clamps each component of p into the box [lo, hi].
func ClampVec(p, lo, hi Vec2) Vec2 {
	return Vec2{Clamp(p[0], lo[0], hi[0]), Clamp(p[1], lo[1], hi[1])}
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// IsFinite2 reports whether both components are finite.
func IsFinite2(v Vec2) bool {
	return finite(v[0]) && finite(v[1])
}

// IsFinite3 reports whether all components are finite.
func IsFinite3(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}

// Validate2 is the single validation point for ground vectors entering the
// core. Callers decide the fallback.
func Validate2(v Vec2) (Vec2, error) {
	if !IsFinite2(v) {
		return Vec2{}, ErrNonFinite
	}
	return v, nil
}

// Validate3 is Validate2 for 3D vectors.
func Validate3(v Vec3) (Vec3, error) {
	if !IsFinite3(v) {
		return Vec3{}, ErrNonFinite
	}
	return v, nil
}
