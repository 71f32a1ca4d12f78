package world

import "github.com/picogrid/volley-simulations/pkg/geometry"

// HitterMode tells how many front-row attackers a rotation has.
type HitterMode string

const (
	ThreeHitters HitterMode = "three-hitters"
	TwoHitters   HitterMode = "two-hitters"
)

// baseZones places each role in rotation 1.
var baseZones = map[Role]int{
	Setter:   1,
	Outside1: 2,
	Middle2:  3,
	Opposite: 4,
	Outside2: 5,
	Middle1:  6,
}

// ValidRotation reports whether r is 1-6.
func ValidRotation(r int) bool {
	return r >= 1 && r <= 6
}

// NextRotation advances one rotation (side-out).
func NextRotation(r int) int {
	if !ValidRotation(r) {
		return 1
	}
	return r%6 + 1
}

// ZoneOf returns the zone role occupies in rotation, or 0 for the libero and
// unknown roles. Each rotation moves every player one zone clockwise
// (2 to 1, 1 to 6, ...).
func ZoneOf(role Role, rotation int) int {
	z, ok := baseZones[role]
	if !ok || !ValidRotation(rotation) {
		return 0
	}
	return ((z-rotation)%6+6)%6 + 1
}

// ResponsibleZone is ZoneOf with the libero mapped to the back-row middle's
// zone.
func ResponsibleZone(role Role, rotation int) int {
	if role == LiberoRole {
		return ZoneOf(BackRowMiddle(rotation), rotation)
	}
	return ZoneOf(role, rotation)
}

// RoleInZone is the inverse of ZoneOf.
func RoleInZone(zone, rotation int) Role {
	for role := range baseZones {
		if ZoneOf(role, rotation) == zone {
			return role
		}
	}
	return ""
}

// ServerRole returns the role serving in rotation.
func ServerRole(rotation int) Role {
	return RoleInZone(1, rotation)
}

// HitterModeOf returns three hitters when the setter is back row.
func HitterModeOf(rotation int) HitterMode {
	if geometry.FrontRow(ZoneOf(Setter, rotation)) {
		return TwoHitters
	}
	return ThreeHitters
}

// BackRowMiddle returns the middle blocker in the back row. Middles sit
// opposite each other so exactly one is back row.
func BackRowMiddle(rotation int) Role {
	if geometry.FrontRow(ZoneOf(Middle1, rotation)) {
		return Middle2
	}
	return Middle1
}

// FrontRowRoles returns the non-libero roles in zones 4, 3, 2.
func FrontRowRoles(rotation int) []Role {
	return []Role{RoleInZone(4, rotation), RoleInZone(3, rotation), RoleInZone(2, rotation)}
}
