package goals

import (
	"math"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// IsBallReactive reports whether a goal's target should drift toward the
// predicted ball intercept.
func IsBallReactive(g world.Goal) bool {
	switch g {
	case world.ReceiveServe, world.ReceiveLeft, world.ReceiveMiddle, world.ReceiveRight,
		world.DefendLeftBack, world.DefendMiddleBack, world.DefendRightBack, world.DefendOffBlocker,
		world.TipCoverage, world.BlockLeft, world.BlockMiddle, world.BlockRight,
		world.ChaseBall, world.SetOutOfSystem:
		return true
	}
	return false
}

// IsAttackApproach reports whether a goal is an attack approach that goes
// through a waypoint.
func IsAttackApproach(g world.Goal) bool {
	switch g {
	case world.ApproachLeft, world.ApproachMiddle, world.ApproachRight, world.ApproachBackRow:
		return true
	}
	return false
}

// ApproachAngle returns the approach angle off the net normal, in radians.
func ApproachAngle(c world.Category) float64 {
	switch c {
	case world.CategoryOutside:
		return 40 * math.Pi / 180
	case world.CategoryOpposite:
		return 35 * math.Pi / 180
	case world.CategoryMiddle:
		return 15 * math.Pi / 180
	}
	return 0
}

// ApproachWaypoint returns the pre-attack waypoint for an approach ending at
// target, distance away from it. Left-side approaches start outside left,
// right-side ones outside right, middles slightly right of straight back.
func ApproachWaypoint(g world.Goal, c world.Category, target geometry.Vec2, side geometry.Side, court geometry.Court, distance float64) geometry.Vec2 {
	angle := ApproachAngle(c)
	dir := geometry.Vec2{math.Sin(angle), math.Cos(angle)}
	if g == world.ApproachLeft {
		dir[0] = -dir[0]
	}
	home := court.ToHomeFrame(target, side)
	wp := home.Add(dir.Mul(distance))
	wp = court.ClampToSide(court.ClampToBounds(wp), geometry.Home, attackAllowance)
	return court.FromHomeFrame(wp, side)
}

// BlockLane returns the lane of a blocking goal.
func BlockLane(g world.Goal) (Lane, bool) {
	switch g {
	case world.BlockLeft:
		return BlockLaneLeft, true
	case world.BlockMiddle:
		return BlockLaneMiddle, true
	case world.BlockRight:
		return BlockLaneRight, true
	}
	return Lane{}, false
}
