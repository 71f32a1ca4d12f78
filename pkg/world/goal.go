package world

// Goal is an abstract tactical objective that goal resolution turns into a
// court target.
type Goal string

const (
	Base          Goal = "Base"
	StayInPlace   Goal = "StayInPlace"
	ServePosition Goal = "ServePosition"

	ReceiveServe  Goal = "ReceiveServe"
	ReceiveLeft   Goal = "ReceiveLeft"
	ReceiveMiddle Goal = "ReceiveMiddle"
	ReceiveRight  Goal = "ReceiveRight"
	StackW1       Goal = "StackW1"
	StackW2       Goal = "StackW2"
	StackW3       Goal = "StackW3"
	StackW4       Goal = "StackW4"
	StackW5       Goal = "StackW5"

	SetterRelease  Goal = "SetterRelease"
	SetInSystem    Goal = "SetInSystem"
	SetOutOfSystem Goal = "SetOutOfSystem"
	SetQuick       Goal = "SetQuick"
	SetOutside     Goal = "SetOutside"
	SetOpposite    Goal = "SetOpposite"

	ApproachLeft    Goal = "ApproachLeft"
	ApproachMiddle  Goal = "ApproachMiddle"
	ApproachRight   Goal = "ApproachRight"
	ApproachBackRow Goal = "ApproachBackRow"

	BlockLeft   Goal = "BlockLeft"
	BlockMiddle Goal = "BlockMiddle"
	BlockRight  Goal = "BlockRight"

	DefendLeftBack   Goal = "DefendLeftBack"
	DefendMiddleBack Goal = "DefendMiddleBack"
	DefendRightBack  Goal = "DefendRightBack"
	DefendOffBlocker Goal = "DefendOffBlocker"
	TipCoverage      Goal = "TipCoverage"
	CoverHitter      Goal = "CoverHitter"

	ChaseBall        Goal = "ChaseBall"
	FreeBallPosition Goal = "FreeBallPosition"
	TransitionOffNet Goal = "TransitionOffNet"
)

// Goals lists every known goal.
var Goals = []Goal{
	Base, StayInPlace, ServePosition,
	ReceiveServe, ReceiveLeft, ReceiveMiddle, ReceiveRight,
	StackW1, StackW2, StackW3, StackW4, StackW5,
	SetterRelease, SetInSystem, SetOutOfSystem, SetQuick, SetOutside, SetOpposite,
	ApproachLeft, ApproachMiddle, ApproachRight, ApproachBackRow,
	BlockLeft, BlockMiddle, BlockRight,
	DefendLeftBack, DefendMiddleBack, DefendRightBack, DefendOffBlocker, TipCoverage, CoverHitter,
	ChaseBall, FreeBallPosition, TransitionOffNet,
}

// Known reports whether g is a defined goal.
func (g Goal) Known() bool {
	for _, k := range Goals {
		if k == g {
			return true
		}
	}
	return false
}
