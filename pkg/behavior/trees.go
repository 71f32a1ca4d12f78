package behavior

import (
	"fmt"

	"github.com/picogrid/volley-simulations/pkg/intent"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Library maps role categories to their trees.
type Library struct {
	Params Params
	trees  map[world.Category]Node
}

// NewLibrary builds the stock trees.
func NewLibrary(params Params) *Library {
	return &Library{
		Params: params,
		trees: map[world.Category]Node{
			world.CategorySetter:   SetterTree(),
			world.CategoryOutside:  OutsideTree(),
			world.CategoryMiddle:   MiddleTree(),
			world.CategoryOpposite: OppositeTree(),
			world.CategoryLibero:   LiberoTree(),
		},
	}
}

// TreeFor returns the tree for category, falling back to the outside tree.
func (l *Library) TreeFor(category world.Category) Node {
	if t, ok := l.trees[category]; ok {
		return t
	}
	return l.trees[world.CategoryOutside]
}

// Register replaces the tree for category.
func (l *Library) Register(category world.Category, tree Node) {
	l.trees[category] = tree
}

// Decide evaluates the actor's tree and returns its decision trace. The
// selected intent is the best ranked proposal; the rest are kept as
// considered alternatives.
func (l *Library) Decide(board world.Blackboard, actor world.PlayerState) intent.DecisionTrace {
	c := Context{Board: board, Actor: actor, Params: l.Params}
	r := Evaluate(l.TreeFor(actor.Category), c)

	trace := intent.DecisionTrace{
		Tick:     board.Tick,
		PlayerID: actor.ID,
		Side:     actor.Team,
		Role:     actor.Role,
		Phase:    board.Phase,
		Tree:     r.Trace,
	}
	if sel, rest, ok := intent.Select(r.Intents); ok {
		trace.Selected = &sel
		trace.Considered = rest
	}
	return trace
}

// root wraps a role's decisions with the base fallback so every tree always
// proposes something.
func root(name string, decisions ...Node) Node {
	return Sequence(name,
		Optional(Selector(name+" decisions", decisions...)),
		Action("hold base", holdBase),
	)
}

// SetterTree runs the offense.
func SetterTree() Node {
	return root("setter",
		serveSubtree(),
		blockSubtree(),
		contactSubtree(),
		Named("get under the pass", Sequence("setter release",
			Condition("ball ours to play", oursToPlay),
			Condition("second touch", touchesUsed(1)),
			Condition("designated setter", designated),
			Action("move to set", requestFn(setterGoal)),
		)),
		chaseSubtree(),
		positionSubtree(),
	)
}

// OutsideTree passes, attacks the left pin or the pipe, and blocks.
func OutsideTree() Node { return hitterTree("outside") }

// MiddleTree hits quicks and leads the block.
func MiddleTree() Node { return hitterTree("middle") }

// OppositeTree hits the right pin and blocks the opposing outside.
func OppositeTree() Node { return hitterTree("opposite") }

// hitterTree is shared by the attackers. Where each one goes is decided by
// category and zone in the position subtree.
func hitterTree(name string) Node {
	return root(name,
		serveSubtree(),
		blockSubtree(),
		contactSubtree(),
		chaseSubtree(),
		positionSubtree(),
	)
}

// LiberoTree passes and digs. The libero never serves, blocks or attacks.
func LiberoTree() Node {
	return root("libero",
		contactSubtree(),
		chaseSubtree(),
		positionSubtree(),
	)
}

func serveSubtree() Node {
	return Named("serve", Sequence("serve",
		Condition("our serve", ourServe),
		Condition("holding the ball", holdingBall),
		Condition("whistle", serveReady),
		Action("serve", serveBall),
	))
}

func blockSubtree() Node {
	return Named("block", Sequence("block",
		Condition("front row", frontRow),
		Condition("opponent attack at the net", opponentAttack),
		Condition("ball in block reach", reachable(physics.Block)),
		Action("block", blockBall),
	))
}

func contactSubtree() Node {
	return Named("play ball", Sequence("play ball",
		Condition("ball ours to play", oursToPlay),
		Condition("designated", designated),
		Condition("ball in reach", nextReachable),
		Action("contact", playBall),
	))
}

func chaseSubtree() Node {
	return Named("chase", Sequence("chase",
		Condition("ball ours to play", oursToPlay),
		Condition("designated", designated),
		Action("chase ball", chase),
	))
}

func positionSubtree() Node {
	return Named("position", Action("position", requestFn(positionGoal)))
}

func ourServe(c Context) (bool, string) {
	ok := c.Board.Serving && c.Board.Phase == rally.PreServe
	return ok, fmt.Sprintf("serving=%t phase=%s", c.Board.Serving, c.Board.Phase)
}

func holdingBall(c Context) (bool, string) {
	holder := c.Board.Ball.HolderID
	return holder == c.Actor.ID && !c.Board.Ball.InFlight, "ball held by " + holder
}

func serveReady(c Context) (bool, string) {
	waited := c.Board.Time - c.Board.PhaseSince
	return waited >= c.Params.ServeDelay, fmt.Sprintf("%.2fs since whistle of %.2fs", waited, c.Params.ServeDelay)
}

func frontRow(c Context) (bool, string) {
	return c.FrontRow(), fmt.Sprintf("zone %d", c.Zone())
}

func opponentAttack(c Context) (bool, string) {
	return c.OpponentAttackAtNet(), fmt.Sprintf("last contact %s by %s", c.Board.Ball.Contact, c.Board.Ball.LastTeam)
}

func oursToPlay(c Context) (bool, string) {
	return c.OursToPlay(), fmt.Sprintf("incoming=%t touches=%d", c.Board.BallIncoming, c.Board.TouchesUsed)
}

func designated(c Context) (bool, string) {
	id := c.Designated()
	return id == c.Actor.ID, "designated " + id
}

func touchesUsed(n int) ConditionFunc {
	return func(c Context) (bool, string) {
		return c.Board.TouchesUsed == n, fmt.Sprintf("touches %d", c.Board.TouchesUsed)
	}
}

func reachable(kind physics.ContactType) ConditionFunc {
	return func(c Context) (bool, string) {
		h := c.Board.Ball.Position[2]
		return c.Params.Reachable(c.Actor, c.Board.Ball, kind, c.Board.Court), fmt.Sprintf("ball at %.2fm", h)
	}
}

func nextReachable(c Context) (bool, string) {
	return reachable(c.NextContact())(c)
}

// setterGoal squares the setter for the planned set, or chases a bad pass.
func setterGoal(c Context) (world.Goal, string, bool) {
	if !c.Board.InSystem {
		return world.SetOutOfSystem, "pass off the net, chasing it down", true
	}
	if opt, _, reason, ok := c.planSet(); ok {
		return opt.goal, reason, true
	}
	return world.SetInSystem, "in system, no hitter available", true
}

// positionGoal is the off-ball position for the actor in the current
// situation.
func positionGoal(c Context) (world.Goal, string, bool) {
	switch s := c.Situation(); s {
	case SituationDead:
		return world.Base, "rally over, back to base", true
	case SituationOurServe:
		if c.Board.ServerID == c.Actor.ID {
			return world.ServePosition, "serving from zone 1", true
		}
		return world.Base, "our serve, holding base", true
	case SituationReceive:
		return receiveGoal(c)
	case SituationFreeBall:
		if c.Actor.Role == world.Setter {
			return world.SetterRelease, "free ball coming, releasing to set", true
		}
		return world.FreeBallPosition, "free ball coming", true
	case SituationFirstBall:
		return firstBallGoal(c)
	case SituationOffense:
		return offenseGoal(c)
	}
	return defenseGoal(c)
}

func receiveGoal(c Context) (world.Goal, string, bool) {
	a := c.Actor
	if a.Role == world.Setter {
		return world.SetterRelease, "setter hides and releases", true
	}
	if c.Board.HitterMode == world.TwoHitters {
		slots := []world.Goal{world.StackW1, world.StackW2, world.StackW3, world.StackW4, world.StackW5}
		for i, p := range c.stackOrder() {
			if p.ID == a.ID && i < len(slots) {
				return slots[i], fmt.Sprintf("front-row setter, %s of the five-player stack", slots[i]), true
			}
		}
		return world.ReceiveServe, "receiving serve", true
	}

	switch a.Category {
	case world.CategoryLibero:
		return world.ReceiveMiddle, "libero takes the middle of serve receive", true
	case world.CategoryOutside:
		if c.baseX() < c.Board.Court.CenterX() {
			return world.ReceiveLeft, "outside passing left", true
		}
		return world.ReceiveRight, "outside passing right", true
	case world.CategoryMiddle:
		return world.TransitionOffNet, "middle off the net for the quick", true
	}
	return world.Base, "opposite hides from serve receive", true
}

func firstBallGoal(c Context) (world.Goal, string, bool) {
	a := c.Actor
	switch {
	case a.Role == world.Setter:
		return world.SetInSystem, "releasing to the setting window", true
	case c.FrontRow():
		return world.TransitionOffNet, "off the net to transition", true
	}
	return backRowDefense(c)
}

func offenseGoal(c Context) (world.Goal, string, bool) {
	a := c.Actor
	if c.Board.TouchesUsed >= 2 || a.Category == world.CategoryLibero || a.Role == world.Setter {
		return world.CoverHitter, "covering the hitter", true
	}
	if c.FrontRow() {
		switch c.Zone() {
		case 4:
			return world.ApproachLeft, "approaching the left pin", true
		case 3:
			return world.ApproachMiddle, "approaching for the quick", true
		}
		return world.ApproachRight, "approaching the right pin", true
	}
	if a.Category == world.CategoryOutside && c.Board.HitterMode == world.ThreeHitters {
		return world.ApproachBackRow, "back-row attack option", true
	}
	return world.CoverHitter, "covering the hitter", true
}

func defenseGoal(c Context) (world.Goal, string, bool) {
	if !c.FrontRow() {
		return backRowDefense(c)
	}
	lane := c.Board.OpponentLane
	switch c.Zone() {
	case 4:
		if lane == world.LaneRight {
			return world.DefendOffBlocker, "attack on the right, dropping off", true
		}
		return world.BlockLeft, fmt.Sprintf("blocking left, attack read %s", lane), true
	case 3:
		return world.BlockMiddle, fmt.Sprintf("middle blocker, attack read %s", lane), true
	}
	if lane == world.LaneLeft {
		return world.DefendOffBlocker, "attack on the left, dropping off", true
	}
	return world.BlockRight, fmt.Sprintf("blocking right, attack read %s", lane), true
}

func backRowDefense(c Context) (world.Goal, string, bool) {
	b := c.Board
	switch c.Zone() {
	case 5:
		return world.DefendLeftBack, "left back defense", true
	case 6:
		if b.OpponentLane == world.LaneMiddle && b.LastTouchSide == b.Side.Opponent() && b.LastContact == physics.Set {
			return world.TipCoverage, "middle attack read, covering the tip", true
		}
		return world.DefendMiddleBack, "middle back defense", true
	}
	return world.DefendRightBack, "right back defense", true
}

// baseX is the actor's base x in the HOME frame.
func (c Context) baseX() float64 {
	z, err := c.Board.Court.ZoneCenter(c.Zone(), c.Board.Side)
	if err != nil {
		return c.Board.Court.CenterX()
	}
	return c.Home(z)[0]
}
