package rally

import (
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

func TestClassifyLanding(t *testing.T) {
	court := geometry.DefaultCourt()

	attacked := servedToAway()
	attacked = Transition(attacked, touch(Away, physics.Pass, physics.Good))
	attacked = Transition(attacked, touch(Away, physics.Set, physics.Good))
	attacked = Transition(attacked, touch(Away, physics.Attack, physics.Good))

	blocked := Transition(attacked, touch(Home, physics.Block, physics.Good))

	served := NewState(Home, 0)
	served = Transition(served, Event{Type: ServeContact, Side: Home})

	tests := []struct {
		name    string
		state   State
		landing geometry.Vec2
		reason  Reason
		winner  geometry.Side
	}{
		{name: "attack lands in", state: attacked, landing: geometry.V2(0.4, 0.8), reason: Kill, winner: Away},
		{name: "attack lands out", state: attacked, landing: geometry.V2(1.05, 0.8), reason: Out, winner: Home},
		{name: "serve unreturned", state: served, landing: geometry.V2(0.5, 0.2), reason: Ace, winner: Home},
		{name: "serve in the net", state: served, landing: geometry.V2(0.5, 0.55), reason: Landed, winner: Away},
		{name: "block kill", state: blocked, landing: geometry.V2(0.5, 0.3), reason: BlockKill, winner: Home},
		{name: "block falls back", state: blocked, landing: geometry.V2(0.5, 0.7), reason: Landed, winner: Away},
		{name: "shanked pass", state: Transition(servedToAway(), touch(Away, physics.Pass, physics.Poor)), landing: geometry.V2(0.3, 0.1), reason: Landed, winner: Home},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reason, winner := ClassifyLanding(tt.state, tt.landing, court)
			if reason != tt.reason {
				t.Errorf("reason = %s, want %s", reason, tt.reason)
			}
			if winner != tt.winner {
				t.Errorf("winner = %s, want %s", winner, tt.winner)
			}
		})
	}
}

func TestKillDuringAttackPhase(t *testing.T) {
	court := geometry.DefaultCourt()
	s := servedToAway()
	s = Transition(s, touch(Away, physics.Pass, physics.Good))
	s = Transition(s, touch(Away, physics.Set, physics.Good))
	s = Transition(s, touch(Away, physics.Attack, physics.Good))
	if s.Phase != AttackPhase {
		t.Fatalf("phase = %s, want %s", s.Phase, AttackPhase)
	}

	s = Transition(s, LandingEvent(s, geometry.V2(0.2, 0.9), court, 5))
	if s.Reason != Kill {
		t.Errorf("reason = %s, want %s", s.Reason, Kill)
	}
	if s.Winner != Away {
		t.Errorf("winner = %s, want %s", s.Winner, Away)
	}
	if s.AwayScore != 1 {
		t.Errorf("away score = %d, want 1", s.AwayScore)
	}
}
