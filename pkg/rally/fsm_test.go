package rally

import (
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
)

func touch(side geometry.Side, contact physics.ContactType, quality physics.Quality) Event {
	return Event{Type: TeamTouchedBall, Side: side, Contact: contact, Quality: quality, PlayerID: string(side) + "-" + string(contact)}
}

func servedToAway() State {
	s := NewState(Home, 0)
	s = Transition(s, Event{Type: ServeContact, Side: Home, Quality: physics.Good, PlayerID: "home-s", Time: 1})
	return Transition(s, Event{Type: BallCrossedNet, Side: Home, Time: 1.5})
}

func TestServeReceiveScenario(t *testing.T) {
	s := NewState(Home, 0)
	if s.Phase != PreServe {
		t.Fatalf("phase = %s, want %s", s.Phase, PreServe)
	}
	if s.ServingSide != Home {
		t.Fatalf("serving = %s, want %s", s.ServingSide, Home)
	}

	s = Transition(s, Event{Type: ServeContact, Side: Home, Time: 1})
	if s.Phase != ServeInAir {
		t.Fatalf("phase after serve = %s, want %s", s.Phase, ServeInAir)
	}

	s.InSystem = false
	s = Transition(s, Event{Type: BallCrossedNet, Side: Home, Time: 1.5})
	if s.Phase != ServeReceive {
		t.Fatalf("phase after crossing = %s, want %s", s.Phase, ServeReceive)
	}
	if !s.InSystem {
		t.Errorf("Expected in-system reset to true on serve receive")
	}
}

func TestAttackErrorScenario(t *testing.T) {
	s := servedToAway()
	s = Transition(s, touch(Away, physics.Pass, physics.Poor))
	if s.InSystem {
		t.Errorf("Expected poor pass to take AWAY out of system")
	}
	if s.Phase != TransitionToOffense {
		t.Errorf("phase after pass = %s, want %s", s.Phase, TransitionToOffense)
	}
	s = Transition(s, touch(Away, physics.Set, physics.Good))
	if s.Phase != SetPhase {
		t.Errorf("phase after set = %s, want %s", s.Phase, SetPhase)
	}
	s = Transition(s, touch(Away, physics.Attack, physics.Error))

	if s.Phase != BallDead {
		t.Fatalf("phase = %s, want %s", s.Phase, BallDead)
	}
	if s.Reason != ErrorOut {
		t.Errorf("reason = %s, want %s", s.Reason, ErrorOut)
	}
	if s.Winner != Home {
		t.Errorf("winner = %s, want %s", s.Winner, Home)
	}
	if s.HomeScore != 1 || s.AwayScore != 0 {
		t.Errorf("score = %d-%d, want 1-0", s.HomeScore, s.AwayScore)
	}
	if s.ServingSide != Home {
		t.Errorf("next server = %s, want %s", s.ServingSide, Home)
	}
}

func TestFourTouchesEndsRally(t *testing.T) {
	s := servedToAway()
	contacts := []physics.ContactType{physics.Pass, physics.Set, physics.Dig, physics.FreeBall}
	for i, c := range contacts {
		s = Transition(s, touch(Away, c, physics.Good))
		if s.Live() && s.TouchCount > MaxTouches {
			t.Fatalf("touch %d: count %d exceeds max while live", i+1, s.TouchCount)
		}
	}

	if s.Phase != BallDead {
		t.Fatalf("phase = %s, want %s", s.Phase, BallDead)
	}
	if s.Reason != FourTouches {
		t.Errorf("reason = %s, want %s", s.Reason, FourTouches)
	}
	if s.Winner != Home {
		t.Errorf("winner = %s, want %s", s.Winner, Home)
	}
}

func TestTouchCountResetsOnPossessionChange(t *testing.T) {
	s := servedToAway()
	s = Transition(s, touch(Away, physics.Pass, physics.Good))
	s = Transition(s, touch(Away, physics.Set, physics.Good))
	s = Transition(s, touch(Away, physics.Attack, physics.Good))
	s = Transition(s, Event{Type: BallCrossedNet, Side: Away})
	if s.Phase != Defense {
		t.Errorf("phase after attack crossed = %s, want %s", s.Phase, Defense)
	}
	s = Transition(s, touch(Home, physics.Dig, physics.Perfect))

	if s.TouchSide != Home || s.TouchCount != 1 {
		t.Errorf("touch = %s/%d, want %s/1", s.TouchSide, s.TouchCount, Home)
	}
	if !s.InSystem {
		t.Errorf("Expected perfect dig to put HOME in system")
	}
	if len(s.Possession) != 5 {
		t.Errorf("possession chain length = %d, want 5", len(s.Possession))
	}
}

func TestCrossingPhaseDependsOnLastContact(t *testing.T) {
	tests := []struct {
		name    string
		touches []physics.ContactType
		want    Phase
	}{
		{"attack", []physics.ContactType{physics.Pass, physics.Set, physics.Attack}, Defense},
		{"free ball", []physics.ContactType{physics.Pass, physics.Set, physics.FreeBall}, Defense},
		{"overpassed reception", []physics.ContactType{physics.Pass}, TransitionToDefense},
		{"overpassed set", []physics.ContactType{physics.Pass, physics.Set}, TransitionToDefense},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := servedToAway()
			for _, c := range tt.touches {
				s = Transition(s, touch(Away, c, physics.Good))
			}
			s = Transition(s, Event{Type: BallCrossedNet, Side: Away, Time: 3})
			if s.Phase != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, s.Phase)
			}
			if s.PhaseSince != 3 {
				t.Errorf("Expected phase since 3, got %v", s.PhaseSince)
			}
		})
	}
}

func TestNonAttackErrorGoesIntoNet(t *testing.T) {
	s := servedToAway()
	s = Transition(s, touch(Away, physics.Pass, physics.Error))
	if s.Reason != ErrorNet {
		t.Errorf("reason = %s, want %s", s.Reason, ErrorNet)
	}
	if s.Winner != Home {
		t.Errorf("winner = %s, want %s", s.Winner, Home)
	}
}

func TestServeOnlyFromPreServe(t *testing.T) {
	s := servedToAway()
	before := s
	s = Transition(s, Event{Type: ServeContact, Side: Home})
	if s.Phase != before.Phase {
		t.Errorf("Expected serve contact outside pre-serve to be ignored, phase = %s", s.Phase)
	}
}

func TestDeadRallyIsFrozen(t *testing.T) {
	s := servedToAway()
	s = Transition(s, Event{Type: BallDeadEvent, Side: Away, Reason: Landed})
	score := s.AwayScore
	s = Transition(s, Event{Type: BallDeadEvent, Side: Away, Reason: Landed})
	s = Transition(s, touch(Home, physics.Dig, physics.Good))
	if s.AwayScore != score {
		t.Errorf("Expected frozen rally not to score twice, got %d", s.AwayScore)
	}
	if s.Phase != BallDead {
		t.Errorf("phase = %s, want %s", s.Phase, BallDead)
	}

	s = Transition(s, Event{Type: StartRally, Side: s.ServingSide, Time: 9})
	if s.Phase != PreServe || s.ServingSide != Away {
		t.Errorf("Expected new rally served by AWAY, got %s/%s", s.Phase, s.ServingSide)
	}
	if s.TouchCount != 0 || len(s.Possession) != 0 || s.Reason != "" {
		t.Errorf("Expected counters reset on START_RALLY, got %+v", s)
	}
	if s.AwayScore != score {
		t.Errorf("Expected scores to survive START_RALLY")
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	s := servedToAway()
	s = Transition(s, touch(Away, physics.Pass, physics.Good))
	snapshot := s.Clone()
	_ = Transition(s, touch(Away, physics.Set, physics.Good))
	if len(s.Possession) != len(snapshot.Possession) || s.TouchCount != snapshot.TouchCount {
		t.Errorf("Expected input state to be unchanged")
	}
}
