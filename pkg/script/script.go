// Package script generates scripted rallies: plausible event sequences for
// the rally state machine, without players or ball flight.
package script

import (
	"fmt"
	"math/rand"

	"gopkg.in/yaml.v3"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Config tunes the generator. After the first attack the rally is extended
// up to ExtensionRounds times; round i continues with probability
// Start - i*Decay.
type Config struct {
	ExtensionRounds int           `json:"extensionRounds" yaml:"extension_rounds"`
	Start           float64       `json:"start" yaml:"start"`
	Decay           float64       `json:"decay" yaml:"decay"`
	Accuracy        float64       `json:"accuracy" yaml:"accuracy"`
	OutChance       float64       `json:"outChance" yaml:"out_chance"`
	ContactGap      float64       `json:"contactGap" yaml:"contact_gap"` // seconds between touches
	ServingSide     geometry.Side `json:"servingSide" yaml:"serving_side"`
	Rotation        int           `json:"rotation" yaml:"rotation"`
}

// DefaultConfig returns three extension rounds starting at 0.6 and losing
// 0.15 per round.
func DefaultConfig() Config {
	return Config{
		ExtensionRounds: 3,
		Start:           0.6,
		Decay:           0.15,
		Accuracy:        0.7,
		OutChance:       0.12,
		ContactGap:      1.0,
		ServingSide:     geometry.Home,
		Rotation:        1,
	}
}

// Validate checks the generator settings.
func (c Config) Validate() error {
	if c.ExtensionRounds < 0 {
		return fmt.Errorf("extension rounds must not be negative")
	}
	probabilities := []struct {
		name  string
		value float64
	}{
		{"start", c.Start},
		{"accuracy", c.Accuracy},
		{"out chance", c.OutChance},
	}
	for _, p := range probabilities {
		if p.value < 0 || p.value > 1 {
			return fmt.Errorf("%s must be between 0.0 and 1.0", p.name)
		}
	}
	if c.Decay < 0 {
		return fmt.Errorf("decay must not be negative")
	}
	if c.ContactGap <= 0 {
		return fmt.Errorf("contact gap must be positive")
	}
	if !c.ServingSide.Valid() {
		return fmt.Errorf("unknown serving side %q", c.ServingSide)
	}
	if !world.ValidRotation(c.Rotation) {
		return fmt.Errorf("%w: %d", world.ErrInvalidRotation, c.Rotation)
	}
	return nil
}

// Continuation is the probability that extension round i happens.
func (c Config) Continuation(round int) float64 {
	p := c.Start - float64(round)*c.Decay
	if p < 0 {
		return 0
	}
	return p
}

// Script is one generated rally.
type Script struct {
	Seed    int64          `json:"seed" yaml:"seed"`
	Serving geometry.Side  `json:"serving" yaml:"serving"`
	Rounds  int            `json:"rounds" yaml:"rounds"`
	Events  []rally.Event  `json:"events" yaml:"events"`
	Landing *geometry.Vec2 `json:"landing,omitempty" yaml:"landing,omitempty"`
}

// Play folds the script's events through the rally state machine.
func (s Script) Play() rally.State {
	return rally.Replay(rally.State{}, s.Events)
}

// Outcome is why the scripted rally ended and who won it.
func (s Script) Outcome() (rally.Reason, geometry.Side) {
	st := s.Play()
	return st.Reason, st.Winner
}

// YAML encodes the script.
func (s Script) YAML() ([]byte, error) {
	return yaml.Marshal(s)
}

// ParseYAML decodes a script written by YAML.
func ParseYAML(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("failed to parse script: %w", err)
	}
	return s, nil
}

// generator carries the rally being written.
type generator struct {
	cfg    Config
	rng    *rand.Rand
	court  geometry.Court
	state  rally.State
	events []rally.Event
	now    float64
}

func (g *generator) emit(e rally.Event) {
	e.Time = g.now
	g.state = rally.Transition(g.state, e)
	g.events = append(g.events, e)
}

func (g *generator) touch(side geometry.Side, contact physics.ContactType, role world.Role, difficulty float64) {
	g.now += g.cfg.ContactGap
	ev := rally.Event{
		Type:     rally.TeamTouchedBall,
		Side:     side,
		Contact:  contact,
		Quality:  physics.RollQuality(g.rng, g.cfg.Accuracy, difficulty),
		PlayerID: world.PlayerID(side, role),
	}
	if contact == physics.Serve {
		ev.Type = rally.ServeContact
	}
	g.emit(ev)
}

func (g *generator) cross(from geometry.Side) {
	g.now += g.cfg.ContactGap / 2
	g.emit(rally.Event{Type: rally.BallCrossedNet, Side: from})
}

// possession plays first touch, set and attack for side. It reports whether
// the rally is still live afterwards.
func (g *generator) possession(side geometry.Side, first physics.ContactType, difficulty float64) bool {
	steps := []struct {
		contact    physics.ContactType
		role       world.Role
		difficulty float64
	}{
		{first, world.LiberoRole, difficulty},
		{physics.Set, world.Setter, 0.1},
		{physics.Attack, g.hitter(), 0.2},
	}
	for _, st := range steps {
		g.touch(side, st.contact, st.role, st.difficulty)
		if !g.state.Live() {
			return false
		}
	}
	g.cross(side)
	return true
}

func (g *generator) hitter() world.Role {
	hitters := []world.Role{world.Outside1, world.Middle2, world.Opposite, world.Outside2}
	return hitters[g.rng.Intn(len(hitters))]
}

// land puts the ball down on defender's half, or out with OutChance.
func (g *generator) land(defender geometry.Side) geometry.Vec2 {
	g.now += g.cfg.ContactGap / 2
	x := 0.05 + 0.9*g.rng.Float64()
	y := g.court.NetY + 0.05 + (g.court.LinesMax[1]-g.court.NetY-0.1)*g.rng.Float64()
	if g.rng.Float64() < g.cfg.OutChance {
		y = g.court.LinesMax[1] + 0.03
	}
	p := g.court.FromHomeFrame(geometry.Vec2{x, y}, defender)
	g.emit(rally.LandingEvent(g.state, p, g.court, g.now))
	return p
}

// Generate writes one rally: serve, receive, set and attack, then extension
// rounds of dig, set and attack while the continuation roll succeeds, and
// finally a landing. The same config and seed always write the same rally.
func Generate(cfg Config, seed int64) (Script, error) {
	if err := cfg.Validate(); err != nil {
		return Script{}, err
	}
	g := &generator{
		cfg:   cfg,
		rng:   physics.NewRand(seed, 0),
		court: geometry.DefaultCourt(),
	}
	serving := cfg.ServingSide
	s := Script{Seed: seed, Serving: serving}

	g.emit(rally.Event{Type: rally.StartRally, Side: serving})
	g.touch(serving, physics.Serve, world.ServerRole(cfg.Rotation), 0.1)
	if !g.state.Live() {
		s.Events = g.events
		return s, nil
	}
	g.cross(serving)

	attacker := serving.Opponent()
	if !g.possession(attacker, physics.Pass, 0.35) {
		s.Events = g.events
		return s, nil
	}
	for round := 0; round < cfg.ExtensionRounds; round++ {
		if g.rng.Float64() >= cfg.Continuation(round) {
			break
		}
		s.Rounds++
		attacker = attacker.Opponent()
		if !g.possession(attacker, physics.Dig, 0.6) {
			s.Events = g.events
			return s, nil
		}
	}

	landing := g.land(attacker.Opponent())
	s.Landing = &landing
	s.Events = g.events
	return s, nil
}
