package intent

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/physics"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Source tells who proposed an intent.
type Source string

const (
	SourceAI    Source = "ai"
	SourceHuman Source = "human"
)

// ActionKind is the kind of action an intent carries.
type ActionKind string

const (
	MoveTo      ActionKind = "move-to"
	RequestGoal ActionKind = "request-goal"
	BallContact ActionKind = "ball-contact"
	Stay        ActionKind = "stay"
)

// Action is the single action of an intent. Target is the destination for
// move-to and the aim point for ball-contact.
type Action struct {
	Kind       ActionKind          `json:"kind" yaml:"kind"`
	Target     geometry.Vec2       `json:"target,omitempty" yaml:"target,omitempty"`
	Goal       world.Goal          `json:"goal,omitempty" yaml:"goal,omitempty"`
	Contact    physics.ContactType `json:"contact,omitempty" yaml:"contact,omitempty"`
	ReceiverID string              `json:"receiverId,omitempty" yaml:"receiver_id,omitempty"`
}

func (a Action) String() string {
	switch a.Kind {
	case MoveTo:
		return fmt.Sprintf("move-to (%.3f, %.3f)", a.Target[0], a.Target[1])
	case RequestGoal:
		return fmt.Sprintf("request-goal %s", a.Goal)
	case BallContact:
		return fmt.Sprintf("%s to (%.3f, %.3f)", a.Contact, a.Target[0], a.Target[1])
	}
	return string(a.Kind)
}

// Intent is a proposed action for one player in one tick.
type Intent struct {
	ID         string  `json:"id" yaml:"id"`
	ActorID    string  `json:"actorId" yaml:"actor_id"`
	Action     Action  `json:"action" yaml:"action"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	Reason     string  `json:"reason" yaml:"reason"`
	Source     Source  `json:"source" yaml:"source"`
	Priority   int     `json:"priority,omitempty" yaml:"priority,omitempty"`
}

var namespace = uuid.MustParse("6f1c6a2e-4f0b-5d7e-9a43-2b8e1f0c7d19")

// NewID derives a stable id from the tick, actor, source and action so a
// replayed tick produces identical intents.
func NewID(tick uint64, actorID string, source Source, a Action) string {
	key := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%v|%s", tick, actorID, source, a.Kind, a.Goal, a.Contact, a.Target, a.ReceiverID)
	return uuid.NewSHA1(namespace, []byte(key)).String()
}

// New builds an intent with a derived id.
func New(tick uint64, actorID string, source Source, a Action, confidence float64, reason string) Intent {
	return Intent{
		ID:         NewID(tick, actorID, source, a),
		ActorID:    actorID,
		Action:     a,
		Confidence: confidence,
		Reason:     reason,
		Source:     source,
	}
}

// Human builds a caller-supplied intent.
func Human(tick uint64, actorID string, a Action, reason string) Intent {
	return New(tick, actorID, SourceHuman, a, 1, reason)
}

// Merge combines AI and human intents. Any human intent for an actor discards
// every AI intent for that actor. AI intents keep their order and human
// intents follow.
func Merge(ai, human []Intent) []Intent {
	overridden := make(map[string]bool, len(human))
	for _, h := range human {
		overridden[h.ActorID] = true
	}
	out := make([]Intent, 0, len(ai)+len(human))
	for _, a := range ai {
		if !overridden[a.ActorID] {
			out = append(out, a)
		}
	}
	for _, h := range human {
		h.Source = SourceHuman
		out = append(out, h)
	}
	return out
}

// Rank returns a copy of intents ordered by priority then confidence, both
// descending. Ties keep their input order.
func Rank(intents []Intent) []Intent {
	out := make([]Intent, len(intents))
	copy(out, intents)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}

// Select returns the best ranked intent and the rest.
func Select(intents []Intent) (Intent, []Intent, bool) {
	if len(intents) == 0 {
		return Intent{}, nil, false
	}
	ranked := Rank(intents)
	return ranked[0], ranked[1:], true
}

// ForActor returns the intents proposed for actorID.
func ForActor(intents []Intent, actorID string) []Intent {
	var out []Intent
	for _, in := range intents {
		if in.ActorID == actorID {
			out = append(out, in)
		}
	}
	return out
}
