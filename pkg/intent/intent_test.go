package intent

import (
	"strings"
	"testing"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/world"
)

func goal(g world.Goal) Action { return Action{Kind: RequestGoal, Goal: g} }

func TestNewIDIsDeterministic(t *testing.T) {
	a := NewID(5, "home-s", SourceAI, goal(world.SetInSystem))
	b := NewID(5, "home-s", SourceAI, goal(world.SetInSystem))
	if a != b {
		t.Errorf("Expected identical ids, got %s and %s", a, b)
	}
	if c := NewID(6, "home-s", SourceAI, goal(world.SetInSystem)); c == a {
		t.Errorf("Expected a different tick to change the id")
	}
	if c := NewID(5, "home-s", SourceHuman, goal(world.SetInSystem)); c == a {
		t.Errorf("Expected a different source to change the id")
	}
}

func TestMergeHumanWinsPerActor(t *testing.T) {
	ai := []Intent{
		New(1, "home-s", SourceAI, goal(world.SetInSystem), 0.9, "set"),
		New(1, "home-oh1", SourceAI, goal(world.ApproachLeft), 0.8, "approach"),
		New(1, "home-s", SourceAI, goal(world.Base), 0.2, "fallback"),
	}
	human := []Intent{
		{ActorID: "home-s", Action: Action{Kind: MoveTo, Target: geometry.V2(0.5, 0.6)}, Reason: "drag"},
	}

	merged := Merge(ai, human)
	if len(merged) != 2 {
		t.Fatalf("Expected 2 merged intents, got %d", len(merged))
	}
	if merged[0].ActorID != "home-oh1" {
		t.Errorf("Expected surviving AI intent first, got %s", merged[0].ActorID)
	}
	if merged[1].Source != SourceHuman || merged[1].Action.Kind != MoveTo {
		t.Errorf("Expected human move intent, got %+v", merged[1])
	}
	for _, in := range merged {
		if in.ActorID == "home-s" && in.Source == SourceAI {
			t.Errorf("Expected AI intents for home-s to be discarded")
		}
	}
}

func TestRank(t *testing.T) {
	in := []Intent{
		{ActorID: "a", Confidence: 0.5},
		{ActorID: "b", Confidence: 0.9},
		{ActorID: "c", Confidence: 0.1, Priority: 2},
		{ActorID: "d", Confidence: 0.9},
	}
	ranked := Rank(in)
	want := []string{"c", "b", "d", "a"}
	for i, id := range want {
		if ranked[i].ActorID != id {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].ActorID, id)
		}
	}
	if in[0].ActorID != "a" {
		t.Errorf("Expected Rank not to reorder its input")
	}

	best, rest, ok := Select(in)
	if !ok || best.ActorID != "c" || len(rest) != 3 {
		t.Errorf("Expected c selected with 3 considered, got %s/%d", best.ActorID, len(rest))
	}
	if _, _, ok := Select(nil); ok {
		t.Errorf("Expected no selection from empty input")
	}
}

func TestExplain(t *testing.T) {
	sel := New(3, "away-l", SourceAI, goal(world.ReceiveServe), 0.8, "serve is coming to my zone")
	trace := DecisionTrace{
		Tick:     3,
		PlayerID: "away-l",
		Side:     geometry.Away,
		Role:     world.LiberoRole,
		Tree: TraceNode{Kind: "selector", Name: "libero", Status: Success, Children: []TraceNode{
			{Kind: "condition", Name: "ball incoming", Status: Success},
		}},
		Selected: &sel,
	}
	out := trace.Explain()
	for _, want := range []string{"away-l", "ball incoming", "serve is coming to my zone"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected explanation to contain %q, got:\n%s", want, out)
		}
	}
	if trace.Tree.Count() != 2 {
		t.Errorf("Expected 2 trace nodes, got %d", trace.Tree.Count())
	}
}
