package intent

import (
	"fmt"
	"strings"

	"github.com/picogrid/volley-simulations/pkg/geometry"
	"github.com/picogrid/volley-simulations/pkg/rally"
	"github.com/picogrid/volley-simulations/pkg/world"
)

// Status is the result of evaluating a behavior tree node.
type Status string

const (
	Success Status = "success"
	Failure Status = "failure"
	Running Status = "running"
)

// TraceNode records one evaluated behavior tree node.
type TraceNode struct {
	Kind     string      `json:"kind"`
	Name     string      `json:"name"`
	Status   Status      `json:"status"`
	Score    float64     `json:"score,omitempty"`
	Note     string      `json:"note,omitempty"`
	Children []TraceNode `json:"children,omitempty"`
}

// DecisionTrace explains one player's decision for one tick.
type DecisionTrace struct {
	Tick       uint64        `json:"tick"`
	PlayerID   string        `json:"playerId"`
	Side       geometry.Side `json:"side"`
	Role       world.Role    `json:"role"`
	Phase      rally.Phase   `json:"phase"`
	Tree       TraceNode     `json:"tree"`
	Selected   *Intent       `json:"selected,omitempty"`
	Considered []Intent      `json:"considered,omitempty"`
}

// Count returns the number of nodes in the subtree.
func (n TraceNode) Count() int {
	c := 1
	for _, ch := range n.Children {
		c += ch.Count()
	}
	return c
}

func (n TraceNode) write(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s %s [%s]", strings.Repeat("  ", depth), n.Kind, n.Name, n.Status)
	if n.Note != "" {
		fmt.Fprintf(b, " %s", n.Note)
	}
	b.WriteByte('\n')
	for _, ch := range n.Children {
		ch.write(b, depth+1)
	}
}

// Explain renders the trace as an indented tree followed by the chosen and
// rejected intents.
func (d DecisionTrace) Explain() string {
	var b strings.Builder
	fmt.Fprintf(&b, "tick %d %s (%s, %s) phase %s\n", d.Tick, d.PlayerID, d.Side, d.Role, d.Phase)
	d.Tree.write(&b, 1)
	if d.Selected != nil {
		fmt.Fprintf(&b, "  => %s: %s\n", d.Selected.Action, d.Selected.Reason)
	} else {
		b.WriteString("  => no intent\n")
	}
	for _, c := range d.Considered {
		fmt.Fprintf(&b, "  -- %s: %s\n", c.Action, c.Reason)
	}
	return b.String()
}
