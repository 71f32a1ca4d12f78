// Package behavior holds the per-role behavior trees. Trees are plain data
// evaluated by a single switch over node kinds, so every evaluation leaves a
// trace explaining the decision.
package behavior

import (
	"github.com/picogrid/volley-simulations/pkg/intent"
)

// Kind tags a node variant.
type Kind string

const (
	KindSelector  Kind = "selector"
	KindSequence  Kind = "sequence"
	KindCondition Kind = "condition"
	KindAction    Kind = "action"
	KindDecorator Kind = "decorator"
)

// Decorator is the behavior of a decorator node.
type Decorator string

const (
	Invert        Decorator = "invert"
	SucceedAlways Decorator = "succeed-always"
	NamedWrap     Decorator = "named"
)

// ConditionFunc inspects the context. The note explains the answer.
type ConditionFunc func(c Context) (ok bool, note string)

// Proposal is what an action wants to do.
type Proposal struct {
	Action     intent.Action
	Confidence float64
	Priority   int
	Reason     string
}

// ActionFunc proposes an action, or reports that it cannot act.
type ActionFunc func(c Context) (Proposal, bool)

// Node is one behavior tree node. Only the fields for its Kind are used.
type Node struct {
	Kind      Kind
	Name      string
	Children  []Node
	Condition ConditionFunc
	Action    ActionFunc
	Decorator Decorator
}

// Result is the outcome of evaluating a node.
type Result struct {
	Status  intent.Status
	Intents []intent.Intent
	Trace   intent.TraceNode
}

// Selector tries children in order and stops at the first that does not fail.
func Selector(name string, children ...Node) Node {
	return Node{Kind: KindSelector, Name: name, Children: children}
}

// Sequence runs children in order and fails as soon as one fails.
func Sequence(name string, children ...Node) Node {
	return Node{Kind: KindSequence, Name: name, Children: children}
}

// Condition builds a condition leaf.
func Condition(name string, fn ConditionFunc) Node {
	return Node{Kind: KindCondition, Name: name, Condition: fn}
}

// Action builds an action leaf.
func Action(name string, fn ActionFunc) Node {
	return Node{Kind: KindAction, Name: name, Action: fn}
}

// Not inverts child's success and failure.
func Not(child Node) Node {
	return Node{Kind: KindDecorator, Name: "not " + child.Name, Decorator: Invert, Children: []Node{child}}
}

// Optional turns child's failure into success.
func Optional(child Node) Node {
	return Node{Kind: KindDecorator, Name: "optional " + child.Name, Decorator: SucceedAlways, Children: []Node{child}}
}

// Named gives child a label in traces.
func Named(name string, child Node) Node {
	return Node{Kind: KindDecorator, Name: name, Decorator: NamedWrap, Children: []Node{child}}
}

// Evaluate runs n against c.
func Evaluate(n Node, c Context) Result {
	trace := intent.TraceNode{Kind: string(n.Kind), Name: n.Name}

	switch n.Kind {
	case KindSelector:
		for _, child := range n.Children {
			r := Evaluate(child, c)
			trace.Children = append(trace.Children, r.Trace)
			if r.Status != intent.Failure {
				trace.Status = r.Status
				return Result{Status: r.Status, Intents: r.Intents, Trace: trace}
			}
		}
		trace.Status = intent.Failure
		return Result{Status: intent.Failure, Trace: trace}

	case KindSequence:
		var intents []intent.Intent
		for _, child := range n.Children {
			r := Evaluate(child, c)
			trace.Children = append(trace.Children, r.Trace)
			switch r.Status {
			case intent.Failure:
				trace.Status = intent.Failure
				return Result{Status: intent.Failure, Trace: trace}
			case intent.Running:
				intents = append(intents, r.Intents...)
				trace.Status = intent.Running
				return Result{Status: intent.Running, Intents: intents, Trace: trace}
			}
			intents = append(intents, r.Intents...)
		}
		trace.Status = intent.Success
		return Result{Status: intent.Success, Intents: intents, Trace: trace}

	case KindCondition:
		ok, note := false, "no condition"
		if n.Condition != nil {
			ok, note = n.Condition(c)
		}
		trace.Note = note
		trace.Status = intent.Failure
		if ok {
			trace.Status = intent.Success
		}
		return Result{Status: trace.Status, Trace: trace}

	case KindAction:
		if n.Action == nil {
			trace.Status = intent.Failure
			return Result{Status: intent.Failure, Trace: trace}
		}
		p, ok := n.Action(c)
		if !ok {
			trace.Status = intent.Failure
			return Result{Status: intent.Failure, Trace: trace}
		}
		if p.Reason == "" {
			p.Reason = n.Name
		}
		in := intent.New(c.Board.Tick, c.Actor.ID, intent.SourceAI, p.Action, p.Confidence, p.Reason)
		in.Priority = p.Priority
		trace.Status = intent.Success
		trace.Score = p.Confidence
		trace.Note = p.Reason
		return Result{Status: intent.Success, Intents: []intent.Intent{in}, Trace: trace}

	case KindDecorator:
		if len(n.Children) == 0 {
			trace.Status = intent.Failure
			return Result{Status: intent.Failure, Trace: trace}
		}
		r := Evaluate(n.Children[0], c)
		trace.Children = []intent.TraceNode{r.Trace}
		switch n.Decorator {
		case Invert:
			switch r.Status {
			case intent.Success:
				r = Result{Status: intent.Failure}
			case intent.Failure:
				r = Result{Status: intent.Success}
			}
		case SucceedAlways:
			if r.Status == intent.Failure {
				r.Status = intent.Success
			}
		}
		trace.Status = r.Status
		r.Trace = trace
		return r
	}

	trace.Status = intent.Failure
	trace.Note = "unknown node kind"
	return Result{Status: intent.Failure, Trace: trace}
}
