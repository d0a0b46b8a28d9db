package statemachine

import (
	"context"
	"fmt"
)

// Graph is an immutable set of transitions indexed as [from][event][]Transition.
// It is safe for concurrent use once built.
type Graph struct {
	transitions map[string]map[string][]Transition
}

// New builds a Graph from options.
func New(opts ...Option) (*Graph, error) {
	g := &Graph{transitions: make(map[string]map[string][]Transition)}
	for _, opt := range opts {
		if err := opt(g); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// MustNew is like New but panics on an invalid definition.
func MustNew(opts ...Option) *Graph {
	g, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to build state machine: %v", err))
	}
	return g
}

func (g *Graph) add(t Transition) error {
	if t.From == nil || t.To == nil || t.Event == nil {
		return ErrInvalidTransition
	}
	byEvent, ok := g.transitions[t.From.Name()]
	if !ok {
		byEvent = make(map[string][]Transition)
		g.transitions[t.From.Name()] = byEvent
	}
	// several transitions per from/event allow guard-based branching; first match wins
	byEvent[t.Event.Name()] = append(byEvent[t.Event.Name()], t)
	return nil
}

// Next returns the state reached by firing event from the given state without
// changing anything. The error is *ErrNoTransitionAvailable when the graph has no
// edge for the pair and *ErrTransitionRejected when every candidate edge was guarded out.
func (g *Graph) Next(ctx context.Context, from State, event Event, data any) (State, error) {
	if from == nil {
		return nil, ErrInvalidTransition
	}
	if event == nil {
		return nil, ErrInvalidEvent
	}

	candidates := g.transitions[from.Name()][event.Name()]
	if len(candidates) == 0 {
		return nil, NewErrNoTransitionAvailable(from.Name(), event.Name())
	}

	for _, t := range candidates {
		if guardsPass(ctx, t.Guards, from, event, data) {
			return t.To, nil
		}
	}
	return nil, NewErrTransitionRejected(from.Name(), event.Name())
}

// CanFire reports whether event is currently allowed from the given state.
func (g *Graph) CanFire(ctx context.Context, from State, event Event, data any) bool {
	_, err := g.Next(ctx, from, event, data)
	return err == nil
}

func guardsPass(ctx context.Context, guards []Guard, from State, event Event, data any) bool {
	for _, guard := range guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
