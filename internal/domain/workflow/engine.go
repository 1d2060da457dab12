// Package workflow provides the shared transition machinery behind the
// engagement, TPM visit and PSEA assessment lifecycles. A transition names
// its source states, target state, ordered guards and side effects; the
// aggregates declare their graphs as data and execute them through here.
package workflow

import (
	"time"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Subject is the minimal surface a stateful aggregate exposes to the engine.
type Subject interface {
	CurrentStatus() string
	SetStatus(status string)
}

// Guard is a named precondition. A failing guard surfaces its error
// verbatim; the engine recovers nothing.
type Guard[T Subject] struct {
	Name  string
	Check func(subject T) error
}

// Effect runs after the status has moved. Effects stamp dates, persist
// comments and queue notifications; they must not fail.
type Effect[T Subject] func(subject T, now time.Time)

// Transition declares one edge of a lifecycle graph.
type Transition[T Subject] struct {
	Action  string
	Sources []string
	Target  string
	Guards  []Guard[T]
	Effects []Effect[T]
}

// Definition is a compiled lifecycle graph for one workflow kind.
type Definition[T Subject] struct {
	kind        identity.WorkflowKind
	transitions map[string]Transition[T]
}

// NewDefinition compiles the transitions of one workflow kind.
func NewDefinition[T Subject](kind identity.WorkflowKind, transitions ...Transition[T]) *Definition[T] {
	d := &Definition[T]{
		kind:        kind,
		transitions: make(map[string]Transition[T], len(transitions)),
	}
	for _, t := range transitions {
		d.transitions[t.Action] = t
	}
	return d
}

// Kind returns the workflow kind this definition covers.
func (d *Definition[T]) Kind() identity.WorkflowKind { return d.kind }

// Actions returns the declared action names.
func (d *Definition[T]) Actions() []string {
	actions := make([]string, 0, len(d.transitions))
	for a := range d.transitions {
		actions = append(actions, a)
	}
	return actions
}

// CanExecute reports whether the action is declared and reachable from the
// subject's current status. Guards are not evaluated.
func (d *Definition[T]) CanExecute(subject T, action string) bool {
	t, ok := d.transitions[action]
	if !ok {
		return false
	}
	return containsStatus(t.Sources, subject.CurrentStatus())
}

// Execute runs one transition: source check, guards in declaration order,
// status move, then side effects. Re-issuing an already-performed transition
// fails the source check and returns invalid_status_transition with no side
// effects, which makes every transition idempotence-safe by construction.
func (d *Definition[T]) Execute(subject T, action string) error {
	t, ok := d.transitions[action]
	if !ok {
		return shared.ErrInvalidStatusTransition
	}
	if !containsStatus(t.Sources, subject.CurrentStatus()) {
		return shared.ErrInvalidStatusTransition
	}
	for _, g := range t.Guards {
		if err := g.Check(subject); err != nil {
			return err
		}
	}
	subject.SetStatus(t.Target)
	now := time.Now()
	for _, effect := range t.Effects {
		effect(subject, now)
	}
	return nil
}

func containsStatus(statuses []string, status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}
