// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package statemachine

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// ErrInvalidTransition is returned (wrapped) when a transition is not in the
// table.
var ErrInvalidTransition = errors.New("invalid transition")

// StateMachine is a transition table over states of type T. It does not hold
// a current state: callers keep state in their own records and ask the table
// whether a move is legal, so one table can serve any number of records.
//
// The table is safe for concurrent use.
type StateMachine[T comparable] struct {
	mu sync.RWMutex

	initial          T
	validTransitions map[T][]T
}

// New creates an empty table whose records start in initial.
func New[T comparable](initial T) *StateMachine[T] {
	return &StateMachine[T]{
		initial:          initial,
		validTransitions: make(map[T][]T),
	}
}

// Initial returns the state new records start in.
func (sm *StateMachine[T]) Initial() T {
	return sm.initial
}

// Allow registers from -> to for every target.
func (sm *StateMachine[T]) Allow(from T, to ...T) *StateMachine[T] {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for _, target := range to {
		if !slices.Contains(sm.validTransitions[from], target) {
			sm.validTransitions[from] = append(sm.validTransitions[from], target)
		}
	}
	return sm
}

// CanTransition checks if a transition from one state to another is valid.
func (sm *StateMachine[T]) CanTransition(from, to T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Contains(sm.validTransitions[from], to)
}

// GetValidNextStates returns all valid next states from the given state.
func (sm *StateMachine[T]) GetValidNextStates(from T) []T {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return slices.Clone(sm.validTransitions[from])
}

// IsTerminal reports whether no transition leaves state.
func (sm *StateMachine[T]) IsTerminal(state T) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.validTransitions[state]) == 0
}

// Transition validates from -> to. It does not mutate any record; persisting
// the new state is the caller's job.
func (sm *StateMachine[T]) Transition(from, to T) error {
	if !sm.CanTransition(from, to) {
		return fmt.Errorf("%w: %v -> %v", ErrInvalidTransition, from, to)
	}
	return nil
}

// ToDot exports the table as a Graphviz DOT string.
func (sm *StateMachine[T]) ToDot(name string) string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	froms := make([]string, 0, len(sm.validTransitions))
	edges := make(map[string][]string, len(sm.validTransitions))
	for from, tos := range sm.validTransitions {
		key := fmt.Sprint(from)
		froms = append(froms, key)
		for _, to := range tos {
			edges[key] = append(edges[key], fmt.Sprint(to))
		}
	}
	slices.Sort(froms)

	dot := fmt.Sprintf("digraph %s {\n", name)
	dot += "  rankdir=LR;\n"
	dot += "  node [shape=circle];\n"
	dot += "  start [shape=point];\n"
	dot += fmt.Sprintf("  start -> \"%v\";\n", sm.initial)
	for _, from := range froms {
		tos := edges[from]
		slices.Sort(tos)
		for _, to := range tos {
			dot += fmt.Sprintf("  \"%s\" -> \"%s\";\n", from, to)
		}
	}
	dot += "}\n"
	return dot
}
