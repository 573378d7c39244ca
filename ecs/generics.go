package ecs

import (
	"fmt"

	"github.com/milk9111/thirdperson/ecs/component"
)

func storeOf[T any](w *World, kind component.ComponentKind[T], create bool) *sparseSet[T] {
	if s, ok := w.stores[kind.ID()]; ok {
		ss, _ := s.(*sparseSet[T])
		return ss
	}
	if !create {
		return nil
	}
	ss := &sparseSet[T]{}
	w.stores[kind.ID()] = ss
	return ss
}

// Add attaches value to e, replacing any component of the same kind.
func Add[T any](w *World, e Entity, kind component.ComponentKind[T], value *T) error {
	switch {
	case !IsAlive(w, e):
		return fmt.Errorf("%w: add %v to %v", component.ErrEntityNotAlive, kind, e)
	case value == nil:
		return fmt.Errorf("%w: add %v to %v", component.ErrNilComponent, kind, e)
	case !kind.Valid():
		return component.ErrInvalidComponentKind
	}
	storeOf(w, kind, true).set(e.id(), value)
	return nil
}

func Remove[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeOf(w, kind, false)
	return s != nil && s.remove(e.id())
}

func Has[T any](w *World, e Entity, kind component.ComponentKind[T]) bool {
	if !IsAlive(w, e) {
		return false
	}
	s := storeOf(w, kind, false)
	return s != nil && s.has(e.id())
}

func Get[T any](w *World, e Entity, kind component.ComponentKind[T]) (*T, bool) {
	if !IsAlive(w, e) {
		return nil, false
	}
	s := storeOf(w, kind, false)
	if s == nil {
		return nil, false
	}
	return s.get(e.id())
}

// First returns any entity holding kind.
func First[T any](w *World, kind component.ComponentKind[T]) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	s := storeOf(w, kind, false)
	if s == nil || s.size() == 0 {
		return 0, false
	}
	return w.entities.entity(s.dense[0]), true
}

// Count reports how many entities hold kind.
func Count[T any](w *World, kind component.ComponentKind[T]) int {
	if w == nil {
		return 0
	}
	s := storeOf(w, kind, false)
	if s == nil {
		return 0
	}
	return s.size()
}
