package ecs

import "github.com/milk9111/thirdperson/ecs/component"

// snapshot copies the ids of the smallest store so callbacks may add or
// destroy entities while a query runs.
func snapshot(stores ...store) []entityID {
	best := stores[0]
	for _, s := range stores[1:] {
		if s.size() < best.size() {
			best = s
		}
	}
	return append([]entityID(nil), best.entityIDs()...)
}

func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(Entity, *T)) {
	if w == nil {
		return
	}
	s := storeOf(w, kind, false)
	if s == nil {
		return
	}
	for _, id := range snapshot(s) {
		if v, ok := s.get(id); ok {
			fn(w.entities.entity(id), v)
		}
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if w == nil {
		return
	}
	sa, sb := storeOf(w, ka, false), storeOf(w, kb, false)
	if sa == nil || sb == nil {
		return
	}
	for _, id := range snapshot(sa, sb) {
		a, okA := sa.get(id)
		b, okB := sb.get(id)
		if okA && okB {
			fn(w.entities.entity(id), a, b)
		}
	}
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if w == nil {
		return
	}
	sa, sb, sc := storeOf(w, ka, false), storeOf(w, kb, false), storeOf(w, kc, false)
	if sa == nil || sb == nil || sc == nil {
		return
	}
	for _, id := range snapshot(sa, sb, sc) {
		a, okA := sa.get(id)
		b, okB := sb.get(id)
		c, okC := sc.get(id)
		if okA && okB && okC {
			fn(w.entities.entity(id), a, b, c)
		}
	}
}

func ForEach4[A, B, C, D any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], kd component.ComponentKind[D], fn func(Entity, *A, *B, *C, *D)) {
	if w == nil {
		return
	}
	sa, sb, sc, sd := storeOf(w, ka, false), storeOf(w, kb, false), storeOf(w, kc, false), storeOf(w, kd, false)
	if sa == nil || sb == nil || sc == nil || sd == nil {
		return
	}
	for _, id := range snapshot(sa, sb, sc, sd) {
		a, okA := sa.get(id)
		b, okB := sb.get(id)
		c, okC := sc.get(id)
		d, okD := sd.get(id)
		if okA && okB && okC && okD {
			fn(w.entities.entity(id), a, b, c, d)
		}
	}
}
