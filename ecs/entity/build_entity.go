package entity

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/checkpoint"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/limb"
	"github.com/milk9111/thirdperson/prefabs"
)

var ErrNoPhysicsWorld = errors.New("build entity: world has no physics world")

var identityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/milk9111/thirdperson/prefabs"))

// prefabIdentity derives a character's id from its prefab and how many
// characters of that prefab were spawned before it, so the same launch
// finds the same persisted checkpoints.
func prefabIdentity(w *ecs.World, prefabPath string) uuid.UUID {
	name := prefabs.Name(prefabPath)
	n := 0
	ecs.ForEach(w, component.IdentityComponent.Kind(), func(_ ecs.Entity, id *component.Identity) {
		if prefabs.Name(id.Prefab) == name {
			n++
		}
	})
	if n > 0 {
		name = fmt.Sprintf("%s#%d", name, n+1)
	}
	return uuid.NewSHA1(identityNamespace, []byte(name))
}

type buildContext struct {
	PrefabPath string
	Context    context.Context
	Store      checkpoint.Store
	ID         uuid.UUID
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"character":  addCharacter,
	"input":      addInput,
	"legs":       addLegs,
	"checkpoint": addCheckpoint,
	"script":     addScript,
}

// legs and checkpoint attach to the character, so it comes first
var componentBuildOrder = []string{
	"character",
	"input",
	"legs",
	"checkpoint",
	"script",
}

// BuildEntity assembles a hosted character from an entity prefab. store
// may be nil, in which case checkpoints are kept in memory only.
func BuildEntity(ctx context.Context, w *ecs.World, prefabPath string, store checkpoint.Store) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}
	if w.PhysicsWorld() == nil {
		return 0, ErrNoPhysicsWorld
	}
	if ctx == nil {
		ctx = context.Background()
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	if len(spec.Components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}
	if _, ok := spec.Components["character"]; !ok {
		return 0, fmt.Errorf("build entity: prefab %q has no character", prefabPath)
	}

	bctx := &buildContext{PrefabPath: prefabPath, Context: ctx, Store: store, ID: prefabIdentity(w, prefabPath)}
	e := ecs.CreateEntity(w)

	label := spec.Name
	if label == "" {
		label = prefabs.Name(prefabPath)
	}
	if err := ecs.Add(w, e, component.IdentityComponent.Kind(), &component.Identity{
		ID:     bctx.ID,
		Name:   label,
		Prefab: prefabPath,
	}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: %w", prefabPath, err)
	}

	remaining := make(map[string]any, len(spec.Components))
	for k, v := range spec.Components {
		remaining[k] = v
	}

	build := func(name string) error {
		builder, ok := componentRegistry[name]
		if !ok {
			return fmt.Errorf("build entity: %q: no builder for component %q", prefabPath, name)
		}
		if err := builder(w, e, remaining[name], bctx); err != nil {
			return fmt.Errorf("build entity: %q: add %q: %w", prefabPath, name, err)
		}
		delete(remaining, name)
		return nil
	}

	for _, name := range componentBuildOrder {
		if _, ok := remaining[name]; !ok {
			continue
		}
		if err := build(name); err != nil {
			ecs.DestroyEntity(w, e)
			return 0, err
		}
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := build(name); err != nil {
				ecs.DestroyEntity(w, e)
				return 0, err
			}
		}
	}

	if err := ecs.Add(w, e, component.EventLogComponent.Kind(), &component.EventLog{
		Counts: make(map[character.Events]int),
	}); err != nil {
		ecs.DestroyEntity(w, e)
		return 0, fmt.Errorf("build entity: %q: %w", prefabPath, err)
	}

	return e, nil
}

type characterSpec = prefabs.CharacterComponentSpec

func addCharacter(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[characterSpec](raw)
	if err != nil {
		return fmt.Errorf("decode character spec: %w", err)
	}
	if spec.Spec == "" {
		return fmt.Errorf("character spec is required")
	}
	cs, err := prefabs.LoadCharacterSpec(spec.Spec)
	if err != nil {
		return err
	}

	pw := w.PhysicsWorld()
	pos, fwd := spawnPoint(pw.Level().Spawn, pw.Level().Forward, spec)
	collider := pw.Collider(cs.Radius)
	ch, err := character.New(&cs.Tuning, collider, pos, fwd)
	if err != nil {
		return err
	}

	return ecs.Add(w, e, component.CharacterComponent.Kind(), &component.Character{
		Character: ch,
		Collider:  collider,
		Spec:      spec.Spec,
	})
}

func spawnPoint(pos, fwd mgl64.Vec3, spec characterSpec) (mgl64.Vec3, mgl64.Vec3) {
	if spec.Spawn != nil {
		pos = *spec.Spawn
	}
	if spec.Forward != nil {
		fwd = *spec.Forward
	}
	return pos, fwd
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent.Kind(), &component.Input{})
}

type legsSpec = prefabs.LegsComponentSpec

func addLegs(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[legsSpec](raw)
	if err != nil {
		return fmt.Errorf("decode legs spec: %w", err)
	}
	if spec.Spec == "" {
		return fmt.Errorf("legs spec is required")
	}
	cfg, err := prefabs.LoadLimbConfig(spec.Spec)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.LegsComponent.Kind(), &component.Legs{
		Legs: limb.NewLegs(cfg),
		Spec: spec.Spec,
	})
}

type checkpointSpec = prefabs.CheckpointComponentSpec

func addCheckpoint(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[checkpointSpec](raw)
	if err != nil {
		return fmt.Errorf("decode checkpoint spec: %w", err)
	}
	if spec.Spec == "" {
		return fmt.Errorf("checkpoint spec is required")
	}
	ch, ok := ecs.Get(w, e, component.CharacterComponent.Kind())
	if !ok || ch.Character == nil {
		return fmt.Errorf("checkpoint requires a character on the same entity")
	}
	t, err := prefabs.LoadCheckpointTuning(spec.Spec)
	if err != nil {
		return err
	}

	id := spec.ID
	if id == "" {
		id = ctx.ID.String()
	}
	cp := checkpoint.New(id, t, ch.Character, ctx.Store)
	if err := cp.Restore(ctx.Context); err != nil {
		return fmt.Errorf("restore checkpoint %q: %w", id, err)
	}
	return ecs.Add(w, e, component.CheckpointComponent.Kind(), &component.Checkpoint{
		Checkpointer: cp,
		Spec:         spec.Spec,
	})
}

type scriptSpec = prefabs.ScriptComponentSpec

func addScript(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[scriptSpec](raw)
	if err != nil {
		return fmt.Errorf("decode script spec: %w", err)
	}
	if spec.Path == "" {
		return fmt.Errorf("script path is required")
	}
	return ecs.Add(w, e, component.ScriptComponent.Kind(), &component.Script{Path: spec.Path})
}
