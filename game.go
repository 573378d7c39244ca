package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/milk9111/thirdperson/checkpoint"
	"github.com/milk9111/thirdperson/ecs"
	"github.com/milk9111/thirdperson/ecs/component"
	"github.com/milk9111/thirdperson/ecs/entity"
	"github.com/milk9111/thirdperson/ecs/system"
	"github.com/milk9111/thirdperson/levels"
	"github.com/milk9111/thirdperson/prefabs"
)

type Config struct {
	LevelPath string
	Prefabs   []string
	Delta     float64
	Watch     bool
	Store     string
	Limit     int
	Debug     bool
}

type Game struct {
	cfg     Config
	world   *ecs.World
	watcher *prefabs.Watcher
	closers []func() error

	frames int
}

func NewGame(ctx context.Context, cfg Config) (*Game, error) {
	if cfg.Delta <= 0 {
		return nil, fmt.Errorf("game: timestep must be positive, got %v", cfg.Delta)
	}

	level, err := levels.Load(cfg.LevelPath)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	pw, err := ecs.NewPhysicsWorld(level)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}

	g := &Game{cfg: cfg, world: ecs.NewWorld()}
	g.world.SetPhysicsWorld(pw)

	// reloads land before anything reads a tuning; strides and
	// checkpoints read the frame the simulation just committed
	g.world.AddSystem(system.NewReloadSystem(cfg.LevelPath))
	g.world.AddSystem(system.NewScriptSystem())
	g.world.AddSystem(system.NewInputSystem())
	g.world.AddSystem(system.NewSimulationSystem(cfg.Limit))
	g.world.AddSystem(system.NewStrideSystem())
	g.world.AddSystem(system.NewCheckpointSystem())
	g.world.AddSystem(system.NewEventSystem())
	g.world.AddSystem(&eventPrinter{enabled: cfg.Debug})

	store, err := g.openStore(ctx, cfg.Store)
	if err != nil {
		g.Close()
		return nil, err
	}

	for _, name := range cfg.Prefabs {
		e, err := entity.BuildEntity(ctx, g.world, name, store)
		if err != nil {
			g.Close()
			return nil, err
		}
		id, _ := ecs.Get(g.world, e, component.IdentityComponent.Kind())
		log.Printf("game: spawned %s (%s) as %v", id.Name, id.ID, e)
	}

	if cfg.Watch {
		if err := g.watch(); err != nil {
			g.Close()
			return nil, err
		}
	}
	return g, nil
}

func (g *Game) openStore(ctx context.Context, spec string) (checkpoint.Store, error) {
	switch {
	case spec == "":
		return nil, nil
	case strings.HasPrefix(spec, "redis://") || strings.HasPrefix(spec, "rediss://"):
		opt, err := checkpoint.ParseRedisURL(spec)
		if err != nil {
			return nil, fmt.Errorf("game: store: %w", err)
		}
		client, err := checkpoint.DialRedis(ctx, opt)
		if err != nil {
			return nil, err
		}
		g.closers = append(g.closers, client.Close)
		log.Printf("game: checkpoints in redis at %s/%d (tls %v)", opt.Addr, opt.DB, opt.TLSConfig != nil)
		return checkpoint.NewRedisStore(client, 0), nil
	default:
		log.Printf("game: checkpoints in %s", spec)
		return checkpoint.NewFileStore(spec), nil
	}
}

// watch follows whichever of the prefab, script and level directories
// exist on disk.
func (g *Game) watch() error {
	candidates := []string{prefabs.Dir, filepath.Join(prefabs.Dir, "scripts")}
	if _, err := os.Stat(g.cfg.LevelPath); err == nil {
		candidates = append(candidates, filepath.Dir(g.cfg.LevelPath))
	}

	var dirs []string
	seen := make(map[string]bool)
	for _, dir := range candidates {
		abs, err := filepath.Abs(dir)
		if err != nil || seen[abs] {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			seen[abs] = true
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		log.Printf("game: nothing on disk to watch")
		return nil
	}

	w, err := prefabs.NewWatcher(dirs...)
	if err != nil {
		return fmt.Errorf("game: watch: %w", err)
	}
	g.watcher = w
	g.closers = append(g.closers, w.Close)
	log.Printf("game: watching %s", strings.Join(dirs, ", "))
	return nil
}

// pumpReloads turns pending watcher events into reload requests for the
// next tick.
func (g *Game) pumpReloads() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			e := ecs.CreateEntity(g.world)
			_ = ecs.Add(g.world, e, component.ReloadRequestComponent.Kind(), &component.ReloadRequest{Path: path})
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("game: watch: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) Update(ctx context.Context) error {
	g.frames++
	g.pumpReloads()
	err := g.world.Update(ctx, g.cfg.Delta)

	if g.cfg.Debug && g.frames%int(max(1, 1/g.cfg.Delta)) == 0 {
		g.status()
	}
	return err
}

// Run ticks the world until ticks have run or ctx is done. Errors from a
// tick are logged; the simulation keeps going.
func (g *Game) Run(ctx context.Context, ticks int, realtime bool) error {
	var pace <-chan time.Time
	if realtime {
		ticker := time.NewTicker(time.Duration(g.cfg.Delta * float64(time.Second)))
		defer ticker.Stop()
		pace = ticker.C
	}

	for ticks <= 0 || g.frames < ticks {
		if pace != nil {
			select {
			case <-ctx.Done():
				return g.finish(ctx)
			case <-pace:
			}
		} else if ctx.Err() != nil {
			return g.finish(ctx)
		}

		if err := g.Update(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return g.finish(ctx)
			}
			log.Printf("game: tick %d: %v", g.frames, err)
		}
	}
	return g.finish(ctx)
}

func (g *Game) finish(ctx context.Context) error {
	g.status()
	if err := ctx.Err(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// status logs one line per character.
func (g *Game) status() {
	ecs.ForEach2(g.world, component.IdentityComponent.Kind(), component.CharacterComponent.Kind(), func(e ecs.Entity, id *component.Identity, ch *component.Character) {
		c := ch.Character
		f := c.Committed()
		line := fmt.Sprintf("%s tick %d pos %.2f vel %.2f surface %s jump %s",
			id.Name, c.Ticks(), f.Position, f.Velocity, f.MainSurface.Kind, c.JumpPhase())
		if cp, ok := ecs.Get(g.world, e, component.CheckpointComponent.Kind()); ok {
			line += fmt.Sprintf(" save %s load %s", cp.Checkpointer.SavePhase(), cp.Checkpointer.LoadPhase())
		}
		log.Print(line)
	})
}

func (g *Game) Close() error {
	var errs []error
	for i := len(g.closers) - 1; i >= 0; i-- {
		errs = append(errs, g.closers[i]())
	}
	g.closers = nil
	return errors.Join(errs...)
}

// eventPrinter logs the character events published this tick.
type eventPrinter struct {
	enabled bool
}

func (p *eventPrinter) Update(w *ecs.World) error {
	events := w.Events().Drain()
	if !p.enabled {
		return nil
	}
	for _, ev := range events {
		data, ok := ev.Data.(ecs.CharacterEvent)
		if ev.Type != ecs.EventCharacter || !ok {
			continue
		}
		name := ev.Entity.String()
		if id, ok := ecs.Get(w, ev.Entity, component.IdentityComponent.Kind()); ok {
			name = id.Name
		}
		log.Printf("event: %s tick %d: %s", name, data.Tick, data.Events)
	}
	return nil
}
