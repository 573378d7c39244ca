package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/milk9111/thirdperson/character"
	"github.com/milk9111/thirdperson/common"
	"github.com/milk9111/thirdperson/fsm"
)

const (
	phaseNotSaving fsm.ID = iota
	phaseDelaying
	phaseSmelling
	phasePlanting
	phaseBeing
)

const (
	phaseNotLoading fsm.ID = iota
	phaseLoading
	phaseLoaded
)

// Checkpointer lets one character plant a checkpoint by crouching in
// place and return to it by holding load.
type Checkpointer struct {
	id     string
	tuning *Tuning
	ch     *character.Character
	store  Store

	save      *fsm.Machine[*Checkpointer]
	load      *fsm.Machine[*Checkpointer]
	saveState fsm.State
	loadState fsm.State

	checkpoint *Checkpoint
	pending    Checkpoint
	isSaving   bool

	loadElapsed  float64
	loadDuration float64
	loadSrc      character.Frame
	loadDst      character.Frame

	// per-update scratch
	ctx context.Context
	err error
}

// New attaches a checkpointer to ch. store may be nil, in which case
// checkpoints only live in memory.
func New(id string, t *Tuning, ch *character.Character, store Store) *Checkpointer {
	c := &Checkpointer{id: id, tuning: t, ch: ch, store: store}
	c.save = fsm.New("save", func(c *Checkpointer) *fsm.State { return &c.saveState },
		notSavingPhase{},
		delayingPhase{},
		smellingPhase{},
		plantingPhase{},
		beingPhase{},
	)
	c.load = fsm.New("load", func(c *Checkpointer) *fsm.State { return &c.loadState },
		notLoadingPhase{},
		loadingPhase{},
		loadedPhase{},
	)
	c.SetTuning(t)
	return c
}

func (c *Checkpointer) SetTuning(t *Tuning) {
	c.tuning = t
	c.save.SetLogging(t.Debug)
	c.load.SetLogging(t.Debug)
}

func (c *Checkpointer) ID() string { return c.id }

// Checkpoint is the committed checkpoint, or nil before the first save.
func (c *Checkpointer) Checkpoint() *Checkpoint {
	return c.checkpoint
}

// SetCheckpoint commits cp without planting it.
func (c *Checkpointer) SetCheckpoint(cp Checkpoint) {
	c.checkpoint = &cp
}

func (c *Checkpointer) IsSaving() bool { return c.isSaving }
func (c *Checkpointer) IsLoading() bool { return c.load.Is(c, phaseLoading) }
func (c *Checkpointer) SavePhase() string { return c.save.PhaseName(c) }
func (c *Checkpointer) LoadPhase() string { return c.load.PhaseName(c) }
func (c *Checkpointer) LoadDuration() float64 { return c.loadDuration }

// Restore reads the persisted checkpoint, if any.
func (c *Checkpointer) Restore(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	cp, err := c.store.Load(ctx, c.id)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	c.checkpoint = &cp
	return nil
}

// Update runs both machines once. It runs after the character's step and
// reads the committed frame.
func (c *Checkpointer) Update(ctx context.Context, delta float64) error {
	c.ctx = ctx
	c.err = nil
	c.save.Update(c, delta)
	c.load.Update(c, delta)
	c.ctx = nil
	return c.err
}

func (c *Checkpointer) canSave() bool {
	f := c.ch.Committed()
	return f.IsCrouching && f.IsIdle()
}

func (c *Checkpointer) canLoad() bool {
	return c.ch.Input().IsLoadPressed() && c.checkpoint != nil
}

func (c *Checkpointer) commit(cp Checkpoint) {
	c.checkpoint = &cp
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.ctx, c.id, cp); err != nil {
		c.err = err
		log.Printf("checkpoint: %s: %v", c.id, err)
	}
}

// stayOrRevert drops back to NotSaving once saving is no longer possible,
// otherwise moves on to next after d seconds.
func stayOrRevert(c *Checkpointer, d float64, next fsm.ID) {
	if !c.canSave() {
		c.save.ChangeTo(c, phaseNotSaving)
		return
	}
	if c.save.Elapsed(c) > d {
		c.save.ChangeTo(c, next)
	}
}

type notSavingPhase struct{}

func (notSavingPhase) ID() fsm.ID { return phaseNotSaving }
func (notSavingPhase) Name() string { return "NotSaving" }

func (notSavingPhase) Enter(c *Checkpointer) {
	c.isSaving = false
}

func (notSavingPhase) Update(c *Checkpointer, delta float64) {
	if c.canSave() {
		c.save.ChangeTo(c, phaseDelaying)
	}
}

func (notSavingPhase) Exit(c *Checkpointer) {
	c.pending = FromState(c.ch.Committed())
}

type delayingPhase struct{}

func (delayingPhase) ID() fsm.ID { return phaseDelaying }
func (delayingPhase) Name() string { return "Delaying" }
func (delayingPhase) Enter(*Checkpointer) {}
func (delayingPhase) Exit(*Checkpointer) {}

func (delayingPhase) Update(c *Checkpointer, delta float64) {
	stayOrRevert(c, c.tuning.SaveDelay, phaseSmelling)
}

type smellingPhase struct{}

func (smellingPhase) ID() fsm.ID { return phaseSmelling }
func (smellingPhase) Name() string { return "Smelling" }
func (smellingPhase) Exit(*Checkpointer) {}

func (smellingPhase) Enter(c *Checkpointer) {
	c.isSaving = true
}

func (smellingPhase) Update(c *Checkpointer, delta float64) {
	stayOrRevert(c, c.tuning.SmellDuration(), phasePlanting)
}

type plantingPhase struct{}

func (plantingPhase) ID() fsm.ID { return phasePlanting }
func (plantingPhase) Name() string { return "Planting" }
func (plantingPhase) Enter(*Checkpointer) {}
func (plantingPhase) Exit(*Checkpointer) {}

func (plantingPhase) Update(c *Checkpointer, delta float64) {
	stayOrRevert(c, c.tuning.PlantDuration(), phaseBeing)
}

type beingPhase struct{}

func (beingPhase) ID() fsm.ID { return phaseBeing }
func (beingPhase) Name() string { return "Being" }
func (beingPhase) Exit(*Checkpointer) {}

func (beingPhase) Enter(c *Checkpointer) {
	c.commit(c.pending)
}

func (beingPhase) Update(c *Checkpointer, delta float64) {
	if !c.canSave() {
		c.save.ChangeTo(c, phaseNotSaving)
	}
}

type notLoadingPhase struct{}

func (notLoadingPhase) ID() fsm.ID { return phaseNotLoading }
func (notLoadingPhase) Name() string { return "NotLoading" }
func (notLoadingPhase) Exit(*Checkpointer) {}

func (notLoadingPhase) Enter(c *Checkpointer) {
	c.resetLoad()
}

func (notLoadingPhase) Update(c *Checkpointer, delta float64) {
	if c.canLoad() {
		c.load.ChangeTo(c, phaseLoading)
	}
}

func (c *Checkpointer) resetLoad() {
	c.loadElapsed = 0
	c.loadDuration = 0
}

type loadingPhase struct{}

func (loadingPhase) ID() fsm.ID { return phaseLoading }
func (loadingPhase) Name() string { return "Loading" }

func (loadingPhase) Enter(c *Checkpointer) {
	src := *c.ch.Committed()
	dst, err := c.checkpoint.IntoState(c.ch)
	if err != nil {
		// a checkpoint with a vertical forward can't be loaded
		c.err = fmt.Errorf("checkpoint: load %s: %w", c.id, err)
		dst = src
		dst.Position = c.checkpoint.Position
	}

	c.loadDuration = c.tuning.LoadDuration(src.Position.Sub(c.checkpoint.Position).Len())
	c.loadElapsed = 0
	c.loadSrc = src
	c.loadDst = dst
	c.ch.Pause()
}

func (loadingPhase) Update(c *Checkpointer, delta float64) {
	if c.ch.Input().IsLoadPressed() {
		c.loadElapsed += delta
	} else if c.loadElapsed >= 0 {
		c.loadElapsed -= max(0, delta*c.tuning.LoadCancelMultiplier)
	}

	switch {
	case c.loadElapsed < 0:
		c.ch.ForceState(c.loadSrc)
		c.load.ChangeTo(c, phaseLoaded)
	case c.loadElapsed >= c.loadDuration:
		c.ch.ForceState(c.loadDst)
		c.load.ChangeTo(c, phaseLoaded)
	default:
		// position eases in quadratically
		pct := common.Clamp01(c.loadElapsed / c.loadDuration)
		c.ch.ForceState(character.Interpolate(&c.loadSrc, &c.loadDst, pct*pct))
	}
}

func (loadingPhase) Exit(c *Checkpointer) {
	c.ch.Unpause()
}

type loadedPhase struct{}

func (loadedPhase) ID() fsm.ID { return phaseLoaded }
func (loadedPhase) Name() string { return "Loaded" }
func (loadedPhase) Exit(*Checkpointer) {}

func (loadedPhase) Enter(c *Checkpointer) {
	c.resetLoad()
}

func (loadedPhase) Update(c *Checkpointer, delta float64) {
	if !c.ch.Input().IsLoadPressed() {
		c.load.ChangeTo(c, phaseNotLoading)
	}
}
