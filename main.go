package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/milk9111/thirdperson/levels"
)

type prefabList []string

func (p *prefabList) String() string {
	return strings.Join(*p, ",")
}

func (p *prefabList) Set(v string) error {
	*p = append(*p, v)
	return nil
}

func main() {
	var prefabNames prefabList
	levelPath := flag.String("level", levels.Default, "level file (.json or .yaml); falls back to the embedded level of the same name")
	flag.Var(&prefabNames, "prefab", "entity prefab to spawn (repeatable, default runner.yaml)")
	ticks := flag.Int("ticks", 600, "ticks to run; 0 runs until interrupted")
	dt := flag.Float64("dt", 1.0/60, "fixed timestep in seconds")
	realtime := flag.Bool("realtime", false, "pace ticks to the wall clock")
	watch := flag.Bool("watch", false, "hot reload prefabs, scripts and the level")
	store := flag.String("store", "", "checkpoint store: a directory or redis://host:port/db (default in memory)")
	limit := flag.Int("limit", 0, "max characters stepped in parallel (0 = no limit)")
	debug := flag.Bool("debug", false, "log character events and a status line every second")
	flag.Parse()

	if len(prefabNames) == 0 {
		prefabNames = prefabList{"runner.yaml"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	game, err := NewGame(ctx, Config{
		LevelPath: *levelPath,
		Prefabs:   prefabNames,
		Delta:     *dt,
		Watch:     *watch,
		Store:     *store,
		Limit:     *limit,
		Debug:     *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := game.Run(ctx, *ticks, *realtime); err != nil {
		log.Fatal(err)
	}
}
