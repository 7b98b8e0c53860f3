package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/l1jgo/nodekit/internal/component"
	"github.com/l1jgo/nodekit/internal/config"
	"github.com/l1jgo/nodekit/internal/core/ecs"
	"github.com/l1jgo/nodekit/internal/core/event"
	coresys "github.com/l1jgo/nodekit/internal/core/system"
	"github.com/l1jgo/nodekit/internal/data"
	"github.com/l1jgo/nodekit/internal/persist"
	"github.com/l1jgo/nodekit/internal/scripting"
	"github.com/l1jgo/nodekit/internal/system"
	"github.com/l1jgo/nodekit/internal/world"
)

func run(cfgPath, scenario string) error {
	// 1. Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if scenario == "" {
		scenario = cfg.Scripting.Scenario
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	out := os.Stdout
	printBanner(out, cfg.World.Name)

	// 3. Prefabs and component catalog
	printSection(out, "Data")
	prefabs, err := data.LoadPrefabTable(cfg.Data.PrefabPath)
	if err != nil {
		return fmt.Errorf("load prefabs: %w", err)
	}
	printStat(out, "Prefabs", prefabs.Count())
	catalog := component.Builtin()
	printStat(out, "Component types", len(catalog.Keys()))
	fmt.Fprintln(out)

	// 4. World, bus and systems
	ecsWorld := ecs.NewWorld(log)
	bus := event.NewBus()
	defer world.Bridge(ecsWorld, bus)()
	spawner := world.NewSpawner(ecsWorld, catalog, prefabs, log)

	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewCleanupSystem(ecsWorld))

	// 5. Optional Postgres journal
	var journal *system.JournalSystem
	if cfg.Journal.Enabled {
		printSection(out, "Journal")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		db, err := persist.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK(out, "PostgreSQL connected")

		if err := persist.RunMigrations(ctx, db.Pool); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(out, "Migrations applied")

		runID := uuid.New()
		journal = system.NewJournalSystem(bus, persist.NewJournalRepo(db), runID, cfg.Journal.FlushInterval, log)
		runner.Register(journal)
		printReady(out, "Run "+runID.String())
		fmt.Fprintln(out)
	}

	// 6. Scenario script
	printSection(out, "Scenario")
	engine := scripting.NewEngine(spawner, log)
	defer engine.Close()
	if err := engine.LoadFile(scenario); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	runner.Register(system.NewScriptSystem(engine, log))
	printStat(out, "Nodes", ecsWorld.Len())
	printStat(out, "Watches", engine.Watches())
	fmt.Fprintln(out)

	// 7. Tick loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	ticker := time.NewTicker(cfg.World.TickRate)
	defer ticker.Stop()

	printSection(out, "Running")
	printReady(out, fmt.Sprintf("tick %s, max %d (0 = unlimited)", cfg.World.TickRate, cfg.World.MaxTicks))
	fmt.Fprintln(out)

	shutdown := func(reason string) error {
		log.Info("stopping", zap.String("reason", reason), zap.Uint64("ticks", runner.Ticks()))
		// Deliver whatever the last tick emitted before the final flush.
		bus.SwapBuffers()
		bus.DispatchAll()
		if journal != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := journal.Flush(ctx); err != nil {
				return fmt.Errorf("final journal flush: %w", err)
			}
		}
		printSummary(out, ecsWorld)
		return nil
	}

	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.World.TickRate)
			if cfg.World.MaxTicks > 0 && runner.Ticks() >= cfg.World.MaxTicks {
				return shutdown("max ticks reached")
			}
		case sig := <-shutdownCh:
			return shutdown(sig.String())
		}
	}
}

func listPrefabs(out io.Writer, cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	prefabs, err := data.LoadPrefabTable(cfg.Data.PrefabPath)
	if err != nil {
		return fmt.Errorf("load prefabs: %w", err)
	}

	printSection(out, "Prefabs")
	for _, name := range prefabs.Names() {
		printStat(out, name, len(prefabs.Get(name).Components))
	}
	fmt.Fprintln(out)
	printSection(out, "Component types")
	for _, key := range component.Builtin().Keys() {
		printOK(out, string(key))
	}
	return nil
}

func printSummary(out io.Writer, w *ecs.World) {
	fmt.Fprintln(out)
	printSection(out, "Summary")
	printStat(out, "Live nodes", w.Len())
	for _, n := range w.Nodes() {
		printStat(out, n.Name+" "+n.ID.String(), n.Components.Len())
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
