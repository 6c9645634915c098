package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vantage3d/vantage/internal/config"
	"github.com/vantage3d/vantage/internal/event"
	"github.com/vantage3d/vantage/internal/geom"
	"github.com/vantage3d/vantage/internal/manifest"
	"github.com/vantage3d/vantage/internal/physics"
	"github.com/vantage3d/vantage/internal/record"
	"github.com/vantage3d/vantage/internal/render"
	"github.com/vantage3d/vantage/internal/script"
	"github.com/vantage3d/vantage/internal/world"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfgPath := "config/vantage.toml"
	if p := os.Getenv("VANTAGE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	// 3. Optional observation recorder
	bus := event.NewBus()
	var recorder *record.Recorder
	if cfg.Recorder.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := record.NewDB(ctx, cfg.Recorder, log)
		cancel()
		if err != nil {
			return fmt.Errorf("recorder db: %w", err)
		}
		defer db.Close()

		ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
		err = record.RunMigrations(ctx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("recorder migrations: %w", err)
		}

		recorder = record.NewRecorder(db, log)
		recorder.Attach(bus)
		log.Info("observation recorder enabled")
	}

	// 4. Controller scripts
	engine, err := script.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return fmt.Errorf("script engine: %w", err)
	}
	defer engine.Close()

	// 5. Device resources and the world
	device := render.NewDevice("software")
	opts := world.DefaultOptions()
	opts.Gravity = mgl32.Vec3{0, cfg.Physics.GravityY, 0}
	opts.Params = physics.Params{
		Dt:             cfg.Physics.Timestep,
		LinearDamping:  cfg.Physics.LinearDamping,
		AngularDamping: cfg.Physics.AngularDamping,
		GroundY:        cfg.Physics.GroundY,
		GroundEnabled:  cfg.Physics.Ground,
	}

	w, err := world.New(device.NewQueue(), device.NewAllocator(), opts, bus, log)
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	w.SetControlHook(engine.Control)

	// 6. Populate the scene
	if err := populate(w, cfg.Engine.Manifest, log); err != nil {
		return fmt.Errorf("populate scene: %w", err)
	}
	log.Info("world ready",
		zap.Int("entities", w.Len()),
		zap.Duration("tick_rate", cfg.Engine.TickRate),
	)

	// 7. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Engine.TickRate)
	defer ticker.Stop()

	flushCounter := 0
	for {
		select {
		case <-ticker.C:
			bus.SwapBuffers()
			bus.DispatchAll()

			if _, err := w.Step(); err != nil {
				return fmt.Errorf("step: %w", err)
			}
			if err := w.Render(); err != nil {
				return fmt.Errorf("render: %w", err)
			}

			if recorder != nil {
				flushCounter++
				if flushCounter >= cfg.Recorder.FlushTicks {
					flushCounter = 0
					flushRecorder(recorder, log)
				}
			}

		case sig := <-shutdownCh:
			log.Info("shutdown signal received", zap.String("signal", sig.String()))
			// Deliver the final tick's events so the recorder sees them.
			bus.SwapBuffers()
			bus.DispatchAll()
			if recorder != nil {
				flushRecorder(recorder, log)
			}
			log.Info("stopped", zap.Uint64("ticks", w.Tick()))
			return nil
		}
	}
}

func flushRecorder(recorder *record.Recorder, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := recorder.Flush(ctx); err != nil {
		log.Error("frame flush failed",
			zap.Int("pending", recorder.Pending()),
			zap.Error(err),
		)
	}
}

// populate spawns the manifest scene, or the built-in demo scene when no
// manifest is configured: a ground grid of flat polylines and a few dynamic
// cubes with sensor cameras.
func populate(w *world.GameWorld, manifestPath string, log *zap.Logger) error {
	if manifestPath != "" {
		sc, err := manifest.Load(manifestPath)
		if err != nil {
			return err
		}
		for _, spec := range sc.Entities {
			data := world.CreationData{
				Mesh:       spec.Mesh(),
				Isometry:   spec.Isometry(),
				Controller: spec.Controller,
			}
			if spec.Physics {
				data.Physics = &world.PhysicsData{Dynamic: spec.Dynamic}
			}
			for _, s := range spec.Sensors {
				data.Sensors = append(data.Sensors, world.SensorSpec{
					Extent: geom.Extent{Width: s.Width, Height: s.Height},
				})
			}
			if err := w.AddEntity(spec.ID, data); err != nil {
				return err
			}
		}
		log.Info("manifest loaded",
			zap.String("path", manifestPath),
			zap.Int("entities", len(sc.Entities)),
		)
		return nil
	}

	// Demo scene: a 10x10 ground grid plus falling cubes.
	var id uint32 = 1
	gray := [4]float32{0.6, 0.6, 0.6, 1.0}
	for i := 0; i <= 10; i++ {
		f := float32(i)
		rows := []geom.Mesh{
			geom.FlatPolyline([]mgl32.Vec3{{0, 0, f}, {10, 0, f}}, 0.05, gray),
			geom.FlatPolyline([]mgl32.Vec3{{f, 0, 0}, {f, 0, 10}}, 0.05, gray),
		}
		for _, mesh := range rows {
			if err := w.AddEntity(id, world.CreationData{
				Mesh:     mesh,
				Isometry: geom.IdentityIsometry(),
			}); err != nil {
				return err
			}
			id++
		}
	}
	for i := 0; i < 3; i++ {
		err := w.AddEntity(id, world.CreationData{
			Mesh:     geom.UnitCube(),
			Isometry: geom.Translate(mgl32.Vec3{float32(2 + 3*i), 5, 5}),
			Physics:  &world.PhysicsData{Dynamic: true},
			Sensors: []world.SensorSpec{
				{Extent: geom.Extent{Width: 64, Height: 64}},
			},
		})
		if err != nil {
			return err
		}
		id++
	}
	return nil
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
