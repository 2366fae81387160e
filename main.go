package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/soar/padmapper/internal/config"
	"github.com/soar/padmapper/internal/console"
	"github.com/soar/padmapper/internal/engine"
	"github.com/soar/padmapper/internal/gamepad"
	"github.com/soar/padmapper/internal/hub"
	"github.com/soar/padmapper/internal/logging"
	"github.com/soar/padmapper/internal/output"
	"github.com/soar/padmapper/internal/server"
	"github.com/soar/padmapper/internal/tray"
)

// os.Interrupt covers Ctrl+C on every platform; SIGTERM is Unix only.
var shutdownSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}

func main() {
	cfg, err := config.Load(filepath.Base(os.Args[0]), os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	interactive := console.Interactive()
	logging.Setup(cfg.LogLevel, interactive)
	log := logging.Subsystem("main")
	if cfg.File != "" {
		log.Info().Str("file", cfg.File).Msg("config loaded")
	}

	if err := run(cfg, interactive); err != nil {
		log.Error().Err(err).Msg("padmapper stopped with error")
		os.Exit(1)
	}
	log.Info().Msg("padmapper stopped")
}

func newSink(cfg *config.Config) (output.Sink, error) {
	switch cfg.Output {
	case config.OutputUinput:
		return output.NewVirtual("padmapper virtual input")
	case config.OutputLog:
		return output.NewLogSink(logging.Subsystem("output")), nil
	default:
		return output.NewRecorder(), nil
	}
}

func newSource(cfg *config.Config) (gamepad.Source, error) {
	if cfg.Input == config.InputEvdev {
		return gamepad.NewEvdevSource(cfg.EvdevDevice), nil
	}
	return newSDLSource()
}

func run(cfg *config.Config, interactive bool) error {
	log := logging.Subsystem("main")

	ctx, cancel := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer cancel()

	source, err := newSource(cfg)
	if err != nil {
		return err
	}
	sink, err := newSink(cfg)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer sink.Close()

	h := hub.NewHub()
	broadcaster := hub.NewBroadcaster(h)
	eng := engine.New(sink, engine.Options{
		ProfilePath:      cfg.Profile,
		AutosaveInterval: cfg.Autosave,
		Watch:            cfg.Watch,
		MoveInterval:     cfg.MoveInterval,
		QueueSize:        cfg.QueueSize,
		Listener:         broadcaster,
	})
	broadcaster.SetSource(eng)
	srv := server.New(h, broadcaster, eng, source, eng.Registry(), frontendFS(), cfg.Listen)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(gctx) })
	g.Go(func() error { h.Run(gctx); return nil })
	g.Go(func() error { broadcaster.Run(gctx); return nil })
	g.Go(func() error {
		// A missing controller is not fatal; the monitor keeps running.
		if err := source.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("input stopped")
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev := <-source.Events():
				eng.Submit(ev)
			}
		}
	})
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	log.Info().Str("url", cfg.URL()).Str("profile", cfg.Profile).Msg("padmapper started")

	if cfg.Tray || (!interactive && runtime.GOOS == "windows") {
		t := tray.New(cfg.URL(), tray.Actions{
			Save: func() error {
				saveCtx, saveCancel := context.WithTimeout(ctx, 5*time.Second)
				defer saveCancel()
				return eng.Save(saveCtx)
			},
			Shutdown: cancel,
		})
		go func() {
			<-gctx.Done()
			t.Quit()
		}()
		go t.Run()
	} else {
		log.Info().Msg("press Ctrl+C to exit")
	}

	return g.Wait()
}
