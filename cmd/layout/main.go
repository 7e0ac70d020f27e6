// Command layout loads the configured models without a window and prints
// where the showcase would place each of them.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/midgard-showcase/internal/config"
	"github.com/Faultbox/midgard-showcase/internal/logger"
	"github.com/Faultbox/midgard-showcase/internal/stage"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logger.Error("layout failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	s, err := stage.FromConfig(cfg.Models, nil, nil)
	if err != nil {
		return err
	}
	defer s.Unmount()

	if err := s.Mount(ctx); err != nil {
		return err
	}
	loadErr := s.Await(ctx)
	if s.State() != stage.StateReady {
		if loadErr == nil {
			return fmt.Errorf("no models found in %s", cfg.Models.Dir)
		}
		return loadErr
	}
	if loadErr != nil {
		logger.Warn("some models failed to load", zap.Error(loadErr))
	}

	placements := s.Placements()
	for i, m := range s.Models() {
		clip := "-"
		if mixer, ok := s.Mixer(m.ID); ok && mixer.Active() != nil {
			clip = mixer.Active().Clip().Name
		}
		p := placements[i]
		fmt.Fprintf(out, "%d\t%s\t%s\tsize=%.3f,%.3f,%.3f\tposition=%.3f,%.3f,%.3f\n",
			i, m.Path, clip,
			p.Size[0], p.Size[1], p.Size[2],
			p.Position[0], p.Position[1], p.Position[2],
		)
	}
	return nil
}
