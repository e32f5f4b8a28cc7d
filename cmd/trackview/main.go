// Package main is the entry point for the track viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/config"
	"github.com/Faultbox/trackview/internal/game"
	"github.com/Faultbox/trackview/internal/logger"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup runs before main exits.
func run() int {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			return 1
		}
		fmt.Printf("Config written to %s\n", path)
		return 0
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		return 1
	}
	defer logger.Sync()

	logger.Info("=== TrackView ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	g, err := game.New(cfg, game.Options{
		CaptureDir: config.CaptureDir(),
		FrameLimit: config.FrameLimit(),
		Tileset:    config.TilesetPath(),
	})
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		return 1
	}
	defer g.Close()

	if err := g.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return 1
	}

	logger.Info("viewer closed normally")
	return 0
}
