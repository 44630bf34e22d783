package runtimeinit

import (
	"fmt"
	"log"

	"screen-fixed-crop/src/clipboard"
	"screen-fixed-crop/src/config"
	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

type Options struct {
	LoadOptions  config.LoadOptions
	SetupLogging func(*config.Config)
	// RequireClipboard turns a clipboard init failure into a startup error.
	RequireClipboard bool
}

// Bootstrap loads configuration, sets up logging and checks the platform
// services a capture needs.
func Bootstrap(opts Options) (*config.Config, error) {
	cfg, err := config.LoadWithOptions(opts.LoadOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.SetupLogging != nil {
		opts.SetupLogging(cfg)
	}
	if cfg.EnvPath != "" {
		log.Printf("Loaded configuration from %s", cfg.EnvPath)
	}

	if _, err := ratio.Parse(cfg.DefaultRatio); err != nil {
		return nil, fmt.Errorf("DEFAULT_RATIO: %w", err)
	}
	if _, err := screenshot.ParseFill(cfg.OutsideFill); err != nil {
		return nil, fmt.Errorf("OUTSIDE_FILL: %w", err)
	}

	if b, err := screenshot.GetDisplayBounds(); err != nil {
		log.Printf("WARNING: no display detected: %v", err)
	} else {
		log.Printf("Primary display %dx%d", b.Dx(), b.Dy())
	}

	if err := clipboard.Init(); err != nil {
		if opts.RequireClipboard {
			return nil, fmt.Errorf("failed to initialize clipboard: %w", err)
		}
		log.Printf("WARNING: %v; captures will only be saved to disk", err)
	}

	return cfg, nil
}
