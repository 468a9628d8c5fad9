// Command cardview opens a window with a rotating business card.
//
// Space pauses the spin; the arrow keys tilt the card. With -config, the
// -layout and -assets flags override the file only when given explicitly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	gocard "github.com/VantageDataChat/GoCard"
	"github.com/VantageDataChat/GoCard/internal/host"
)

type fieldFlags map[string]string

func (f fieldFlags) String() string { return strings.Join(gocard.FieldSet(f).Keys(), ",") }

func (f fieldFlags) Set(s string) error {
	k, v, err := gocard.ParseField(s)
	if err != nil {
		return err
	}
	f[k] = v
	return nil
}

func main() {
	fields := fieldFlags{}
	configPath := flag.String("config", "", "YAML card config")
	layout := flag.String("layout", "default", "card layout: default, student or influencer")
	flag.Var(fields, "field", "field value as key=value (repeatable)")
	assets := flag.String("assets", "", "directory holding the student layout images")
	spin := flag.Float64("spin", 0.5, "rotation speed in radians per second")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := &gocard.Config{Layout: *layout, Assets: *assets}
	var o gocard.Overrides
	if *configPath != "" {
		loaded, err := gocard.LoadConfig(*configPath)
		if err != nil {
			logger.Error("failed to load config", "path", *configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
		flag.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "layout":
				o.Layout = layout
			case "assets":
				o.Assets = assets
			}
		})
	}
	o.Fields = fields
	if err := cfg.Apply(o); err != nil {
		logger.Error("invalid flags", "error", err)
		os.Exit(1)
	}

	kind, err := gocard.ParseLayoutKind(cfg.Layout)
	if err != nil {
		logger.Warn("unknown layout, using default", "error", err)
	}

	app := gocard.NewApp(kind, &gocard.AppOptions{
		Card:     cfg.CardOptions(),
		SpinRate: *spin,
		Logger:   logger,
	})
	ctx := context.Background()
	if err := app.Initialize(ctx); err != nil {
		logger.Error("initialize failed", "error", err)
		os.Exit(1)
	}

	// Field submission runs beside the frame loop; the window shows the setup
	// faces until the update batch lands.
	go func() {
		if err := app.Submit(ctx, cfg.FieldSet()); err != nil {
			logger.Error("update failed", "error", err)
		}
	}()

	if err := host.Run(app, host.Options{Logger: logger}); err != nil {
		logger.Error("window closed with error", "error", err)
		os.Exit(1)
	}
}
