// Command cardgen renders business card faces to image files.
//
//	cardgen -layout student -field name=Kim -field class=3 -out cards
//	cardgen -jobs 4 cards/*.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	gocard "github.com/VantageDataChat/GoCard"
)

// fieldFlags collects repeated -field key=value flags.
type fieldFlags map[string]string

func (f fieldFlags) String() string {
	var parts []string
	for _, k := range gocard.FieldSet(f).Keys() {
		parts = append(parts, k+"="+f[k])
	}
	return strings.Join(parts, ",")
}

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
	layout := flag.String("layout", "default", "card layout: default, student or influencer")
	flag.Var(fields, "field", "field value as key=value (repeatable)")
	assets := flag.String("assets", "", "directory holding Lion.png and Magnolia.png")
	fontDir := flag.String("fonts", "", "extra font directory")
	outDir := flag.String("out", ".", "output directory")
	format := flag.String("format", "png", "output format: png or jpeg")
	width := flag.Int("width", gocard.DefaultSurfaceWidth, "face width in pixels")
	height := flag.Int("height", gocard.DefaultSurfaceHeight, "face height in pixels")
	jobs := flag.Int("jobs", 2, "cards rendered in parallel when given config files")
	verbose := flag.Bool("v", false, "verbose logging")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("cardgen", gocard.Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var configs []*gocard.Config
	if flag.NArg() == 0 {
		cfg := &gocard.Config{
			Layout: *layout,
			Fields: fields,
			Assets: *assets,
			Width:  *width,
			Height: *height,
			Output: gocard.OutputConfig{Dir: *outDir, Format: *format, Quality: 90},
		}
		if *fontDir != "" {
			cfg.FontDirs = []string{*fontDir}
		}
		configs = append(configs, cfg)
	} else {
		for _, path := range flag.Args() {
			cfg, err := gocard.LoadConfig(path)
			if err != nil {
				slog.Error("failed to load config", "path", path, "error", err)
				os.Exit(1)
			}
			if cfg.Output.Prefix == "" && flag.NArg() > 1 {
				base := filepath.Base(path)
				cfg.Output.Prefix = strings.TrimSuffix(base, filepath.Ext(base)) + "_"
			}
			configs = append(configs, cfg)
		}
	}

	if err := run(ctx, configs, *jobs); err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configs []*gocard.Config, jobs int) error {
	for _, cfg := range configs {
		if _, err := gocard.ParseLayoutKind(cfg.Layout); err != nil {
			slog.Warn("unknown layout, using default", "error", err)
			cfg.Layout = gocard.LayoutDefault.String()
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// One font cache for the whole batch: scanning system fonts is the slow part.
	fonts := gocard.NewFontCache()

	var bar *progressbar.ProgressBar
	if len(configs) > 1 && term.IsTerminal(int(os.Stderr.Fd())) {
		bar = progressbar.Default(int64(len(configs)), "rendering cards")
		defer bar.Close()
	}

	if jobs < 1 {
		jobs = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for _, cfg := range configs {
		g.Go(func() error {
			if err := render(ctx, cfg, fonts); err != nil {
				return err
			}
			if bar != nil {
				bar.Add(1)
			}
			return nil
		})
	}
	return g.Wait()
}

func render(ctx context.Context, cfg *gocard.Config, fonts *gocard.FontCache) error {
	opts := cfg.CardOptions()
	opts.FontCache = fonts
	for _, dir := range opts.FontDirs {
		if err := loadFontDir(fonts, dir); err != nil {
			slog.Warn("font directory skipped", "dir", dir, "error", err)
		}
	}

	card := gocard.NewCard(cfg.Kind(), opts)
	if err := card.ApplyLayout(ctx); err != nil {
		return err
	}
	if err := card.Update(ctx, cfg.FieldSet()); err != nil {
		return err
	}
	front, back, err := card.SaveFaces(cfg.Resolve(cfg.Output.Dir), cfg.Output.Prefix, cfg.SaveOptions())
	if err != nil {
		return err
	}
	slog.Info("card rendered", "layout", cfg.Layout, "front", front, "back", back)
	return nil
}

// loadFontDir registers every font file directly inside dir.
func loadFontDir(fonts *gocard.FontCache, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".ttf" && ext != ".otf") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if err := fonts.LoadFont(name, filepath.Join(dir, e.Name())); err != nil {
			slog.Warn("font skipped", "path", e.Name(), "error", err)
		}
	}
	return nil
}
