package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sportsinsightlab/fanwheel"
)

func main() {
	var (
		presetsPath = flag.String("presets", "presets.yaml", "path to the presets YAML file")
		presetName  = flag.String("preset", "", "name of the preset to render (required)")
		segmentsCSV = flag.String("segments", "", "read segments from a CSV file instead of the warehouse")
		output      = flag.String("output", "", "override the preset output PNG path")
		summary     = flag.String("summary", "", "override the preset summary CSV path")
	)
	flag.Parse()

	setupLogger()

	cfg := fanwheel.MustLoad()

	if *presetName == "" {
		log.Fatal().Msg("-preset is required")
	}

	presets, err := fanwheel.LoadPresets(*presetsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load presets")
	}
	preset, ok := presets[*presetName]
	if !ok {
		log.Fatal().Str("preset", *presetName).Msg("Preset not found")
	}

	ctx := context.Background()

	segments, err := loadSegments(ctx, cfg, preset, *segmentsCSV)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load segments")
	}
	if len(segments) == 0 {
		log.Fatal().Str("preset", *presetName).Msg("No segments matched the preset criteria")
	}
	log.Info().Int("segments", len(segments)).Msg("Segments loaded")

	fonts := fanwheel.NewFontCache(fontDirs(cfg)...)
	resolver := fanwheel.NewResolver(cfg.ResolverOptions(fonts))
	engine := fanwheel.NewEngine(resolver, fonts)

	opts := fanwheel.DefaultRenderOptions()
	opts.Title = preset.Title
	opts.Palette = preset.Palette()
	if preset.CenterMark != "" {
		mark, err := fanwheel.LoadCenterMark(preset.CenterMark)
		if err != nil {
			log.Warn().Err(err).Str("path", preset.CenterMark).Msg("Center mark unusable, skipping")
		} else {
			opts.CenterMark = mark
		}
	}

	imagePath := preset.Output
	if *output != "" {
		imagePath = *output
	}
	if imagePath == "" {
		imagePath = *presetName + ".png"
	}
	summaryPath := preset.Summary
	if *summary != "" {
		summaryPath = *summary
	}

	if err := engine.RenderToFile(ctx, segments, opts, imagePath, summaryPath); err != nil {
		log.Fatal().Err(err).Msg("Render failed")
	}

	fmt.Println(imagePath)
}

// loadSegments reads from the CSV file when one is given, otherwise queries
// the warehouse using the preset's selection criteria.
func loadSegments(ctx context.Context, cfg *fanwheel.Config, preset fanwheel.Preset, csvPath string) ([]fanwheel.SegmentRecord, error) {
	if csvPath != "" {
		return fanwheel.LoadSegmentsCSV(csvPath)
	}

	if cfg.WarehouseDSN == "" {
		return nil, fmt.Errorf("no -segments file given and WAREHOUSE_DSN is not set")
	}

	pool, err := fanwheel.NewPool(ctx, cfg.WarehouseDSN)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	log.Info().Msg("Warehouse connection established")

	source := &fanwheel.WarehouseSource{DB: pool}
	return source.Segments(ctx, preset)
}

func fontDirs(cfg *fanwheel.Config) []string {
	if cfg.FontDir != "" {
		return []string{cfg.FontDir}
	}
	return nil
}

// setupLogger configures the zerolog logger
func setupLogger() {
	if os.Getenv("APP_ENV") == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsedLevel, err := zerolog.ParseLevel(lvl)
		if err == nil {
			level = parsedLevel
		}
	}
	zerolog.SetGlobalLevel(level)
}
