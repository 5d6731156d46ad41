package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/klippa-app/go-pdfium/webassembly"
	"github.com/urfave/cli/v3"

	"github.com/ivanvanderbyl/pdffigures"
	"github.com/ivanvanderbyl/pdffigures/logging"
)

func main() {
	// Optional .env for local defaults; absence is not an error.
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "pdffigures",
		Usage: "Extract figure/table-caption pairs from PDF documents",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Rasterize, crop and pair a PDF document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Input PDF file path",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "detections",
						Aliases:  []string{"d"},
						Usage:    "Directory of per-page detection JSON files (page_1.json, ...)",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "work-dir",
						Aliases: []string{"w"},
						Usage:   "Working directory for all outputs",
						Value:   envOr("PDFFIGURES_WORK_DIR", "work"),
					},
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "Maximum index distance between an item and its caption",
						Value: 30,
					},
					&cli.FloatFlag{
						Name:  "confidence",
						Usage: "Minimum detection confidence",
						Value: 0.2,
					},
					&cli.IntFlag{
						Name:  "dpi",
						Usage: "Page rasterization DPI",
						Value: int64(envIntOr("PDFFIGURES_DPI", 150)),
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
				Action: runPipeline,
			},
			{
				Name:  "pair",
				Usage: "Re-pair an existing cropped-results directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "source",
						Aliases:  []string{"s"},
						Usage:    "Cropped-results directory for one document",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output directory for paired results",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "threshold",
						Usage: "Maximum index distance between an item and its caption",
						Value: 30,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Enable debug logging",
					},
				},
				Action: pairDirectory,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func setupLogging(cmd *cli.Command) {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func runPipeline(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	// Initialise pdfium
	pool, err := webassembly.Init(webassembly.Config{
		MinIdle:  1,
		MaxIdle:  1,
		MaxTotal: 1,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise pdfium: %w", err)
	}
	defer pool.Close()

	instance, err := pool.GetInstance(time.Second * 30)
	if err != nil {
		return fmt.Errorf("failed to get pdfium instance: %w", err)
	}

	config := pdffigures.DefaultConfig()
	config.PairingThreshold = int(cmd.Int("threshold"))
	config.MinConfidence = cmd.Float("confidence")
	config.DPI = int(cmd.Int("dpi"))
	config.EnableMetricsLogging = cmd.Bool("verbose")

	renderer := pdffigures.NewPdfiumRenderer(instance, config.DPI)
	detector := pdffigures.NewDetectionsDirectory(cmd.String("detections"))
	pipeline := pdffigures.NewPipelineWithConfig(renderer, detector, cmd.String("work-dir"), config)

	resultDir, err := pipeline.Run(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("failed to process document: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Paired results written to %s\n", resultDir)
	return nil
}

func pairDirectory(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)

	results, pageErrs, err := pdffigures.PairDirectory(
		cmd.String("source"),
		cmd.String("output"),
		int(cmd.Int("threshold")),
	)
	if err != nil {
		return fmt.Errorf("failed to pair directory: %w", err)
	}

	var pairs, unpaired int
	for _, result := range results {
		pairs += len(result.Paired)
		unpaired += len(result.Unpaired)
	}
	fmt.Fprintf(os.Stderr, "Paired %d components (%d unpaired) across %d pages\n", pairs, unpaired, len(results))

	for page, pageErr := range pageErrs {
		fmt.Fprintf(os.Stderr, "warning: %s failed: %v\n", page, pageErr)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
