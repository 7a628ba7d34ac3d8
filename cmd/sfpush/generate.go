package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/srgorla/trailhead/internal/config"
	"github.com/srgorla/trailhead/internal/generator"
	"github.com/srgorla/trailhead/internal/progress"
)

func runGenerate(args []string) int {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (optional)")
	file := fs.String("file", "", "Output file path (default from config)")
	size := fs.String("size", "", "Target file size, e.g. 500MB or 2GB (default from config)")
	progressEvery := fs.Int64("progress-every", 0, "Print a progress line every N rows (0 uses the default)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: sfpush generate [options]

Write a synthetic tab-delimited test file of the requested size without
touching any org. Useful for preparing an upload ahead of time.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.FilePath = *file
		case "size":
			if err = cfg.SetSize(*size); err != nil {
				err = fmt.Errorf("-size: %w", err)
			}
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitInvalidArgs
	}

	fmt.Fprintf(os.Stderr, "[sfpush] Generating %s of test data at %s\n", cfg.Size, cfg.FilePath)
	rows, err := generator.Generate(cfg.FilePath, cfg.SizeBytes, generator.Options{
		Output:        os.Stderr,
		ProgressEvery: *progressEvery,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if info, err := os.Stat(cfg.FilePath); err == nil {
		fmt.Fprintf(os.Stderr, "[sfpush] Generated %d rows (%s) at %s\n",
			rows, progress.FormatBytes(info.Size()), cfg.FilePath)
	}
	return ExitSuccess
}
