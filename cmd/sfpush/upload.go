package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srgorla/trailhead/internal/config"
	"github.com/srgorla/trailhead/internal/generator"
	"github.com/srgorla/trailhead/internal/progress"
	"github.com/srgorla/trailhead/internal/salesforce"
)

func runUpload(args []string) int {
	fs := flag.NewFlagSet("upload", flag.ExitOnError)

	configPath := fs.String("config", "", "Config file path (optional)")
	file := fs.String("file", "", "Test file path (default from config)")
	size := fs.String("size", "", "Target file size, e.g. 500MB or 2GB (default from config)")
	timeout := fs.Duration("timeout", 0, "Upload timeout (default from config)")
	mode := fs.String("mode", "", "Progress mode: stream or heartbeat (default from config)")
	reuse := fs.Bool("reuse", false, "Reuse an existing test file instead of regenerating it")
	authCommand := fs.String("auth-command", "", "Salesforce CLI binary used for auth (default from config)")
	apiVersion := fs.String("api-version", "", "REST API version (default from config)")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: sfpush upload [options]

Authenticate against the default org via the sf CLI, generate a test file
of the configured size (or reuse one with -reuse), upload it as a single
multipart ContentVersion POST, and verify the stored size.

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

	// Flags beat config file and environment, but only when actually set.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "file":
			cfg.FilePath = *file
		case "size":
			if err = cfg.SetSize(*size); err != nil {
				err = fmt.Errorf("-size: %w", err)
			}
		case "timeout":
			cfg.Timeout = *timeout
		case "mode":
			cfg.Mode = *mode
		case "auth-command":
			cfg.AuthCommand = *authCommand
		case "api-version":
			cfg.APIVersion = *apiVersion
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[sfpush] Received interrupt, shutting down...")
		cancel()
	}()

	provider := salesforce.CLIProvider{Command: cfg.AuthCommand}
	return uploadWithProvider(ctx, cfg, *reuse, provider)
}

// uploadWithProvider runs the full flow against an injectable credential
// source so tests can substitute a fake CLI.
func uploadWithProvider(ctx context.Context, cfg *config.Config, reuse bool, provider salesforce.CredentialProvider) int {
	fmt.Fprintf(os.Stderr, "[sfpush] Salesforce ContentVersion upload demo\n")
	fmt.Fprintf(os.Stderr, "[sfpush] File: %s | Target size: %s | Timeout: %s | Mode: %s\n",
		cfg.FilePath, cfg.Size, cfg.Timeout, cfg.Mode)

	creds, err := provider.Fetch(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "[sfpush] Run 'sf org login web' and set a default org, then retry")
		return ExitAuthFailed
	}
	if creds.Username != "" {
		fmt.Fprintf(os.Stderr, "[sfpush] Authenticated as: %s\n", creds.Username)
	}
	fmt.Fprintf(os.Stderr, "[sfpush] Instance: %s\n", creds.InstanceURL)

	if exit := ensureFile(cfg, reuse); exit != ExitSuccess {
		return exit
	}

	task, err := salesforce.NewTask(cfg.FilePath, cfg.Timeout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	fmt.Fprintf(os.Stderr, "[sfpush] Uploading %s (%s) as a single multipart request\n",
		task.FileName, progress.FormatBytes(task.Size))

	client := salesforce.NewClient(creds, salesforce.Options{APIVersion: cfg.APIVersion})

	opts := salesforce.UploadOptions{}
	switch cfg.Mode {
	case config.ModeHeartbeat:
		opts.Heartbeat = &progress.HeartbeatOptions{}
	default:
		reporter := progress.NewReporter(progress.ReporterOptions{Output: os.Stderr})
		opts.OnProgress = reporter.OnSample
	}

	result, err := client.Upload(ctx, task, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}

	if !result.Success {
		fmt.Fprintf(os.Stderr, "[sfpush] Upload failed (%s) after %s, %s sent\n",
			result.Kind, result.Elapsed.Round(time.Millisecond),
			progress.FormatBytes(result.BytesSent))
		if result.HTTPStatus != 0 {
			fmt.Fprintf(os.Stderr, "[sfpush] HTTP status: %d\n", result.HTTPStatus)
		}
		if result.ErrorDetail != "" {
			fmt.Fprintf(os.Stderr, "[sfpush] Detail: %s\n", result.ErrorDetail)
		}
		switch result.Kind {
		case salesforce.KindTimedOut:
			fmt.Fprintf(os.Stderr, "[sfpush] Consider raising -timeout (current: %s)\n", cfg.Timeout)
			return ExitTimedOut
		case salesforce.KindConnectionFailed:
			return ExitConnectionFailed
		default:
			return ExitUploadRejected
		}
	}

	seconds := result.Elapsed.Seconds()
	avg := "n/a"
	if seconds > 0 {
		avg = progress.FormatBytes(int64(float64(result.BytesSent)/seconds)) + "/s"
	}
	fmt.Fprintf(os.Stderr, "[sfpush] Upload complete in %s (avg %s)\n",
		result.Elapsed.Round(time.Millisecond), avg)
	fmt.Fprintf(os.Stderr, "[sfpush] ContentVersion ID: %s\n", result.RemoteID)

	verification, err := client.Verify(ctx, result.RemoteID, task.Size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[sfpush] Verification skipped: %v\n", err)
	} else if verification.Matches {
		fmt.Fprintf(os.Stderr, "[sfpush] Verified: remote size %s matches local file\n",
			progress.FormatBytes(verification.RemoteSize))
	} else {
		fmt.Fprintf(os.Stderr, "[sfpush] Warning: remote size %s does not match local %s\n",
			progress.FormatBytes(verification.RemoteSize), progress.FormatBytes(task.Size))
	}

	fmt.Fprintf(os.Stderr, "[sfpush] View: %s/lightning/r/ContentVersion/%s/view\n",
		creds.InstanceURL, result.RemoteID)
	return ExitSuccess
}

// ensureFile makes sure the test file exists at the configured path. With
// reuse set, an existing non-empty file is kept as-is; otherwise a fresh
// file of the configured size is generated.
func ensureFile(cfg *config.Config, reuse bool) int {
	if reuse {
		if info, err := os.Stat(cfg.FilePath); err == nil && info.Size() > 0 {
			fmt.Fprintf(os.Stderr, "[sfpush] Reusing existing file %s (%s)\n",
				cfg.FilePath, progress.FormatBytes(info.Size()))
			return ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "[sfpush] No reusable file at %s, generating\n", cfg.FilePath)
	}

	fmt.Fprintf(os.Stderr, "[sfpush] Generating %s of test data at %s\n", cfg.Size, cfg.FilePath)
	rows, err := generator.Generate(cfg.FilePath, cfg.SizeBytes, generator.Options{Output: os.Stderr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return ExitGeneralError
	}
	if info, err := os.Stat(cfg.FilePath); err == nil {
		fmt.Fprintf(os.Stderr, "[sfpush] Generated %d rows (%s)\n", rows, progress.FormatBytes(info.Size()))
	}
	return ExitSuccess
}
