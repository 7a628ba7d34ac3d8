package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/srgorla/trailhead/internal/progress"
	"github.com/srgorla/trailhead/internal/salesforce"
)

// Upload modes. Stream prints throttled byte-level progress; heartbeat
// prints a periodic elapsed-time spinner instead.
const (
	ModeStream    = "stream"
	ModeHeartbeat = "heartbeat"
)

// Defaults applied when neither a config file nor environment overrides
// are present.
const (
	DefaultFilePath    = "test_file.tsv"
	DefaultFileSize    = "500MB"
	DefaultTimeout     = 60 * time.Minute
	DefaultMode        = ModeStream
	DefaultAuthCommand = "sf"
)

// envPrefix namespaces environment overrides, e.g. SFPUSH_FILE_SIZE=1GB.
const envPrefix = "SFPUSH"

// Config is the resolved tool configuration. SizeBytes is derived from the
// human-readable Size string at load time.
type Config struct {
	FilePath    string
	Size        string
	SizeBytes   int64
	Timeout     time.Duration
	Mode        string
	APIVersion  string
	AuthCommand string
}

// Load resolves configuration from defaults, an optional config file, and
// SFPUSH_-prefixed environment variables, in increasing precedence. An
// empty path means no config file is required; a non-empty path must be
// readable.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("file.path", DefaultFilePath)
	v.SetDefault("file.size", DefaultFileSize)
	v.SetDefault("upload.timeout", DefaultTimeout)
	v.SetDefault("upload.mode", DefaultMode)
	v.SetDefault("upload.apiversion", salesforce.DefaultAPIVersion)
	v.SetDefault("auth.command", DefaultAuthCommand)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		FilePath:    v.GetString("file.path"),
		Size:        v.GetString("file.size"),
		Timeout:     v.GetDuration("upload.timeout"),
		Mode:        v.GetString("upload.mode"),
		APIVersion:  v.GetString("upload.apiversion"),
		AuthCommand: v.GetString("auth.command"),
	}

	sizeBytes, err := progress.ParseBytes(cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("file.size: %w", err)
	}
	cfg.SizeBytes = sizeBytes

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints after flag overrides have been
// applied.
func (c *Config) Validate() error {
	if c.FilePath == "" {
		return errors.New("file path must not be empty")
	}
	if c.SizeBytes <= 0 {
		return fmt.Errorf("file size must be positive, got %d bytes", c.SizeBytes)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Mode != ModeStream && c.Mode != ModeHeartbeat {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeStream, ModeHeartbeat, c.Mode)
	}
	if c.AuthCommand == "" {
		return errors.New("auth command must not be empty")
	}
	return nil
}

// SetSize updates the human-readable size and its byte value together.
func (c *Config) SetSize(size string) error {
	n, err := progress.ParseBytes(size)
	if err != nil {
		return err
	}
	c.Size = size
	c.SizeBytes = n
	return nil
}
