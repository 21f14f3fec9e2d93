package app

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/render"
)

// Command selects what Run does.
type Command string

const (
	// CommandGenerate writes the configuration of one mode.
	CommandGenerate Command = "generate"
	// CommandDiff writes a unified diff between the development and the
	// production configuration.
	CommandDiff Command = "diff"
	// CommandProbe checks that the dev server answers.
	CommandProbe Command = "probe"
)

// ParseCommand validates a command name.
func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case CommandGenerate, CommandDiff, CommandProbe:
		return c, nil
	}
	return "", fmt.Errorf("unknown command %q, expected 'generate', 'diff' or 'probe'", s)
}

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Command Command
	WorkDir string
	// ManifestPath is relative to WorkDir unless absolute.
	ManifestPath string
	Mode         manifest.Mode
	Port         int
	// DevServer overrides the address derived from Port.
	DevServer  string
	Format     render.Format
	OutPath    string
	ModulesDir string

	ProbeDevServer bool
	ProbeTimeout   time.Duration

	LogFormat string
	LogLevel  string

	// LookupEnv reads the variables exposed to the bundle; os.LookupEnv when
	// nil.
	LookupEnv func(string) (string, bool)
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Command == "" {
		cfg.Command = CommandGenerate
	}
	if _, err := ParseCommand(string(cfg.Command)); err != nil {
		return nil, err
	}
	if cfg.WorkDir == "" {
		cfg.WorkDir = "."
	}
	if cfg.ManifestPath == "" {
		return nil, errors.New("ManifestPath is a required configuration field and cannot be empty")
	}
	if cfg.Mode == "" {
		cfg.Mode = manifest.Development
	}
	mode, err := manifest.ParseMode(string(cfg.Mode))
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port %d is out of range", cfg.Port)
	}
	if cfg.Format == "" {
		cfg.Format = render.JSON
	}
	if _, err := render.ParseFormat(string(cfg.Format)); err != nil {
		return nil, err
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = os.LookupEnv
	}
	return &cfg, nil
}

// DevServerAddress is the address the dev-server client connects to.
func (c *Config) DevServerAddress() string {
	if c.DevServer != "" {
		return c.DevServer
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}
