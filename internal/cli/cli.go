package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/vk/bundlegen/internal/app"
	"github.com/vk/bundlegen/internal/devprobe"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/render"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Parse processes command-line arguments. It returns a populated Config, a
// boolean indicating if the program should exit cleanly, or an ExitError.
//
// The first argument may name a command (generate, diff, probe); generate is
// the default. A .env file in the work directory is loaded before the
// environment defaults for -mode and -dev-server are read.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	command := app.CommandGenerate
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		c, err := app.ParseCommand(args[0])
		if err != nil {
			return nil, false, usageError("%s", err)
		}
		command, args = c, args[1:]
	}

	flagSet := flag.NewFlagSet("bundlegen", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bundlegen - synthesizes bundler configuration for multi-page front-end projects.

Usage:
  bundlegen [generate|diff|probe] [options]

Commands:
  generate  Write the configuration for one mode (default).
  diff      Write a unified diff of the development and production configurations.
  probe     Check that the dev server answers.

Options:
`)
		flagSet.PrintDefaults()
	}

	workDirFlag := flagSet.String("workdir", ".", "Project root directory.")
	manifestFlag := flagSet.String("manifest", "bundle.hcl", "Project manifest, relative to the work dir. '.hcl' or '.json'.")
	modeFlag := flagSet.String("mode", string(manifest.Development), "Build mode: 'development' or 'production'. Defaults to $"+app.EnvMode+".")
	portFlag := flagSet.Int("port", 8080, "Dev server port.")
	devServerFlag := flagSet.String("dev-server", "", "Dev server address, overrides -port. Defaults to $"+app.EnvDevServer+".")
	formatFlag := flagSet.String("format", string(render.JSON), "Output format: 'json' or 'yaml'.")
	outFlag := flagSet.String("out", "", "Write output to this file instead of stdout.")
	modulesDirFlag := flagSet.String("modules-dir", "", "Toolchain node_modules directory the dev bootstrap and loaders are resolved from.")
	probeFlag := flagSet.Bool("probe-dev-server", false, "In development mode, warn when the dev server is not answering.")
	probeTimeoutFlag := flagSet.Duration("probe-timeout", devprobe.DefaultTimeout, "How long to wait for the dev server.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err)
	}
	if flagSet.NArg() > 0 {
		return nil, false, usageError("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	slog.Debug("Arguments parsed successfully.")

	if err := app.LoadEnv(*workDirFlag); err != nil {
		return nil, false, usageError("%s", err)
	}
	set := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if v := os.Getenv(app.EnvMode); v != "" && !set["mode"] {
		*modeFlag = v
	}
	if v := os.Getenv(app.EnvDevServer); v != "" && !set["dev-server"] {
		*devServerFlag = v
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	mode, err := manifest.ParseMode(*modeFlag)
	if err != nil {
		return nil, false, usageError("invalid mode: %s", err)
	}
	format, err := render.ParseFormat(*formatFlag)
	if err != nil {
		return nil, false, usageError("invalid format: %s", err)
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Command:        command,
		WorkDir:        *workDirFlag,
		ManifestPath:   *manifestFlag,
		Mode:           mode,
		Port:           *portFlag,
		DevServer:      *devServerFlag,
		Format:         format,
		OutPath:        *outFlag,
		ModulesDir:     *modulesDirFlag,
		ProbeDevServer: *probeFlag,
		ProbeTimeout:   *probeTimeoutFlag,
		LogFormat:      logFormat,
		LogLevel:       logLevel,
	})
	if err != nil {
		return nil, false, usageError("%s", err)
	}

	slog.Debug("CLI parser finished successfully.", "command", config.Command, "mode", config.Mode)
	return config, false, nil
}
