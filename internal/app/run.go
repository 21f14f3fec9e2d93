package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vk/bundlegen/internal/assemble"
	"github.com/vk/bundlegen/internal/ctxlog"
	"github.com/vk/bundlegen/internal/devprobe"
	"github.com/vk/bundlegen/internal/diff"
	"github.com/vk/bundlegen/internal/engine"
	"github.com/vk/bundlegen/internal/manifest"
	"github.com/vk/bundlegen/internal/render"
)

// Run executes the configured command.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	var err error
	switch a.config.Command {
	case CommandGenerate:
		err = a.generate(ctx)
	case CommandDiff:
		err = a.diff(ctx)
	case CommandProbe:
		err = devprobe.Probe(ctx, a.config.DevServerAddress(), a.config.ProbeTimeout)
		if err == nil {
			a.logger.Info("Dev server is answering.", "address", a.config.DevServerAddress())
		}
	default:
		err = fmt.Errorf("unknown command %q", a.config.Command)
	}

	a.logger.Debug("App.Run method finished.", "error", err)
	return err
}

func (a *App) generate(ctx context.Context) error {
	if a.config.Mode.IsDev() && a.config.ProbeDevServer {
		if err := devprobe.Probe(ctx, a.config.DevServerAddress(), a.config.ProbeTimeout); err != nil {
			a.logger.Warn("Dev server is not answering; generating anyway.", "address", a.config.DevServerAddress(), "error", err)
		}
	}

	m, err := a.loadManifest(ctx)
	if err != nil {
		return err
	}
	res, err := a.synthesize(ctx, m, a.config.Mode)
	if err != nil {
		return err
	}
	out, err := render.Bytes(res.Config, a.config.Format)
	if err != nil {
		return err
	}
	return a.write(out)
}

func (a *App) diff(ctx context.Context) error {
	m, err := a.loadManifest(ctx)
	if err != nil {
		return err
	}

	rendered := make(map[manifest.Mode][]byte, 2)
	for _, mode := range []manifest.Mode{manifest.Development, manifest.Production} {
		res, err := a.synthesize(ctx, m, mode)
		if err != nil {
			return fmt.Errorf("%s: %w", mode, err)
		}
		if rendered[mode], err = render.Bytes(res.Config, a.config.Format); err != nil {
			return err
		}
	}

	patch, err := diff.Unified(string(manifest.Development), string(manifest.Production),
		rendered[manifest.Development], rendered[manifest.Production], diff.Options{})
	if err != nil {
		return fmt.Errorf("failed to diff configurations: %w", err)
	}
	return a.write([]byte(patch))
}

// loadManifest resolves the user manifest over the built-in defaults.
func (a *App) loadManifest(ctx context.Context) (manifest.Manifest, error) {
	defaults, err := a.loader.DefaultManifest(ctx)
	if err != nil {
		return manifest.Manifest{}, fmt.Errorf("failed to load built-in defaults: %w", err)
	}

	path := a.config.ManifestPath
	if !filepath.IsAbs(path) {
		path = filepath.Join(a.config.WorkDir, path)
	}
	override, err := a.loader.LoadFile(ctx, path)
	if err != nil {
		return manifest.Manifest{}, err
	}
	a.logger.Debug("Manifest overrides loaded.", "path", path, "keys", override.Keys())
	return manifest.Resolve(defaults, override)
}

func (a *App) synthesize(ctx context.Context, m manifest.Manifest, mode manifest.Mode) (*engine.Result, error) {
	workDir, err := filepath.Abs(a.config.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work dir: %w", err)
	}
	return engine.Synthesize(ctx, engine.Request{
		WorkDir:          workDir,
		Mode:             mode,
		Manifest:         m,
		DevServerAddress: a.config.DevServerAddress(),
		ModulesDir:       a.config.ModulesDir,
		Define:           assemble.DefineEnv(DefineNames, a.config.LookupEnv),
		Builder:          a.builder,
		Registry:         a.registry,
	})
}

func (a *App) write(out []byte) error {
	if a.config.OutPath == "" {
		_, err := a.outW.Write(out)
		return err
	}
	if dir := filepath.Dir(a.config.OutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(a.config.OutPath, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", a.config.OutPath, err)
	}
	a.logger.Info("Configuration written.", "path", a.config.OutPath, "bytes", len(out))
	return nil
}
