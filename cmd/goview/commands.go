package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	view "github.com/goliatone/go-view"
	"github.com/goliatone/go-view/pkg/adapter"
	"github.com/goliatone/go-view/pkg/config"
	"github.com/goliatone/go-view/pkg/engine"
	"github.com/goliatone/go-view/pkg/loader"
	"github.com/goliatone/go-view/pkg/render"
)

func renderCmd() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a template to stdout or a file",
		ArgsUsage: "<template>",
		Description: `Render a template found under --root. The engine is picked from the
template extension using the adapter priority lists; --config and
--deregister adjust them.

# Examples

Render a page inside a layout:
  goview render --root ./views --layout layouts/main.html pages/index.html

Force html/template for .html files:
  goview render --root ./views --deregister html:pongo2 pages/index.html

Re-render whenever a file under --root changes:
  goview render --root ./views --watch --output out.html pages/index.html`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Directory holding templates, layouts and partials",
				Value:   ".",
			},
			&cli.StringFlag{
				Name:    "locals",
				Aliases: []string{"l"},
				Usage:   "YAML file whose top-level mapping becomes the template locals",
			},
			&cli.StringFlag{
				Name:  "layout",
				Usage: "Layout template that yields the rendered template",
			},
			&cli.StringSliceFlag{
				Name:  "deregister",
				Usage: "Remove an adapter, as ext:adapter (repeatable)",
			},
			&cli.BoolFlag{
				Name:  "watch",
				Usage: "Keep running and re-render when templates change",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file (default: stdout)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			identity := cmd.Args().First()
			if identity == "" {
				return errors.New("render: template argument is required")
			}

			logger, err := newLogger(cmd.String("log-level"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			renderer, err := newRenderer(cmd.String("config"), cmd.StringSlice("deregister"), logger)
			if err != nil {
				return err
			}

			locals, err := readLocals(cmd.String("locals"))
			if err != nil {
				return err
			}

			root := cmd.String("root")
			v := view.View{
				Renderer: renderer,
				Loader:   loader.Dir(root).Loader(),
				Template: identity,
				Layout:   cmd.String("layout"),
			}
			output := cmd.String("output")

			if err := writeView(ctx, v, locals, output, cmd.Root().Writer); err != nil {
				return err
			}
			if !cmd.Bool("watch") {
				return nil
			}
			w, err := newWatcher(root, output, renderer, logger, func() {
				if err := writeView(ctx, v, locals, output, cmd.Root().Writer); err != nil {
					logger.Error("render failed", zap.String("template", identity), zap.Error(err))
				}
			})
			if err != nil {
				return err
			}
			return watch(ctx, w)
		},
	}
}

func enginesCmd() *cli.Command {
	return &cli.Command{
		Name:  "engines",
		Usage: "List extensions, their adapters in priority order and availability",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd.String("log-level"))
			if err != nil {
				return err
			}
			renderer, err := newRenderer(cmd.String("config"), nil, logger)
			if err != nil {
				return err
			}
			return listEngines(cmd.Root().Writer, renderer.Registry())
		},
	}
}

func listEngines(w io.Writer, registry *adapter.Registry) error {
	for _, ext := range registry.Extensions() {
		if _, err := fmt.Fprintf(w, ".%s\n", ext); err != nil {
			return err
		}
		for i, a := range registry.Adapters(ext) {
			status := "available"
			if !a.Available() {
				status = "missing"
				if r, ok := a.(adapter.Remediable); ok && r.ImportPath() != "" {
					status += fmt.Sprintf(" (import _ %q)", r.ImportPath())
				}
			}
			if _, err := fmt.Fprintf(w, "  %d. %-12s %s\n", i+1, a.Name(), status); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "linked libraries: %s\n", strings.Join(engine.Libraries(), ", "))
	return err
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func newRenderer(configPath string, deregister []string, logger *zap.Logger) (*render.Renderer, error) {
	registry := view.DefaultRegistry(adapter.WithLogger(logger))

	var options []render.Option
	if configPath != "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if err := cfg.Apply(registry, view.Catalog()); err != nil {
			return nil, err
		}
		options = cfg.Options()
	}

	for _, spec := range deregister {
		ext, name, ok := strings.Cut(spec, ":")
		if !ok || strings.TrimSpace(ext) == "" || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --deregister %q, want ext:adapter", spec)
		}
		registry.Deregister(ext, strings.TrimSpace(name))
	}

	options = append(options, render.WithRegistry(registry), render.WithLogger(logger))
	return render.New(options...), nil
}

func readLocals(file string) (map[string]any, error) {
	if file == "" {
		return nil, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read locals: %w", err)
	}
	locals := map[string]any{}
	if err := yaml.Unmarshal(data, &locals); err != nil {
		return nil, fmt.Errorf("decode locals %q: %w", file, err)
	}
	return locals, nil
}

func writeView(ctx context.Context, v view.View, locals map[string]any, output string, stdout io.Writer) error {
	out, err := v.Call(ctx, locals)
	if err != nil {
		return err
	}
	if output == "" {
		_, err = io.WriteString(stdout, out)
		return err
	}
	return os.WriteFile(output, []byte(out), 0o644)
}

// newWatcher re-renders on every template change under root. The output
// file is ignored so writing it does not trigger another render.
func newWatcher(root, output string, renderer *render.Renderer, logger *zap.Logger, rerender func()) (*loader.Watcher, error) {
	w, err := loader.NewWatcher(root, renderer,
		loader.WithWatcherLogger(logger),
		loader.IgnorePaths(output),
		loader.OnChange(func(identity string) {
			logger.Info("template changed, rendering", zap.String("identity", identity))
			rerender()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("watch %q: %w", filepath.Clean(root), err)
	}
	return w, nil
}

func watch(ctx context.Context, w *loader.Watcher) error {
	defer w.Close()

	err := w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
