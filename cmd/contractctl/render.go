package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"contractview/internal/contract"
	"contractview/internal/export"
	"contractview/internal/library"
	"contractview/internal/logging"
	"contractview/internal/render"
)

const formatJSON = "json"

type renderOptions struct {
	Format           string
	Values           render.Table
	Continuous       bool
	DefinitionMarker string
	Logger           *zap.Logger
}

// output is one rendered input file.
type output struct {
	Source   string
	Filename string
	Data     []byte
}

func validFormat(format string) bool {
	if format == formatJSON {
		return true
	}
	_, err := export.ParseFormat(format)
	return err == nil && format != ""
}

// loadValues reads a mention value file. YAML is a superset of JSON, so one
// decoder handles both. Scalars of any type become their string form; null
// becomes the empty string.
func loadValues(path string) (render.Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	var decoded map[string]any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("parse values %s: %w", path, err)
	}
	values := make(render.Table, len(decoded))
	for id, value := range decoded {
		switch v := value.(type) {
		case nil:
			values[id] = ""
		case string:
			values[id] = v
		case map[string]any, []any:
			return nil, fmt.Errorf("parse values %s: mention %q must be a scalar", path, id)
		default:
			values[id] = fmt.Sprint(v)
		}
	}
	return values, nil
}

// renderFiles renders every path concurrently and returns the outputs in input
// order. Each file gets its own render session.
func renderFiles(ctx context.Context, paths []string, opts renderOptions) ([]output, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outputs := make([]output, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			out, err := renderFile(ctx, path, opts, logger)
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outputs, nil
}

func renderFile(ctx context.Context, path string, opts renderOptions, logger *zap.Logger) (output, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return output{}, fmt.Errorf("read %s: %w", path, err)
	}
	name, ok := library.NameFromPath(path)
	if !ok {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	data, err := contract.Parse(raw)
	if err != nil {
		return output{}, &library.LoadError{Name: name, Err: err}
	}

	renderer := render.New(
		render.WithDiagnostics(logging.NewRenderDiagnostics(logger, path)),
		render.WithContinuousNumbering(opts.Continuous),
		render.WithDefinitionMarker(opts.DefinitionMarker),
	)
	tree := renderer.Render(data, opts.Values)

	if opts.Format == formatJSON {
		encoded, err := json.MarshalIndent(tree, "", "  ")
		if err != nil {
			return output{}, fmt.Errorf("encode %s: %w", path, err)
		}
		return output{Source: path, Filename: name + ".json", Data: append(encoded, '\n')}, nil
	}

	title := name
	if len(data) > 0 && strings.TrimSpace(data[0].Title) != "" {
		title = data[0].Title
	}
	result, err := export.Build(ctx, export.Rendered{
		Name:       name,
		Title:      title,
		RenderedAt: time.Now(),
		Tree:       tree,
	}, export.Format(opts.Format))
	if err != nil {
		return output{}, fmt.Errorf("export %s: %w", path, err)
	}
	return output{Source: path, Filename: name + filepath.Ext(result.Filename), Data: result.Data}, nil
}

// writeOutputs prints outputs to w, or writes them into outDir when it is set.
// Outputs are named after their input file; two inputs that would land on the
// same file are rejected before anything is written.
func writeOutputs(w io.Writer, outDir string, outputs []output) error {
	if outDir != "" {
		claimed := make(map[string]string, len(outputs))
		for _, out := range outputs {
			if prev, ok := claimed[out.Filename]; ok {
				return fmt.Errorf("%s and %s both write %s", prev, out.Source, out.Filename)
			}
			claimed[out.Filename] = out.Source
		}
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		for _, out := range outputs {
			target := filepath.Join(outDir, out.Filename)
			if err := os.WriteFile(target, out.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(w, "%s -> %s\n", out.Source, target)
		}
		return nil
	}
	for i, out := range outputs {
		if len(outputs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", out.Source)
		}
		if _, err := w.Write(out.Data); err != nil {
			return err
		}
	}
	return nil
}
