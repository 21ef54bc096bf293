package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contractview/internal/library"
	"contractview/internal/logging"
	"contractview/internal/render"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "contractctl",
		Short: "Render contract documents from the command line",
		Long: `contractctl renders contract bundles into numbered, lettered text, HTML
or JSON presentation trees, the same way the contractview API does.

Mention values can be supplied from a YAML or JSON file; every mention
without a value shows its embedded default.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("log-level", "warn", "log level for diagnostics (debug, info, warn, error)")

	rootCmd.AddCommand(renderCmd())
	rootCmd.AddCommand(watchCmd())
	rootCmd.AddCommand(lettersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	return logging.New(level, true)
}

func renderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render FILE...",
		Short: "Render one or more contract bundles",
		Long: `Render contract bundles. Files are rendered concurrently, each with its own
clause counter, and printed in the order given.

Example:
  contractctl render nda.json
  contractctl render nda.json msa.json --values parties.yaml --format text
  contractctl render nda.json --format pdf --out exports/`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := renderOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			opts.Logger = logger

			outputs, err := renderFiles(cmd.Context(), args, opts)
			if err != nil {
				return err
			}
			outDir, _ := cmd.Flags().GetString("out")
			return writeOutputs(cmd.OutOrStdout(), outDir, outputs)
		},
	}
	addRenderFlags(cmd)
	cmd.Flags().String("out", "", "write one file per input into this directory instead of stdout")
	return cmd
}

func watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch DIR NAME",
		Short: "Re-render a contract every time its file changes",
		Long: `Watch DIR for changes to NAME.json and print the rendered contract after
every change, until interrupted.

Example:
  contractctl watch contracts/ nda --format text`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := renderOptionsFromFlags(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			opts.Logger = logger

			lib := library.New(args[0])
			name := args[1]
			if err := library.ValidateName(name); err != nil {
				return err
			}
			path := filepath.Join(lib.Dir(), name+".json")

			out := cmd.OutOrStdout()
			show := func() {
				outputs, err := renderFiles(cmd.Context(), []string{path}, opts)
				if err != nil {
					logger.Warn("render failed", zap.String("name", name), zap.Error(err))
					return
				}
				if err := writeOutputs(out, "", outputs); err != nil {
					logger.Warn("write failed", zap.Error(err))
				}
			}
			show()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return lib.Watch(ctx, func(changed string) {
				if changed == name {
					show()
				}
			}, library.WithLogger(logger))
		},
	}
	addRenderFlags(cmd)
	return cmd
}

func lettersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "letters N",
		Short: "Print the first N definition sub-item labels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 0 {
				return fmt.Errorf("N must be a non-negative integer, got %q", args[0])
			}
			for i := 0; i < n; i++ {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t(%s)\n", i, render.SubItemLabel(i))
			}
			return nil
		},
	}
}

func addRenderFlags(cmd *cobra.Command) {
	cmd.Flags().String("values", "", "YAML or JSON file mapping mention ids to values")
	cmd.Flags().String("format", "text", "output format: text, json, html, pdf or docx")
	cmd.Flags().Bool("continuous", false, "number clauses continuously across the documents of a bundle")
	cmd.Flags().String("definition-marker", "definition", "clause title text that marks a definitions clause")
}

func renderOptionsFromFlags(cmd *cobra.Command) (renderOptions, error) {
	format, _ := cmd.Flags().GetString("format")
	valuesPath, _ := cmd.Flags().GetString("values")
	continuous, _ := cmd.Flags().GetBool("continuous")
	marker, _ := cmd.Flags().GetString("definition-marker")

	if !validFormat(format) {
		return renderOptions{}, fmt.Errorf("unknown format %q", format)
	}
	opts := renderOptions{Format: format, Continuous: continuous, DefinitionMarker: marker}
	if valuesPath != "" {
		values, err := loadValues(valuesPath)
		if err != nil {
			return renderOptions{}, err
		}
		opts.Values = values
	}
	return opts, nil
}
