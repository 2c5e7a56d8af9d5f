package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"receiptiq/internal/config"
	"receiptiq/internal/logging"
	"receiptiq/internal/pdfcheck"
	"receiptiq/internal/pipeline"
	"receiptiq/internal/reconcile"
	"receiptiq/internal/service"
)

type rootOptions struct {
	logLevel string
	raw      bool
}

type validateOutput struct {
	Path    string `json:"path"`
	IsValid bool   `json:"is_valid"`
	Reason  string `json:"reason"`
}

// runner executes the extraction pipeline for one PDF. Tests replace it.
type runner func(cmd *cobra.Command, cfg *config.AppConfig, logger zerolog.Logger) (service.Pipeline, error)

func buildPipeline(_ *cobra.Command, cfg *config.AppConfig, logger zerolog.Logger) (service.Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return pipeline.Build(cfg, nil, logger)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(buildPipeline)
}

func newRootCmdWith(build runner) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:          "receiptctl",
		Short:        "Validate receipt PDFs and extract their data locally",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	root.AddCommand(newValidateCmd(opts), newExtractCmd(opts, build))
	return root
}

func (o *rootOptions) logger(cmd *cobra.Command) zerolog.Logger {
	return logging.New(logging.Options{Level: o.logLevel, Output: cmd.ErrOrStderr()})
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <pdf>",
		Short: "Check that a file is a readable PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			valid, reason := pdfcheck.NewValidator(opts.logger(cmd)).Validate(args[0])
			return writeJSON(cmd.OutOrStdout(), validateOutput{Path: args[0], IsValid: valid, Reason: reason})
		},
	}
}

func newExtractCmd(opts *rootOptions, build runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract <pdf>",
		Short: "Run OCR and structured extraction on a PDF and print the receipt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)
			cfg := config.Load()

			p, err := build(cmd, cfg, logger)
			if err != nil {
				return fmt.Errorf("build pipeline: %w", err)
			}

			rec, err := p.Run(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if opts.raw {
				return writeJSON(cmd.OutOrStdout(), rec)
			}
			return writeJSON(cmd.OutOrStdout(), reconcile.Narrow(rec, "", logger))
		},
	}
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "print the model's record without normalization")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
