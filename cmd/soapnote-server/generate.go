package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/soapnote/internal/config"
	"github.com/ehr/soapnote/internal/domain/demo"
	"github.com/ehr/soapnote/internal/domain/record"
	"github.com/ehr/soapnote/internal/platform/completion"
	"github.com/ehr/soapnote/internal/platform/pdfexport"
)

type generateOptions struct {
	Input string
	Form  record.FormInput
	Codes string
	Out   string
	Print bool
}

func generateCmd() *cobra.Command {
	var opts generateOptions

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a SOAP note for one encounter and write it as PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(true)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			client := completion.NewClient(completionOptions(cfg), logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cfg, logger, client, client.Model(), opts, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Input, "input", "", "JSON file with the encounter form (overrides the field flags)")
	f.StringVar(&opts.Form.PatientID, "patient-id", "", "Patient ID")
	f.StringVar(&opts.Form.ChiefComplaint, "chief-complaint", "", "Chief complaint")
	f.StringVar(&opts.Form.Conditions, "conditions", "", "Conditions (comma-separated)")
	f.StringVar(&opts.Form.BP, "bp", "", "Blood pressure")
	f.StringVar(&opts.Form.HR, "hr", "", "Heart rate")
	f.StringVar(&opts.Form.SpO2, "spo2", "", "SpO2")
	f.StringVar(&opts.Form.HbA1c, "hba1c", "", "HbA1c")
	f.StringVar(&opts.Form.CBC, "cbc", "", "CBC")
	f.StringVar(&opts.Form.Medications, "medications", "", "Medications (comma-separated)")
	f.StringVar(&opts.Codes, "codes", demo.CodeSuggestions, "ICD-10/CPT code text for the PDF")
	f.StringVar(&opts.Out, "out", pdfexport.FileName, "Output PDF path")
	f.BoolVar(&opts.Print, "print", false, "Print the note text to stdout")

	return cmd
}

func renderDemoCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "render-demo",
		Short: "Render the canned demo note to PDF without calling the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(false)
			if err != nil {
				return err
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())
			return runGenerate(cmd.Context(), cfg, logger, completion.Fixture{Text: demo.NoteText}, "demo-fixture", generateOptions{
				Form:  demo.Form(),
				Codes: demo.CodeSuggestions,
				Out:   out,
			}, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&out, "out", pdfexport.FileName, "Output PDF path")
	return cmd
}

// runGenerate runs one submission and writes the PDF to opts.Out.
func runGenerate(ctx context.Context, cfg *config.Config, logger zerolog.Logger, completer completion.Completer, model string, opts generateOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	form, err := loadForm(opts)
	if err != nil {
		return err
	}

	svc, err := newNoteService(cfg, logger, completer, model)
	if err != nil {
		return err
	}
	n, doc, err := svc.GenerateAndExport(ctx, record.FromForm(form), opts.Codes)
	if err != nil {
		return err
	}

	if err := os.WriteFile(opts.Out, doc.Content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", opts.Out, err)
	}
	logger.Info().
		Str("note_id", n.ID.String()).
		Str("out", opts.Out).
		Int("pages", doc.Pages).
		Msg("pdf written")

	if opts.Print {
		fmt.Fprintln(stdout, n.DisplayText)
	}
	return nil
}

func loadForm(opts generateOptions) (record.FormInput, error) {
	if opts.Input == "" {
		return opts.Form, nil
	}
	data, err := os.ReadFile(opts.Input)
	if err != nil {
		return record.FormInput{}, fmt.Errorf("read input: %w", err)
	}
	var form record.FormInput
	if err := json.Unmarshal(data, &form); err != nil {
		return record.FormInput{}, fmt.Errorf("parse input %s: %w", opts.Input, err)
	}
	return form, nil
}
