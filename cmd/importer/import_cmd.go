package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tpo-cell/backend/internal/config"
	"github.com/tpo-cell/backend/internal/database"
	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/repository"
	"github.com/tpo-cell/backend/internal/service"
)

type importOptions struct {
	kind    string
	file    string
	eventID string
	apply   bool
	output  string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import one CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.kind, "type", "", "Import type: "+kindNames()+" (required)")
	cmd.Flags().StringVar(&opts.file, "file", "", "CSV file to import, - for stdin (required)")
	cmd.Flags().StringVar(&opts.eventID, "event", "", "Event id for attendance rows without an eventId")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Write to the database (default is dry-run)")
	cmd.Flags().StringVar(&opts.output, "output", "", "Write the JSON result to this file instead of stdout")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, opts importOptions, stdout io.Writer) error {
	kind, err := importer.ParseKind(opts.kind)
	if err != nil {
		return withCode(exitUsage, fmt.Errorf("invalid --type %q: must be one of %s", opts.kind, kindNames()))
	}

	in, err := openInput(opts.file)
	if err != nil {
		return withCode(exitUsage, err)
	}
	defer in.Close()

	var result importer.ImportResult
	if opts.apply {
		result, err = applyImport(ctx, kind, in, opts.eventID)
	} else {
		var batch *importer.Batch
		batch, err = importer.ReconcileReader(in, kind)
		if err != nil {
			err = withCode(exitValidation, err)
		} else {
			result = batch.Result()
			result.DryRun = true
		}
	}
	if err != nil {
		return err
	}

	if err := writeResult(result, opts.output, stdout); err != nil {
		return withCode(exitUsage, err)
	}
	if !result.Success {
		return withCode(exitValidation, errors.New(result.Message))
	}
	return nil
}

func applyImport(ctx context.Context, kind importer.Kind, in io.Reader, eventID string) (importer.ImportResult, error) {
	cfg, err := config.Load()
	if err != nil {
		return importer.ImportResult{}, withCode(exitUsage, fmt.Errorf("load config: %w", err))
	}
	db, err := database.Connect(cfg)
	if err != nil {
		return importer.ImportResult{}, withCode(exitDB, fmt.Errorf("connect database: %w", err))
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	svc := service.NewImportService(
		repository.NewStudentRepository(db),
		repository.NewAlumniRepository(db),
		repository.NewEventRepository(db),
		repository.NewAttendanceRepository(db),
	)
	result, err := svc.Import(ctx, service.ImportRequest{Kind: kind, Reader: in, EventID: eventID})
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) || errors.Is(err, importer.ErrNoHeader) {
			return result, withCode(exitValidation, err)
		}
		return result, withCode(exitDB, err)
	}
	return result, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open --file: %w", err)
	}
	return f, nil
}

func writeResult(result importer.ImportResult, path string, stdout io.Writer) error {
	out := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create --output: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func kindNames() string {
	names := make([]string, len(importer.Kinds))
	for i, k := range importer.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newTemplateCmd() *cobra.Command {
	var kindName, format string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print the CSV template for an import type",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := importer.ParseKind(kindName)
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid --type %q: must be one of %s", kindName, kindNames()))
			}
			if format == "xlsx" {
				return importer.WriteTemplateXLSX(cmd.OutOrStdout(), kind)
			}
			t, err := importer.Template(kind)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), t)
			return err
		},
	}

	cmd.Flags().StringVar(&kindName, "type", "", "Import type (required)")
	cmd.Flags().StringVar(&format, "format", "csv", "csv or xlsx")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
