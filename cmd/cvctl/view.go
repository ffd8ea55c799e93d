package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/preview"
	"github.com/jonathan/cv-editor/internal/schemas"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show a CV",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runView),
}

var generateCmd = &cobra.Command{
	Use:   "generate <id>",
	Short: "Render a CV to PDF without opening the editor",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runGenerate),
}

var validateCmd = &cobra.Command{
	Use:   "validate <file.json>",
	Short: "Check a CV document file against the CV schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema documents are checked against",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

var viewJSON bool

func init() {
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "Print the raw document as JSON")

	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runView(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	doc, err := a.client.GetCV(ctx, args[0])
	if err != nil {
		return err
	}
	if viewJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}
	preview.NewPrinter(cmd.OutOrStdout()).PrintCV(*doc, nil)
	return nil
}

func runGenerate(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	doc, err := a.client.GetCV(ctx, args[0])
	if err != nil {
		return err
	}

	exp := export.New(export.Options{
		Service:   a.client,
		Confirmer: a.confirmer(cmd),
		OutputDir: a.cfg.OutputDir,
		Logger:    a.log,
	})
	res, err := exp.Submit(ctx, *doc)
	if err != nil {
		return err
	}

	if a.sessions.Current().LastDraftID == doc.ID {
		if err := a.sessions.ClearLastDraft(ctx); err != nil {
			a.log.Warn("failed to clear draft marker", "cv_id", doc.ID, "error", err)
		}
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", res.Path, res.Bytes)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	if err := schemas.ValidateDocumentFile(args[0]); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Validation failed: %v\n", err)
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Validation passed")
	return nil
}

func runSchema(cmd *cobra.Command, _ []string) error {
	_, err := cmd.OutOrStdout().Write(schemas.CVSchema())
	return err
}
