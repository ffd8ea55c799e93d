package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/cv-editor/internal/collection"
	"github.com/jonathan/cv-editor/internal/preview"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List your CVs",
	Args:    cobra.NoArgs,
	RunE:    withApp(runList),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a CV (irreversible)",
	Args:  cobra.ExactArgs(1),
	RunE:  withApp(runDelete),
}

var (
	listRecent bool
	listJSON   bool
)

func init() {
	listCmd.Flags().BoolVar(&listRecent, "recent", false, "Sort by last modification, newest first")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print summaries as JSON")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
}

func newCollection(a *app) (*collection.View, error) {
	s, err := a.sessions.RequireUser()
	if err != nil {
		return nil, err
	}
	return collection.NewView(a.client, s.UserID, a.log), nil
}

func runList(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	view, err := newCollection(a)
	if err != nil {
		return err
	}
	items, err := view.List(ctx)
	if err != nil {
		return err
	}
	if listRecent {
		items = view.Recent()
	}

	if listJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	preview.NewPrinter(cmd.OutOrStdout()).PrintCollection(items)
	return nil
}

func runDelete(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	view, err := newCollection(a)
	if err != nil {
		return err
	}

	deleted, err := view.Delete(ctx, args[0], a.confirmer(cmd))
	if err != nil {
		return err
	}
	if !deleted {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Cancelled")
		return nil
	}

	if a.sessions.Current().LastDraftID == args[0] {
		if err := a.sessions.ClearLastDraft(ctx); err != nil {
			a.log.Warn("failed to clear draft marker", "cv_id", args[0], "error", err)
		}
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
	return nil
}
