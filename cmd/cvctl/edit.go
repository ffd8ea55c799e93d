package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/jonathan/cv-editor/internal/collection"
	"github.com/jonathan/cv-editor/internal/export"
	"github.com/jonathan/cv-editor/internal/suggest"
	"github.com/jonathan/cv-editor/internal/types"
	"github.com/jonathan/cv-editor/internal/workspace"
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a CV and open it in the editor",
	Long: `Creates a new CV on the service and opens the interactive editor. The CV is
remembered as your interrupted draft until it is generated, so an abandoned session
can be picked up again with "cvctl edit --resume".`,
	Args: cobra.MinimumNArgs(1),
	RunE: withApp(runCreate),
}

var editCmd = &cobra.Command{
	Use:   "edit [id]",
	Short: "Open an existing CV in the editor",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runEdit),
}

var editResume bool

func init() {
	editCmd.Flags().BoolVar(&editResume, "resume", false, "Reopen the interrupted draft")

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(editCmd)
}

// workspaceDeps builds the editor dependencies. The returned collection view is nil
// when no user is registered; otherwise every autosave marks it stale.
func workspaceDeps(a *app) (workspace.Deps, *collection.View, error) {
	catalog, err := suggest.NewCatalog(a.client)
	if err != nil {
		return workspace.Deps{}, nil, err
	}
	deps := workspace.Deps{
		Store:    a.client,
		Sessions: a.sessions,
		Catalog:  catalog,
		Logger:   a.log,
	}

	var view *collection.View
	if s, err := a.sessions.RequireUser(); err == nil {
		view = collection.NewView(a.client, s.UserID, a.log)
		watchSaves(&deps, view)
	}
	return deps, view, nil
}

// watchSaves marks view stale after every autosave of the editor built from deps.
func watchSaves(deps *workspace.Deps, view *collection.View) {
	next := deps.OnSaved
	deps.OnSaved = func(doc types.CV) {
		view.Invalidate()
		if next != nil {
			next(doc)
		}
	}
}

func runCreate(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	if _, err := a.sessions.RequireUser(); err != nil {
		return err
	}
	deps, view, err := workspaceDeps(a)
	if err != nil {
		return err
	}

	ws, err := workspace.Create(ctx, deps, strings.Join(args, " "))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", ws.ID())
	return runEditor(ctx, cmd, a, ws, view)
}

func runEdit(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	deps, view, err := workspaceDeps(a)
	if err != nil {
		return err
	}

	var ws *workspace.Session
	switch {
	case editResume:
		ws, err = workspace.ResumeDraft(ctx, deps)
	case len(args) == 1:
		ws, err = workspace.Open(ctx, deps, args[0])
	default:
		return errors.New("pass a CV id or --resume")
	}
	if err != nil {
		return err
	}
	return runEditor(ctx, cmd, a, ws, view)
}

func runEditor(ctx context.Context, cmd *cobra.Command, a *app, ws *workspace.Session, view *collection.View) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	r := newREPL(ws, cmd.InOrStdin(), cmd.OutOrStdout())
	r.collection = view
	r.exporter = export.New(export.Options{
		Service:   a.client,
		Confirmer: r.confirmer(flagYes),
		OutputDir: a.cfg.OutputDir,
		Logger:    a.log,
	})
	runErr := r.run(ctx)

	// pending edits are flushed even when interrupted
	closeErr := ws.Close(context.WithoutCancel(ctx))
	if runErr != nil {
		return runErr
	}
	return closeErr
}
