package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/cv-editor/internal/preview"
	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles with suggested objective phrases",
	Args:  cobra.NoArgs,
	RunE:  withApp(runRoles),
}

var phrasesCmd = &cobra.Command{
	Use:   "phrases <role>",
	Short: "List the suggested objective phrases for a role",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runPhrases),
}

func init() {
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(phrasesCmd)
}

func runRoles(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	roles, err := a.client.ListRoles(ctx)
	if err != nil {
		return err
	}
	for _, r := range roles {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), r)
	}
	return nil
}

func runPhrases(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	role := strings.Join(args, " ")
	phrases, err := a.client.ListPhrases(ctx, role)
	if err != nil {
		return err
	}
	preview.NewPrinter(cmd.OutOrStdout()).PrintPhrases(role, phrases, nil)
	return nil
}
