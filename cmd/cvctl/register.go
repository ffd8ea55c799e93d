package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register a user and make it the current user",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withApp(runRegister),
}

var logoutCmd = &cobra.Command{
	Use:     "logout",
	Aliases: []string{"reset"},
	Short:   "Forget the current user and any interrupted draft",
	Args:    cobra.NoArgs,
	RunE:    withApp(runLogout),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	Args:  cobra.NoArgs,
	RunE:  withApp(runWhoami),
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
}

func runRegister(ctx context.Context, cmd *cobra.Command, a *app, args []string) error {
	s, err := a.sessions.Register(ctx, a.client, strings.Join(args, " "))
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", s.UserName, s.UserID)
	return nil
}

func runLogout(ctx context.Context, cmd *cobra.Command, a *app, _ []string) error {
	if err := a.sessions.Reset(ctx); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
	return nil
}

func runWhoami(_ context.Context, cmd *cobra.Command, a *app, _ []string) error {
	s, err := a.sessions.RequireUser()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "User:  %s (%s)\n", s.UserName, s.UserID)
	if s.LastDraftID != "" {
		_, _ = fmt.Fprintf(out, "Draft: %s (resume with `cvctl edit --resume`)\n", s.LastDraftID)
	}
	return nil
}
