package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"seasonarr/internal/engine"
)

func parseShowID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid show id %q", arg)
	}
	return id, nil
}

func newStarCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "star <id>",
		Short: "Toggle the star on a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseShowID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				starred, err := eng.ToggleStar(cmd.Context(), id)
				if err != nil {
					return err
				}
				if starred {
					fmt.Fprintf(cmd.OutOrStdout(), "Show %d starred\n", id)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Show %d unstarred\n", id)
				}
				return nil
			})
		},
	}
}

func newGroupsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "groups <id>",
		Short: "Find the release groups producing a show",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseShowID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				groups, err := eng.Resolve(cmd.Context(), id)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"groups": groups})
				}
				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintln(out, "No groups found")
					return nil
				}
				for _, group := range groups {
					fmt.Fprintln(out, group)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of plain text")
	return cmd
}

func newConfirmCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id> <group>",
		Short: "Add a show to the download backend with the chosen group",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseShowID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				backendID, err := eng.Confirm(cmd.Context(), id, args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Show %d is now watching (backend id %d)\n", id, backendID)
				return nil
			})
		},
	}
}

func newEditCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <group>",
		Short: "Change the release group of a watching show",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseShowID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				if err := eng.Edit(cmd.Context(), id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Show %d now uses group %s\n", id, args[1])
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Stop watching a show, keeping local history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseShowID(args[0])
			if err != nil {
				return err
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				if err := eng.Remove(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Show %d removed from the backend\n", id)
				return nil
			})
		},
	}
}

func newIngestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest",
		Short: "Run one ingestion cycle against the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine.Engine) error {
				if err := eng.Ingest(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Ingestion cycle complete")
				return nil
			})
		},
	}
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify credentials against the download backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine.Engine) error {
				token, err := eng.Login(cmd.Context(), username, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Login OK, session %s\n", token)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Backend username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Backend password")
	return cmd
}

func newLookupCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "lookup <term>",
		Short: "Search the download backend for a series",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(func(eng *engine.Engine) error {
				refs, err := eng.LookupBackend(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"results": refs})
				}
				out := cmd.OutOrStdout()
				if len(refs) == 0 {
					fmt.Fprintln(out, "No matches found")
					return nil
				}
				rows := make([][]string, 0, len(refs))
				for _, ref := range refs {
					rows = append(rows, []string{strconv.FormatInt(ref.BackendID, 10), ref.Title})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Backend ID", "Title"}, rows))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of plain text")
	return cmd
}
