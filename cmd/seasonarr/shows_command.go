package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"seasonarr/internal/engine"
	"seasonarr/internal/store"
)

func newShowsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "shows [term]",
		Short: "List this season's shows, optionally filtered by a search term",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			return ctx.withEngine(func(eng *engine.Engine) error {
				titles, err := eng.Shows(cmd.Context(), term)
				if err != nil {
					return err
				}
				cats := engine.Categorize(titles)

				if jsonOutput {
					return writeJSON(cmd.OutOrStdout(), map[string]any{
						"watching": showRowsJSON(cats.Watching),
						"airing":   showRowsJSON(cats.Airing),
						"specials": showRowsJSON(cats.Specials),
						"movies":   showRowsJSON(cats.Movies),
					})
				}

				out := cmd.OutOrStdout()
				printShowSection(out, "Watching", cats.Watching)
				printShowSection(out, "Airing", cats.Airing)
				printShowSection(out, "Specials", cats.Specials)
				printShowSection(out, "Movies", cats.Movies)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

var showHeaders = []string{"ID", "Title", "Kind", "Next Episode", "Airs", "State", "Starred"}

func printShowSection(out io.Writer, name string, titles []*store.Title) {
	if len(titles) == 0 {
		return
	}
	rows := make([][]string, 0, len(titles))
	for _, title := range titles {
		rows = append(rows, []string{
			fmt.Sprintf("%d", title.ID),
			title.Title,
			title.Kind,
			episodeLabel(title),
			airDateLabel(title),
			string(title.State()),
			starLabel(title.Starred),
		})
	}
	fmt.Fprintf(out, "%s\n%s\n\n", name, renderTable(out, showHeaders, rows))
}

func episodeLabel(title *store.Title) string {
	if title.NextEpisode == nil {
		return "-"
	}
	if title.TotalEpisodes != nil {
		return fmt.Sprintf("%d/%d", *title.NextEpisode, *title.TotalEpisodes)
	}
	return fmt.Sprintf("%d/?", *title.NextEpisode)
}

func airDateLabel(title *store.Title) string {
	if title.NextEpisodeAt == nil {
		return "unknown"
	}
	return title.NextEpisodeAt.Format("January 2, 2006")
}

func starLabel(starred bool) string {
	if starred {
		return "*"
	}
	return ""
}

func showRowsJSON(titles []*store.Title) []map[string]any {
	rows := make([]map[string]any, 0, len(titles))
	for _, title := range titles {
		row := map[string]any{
			"id":      title.ID,
			"title":   title.Title,
			"kind":    title.Kind,
			"state":   string(title.State()),
			"starred": title.Starred,
			"season":  title.Season,
			"airing":  title.Airing,
		}
		if alt := strings.TrimSpace(title.AltTitle); alt != "" {
			row["alt_title"] = alt
		}
		if title.NextEpisode != nil {
			row["next_episode"] = *title.NextEpisode
		}
		if title.NextEpisodeAt != nil {
			row["next_episode_at"] = title.NextEpisodeAt.Format(time.RFC3339)
		}
		if title.BackendID != nil {
			row["backend_id"] = *title.BackendID
		}
		rows = append(rows, row)
	}
	return rows
}
