package cli

import (
	"fmt"

	"github.com/artpar/popcorn/internal/movie"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewWatchedCommand creates the watched command and its subcommands.
func NewWatchedCommand(global *GlobalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watched",
		Short: "Manage the watched list",
	}

	cmd.AddCommand(newWatchedListCommand(global))
	cmd.AddCommand(newWatchedAddCommand(global))
	cmd.AddCommand(newWatchedRemoveCommand(global))
	cmd.AddCommand(newWatchedStatsCommand(global))
	cmd.AddCommand(newWatchedClearCommand(global))

	return cmd
}

func newWatchedListCommand(global *GlobalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List watched movies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd.Context(), global, false)
			if err != nil {
				return err
			}
			defer cleanup()

			list := a.Watched().All()
			if asJSON {
				return writeJSON(cmd, list)
			}

			out := cmd.OutOrStdout()
			if len(list) == 0 {
				fmt.Fprintln(out, "No watched movies yet.")
				return nil
			}
			fmt.Fprintf(out, "%-10s  %-6s  %-5s  %-8s  %s\n", "ID", "RATING", "IMDB", "RUNTIME", "TITLE")
			for _, w := range list {
				fmt.Fprintf(out, "%-10s  %-6d  %-5.1f  %-8s  %s\n",
					w.ID, w.UserRating, w.IMDbRating, fmt.Sprintf("%d min", w.Runtime), w.Title)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newWatchedAddCommand(global *GlobalOptions) *cobra.Command {
	var rating int

	cmd := &cobra.Command{
		Use:   "add ID",
		Short: "Look up a movie by IMDb id and add it with a rating",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rating < movie.MinRating || rating > movie.MaxRating {
				return movie.ErrInvalidRating
			}

			a, cleanup, err := openApp(cmd.Context(), global, true)
			if err != nil {
				return err
			}
			defer cleanup()

			state := a.NewDetails().Run(cmd.Context(), args[0])
			if err := interrupted(cmd.Context()); err != nil {
				return err
			}
			if state.Err != "" {
				return errors.New(state.Err)
			}
			if state.Data.ID == "" {
				return errors.Errorf("no details for %s", args[0])
			}

			entry, err := movie.NewWatched(state.Data, rating)
			if err != nil {
				return err
			}
			added, err := a.Watched().Add(cmd.Context(), entry)
			if err != nil {
				return errors.Wrap(err, "failed to save watched list")
			}

			out := cmd.OutOrStdout()
			if !added {
				fmt.Fprintf(out, "%s is already in your watched list\n", entry.Title)
				return nil
			}
			fmt.Fprintf(out, "Added %s (%s) with rating %d\n", entry.Title, entry.Year, entry.UserRating)
			return nil
		},
	}

	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "Your rating from 1 to 10")
	cmd.MarkFlagRequired("rating")
	return cmd
}

func newWatchedRemoveCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID",
		Aliases: []string{"remove"},
		Short:   "Remove a movie from the watched list",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd.Context(), global, false)
			if err != nil {
				return err
			}
			defer cleanup()

			removed, err := a.Watched().Remove(cmd.Context(), args[0])
			if err != nil {
				return errors.Wrap(err, "failed to save watched list")
			}
			if !removed {
				return errors.Errorf("%s is not in your watched list", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
			return nil
		},
	}
}

func newWatchedStatsCommand(global *GlobalOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the watched list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd.Context(), global, false)
			if err != nil {
				return err
			}
			defer cleanup()

			stats := a.Watched().Stats()
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Movies:           %d\n", stats.Count)
			fmt.Fprintf(out, "Avg IMDb rating:  %.2f\n", stats.AvgIMDbRating)
			fmt.Fprintf(out, "Avg your rating:  %.2f\n", stats.AvgUserRating)
			fmt.Fprintf(out, "Avg runtime:      %.0f min\n", stats.AvgRuntime)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newWatchedClearCommand(global *GlobalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every movie from the watched list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(cmd.Context(), global, false)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := a.Watched().Clear(cmd.Context()); err != nil {
				return errors.Wrap(err, "failed to clear watched list")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Watched list cleared")
			return nil
		},
	}
}
