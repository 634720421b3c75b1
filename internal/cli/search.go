package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/artpar/popcorn/internal/movie"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// SearchOptions holds options for the search command.
type SearchOptions struct {
	JSON bool
}

// NewSearchCommand creates the search command.
func NewSearchCommand(global *GlobalOptions) *cobra.Command {
	opts := &SearchOptions{}

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Search OMDb for movies",
		Long:  "Search OMDb for movies whose title matches QUERY.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, global, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Output results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, global *GlobalOptions, query string, opts *SearchOptions) error {
	a, cleanup, err := openApp(cmd.Context(), global, true)
	if err != nil {
		return err
	}
	defer cleanup()

	if minLen := a.Config().Search.MinLength; utf8.RuneCountInString(query) < minLen {
		return errors.Errorf("query must be at least %d characters", minLen)
	}

	state := a.NewSearch().Run(cmd.Context(), query)
	if err := interrupted(cmd.Context()); err != nil {
		return err
	}
	if state.Err != "" {
		return errors.New(state.Err)
	}

	if opts.JSON {
		return writeJSON(cmd, state.Data)
	}
	return outputResults(cmd, state.Data)
}

func outputResults(cmd *cobra.Command, results []movie.Summary) error {
	out := cmd.OutOrStdout()
	for _, m := range results {
		fmt.Fprintf(out, "%-10s  %-9s  %s\n", m.ID, m.Year, m.Title)
	}
	fmt.Fprintf(out, "\nFound %d results\n", len(results))
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
