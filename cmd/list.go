package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/pkg/catalog"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Browse the game catalog",
	Long:  "Browse the cached game catalog, optionally filtered by a title search. Results come in pages of " + fmt.Sprint(catalog.PageSize) + ".",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		page, _ := cmd.Flags().GetInt("page")
		all, _ := cmd.Flags().GetBool("all")
		refresh, _ := cmd.Flags().GetBool("refresh")

		s, err := openSession(cmd, refresh)
		if err != nil {
			return err
		}
		defer s.Close()

		view := s.store.Filter(search)

		entries := view
		hasMore := false
		if !all {
			if page < 1 {
				page = 1
			}
			entries, hasMore = catalog.PageSlice(view, page, catalog.PageSize)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  \tTITLE\tEST. SIZE")
		for _, e := range entries {
			mark := " "
			if s.plan.Contains(e.ID) {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", mark, e.Title, e.EstimatedSizeLabel())
		}
		w.Flush()

		if search != "" {
			fmt.Printf("\n%d of %d games match %q\n", len(entries), len(view), search)
		} else {
			fmt.Printf("\n%d of %d games\n", len(entries), len(view))
		}
		if hasMore {
			fmt.Printf("More available: rerun with --page %d\n", page+1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("search", "s", "", "Filter games by a case-insensitive title substring")
	listCmd.Flags().IntP("page", "p", 1, "Page to show")
	listCmd.Flags().BoolP("all", "a", false, "Show every match instead of a single page")
	listCmd.Flags().BoolP("refresh", "r", false, "Fetch the latest catalog from the repository first")
}
