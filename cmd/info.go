package cmd

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

var infoCmd = &cobra.Command{
	Use:   "info <game>",
	Short: "Show the detail view for one game",
	Long:  "Show the full detail view for one game: banner, size estimate, system requirements and the game info sheet. Boolean info values print as Ya/Tidak like the catalog site.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.findEntry(args[0])
		if err != nil {
			return err
		}

		fmt.Println(e.Title)
		if e.BannerURL != "" {
			fmt.Printf("Banner: %s\n", e.BannerURL)
		}
		fmt.Printf("Download size: %s\n", sizeunit.Format(e.SizeGB))
		fmt.Printf("Estimated install size: %s\n", e.EstimatedSizeLabel())
		if s.plan.Contains(e.ID) {
			fmt.Println("Selected: Ya")
		} else {
			fmt.Println("Selected: Tidak")
		}

		if len(e.SystemRequirements) > 0 {
			fmt.Println("\nSystem Requirements")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, k := range sortedKeys(e.SystemRequirements) {
				fmt.Fprintf(w, "  %s\t%s\n", k, e.SystemRequirements[k])
			}
			w.Flush()
		}

		if len(e.GameInfo) > 0 {
			fmt.Println("\nGame Info")
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			keys := make([]string, 0, len(e.GameInfo))
			for k := range e.GameInfo {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(w, "  %s\t%s\n", k, infoValue(e.GameInfo[k]))
			}
			w.Flush()
		}
		return nil
	},
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// infoValue renders a game-info scalar the way the site did: booleans become
// Ya/Tidak, everything else prints as-is.
func infoValue(v any) string {
	switch t := v.(type) {
	case bool:
		if t {
			return "Ya"
		}
		return "Tidak"
	case nil:
		return "-"
	default:
		return fmt.Sprint(t)
	}
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
