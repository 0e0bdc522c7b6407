package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/pkg/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the current plan as a shareable artifact",
}

var exportTextCmd = &cobra.Command{
	Use:   "text",
	Short: "Print the order summary text",
	Long:  "Print the plain-text order summary for the current plan, ready to paste into a chat message. Refuses while the plan exceeds the drive capacity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		b := s.plan.Recompute(s.store)
		if err := export.GuardCapacity(b); err != nil {
			return err
		}
		fmt.Println(export.BuildOrderText(s.plan.Selected(s.store), b.UsedGB))
		return nil
	},
}

var exportImageCmd = &cobra.Command{
	Use:   "image",
	Short: "Render the order summary as a PNG",
	Long:  "Render the order summary table as a PNG via headless Chrome. Requires a Chrome or Chromium binary on the PATH (or GAMESHELF_CHROME). Refuses while the plan exceeds the drive capacity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		b := s.plan.Recompute(s.store)
		if err := export.GuardCapacity(b); err != nil {
			return err
		}

		selection := s.plan.Selected(s.store)
		if len(selection) == 0 {
			return fmt.Errorf("nothing to render, the plan is empty")
		}

		png, err := export.SnapshotPNG(cmd.Context(), export.SummaryRows(selection), b.UsedGB)
		if err != nil {
			return err
		}

		if output == "" {
			output = fmt.Sprintf("gameshelf-order-%d.png", time.Now().Unix())
		}
		if err := os.WriteFile(output, png, 0o644); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d games, %d bytes)\n", output, len(selection), len(png))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportTextCmd)
	exportCmd.AddCommand(exportImageCmd)
	exportImageCmd.Flags().StringP("output", "o", "", "Output file (default gameshelf-order-<timestamp>.png)")
}
