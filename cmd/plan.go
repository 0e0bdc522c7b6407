package cmd

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/pkg/plan"
	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show and manage the current order plan",
	Long:  "Show the current selection with its capacity budget. Subcommands add, remove or toggle games and set the drive capacity.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		printPlan(s)
		return nil
	},
}

func printPlan(s *session) {
	selection := s.plan.Selected(s.store)
	b := s.plan.Recompute(s.store)

	if len(selection) == 0 {
		fmt.Println("No games selected.")
	} else {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		for i, e := range selection {
			fmt.Fprintf(w, "%d.\t%s\t%s\n", i+1, e.Title, e.EstimatedSizeLabel())
		}
		w.Flush()
		fmt.Println()
	}

	fmt.Printf("Capacity: %s | Used: %s (%d%%) | Remaining: %s\n",
		sizeunit.Format(b.CapacityGB), sizeunit.Format(b.UsedGB),
		int(b.Percent), sizeunit.Format(b.RemainingGB))

	switch b.State {
	case plan.StateWarning:
		fmt.Println("Warning: the drive is nearly full.")
	case plan.StateOver:
		fmt.Println("Over capacity: remove some games or use a larger drive.")
	}
}

// mutatePlan runs fn against a fresh session, persists the plan and prints the
// resulting budget.
func mutatePlan(cmd *cobra.Command, fn func(s *session) error) error {
	s, err := openSession(cmd, false)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := fn(s); err != nil {
		return err
	}
	if err := s.persistPlan(cmd.Context()); err != nil {
		return err
	}
	printPlan(s)
	return nil
}

var planAddCmd = &cobra.Command{
	Use:   "add <game>...",
	Short: "Add one or more games to the plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlan(cmd, func(s *session) error {
			for _, name := range args {
				e, err := s.findEntry(name)
				if err != nil {
					return err
				}
				s.plan.Add(e.ID)
			}
			return nil
		})
	},
}

var planRemoveCmd = &cobra.Command{
	Use:   "remove <game>...",
	Short: "Remove one or more games from the plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlan(cmd, func(s *session) error {
			for _, name := range args {
				e, err := s.findEntry(name)
				if err != nil {
					return err
				}
				s.plan.Remove(e.ID)
			}
			return nil
		})
	},
}

var planToggleCmd = &cobra.Command{
	Use:   "toggle <game>...",
	Short: "Toggle one or more games in the plan",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlan(cmd, func(s *session) error {
			for _, name := range args {
				e, err := s.findEntry(name)
				if err != nil {
					return err
				}
				s.plan.Toggle(e.ID)
			}
			return nil
		})
	},
}

var planClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Deselect every game",
	RunE: func(cmd *cobra.Command, args []string) error {
		return mutatePlan(cmd, func(s *session) error {
			s.plan.Clear()
			return nil
		})
	},
}

var planCapacityCmd = &cobra.Command{
	Use:   "capacity <gb>",
	Short: "Set the drive capacity in GB",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gb, err := strconv.ParseFloat(args[0], 64)
		if err != nil || gb <= 0 {
			return fmt.Errorf("capacity must be a positive number of GB, got %q", args[0])
		}

		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.db.SetCapacityGB(cmd.Context(), gb); err != nil {
			return err
		}
		s.plan.CapacityGB = gb
		printPlan(s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.AddCommand(planAddCmd)
	planCmd.AddCommand(planRemoveCmd)
	planCmd.AddCommand(planToggleCmd)
	planCmd.AddCommand(planClearCmd)
	planCmd.AddCommand(planCapacityCmd)
}
