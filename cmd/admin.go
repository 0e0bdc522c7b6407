package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wdgames/gameshelf/internal/utils"
	"github.com/wdgames/gameshelf/pkg/catalog"
	"github.com/wdgames/gameshelf/pkg/editor"
	"github.com/wdgames/gameshelf/pkg/ghrepo"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Edit the catalog document itself",
	Long: `Edit the catalog document: add, edit or delete games, clean up titles,
and pull from or push to the repository. Local edits accumulate in the cache
until 'admin push' commits them.`,
}

// saveLocal writes the edited catalog back to the cache under the revision
// token it was fetched at. Push later commits against that same token.
func saveLocal(ctx context.Context, s *session) error {
	body, err := s.store.Serialize()
	if err != nil {
		return err
	}
	return s.db.SaveCatalog(ctx, body, s.sha)
}

// draftFlags reads the shared entry flags into a Draft. Flags that were not
// set keep the values from base.
func draftFlags(cmd *cobra.Command, base editor.Draft) editor.Draft {
	d := base
	if cmd.Flags().Changed("title") {
		d.Title, _ = cmd.Flags().GetString("title")
	}
	if cmd.Flags().Changed("banner") {
		d.BannerURL, _ = cmd.Flags().GetString("banner")
	}
	if cmd.Flags().Changed("requirements") {
		d.Requirements, _ = cmd.Flags().GetString("requirements")
	}
	if cmd.Flags().Changed("info") {
		d.Info, _ = cmd.Flags().GetString("info")
	}
	return d
}

// draftFromEntry rebuilds the editable form of an existing entry so an edit
// only has to override what changed.
func draftFromEntry(e *catalog.Entry) (editor.Draft, error) {
	d := editor.Draft{Title: e.Title, BannerURL: e.BannerURL}
	if len(e.SystemRequirements) > 0 {
		raw, err := json.Marshal(e.SystemRequirements)
		if err != nil {
			return d, err
		}
		d.Requirements = string(raw)
	}
	if len(e.GameInfo) > 0 {
		raw, err := json.Marshal(e.GameInfo)
		if err != nil {
			return d, err
		}
		d.Info = string(raw)
	}
	return d, nil
}

func addEntryFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("title", "t", "", "Game title")
	cmd.Flags().StringP("banner", "b", "", "Banner image URL")
	cmd.Flags().String("requirements", "", `System requirements as a JSON object, e.g. '{"OS": "Windows 10"}'`)
	cmd.Flags().String("info", "", `Game info as a JSON object of scalars, e.g. '{"Game Size": "12 GB"}'`)
}

var adminAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new game to the top of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		d := draftFlags(cmd, editor.Draft{})
		ed := editor.New(s.store)
		e, err := ed.Upsert(0, d)
		if err != nil {
			return err
		}
		if err := saveLocal(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Printf("Added %q (%s). Run 'gameshelf admin push' to publish.\n", e.Title, e.EstimatedSizeLabel())
		return nil
	},
}

var adminEditCmd = &cobra.Command{
	Use:   "edit <game>",
	Short: "Edit an existing game in place",
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
		base, err := draftFromEntry(e)
		if err != nil {
			return err
		}
		d := draftFlags(cmd, base)

		ed := editor.New(s.store)
		updated, err := ed.Upsert(e.ID, d)
		if err != nil {
			return err
		}
		if err := saveLocal(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Printf("Updated %q (%s). Run 'gameshelf admin push' to publish.\n", updated.Title, updated.EstimatedSizeLabel())
		return nil
	},
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete <game>",
	Short: "Delete a game from the catalog",
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
		title := e.Title

		ed := editor.New(s.store)
		if err := ed.Delete(e.ID); err != nil {
			return err
		}
		// Deleting a game also drops it from the plan.
		s.plan.Remove(e.ID)
		if err := s.persistPlan(cmd.Context()); err != nil {
			return err
		}
		if err := saveLocal(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Printf("Deleted %q. Run 'gameshelf admin push' to publish.\n", title)
		return nil
	},
}

var (
	freeDownloadRe = regexp.MustCompile(`(?i)\s*free download\s*`)
	spaceParenRe   = regexp.MustCompile(`\s+\(`)
	multiSpaceRe   = regexp.MustCompile(`\s{2,}`)
)

// tidyTitle removes the "Free Download" marketing suffix scraped sites leave
// in titles and normalizes the spacing around version parentheses.
func tidyTitle(title string) string {
	t := freeDownloadRe.ReplaceAllString(title, " ")
	t = spaceParenRe.ReplaceAllString(t, " (")
	t = multiSpaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

var adminTidyCmd = &cobra.Command{
	Use:   "tidy",
	Short: `Strip "Free Download" from every title`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		changed := 0
		for _, e := range s.store.Entries() {
			cleaned := tidyTitle(e.Title)
			if cleaned != e.Title && cleaned != "" {
				utils.Log.Debugf("%q -> %q", e.Title, cleaned)
				e.Title = cleaned
				changed++
			}
		}
		if changed == 0 {
			fmt.Println("All titles are already clean.")
			return nil
		}

		if err := s.persistPlan(cmd.Context()); err != nil {
			return err
		}
		if err := saveLocal(cmd.Context(), s); err != nil {
			return err
		}
		fmt.Printf("Cleaned %d title(s). Run 'gameshelf admin push' to publish.\n", changed)
		return nil
	},
}

var adminPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch the latest catalog, discarding local edits",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, true)
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Pulled %d games at revision %s\n", s.store.Len(), s.sha)
		return nil
	},
}

var adminPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Commit local catalog edits back to the repository",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd, false)
		if err != nil {
			return err
		}
		defer s.Close()

		if s.repo == nil {
			return fmt.Errorf("no catalog repository configured, set github.owner in the config file")
		}

		body, err := s.store.Serialize()
		if err != nil {
			return err
		}
		newSHA, err := s.repo.Commit(cmd.Context(), body, s.sha, ghrepo.CommitMessage())
		if err != nil {
			return err
		}
		if err := s.db.SaveCatalog(cmd.Context(), body, newSHA); err != nil {
			return err
		}
		fmt.Printf("Pushed %d games, new revision %s\n", s.store.Len(), newSHA)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminEditCmd)
	adminCmd.AddCommand(adminDeleteCmd)
	adminCmd.AddCommand(adminTidyCmd)
	adminCmd.AddCommand(adminPullCmd)
	adminCmd.AddCommand(adminPushCmd)
	addEntryFlags(adminAddCmd)
	addEntryFlags(adminEditCmd)
}
