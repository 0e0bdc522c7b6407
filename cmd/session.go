package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/wdgames/gameshelf/internal/utils"
	"github.com/wdgames/gameshelf/pkg/catalog"
	"github.com/wdgames/gameshelf/pkg/ghrepo"
	"github.com/wdgames/gameshelf/pkg/plan"
	"github.com/wdgames/gameshelf/pkg/storage"
)

// session bundles everything a command needs: the locked local cache, the
// catalog loaded from it, the persisted plan resolved against that catalog,
// and (when configured) the remote repository client.
type session struct {
	db    *storage.DB
	lock  *utils.DBLock
	store *catalog.Store
	plan  *plan.Plan
	repo  *ghrepo.Client
	sha   string
}

func repoFromConfig() *ghrepo.Client {
	owner := viper.GetString("github.owner")
	if owner == "" {
		return nil
	}
	return ghrepo.New(ghrepo.Config{
		Owner:  owner,
		Repo:   viper.GetString("github.repo"),
		Path:   viper.GetString("github.path"),
		Branch: viper.GetString("github.branch"),
		Token:  viper.GetString("github.token"),
	})
}

// openSession locks and opens the cache, loads the catalog (fetching it when
// refresh is set or nothing is cached yet) and resolves the persisted plan.
func openSession(cmd *cobra.Command, refresh bool) (*session, error) {
	dbPath, _ := cmd.Flags().GetString("dbpath")

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return nil, err
	}
	if err := lock.Lock(); err != nil {
		return nil, err
	}

	absPath, err := utils.GetAbsDBPath(dbPath)
	if err != nil {
		lock.Unlock()
		return nil, err
	}
	db, err := storage.Open(absPath)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	s := &session{db: db, lock: lock, repo: repoFromConfig()}
	if err := s.loadCatalog(cmd.Context(), refresh); err != nil {
		s.Close()
		return nil, err
	}
	if err := s.loadPlan(cmd.Context()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.lock != nil {
		s.lock.Unlock()
	}
}

func (s *session) loadCatalog(ctx context.Context, refresh bool) error {
	var body []byte

	cached, err := s.db.Catalog(ctx)
	switch {
	case err == nil && !refresh:
		body = cached.Body
		s.sha = cached.SHA
	case err != nil && !errors.Is(err, storage.ErrNoCatalog):
		return err
	default:
		// Either an explicit refresh or an empty cache.
		if s.repo == nil {
			return errors.New("no catalog repository configured, set github.owner in the config file")
		}
		utils.Log.Info("Fetching catalog from repository...")
		doc, err := s.repo.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := s.db.SaveCatalog(ctx, doc.Content, doc.SHA); err != nil {
			return err
		}
		body = doc.Content
		s.sha = doc.SHA
		utils.Log.Debugf("Fetched catalog revision %s", doc.SHA)
	}

	s.store = catalog.NewStore()
	return s.store.Load(body)
}

// loadPlan resolves persisted titles against the loaded catalog. Titles that
// no longer resolve are dropped from the cache so they stop reappearing.
func (s *session) loadPlan(ctx context.Context) error {
	capacity, err := s.db.CapacityGB(ctx, viper.GetFloat64("storage.capacity_gb"))
	if err != nil {
		return err
	}
	s.plan = plan.New(capacity)

	titles, err := s.db.PlanTitles(ctx)
	if err != nil {
		return err
	}

	var kept []string
	for _, title := range titles {
		if e, ok := s.entryByTitle(title); ok {
			s.plan.Add(e.ID)
			kept = append(kept, title)
		}
	}
	if len(kept) != len(titles) {
		utils.Log.Warnf("%d planned game(s) no longer exist in the catalog and were dropped", len(titles)-len(kept))
		return s.db.SetPlanTitles(ctx, kept)
	}
	return nil
}

// persistPlan writes the in-memory selection back to the cache, in order.
func (s *session) persistPlan(ctx context.Context) error {
	selection := s.plan.Selected(s.store)
	titles := make([]string, 0, len(selection))
	for _, e := range selection {
		titles = append(titles, e.Title)
	}
	return s.db.SetPlanTitles(ctx, titles)
}

func (s *session) entryByTitle(title string) (*catalog.Entry, bool) {
	for _, e := range s.store.Entries() {
		if e.Title == title {
			return e, true
		}
	}
	return nil, false
}

// findEntry resolves a user-supplied name to an entry: exact title first,
// then a case-insensitive substring as long as it matches exactly one game.
func (s *session) findEntry(name string) (*catalog.Entry, error) {
	if e, ok := s.entryByTitle(name); ok {
		return e, nil
	}

	matches := s.store.Filter(strings.TrimSpace(name))
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("no game matches %q", name)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, 0, len(matches))
		for i, e := range matches {
			if i == 5 {
				names = append(names, "...")
				break
			}
			names = append(names, e.Title)
		}
		return nil, fmt.Errorf("%q is ambiguous, matches %d games: %s",
			name, len(matches), strings.Join(names, ", "))
	}
}
