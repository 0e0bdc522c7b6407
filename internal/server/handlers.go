package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/wdgames/gameshelf/internal/utils"
	"github.com/wdgames/gameshelf/pkg/catalog"
	"github.com/wdgames/gameshelf/pkg/editor"
	"github.com/wdgames/gameshelf/pkg/export"
	"github.com/wdgames/gameshelf/pkg/ghrepo"
	"github.com/wdgames/gameshelf/pkg/plan"
	"github.com/wdgames/gameshelf/pkg/sizeunit"
)

type entryView struct {
	ID                 uint64            `json:"id"`
	Title              string            `json:"title"`
	BannerURL          string            `json:"banner_url"`
	SystemRequirements map[string]string `json:"system_requirements,omitempty"`
	GameInfo           map[string]any    `json:"game_info,omitempty"`
	SizeGB             float64           `json:"size_gb"`
	EstimatedSizeGB    float64           `json:"estimated_size_gb"`
	EstimatedLabel     string            `json:"estimated_label"`
	Selected           bool              `json:"selected"`
}

type budgetView struct {
	CapacityGB     float64          `json:"capacity_gb"`
	UsedGB         float64          `json:"used_gb"`
	RemainingGB    float64          `json:"remaining_gb"`
	UsedLabel      string           `json:"used_label"`
	RemainingLabel string           `json:"remaining_label"`
	Percent        float64          `json:"percent"`
	State          plan.BudgetState `json:"state"`
	SelectedCount  int              `json:"selected_count"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) entryView(e *catalog.Entry) entryView {
	return entryView{
		ID:                 e.ID,
		Title:              e.Title,
		BannerURL:          e.BannerURL,
		SystemRequirements: e.SystemRequirements,
		GameInfo:           e.GameInfo,
		SizeGB:             e.SizeGB,
		EstimatedSizeGB:    e.EstimatedSizeGB,
		EstimatedLabel:     e.EstimatedSizeLabel(),
		Selected:           s.plan.Contains(e.ID),
	}
}

func (s *Server) budgetView() budgetView {
	b := s.plan.Recompute(s.store)
	return budgetView{
		CapacityGB:     b.CapacityGB,
		UsedGB:         b.UsedGB,
		RemainingGB:    b.RemainingGB,
		UsedLabel:      sizeunit.Format(b.UsedGB),
		RemainingLabel: sizeunit.Format(b.RemainingGB),
		Percent:        b.Percent,
		State:          b.State,
		SelectedCount:  b.Count,
	}
}

func pathID(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := r.URL.Query()
	page := 1
	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		page = p
	}

	view := s.store.Filter(q.Get("search"))
	slice, hasMore := catalog.PageSlice(view, page, catalog.PageSize)

	entries := make([]entryView, 0, len(slice))
	for _, e := range slice {
		entries = append(entries, s.entryView(e))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":   entries,
		"page":      page,
		"page_size": catalog.PageSize,
		"total":     len(view),
		"has_more":  hasMore,
	})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	e, found := s.store.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, s.entryView(e))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	if _, found := s.store.Get(id); !found {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	s.plan.Toggle(id)
	writeJSON(w, http.StatusOK, s.budgetView())
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	s.plan.Remove(id)
	writeJSON(w, http.StatusOK, s.budgetView())
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, s.budgetView())
}

func (s *Server) handleCapacity(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var req struct {
		CapacityGB float64 `json:"capacity_gb"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CapacityGB <= 0 {
		writeError(w, http.StatusBadRequest, "capacity_gb must be a positive number")
		return
	}
	s.plan.CapacityGB = req.CapacityGB
	writeJSON(w, http.StatusOK, s.budgetView())
}

func (s *Server) handleExportText(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.plan.Recompute(s.store)
	if err := export.GuardCapacity(b); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	selection := s.plan.Selected(s.store)
	text := export.BuildOrderText(selection, b.UsedGB)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}

func decodeDraft(r *http.Request) (editor.Draft, error) {
	var req struct {
		Title        string `json:"title"`
		BannerURL    string `json:"banner_url"`
		Requirements string `json:"requirements"`
		Info         string `json:"info"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return editor.Draft{}, err
	}
	return editor.Draft{
		Title:        req.Title,
		BannerURL:    req.BannerURL,
		Requirements: req.Requirements,
		Info:         req.Info,
	}, nil
}

func (s *Server) writeEditorError(w http.ResponseWriter, err error) {
	var verr *editor.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": verr.Error(),
			"field": verr.Field,
		})
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "entry not found")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	draft, err := decodeDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := s.editor.Upsert(0, draft)
	if err != nil {
		s.writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.entryView(e))
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	draft, err := decodeDraft(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e, err := s.editor.Upsert(id, draft)
	if err != nil {
		s.writeEditorError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.entryView(e))
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid entry id")
		return
	}
	if err := s.editor.Delete(id); err != nil {
		s.writeEditorError(w, err)
		return
	}
	// The deleted entry must not keep contributing to the budget.
	s.plan.Remove(id)
	writeJSON(w, http.StatusOK, s.budgetView())
}

func ghStatus(err error) int {
	switch {
	case errors.Is(err, ghrepo.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ghrepo.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ghrepo.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no catalog repository configured")
		return
	}
	if !s.busy.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "another refresh or commit is in progress")
		return
	}
	defer s.busy.Store(false)

	doc, err := s.Repo.Fetch(r.Context())
	if err != nil {
		writeError(w, ghStatus(err), err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Identities change across a reload; carry the selection over by title.
	var selectedTitles []string
	for _, e := range s.plan.Selected(s.store) {
		selectedTitles = append(selectedTitles, e.Title)
	}

	if err := s.store.Load(doc.Content); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.sha = doc.SHA

	s.plan.Clear()
	for _, title := range selectedTitles {
		for _, e := range s.store.Entries() {
			if e.Title == title {
				s.plan.Add(e.ID)
				break
			}
		}
	}

	utils.Log.Infof("Catalog refreshed: %d entries, revision %s", s.store.Len(), s.sha)
	writeJSON(w, http.StatusOK, map[string]any{
		"total": s.store.Len(),
		"sha":   s.sha,
	})
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	if s.Repo == nil {
		writeError(w, http.StatusServiceUnavailable, "no catalog repository configured")
		return
	}
	if !s.busy.CompareAndSwap(false, true) {
		writeError(w, http.StatusConflict, "another refresh or commit is in progress")
		return
	}
	defer s.busy.Store(false)

	s.mu.Lock()
	content, err := s.editor.Serialize()
	sha := s.sha
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	newSHA, err := s.Repo.Commit(r.Context(), content, sha, ghrepo.CommitMessage())
	if err != nil {
		writeError(w, ghStatus(err), err.Error())
		return
	}

	s.mu.Lock()
	s.sha = newSHA
	s.mu.Unlock()

	utils.Log.Infof("Catalog committed, new revision %s", newSHA)
	writeJSON(w, http.StatusOK, map[string]string{"sha": newSHA})
}
