package pipeline

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/config"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/rules"
	"github.com/MikeMontana1968/LazyShopRiteAisleMapper/internal/storage"
)

// Locator finds the store location for a lookup term. The HTTP client in
// internal/lookup implements it; tests substitute fakes.
type Locator interface {
	Locate(ctx context.Context, term string) (*internal.ItemLocation, error)
}

// ResolveService parses stored lists and attaches aisle locations,
// cache-first. Lookup failures degrade to an unresolved item; they never
// abort a run.
type ResolveService struct {
	db      *storage.DB
	cfg     config.Config
	ruleset *rules.Ruleset
	locator Locator
	log     *slog.Logger
}

func NewResolveService(db *storage.DB, cfg config.Config, rs *rules.Ruleset, locator Locator, log *slog.Logger) *ResolveService {
	if log == nil {
		log = slog.Default()
	}
	return &ResolveService{db: db, cfg: cfg, ruleset: rs, locator: locator, log: log}
}

type ProcessResult struct {
	ListID   int
	Items    int
	Resolved int
	Unknown  int
}

// ResolveItems attaches a location to every non-directive item: cache hit,
// then the lookup API, updating the cache after an API hit.
func (s *ResolveService) ResolveItems(ctx context.Context, items []internal.ParsedItem) []internal.ResolvedItem {
	out := make([]internal.ResolvedItem, 0, len(items))
	for _, item := range items {
		resolved := internal.ResolvedItem{ParsedItem: item}
		if !item.IsDirective() && item.LookupTerm != nil && *item.LookupTerm != "" {
			resolved.Location = s.locate(ctx, *item.LookupTerm)
		}
		out = append(out, resolved)
	}
	return out
}

func (s *ResolveService) locate(ctx context.Context, term string) *internal.ItemLocation {
	cached, err := s.db.GetLocation(term)
	if err != nil {
		s.log.Warn("location cache read failed", "term", term, "err", err)
	}
	if cached != nil {
		return cached
	}

	if s.locator == nil {
		return nil
	}
	loc, err := s.locator.Locate(ctx, term)
	if err != nil {
		s.log.Warn("aisle lookup failed", "term", term, "err", err)
		return nil
	}
	if loc == nil {
		return nil
	}
	if err := s.db.PutLocation(*loc); err != nil {
		s.log.Warn("location cache write failed", "term", term, "err", err)
	}
	return loc
}

func (s *ResolveService) ProcessByProviderMessageID(ctx context.Context, provider, messageID string) (ProcessResult, error) {
	list, err := s.db.MustListByProviderMessageID(provider, messageID)
	if err != nil {
		return ProcessResult{}, err
	}
	return s.ProcessList(ctx, list)
}

func (s *ResolveService) ProcessPending(ctx context.Context, limit int, provider string) (int, int, error) {
	pending, err := s.db.ListListsByStatus("fetched", limit)
	if err != nil {
		return 0, 0, err
	}
	processedLists := 0
	processedItems := 0
	for _, list := range pending {
		if provider != "" && list.Provider != provider {
			continue
		}
		res, err := s.ProcessList(ctx, list)
		if err != nil {
			return processedLists, processedItems, err
		}
		processedLists++
		processedItems += res.Items
	}
	return processedLists, processedItems, nil
}

// ProcessList reads a stored list's raw message, parses it, resolves
// locations, and persists the resolved items.
func (s *ResolveService) ProcessList(ctx context.Context, list internal.ListRow) (ProcessResult, error) {
	start := time.Now()
	raw, err := os.ReadFile(list.RawRef)
	if err != nil {
		return ProcessResult{}, err
	}

	doc, err := DocumentFromMessage(raw)
	if err != nil || doc == "" {
		doc = string(raw)
	}

	items := ParseDocument(doc, s.ruleset)
	resolved := s.ResolveItems(ctx, items)

	if err := s.db.ClearListItems(list.ID); err != nil {
		return ProcessResult{}, err
	}
	directives, resolvedCount, unknownCount := 0, 0, 0
	for i, item := range resolved {
		if err := s.db.InsertListItem(list.ID, i+1, item); err != nil {
			return ProcessResult{}, err
		}
		switch {
		case item.IsDirective():
			directives++
		case item.Location != nil:
			resolvedCount++
		default:
			unknownCount++
		}
	}

	if err := s.db.UpdateListStatus(list.ID, "processed"); err != nil {
		return ProcessResult{}, err
	}
	_ = s.db.InsertRun(traceID(), list.ID,
		map[string]float64{"totalMs": float64(time.Since(start).Milliseconds())},
		map[string]int{"items": len(resolved), "directives": directives, "resolved": resolvedCount, "unknown": unknownCount})

	s.log.Info("list processed",
		"listId", list.ID,
		"items", len(resolved),
		"resolved", resolvedCount,
		"unknown", unknownCount,
	)

	return ProcessResult{ListID: list.ID, Items: len(resolved), Resolved: resolvedCount, Unknown: unknownCount}, nil
}

func traceID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("run-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
