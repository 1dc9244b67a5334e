package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/blog-content-api/internal/cache"
	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/kvstore"
	"github.com/blog-content-api/internal/markdown"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/slug"
	"github.com/rs/zerolog"
)

// exportConcurrency bounds the parallel full-record fetches during export.
const exportConcurrency = 8

// lossNotice replaces the content of articles recreated by Repair.
const lossNotice = "The original content of this article was lost. " +
	"This placeholder was recreated from the surviving index entry."

// ArticleStore keeps the full article records and the SYSTEM_INDEX_LIST
// summary in sync. Every write is a two-step sequence (full record, then
// index) with no atomicity across the two keys; a crash in between is
// recoverable via Repair or detected as absence on read.
type ArticleStore struct {
	kv      kvstore.Store
	counter *Counter
	cfg     config.BlogConfig
	log     zerolog.Logger

	indexCache   *cache.Cache
	articleCache *cache.Cache
}

// NewArticleStore creates an ArticleStore over kv.
func NewArticleStore(kv kvstore.Store, cfg config.BlogConfig, log zerolog.Logger) *ArticleStore {
	return &ArticleStore{
		kv:           kv,
		counter:      NewCounter(kv),
		cfg:          cfg,
		log:          log.With().Str("service", "articles").Logger(),
		indexCache:   cache.New(cfg.IndexCacheTTL),
		articleCache: cache.New(cfg.ArticleCacheTTL),
	}
}

// ListAll returns the index list, newest first. Entries written before the
// status field existed default to published.
//
// Callers always get their own copy: Save and Repair mutate the returned
// slice, and the cached one must never be shared with concurrent readers.
func (s *ArticleStore) ListAll(ctx context.Context) ([]models.IndexEntry, error) {
	if cached, ok := s.indexCache.Get(keyIndexList); ok {
		return copyEntries(cached.([]models.IndexEntry)), nil
	}

	var entries []models.IndexEntry
	if _, err := s.kv.GetJSON(ctx, keyIndexList, &entries); err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	for i := range entries {
		if entries[i].Status == "" {
			entries[i].Status = models.StatusPublished
		}
	}

	s.indexCache.Put(keyIndexList, entries)
	return copyEntries(entries), nil
}

func copyEntries(entries []models.IndexEntry) []models.IndexEntry {
	out := make([]models.IndexEntry, len(entries))
	copy(out, entries)
	return out
}

// ListPublished returns index entries that are not drafts.
func (s *ArticleStore) ListPublished(ctx context.Context) ([]models.IndexEntry, error) {
	return s.listByStatus(ctx, func(e models.IndexEntry) bool {
		return e.Status != models.StatusDraft
	})
}

// ListDrafts returns draft index entries.
func (s *ArticleStore) ListDrafts(ctx context.Context) ([]models.IndexEntry, error) {
	return s.listByStatus(ctx, func(e models.IndexEntry) bool {
		return e.Status == models.StatusDraft
	})
}

func (s *ArticleStore) listByStatus(ctx context.Context, keep func(models.IndexEntry) bool) ([]models.IndexEntry, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]models.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// ListPaginated returns one page of the index filtered by status ("published",
// "draft" or "all"). Out-of-range pages clamp into [1, totalPages]; a
// non-positive pageSize falls back to the configured default.
func (s *ArticleStore) ListPaginated(ctx context.Context, page, pageSize int, status string) (*models.ArticlePage, error) {
	var entries []models.IndexEntry
	var err error
	switch status {
	case models.StatusDraft:
		entries, err = s.ListDrafts(ctx)
	case models.StatusPublished:
		entries, err = s.ListPublished(ctx)
	default:
		entries, err = s.ListAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = s.cfg.PageSize
	}

	total := len(entries)
	totalPages := (total + pageSize - 1) / pageSize

	validPage := page
	if validPage < 1 {
		validPage = 1
	}
	if totalPages > 0 && validPage > totalPages {
		validPage = totalPages
	}

	start := (validPage - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &models.ArticlePage{
		Articles: entries[start:end],
		Pagination: models.Pagination{
			Page:          validPage,
			PageSize:      pageSize,
			TotalArticles: total,
			TotalPages:    totalPages,
			HasNextPage:   validPage < totalPages,
			HasPrevPage:   validPage > 1,
		},
	}, nil
}

// Get fetches the full record for id. Returns ErrNotFound when absent.
func (s *ArticleStore) Get(ctx context.Context, id string) (*models.Article, error) {
	if cached, ok := s.articleCache.Get(id); ok {
		return cached.(*models.Article), nil
	}

	var article models.Article
	found, err := s.kv.GetJSON(ctx, id, &article)
	if err != nil {
		return nil, fmt.Errorf("read article %s: %w", id, err)
	}
	if !found {
		return nil, ErrNotFound
	}

	s.articleCache.Put(id, &article)
	return &article, nil
}

// GetByPermalink scans the index for permalink and fetches the full record.
// An index entry whose full record is missing yields ErrNotFound rather than
// a partial object. The index status wins over the stored status: the index
// is the authoritative filterable view.
func (s *ArticleStore) GetByPermalink(ctx context.Context, permalink string) (*models.Article, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.Permalink != permalink {
			continue
		}
		full, err := s.Get(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		merged := *full
		// Status fallback order: index entry, stored record, published.
		switch {
		case e.Status != "":
			merged.Status = e.Status
		case full.Status != "":
			merged.Status = full.Status
		default:
			merged.Status = models.StatusPublished
		}
		return &merged, nil
	}
	return nil, ErrNotFound
}

// Save persists an article and upserts its index entry. A missing id is
// allocated from the counter; a missing permalink is derived from the title
// and made unique against the index. Returns the final id.
//
// The full record and the index are written in sequence without atomicity; a
// failure between the two writes leaves an orphan recoverable by Repair.
func (s *ArticleStore) Save(ctx context.Context, article *models.Article) (string, error) {
	if article.ID == "" {
		id, err := s.counter.Next(ctx)
		if err != nil {
			return "", err
		}
		article.ID = id
	}

	if article.Permalink == "" && article.Title != "" {
		entries, err := s.ListAll(ctx)
		if err != nil {
			return "", err
		}
		taken := make(map[string]string, len(entries))
		for _, e := range entries {
			taken[e.Permalink] = e.ID
		}
		article.Permalink = slug.EnsureUnique(slug.Make(article.Title), taken, article.ID)
	}

	if article.Status == "" {
		article.Status = models.StatusPublished
	}
	if article.CreateDate == "" {
		article.CreateDate = time.Now().UTC().Format(time.RFC3339)
	}
	if article.ContentMarkdown == "" {
		article.ContentMarkdown = article.Content
	}
	article.Excerpt = markdown.Excerpt(article.ContentMarkdown, s.cfg.ExcerptLength)

	if err := s.kv.PutJSON(ctx, article.ID, article); err != nil {
		return "", fmt.Errorf("save article %s: %w", article.ID, err)
	}
	s.articleCache.Invalidate(article.ID)

	entries, err := s.ListAll(ctx)
	if err != nil {
		return "", err
	}

	entry := models.IndexEntryOf(article)
	replaced := false
	for i := range entries {
		if entries[i].ID == article.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append([]models.IndexEntry{entry}, entries...)
	}

	sortByCreateDateDesc(entries)

	if err := s.writeIndex(ctx, entries); err != nil {
		return "", err
	}

	s.log.Debug().Str("id", article.ID).Str("permalink", article.Permalink).Msg("Article saved")
	return article.ID, nil
}

// Update loads the article behind permalink and applies a field-level merge of
// the supplied patch, preserving the identifier.
func (s *ArticleStore) Update(ctx context.Context, permalink string, patch *models.ArticlePatch) (*models.Article, error) {
	existing, err := s.GetByPermalink(ctx, permalink)
	if err != nil {
		return nil, err
	}
	merged := models.Merge(existing, patch)
	if _, err := s.Save(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Delete removes the full record and its index entry.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete article %s: %w", id, err)
	}
	s.articleCache.Invalidate(id)

	entries, err := s.ListAll(ctx)
	if err != nil {
		return err
	}
	filtered := make([]models.IndexEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			filtered = append(filtered, e)
		}
	}
	return s.writeIndex(ctx, filtered)
}

// ExportAll fetches every full record referenced by the index, in index order.
// Entries whose full record is missing are silently omitted: the export is a
// best-effort snapshot, not an integrity check.
func (s *ArticleStore) ExportAll(ctx context.Context) ([]models.Article, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*models.Article, len(entries))
	sem := make(chan struct{}, exportConcurrency)
	var wg sync.WaitGroup
	for i, e := range entries {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			article, err := s.Get(ctx, id)
			if err != nil {
				return
			}
			results[i] = article
		}(i, e.ID)
	}
	wg.Wait()

	out := make([]models.Article, 0, len(entries))
	for _, a := range results {
		if a != nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

// ImportMany saves each payload in turn, preserving caller-supplied ids and
// allocating identifiers for the rest. Failures are collected per item and do
// not abort the batch.
func (s *ArticleStore) ImportMany(ctx context.Context, articles []models.Article) *models.ImportResult {
	result := &models.ImportResult{Errors: []models.ImportError{}}
	for i := range articles {
		article := articles[i]
		if _, err := s.Save(ctx, &article); err != nil {
			title := article.Title
			if title == "" {
				title = "Unknown"
			}
			result.Errors = append(result.Errors, models.ImportError{Title: title, Error: err.Error()})
			continue
		}
		result.Imported++
	}
	return result
}

// Categories counts label occurrences across published articles. Articles
// without a label are skipped.
func (s *ArticleStore) Categories(ctx context.Context) (map[string]int, error) {
	entries, err := s.ListPublished(ctx)
	if err != nil {
		return nil, err
	}
	categories := make(map[string]int)
	for _, e := range entries {
		if e.Label != "" {
			categories[e.Label]++
		}
	}
	return categories, nil
}

// Repair recreates a placeholder full record for every index entry whose
// record is absent. Recovered articles are forced to draft and their content
// replaced with a loss notice, in the store and in the index. Returns the
// repaired ids.
func (s *ArticleStore) Repair(ctx context.Context) ([]string, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var repaired []string
	for i := range entries {
		e := entries[i]
		var existing models.Article
		found, err := s.kv.GetJSON(ctx, e.ID, &existing)
		if err != nil {
			return repaired, fmt.Errorf("check article %s: %w", e.ID, err)
		}
		if found {
			continue
		}

		placeholder := models.Article{
			ID:              e.ID,
			Title:           e.Title,
			Permalink:       e.Permalink,
			Label:           e.Label,
			Img:             e.Img,
			CreateDate:      e.CreateDate,
			Content:         lossNotice,
			ContentMarkdown: lossNotice,
			Excerpt:         e.Excerpt,
			Status:          models.StatusDraft,
		}
		if err := s.kv.PutJSON(ctx, e.ID, &placeholder); err != nil {
			return repaired, fmt.Errorf("recreate article %s: %w", e.ID, err)
		}
		s.articleCache.Invalidate(e.ID)
		entries[i].Status = models.StatusDraft
		repaired = append(repaired, e.ID)
		s.log.Warn().Str("id", e.ID).Msg("Recreated missing article record as draft")
	}

	if len(repaired) > 0 {
		if err := s.writeIndex(ctx, entries); err != nil {
			return repaired, err
		}
	}
	return repaired, nil
}

// DebugEntry pairs an index entry with its full record, if any.
type DebugEntry struct {
	Index  models.IndexEntry `json:"index"`
	Full   *models.Article   `json:"full"`
	Exists bool              `json:"exists"`
}

// DebugReport is a full dump of the index/record relationship, used to inspect
// data-integrity problems.
type DebugReport struct {
	Index          []models.IndexEntry `json:"index"`
	Articles       []DebugEntry        `json:"allArticles"`
	Total          int                 `json:"total"`
	SystemIndexNum string              `json:"systemIndexNum"`
}

// Debug reports every index entry together with whether its full record
// exists, plus the raw counter value.
func (s *ArticleStore) Debug(ctx context.Context) (*DebugReport, error) {
	entries, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	report := &DebugReport{
		Index:    entries,
		Articles: make([]DebugEntry, 0, len(entries)),
		Total:    len(entries),
	}
	for _, e := range entries {
		var article models.Article
		found, err := s.kv.GetJSON(ctx, e.ID, &article)
		if err != nil {
			return nil, fmt.Errorf("check article %s: %w", e.ID, err)
		}
		entry := DebugEntry{Index: e, Exists: found}
		if found {
			entry.Full = &article
		}
		report.Articles = append(report.Articles, entry)
	}

	raw, _, err := s.kv.Get(ctx, keyIndexNum)
	if err != nil {
		return nil, err
	}
	report.SystemIndexNum = raw
	return report, nil
}

// InvalidateCaches drops the advisory caches. Reads fall through to the store.
func (s *ArticleStore) InvalidateCaches() {
	s.indexCache.Clear()
	s.articleCache.Clear()
}

func (s *ArticleStore) writeIndex(ctx context.Context, entries []models.IndexEntry) error {
	if err := s.kv.PutJSON(ctx, keyIndexList, entries); err != nil {
		return fmt.Errorf("persist index: %w", err)
	}
	s.indexCache.Clear()
	return nil
}

func sortByCreateDateDesc(entries []models.IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return createdAfter(entries[i].CreateDate, entries[j].CreateDate)
	})
}

// createdAfter reports whether a sorts before b in a createDate-descending
// index. Parseable dates compare as times; anything else falls back to string
// comparison, which matches chronological order for ISO-8601 values.
func createdAfter(a, b string) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	if okA && okB {
		return ta.After(tb)
	}
	return a > b
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
