package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/kvstore"
	"github.com/blog-content-api/internal/models"
	"github.com/rs/zerolog"
)

func newTestStore() (*ArticleStore, *kvstore.MemoryStore) {
	kv := kvstore.NewMemoryStore()
	cfg := config.BlogConfig{
		PageSize:        10,
		ExcerptLength:   150,
		IndexCacheTTL:   time.Minute,
		ArticleCacheTTL: time.Minute,
	}
	return NewArticleStore(kv, cfg, zerolog.Nop()), kv
}

func TestSaveAssignsIDAndPermalink(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{
		Title:      "Hello World!",
		Content:    "# Hi\n\nBody",
		CreateDate: "2024-01-01",
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id != "000001" {
		t.Errorf("Expected id 000001, got %q", id)
	}

	article, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if article.Permalink != "hello-world" {
		t.Errorf("Expected permalink hello-world, got %q", article.Permalink)
	}
	if article.Status != models.StatusPublished {
		t.Errorf("Expected default status published, got %q", article.Status)
	}
	if article.ContentMarkdown != "# Hi\n\nBody" {
		t.Errorf("Expected contentMarkdown backfilled from content, got %q", article.ContentMarkdown)
	}
	if article.Excerpt != "Hi Body" {
		t.Errorf("Expected excerpt from stripped markdown, got %q", article.Excerpt)
	}
}

func TestSavePermalinkCollision(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	first, err := s.Save(ctx, &models.Article{Title: "Hello World!", Content: "one"})
	if err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	second, err := s.Save(ctx, &models.Article{Title: "Hello World!", Content: "two"})
	if err != nil {
		t.Fatalf("Second save failed: %v", err)
	}
	if first == second {
		t.Fatal("Expected distinct ids")
	}

	a2, err := s.Get(ctx, second)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if a2.Permalink != "hello-world-1" {
		t.Errorf("Expected collision suffix hello-world-1, got %q", a2.Permalink)
	}
}

func TestSaveExistingIDReplacesIndexEntry(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{Title: "Original", Content: "v1"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := s.Save(ctx, &models.Article{ID: id, Title: "Updated", Permalink: "original", Content: "v2"}); err != nil {
		t.Fatalf("Re-save failed: %v", err)
	}

	entries, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 index entry after re-save, got %d", len(entries))
	}
	if entries[0].Title != "Updated" {
		t.Errorf("Expected index entry to carry the new title, got %q", entries[0].Title)
	}
}

func TestIndexSortedByCreateDateDesc(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.Save(ctx, &models.Article{Title: "Older", Content: "a", CreateDate: "2024-01-01"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, &models.Article{Title: "Newer", Content: "b", CreateDate: "2024-03-01"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := s.Save(ctx, &models.Article{Title: "Middle", Content: "c", CreateDate: "2024-02-01"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	entries, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	want := []string{"Newer", "Middle", "Older"}
	for i, title := range want {
		if entries[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, entries[i].Title)
		}
	}
}

func TestListPaginatedClamping(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	for _, day := range []string{"01", "02", "03", "04", "05"} {
		if _, err := s.Save(ctx, &models.Article{Title: "Post " + day, Content: "x", CreateDate: "2024-01-" + day}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	// Page below range clamps to 1.
	page, err := s.ListPaginated(ctx, 0, 2, models.StatusPublished)
	if err != nil {
		t.Fatalf("ListPaginated failed: %v", err)
	}
	if page.Pagination.Page != 1 {
		t.Errorf("Expected page clamped to 1, got %d", page.Pagination.Page)
	}
	if len(page.Articles) != 2 {
		t.Errorf("Expected 2 articles on first page, got %d", len(page.Articles))
	}
	if page.Pagination.TotalArticles != 5 || page.Pagination.TotalPages != 3 {
		t.Errorf("Expected 5 articles over 3 pages, got %d over %d",
			page.Pagination.TotalArticles, page.Pagination.TotalPages)
	}
	if !page.Pagination.HasNextPage || page.Pagination.HasPrevPage {
		t.Error("First page should have next but not prev")
	}

	// Page above range clamps to the last page.
	page, err = s.ListPaginated(ctx, 999, 2, models.StatusPublished)
	if err != nil {
		t.Fatalf("ListPaginated failed: %v", err)
	}
	if page.Pagination.Page != 3 {
		t.Errorf("Expected page clamped to 3, got %d", page.Pagination.Page)
	}
	if len(page.Articles) != 1 {
		t.Errorf("Expected 1 article on last page, got %d", len(page.Articles))
	}

	// Non-positive pageSize falls back to the configured default.
	page, err = s.ListPaginated(ctx, 1, 0, models.StatusPublished)
	if err != nil {
		t.Fatalf("ListPaginated failed: %v", err)
	}
	if page.Pagination.PageSize != 10 {
		t.Errorf("Expected default page size 10, got %d", page.Pagination.PageSize)
	}
}

func TestGetByPermalinkIndexStatusWins(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{Title: "Posted", Content: "x", Status: models.StatusPublished})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Flip the index entry to draft while the record still says published.
	var entries []models.IndexEntry
	if _, err := kv.GetJSON(ctx, keyIndexList, &entries); err != nil {
		t.Fatalf("Read index failed: %v", err)
	}
	entries[0].Status = models.StatusDraft
	if err := kv.PutJSON(ctx, keyIndexList, entries); err != nil {
		t.Fatalf("Write index failed: %v", err)
	}
	s.InvalidateCaches()

	article, err := s.GetByPermalink(ctx, "posted")
	if err != nil {
		t.Fatalf("GetByPermalink failed: %v", err)
	}
	if article.ID != id {
		t.Errorf("Expected id %q, got %q", id, article.ID)
	}
	if article.Status != models.StatusDraft {
		t.Errorf("Expected index status to win, got %q", article.Status)
	}
}

func TestGetByPermalinkMissingRecord(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	entries := []models.IndexEntry{{ID: "000009", Title: "Ghost", Permalink: "ghost", Status: models.StatusPublished}}
	if err := kv.PutJSON(ctx, keyIndexList, entries); err != nil {
		t.Fatalf("Write index failed: %v", err)
	}

	if _, err := s.GetByPermalink(ctx, "ghost"); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound for orphan index entry, got %v", err)
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{Title: "Before", Content: "old", Label: "tech"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	newTitle := "After"
	updated, err := s.Update(ctx, "before", &models.ArticlePatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != id {
		t.Errorf("Expected id preserved, got %q", updated.ID)
	}
	if updated.Title != "After" {
		t.Errorf("Expected patched title, got %q", updated.Title)
	}
	if updated.Label != "tech" {
		t.Errorf("Expected unpatched label to survive, got %q", updated.Label)
	}
	if updated.Permalink != "before" {
		t.Errorf("Expected permalink untouched, got %q", updated.Permalink)
	}
}

func TestDeleteRemovesRecordAndIndexEntry(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{Title: "Doomed", Content: "x"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Delete(ctx, id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, err := s.Get(ctx, id); err != ErrNotFound {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}
	entries, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty index after delete, got %d entries", len(entries))
	}
}

func TestExportAllOmitsMissingRecords(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	if _, err := s.Save(ctx, &models.Article{Title: "Kept", Content: "x", CreateDate: "2024-01-02"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	id2, err := s.Save(ctx, &models.Article{Title: "Lost", Content: "y", CreateDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Simulate a lost full record with a surviving index entry.
	if err := kv.Delete(ctx, id2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	s.InvalidateCaches()

	out, err := s.ExportAll(ctx)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("Expected 1 exported article, got %d", len(out))
	}
	if out[0].Title != "Kept" {
		t.Errorf("Expected surviving article, got %q", out[0].Title)
	}
}

func TestImportMany(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	result := s.ImportMany(ctx, []models.Article{
		{Title: "First", Content: "a"},
		{Title: "Second", Content: "b"},
	})
	if result.Imported != 2 {
		t.Errorf("Expected 2 imported, got %d", result.Imported)
	}
	if len(result.Errors) != 0 {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}

	entries, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 index entries, got %d", len(entries))
	}
}

func TestCategories(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	seed := []models.Article{
		{Title: "A", Content: "x", Label: "go"},
		{Title: "B", Content: "x", Label: "go"},
		{Title: "C", Content: "x", Label: "web"},
		{Title: "D", Content: "x"},
		{Title: "E", Content: "x", Label: "hidden", Status: models.StatusDraft},
	}
	for i := range seed {
		if _, err := s.Save(ctx, &seed[i]); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if categories["go"] != 2 {
		t.Errorf("Expected go=2, got %d", categories["go"])
	}
	if categories["web"] != 1 {
		t.Errorf("Expected web=1, got %d", categories["web"])
	}
	if _, ok := categories["hidden"]; ok {
		t.Error("Draft labels must not be counted")
	}
	if _, ok := categories[""]; ok {
		t.Error("Unlabeled articles must not be counted")
	}
}

func TestRepairRecreatesMissingRecords(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	entries := []models.IndexEntry{{
		ID:         "000007",
		Title:      "Vanished",
		Permalink:  "vanished",
		CreateDate: "2024-01-01",
		Status:     models.StatusPublished,
	}}
	if err := kv.PutJSON(ctx, keyIndexList, entries); err != nil {
		t.Fatalf("Write index failed: %v", err)
	}

	repaired, err := s.Repair(ctx)
	if err != nil {
		t.Fatalf("Repair failed: %v", err)
	}
	if len(repaired) != 1 || repaired[0] != "000007" {
		t.Fatalf("Expected [000007] repaired, got %v", repaired)
	}

	article, err := s.Get(ctx, "000007")
	if err != nil {
		t.Fatalf("Get after repair failed: %v", err)
	}
	if article.Status != models.StatusDraft {
		t.Errorf("Recovered article must be a draft, got %q", article.Status)
	}
	if article.Content != lossNotice {
		t.Errorf("Expected loss notice content, got %q", article.Content)
	}

	// The index entry is demoted to draft as well.
	s.InvalidateCaches()
	all, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if all[0].Status != models.StatusDraft {
		t.Errorf("Expected index entry demoted to draft, got %q", all[0].Status)
	}

	// A second run finds nothing to do.
	repaired, err = s.Repair(ctx)
	if err != nil {
		t.Fatalf("Second repair failed: %v", err)
	}
	if len(repaired) != 0 {
		t.Errorf("Expected idempotent repair, got %v", repaired)
	}
}

func TestDebugReport(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	if _, err := s.Save(ctx, &models.Article{Title: "Present", Content: "x", CreateDate: "2024-01-02"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	id2, err := s.Save(ctx, &models.Article{Title: "Absent", Content: "y", CreateDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := kv.Delete(ctx, id2); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	s.InvalidateCaches()

	report, err := s.Debug(ctx)
	if err != nil {
		t.Fatalf("Debug failed: %v", err)
	}
	if report.Total != 2 {
		t.Errorf("Expected 2 index entries, got %d", report.Total)
	}
	if report.SystemIndexNum != "2" {
		t.Errorf("Expected raw counter 2, got %q", report.SystemIndexNum)
	}
	exists := map[string]bool{}
	for _, e := range report.Articles {
		exists[e.Index.Title] = e.Exists
	}
	if !exists["Present"] {
		t.Error("Expected Present to have a full record")
	}
	if exists["Absent"] {
		t.Error("Expected Absent to be flagged as missing")
	}
}

func TestLegacyIndexEntriesDefaultToPublished(t *testing.T) {
	s, kv := newTestStore()
	ctx := context.Background()

	// Entries written before the status field existed have no status.
	entries := []models.IndexEntry{{ID: "000001", Title: "Old", Permalink: "old"}}
	if err := kv.PutJSON(ctx, keyIndexList, entries); err != nil {
		t.Fatalf("Write index failed: %v", err)
	}

	published, err := s.ListPublished(ctx)
	if err != nil {
		t.Fatalf("ListPublished failed: %v", err)
	}
	if len(published) != 1 {
		t.Fatalf("Expected legacy entry to be published, got %d entries", len(published))
	}
	if published[0].Status != models.StatusPublished {
		t.Errorf("Expected published, got %q", published[0].Status)
	}
}

func TestListAllReturnsIndependentSlices(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	if _, err := s.Save(ctx, &models.Article{Title: "Stable", Content: "x"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	first[0].Title = "mutated"

	second, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if second[0].Title != "Stable" {
		t.Errorf("Caller mutation leaked into the cached index: got %q", second[0].Title)
	}
}

func TestConcurrentListAndSave(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	id, err := s.Save(ctx, &models.Article{Title: "Contended", Content: "x", CreateDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Readers must never observe the writer's in-place index mutation.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			entries, err := s.ListAll(ctx)
			if err != nil {
				t.Errorf("ListAll failed: %v", err)
				return
			}
			for _, e := range entries {
				_ = e.Permalink
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := s.Save(ctx, &models.Article{ID: id, Title: "Contended", Permalink: "contended", Content: "x", CreateDate: "2024-01-01"}); err != nil {
				t.Errorf("Save failed: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, err := s.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected 1 index entry after concurrent re-saves, got %d", len(entries))
	}
}

func TestCounterSequence(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	counter := NewCounter(kv)
	ctx := context.Background()

	first, err := counter.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if first != "000001" {
		t.Errorf("Expected 000001, got %q", first)
	}

	second, err := counter.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if second != "000002" {
		t.Errorf("Expected 000002, got %q", second)
	}
}

func TestCounterRecoversFromGarbage(t *testing.T) {
	kv := kvstore.NewMemoryStore()
	ctx := context.Background()
	if err := kv.Put(ctx, keyIndexNum, "not-a-number"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	counter := NewCounter(kv)
	id, err := counter.Next(ctx)
	if err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if id != "000001" {
		t.Errorf("Expected counter reset to 000001, got %q", id)
	}
}
