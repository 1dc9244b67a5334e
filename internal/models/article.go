package models

// Article status values
const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// Article is the full record stored in the key-value store under its own
// identifier key. The identifier is a 6-digit zero-padded decimal and is
// immutable once assigned.
type Article struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Permalink       string `json:"permalink"`
	Label           string `json:"label,omitempty"`
	Img             string `json:"img,omitempty"`
	CreateDate      string `json:"createDate"`
	Content         string `json:"content,omitempty"`
	ContentMarkdown string `json:"contentMarkdown,omitempty"`
	Excerpt         string `json:"excerpt,omitempty"`
	Status          string `json:"status"`
}

// IndexEntry is the denormalized article summary kept in the SYSTEM_INDEX_LIST
// record. It carries enough fields to render listings without fetching full
// records and is always sorted by createDate descending.
type IndexEntry struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Img        string `json:"img"`
	Permalink  string `json:"permalink"`
	CreateDate string `json:"createDate"`
	Label      string `json:"label,omitempty"`
	Excerpt    string `json:"excerpt,omitempty"`
	Status     string `json:"status"`
}

// IndexEntryOf builds the index summary for a full article record.
func IndexEntryOf(a *Article) IndexEntry {
	return IndexEntry{
		ID:         a.ID,
		Title:      a.Title,
		Img:        a.Img,
		Permalink:  a.Permalink,
		CreateDate: a.CreateDate,
		Label:      a.Label,
		Excerpt:    a.Excerpt,
		Status:     a.Status,
	}
}

// ArticlePatch carries a partial update. Nil fields were not supplied by the
// caller and leave the stored value untouched.
type ArticlePatch struct {
	Title           *string `json:"title"`
	Permalink       *string `json:"permalink"`
	Label           *string `json:"label"`
	Img             *string `json:"img"`
	CreateDate      *string `json:"createDate"`
	Content         *string `json:"content"`
	ContentMarkdown *string `json:"contentMarkdown"`
	Status          *string `json:"status"`
}

// Merge applies the supplied patch fields onto a copy of the existing article.
// The identifier is always preserved from the existing record.
func Merge(existing *Article, patch *ArticlePatch) *Article {
	merged := *existing
	if patch.Title != nil {
		merged.Title = *patch.Title
	}
	if patch.Permalink != nil {
		merged.Permalink = *patch.Permalink
	}
	if patch.Label != nil {
		merged.Label = *patch.Label
	}
	if patch.Img != nil {
		merged.Img = *patch.Img
	}
	if patch.CreateDate != nil {
		merged.CreateDate = *patch.CreateDate
	}
	if patch.Content != nil {
		merged.Content = *patch.Content
	}
	if patch.ContentMarkdown != nil {
		merged.ContentMarkdown = *patch.ContentMarkdown
	}
	if patch.Status != nil {
		merged.Status = *patch.Status
	}
	merged.ID = existing.ID
	return &merged
}

// Pagination describes one page of the article index.
type Pagination struct {
	Page          int  `json:"page"`
	PageSize      int  `json:"pageSize"`
	TotalArticles int  `json:"totalArticles"`
	TotalPages    int  `json:"totalPages"`
	HasNextPage   bool `json:"hasNextPage"`
	HasPrevPage   bool `json:"hasPrevPage"`
}

// ArticlePage bundles a page of index entries with pagination metadata.
type ArticlePage struct {
	Articles   []IndexEntry `json:"articles"`
	Pagination Pagination   `json:"pagination"`
}

// ImportError records a single failed item from a bulk import.
type ImportError struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportResult summarizes a bulk import. Failures are per-item and never abort
// the batch.
type ImportResult struct {
	Imported int           `json:"imported"`
	Errors   []ImportError `json:"errors"`
}
