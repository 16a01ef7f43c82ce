package models

// BookRecord is the normalized metadata returned for one catalog entry.
// Every field defaults to empty when the page does not carry it.
type BookRecord struct {
	Title     string   `json:"title"`
	Authors   []string `json:"author"`
	Publisher string   `json:"publisher"`
	PubDate   string   `json:"pubdate"`
	ISBN      string   `json:"isbn"`
	Rating    string   `json:"rating"`
	CoverURL  string   `json:"cover_url"`

	// SourceURL is the detail page the record was parsed from.
	// Not part of the public payload.
	SourceURL string `json:"-"`
}

// NewBookRecord returns a record with all fields at their empty defaults.
// Authors is a non-nil empty slice so it serializes as [] rather than null.
func NewBookRecord() BookRecord {
	return BookRecord{Authors: []string{}}
}

// Found reports whether the record identifies a book (non-empty title).
func (b *BookRecord) Found() bool {
	return b != nil && b.Title != ""
}

// CoverImage is a downloaded cover image.
type CoverImage struct {
	ISBN        string
	ContentType string
	Data        []byte
}
