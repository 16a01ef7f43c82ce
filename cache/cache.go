package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/use-agent/bookmeta/models"
)

// Store caches lookup results. Implementations must be safe for concurrent
// use and treat backend failures as misses.
type Store interface {
	Get(ctx context.Context, key string) (*models.BookRecord, bool)
	Set(ctx context.Context, key string, rec *models.BookRecord)
}

// Key generates a cache key from the normalized query and any options that
// change the resulting record.
func Key(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// clone returns a deep copy so cached records never alias caller state.
func clone(rec *models.BookRecord) *models.BookRecord {
	if rec == nil {
		return nil
	}
	c := *rec
	c.Authors = append([]string{}, rec.Authors...)
	return &c
}
