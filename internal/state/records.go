package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/darrencarlin/reddit-scanner/internal/reddit"
)

const keyPrefix = "post:"

// Key returns the store key for a post identifier.
func Key(id string) string {
	return keyPrefix + id
}

// Record is the persisted form of a post: the post fields verbatim plus the
// time it was stored, which drives retention.
type Record struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Permalink  string `json:"permalink"`
	Author     string `json:"author"`
	CreatedUTC int64  `json:"created_utc"`
	Score      int    `json:"score"`
	URL        string `json:"url"`
	SelfText   string `json:"selftext,omitempty"`
	StoredAt   int64  `json:"stored_at"` // epoch milliseconds
}

// Records is the record archive kept under "post:" keys in a Store.
type Records struct {
	store Store
}

func NewRecords(store Store) *Records {
	return &Records{store: store}
}

// LoadAll returns every readable record. Individual keys that are missing,
// unreadable or malformed are skipped so one bad record cannot block the
// rest; a failed listing yields an empty slice so the caller treats every
// candidate as new rather than ingesting nothing.
func (r *Records) LoadAll(ctx context.Context) []Record {
	keys, err := r.store.List(ctx, keyPrefix)
	if err != nil {
		slog.Error("Failed to list stored records", "error", err)
		return nil
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		val, ok, err := r.store.Get(ctx, key)
		if err != nil {
			slog.Error("Failed to read stored record", "key", key, "error", err)
			continue
		}
		if !ok {
			continue
		}

		var rec Record
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			slog.Warn("Skipping malformed record", "key", key, "error", err)
			continue
		}
		records = append(records, rec)
	}

	return records
}

// Save writes the post as a record, stamping the storage time. Re-saving the
// same post overwrites the previous record.
func (r *Records) Save(ctx context.Context, post reddit.Post) error {
	rec := Record{
		ID:         post.ID,
		Title:      post.Title,
		Permalink:  post.Permalink,
		Author:     post.Author,
		CreatedUTC: post.CreatedUTC,
		Score:      post.Score,
		URL:        post.URL,
		SelfText:   post.SelfText,
		StoredAt:   time.Now().UnixMilli(),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return r.store.Put(ctx, Key(rec.ID), string(data))
}

// Remove deletes a single record by key.
func (r *Records) Remove(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}
