// Package store persists canvas documents.
//
// A [Store] keeps named documents ([Record]) under stable IDs. Four
// backends share the interface:
//   - memory: in-process map for tests and throwaway servers
//   - file: one JSON file per document for single-user setups
//   - redis: Redis-backed storage for multi-instance deployments
//   - mongo: MongoDB-backed storage with queryable metadata
//
// Missing documents surface as coded errors
// ([errors.CodeNotFound]); transient backend failures are wrapped
// [Retryable] so [Retry] knows to attempt them again. [Open]
// constructs the backend selected by a [Config].
package store

import (
	"context"
	"time"

	"github.com/patchbaylabs/patchbay/pkg/canvas"
	"github.com/patchbaylabs/patchbay/pkg/errors"
)

// Record is a stored document plus its identity and timestamps.
type Record struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Document  canvas.Document `json:"document"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	out.Document = r.Document.Clone()
	return &out
}

// Info is record metadata plus collection counts, as returned by
// [Store.List]. The document body is not loaded.
type Info struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Nodes       int       `json:"nodes"`
	Connections int       `json:"connections"`
}

// infoOf derives the listing metadata from a record.
func infoOf(r *Record) Info {
	return Info{
		ID:          r.ID,
		Name:        r.Name,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Nodes:       len(r.Document.Nodes),
		Connections: len(r.Document.Connections),
	}
}

// Store is the document persistence interface. Implementations are
// safe for concurrent use.
type Store interface {
	// Get loads the record with the given ID. Missing documents
	// return an error with code errors.CodeNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Put upserts the record, stamping UpdatedAt (and CreatedAt on
	// first write).
	Put(ctx context.Context, rec *Record) error

	// Delete removes the record. Deleting a missing document is not
	// an error.
	Delete(ctx context.Context, id string) error

	// List returns metadata for every stored document, most recently
	// updated first.
	List(ctx context.Context) ([]Info, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and parameterizes a backend.
type Config struct {
	// Backend is one of "memory", "file", "redis", "mongo".
	Backend string

	// Dir is the file backend's base directory. Empty means the
	// default under the user's data directory.
	Dir string

	// RedisAddr and RedisDB parameterize the redis backend.
	RedisAddr string
	RedisDB   int

	// MongoURI and MongoDB parameterize the mongo backend.
	MongoURI string
	MongoDB  string
}

// Open constructs the backend selected by cfg.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if err := errors.ValidateBackend(cfg.Backend); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(cfg.Dir)
	case "redis":
		return NewRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	case "mongo":
		return NewMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	}
	// Unreachable: ValidateBackend covers the set.
	return nil, errors.New(errors.CodeConfigInvalid, "unknown store backend %q", cfg.Backend)
}

// notFound builds the canonical missing-document error.
func notFound(id string) error {
	return errors.New(errors.CodeNotFound, "document %s not found", id)
}

// stamp fills the record timestamps before a write.
func stamp(rec *Record, existing *time.Time) {
	now := time.Now().UTC()
	if existing != nil && !existing.IsZero() {
		rec.CreatedAt = *existing
	} else if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
}
