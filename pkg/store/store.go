// Package store keeps analysis reports addressable by ID for the HTTP API.
//
// MemoryStore serves a single process. MongoStore persists reports in a
// MongoDB collection so that any server replica can answer GET /reports/{id}.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/sugarcheck/pkg/errors"
	"github.com/matzehuels/sugarcheck/pkg/pipeline"
)

// DefaultListLimit is the number of summaries returned by List when limit
// is not positive.
const DefaultListLimit = 50

// Store persists reports.
type Store interface {
	// Put stores rep and returns its ID. An empty rep.ID is replaced by a
	// new random ID.
	Put(ctx context.Context, rep *pipeline.Report) (string, error)
	// Get returns the report stored under id, or an error with code
	// REPORT_NOT_FOUND.
	Get(ctx context.Context, id string) (*pipeline.Report, error)
	// List returns summaries of the newest reports first.
	List(ctx context.Context, limit int) ([]Summary, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

// Summary describes a stored report without its records.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Structure string    `json:"structure" bson:"structure"`
	Hash      string    `json:"hash" bson:"hash"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	Sugars    int       `json:"sugars" bson:"sugars"`
}

func summarize(rep *pipeline.Report) Summary {
	return Summary{
		ID:        rep.ID,
		Structure: rep.Structure,
		Hash:      rep.Hash,
		CreatedAt: rep.CreatedAt,
		Sugars:    len(rep.Sugars),
	}
}

// NewID returns a new random report ID.
func NewID() string {
	return uuid.NewString()
}

// ValidateID checks that id is a report ID produced by NewID.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid report ID %q", id)
	}
	return nil
}

func assignID(rep *pipeline.Report) {
	if rep.ID == "" {
		rep.ID = NewID()
	}
	if rep.CreatedAt.IsZero() {
		rep.CreatedAt = time.Now().UTC()
	}
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeReportNotFound, "report %s not found", id)
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
