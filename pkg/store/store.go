// Package store keeps solve jobs for the HTTP API.
//
// A [Job] records one request to solve a pair of trees, its status and,
// once finished, the encoded result document or the error. Backends:
//   - [MemoryStore]: in-process map for development and tests
//   - [FileStore]: one JSON file per job under a directory
//   - [MongoStore]: a MongoDB collection shared by several API servers
//
// Job IDs are random UUIDs created by [NewJob]. Jobs expire after their TTL;
// Get treats an expired job as missing and Cleanup removes them.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a job does not exist or has expired.
	ErrNotFound = errors.New("job not found")
)

// Status is the state of a job.
type Status string

// Job states.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Finished reports whether s is a final state.
func (s Status) Finished() bool { return s == StatusDone || s == StatusFailed }

// Request is the input of a job.
type Request struct {
	Tree1      string   `json:"tree1" bson:"tree1"`
	Tree2      string   `json:"tree2" bson:"tree2"`
	Budget     int      `json:"budget,omitempty" bson:"budget,omitempty"`
	Candidates []string `json:"candidates,omitempty" bson:"candidates,omitempty"`
}

// Job is a solve request and its outcome.
type Job struct {
	ID      string  `json:"id" bson:"_id"`
	Status  Status  `json:"status" bson:"status"`
	Request Request `json:"request" bson:"request"`

	// Result is the encoded result document of a finished job.
	Result json.RawMessage `json:"result,omitempty" bson:"result,omitempty"`

	// Error and Code describe the failure of a failed job.
	Error string `json:"error,omitempty" bson:"error,omitempty"`
	Code  string `json:"code,omitempty" bson:"code,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// IsExpired returns true if the job has expired.
func (j *Job) IsExpired() bool {
	return time.Now().After(j.ExpiresAt)
}

// DefaultTTL is how long jobs are kept.
const DefaultTTL = 7 * 24 * time.Hour

// NewJob creates a pending job with a fresh ID.
func NewJob(req Request, ttl time.Duration) *Job {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusPending,
		Request:   req,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// Store is the interface for job storage backends.
type Store interface {
	// Get retrieves a job by ID. It returns ErrNotFound for missing and
	// expired jobs.
	Get(ctx context.Context, id string) (*Job, error)

	// Put creates or replaces a job.
	Put(ctx context.Context, job *Job) error

	// Delete removes a job. Deleting a missing job is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired jobs.
	Cleanup(ctx context.Context) error

	// Close releases the backend.
	Close() error
}
