package reconcile

import (
	"context"
	"time"
)

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionCreate creates a target entity from a source record.
	ActionCreate ActionType = "create"
	// ActionUpdate rewrites an existing target entity from a source record.
	ActionUpdate ActionType = "update"
	// ActionArchive deactivates a target entity whose key vanished from the source.
	ActionArchive ActionType = "archive"
)

// Action represents a planned mutation operation.
// Record is set for create and update, Existing for update and archive.
type Action[R any, T any] struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Key is the join key shared by source and target.
	Key string `json:"key"`

	// Record is the source record driving a create or update.
	Record R `json:"-"`

	// Existing is the target entity an update or archive applies to.
	Existing T `json:"-"`
}

// Match pairs a source record with the target entity sharing its key.
type Match[R any, T any] struct {
	Key      string
	Record   R
	Existing T
}

// Orphan is a target entity whose key is absent from the source.
type Orphan[T any] struct {
	Key      string
	Existing T
}

// PlanSummary provides aggregate statistics for a plan.
type PlanSummary struct {
	// Scraped is the number of source records handed to Diff, duplicates included.
	Scraped int `json:"scraped"`

	// Unique is the number of distinct source keys.
	Unique int `json:"unique"`

	// Duplicates counts source records superseded by a later record with the same key.
	Duplicates int `json:"duplicates"`

	// Dropped counts source records with an empty key.
	Dropped int `json:"dropped"`

	// Existing is the size of the target snapshot.
	Existing int `json:"existing"`

	Creates  int `json:"creates"`
	Updates  int `json:"updates"`
	Archives int `json:"archives"`
}

// Mutator applies planned actions to the target system.
type Mutator[R any, T any] interface {
	Create(ctx context.Context, record R) error
	Update(ctx context.Context, existing T, record R) error
	Archive(ctx context.Context, existing T) error
}

// Deduper is implemented by mutators that can check whether a key already
// exists on the target. Apply only retries a failed create when the mutator
// can prove the first attempt did not land.
type Deduper interface {
	Exists(ctx context.Context, key string) (bool, error)
}

// ApplyOptions controls how Apply executes a plan.
type ApplyOptions struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Concurrency is the number of workers. Values below 2 run sequentially.
	Concurrency int

	// Retries is the number of extra attempts for a failed action.
	Retries int

	// RetryBackoff is the delay before the first retry, doubled for each
	// following one. Zero retries immediately.
	RetryBackoff time.Duration

	// ShouldRetry, if set, decides whether an error is worth another attempt.
	ShouldRetry func(error) bool

	// CallTimeout bounds every single mutator call. Zero disables the bound.
	CallTimeout time.Duration

	// OnOutcome, if set, is called once per finished action.
	// It may be called from several workers at once.
	OnOutcome func(Outcome)
}

// Outcome is the tagged result of executing one action.
type Outcome struct {
	Type     ActionType `json:"type"`
	Key      string     `json:"key"`
	Attempts int        `json:"attempts"`
	Err      error      `json:"-"`
}

// OK reports whether the action succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Result aggregates outcomes of an Apply call.
// Every action increments exactly one of Created, Updated, Archived or Failed.
type Result struct {
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`

	// Failures lists the failed outcomes in completion order.
	Failures []Outcome `json:"-"`
}

// Total returns the number of counted actions.
func (r Result) Total() int {
	return r.Created + r.Updated + r.Archived + r.Failed
}

func (r *Result) record(o Outcome) {
	if o.Err != nil {
		r.Failed++
		r.Failures = append(r.Failures, o)
		return
	}
	switch o.Type {
	case ActionCreate:
		r.Created++
	case ActionUpdate:
		r.Updated++
	case ActionArchive:
		r.Archived++
	}
}

// Merge folds another result into r.
func (r *Result) Merge(other Result) {
	r.Created += other.Created
	r.Updated += other.Updated
	r.Archived += other.Archived
	r.Failed += other.Failed
	r.Failures = append(r.Failures, other.Failures...)
}
