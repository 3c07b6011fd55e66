package retag

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/storage"
	"github.com/spendlens/spendlens/internal/core/tagging"
)

// TagSource hands out every current tag, ordered dependencies first.
// *tags.Registry implements it.
type TagSource interface {
	Tags(ctx context.Context) ([]tagging.Tag, error)
}

// Result summarizes one run.
type Result struct {
	Rows     int
	Changed  int
	Matched  map[string]int
	Duration time.Duration
}

// Job recomputes every tag over every stored transaction and persists the
// rows whose tag set changed. Tag names without a current definition are left alone.
type Job struct {
	store  storage.TransactionStore
	source TagSource
	tagger *tagging.Tagger
	now    func() time.Time
}

// NewJob creates a retag job.
func NewJob(store storage.TransactionStore, source TagSource, tagger *tagging.Tagger) *Job {
	return &Job{
		store:  store,
		source: source,
		tagger: tagger,
		now:    time.Now,
	}
}

// Run performs one full recompute.
func (j *Job) Run(ctx context.Context) (Result, error) {
	started := j.now()

	ordered, err := j.source.Tags(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("load tags: %w", err)
	}

	txns, err := j.store.Load(ctx, time.Time{}, time.Time{})
	if err != nil {
		return Result{}, fmt.Errorf("load transactions: %w", err)
	}

	before := make([]ledger.TagSet, len(txns))
	for i := range txns {
		before[i] = txns[i].Tags.Clone()
	}

	matched, err := j.tagger.ApplyAll(ordered, txns, true)
	if err != nil {
		return Result{}, fmt.Errorf("apply tags: %w", err)
	}

	var changed []ledger.Transaction
	for i := range txns {
		if !txns[i].Tags.Equal(before[i]) {
			changed = append(changed, txns[i])
		}
	}
	if len(changed) > 0 {
		if err := j.store.UpdateTags(ctx, changed); err != nil {
			return Result{}, fmt.Errorf("persist tags: %w", err)
		}
	}

	res := Result{
		Rows:     len(txns),
		Changed:  len(changed),
		Matched:  matched,
		Duration: j.now().Sub(started),
	}

	slog.Info("[RetagJob] Run complete",
		"tags", len(ordered),
		"rows", res.Rows,
		"changed", res.Changed,
		"duration", res.Duration,
	)
	return res, nil
}
