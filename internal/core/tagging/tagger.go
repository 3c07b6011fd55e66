package tagging

import (
	"log/slog"

	"github.com/spendlens/spendlens/internal/core/ledger"
	"github.com/spendlens/spendlens/internal/core/rule"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is the number of rows one worker evaluates per task.
	DefaultChunkSize = 1024
)

// Options tune a Tagger.
type Options struct {
	// Workers bounds concurrent mask evaluation; values below 2 evaluate inline.
	Workers int
	// ChunkSize is the number of rows per task. Zero means DefaultChunkSize.
	ChunkSize int
	// EnforceOrder makes ApplyAll reject tags that are not in dependency order.
	EnforceOrder bool
}

// Tagger evaluates rules over transaction sets and writes tag membership.
// Masks may be computed in parallel; tags are always written from the calling goroutine
// after the whole mask is known. Callers must not run two Apply calls on the same set at once.
type Tagger struct {
	opts Options
}

func NewTagger(opts Options) *Tagger {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Tagger{opts: opts}
}

// MaskFor returns one boolean per transaction, in input order.
func (tg *Tagger) MaskFor(r rule.Rule, txns []ledger.Transaction) []bool {
	if tg.opts.Workers < 2 || len(txns) <= tg.opts.ChunkSize {
		return r.Mask(txns)
	}

	mask := make([]bool, len(txns))
	var g errgroup.Group
	g.SetLimit(tg.opts.Workers)
	for start := 0; start < len(txns); start += tg.opts.ChunkSize {
		end := min(start+tg.opts.ChunkSize, len(txns))
		g.Go(func() error {
			for i := start; i < end; i++ {
				mask[i] = r.Evaluate(&txns[i])
			}
			return nil
		})
	}
	_ = g.Wait()
	return mask
}

// Apply adds tag.Name to every matching transaction and returns the match count.
// With removeExisting the name is stripped from every transaction before the mask is
// computed, so a rule reading its own tag sees none and applying twice is the same as once.
func (tg *Tagger) Apply(tag Tag, txns []ledger.Transaction, removeExisting bool) int {
	for i := range txns {
		if txns[i].Tags == nil {
			txns[i].Tags = ledger.TagSet{}
		}
		if removeExisting {
			txns[i].Tags.Remove(tag.Name)
		}
	}

	mask := tg.MaskFor(tag.Rule, txns)

	matched := 0
	for i, hit := range mask {
		if hit {
			txns[i].Tags.Add(tag.Name)
			matched++
		}
	}
	return matched
}

// ApplyAll applies tags in the given order. With EnforceOrder the order is
// validated first and nothing is touched if it is wrong.
func (tg *Tagger) ApplyAll(tags []Tag, txns []ledger.Transaction, removeExisting bool) (map[string]int, error) {
	if tg.opts.EnforceOrder {
		if err := ValidateOrder(tags); err != nil {
			return nil, err
		}
	}

	counts := make(map[string]int, len(tags))
	for _, tag := range tags {
		counts[tag.Name] = tg.Apply(tag, txns, removeExisting)
		slog.Debug("[Tagger] Applied tag", "tag", tag.Name, "matched", counts[tag.Name], "rows", len(txns))
	}
	return counts, nil
}
