package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/jobs"
	"github.com/spigell/easy-applier/internal/matcher"
)

// Filter is a single filtering step. It moves postings out of the ready
// bucket into one of the excluded buckets.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate() error
	Apply(ctx context.Context, p *Partition) (Step, error)
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Partition splits a batch of postings into disjoint buckets. Every bucket
// keeps the input order of its members.
type Partition struct {
	Ready          []*jobs.ClassifiedPosting
	Blacklisted    []*jobs.ClassifiedPosting
	AlreadyApplied []*jobs.ClassifiedPosting
}

func newPartition(postings []*jobs.Posting) *Partition {
	p := &Partition{Ready: make([]*jobs.ClassifiedPosting, 0, len(postings))}
	for _, posting := range postings {
		p.Ready = append(p.Ready, &jobs.ClassifiedPosting{Posting: posting})
	}
	return p
}

// Len returns the number of postings in all buckets.
func (p *Partition) Len() int {
	return len(p.Ready) + len(p.Blacklisted) + len(p.AlreadyApplied)
}

// take removes the ready postings selected by drop and returns them in order.
func (p *Partition) take(drop func(*jobs.ClassifiedPosting) bool) []*jobs.ClassifiedPosting {
	var taken []*jobs.ClassifiedPosting
	kept := p.Ready[:0]
	for _, c := range p.Ready {
		if drop(c) {
			taken = append(taken, c)
			continue
		}
		kept = append(kept, c)
	}
	p.Ready = kept
	return taken
}

// Split classifies postings with the blacklist and prior-state rules. Blacklist wins over prior state.
func Split(postings []*jobs.Posting, titlePatterns, companyPatterns []*matcher.Pattern) *Partition {
	steps := []Filter{
		NewBlacklist(titlePatterns, companyPatterns, zap.NewNop()),
		NewApplied(zap.NewNop()),
	}
	// neither step can fail
	p, _ := Run(context.Background(), zap.NewNop(), steps, postings)
	return p
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially over a fresh partition of postings.
func Run(ctx context.Context, logger *zap.Logger, steps []Filter, postings []*jobs.Posting) (*Partition, error) {
	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	p := newPartition(postings)
	for _, step := range steps {
		if !step.IsEnabled() {
			logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := step.Apply(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)
	}

	return p, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

func ids(items []*jobs.ClassifiedPosting) []string {
	out := make([]string, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}
