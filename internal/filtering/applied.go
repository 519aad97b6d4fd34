package filtering

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/jobs"
)

type appliedFilter struct {
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewApplied creates a filter that moves postings the site marks as applied
// into the already-applied bucket.
func NewApplied(logger *zap.Logger) Filter {
	return &appliedFilter{logger: logger}
}

func (f *appliedFilter) Name() string { return "already_applied" }

func (f *appliedFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *appliedFilter) IsEnabled() bool { return !f.disabled }

func (f *appliedFilter) Validate() error { return nil }

func (f *appliedFilter) Apply(_ context.Context, p *Partition) (Step, error) {
	initial := len(p.Ready)

	excluded := p.take(func(c *jobs.ClassifiedPosting) bool {
		return c.PriorState == jobs.StateApplied
	})
	p.AlreadyApplied = append(p.AlreadyApplied, excluded...)

	if len(excluded) > 0 {
		f.logger.Info("excluding postings marked as applied",
			zap.Strings("excluded_postings", ids(excluded)),
			zap.Int("postings_left", len(p.Ready)),
		)
	}

	return Step{Initial: initial, Dropped: len(excluded), Left: len(p.Ready)}, nil
}

func (f *appliedFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
