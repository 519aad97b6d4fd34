package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/jobs"
)

type appliedHistoryFilter struct {
	history  *jobs.History
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewAppliedHistory creates a filter that moves postings recorded in the
// history file of earlier runs into the already-applied bucket.
func NewAppliedHistory(history *jobs.History, logger *zap.Logger) Filter {
	f := &appliedHistoryFilter{history: history, logger: logger}
	if history == nil {
		f.Disable("no history file")
	}
	return f
}

func (f *appliedHistoryFilter) Name() string { return "applied_history" }

func (f *appliedHistoryFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *appliedHistoryFilter) IsEnabled() bool { return !f.disabled }

func (f *appliedHistoryFilter) Validate() error { return nil }

func (f *appliedHistoryFilter) Apply(_ context.Context, p *Partition) (Step, error) {
	initial := len(p.Ready)
	if f.history == nil {
		return Step{Initial: initial, Left: initial}, nil
	}

	excluded := p.take(func(c *jobs.ClassifiedPosting) bool {
		return f.history.Contains(c.ID)
	})
	p.AlreadyApplied = append(p.AlreadyApplied, excluded...)

	if len(excluded) > 0 {
		f.logger.Info("excluding postings found in history",
			zap.Strings("excluded_postings", ids(excluded)),
			zap.Int("postings_left", len(p.Ready)),
		)
	}

	return Step{Initial: initial, Dropped: len(excluded), Left: len(p.Ready)}, nil
}

func (f *appliedHistoryFilter) Status() Status {
	details := map[string]string{}
	if f.history != nil {
		details["history_entries"] = strconv.Itoa(len(f.history.Items))
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
