package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/jobs"
	"github.com/spigell/easy-applier/internal/matcher"
)

type blacklistFilter struct {
	title    []*matcher.Pattern
	company  []*matcher.Pattern
	logger   *zap.Logger
	disabled bool
	reason   string
}

// NewBlacklist creates a filter that moves postings whose title or company
// matches a blacklist pattern into the blacklisted bucket.
func NewBlacklist(title, company []*matcher.Pattern, logger *zap.Logger) Filter {
	return &blacklistFilter{title: title, company: company, logger: logger}
}

func (f *blacklistFilter) Name() string { return "blacklist" }

func (f *blacklistFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *blacklistFilter) IsEnabled() bool { return !f.disabled }

func (f *blacklistFilter) Validate() error { return nil }

func (f *blacklistFilter) Apply(_ context.Context, p *Partition) (Step, error) {
	initial := len(p.Ready)

	// both flags are computed even when the first one already decides
	for _, c := range p.Ready {
		if m, ok := matcher.FirstMatch(f.title, c.Title); ok {
			c.TitleBlacklisted = true
			f.logger.Debug("title blacklisted", zap.String("posting_id", c.ID), zap.String("phrase", m.Phrase()))
		}
		if m, ok := matcher.FirstMatch(f.company, c.Company); ok {
			c.CompanyBlacklisted = true
			f.logger.Debug("company blacklisted", zap.String("posting_id", c.ID), zap.String("phrase", m.Phrase()))
		}
	}

	excluded := p.take(func(c *jobs.ClassifiedPosting) bool { return c.IsBlacklisted() })
	p.Blacklisted = append(p.Blacklisted, excluded...)

	if len(excluded) > 0 {
		f.logger.Info("excluding postings by blacklist",
			zap.Strings("excluded_postings", ids(excluded)),
			zap.Int("postings_left", len(p.Ready)),
		)
	}

	return Step{Initial: initial, Dropped: len(excluded), Left: len(p.Ready)}, nil
}

func (f *blacklistFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{
			"title_patterns":   strconv.Itoa(len(f.title)),
			"company_patterns": strconv.Itoa(len(f.company)),
		},
	}
}
