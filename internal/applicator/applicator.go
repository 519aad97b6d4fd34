// Package applicator runs one batch: discover postings, filter them, fill the
// wizard of every ready posting and persist what happened.
package applicator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/filtering"
	"github.com/spigell/easy-applier/internal/jobs"
	"github.com/spigell/easy-applier/internal/linkedin"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/report"
	"github.com/spigell/easy-applier/internal/wizard"
)

// ErrDeclined is returned by Run when the confirmation hook says no.
var ErrDeclined = errors.New("application declined")

// Board finds postings and opens their application wizard.
type Board interface {
	Search(ctx context.Context, search linkedin.Search) (*jobs.Postings, error)
	OpenEasyApply(ctx context.Context, id string) error
}

// Wizard fills the application wizard currently open on the board.
type Wizard interface {
	Run(ctx context.Context) (*wizard.Outcome, error)
}

// Confirm is asked before any wizard is opened. Returning false stops the run.
type Confirm func(p *filtering.Partition) (bool, error)

type Config struct {
	OutputDir   string `mapstructure:"output-dir" validate:"required"`
	XLSX        bool   `mapstructure:"xlsx"`
	HistoryFile string `mapstructure:"history-file"`
	DryRun      bool   `mapstructure:"dry-run"`
}

type Applicator struct {
	board   Board
	wizard  Wizard
	filters []filtering.Filter
	history *jobs.History
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

// New builds an applicator. history may be nil when no history file is kept.
func New(board Board, w Wizard, filters []filtering.Filter, history *jobs.History, cfg Config, logger *zap.Logger) *Applicator {
	return &Applicator{
		board:   board,
		wizard:  w,
		filters: filters,
		history: history,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// Run executes the whole batch. The report is returned even when the run
// stops early, so the caller can still see what was done.
func (a *Applicator) Run(ctx context.Context, search linkedin.Search, confirm Confirm) (*report.Report, error) {
	rep := report.New(a.now(), a.cfg.DryRun)
	log := a.logger.With(zap.String("run_id", rep.RunID))

	postings, err := a.board.Search(ctx, search)
	if err != nil {
		return rep, fmt.Errorf("search postings: %w", err)
	}
	log.Info("postings found", zap.Int("count", postings.Len()))

	partition, err := filtering.Run(ctx, log, a.filters, postings.Items)
	if err != nil {
		return rep, fmt.Errorf("filter postings: %w", err)
	}
	rep.Excluded(partition.Blacklisted, partition.AlreadyApplied)

	log.Info("postings filtered",
		zap.Int("ready", len(partition.Ready)),
		zap.Int("blacklisted", len(partition.Blacklisted)),
		zap.Int("already_applied", len(partition.AlreadyApplied)),
	)

	if len(partition.Ready) > 0 && confirm != nil {
		ok, err := confirm(partition)
		if err != nil {
			return rep, fmt.Errorf("confirm: %w", err)
		}
		if !ok {
			return rep, ErrDeclined
		}
	}

	applyErr := a.Apply(ctx, partition.Ready, rep)

	if err := a.Persist(rep); err != nil {
		return rep, errors.Join(applyErr, err)
	}
	return rep, applyErr
}

// Apply runs the wizard for each ready posting in order. A posting that fails
// is recorded and the batch moves on; only cancellation stops it.
func (a *Applicator) Apply(ctx context.Context, ready []*jobs.ClassifiedPosting, rep *report.Report) error {
	for i, c := range ready {
		if err := ctx.Err(); err != nil {
			a.logger.Warn("batch interrupted", zap.Int("left", len(ready)-i))
			return err
		}

		log := a.logger.With(logger.PostingFields(c.ID, c.Title, c.Company)...)

		if a.cfg.DryRun {
			log.Info("dry run, skipping posting")
			rep.Add(jobs.Unprocessed(c.Posting, 0, nil))
			continue
		}

		result := a.applyOne(ctx, c.Posting, log)
		rep.Add(result)

		if result.IsError && ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (a *Applicator) applyOne(ctx context.Context, p *jobs.Posting, log *zap.Logger) *jobs.Result {
	log.Info("applying")

	if err := a.board.OpenEasyApply(ctx, p.ID); err != nil {
		log.Warn("cannot open the application", zap.Error(err))
		return jobs.Unprocessed(p, 0, err)
	}

	outcome, err := a.wizard.Run(ctx)
	steps := 0
	if outcome != nil {
		steps = outcome.Steps
	}
	if err != nil {
		log.Warn("application failed", zap.Int("steps", steps), zap.Error(err))
		return jobs.Unprocessed(p, steps, err)
	}

	log.Info("application submitted", zap.Int("steps", steps))
	return jobs.Processed(p, steps)
}

// Persist writes the report and, outside dry runs, records processed postings in the history file.
func (a *Applicator) Persist(rep *report.Report) error {
	path, err := rep.WriteJSON(a.cfg.OutputDir)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	a.logger.Info("report written",
		zap.String("path", path),
		zap.Int("processed", len(rep.Processed)),
		zap.Int("unprocessed", len(rep.Unprocessed)),
		zap.Int("failed", rep.Failed()),
	)

	if a.cfg.XLSX {
		xlsx, err := rep.WriteXLSX(strings.TrimSuffix(path, ".json"))
		if err != nil {
			return fmt.Errorf("write spreadsheet: %w", err)
		}
		a.logger.Info("spreadsheet written", zap.String("path", xlsx))
	}

	if a.cfg.DryRun || a.cfg.HistoryFile == "" || a.history == nil {
		return nil
	}

	added := a.history.Record(rep.Processed)
	if added == 0 {
		return nil
	}
	if err := a.history.ToFile(a.cfg.HistoryFile); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	a.logger.Info("history updated", zap.String("path", a.cfg.HistoryFile), zap.Int("added", added))
	return nil
}
