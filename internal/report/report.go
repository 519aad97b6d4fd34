// Package report persists the outcome of one batch run.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/easy-applier/internal/jobs"
)

// Report holds every posting of a batch, bucketed by how it ended.
type Report struct {
	RunID          string                    `json:"run_id"`
	StartedAt      time.Time                 `json:"started_at"`
	DryRun         bool                      `json:"dry_run,omitempty"`
	Processed      []*jobs.Result            `json:"processed"`
	Unprocessed    []*jobs.Result            `json:"unprocessed"`
	Blacklisted    []*jobs.ClassifiedPosting `json:"blacklisted"`
	AlreadyApplied []*jobs.ClassifiedPosting `json:"alreadyApplied"`
}

func New(startedAt time.Time, dryRun bool) *Report {
	return &Report{
		RunID:          uuid.NewString(),
		StartedAt:      startedAt.UTC(),
		DryRun:         dryRun,
		Processed:      []*jobs.Result{},
		Unprocessed:    []*jobs.Result{},
		Blacklisted:    []*jobs.ClassifiedPosting{},
		AlreadyApplied: []*jobs.ClassifiedPosting{},
	}
}

// Add files a wizard result under processed or unprocessed.
func (r *Report) Add(result *jobs.Result) {
	if result.IsProcessed() {
		r.Processed = append(r.Processed, result)
		return
	}
	r.Unprocessed = append(r.Unprocessed, result)
}

// Excluded records the postings the filter kept away from the wizard.
func (r *Report) Excluded(blacklisted, alreadyApplied []*jobs.ClassifiedPosting) {
	r.Blacklisted = append(r.Blacklisted, blacklisted...)
	r.AlreadyApplied = append(r.AlreadyApplied, alreadyApplied...)
}

// Results returns processed and unprocessed results together.
func (r *Report) Results() []*jobs.Result {
	out := make([]*jobs.Result, 0, len(r.Processed)+len(r.Unprocessed))
	out = append(out, r.Processed...)
	return append(out, r.Unprocessed...)
}

// Failed counts unprocessed results that carry an error.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Unprocessed {
		if res.IsError {
			n++
		}
	}
	return n
}

// Path returns where WriteJSON stores the report inside dir.
func (r *Report) Path(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("applied_%d.json", r.StartedAt.UnixMilli()))
}

// WriteJSON writes the report to dir and returns the file path.
// An existing report at the same path is never overwritten.
func (r *Report) WriteJSON(dir string) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path = r.Path(dir)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			path, err = "", fmt.Errorf("close report: %w", cerr)
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	return path, nil
}
