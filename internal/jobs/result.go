package jobs

import "time"

// Outcome is the terminal status of one wizard run.
type Outcome string

const (
	OutcomeProcessed   Outcome = "processed"
	OutcomeUnprocessed Outcome = "unprocessed"
)

// Result records how one ready posting left the wizard. It is never mutated after creation.
type Result struct {
	Posting  *Posting  `json:"posting"`
	Outcome  Outcome   `json:"outcome"`
	IsError  bool      `json:"is_error,omitempty"`
	Error    string    `json:"error,omitempty"`
	Steps    int       `json:"steps,omitempty"`
	FinishAt time.Time `json:"finished_at"`
}

func Processed(p *Posting, steps int) *Result {
	return &Result{
		Posting:  p,
		Outcome:  OutcomeProcessed,
		Steps:    steps,
		FinishAt: time.Now().UTC(),
	}
}

// Unprocessed records a posting that was not submitted. A nil err means the
// posting was skipped on purpose (for example in a dry run).
func Unprocessed(p *Posting, steps int, err error) *Result {
	r := &Result{
		Posting:  p,
		Outcome:  OutcomeUnprocessed,
		Steps:    steps,
		FinishAt: time.Now().UTC(),
	}
	if err != nil {
		r.IsError = true
		r.Error = err.Error()
	}
	return r
}

func (r *Result) IsProcessed() bool {
	return r.Outcome == OutcomeProcessed
}
