package jobs

import (
	"encoding/json"
	"errors"
	"os"
	"time"
)

// History lists postings applied to in earlier runs.
type History struct {
	Items []*HistoryEntry `json:"items"`
}

type HistoryEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Company   string    `json:"company,omitempty"`
	AppliedAt time.Time `json:"applied_at"`
}

// HistoryFromFile reads a history file. A missing or empty file is an empty history.
func HistoryFromFile(path string) (*History, error) {
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return &History{}, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	if stat.Size() == 0 {
		return &History{}, nil
	}

	var h History
	if err := json.NewDecoder(file).Decode(&h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Record appends the postings of processed results.
func (h *History) Record(results []*Result) int {
	added := 0
	for _, r := range results {
		if !r.IsProcessed() || h.Contains(r.Posting.ID) {
			continue
		}
		h.Items = append(h.Items, &HistoryEntry{
			ID:        r.Posting.ID,
			Title:     r.Posting.Title,
			Company:   r.Posting.Company,
			AppliedAt: r.FinishAt,
		})
		added++
	}
	return added
}

func (h *History) Contains(id string) bool {
	for _, e := range h.Items {
		if e.ID == id {
			return true
		}
	}
	return false
}

func (h *History) IDs() []string {
	ids := make([]string, 0, len(h.Items))
	for _, e := range h.Items {
		ids = append(ids, e.ID)
	}
	return ids
}

func (h *History) ToFile(path string) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(h)
}
