package jobs

import (
	"encoding/json"
	"os"
	"strings"
)

// PriorState is the site's record of earlier interaction with a posting.
type PriorState string

const (
	StateApplied PriorState = "Applied"
	StateViewed  PriorState = "Viewed"
	StateNew     PriorState = "New"
)

// ParseState maps the state text shown on a job card to a PriorState.
// Anything outside the known vocabulary is New.
func ParseState(text string) PriorState {
	text = strings.TrimSpace(text)
	for _, s := range []PriorState{StateApplied, StateViewed, StateNew} {
		if strings.EqualFold(text, string(s)) {
			return s
		}
	}
	return StateNew
}

type Posting struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Company     string     `json:"company"`
	Description string     `json:"description,omitempty"`
	PriorState  PriorState `json:"prior_state"`
}

// ClassifiedPosting is a posting annotated by the job filter.
type ClassifiedPosting struct {
	*Posting

	TitleBlacklisted   bool `json:"title_blacklisted"`
	CompanyBlacklisted bool `json:"company_blacklisted"`
}

func (p *ClassifiedPosting) IsBlacklisted() bool {
	return p.TitleBlacklisted || p.CompanyBlacklisted
}

type Postings struct {
	Items []*Posting
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) FindByID(id string) *Posting {
	for _, posting := range p.Items {
		if posting.ID == id {
			return posting
		}
	}
	return nil
}

// Add appends postings whose ID is not in the collection yet and returns how many were added.
// A posting can show up under several positions or locations of one search.
func (p *Postings) Add(items ...*Posting) int {
	added := 0
	for _, item := range items {
		if item == nil || p.FindByID(item.ID) != nil {
			continue
		}
		p.Items = append(p.Items, item)
		added++
	}
	return added
}

func (p *Postings) IDs() []string {
	ids := make([]string, 0, len(p.Items))
	for _, posting := range p.Items {
		ids = append(ids, posting.ID)
	}
	return ids
}

// DumpToTmpFile writes the collection to a temporary JSON file and returns its path.
func (p *Postings) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "postings_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return "", err
	}
	return file.Name(), nil
}
