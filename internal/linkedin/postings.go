package linkedin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver"
	"github.com/spigell/easy-applier/internal/jobs"
	"github.com/spigell/easy-applier/internal/logger"
	"github.com/spigell/easy-applier/internal/utils"
)

// ExtractPostings reads every job card of the current result page. Each card
// is clicked so the description pane shows its posting.
func (s *Site) ExtractPostings(ctx context.Context) ([]*jobs.Posting, error) {
	cards, err := s.driver.FindAll(ctx, nil, s.sel.ListItem)
	if err != nil {
		return nil, fmt.Errorf("find job cards: %w", err)
	}

	postings := make([]*jobs.Posting, 0, len(cards))
	for i, card := range cards {
		p, err := s.readCard(ctx, card)
		if err != nil {
			// cards without a link are ads or placeholders
			s.logger.Debug("skipping job card", zap.Int("index", i), zap.Error(err))
			continue
		}
		s.logger.Debug("found posting", logger.PostingFields(p.ID, p.Title, p.Company)...)
		postings = append(postings, p)
	}
	return postings, nil
}

func (s *Site) readCard(ctx context.Context, card driver.Locator) (*jobs.Posting, error) {
	link, err := s.driver.FindOne(ctx, card, s.sel.Link)
	if err != nil {
		return nil, err
	}
	href, _, err := s.driver.ReadAttribute(ctx, link, "href")
	if err != nil {
		return nil, err
	}
	id, err := PostingID(href)
	if err != nil {
		return nil, err
	}

	if err := s.driver.Click(ctx, card); err != nil {
		return nil, fmt.Errorf("open card %s: %w", id, err)
	}
	if err := utils.WaitFor(ctx, s.cardDelay); err != nil {
		return nil, err
	}

	p := &jobs.Posting{ID: id}
	if p.Title, err = s.text(ctx, card, s.sel.Title); err != nil {
		return nil, err
	}
	if p.Company, err = s.text(ctx, card, s.sel.Company); err != nil {
		return nil, err
	}
	state, err := s.text(ctx, card, s.sel.State)
	if err != nil {
		return nil, err
	}
	p.PriorState = jobs.ParseState(state)
	if p.Description, err = s.description(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// PostingID extracts the numeric id from a card link such as /jobs/view/4012345678/?refId=x.
func PostingID(href string) (string, error) {
	parts := strings.Split(href, "/")
	for i, part := range parts {
		if part == "view" && i+1 < len(parts) && parts[i+1] != "" {
			return parts[i+1], nil
		}
	}
	return "", fmt.Errorf("no posting id in link %q", href)
}

// text returns the trimmed text of selector inside scope, or "" when it is absent.
func (s *Site) text(ctx context.Context, scope driver.Locator, selector string) (string, error) {
	loc, err := s.driver.FindOne(ctx, scope, selector)
	if errors.Is(err, driver.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	text, err := s.driver.ReadText(ctx, loc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// description keeps the line structure of the posting text and drops blank lines.
func (s *Site) description(ctx context.Context) (string, error) {
	raw, err := s.text(ctx, nil, s.sel.Description)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}

func (s *Site) exists(ctx context.Context, selector string) (bool, error) {
	return driver.Exists(ctx, s.driver, nil, selector)
}
