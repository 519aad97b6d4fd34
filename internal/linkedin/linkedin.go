// Package linkedin knows the LinkedIn job pages: where they live, how to
// search them and how to open the Easy Apply wizard of a posting.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/driver"
	"github.com/spigell/easy-applier/internal/utils"
)

const (
	BaseURL   = "https://www.linkedin.com"
	LoginURL  = BaseURL + "/login"
	FeedURL   = BaseURL + "/feed"
	SearchURL = BaseURL + "/jobs/search"
	JobURL    = BaseURL + "/jobs/view/"
)

// ErrNotLoggedIn is returned when the browser profile holds no LinkedIn session.
var ErrNotLoggedIn = errors.New("linkedin session not found")

const loginPollInterval = 2 * time.Second

// Selectors locate the search list and the posting page controls.
type Selectors struct {
	ListItem    string `mapstructure:"list-item"`
	Title       string `mapstructure:"title"`
	Company     string `mapstructure:"company"`
	Link        string `mapstructure:"link"`
	State       string `mapstructure:"state"`
	Description string `mapstructure:"description"`
	NoResults   string `mapstructure:"no-results"`
	EasyApply   string `mapstructure:"easy-apply"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		ListItem:    ".scaffold-layout__list div ul .scaffold-layout__list-item",
		Title:       ".job-card-list__title--link span strong",
		Company:     ".artdeco-entity-lockup__subtitle span",
		Link:        ".job-card-list__title--link",
		State:       ".job-card-list__footer-wrapper li",
		Description: "#job-details",
		NoResults:   "div > .jobs-search-no-results-banner__image",
		EasyApply:   ".scaffold-layout__inner .jobs-apply-button",
	}
}

func (s Selectors) withDefaults() Selectors {
	d := DefaultSelectors()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.ListItem, d.ListItem)
	fill(&s.Title, d.Title)
	fill(&s.Company, d.Company)
	fill(&s.Link, d.Link)
	fill(&s.State, d.State)
	fill(&s.Description, d.Description)
	fill(&s.NoResults, d.NoResults)
	fill(&s.EasyApply, d.EasyApply)
	return s
}

// Site drives the LinkedIn pages through one driver session.
type Site struct {
	driver    driver.Driver
	sel       Selectors
	cardDelay time.Duration
	timeout   time.Duration
	logger    *zap.Logger
}

// Options tune the page interaction.
type Options struct {
	Selectors Selectors `mapstructure:"selectors"`
	// CardDelay is waited after a job card click so the description pane can load.
	CardDelay time.Duration `mapstructure:"card-delay" validate:"gte=0"`
	// Timeout bounds the wait for the Easy Apply button.
	Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
}

func DefaultOptions() Options {
	return Options{
		Selectors: DefaultSelectors(),
		CardDelay: time.Second,
		Timeout:   10 * time.Second,
	}
}

func New(d driver.Driver, opts Options, logger *zap.Logger) *Site {
	return &Site{
		driver:    d,
		sel:       opts.Selectors.withDefaults(),
		cardDelay: opts.CardDelay,
		timeout:   opts.Timeout,
		logger:    logger,
	}
}

// ValidateSession opens the login page; an existing session redirects it to the feed.
func (s *Site) ValidateSession(ctx context.Context) error {
	if err := s.driver.Navigate(ctx, LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	ok, err := s.onFeed(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotLoggedIn
	}
	s.logger.Info("linkedin session is valid")
	return nil
}

// WaitForLogin polls the current location until the user lands on the feed
// or timeout passes.
func (s *Site) WaitForLogin(ctx context.Context, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := s.onFeed(ctx)
		if err != nil {
			return err
		}
		if ok {
			s.logger.Info("logged in to linkedin")
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("waited %s: %w", timeout, ErrNotLoggedIn)
		}
		if err := utils.WaitFor(ctx, loginPollInterval); err != nil {
			return err
		}
	}
}

func (s *Site) onFeed(ctx context.Context) (bool, error) {
	url, err := s.driver.Location(ctx)
	if err != nil {
		return false, fmt.Errorf("read location: %w", err)
	}
	return strings.HasPrefix(url, FeedURL), nil
}

// OpenEasyApply opens the posting page and clicks its Easy Apply button.
func (s *Site) OpenEasyApply(ctx context.Context, id string) error {
	if err := s.driver.Navigate(ctx, JobURL+id); err != nil {
		return fmt.Errorf("open posting %s: %w", id, err)
	}

	button, err := s.driver.WaitFor(ctx, s.sel.EasyApply, s.timeout)
	if err != nil {
		return fmt.Errorf("posting %s has no easy apply button: %w", id, err)
	}
	if err := s.driver.Click(ctx, button); err != nil {
		return fmt.Errorf("click easy apply: %w", err)
	}
	return nil
}
