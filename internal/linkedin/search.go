package linkedin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/easy-applier/internal/jobs"
)

// PageSize is the number of postings on one search result page.
const PageSize = 25

var (
	experienceCodes = map[string]string{
		"internship":       "1",
		"entry_level":      "2",
		"associate":        "3",
		"mid_senior_level": "4",
		"director":         "5",
		"executive":        "6",
	}
	workTypeCodes = map[string]string{
		"on_site": "1",
		"remote":  "2",
		"hybrid":  "3",
	}
	dateCodes = map[string]string{
		"24_hours": "r86400",
		"week":     "r604800",
		"month":    "r2592000",
		"all_time": "",
	}
)

// Search describes the job search of one run.
type Search struct {
	Positions        []string `mapstructure:"positions" validate:"required,min=1,dive,required"`
	Locations        []string `mapstructure:"locations" validate:"required,min=1,dive,required"`
	ExperienceLevels []string `mapstructure:"experience-levels" validate:"dive,oneof=internship entry_level associate mid_senior_level director executive"`
	WorkTypes        []string `mapstructure:"work-types" validate:"dive,oneof=on_site remote hybrid"`
	DatePosted       string   `mapstructure:"date-posted" validate:"omitempty,oneof=24_hours week month all_time"`
	Distance         int      `mapstructure:"distance" validate:"omitempty,oneof=5 10 25 50 100"`
	MaxPages         int      `mapstructure:"max-pages" validate:"gte=1"`
}

// BuildSearchURL returns the Easy Apply search URL for one position, location and zero-based page.
func BuildSearchURL(search Search, position, location string, page int) string {
	q := url.Values{}
	q.Set("distance", strconv.Itoa(search.Distance))
	q.Set("f_E", codes(search.ExperienceLevels, experienceCodes))
	q.Set("f_WT", codes(search.WorkTypes, workTypeCodes))
	q.Set("f_TPR", dateCodes[search.DatePosted])
	q.Set("f_AL", "true")
	q.Set("f_VJ", "true")
	q.Set("location", location)
	q.Set("keywords", position)
	q.Set("sortBy", "DD")
	if page > 0 {
		q.Set("start", strconv.Itoa(page*PageSize))
	}
	return SearchURL + "?" + q.Encode()
}

// codes keeps the order of the configured values and drops unknown ones.
func codes(values []string, mapping map[string]string) string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if code, ok := mapping[v]; ok && code != "" {
			out = append(out, code)
		}
	}
	return strings.Join(out, ",")
}

// Search collects postings for every position and location, following result
// pages until the no results banner, an empty page or MaxPages.
func (s *Site) Search(ctx context.Context, search Search) (*jobs.Postings, error) {
	maxPages := search.MaxPages
	if maxPages <= 0 {
		maxPages = 1
	}

	found := &jobs.Postings{}
	for _, position := range search.Positions {
		for _, location := range search.Locations {
			for page := 0; page < maxPages; page++ {
				if err := ctx.Err(); err != nil {
					return found, err
				}

				postings, err := s.SearchPage(ctx, search, position, location, page)
				if err != nil {
					return found, fmt.Errorf("search %q in %q, page %d: %w", position, location, page+1, err)
				}

				added := found.Add(postings...)
				s.logger.Info("search page",
					zap.String("position", position),
					zap.String("location", location),
					zap.Int("page", page+1),
					zap.Int("postings", len(postings)),
					zap.Int("new", added),
				)

				if len(postings) == 0 {
					break
				}
			}
		}
	}
	return found, nil
}

// SearchPage opens one result page and extracts its postings. A page with the
// no results banner yields no postings.
func (s *Site) SearchPage(ctx context.Context, search Search, position, location string, page int) ([]*jobs.Posting, error) {
	if err := s.driver.Navigate(ctx, BuildSearchURL(search, position, location, page)); err != nil {
		return nil, err
	}

	empty, err := s.exists(ctx, s.sel.NoResults)
	if err != nil {
		return nil, err
	}
	if empty {
		return nil, nil
	}
	return s.ExtractPostings(ctx)
}
