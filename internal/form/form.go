// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package form validates the two-field search form and drives one search at
// a time, reporting the outcome as user-facing notifications.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode/utf16"

	"github.com/pdiddy/internscout/pkg/types"
)

// MaxFieldLength is the maximum length of each form field in UTF-16 code
// units, matching the page's maxlength attribute.
const MaxFieldLength = 100

var (
	// ErrValidation is wrapped by every input validation failure.
	ErrValidation = errors.New("invalid search input")

	// ErrMissingCity is returned when the city is empty after trimming.
	ErrMissingCity = fmt.Errorf("%w: city is required", ErrValidation)

	// ErrInputTooLong is returned when a trimmed field exceeds MaxFieldLength.
	ErrInputTooLong = fmt.Errorf("%w: input longer than %d characters", ErrValidation, MaxFieldLength)

	// ErrBusy is returned when a search is submitted while another is running.
	ErrBusy = errors.New("a search is already in progress")
)

// Normalize trims city and industry once and builds the SearchQuery. The
// industry field is split on commas and each part trimmed; blank parts are
// kept so the backend sees the list as typed.
func Normalize(city, industry string) (types.SearchQuery, error) {
	city = strings.TrimSpace(city)
	industry = strings.TrimSpace(industry)

	if city == "" {
		return types.SearchQuery{}, ErrMissingCity
	}
	if fieldLength(city) > MaxFieldLength || fieldLength(industry) > MaxFieldLength {
		return types.SearchQuery{}, ErrInputTooLong
	}

	return types.SearchQuery{
		City:       city,
		Industry:   industry,
		Industries: SplitIndustries(industry),
	}, nil
}

// fieldLength counts UTF-16 code units, the unit a browser's maxlength
// attribute limits.
func fieldLength(s string) int {
	n := 0
	for _, r := range s {
		if utf16.RuneLen(r) == 2 {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// SplitIndustries splits a comma-separated industry field into trimmed
// parts. "software, Civil Engineering" yields ["software", "Civil Engineering"]
// and "a,,b" yields ["a", "", "b"]. A blank field yields nil, which selects
// the default domains.
func SplitIndustries(industry string) []string {
	if strings.TrimSpace(industry) == "" {
		return nil
	}
	parts := strings.Split(industry, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}

// Searcher runs one validated search to completion.
type Searcher interface {
	Search(ctx context.Context, q types.SearchQuery) error
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, q types.SearchQuery) error

// Search calls f.
func (f SearcherFunc) Search(ctx context.Context, q types.SearchQuery) error { return f(ctx, q) }

// Controller handles form submissions. At most one search runs at a time;
// Busy reports whether one is in flight so renderers can disable the submit
// control.
type Controller struct {
	searcher Searcher
	notifier Notifier
	busy     atomic.Bool
}

// NewController returns a Controller that runs searches with s and reports
// to n. A nil notifier discards notifications.
func NewController(s Searcher, n Notifier) *Controller {
	if n == nil {
		n = NotifierFunc(func(Notification) {})
	}
	return &Controller{searcher: s, notifier: n}
}

// Busy reports whether a search is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Start validates the input and launches the search in a new goroutine. It
// returns ErrBusy without side effects while another search runs, and a
// validation error (after notifying) when the input is rejected; no search
// is started in either case. Otherwise the returned channel receives the
// search result once, after the busy flag has been cleared.
func (c *Controller) Start(ctx context.Context, city, industry string) (<-chan error, error) {
	if !c.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}

	q, err := Normalize(city, industry)
	if err != nil {
		c.busy.Store(false)
		c.notifier.Notify(ValidationNotice(err))
		return nil, err
	}

	done := make(chan error, 1)
	go func() {
		var err error
		defer func() {
			c.busy.Store(false)
			done <- err
			close(done)
		}()
		err = c.run(ctx, q)
	}()
	return done, nil
}

// Submit is Start followed by waiting for the search to finish.
func (c *Controller) Submit(ctx context.Context, city, industry string) error {
	done, err := c.Start(ctx, city, industry)
	if err != nil {
		return err
	}
	return <-done
}

func (c *Controller) run(ctx context.Context, q types.SearchQuery) error {
	if err := c.searcher.Search(ctx, q); err != nil {
		c.notifier.Notify(FailedNotice())
		return err
	}
	c.notifier.Notify(SubmittedNotice(q))
	return nil
}
