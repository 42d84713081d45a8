// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package session wires one search form to its backend and result list.
// A Session owns its results.List: the search task is the only writer and
// renderers read through results.View.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/internscout/internal/form"
	"github.com/pdiddy/internscout/internal/results"
	"github.com/pdiddy/internscout/internal/searchlog"
	"github.com/pdiddy/internscout/internal/stream"
	"github.com/pdiddy/internscout/pkg/types"
)

// Backend streams the records for one query.
type Backend interface {
	Search(ctx context.Context, q types.SearchQuery, emit stream.EmitFunc) (stream.Stats, error)
}

// History records finished searches. *searchlog.Store implements it.
type History interface {
	Record(ctx context.Context, e searchlog.Entry) (string, error)
}

// Options configures a Session.
type Options struct {
	// History, when set, receives one entry per finished search.
	History History

	// Notifier receives form notifications in addition to the session's
	// own recorder.
	Notifier form.Notifier

	// DefaultDomains is logged for searches with a blank industry field.
	DefaultDomains []string

	// RequesterIP is stored with each logged search.
	RequesterIP string

	// OnAppend is called after each record is appended.
	OnAppend func(types.CompanyResult)
}

// Session is one page session: a form controller, its notifications, and
// the results of every search submitted through it.
type Session struct {
	ID      string
	Created time.Time

	controller *form.Controller
	notices    *form.Recorder
	list       *results.List
	backend    Backend
	opts       Options

	mu       sync.Mutex
	lastUsed time.Time
	stats    stream.Stats
}

// New returns an empty Session searching through backend.
func New(backend Backend, opts Options) *Session {
	now := time.Now()
	s := &Session{
		ID:       uuid.NewString(),
		Created:  now,
		notices:  &form.Recorder{},
		list:     results.New(),
		backend:  backend,
		opts:     opts,
		lastUsed: now,
	}
	notifier := form.Notifiers{s.notices}
	if opts.Notifier != nil {
		notifier = append(notifier, opts.Notifier)
	}
	s.controller = form.NewController(form.SearcherFunc(s.search), notifier)
	return s
}

// Controller returns the session's form controller.
func (s *Session) Controller() *form.Controller { return s.controller }

// Results returns a read-only view of the session's records.
func (s *Session) Results() results.View { return s.list.View() }

// Notices returns the notifications raised so far.
func (s *Session) Notices() *form.Recorder { return s.notices }

// Busy reports whether a search is in flight.
func (s *Session) Busy() bool { return s.controller.Busy() }

// LastStats returns the stream statistics of the most recent search.
func (s *Session) LastStats() stream.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

// IdleSince returns when the session was last used.
func (s *Session) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

// search is the form.Searcher for this session. It appends every streamed
// record to the list and logs the search when a History is configured.
func (s *Session) search(ctx context.Context, q types.SearchQuery) error {
	log := zerolog.Ctx(ctx).With().Str("session", s.ID).Str("city", q.City).Logger()
	ctx = log.WithContext(ctx)

	start := time.Now()
	stats, err := s.backend.Search(ctx, q, func(rec types.CompanyResult) error {
		s.list.Append(rec)
		if s.opts.OnAppend != nil {
			s.opts.OnAppend(rec)
		}
		return nil
	})

	s.mu.Lock()
	s.stats = stats
	s.lastUsed = time.Now()
	s.mu.Unlock()

	if err != nil {
		log.Error().Err(err).Msg("search failed")
	} else {
		log.Info().Int("records", stats.Records).Int("malformed", stats.Malformed).
			Dur("took", time.Since(start)).Msg("search finished")
	}

	if s.opts.History != nil {
		entry := searchlog.Entry{
			SessionID:   s.ID,
			RequesterIP: s.opts.RequesterIP,
			City:        q.City,
			Domains:     q.Domains(s.opts.DefaultDomains),
			StartedAt:   start,
			Duration:    time.Since(start),
			Results:     stats.Records,
			Malformed:   stats.Malformed,
			Outcome:     searchlog.OutcomeOK,
		}
		if err != nil {
			entry.Outcome = searchlog.OutcomeFailed
			entry.Error = err.Error()
		}
		if _, logErr := s.opts.History.Record(context.WithoutCancel(ctx), entry); logErr != nil {
			log.Warn().Err(logErr).Msg("could not record search")
		}
	}
	return err
}
