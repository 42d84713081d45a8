// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package form

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/pdiddy/internscout/pkg/types"
)

// Kind identifies a notification.
type Kind string

const (
	KindMissingCity  Kind = "missing_city"
	KindInputTooLong Kind = "input_too_long"
	KindSubmitted    Kind = "search_submitted"
	KindSearchFailed Kind = "search_failed"
)

// Notification is a transient, toast-style message for the user.
type Notification struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Destructive bool   `json:"destructive"`
}

// ValidationNotice returns the notification for a validation error.
func ValidationNotice(err error) Notification {
	if errors.Is(err, ErrInputTooLong) {
		return Notification{
			Kind:        KindInputTooLong,
			Title:       "Input too long",
			Description: "Please enter shorter values.",
			Destructive: true,
		}
	}
	return Notification{
		Kind:        KindMissingCity,
		Title:       "Please enter a city",
		Description: "Enter a city name to search for internships.",
		Destructive: true,
	}
}

// SubmittedNotice confirms a finished search, echoing the industry (or
// "all") and city.
func SubmittedNotice(q types.SearchQuery) Notification {
	industry := q.Industry
	if industry == "" {
		industry = "all"
	}
	return Notification{
		Kind:        KindSubmitted,
		Title:       "Search submitted!",
		Description: fmt.Sprintf("Searching for %s internships in %s...", industry, q.City),
	}
}

// FailedNotice is the generic failure notification.
func FailedNotice() Notification {
	return Notification{
		Kind:        KindSearchFailed,
		Title:       "Something went wrong",
		Description: "Failed to search. Please try again.",
		Destructive: true,
	}
}

// Notifier receives notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Notifiers fans a notification out to each member in order.
type Notifiers []Notifier

// Notify delivers n to every notifier.
func (ns Notifiers) Notify(n Notification) {
	for _, x := range ns {
		x.Notify(n)
	}
}

// LogNotifier writes notifications to a zerolog logger: destructive ones at
// warn level, the rest at info.
type LogNotifier struct {
	Logger zerolog.Logger
}

// Notify logs n.
func (l LogNotifier) Notify(n Notification) {
	ev := l.Logger.Info()
	if n.Destructive {
		ev = l.Logger.Warn()
	}
	ev.Str("kind", string(n.Kind)).Str("detail", n.Description).Msg(n.Title)
}

// Recorder keeps the notifications it receives, for rendering later.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

// Notify records n.
func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	r.items = append(r.items, n)
	r.mu.Unlock()
}

// All returns every recorded notification, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}
