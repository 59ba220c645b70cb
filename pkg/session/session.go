// Package session holds the editing state of one user: the event table,
// the chart style, the group-by dimension and the mockup format.
//
// A [Session] is the explicit context handed to the render pipeline via
// [Session.Options]; the pipeline itself keeps no state between calls.
// All Session methods are safe for concurrent use.
//
// Sessions live in a [Store]. [MemoryStore] keeps them in process memory,
// so all state is lost on restart.
//
//	store := session.NewMemoryStore()
//	sess := session.New(session.DefaultTTL)
//	_ = store.Set(ctx, sess)
//
//	sess.AddEvent(timeline.NewEvent("Lunch", "Cafe", start, end))
//	result, err := runner.Execute(ctx, sess.Options())
package session

import (
	"context"
	"errors"
	"image"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 24 * time.Hour

// Session is the editing state of one user.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu        sync.Mutex
	ttl       time.Duration
	expiresAt time.Time
	events    *timeline.Table
	style     timeline.Style
	groupBy   timeline.GroupBy
	format    mockup.Format
}

// New creates a session with default style, grouping by title and the
// story format. A ttl of zero never expires.
func New(ttl time.Duration) *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		ttl:       ttl,
		events:    timeline.NewTable(),
		style:     timeline.DefaultStyle(),
		groupBy:   timeline.ByTitle,
		format:    mockup.Story,
	}
	s.touchLocked(now)
	return s
}

// Snapshot is a consistent copy of a session's state.
type Snapshot struct {
	ID      string
	Events  []timeline.Event
	Style   timeline.Style
	GroupBy timeline.GroupBy
	Format  mockup.Format
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:      s.ID,
		Events:  s.events.Events(),
		Style:   s.style,
		GroupBy: s.groupBy,
		Format:  s.format,
	}
}

// Options returns pipeline options for the current state. Target size is
// left unset so the pipeline defaults it to the chart size.
func (s *Session) Options() pipeline.Options {
	snap := s.Snapshot()
	return pipeline.Options{
		Events:  snap.Events,
		GroupBy: snap.GroupBy,
		Style:   snap.Style,
		Format:  snap.Format,
	}
}

// Events returns a copy of the event table.
func (s *Session) Events() []timeline.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.Events()
}

// AddEvent validates e and appends it, returning the stored event with its ID.
func (s *Session) AddEvent(e timeline.Event) (timeline.Event, error) {
	if err := e.Validate(); err != nil {
		return timeline.Event{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(time.Now())
	return s.events.Add(e), nil
}

// DeleteEvent removes the event with the given ID.
func (s *Session) DeleteEvent(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(time.Now())
	return s.events.Delete(id)
}

// ClearEvents removes every event and returns how many were removed.
func (s *Session) ClearEvents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(time.Now())
	n := s.events.Len()
	s.events.Clear()
	return n
}

// Style returns the current style.
func (s *Session) Style() timeline.Style {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.style
}

// UpdateStyle applies a partial update. On error the style is unchanged.
func (s *Session) UpdateStyle(settings timeline.StyleSettings) (timeline.Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := settings.Apply(s.style)
	if err != nil {
		return s.style, err
	}
	s.style = next
	s.touchLocked(time.Now())
	return s.style, nil
}

// ResetStyle restores one field, or every field when field is empty.
func (s *Session) ResetStyle(field string) (timeline.Style, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if field == "" {
		s.style = timeline.DefaultStyle()
	} else if err := s.style.Reset(field); err != nil {
		return s.style, err
	}
	s.touchLocked(time.Now())
	return s.style, nil
}

// SetBackground sets the background image and, if non-nil, its opacity.
// A nil img removes the image.
func (s *Session) SetBackground(img image.Image, opacity *float64) error {
	if opacity != nil {
		if err := errs.ValidateOpacity(timeline.FieldBackgroundImageOpacity, *opacity); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.style.BackgroundImage = img
	if opacity != nil {
		s.style.BackgroundImageOpacity = *opacity
	}
	s.touchLocked(time.Now())
	return nil
}

// GroupBy returns the current category dimension.
func (s *Session) GroupBy() timeline.GroupBy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.groupBy
}

// SetGroupBy changes the category dimension.
func (s *Session) SetGroupBy(g timeline.GroupBy) error {
	if !g.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "unknown group-by %q", g)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupBy = g
	s.touchLocked(time.Now())
	return nil
}

// Format returns the current mockup format.
func (s *Session) Format() mockup.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.format
}

// SetFormat changes the mockup format.
func (s *Session) SetFormat(f mockup.Format) error {
	if !f.Valid() {
		return errs.New(errs.ErrCodeInvalidFormat, "invalid mockup format %d", int(f))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.format = f
	s.touchLocked(time.Now())
	return nil
}

// IsExpired reports whether the session has been idle past its TTL.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.expiresAt.IsZero() && time.Now().After(s.expiresAt)
}

func (s *Session) touchLocked(now time.Time) {
	if s.ttl > 0 {
		s.expiresAt = now.Add(s.ttl)
	}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if it doesn't exist and ErrExpired if it has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
