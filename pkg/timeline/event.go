package timeline

import (
	"strings"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Event is a titled occurrence with a place and a time span.
//
// End is expected to be at or after Start. This is not enforced; an
// inverted event still renders as a bar between the two instants.
type Event struct {
	ID    string    `json:"id" yaml:"id,omitempty" toml:"id,omitempty"`
	Title string    `json:"title" yaml:"title" toml:"title"`
	Place string    `json:"place" yaml:"place" toml:"place"`
	Start time.Time `json:"start" yaml:"start" toml:"start"`
	End   time.Time `json:"end" yaml:"end" toml:"end"`
}

// NewEvent creates an event with a fresh ID.
func NewEvent(title, place string, start, end time.Time) Event {
	return Event{
		ID:    uuid.NewString(),
		Title: title,
		Place: place,
		Start: start,
		End:   end,
	}
}

// Duration returns End minus Start. It is negative for inverted events.
func (e Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Validate checks that the free-text fields are present.
func (e Event) Validate() error {
	if err := errs.ValidateText("title", e.Title); err != nil {
		return err
	}
	if err := errs.ValidateText("place", e.Place); err != nil {
		return err
	}
	if e.Start.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "start is required")
	}
	if e.End.IsZero() {
		return errs.New(errs.ErrCodeInvalidInput, "end is required")
	}
	return nil
}

// timeLayouts are the accepted input forms, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseTime parses an RFC 3339 timestamp or a wall-clock time such as
// "2024-05-01 12:30". Wall-clock times without an offset are taken as UTC,
// so axis labels show them as typed.
func ParseTime(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errs.New(errs.ErrCodeInvalidInput, "%s is required", field)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errs.New(errs.ErrCodeInvalidInput, "%s: cannot parse %q (use YYYY-MM-DD HH:MM or RFC 3339)", field, s)
}

// Table is an ordered list of events. Insertion order is preserved and
// duplicates are allowed. A Table is not safe for concurrent use; the
// owning session serializes access.
type Table struct {
	events []Event
}

// NewTable creates a table holding the given events in order.
// Events without an ID are assigned one.
func NewTable(events ...Event) *Table {
	t := &Table{}
	for _, e := range events {
		t.Add(e)
	}
	return t
}

// Add appends e, assigning an ID if it has none, and returns the stored event.
func (t *Table) Add(e Event) Event {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	t.events = append(t.events, e)
	return e
}

// Get returns the event with the given ID.
func (t *Table) Get(id string) (Event, bool) {
	for _, e := range t.events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// Delete removes the first event with the given ID.
func (t *Table) Delete(id string) error {
	for i, e := range t.events {
		if e.ID == id {
			t.events = append(t.events[:i], t.events[i+1:]...)
			return nil
		}
	}
	return errs.New(errs.ErrCodeEventNotFound, "event %q not found", id)
}

// DeleteAt removes and returns the event at index i.
func (t *Table) DeleteAt(i int) (Event, error) {
	if i < 0 || i >= len(t.events) {
		return Event{}, errs.New(errs.ErrCodeEventNotFound, "no event at index %d (table has %d)", i, len(t.events))
	}
	e := t.events[i]
	t.events = append(t.events[:i], t.events[i+1:]...)
	return e, nil
}

// Clear removes all events.
func (t *Table) Clear() {
	t.events = nil
}

// Len returns the number of events.
func (t *Table) Len() int { return len(t.events) }

// Empty reports whether the table has no events.
func (t *Table) Empty() bool { return len(t.events) == 0 }

// Events returns a copy of the events in insertion order.
func (t *Table) Events() []Event {
	out := make([]Event, len(t.events))
	copy(out, t.events)
	return out
}
