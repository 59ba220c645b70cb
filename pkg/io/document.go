package io

import (
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/pipeline"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Document is the on-disk form of a timeline.
type Document struct {
	GroupBy         string                 `json:"group_by,omitempty" yaml:"group_by,omitempty" toml:"group_by,omitempty"`
	Format          string                 `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty"`
	BackgroundImage string                 `json:"background_image,omitempty" yaml:"background_image,omitempty" toml:"background_image,omitempty"`
	Style           timeline.StyleSettings `json:"style" yaml:"style" toml:"style"`
	Events          []Event                `json:"events" yaml:"events" toml:"events"`
}

// Event is the on-disk form of a [timeline.Event]. IDs are not stored;
// they are assigned when a document is loaded.
type Event struct {
	Title string    `json:"title" yaml:"title" toml:"title"`
	Place string    `json:"place" yaml:"place" toml:"place"`
	Start time.Time `json:"start" yaml:"start" toml:"start"`
	End   time.Time `json:"end" yaml:"end" toml:"end"`
}

func (e Event) event() timeline.Event {
	return timeline.Event{Title: e.Title, Place: e.Place, Start: wallUTC(e.Start), End: wallUTC(e.End)}
}

// wallUTC reads a zone-less datetime as UTC. TOML local datetimes decode
// into the process-local or a "*-local" zone; everything else keeps its
// offset.
func wallUTC(t time.Time) time.Time {
	switch t.Location().String() {
	case "Local", "datetime-local", "date-local":
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	}
	return t
}

// New returns a document with the given events and default everything else.
func New(events ...timeline.Event) *Document {
	d := &Document{}
	d.SetEvents(events)
	return d
}

// Table returns the events as a table with freshly assigned IDs.
func (d *Document) Table() *timeline.Table {
	t := timeline.NewTable()
	for _, e := range d.Events {
		t.Add(e.event())
	}
	return t
}

// SetEvents replaces the document's events.
func (d *Document) SetEvents(events []timeline.Event) {
	d.Events = make([]Event, len(events))
	for i, e := range events {
		d.Events[i] = Event{Title: e.Title, Place: e.Place, Start: e.Start, End: e.End}
	}
}

// Validate checks every field without touching the filesystem.
func (d *Document) Validate() error {
	if _, err := timeline.ParseGroupBy(d.GroupBy); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDocument, err, "group_by")
	}
	if d.Format != "" {
		if _, err := mockup.ParseFormat(d.Format); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDocument, err, "format")
		}
	}
	if _, err := d.Style.Apply(timeline.DefaultStyle()); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDocument, err, "style")
	}
	for i, e := range d.Events {
		if err := e.event().Validate(); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDocument, err, "event %d", i+1)
		}
	}
	return nil
}

// Options resolves the document into pipeline options. baseDir is the
// directory relative paths are resolved against.
func (d *Document) Options(baseDir string) (pipeline.Options, error) {
	if err := d.Validate(); err != nil {
		return pipeline.Options{}, err
	}
	groupBy, _ := timeline.ParseGroupBy(d.GroupBy)
	format := pipeline.DefaultFormat
	if d.Format != "" {
		format, _ = mockup.ParseFormat(d.Format)
	}
	style, _ := d.Style.Apply(timeline.DefaultStyle())

	if d.BackgroundImage != "" {
		if err := errs.ValidateImageFilename(filepath.Base(d.BackgroundImage)); err != nil {
			return pipeline.Options{}, err
		}
		path := d.BackgroundImage
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		img, err := imaging.Open(path)
		if err != nil {
			return pipeline.Options{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "open background image %s", d.BackgroundImage)
		}
		style.BackgroundImage = img
	}

	return pipeline.Options{
		Events:  d.Table().Events(),
		GroupBy: groupBy,
		Style:   style,
		Format:  format,
	}, nil
}
