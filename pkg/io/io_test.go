package io

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/timeline"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

func at(h, m int) time.Time {
	return time.Date(2024, 5, 1, h, m, 0, 0, time.UTC)
}

func sampleDocument() *Document {
	doc := New(
		timeline.NewEvent("Lunch", "Cafe", at(12, 0), at(13, 0)),
		timeline.NewEvent("Meeting", "Office", at(13, 30), at(15, 0)),
	)
	doc.GroupBy = "place"
	doc.Format = "square_post"
	color := "palette"
	opacity := 0.8
	width := 900
	doc.Style = timeline.StyleSettings{BarColor: &color, BarOpacity: &opacity, Width: &width}
	return doc
}

func TestRoundTrip(t *testing.T) {
	for _, enc := range []Encoding{TOML, YAML, JSON} {
		t.Run(string(enc), func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, sampleDocument(), enc); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			got, err := Read(&buf, enc)
			if err != nil {
				t.Fatalf("Read() error: %v", err)
			}

			if got.GroupBy != "place" || got.Format != "square_post" {
				t.Errorf("header = %q/%q", got.GroupBy, got.Format)
			}
			if len(got.Events) != 2 {
				t.Fatalf("len(Events) = %d, want 2", len(got.Events))
			}
			if e := got.Events[1]; e.Title != "Meeting" || e.Place != "Office" || !e.Start.Equal(at(13, 30)) || !e.End.Equal(at(15, 0)) {
				t.Errorf("Events[1] = %+v", e)
			}
			if got.Style.BarColor == nil || *got.Style.BarColor != "palette" {
				t.Errorf("BarColor = %v, want palette", got.Style.BarColor)
			}
			if got.Style.BarOpacity == nil || *got.Style.BarOpacity != 0.8 {
				t.Errorf("BarOpacity = %v, want 0.8", got.Style.BarOpacity)
			}
			if got.Style.Width == nil || *got.Style.Width != 900 {
				t.Errorf("Width = %v, want 900", got.Style.Width)
			}
			if got.Style.GridColor != nil {
				t.Errorf("GridColor = %v, want unset", *got.Style.GridColor)
			}
		})
	}
}

func TestReadTOMLExample(t *testing.T) {
	src := `
group_by = "place"
format = "story"

[style]
bar_color = "#8FA2B7"

[[events]]
title = "Lunch"
place = "Cafe"
start = 2024-05-01T12:00:00Z
end = 2024-05-01T13:00:00Z
`
	doc, err := Read(strings.NewReader(src), TOML)
	if err != nil {
		t.Fatal(err)
	}
	opts, err := doc.Options(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if opts.GroupBy != timeline.ByPlace || opts.Format != mockup.Story {
		t.Errorf("options = %v/%v", opts.GroupBy, opts.Format)
	}
	if len(opts.Events) != 1 || opts.Events[0].ID == "" {
		t.Errorf("events = %+v, want one with an ID", opts.Events)
	}
	if opts.Style.BarColor.String() != "#8FA2B7" {
		t.Errorf("BarColor = %v", opts.Style.BarColor)
	}
}

func TestReadTOMLLocalDatetimeIsUTC(t *testing.T) {
	src := `
[[events]]
title = "Lunch"
place = "Cafe"
start = 2024-05-01T12:00:00
end = 2024-05-01T13:00:00
`
	doc, err := Read(strings.NewReader(src), TOML)
	if err != nil {
		t.Fatalf("Read() error: %v", err)
	}
	events := doc.Table().Events()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if got := events[0].Start; !got.Equal(at(12, 0)) || got.Location() != time.UTC {
		t.Errorf("start = %v, want 12:00 UTC", got)
	}
	if got := events[0].End; !got.Equal(at(13, 0)) {
		t.Errorf("end = %v, want 13:00 UTC", got)
	}
}

func TestWallUTCKeepsOffset(t *testing.T) {
	cest := time.FixedZone("CEST", 2*60*60)
	in := time.Date(2024, 5, 1, 14, 0, 0, 0, cest)
	if got := wallUTC(in); !got.Equal(in) || got.Location() != cest {
		t.Errorf("wallUTC(%v) = %v, want unchanged", in, got)
	}
	local := time.Date(2024, 5, 1, 14, 0, 0, 0, time.Local)
	if got := wallUTC(local); !got.Equal(at(14, 0)) {
		t.Errorf("wallUTC(local 14:00) = %v, want 14:00 UTC", got)
	}
}

func TestReadEmptyYAML(t *testing.T) {
	doc, err := Read(strings.NewReader(""), YAML)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 0 {
		t.Errorf("len(Events) = %d, want 0", len(doc.Events))
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		enc Encoding
		src string
	}{
		{TOML, "group_by = "},
		{YAML, "events: [unclosed"},
		{JSON, "{"},
	}
	for _, tt := range tests {
		if _, err := Read(strings.NewReader(tt.src), tt.enc); !errs.Is(err, errs.ErrCodeInvalidDocument) {
			t.Errorf("Read(%s) = %v, want INVALID_DOCUMENT", tt.enc, err)
		}
	}
}

func TestEncodingFor(t *testing.T) {
	tests := []struct {
		path string
		want Encoding
	}{
		{"day.toml", TOML},
		{"day.YAML", YAML},
		{"dir/day.yml", YAML},
		{"day.json", JSON},
	}
	for _, tt := range tests {
		got, err := EncodingFor(tt.path)
		if err != nil || got != tt.want {
			t.Errorf("EncodingFor(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
		}
	}
	if _, err := EncodingFor("day.txt"); !errs.Is(err, errs.ErrCodeInvalidDocument) {
		t.Errorf("EncodingFor(.txt) = %v, want INVALID_DOCUMENT", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "day.yaml")
	if err := Save(path, sampleDocument()); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 2 {
		t.Errorf("len(Events) = %d, want 2", len(doc.Events))
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestLoadMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.toml")
	if _, err := Load(path); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Load() = %v, want FILE_NOT_FOUND", err)
	}
	doc, err := LoadOrNew(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Events) != 0 {
		t.Error("new document has events")
	}
}

func TestValidate(t *testing.T) {
	bad := "#12"
	tests := []struct {
		name string
		mod  func(*Document)
	}{
		{"group_by", func(d *Document) { d.GroupBy = "weather" }},
		{"format", func(d *Document) { d.Format = "reel" }},
		{"style", func(d *Document) { d.Style.GridColor = &bad }},
		{"event", func(d *Document) { d.Events[0].Place = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			tt.mod(doc)
			if err := doc.Validate(); !errs.Is(err, errs.ErrCodeInvalidDocument) {
				t.Errorf("Validate() = %v, want INVALID_DOCUMENT", err)
			}
		})
	}
}

func TestOptionsBackgroundImage(t *testing.T) {
	dir := t.TempDir()
	bg := imaging.New(8, 8, color.NRGBA{255, 0, 0, 255})
	if err := imaging.Save(bg, filepath.Join(dir, "bg.png")); err != nil {
		t.Fatal(err)
	}

	doc := sampleDocument()
	doc.BackgroundImage = "bg.png"
	opts, err := doc.Options(dir)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Style.BackgroundImage == nil {
		t.Fatal("background image not loaded")
	}
	if b := opts.Style.BackgroundImage.Bounds(); b != image.Rect(0, 0, 8, 8) {
		t.Errorf("bounds = %v", b)
	}

	doc.BackgroundImage = "missing.png"
	if _, err := doc.Options(dir); !errs.Is(err, errs.ErrCodeFileNotFound) {
		t.Errorf("Options(missing) = %v, want FILE_NOT_FOUND", err)
	}
	doc.BackgroundImage = "notes.txt"
	if _, err := doc.Options(dir); !errs.Is(err, errs.ErrCodeInvalidInputType) {
		t.Errorf("Options(txt) = %v, want INVALID_INPUT_TYPE", err)
	}
}
