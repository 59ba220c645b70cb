package timeline

import (
	"strings"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// GroupBy selects the event field that defines the category axis. The
// other field becomes the color and legend dimension.
type GroupBy string

const (
	ByTitle GroupBy = "title"
	ByPlace GroupBy = "place"
)

// ParseGroupBy accepts "title", "event_title" and "place". An empty
// string selects [ByTitle].
func ParseGroupBy(s string) (GroupBy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "title", "event_title", "event":
		return ByTitle, nil
	case "place":
		return ByPlace, nil
	}
	return "", errs.New(errs.ErrCodeInvalidInput, "unknown group-by %q (must be title or place)", s)
}

// Valid reports whether g is a known dimension.
func (g GroupBy) Valid() bool {
	return g == ByTitle || g == ByPlace
}

// Complement returns the other dimension.
func (g GroupBy) Complement() GroupBy {
	if g == ByPlace {
		return ByTitle
	}
	return ByPlace
}

// Value returns the field of e selected by g.
func (g GroupBy) Value(e Event) string {
	if g == ByPlace {
		return e.Place
	}
	return e.Title
}

// Label is the human-readable dimension name.
func (g GroupBy) Label() string {
	if g == ByPlace {
		return "Place"
	}
	return "Event"
}
