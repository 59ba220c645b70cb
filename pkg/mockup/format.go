package mockup

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Format is a social-media display format with a fixed canvas size.
// The zero value is not a valid format.
type Format int

const (
	Story Format = iota + 1
	SquarePost
	VerticalPost
	HorizontalPost
)

// Formats lists every format in display order.
var Formats = []Format{Story, SquarePost, VerticalPost, HorizontalPost}

type formatInfo struct {
	slug    string
	display string
	width   int
	height  int
}

var formatTable = map[Format]formatInfo{
	Story:          {"story", "Story", 1080, 1920},
	SquarePost:     {"square_post", "Square post", 1080, 1080},
	VerticalPost:   {"vertical_post", "Vertical post", 1080, 1350},
	HorizontalPost: {"horizontal_post", "Horizontal post", 1080, 566},
}

// aliases are extra accepted names.
var aliases = map[string]Format{
	"post": SquarePost,
}

// ParseFormat accepts a slug ("square_post"), a display name
// ("Square post") or a dashed variant ("square-post"), case-insensitively.
func ParseFormat(name string) (Format, error) {
	key := normalize(name)
	for _, f := range Formats {
		info := formatTable[f]
		if key == info.slug || key == normalize(info.display) {
			return f, nil
		}
	}
	if f, ok := aliases[key]; ok {
		return f, nil
	}
	return 0, errs.New(errs.ErrCodeInvalidFormat, "unknown mockup format %q (choose one of %s)", name, strings.Join(Slugs(), ", "))
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	_, ok := formatTable[f]
	return ok
}

// Size returns the canvas size in pixels.
func (f Format) Size() (width, height int) {
	info := formatTable[f]
	return info.width, info.height
}

// Slug returns the machine name, e.g. "square_post".
func (f Format) Slug() string {
	return formatTable[f].slug
}

// DisplayName returns the human name, e.g. "Square post".
func (f Format) DisplayName() string {
	return formatTable[f].display
}

// String implements fmt.Stringer.
func (f Format) String() string {
	if !f.Valid() {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return f.Slug()
}

// MarshalText encodes the format as its slug.
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "invalid mockup format %d", int(f))
	}
	return []byte(f.Slug()), nil
}

// UnmarshalText accepts any name understood by [ParseFormat].
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// Slugs returns the slug of every format.
func Slugs() []string {
	out := make([]string, len(Formats))
	for i, f := range Formats {
		out[i] = f.Slug()
	}
	return out
}
