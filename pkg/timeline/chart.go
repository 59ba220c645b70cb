package timeline

import (
	"image/color"
	"sort"
	"time"

	"github.com/matzehuels/storyline/pkg/fonts"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// EmptyInputMessage is the warning shown when there is nothing to render.
const EmptyInputMessage = "No events to display on the timeline."

// Category is one entry of the category axis.
type Category struct {
	Name  string        `json:"name"`
	Total time.Duration `json:"total"`
}

// Bar is one event drawn on the chart.
type Bar struct {
	Event    Event       `json:"event"`
	Category string      `json:"category"`
	ColorKey string      `json:"color_key"`
	Color    color.NRGBA `json:"-"`
}

// LegendEntry pairs a color-dimension value with its bar color.
type LegendEntry struct {
	Label string      `json:"label"`
	Color color.NRGBA `json:"-"`
}

// Hex returns the entry color as "#rrggbb".
func (l LegendEntry) Hex() string { return hex(l.Color) }

// Chart is a fully resolved timeline, ready to rasterize. It carries no
// pixels until [Chart.Rasterize] is called.
type Chart struct {
	Width   int
	Height  int
	GroupBy GroupBy
	ColorBy GroupBy

	// Categories are ordered bottom to top: ascending by total span.
	Categories []Category
	Bars       []Bar
	Legend     []LegendEntry
	Ticks      []Tick

	Start time.Time
	End   time.Time

	Style Style

	fonts *fonts.Resolver
}

// Option configures [Render].
type Option func(*Chart)

// WithFonts sets the font resolver used when rasterizing. The default
// resolver prefers system fonts.
func WithFonts(r *fonts.Resolver) Option {
	return func(c *Chart) { c.fonts = r }
}

// Render builds a chart with one bar per event. Categories are the distinct
// values of the groupBy field; bars are colored by the other field.
//
// Render returns EMPTY_INPUT for an empty event slice, INVALID_INPUT for an
// unknown groupBy, and INVALID_STYLE when style does not validate.
func Render(events []Event, groupBy GroupBy, style Style, opts ...Option) (*Chart, error) {
	if len(events) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyInput, EmptyInputMessage)
	}
	if !groupBy.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidInput, "unknown group-by %q (must be title or place)", groupBy)
	}
	if err := style.Validate(); err != nil {
		return nil, err
	}

	c := &Chart{
		Width:   style.Width,
		Height:  style.Height,
		GroupBy: groupBy,
		ColorBy: groupBy.Complement(),
		Style:   style,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fonts == nil {
		c.fonts = fonts.DefaultResolver()
	}

	c.Categories = orderCategories(events, groupBy)

	colorValues := distinct(events, c.ColorBy)
	colorOf := barColors(style.BarColor, colorValues)

	c.Bars = make([]Bar, len(events))
	for i, e := range events {
		key := c.ColorBy.Value(e)
		c.Bars[i] = Bar{
			Event:    e,
			Category: groupBy.Value(e),
			ColorKey: key,
			Color:    colorOf[key],
		}
	}

	if len(colorValues) > 1 {
		c.Legend = make([]LegendEntry, len(colorValues))
		for i, v := range colorValues {
			c.Legend[i] = LegendEntry{Label: v, Color: colorOf[v]}
		}
	}

	c.Start, c.End = timeDomain(events)
	c.Ticks = buildTicks(c.Start, c.End, tickBudget(c.Width))
	return c, nil
}

// CategoryIndex returns the axis position of name (0 is the bottom), or -1.
func (c *Chart) CategoryIndex(name string) int {
	for i, cat := range c.Categories {
		if cat.Name == name {
			return i
		}
	}
	return -1
}

// CategoryNames returns the category names bottom to top.
func (c *Chart) CategoryNames() []string {
	out := make([]string, len(c.Categories))
	for i, cat := range c.Categories {
		out[i] = cat.Name
	}
	return out
}

// orderCategories sums durations per category and sorts ascending by total.
// Ties keep first-appearance order.
func orderCategories(events []Event, groupBy GroupBy) []Category {
	names := distinct(events, groupBy)
	totals := make(map[string]time.Duration, len(names))
	for _, e := range events {
		totals[groupBy.Value(e)] += e.Duration()
	}

	cats := make([]Category, len(names))
	for i, n := range names {
		cats[i] = Category{Name: n, Total: totals[n]}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].Total < cats[j].Total
	})
	return cats
}

// distinct returns the values of dim in first-appearance order.
func distinct(events []Event, dim GroupBy) []string {
	seen := make(map[string]bool)
	var out []string
	for _, e := range events {
		v := dim.Value(e)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func barColors(bc BarColor, values []string) map[string]color.NRGBA {
	switch bc := bc.(type) {
	case FixedColor:
		c, _ := ParseColor(string(bc))
		out := make(map[string]color.NRGBA, len(values))
		for _, v := range values {
			out[v] = c
		}
		return out
	default:
		return assignPalette(values)
	}
}
