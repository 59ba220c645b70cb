package timeline

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// TemplateBackground is the dark chart background used when no
// background color is configured.
const TemplateBackground = "#111111"

// PaletteKeyword selects [PaletteByCategory] when parsing a bar color.
const PaletteKeyword = "palette"

// BarColor decides how bars are filled. It is either a [FixedColor] or
// [PaletteByCategory].
type BarColor interface {
	isBarColor()
	String() string
}

// FixedColor paints every bar with the same color (hex or color name).
type FixedColor string

func (FixedColor) isBarColor()      {}
func (c FixedColor) String() string { return string(c) }

// PaletteByCategory colors each bar by its value in the color dimension,
// using [Palette] in first-appearance order.
type PaletteByCategory struct{}

func (PaletteByCategory) isBarColor()    {}
func (PaletteByCategory) String() string { return PaletteKeyword }

// ParseBarColor parses "palette" or any color accepted by [ParseColor].
func ParseBarColor(s string) (BarColor, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, PaletteKeyword) {
		return PaletteByCategory{}, nil
	}
	if _, err := ParseColor(s); err != nil {
		return nil, err
	}
	return FixedColor(s), nil
}

// RGBA is a base color packed together with an independent opacity.
type RGBA struct {
	R, G, B uint8
	A       float64
}

// ComposeRGBA combines a base color and an opacity in [0, 1] into one
// RGBA descriptor.
func ComposeRGBA(base string, opacity float64) (RGBA, error) {
	if err := errs.ValidateOpacity("opacity", opacity); err != nil {
		return RGBA{}, err
	}
	c, err := ParseColor(base)
	if err != nil {
		return RGBA{}, err
	}
	return RGBA{R: c.R, G: c.G, B: c.B, A: opacity}, nil
}

// String renders the descriptor as "rgba(r, g, b, a)".
func (c RGBA) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c.R, c.G, c.B, strconv.FormatFloat(c.A, 'f', -1, 64))
}

// NRGBA converts the descriptor to a non-premultiplied color.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha8(c.A)}
}

// ParseColor accepts "#RGB", "#RRGGBB", "rgb(r, g, b)", "rgba(r, g, b, a)"
// and SVG color names such as "black".
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)

	switch {
	case strings.HasPrefix(lower, "#"):
		if err := errs.ValidateHexColor("color", s); err != nil {
			return color.NRGBA{}, err
		}
		c, err := colorful.Hex(lower)
		if err != nil {
			return color.NRGBA{}, errs.Wrap(errs.ErrCodeInvalidStyle, err, "invalid color %q", s)
		}
		r, g, b := c.RGB255()
		return color.NRGBA{R: r, G: g, B: b, A: 255}, nil
	case strings.HasPrefix(lower, "rgba(") || strings.HasPrefix(lower, "rgb("):
		return parseFunctional(s, lower)
	}

	if named, ok := colornames.Map[lower]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, nil
	}
	return color.NRGBA{}, errs.New(errs.ErrCodeInvalidStyle, "invalid color %q", s)
}

func parseFunctional(orig, lower string) (color.NRGBA, error) {
	open := strings.IndexByte(lower, '(')
	if !strings.HasSuffix(lower, ")") {
		return color.NRGBA{}, errs.New(errs.ErrCodeInvalidStyle, "invalid color %q", orig)
	}
	parts := strings.Split(lower[open+1:len(lower)-1], ",")
	want := 3
	if strings.HasPrefix(lower, "rgba(") {
		want = 4
	}
	if len(parts) != want {
		return color.NRGBA{}, errs.New(errs.ErrCodeInvalidStyle, "invalid color %q", orig)
	}

	var rgb [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || v < 0 || v > 255 {
			return color.NRGBA{}, errs.New(errs.ErrCodeInvalidStyle, "invalid color %q", orig)
		}
		rgb[i] = uint8(v)
	}

	a := 1.0
	if want == 4 {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || v < 0 || v > 1 {
			return color.NRGBA{}, errs.New(errs.ErrCodeInvalidStyle, "invalid color %q", orig)
		}
		a = v
	}
	return color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2], A: alpha8(a)}, nil
}

// withOpacity scales the alpha of c by opacity.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = alpha8(float64(c.A) / 255 * opacity)
	return c
}

func alpha8(a float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, a)) * 255))
}

// hex formats c as "#rrggbb", ignoring alpha.
func hex(c color.NRGBA) string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}
