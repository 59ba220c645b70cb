package timeline

import (
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// Palette is the qualitative color sequence used in palette mode. Values of
// the color dimension take colors in first-appearance order; the sequence
// repeats once exhausted.
var Palette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

var paletteColors = func() []color.NRGBA {
	out := make([]color.NRGBA, len(Palette))
	for i, h := range Palette {
		out[i] = mustHex(h)
	}
	return out
}()

func mustHex(s string) color.NRGBA {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// assignPalette maps each distinct value to a palette color. values must be
// in first-appearance order.
func assignPalette(values []string) map[string]color.NRGBA {
	out := make(map[string]color.NRGBA, len(values))
	for i, v := range values {
		out[v] = paletteColors[i%len(paletteColors)]
	}
	return out
}
