// Package fonts resolves the chart font families to TrueType faces.
//
// A [Family] names one of the fixed font choices offered to users. The
// [Resolver] looks for a matching TrueType file on the host (via go-findfont)
// and falls back to the Go fonts embedded in golang.org/x/image, so a chart
// can always be rasterized even on a machine without any fonts installed.
package fonts

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomonobold"
)

// Family is a CSS-style font family choice.
type Family string

const (
	Lato          Family = "Lato, sans-serif"
	CourierNew    Family = "Courier New, monospace"
	TimesNewRoman Family = "Times New Roman, serif"
	ComicSans     Family = "Comic Sans MS, cursive"
)

// Default is the family used when none is configured.
const Default = Lato

// Families lists every supported family in display order.
var Families = []Family{Lato, CourierNew, TimesNewRoman, ComicSans}

// Name returns the primary family name without the generic fallback.
func (f Family) Name() string {
	name, _, _ := strings.Cut(string(f), ",")
	return strings.TrimSpace(name)
}

// Valid reports whether f is one of [Families].
func (f Family) Valid() bool {
	for _, known := range Families {
		if f == known {
			return true
		}
	}
	return false
}

// ParseFamily accepts either the full family string ("Lato, sans-serif")
// or just the primary name ("lato"), case-insensitively.
func ParseFamily(s string) (Family, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Default, nil
	}
	for _, f := range Families {
		if strings.EqualFold(s, string(f)) || strings.EqualFold(s, f.Name()) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font family %q", s)
}

// systemFiles are the file names tried on the host for each family, in order.
var systemFiles = map[Family][]string{
	Lato:          {"Lato-Bold.ttf", "Lato-Semibold.ttf", "Lato-Regular.ttf"},
	CourierNew:    {"courbd.ttf", "Courier New Bold.ttf", "Courier_New_Bold.ttf", "cour.ttf"},
	TimesNewRoman: {"timesbd.ttf", "Times New Roman Bold.ttf", "Times_New_Roman_Bold.ttf", "times.ttf"},
	ComicSans:     {"comicbd.ttf", "Comic Sans MS Bold.ttf", "Comic_Sans_MS_Bold.ttf", "comic.ttf"},
}

// embedded are the bundled fallbacks, chosen to keep each family's character.
var embedded = map[Family][]byte{
	Lato:          gobold.TTF,
	CourierNew:    gomonobold.TTF,
	TimesNewRoman: gomedium.TTF,
	ComicSans:     gobolditalic.TTF,
}

// Resolver loads and caches parsed fonts. It is safe for concurrent use.
type Resolver struct {
	system bool

	mu     sync.Mutex
	parsed map[Family]*truetype.Font
}

// NewResolver creates a resolver. When system is false only the embedded
// fonts are used, which makes rasterization identical across machines.
func NewResolver(system bool) *Resolver {
	return &Resolver{system: system, parsed: make(map[Family]*truetype.Font)}
}

var (
	defaultResolver     *Resolver
	defaultResolverOnce sync.Once
)

// DefaultResolver returns the shared resolver that prefers system fonts.
func DefaultResolver() *Resolver {
	defaultResolverOnce.Do(func() {
		defaultResolver = NewResolver(true)
	})
	return defaultResolver
}

// Font returns the parsed TrueType font for f.
func (r *Resolver) Font(f Family) (*truetype.Font, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("unknown font family %q", f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ft, ok := r.parsed[f]; ok {
		return ft, nil
	}

	var ft *truetype.Font
	if r.system {
		ft = loadSystem(f)
	}
	if ft == nil {
		var err error
		ft, err = truetype.Parse(embedded[f])
		if err != nil {
			return nil, fmt.Errorf("parse embedded font for %s: %w", f.Name(), err)
		}
	}
	r.parsed[f] = ft
	return ft, nil
}

// Face returns a font face for f at the given point size (72 DPI, so
// points equal pixels).
func (r *Resolver) Face(f Family, size float64) (font.Face, error) {
	ft, err := r.Font(f)
	if err != nil {
		return nil, err
	}
	return truetype.NewFace(ft, &truetype.Options{Size: size, DPI: 72, Hinting: font.HintingFull}), nil
}

func loadSystem(f Family) *truetype.Font {
	for _, name := range systemFiles[f] {
		path, err := findfont.Find(name)
		if err != nil {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		ft, err := truetype.Parse(data)
		if err != nil {
			continue
		}
		return ft
	}
	return nil
}
