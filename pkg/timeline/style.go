package timeline

import (
	"image"
	"image/color"
	"slices"

	"github.com/matzehuels/storyline/pkg/fonts"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Style is the flat configuration bag for a chart. Every field has a
// default (see [DefaultStyle]) and can be reset on its own with [Style.Reset].
type Style struct {
	BarColor   BarColor
	BarOpacity float64 // [0, 1]
	BarWidth   float64 // fraction of the category band, (0, 1]

	Width  int // canvas width in pixels
	Height int // canvas height in pixels

	// BackgroundColor fills the whole canvas. Empty selects the dark
	// template background.
	BackgroundColor string
	// BackgroundImage is stretched over the plot area, above the fill and
	// below the bars.
	BackgroundImage        image.Image
	BackgroundImageOpacity float64

	GridWidth   float64
	GridColor   string
	GridOpacity float64

	LabelColor       string
	CategoryFontSize int
	TimeFontSize     int
	FontFamily       fonts.Family
}

// Style field names, as used by [Style.Reset] and [StyleSettings].
const (
	FieldBarColor               = "bar_color"
	FieldBarOpacity             = "bar_opacity"
	FieldBarWidth               = "bar_width"
	FieldWidth                  = "width"
	FieldHeight                 = "height"
	FieldBackgroundColor        = "background_color"
	FieldBackgroundImage        = "background_image"
	FieldBackgroundImageOpacity = "background_image_opacity"
	FieldGridWidth              = "grid_width"
	FieldGridColor              = "grid_color"
	FieldGridOpacity            = "grid_opacity"
	FieldLabelColor             = "label_color"
	FieldCategoryFontSize       = "category_font_size"
	FieldTimeFontSize           = "time_font_size"
	FieldFontFamily             = "font_family"
)

// MaxChartSize bounds the chart width and height in pixels.
const MaxChartSize = 2000

// Fields lists every resettable style field.
var Fields = []string{
	FieldBarColor, FieldBarOpacity, FieldBarWidth,
	FieldWidth, FieldHeight,
	FieldBackgroundColor, FieldBackgroundImage, FieldBackgroundImageOpacity,
	FieldGridWidth, FieldGridColor, FieldGridOpacity,
	FieldLabelColor, FieldCategoryFontSize, FieldTimeFontSize, FieldFontFamily,
}

// DefaultStyle returns the default chart style.
func DefaultStyle() Style {
	return Style{
		BarColor:               FixedColor("#8FA2B7"),
		BarOpacity:             0.65,
		BarWidth:               0.65,
		Width:                  1050,
		Height:                 800,
		BackgroundColor:        "#DAE1E4",
		BackgroundImageOpacity: 0.5,
		GridWidth:              1.2,
		GridColor:              "#000000",
		GridOpacity:            1,
		LabelColor:             "#E8E2E2",
		CategoryFontSize:       40,
		TimeFontSize:           25,
		FontFamily:             fonts.Default,
	}
}

// Reset restores a single field to its default.
func (s *Style) Reset(field string) error {
	d := DefaultStyle()
	switch field {
	case FieldBarColor:
		s.BarColor = d.BarColor
	case FieldBarOpacity:
		s.BarOpacity = d.BarOpacity
	case FieldBarWidth:
		s.BarWidth = d.BarWidth
	case FieldWidth:
		s.Width = d.Width
	case FieldHeight:
		s.Height = d.Height
	case FieldBackgroundColor:
		s.BackgroundColor = d.BackgroundColor
	case FieldBackgroundImage:
		s.BackgroundImage = nil
	case FieldBackgroundImageOpacity:
		s.BackgroundImageOpacity = d.BackgroundImageOpacity
	case FieldGridWidth:
		s.GridWidth = d.GridWidth
	case FieldGridColor:
		s.GridColor = d.GridColor
	case FieldGridOpacity:
		s.GridOpacity = d.GridOpacity
	case FieldLabelColor:
		s.LabelColor = d.LabelColor
	case FieldCategoryFontSize:
		s.CategoryFontSize = d.CategoryFontSize
	case FieldTimeFontSize:
		s.TimeFontSize = d.TimeFontSize
	case FieldFontFamily:
		s.FontFamily = d.FontFamily
	default:
		return errs.New(errs.ErrCodeInvalidInput, "unknown style field %q", field)
	}
	return nil
}

// IsField reports whether name is a known style field.
func IsField(name string) bool {
	return slices.Contains(Fields, name)
}

// Validate checks every field. All failures carry INVALID_STYLE.
func (s Style) Validate() error {
	if s.BarColor == nil {
		return errs.New(errs.ErrCodeInvalidStyle, "bar_color is required")
	}
	if fc, ok := s.BarColor.(FixedColor); ok {
		if _, err := ParseColor(string(fc)); err != nil {
			return styleErr(FieldBarColor, err)
		}
	}
	if err := errs.ValidateOpacity(FieldBarOpacity, s.BarOpacity); err != nil {
		return err
	}
	if err := errs.ValidateFraction(FieldBarWidth, s.BarWidth); err != nil {
		return err
	}
	if err := errs.ValidateRange(FieldWidth, s.Width, 1, MaxChartSize); err != nil {
		return err
	}
	if err := errs.ValidateRange(FieldHeight, s.Height, 1, MaxChartSize); err != nil {
		return err
	}
	if s.BackgroundColor != "" {
		if _, err := ParseColor(s.BackgroundColor); err != nil {
			return styleErr(FieldBackgroundColor, err)
		}
	}
	if err := errs.ValidateOpacity(FieldBackgroundImageOpacity, s.BackgroundImageOpacity); err != nil {
		return err
	}
	if s.GridWidth < 0 {
		return errs.New(errs.ErrCodeInvalidStyle, "%s cannot be negative, got %g", FieldGridWidth, s.GridWidth)
	}
	if _, err := s.GridRGBA(); err != nil {
		return styleErr(FieldGridColor, err)
	}
	if _, err := ParseColor(s.LabelColor); err != nil {
		return styleErr(FieldLabelColor, err)
	}
	if err := errs.ValidatePositive(FieldCategoryFontSize, float64(s.CategoryFontSize)); err != nil {
		return err
	}
	if err := errs.ValidatePositive(FieldTimeFontSize, float64(s.TimeFontSize)); err != nil {
		return err
	}
	if !s.FontFamily.Valid() {
		return errs.New(errs.ErrCodeInvalidStyle, "unknown font family %q", s.FontFamily)
	}
	return nil
}

// GridRGBA composes the grid color and opacity.
func (s Style) GridRGBA() (RGBA, error) {
	return ComposeRGBA(s.GridColor, s.GridOpacity)
}

// background returns the canvas fill color.
func (s Style) background() color.NRGBA {
	if s.BackgroundColor != "" {
		if c, err := ParseColor(s.BackgroundColor); err == nil {
			return c
		}
	}
	return mustHex(TemplateBackground)
}

func styleErr(field string, err error) error {
	return errs.Wrap(errs.ErrCodeInvalidStyle, err, "invalid %s", field)
}

// StyleSettings is the serializable, partial form of [Style]. Nil fields
// are left untouched by [StyleSettings.Apply]. The background image is not
// part of the settings; documents reference it by path and the HTTP
// service takes it as an upload.
type StyleSettings struct {
	BarColor               *string  `json:"bar_color,omitempty" yaml:"bar_color,omitempty" toml:"bar_color,omitempty"`
	BarOpacity             *float64 `json:"bar_opacity,omitempty" yaml:"bar_opacity,omitempty" toml:"bar_opacity,omitempty"`
	BarWidth               *float64 `json:"bar_width,omitempty" yaml:"bar_width,omitempty" toml:"bar_width,omitempty"`
	Width                  *int     `json:"width,omitempty" yaml:"width,omitempty" toml:"width,omitempty"`
	Height                 *int     `json:"height,omitempty" yaml:"height,omitempty" toml:"height,omitempty"`
	BackgroundColor        *string  `json:"background_color,omitempty" yaml:"background_color,omitempty" toml:"background_color,omitempty"`
	BackgroundImageOpacity *float64 `json:"background_image_opacity,omitempty" yaml:"background_image_opacity,omitempty" toml:"background_image_opacity,omitempty"`
	GridWidth              *float64 `json:"grid_width,omitempty" yaml:"grid_width,omitempty" toml:"grid_width,omitempty"`
	GridColor              *string  `json:"grid_color,omitempty" yaml:"grid_color,omitempty" toml:"grid_color,omitempty"`
	GridOpacity            *float64 `json:"grid_opacity,omitempty" yaml:"grid_opacity,omitempty" toml:"grid_opacity,omitempty"`
	LabelColor             *string  `json:"label_color,omitempty" yaml:"label_color,omitempty" toml:"label_color,omitempty"`
	CategoryFontSize       *int     `json:"category_font_size,omitempty" yaml:"category_font_size,omitempty" toml:"category_font_size,omitempty"`
	TimeFontSize           *int     `json:"time_font_size,omitempty" yaml:"time_font_size,omitempty" toml:"time_font_size,omitempty"`
	FontFamily             *string  `json:"font_family,omitempty" yaml:"font_family,omitempty" toml:"font_family,omitempty"`
}

// Settings returns s as fully populated settings.
func (s Style) Settings() StyleSettings {
	barColor := PaletteKeyword
	if s.BarColor != nil {
		barColor = s.BarColor.String()
	}
	family := string(s.FontFamily)
	return StyleSettings{
		BarColor:               &barColor,
		BarOpacity:             &s.BarOpacity,
		BarWidth:               &s.BarWidth,
		Width:                  &s.Width,
		Height:                 &s.Height,
		BackgroundColor:        &s.BackgroundColor,
		BackgroundImageOpacity: &s.BackgroundImageOpacity,
		GridWidth:              &s.GridWidth,
		GridColor:              &s.GridColor,
		GridOpacity:            &s.GridOpacity,
		LabelColor:             &s.LabelColor,
		CategoryFontSize:       &s.CategoryFontSize,
		TimeFontSize:           &s.TimeFontSize,
		FontFamily:             &family,
	}
}

// Apply overlays the non-nil settings onto base and validates the result.
func (ss StyleSettings) Apply(base Style) (Style, error) {
	s := base
	if ss.BarColor != nil {
		bc, err := ParseBarColor(*ss.BarColor)
		if err != nil {
			return base, styleErr(FieldBarColor, err)
		}
		s.BarColor = bc
	}
	if ss.FontFamily != nil {
		f, err := fonts.ParseFamily(*ss.FontFamily)
		if err != nil {
			return base, styleErr(FieldFontFamily, err)
		}
		s.FontFamily = f
	}
	setIf(&s.BarOpacity, ss.BarOpacity)
	setIf(&s.BarWidth, ss.BarWidth)
	setIf(&s.Width, ss.Width)
	setIf(&s.Height, ss.Height)
	setIf(&s.BackgroundColor, ss.BackgroundColor)
	setIf(&s.BackgroundImageOpacity, ss.BackgroundImageOpacity)
	setIf(&s.GridWidth, ss.GridWidth)
	setIf(&s.GridColor, ss.GridColor)
	setIf(&s.GridOpacity, ss.GridOpacity)
	setIf(&s.LabelColor, ss.LabelColor)
	setIf(&s.CategoryFontSize, ss.CategoryFontSize)
	setIf(&s.TimeFontSize, ss.TimeFontSize)

	if err := s.Validate(); err != nil {
		return base, err
	}
	return s, nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
