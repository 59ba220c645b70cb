package timeline

import (
	"reflect"
	"testing"

	"github.com/matzehuels/storyline/pkg/fonts"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

func TestDefaultStyleValid(t *testing.T) {
	if err := DefaultStyle().Validate(); err != nil {
		t.Errorf("DefaultStyle().Validate() = %v", err)
	}
}

func TestStyleResetEveryField(t *testing.T) {
	changed := Style{
		BarColor:               PaletteByCategory{},
		BarOpacity:             0.1,
		BarWidth:               0.2,
		Width:                  10,
		Height:                 10,
		BackgroundColor:        "#000000",
		BackgroundImageOpacity: 0.9,
		GridWidth:              5,
		GridColor:              "#ffffff",
		GridOpacity:            0.3,
		LabelColor:             "#000000",
		CategoryFontSize:       1,
		TimeFontSize:           1,
		FontFamily:             fonts.ComicSans,
	}

	s := changed
	for _, f := range Fields {
		if err := s.Reset(f); err != nil {
			t.Fatalf("Reset(%q) error: %v", f, err)
		}
	}
	if !reflect.DeepEqual(s, DefaultStyle()) {
		t.Errorf("after resetting all fields got %+v, want defaults", s)
	}
}

func TestStyleResetSingleField(t *testing.T) {
	s := DefaultStyle()
	s.BarOpacity = 0.2
	s.Width = 300

	if err := s.Reset(FieldBarOpacity); err != nil {
		t.Fatal(err)
	}
	if s.BarOpacity != 0.65 {
		t.Errorf("BarOpacity = %v, want 0.65", s.BarOpacity)
	}
	if s.Width != 300 {
		t.Errorf("Width = %v, want untouched 300", s.Width)
	}
}

func TestStyleResetUnknownField(t *testing.T) {
	s := DefaultStyle()
	if err := s.Reset("shadow"); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("Reset(shadow) = %v, want INVALID_INPUT", err)
	}
	if IsField("shadow") {
		t.Error("IsField(shadow) = true")
	}
}

func TestStyleValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Style)
	}{
		{"nil bar color", func(s *Style) { s.BarColor = nil }},
		{"bad bar color", func(s *Style) { s.BarColor = FixedColor("#xyz") }},
		{"bar width zero", func(s *Style) { s.BarWidth = 0 }},
		{"negative width", func(s *Style) { s.Width = -1 }},
		{"zero height", func(s *Style) { s.Height = 0 }},
		{"huge width", func(s *Style) { s.Width = 200000 }},
		{"height over max", func(s *Style) { s.Height = MaxChartSize + 1 }},
		{"background", func(s *Style) { s.BackgroundColor = "mauve-ish" }},
		{"image opacity", func(s *Style) { s.BackgroundImageOpacity = -1 }},
		{"grid width", func(s *Style) { s.GridWidth = -1 }},
		{"grid opacity", func(s *Style) { s.GridOpacity = 3 }},
		{"label", func(s *Style) { s.LabelColor = "" }},
		{"font size", func(s *Style) { s.TimeFontSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultStyle()
			tt.mutate(&s)
			if err := s.Validate(); !errs.Is(err, errs.ErrCodeInvalidStyle) {
				t.Errorf("Validate() = %v, want INVALID_STYLE", err)
			}
		})
	}
}

func TestStyleValidateMaxSize(t *testing.T) {
	s := DefaultStyle()
	s.Width, s.Height = MaxChartSize, MaxChartSize
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() at max size = %v, want nil", err)
	}
}

func TestStyleSettingsRoundTrip(t *testing.T) {
	s := DefaultStyle()
	s.BarColor = PaletteByCategory{}
	s.FontFamily = fonts.CourierNew
	s.BackgroundColor = ""

	got, err := s.Settings().Apply(DefaultStyle())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Apply(Settings()) = %+v, want %+v", got, s)
	}
}

func TestStyleSettingsPartial(t *testing.T) {
	width := 640
	family := "times new roman"
	got, err := StyleSettings{Width: &width, FontFamily: &family}.Apply(DefaultStyle())
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if got.Width != 640 {
		t.Errorf("Width = %d, want 640", got.Width)
	}
	if got.FontFamily != fonts.TimesNewRoman {
		t.Errorf("FontFamily = %q, want %q", got.FontFamily, fonts.TimesNewRoman)
	}
	if got.Height != DefaultStyle().Height {
		t.Errorf("Height changed to %d", got.Height)
	}
}

func TestStyleSettingsInvalidKeepsBase(t *testing.T) {
	base := DefaultStyle()
	opacity := 7.0
	got, err := StyleSettings{BarOpacity: &opacity}.Apply(base)
	if !errs.Is(err, errs.ErrCodeInvalidStyle) {
		t.Fatalf("Apply() error = %v, want INVALID_STYLE", err)
	}
	if !reflect.DeepEqual(got, base) {
		t.Error("Apply() returned a modified style on error")
	}
}

func TestGridRGBA(t *testing.T) {
	s := DefaultStyle()
	s.GridColor = "#FF0000"
	s.GridOpacity = 0.5
	c, err := s.GridRGBA()
	if err != nil {
		t.Fatal(err)
	}
	if c.String() != "rgba(255, 0, 0, 0.5)" {
		t.Errorf("GridRGBA() = %s", c)
	}
}
