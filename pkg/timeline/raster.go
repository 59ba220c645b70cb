package timeline

import (
	"image"
	"image/color"
	"io"
	"math"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// Outer margins around the plot area, in pixels.
const (
	marginTop    = 10
	marginLeft   = 5
	marginRight  = 10
	marginBottom = 5

	labelPad  = 8
	legendGap = 12
)

// frame is the resolved pixel geometry of a chart.
type frame struct {
	x0, y0, x1, y1 float64 // plot area
	band           float64 // category band height
	legendY        float64 // legend row center, if any
	timeLine       float64 // line height of time labels
}

func (f frame) width() float64  { return f.x1 - f.x0 }
func (f frame) height() float64 { return f.y1 - f.y0 }

// rasterizer holds the faces and colors needed to draw one chart.
type rasterizer struct {
	c        *Chart
	catFace  font.Face
	timeFace font.Face
	grid     color.NRGBA
	label    color.NRGBA
}

// Rasterize draws the chart onto a new Width x Height image.
func (c *Chart) Rasterize() (image.Image, error) {
	r, err := c.newRasterizer()
	if err != nil {
		return nil, err
	}

	f, err := r.layout()
	if err != nil {
		return nil, err
	}

	dc := gg.NewContext(c.Width, c.Height)
	dc.SetColor(c.Style.background())
	dc.Clear()

	if img := c.Style.BackgroundImage; img != nil {
		dc = r.drawBackgroundImage(dc, img, f)
	}

	r.drawGrid(dc, f)
	r.drawBars(dc, f)
	r.drawCategoryLabels(dc, f)
	r.drawTimeLabels(dc, f)
	if len(c.Legend) > 0 {
		r.drawLegend(dc, f)
	}
	return dc.Image(), nil
}

// EncodePNG rasterizes the chart and writes it as PNG.
func (c *Chart) EncodePNG(w io.Writer) error {
	img, err := c.Rasterize()
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errs.Wrap(errs.ErrCodeRenderFailed, err, "encode chart")
	}
	return nil
}

func (c *Chart) newRasterizer() (*rasterizer, error) {
	s := c.Style
	catFace, err := c.fonts.Face(s.FontFamily, float64(s.CategoryFontSize))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidStyle, err, "load category font")
	}
	timeFace, err := c.fonts.Face(s.FontFamily, float64(s.TimeFontSize))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidStyle, err, "load time font")
	}
	grid, err := s.GridRGBA()
	if err != nil {
		return nil, styleErr(FieldGridColor, err)
	}
	label, err := ParseColor(s.LabelColor)
	if err != nil {
		return nil, styleErr(FieldLabelColor, err)
	}
	return &rasterizer{
		c:        c,
		catFace:  catFace,
		timeFace: timeFace,
		grid:     grid.NRGBA(),
		label:    label,
	}, nil
}

// layout measures labels and places the plot area inside the canvas.
func (r *rasterizer) layout() (frame, error) {
	c := r.c
	w, h := float64(c.Width), float64(c.Height)
	m := gg.NewContext(1, 1)

	m.SetFontFace(r.catFace)
	var catW float64
	for _, cat := range c.Categories {
		lw, _ := m.MeasureString(cat.Name)
		catW = math.Max(catW, lw)
	}

	m.SetFontFace(r.timeFace)
	lineH := m.FontHeight() * 1.2
	var lines int
	var lastW float64
	for _, t := range c.Ticks {
		parts := strings.Split(t.Label, "\n")
		lines = max(lines, len(parts))
		lastW = 0
		for _, p := range parts {
			pw, _ := m.MeasureString(p)
			lastW = math.Max(lastW, pw)
		}
	}

	var f frame
	f.timeLine = lineH
	f.x0 = marginLeft + math.Min(catW+labelPad, w/2)
	f.x1 = w - marginRight - lastW/2
	f.y0 = marginTop
	if len(c.Legend) > 0 {
		f.legendY = marginTop + lineH/2
		f.y0 += lineH + labelPad
	}
	f.y1 = h - marginBottom - float64(lines)*lineH - labelPad

	if f.width() <= 0 || f.height() <= 0 {
		return frame{}, errs.New(errs.ErrCodeInvalidStyle,
			"canvas %dx%d is too small for the labels; increase width/height or reduce font sizes", c.Width, c.Height)
	}
	f.band = f.height() / float64(len(c.Categories))
	return f, nil
}

// xOf maps an instant to a horizontal pixel position.
func (r *rasterizer) xOf(f frame, t time.Time) float64 {
	lo, hi := float64(r.c.Start.UnixNano()), float64(r.c.End.UnixNano())
	return f.x0 + (float64(t.UnixNano())-lo)/(hi-lo)*f.width()
}

// yOf returns the vertical center of category i (0 is the bottom band).
func (r *rasterizer) yOf(f frame, i int) float64 {
	return f.y1 - (float64(i)+0.5)*f.band
}

func (r *rasterizer) drawBackgroundImage(dc *gg.Context, img image.Image, f frame) *gg.Context {
	x0, y0 := int(math.Round(f.x0)), int(math.Round(f.y0))
	pw, ph := int(math.Round(f.x1))-x0, int(math.Round(f.y1))-y0
	if pw <= 0 || ph <= 0 {
		return dc
	}
	stretched := imaging.Resize(img, pw, ph, imaging.Lanczos)
	out := imaging.Overlay(dc.Image(), stretched, image.Pt(x0, y0), r.c.Style.BackgroundImageOpacity)
	return gg.NewContextForImage(out)
}

func (r *rasterizer) drawGrid(dc *gg.Context, f frame) {
	gw := r.c.Style.GridWidth
	if gw <= 0 {
		return
	}
	dc.SetColor(r.grid)
	dc.SetLineWidth(gw)

	for _, t := range r.c.Ticks {
		x := r.xOf(f, t.Time)
		dc.DrawLine(x, f.y0, x, f.y1)
		dc.Stroke()
	}

	dc.SetDash(2*gw, 3*gw)
	for i := range r.c.Categories {
		y := r.yOf(f, i)
		dc.DrawLine(f.x0, y, f.x1, y)
		dc.Stroke()
	}
	dc.SetDash()
}

func (r *rasterizer) drawBars(dc *gg.Context, f frame) {
	s := r.c.Style
	thickness := f.band * s.BarWidth

	for _, b := range r.c.Bars {
		i := r.c.CategoryIndex(b.Category)
		xa, xb := r.xOf(f, b.Event.Start), r.xOf(f, b.Event.End)
		x0, x1 := math.Min(xa, xb), math.Max(xa, xb)
		width := math.Max(x1-x0, 1)
		y := r.yOf(f, i) - thickness/2

		dc.DrawRectangle(x0, y, width, thickness)
		dc.SetColor(withOpacity(b.Color, s.BarOpacity))
		if s.GridWidth > 0 {
			dc.FillPreserve()
			dc.SetColor(r.grid)
			dc.SetLineWidth(s.GridWidth)
			dc.Stroke()
		} else {
			dc.Fill()
		}
	}
}

func (r *rasterizer) drawCategoryLabels(dc *gg.Context, f frame) {
	dc.SetFontFace(r.catFace)
	dc.SetColor(r.label)
	for i, cat := range r.c.Categories {
		dc.DrawStringAnchored(cat.Name, f.x0-labelPad, r.yOf(f, i), 1, 0.35)
	}
}

func (r *rasterizer) drawTimeLabels(dc *gg.Context, f frame) {
	dc.SetFontFace(r.timeFace)
	dc.SetColor(r.label)
	for _, t := range r.c.Ticks {
		x := r.xOf(f, t.Time)
		for j, line := range strings.Split(t.Label, "\n") {
			dc.DrawStringAnchored(line, x, f.y1+labelPad/2+float64(j)*f.timeLine, 0.5, 1)
		}
	}
}

// drawLegend draws a horizontal legend row anchored at the top right.
func (r *rasterizer) drawLegend(dc *gg.Context, f frame) {
	dc.SetFontFace(r.timeFace)
	swatch := dc.FontHeight()

	widths := make([]float64, len(r.c.Legend))
	total := 0.0
	for i, e := range r.c.Legend {
		lw, _ := dc.MeasureString(e.Label)
		widths[i] = swatch + labelPad/2 + lw
		total += widths[i]
	}
	total += legendGap * float64(len(r.c.Legend)-1)

	x := float64(r.c.Width) - marginRight - total
	for i, e := range r.c.Legend {
		dc.DrawRectangle(x, f.legendY-swatch/2, swatch, swatch)
		dc.SetColor(withOpacity(e.Color, r.c.Style.BarOpacity))
		dc.Fill()

		dc.SetColor(r.label)
		dc.DrawStringAnchored(e.Label, x+swatch+labelPad/2, f.legendY, 0, 0.35)
		x += widths[i] + legendGap
	}
}
