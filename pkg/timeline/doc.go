// Package timeline renders event tables as horizontal timeline charts.
//
// # Overview
//
// Each [Event] has a title, a place and a time span. [Render] turns a slice
// of events into a [Chart]: one horizontal bar per event, laid out against a
// time axis, with the category axis holding the distinct values of one
// dimension ([GroupBy]) and bar colors following the other.
//
//	chart, err := timeline.Render(events, timeline.ByPlace, timeline.DefaultStyle())
//	if errors.Is(err, errors.ErrCodeEmptyInput) {
//	    // nothing to draw
//	}
//	img, err := chart.Rasterize()
//
// # Category Order
//
// Categories are sorted ascending by the total duration of their events:
// the category with the least time sits at the bottom of the axis, the one
// with the most at the top. Ties keep the order in which the categories
// first appear in the event list.
//
// # Style
//
// [Style] is a flat bag of settings. [DefaultStyle] returns the defaults and
// [Style.Reset] restores one field. [BarColor] is either a [FixedColor] that
// paints every bar, or [PaletteByCategory], which assigns [Palette] colors
// per value of the color dimension in first-appearance order.
//
// [StyleSettings] is the partial, serializable form used by documents and
// the HTTP API.
//
// # Rasterization
//
// [Chart.Rasterize] draws the chart with fogleman/gg. Layers, bottom to top:
// background fill, background image (stretched over the plot area with
// its own opacity), gridlines, bars, axis labels, legend.
package timeline
