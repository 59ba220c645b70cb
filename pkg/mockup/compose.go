// Package mockup places rendered images onto social-media sized canvases.
//
// A mockup is a fixed-size, opaque canvas (see [Format]) with a black
// placeholder background. [Compose] resizes the input to a caller-chosen
// target size and centers it on the canvas. The target size is independent
// of the canvas, so the image may be distorted or overhang the edges; the
// overhang is clipped.
//
//	img, err := chart.Rasterize()
//	out, err := mockup.Compose(img, mockup.Story, 1050, 800)
//	err = mockup.EncodePNG(w, out)
package mockup

import (
	"bytes"
	"image"
	"image/color"
	"io"
	"reflect"

	"github.com/disintegration/imaging"

	errs "github.com/matzehuels/storyline/pkg/errors"
)

// MIMEType is the content type of encoded mockups.
const MIMEType = "image/png"

// MaxTargetSize bounds the target width and height in pixels.
const MaxTargetSize = 4000

// Placeholder is the canvas background behind the image.
var Placeholder = color.NRGBA{0, 0, 0, 255}

// Rasterizer is anything that can produce an image, such as a timeline chart.
type Rasterizer interface {
	Rasterize() (image.Image, error)
}

// Compose accepts an [image.Image], a [Rasterizer] or encoded image bytes
// (PNG or JPEG) and composes it onto the canvas of format. Any other input
// fails with INVALID_INPUT_TYPE.
func Compose(input any, format Format, targetWidth, targetHeight int) (*image.NRGBA, error) {
	var img image.Image
	switch in := input.(type) {
	case image.Image:
		if isNilPointer(in) {
			return nil, errs.New(errs.ErrCodeInvalidInputType, "input image is nil")
		}
		img = in
	case Rasterizer:
		r, err := in.Rasterize()
		if err != nil {
			return nil, err
		}
		img = r
	case []byte:
		d, err := imaging.Decode(bytes.NewReader(in))
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInputType, err, "input bytes are not a decodable image")
		}
		img = d
	default:
		return nil, errs.New(errs.ErrCodeInvalidInputType, "input must be an image or a chart, got %T", input)
	}
	return ComposeImage(img, format, targetWidth, targetHeight)
}

// ComposeImage resizes img to targetWidth x targetHeight with Lanczos
// resampling and centers it on a black canvas of the format's size.
// Transparent regions of img show the black canvas. The result is opaque.
func ComposeImage(img image.Image, format Format, targetWidth, targetHeight int) (*image.NRGBA, error) {
	if !format.Valid() {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "invalid mockup format %d", int(format))
	}
	if img == nil || isNilPointer(img) {
		return nil, errs.New(errs.ErrCodeInvalidInputType, "input image is nil")
	}
	if targetWidth <= 0 || targetHeight <= 0 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "target size must be positive, got %dx%d", targetWidth, targetHeight)
	}
	if targetWidth > MaxTargetSize || targetHeight > MaxTargetSize {
		return nil, errs.New(errs.ErrCodeInvalidInput, "target size cannot exceed %dx%d, got %dx%d", MaxTargetSize, MaxTargetSize, targetWidth, targetHeight)
	}

	cw, ch := format.Size()
	canvas := imaging.New(cw, ch, Placeholder)

	resized := imaging.Resize(img, targetWidth, targetHeight, imaging.Lanczos)
	offset := image.Pt(floorDiv(cw-targetWidth, 2), floorDiv(ch-targetHeight, 2))

	return imaging.Overlay(canvas, resized, offset, 1.0), nil
}

// isNilPointer reports whether v is a typed nil pointer, such as a nil
// *image.NRGBA stored in an image.Image.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Filename returns the download name for a mockup of format.
func Filename(format Format) string {
	return "instagram_mockup_" + format.Slug() + ".png"
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return errs.Wrap(errs.ErrCodeRenderFailed, err, "encode mockup")
	}
	return nil
}
