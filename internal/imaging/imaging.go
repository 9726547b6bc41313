// Package imaging normalises uploaded photos: only JPEG and PNG are
// accepted, large images are downscaled and everything is stored as JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxEdge bounds the longer side of a stored image, in pixels.
	MaxEdge = 1600
	// Quality is the JPEG quality used when re-encoding.
	Quality = 85
	// MaxPixels bounds width*height of an accepted upload before decoding.
	MaxPixels = 40_000_000
)

// ErrUnsupportedFormat is returned for anything that does not sniff as
// JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned for images whose dimensions exceed MaxPixels.
var ErrTooLarge = errors.New("image dimensions too large")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Result is a processed image ready to be written out.
type Result struct {
	Data   []byte
	MIME   string
	Width  int
	Height int
}

// Ext is the file extension matching MIME.
func (r *Result) Ext() string { return ".jpg" }

// Process sniffs, decodes, downscales and re-encodes the image in r. The
// client's declared content type is never trusted.
func Process(r io.Reader) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}

	mime := http.DetectContentType(data)
	if !allowedMIME[mime] {
		return nil, fmt.Errorf("%w: %s (JPEG and PNG only)", ErrUnsupportedFormat, mime)
	}

	// The byte cap says nothing about the decoded size, so check the header
	// before allocating any pixels.
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooLarge, cfg.Width, cfg.Height)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	img := fit(src, MaxEdge)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: Quality}); err != nil {
		return nil, fmt.Errorf("encoding jpeg: %w", err)
	}
	b := img.Bounds()
	return &Result{Data: buf.Bytes(), MIME: "image/jpeg", Width: b.Dx(), Height: b.Dy()}, nil
}

// fit scales src down (never up) so its longer edge is at most maxEdge and
// flattens transparency onto white, since JPEG has no alpha channel.
func fit(src image.Image, maxEdge int) image.Image {
	sb := src.Bounds()
	w, h := sb.Dx(), sb.Dy()

	if w > maxEdge || h > maxEdge {
		if w >= h {
			h = max(1, h*maxEdge/w)
			w = maxEdge
		} else {
			w = max(1, w*maxEdge/h)
			h = maxEdge
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	if w == sb.Dx() && h == sb.Dy() {
		draw.Draw(dst, dst.Bounds(), src, sb.Min, draw.Over)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, sb, draw.Over, nil)
	return dst
}
