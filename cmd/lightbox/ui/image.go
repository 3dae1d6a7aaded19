package ui

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"strings"

	"lightbox/internal/gallery"

	"github.com/charmbracelet/lipgloss"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register decoder
)

// ErrUndecodable means the slide's bytes could not be turned into pixels
// (an SVG, a remote URI, or corrupt data).
var ErrUndecodable = errors.New("image cannot be drawn in a terminal")

const upperHalfBlock = "▀"

// DecodeSlide decodes an encoded slide or a base64 data URI.
func DecodeSlide(s gallery.Slide) (image.Image, error) {
	if !s.Valid {
		return nil, ErrUndecodable
	}
	data := s.Data()
	if data == nil {
		if r, ok := s.Record.Payload.(gallery.Ready); ok {
			enc, ok := gallery.PayloadFromBase64(dataURIBody(r.URI), "").(gallery.Encoded)
			if ok {
				data = enc.Data
			}
		}
	}
	if len(data) == 0 {
		return nil, ErrUndecodable
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodable, err)
	}
	return img, nil
}

func dataURIBody(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return ""
	}
	if i := strings.Index(uri, ";base64,"); i >= 0 {
		return uri[i+len(";base64,"):]
	}
	return ""
}

// RenderBlocks draws img into cols x rows cells using upper half blocks, so
// each cell carries two vertical pixels. The image keeps its aspect ratio
// (cells are assumed twice as tall as wide) and is centred.
func RenderBlocks(img image.Image, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	pw, ph := fitWithin(b.Dx(), b.Dy(), cols, rows*2)

	scaled := image.NewRGBA(image.Rect(0, 0, pw, ph))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, xdraw.Src, nil)

	offX := (cols - pw) / 2
	offY := (rows*2 - ph) / 2

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			top, topOK := pixelAt(scaled, c-offX, 2*r-offY)
			bottom, bottomOK := pixelAt(scaled, c-offX, 2*r+1-offY)
			switch {
			case topOK && bottomOK:
				sb.WriteString(lipgloss.NewStyle().
					Foreground(hexColor(top)).
					Background(hexColor(bottom)).
					Render(upperHalfBlock))
			case topOK:
				sb.WriteString(lipgloss.NewStyle().Foreground(hexColor(top)).Render(upperHalfBlock))
			case bottomOK:
				sb.WriteString(lipgloss.NewStyle().Foreground(hexColor(bottom)).Render("▄"))
			default:
				sb.WriteByte(' ')
			}
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// RenderPlaceholder draws the box shown for slides that cannot be drawn.
func RenderPlaceholder(styles Styles, label string, cols, rows int) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	if w := lipgloss.Width(label); w > cols {
		label = truncateRunes(label, cols)
	}
	return styles.Placeholder.Width(cols).Height(rows).Render(label)
}

// RenderSlide renders a slide or its placeholder. The bool reports whether
// real pixels were drawn.
func RenderSlide(styles Styles, s gallery.Slide, cols, rows int) (string, bool) {
	img, err := DecodeSlide(s)
	if err != nil {
		return RenderPlaceholder(styles, "▨ "+s.Alt, cols, rows), false
	}
	return RenderBlocks(img, cols, rows), true
}

func fitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return maxW, maxH
	}
	scale := float64(maxW) / float64(w)
	if s := float64(maxH) / float64(h); s < scale {
		scale = s
	}
	fw := int(float64(w)*scale + 0.5)
	fh := int(float64(h)*scale + 0.5)
	if fw < 1 {
		fw = 1
	}
	if fh < 1 {
		fh = 1
	}
	if fw > maxW {
		fw = maxW
	}
	if fh > maxH {
		fh = maxH
	}
	return fw, fh
}

func pixelAt(img *image.RGBA, x, y int) (color.RGBA, bool) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return color.RGBA{}, false
	}
	return img.RGBAAt(x, y), true
}

func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
