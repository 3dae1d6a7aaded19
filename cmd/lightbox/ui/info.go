package ui

import (
	"fmt"
	"strings"

	"lightbox/internal/gallery"
	"lightbox/internal/logging"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
)

// InfoPane shows the gallery description and the current caption as
// rendered markdown.
type InfoPane struct {
	viewport viewport.Model
	renderer *glamour.TermRenderer
	dark     bool
	width    int
	height   int
	markdown string
}

// NewInfoPane creates a pane; SetSize must be called before it shows anything.
func NewInfoPane(dark bool) *InfoPane {
	vp := viewport.New(0, 0)
	vp.SetContent("")
	return &InfoPane{viewport: vp, dark: dark}
}

// SetSize resizes the pane and rebuilds the renderer for the new wrap width.
func (p *InfoPane) SetSize(width, height int) {
	if width == p.width && height == p.height {
		return
	}
	p.width, p.height = width, height
	p.viewport.Width = width
	p.viewport.Height = height
	p.renderer = nil
	if width > 4 {
		style := "light"
		if p.dark {
			style = "dark"
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width-2),
		)
		if err != nil {
			logging.UIWarn("info pane renderer: %v", err)
		} else {
			p.renderer = r
		}
	}
	p.render()
}

// SetMarkdown replaces the pane content.
func (p *InfoPane) SetMarkdown(md string) {
	if md == p.markdown {
		return
	}
	p.markdown = md
	p.render()
	p.viewport.GotoTop()
}

// ScrollUp and ScrollDown move the pane by half a page.
func (p *InfoPane) ScrollUp()   { p.viewport.HalfViewUp() }
func (p *InfoPane) ScrollDown() { p.viewport.HalfViewDown() }

// View renders the pane.
func (p *InfoPane) View() string {
	if p.width <= 0 || p.height <= 0 {
		return ""
	}
	return p.viewport.View()
}

func (p *InfoPane) render() {
	content := p.markdown
	if p.renderer != nil && content != "" {
		out, err := p.renderer.Render(content)
		if err != nil {
			logging.UIWarn("info pane render: %v", err)
		} else {
			content = strings.TrimRight(out, "\n")
		}
	}
	p.viewport.SetContent(content)
}

// SlideMarkdown builds the pane text for a slide.
func SlideMarkdown(title, description string, s gallery.Slide, counter string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	if description != "" {
		b.WriteString(strings.TrimSpace(description))
		b.WriteString("\n\n")
	}
	if s.Record.Caption != "" {
		fmt.Fprintf(&b, "> %s\n\n", s.Record.Caption)
	}
	meta := "`" + s.Filename + "`"
	if counter != "" {
		meta += " · " + counter
	}
	if !s.Valid {
		meta += " · *unavailable*"
	}
	b.WriteString(meta)
	b.WriteString("\n")
	return b.String()
}
