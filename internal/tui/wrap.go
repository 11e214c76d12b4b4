package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// styledSegment is a rendered pill together with its printable width.
type styledSegment struct {
	s     string
	width int
}

func newSegment(text string, style lipgloss.Style) styledSegment {
	return styledSegment{
		s:     style.Render(text),
		width: runewidth.StringWidth(text) + pillPadding,
	}
}

func renderSegments(segs []styledSegment, gap int) string {
	var b strings.Builder
	for i, seg := range segs {
		if i > 0 {
			b.WriteString(strings.Repeat(" ", gap))
		}
		b.WriteString(seg.s)
	}
	return b.String()
}

// wrapSegments lays segments out left to right, breaking onto a new line when
// the next one would overflow width. A segment wider than width gets its own line.
func wrapSegments(segs []styledSegment, width, gap int) string {
	if width <= 0 {
		return renderSegments(segs, gap)
	}
	var out strings.Builder
	line := make([]styledSegment, 0, len(segs))
	lineWidth := 0

	for _, seg := range segs {
		next := seg.width
		if len(line) > 0 {
			next += gap
		}
		if lineWidth+next > width && len(line) > 0 {
			out.WriteString(renderSegments(line, gap))
			out.WriteRune('\n')
			line = line[:0]
			lineWidth = 0
			next = seg.width
		}
		line = append(line, seg)
		lineWidth += next
	}
	out.WriteString(renderSegments(line, gap))
	return out.String()
}
