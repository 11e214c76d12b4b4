package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

var barEighths = []rune{' ', '▏', '▎', '▍', '▌', '▋', '▊', '▉', '█'}

// BarRows renders one horizontal bar per label, scaled to the largest value.
func BarRows(labels []string, values []float64, width int) []string {
	if len(labels) == 0 || len(labels) != len(values) {
		return nil
	}
	labelWidth := 0
	valueWidth := 0
	peak := 0.0
	for i, l := range labels {
		labelWidth = max(labelWidth, runewidth.StringWidth(l))
		valueWidth = max(valueWidth, len(formatBarValue(values[i])))
		peak = math.Max(peak, values[i])
	}
	barWidth := width - labelWidth - valueWidth - 2
	if barWidth < 1 {
		barWidth = 1
	}

	rows := make([]string, len(labels))
	for i, l := range labels {
		bar := ""
		if peak > 0 {
			bar = renderBar(values[i]/peak*float64(barWidth), barWidth)
		} else {
			bar = strings.Repeat(" ", barWidth)
		}
		rows[i] = runewidth.FillRight(l, labelWidth) + " " + bar + " " + padCell(formatBarValue(values[i]), valueWidth, true)
	}
	return rows
}

// PlotBars writes a titled bar chart.
func PlotBars(w io.Writer, title string, labels []string, values []float64, width int) error {
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for _, row := range BarRows(labels, values, width) {
		if _, err := fmt.Fprintln(w, row); err != nil {
			return err
		}
	}
	return nil
}

func renderBar(length float64, width int) string {
	if length < 0 {
		length = 0
	}
	full := int(length)
	if full > width {
		full = width
	}
	var b strings.Builder
	b.WriteString(strings.Repeat(string(barEighths[8]), full))
	used := full
	if frac := int(math.Round((length - float64(full)) * 8)); frac > 0 && used < width {
		b.WriteRune(barEighths[frac])
		used++
	}
	b.WriteString(strings.Repeat(" ", width-used))
	return b.String()
}

func formatBarValue(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
