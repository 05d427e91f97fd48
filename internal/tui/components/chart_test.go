package components

import (
	"strings"
	"testing"

	"github.com/theirongolddev/rupee/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func TestSparklineWidth(t *testing.T) {
	got := Sparkline([]float64{0, 1500, 3000, 4500}, theme.Active.Green)
	if w := lipgloss.Width(got); w != 4 {
		t.Errorf("sparkline width = %d, want 4", w)
	}
	if Sparkline(nil, theme.Active.Green) != "" {
		t.Error("empty sparkline should render nothing")
	}
}

func TestHBarChartScalesToPeak(t *testing.T) {
	out := HBarChart([]HBar{
		{Label: "Food", Value: 100, Note: "₹100"},
		{Label: "Rent", Value: 50, Note: "₹50"},
		{Label: "Misc", Value: 0, Note: "₹0"},
	}, theme.Active.Accent, 40)

	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	food := strings.Count(lines[0], "█")
	rent := strings.Count(lines[1], "█")
	if food <= rent || rent == 0 {
		t.Errorf("bar lengths food=%d rent=%d", food, rent)
	}
	if strings.Contains(lines[2], "█") {
		t.Error("zero value should render no bar")
	}
	for i, l := range lines {
		if w := lipgloss.Width(l); w != lipgloss.Width(lines[0]) {
			t.Errorf("line %d width = %d", i, w)
		}
	}
}

func TestFormatChartLabel(t *testing.T) {
	cases := map[float64]string{2000: "2k", 2500: "2.5k", 3e6: "3M", 40: "40"}
	for in, want := range cases {
		if got := formatChartLabel(in); got != want {
			t.Errorf("formatChartLabel(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestTabIdxByKey(t *testing.T) {
	if TabIdxByKey('y') != 4 || TabIdxByKey('s') != 6 || TabIdxByKey('z') != -1 {
		t.Error("unexpected tab key mapping")
	}
	for _, tab := range Tabs {
		if rune(tab.Name[tab.KeyPos]|0x20) != tab.Key {
			t.Errorf("tab %s key %c not at KeyPos %d", tab.Name, tab.Key, tab.KeyPos)
		}
	}
}

func TestColumnChartLayout(t *testing.T) {
	out := ColumnChart([]string{"Sep", "Oct", "Nov"}, []Series{
		{Name: "Income", Values: []float64{4000, 3500, 4200}, Color: theme.Active.Green},
		{Name: "Expenses", Values: []float64{1500, 1800}, Color: theme.Active.Red},
	}, 60, 10)

	lines := strings.Split(out, "\n")
	if len(lines) != 10 {
		t.Fatalf("lines = %d, want 10", len(lines))
	}
	if !strings.Contains(lines[0], "5k") {
		t.Errorf("top axis label missing: %q", lines[0])
	}
	if !strings.Contains(lines[len(lines)-2], "Nov") {
		t.Errorf("month labels missing: %q", lines[len(lines)-2])
	}
	if !strings.Contains(lines[len(lines)-1], "Expenses") {
		t.Errorf("legend missing: %q", lines[len(lines)-1])
	}
	for i, l := range lines[:len(lines)-3] {
		if w := lipgloss.Width(l); w > 60 {
			t.Errorf("row %d width = %d exceeds 60", i, w)
		}
	}

	if got := ColumnChart([]string{"a", "b", "c"}, []Series{{Values: []float64{1, 2, 3}}, {Values: []float64{1}}}, 8, 10); strings.Contains(got, "└") {
		t.Error("narrow chart should fall back to a sparkline")
	}
	if ColumnChart(nil, nil, 60, 10) != "" {
		t.Error("empty chart should render nothing")
	}
}

func TestChartTickStep(t *testing.T) {
	cases := map[float64]float64{4500: 1000, 100: 20, 12: 2, 0: 1}
	for in, want := range cases {
		if got := chartTickStep(in); got != want {
			t.Errorf("chartTickStep(%v) = %v, want %v", in, got, want)
		}
	}
}
