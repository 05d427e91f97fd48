package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night").Name; got != "tokyo-night" {
		t.Errorf("ByName(tokyo-night) = %q", got)
	}
	if got := ByName("nope").Name; got != FlexokiDark.Name {
		t.Errorf("ByName(nope) = %q, want %q", got, FlexokiDark.Name)
	}
}

func TestNextWraps(t *testing.T) {
	last := All[len(All)-1].Name
	if got := Next(last).Name; got != All[0].Name {
		t.Errorf("Next(%s) = %q, want %q", last, got, All[0].Name)
	}
	if got := Next(All[0].Name).Name; got != All[1].Name {
		t.Errorf("Next(%s) = %q", All[0].Name, got)
	}
}

func TestSeverityColor(t *testing.T) {
	th := FlexokiDark
	if th.SeverityColor("danger") != th.Red || th.SeverityColor("warning") != th.Yellow || th.SeverityColor("normal") != th.Green {
		t.Error("severity colors do not match the palette")
	}
}
