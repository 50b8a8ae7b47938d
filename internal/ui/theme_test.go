package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	want := []string{"Nightfox", "Kanagawa", "Slate"}
	if len(names) != len(want) {
		t.Fatalf("ThemeNames() returned %d names, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("ThemeNames() = %v, want %v", names, want)
		}
	}

	// Callers get a copy.
	names[0] = "Mutated"
	if ThemeNames()[0] != "Nightfox" {
		t.Fatal("ThemeNames() exposed internal order slice")
	}
}

func TestNextTheme(t *testing.T) {
	tests := map[string]string{
		"Nightfox": "Kanagawa",
		"Kanagawa": "Slate",
		"Slate":    "Nightfox",
		"Unknown":  "Nightfox",
	}
	for current, want := range tests {
		if got := NextTheme(current); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", current, got, want)
		}
	}
}

func TestGetTheme(t *testing.T) {
	for _, name := range ThemeNames() {
		if got := GetTheme(name).Name; got != name {
			t.Fatalf("GetTheme(%q).Name = %q", name, got)
		}
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemesDefineEveryStatusColor(t *testing.T) {
	keys := []string{"idle", "loading", "retrying", "success", "failed", "online", "offline"}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		for _, k := range keys {
			if th.StatusColors[k] == "" {
				t.Fatalf("theme %s missing status color %q", name, k)
			}
		}
		if th.Land == "" || th.Sea == "" || th.Marker == "" {
			t.Fatalf("theme %s missing minimap colors", name)
		}
	}
}

func TestStatusStyleFallsBackToMuted(t *testing.T) {
	styles := GetTheme("Nightfox").Styles()
	if got := styles.StatusStyle("unknown").Render("x"); got == "" {
		t.Fatal("StatusStyle(unknown) rendered nothing")
	}
}
