package ui

import "testing"

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if len(names) != 2 || names[0] != "Slate" || names[1] != "Dracula" {
		t.Fatalf("ThemeNames() = %v, want [Slate Dracula]", names)
	}
	names[0] = "mutated"
	if ThemeNames()[0] != "Slate" {
		t.Fatalf("ThemeNames returned shared slice")
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme("Slate"); got != "Dracula" {
		t.Fatalf("NextTheme(Slate) = %q, want Dracula", got)
	}
	if got := NextTheme("Dracula"); got != "Slate" {
		t.Fatalf("NextTheme(Dracula) = %q, want Slate", got)
	}
	if got := NextTheme("unknown"); got != "Slate" {
		t.Fatalf("NextTheme(unknown) = %q, want Slate", got)
	}
}

func TestGetTheme_FallsBackToSlate(t *testing.T) {
	if got := GetTheme("Dracula").Name; got != "Dracula" {
		t.Fatalf("GetTheme(Dracula) = %q", got)
	}
	if got := GetTheme("").Name; got != "Slate" {
		t.Fatalf("GetTheme(\"\") = %q, want Slate", got)
	}
}

func TestStatusColor(t *testing.T) {
	th := GetTheme("Slate")
	if got := th.StatusColor(" Healthy "); got != th.StatusColors["healthy"] {
		t.Fatalf("StatusColor(Healthy) = %q, want %q", got, th.StatusColors["healthy"])
	}
	if got := th.StatusColor("mystery"); got != th.Muted {
		t.Fatalf("StatusColor(mystery) = %q, want muted %q", got, th.Muted)
	}
}
