package ui

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"github.com/five82/ferry/internal/api"
)

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	got := truncateMiddle("http://localhost:8080/api", 11)
	if got != "http:…0/api" {
		t.Fatalf("truncateMiddle = %q", got)
	}
}

func TestFit(t *testing.T) {
	if got := fit("abc", 5); got != "abc  " {
		t.Fatalf("fit pad = %q", got)
	}
	if got := fit("abcdefgh", 5); runewidth.StringWidth(got) != 5 || !strings.HasSuffix(got, "…") {
		t.Fatalf("fit truncate = %q", got)
	}
	if got := fit("line\nbreak", 20); strings.Contains(got, "\n") {
		t.Fatalf("fit kept newline: %q", got)
	}
}

func TestColumnWidths(t *testing.T) {
	got := columnWidths([]column{{width: 10}, {}, {width: 5}}, 40)
	if got[0] != 10 || got[2] != 5 || got[1] != 40-10-5-2 {
		t.Fatalf("columnWidths = %v", got)
	}
	narrow := columnWidths([]column{{width: 30}, {}}, 20)
	if narrow[1] != 4 {
		t.Fatalf("flex column = %d, want minimum 4", narrow[1])
	}
}

func TestRenderTable_KeepsSelectionVisible(t *testing.T) {
	styles := GetTheme("Slate").Styles()
	rows := [][]string{{"r0"}, {"r1"}, {"r2"}, {"r3"}, {"r4"}}

	out := renderTable(styles, []column{{title: "Name"}}, rows, 4, 20, 3)
	if !strings.Contains(out, "r4") || !strings.Contains(out, "r3") || strings.Contains(out, "r2") {
		t.Fatalf("renderTable window wrong:\n%s", out)
	}
}

func TestParseTTL(t *testing.T) {
	cases := map[string]struct {
		want    int
		wantErr bool
	}{
		"":    {0, false},
		" 60": {60, false},
		"-1":  {0, true},
		"1.5": {0, true},
		"ten": {0, true},
	}
	for in, tc := range cases {
		got, err := parseTTL(in)
		if (err != nil) != tc.wantErr || got != tc.want {
			t.Errorf("parseTTL(%q) = %d, %v", in, got, err)
		}
	}
}

func TestParseCacheValue(t *testing.T) {
	cases := map[string]string{
		`{"a": 1}`: `{"a":1}`,
		"42":       "42",
		"true":     "true",
		"hello":    `"hello"`,
		"":         `""`,
		`"quoted"`: `"quoted"`,
	}
	for in, want := range cases {
		if got := parseCacheValue(in).String(); got != want {
			t.Errorf("parseCacheValue(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParseItemData(t *testing.T) {
	if data, err := parseItemData("  "); err != nil || data == nil || len(data) != 0 {
		t.Fatalf("parseItemData blank = %v, %v", data, err)
	}
	if _, err := parseItemData("[]"); err == nil {
		t.Fatalf("parseItemData array returned nil error")
	}
}

func TestFileEntryHelpers(t *testing.T) {
	obj := api.Object(api.Fields{
		"name":        api.String("a.txt"),
		"size":        api.Int(2048),
		"contentType": api.String("text/plain"),
	})
	if got := fileName(obj); got != "a.txt" {
		t.Fatalf("fileName = %q", got)
	}
	if got := fileSize(obj); got != "2.0 kB" {
		t.Fatalf("fileSize = %q", got)
	}
	if got := fileString(obj, "type", "contentType"); got != "text/plain" {
		t.Fatalf("fileString = %q", got)
	}

	if got := fileName(api.String("plain.bin")); got != "plain.bin" {
		t.Fatalf("fileName(string) = %q", got)
	}
	if got := fileName(api.Int(7)); got != "7" {
		t.Fatalf("fileName(number) = %q", got)
	}
	if got := fileSize(api.String("x")); got != "-" {
		t.Fatalf("fileSize(no size) = %q", got)
	}
}

func TestFormatStamp(t *testing.T) {
	if got := formatStamp(""); got != "-" {
		t.Fatalf("formatStamp empty = %q", got)
	}
	if got := formatStamp("yesterday-ish"); got != "yesterday-ish" {
		t.Fatalf("formatStamp unparsed = %q", got)
	}
	if got := formatMillis(0); got != "-" {
		t.Fatalf("formatMillis(0) = %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandHome("~/docs/a.csv")
	if err != nil || got != filepath.Join(home, "docs", "a.csv") {
		t.Fatalf("expandHome = %q, %v", got, err)
	}
	if got, _ := expandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("expandHome abs = %q", got)
	}
	if _, err := expandHome(""); err == nil {
		t.Fatalf("expandHome empty returned nil error")
	}
}

func TestParseView(t *testing.T) {
	for i, name := range viewNames {
		if got := parseView(strings.ToUpper(name)); got != View(i) {
			t.Errorf("parseView(%q) = %v", name, got)
		}
		if View(i).String() != name {
			t.Errorf("View(%d).String() = %q", i, View(i).String())
		}
	}
	if parseView("bogus") != ViewItems {
		t.Fatalf("parseView(bogus) not items")
	}
}
