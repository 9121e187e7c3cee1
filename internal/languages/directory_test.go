package languages

import "testing"

func TestDirectory_CodeForName(t *testing.T) {
	t.Parallel()

	d := Default()

	cases := map[string]string{
		"spanish":               "es",
		"Spanish":               "es",
		" FRENCH ":              "fr",
		"chinese (simplified)":  "zh-cn",
		"hebrew":                "he",
		"klingon":               "klingon",
	}
	for in, want := range cases {
		if got := d.CodeForName(in); got != want {
			t.Errorf("CodeForName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirectory_NameForCode(t *testing.T) {
	t.Parallel()

	d := Default()

	cases := map[string]string{
		"es":    "Spanish",
		"ES":    "Spanish",
		"zh-tw": "Chinese (Traditional)",
		"iw":    "Hebrew",
		"xx":    "xx",
	}
	for in, want := range cases {
		if got := d.NameForCode(in); got != want {
			t.Errorf("NameForCode(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDirectory_Resolve(t *testing.T) {
	t.Parallel()

	d := Default()

	if got := d.Resolve("German"); got != "de" {
		t.Errorf("expected de, got %q", got)
	}
	if got := d.Resolve("de"); got != "de" {
		t.Errorf("expected de, got %q", got)
	}
	if got := d.Resolve("Elvish"); got != "Elvish" {
		t.Errorf("expected identity fallback, got %q", got)
	}
}

func TestDirectory_NamesSortedAndDeduplicated(t *testing.T) {
	t.Parallel()

	d := Default()
	names := d.Names()

	if len(names) != len(d.Languages())-1 {
		t.Fatalf("expected one name less than codes (hebrew twice), got %d names for %d codes",
			len(names), len(d.Languages()))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Fatalf("names not sorted at %d: %q > %q", i, names[i-1], names[i])
		}
	}
}

func TestNew_SkipsBlankRows(t *testing.T) {
	t.Parallel()

	d := New([]Language{{Code: "en", Name: "english"}, {Code: "", Name: "void"}, {Code: "x", Name: " "}})
	if len(d.Languages()) != 1 {
		t.Fatalf("expected 1 language, got %d", len(d.Languages()))
	}
	if !d.Known("EN") {
		t.Error("expected en to be known")
	}
}

func TestBaseCode(t *testing.T) {
	t.Parallel()

	if got := BaseCode("zh-cn"); got != "zh" {
		t.Errorf("expected zh, got %q", got)
	}
	if got := BaseCode("en"); got != "en" {
		t.Errorf("expected en, got %q", got)
	}
	if got := BaseCode("!!"); got != "!!" {
		t.Errorf("expected passthrough, got %q", got)
	}
}
