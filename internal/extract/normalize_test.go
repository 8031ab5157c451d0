package extract

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"Hello\r\nWorld", "Hello World"},
		{"Hello\rWorld", "Hello World"},
		{"  Jane   Doe \n\n\n Engineer\t\t", "Jane Doe Engineer"},
		{"café résumé", "caf rsum"},
		{"a é b", "a b"},
		{"bell\x07here", "bellhere"},
		{"nul\x00byte", "nulbyte"},
		{"  ", ""},
		{"日本語", ""},
		{"line\vfeed\fform", "line feed form"},
		{"John\u00a0Smith", "John Smith"},
		{"Senior\u2003Engineer", "Senior Engineer"},
		{"line\u2028next", "line next"},
		{"a\u0085b", "a b"},
		{"Go\u00a0\u00a0\n SQL", "Go SQL"},
		{"zero\u200bwidth", "zerowidth"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_idempotent(t *testing.T) {
	inputs := []string{
		"",
		" ",
		"Hello\r\nWorld",
		"a é b",
		"\t x ​ y \r\r\n z ",
		"Experience: 5 years\n\nSkills:\tGo, SQL",
		"\x00\x01\x02",
		"emoji 🙂 inside",
		"John\u00a0Smith\u2003Senior\u2028Engineer\u0085",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"alpha beta gamma", 0, "alpha beta gamma"},
		{"alpha beta gamma", 100, "alpha beta gamma"},
		{"alpha beta gamma", 10, "alpha beta"},
		{"alpha beta gamma", 12, "alpha beta"},
		{"alpha beta gamma", 11, "alpha beta"},
		{"alphabetagamma", 5, "alpha"},
	}
	for _, tt := range tests {
		if got := truncateText(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateText(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
