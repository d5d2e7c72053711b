package normalize

import "testing"

// goldenCorpus locks the byte-exact normalization contract shared by the
// ingestion and query paths. Changing any expectation here requires a
// synchronized re-normalization of stored catalog columns.
var goldenCorpus = []struct {
	in   string
	want string
}{
	{"IVISKIN G-3", "iviskin g3"},
	{"IviSkin G.3", "iviskin g3"},
	{"iviskin g 3", "iviskin g3"},
	{"IVISKIN G3", "iviskin g3"},
	{"G-3", "g3"},
	{"G3", "g3"},
	{"G 4", "g4"},
	{"Blåtand Høyttaler X-200", "blaatand hoeyttaler x200"},
	{"Grönkvist Värmepump V 2", "groenkvist vaermepump v2"},
	{"  spaced   out\ttext ", "spaced out text"},
	{"ÆØÅ", "aeoeaa"},
	{"model-7 pro", "model7 pro"},
	{"7-g", "7-g"}, // digit before letter is not a split model code
	{"", ""},
	{"   \t\n  ", ""},
	{"a.1 b-2 c 3", "a1 b2 c3"},
}

func TestNormalize_GoldenCorpus(t *testing.T) {
	for _, tc := range goldenCorpus {
		if got := Normalize(tc.in); got != tc.want {
			t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, tc := range goldenCorpus {
		once := Normalize(tc.in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", tc.in, once, twice)
		}
	}
}

func TestNormalize_SeparatorCollapseIsDirectional(t *testing.T) {
	if got := Normalize("G-3"); got != "g3" {
		t.Errorf("Normalize(G-3) = %q, want g3", got)
	}
	// Already-normalized input passes through unchanged.
	if got := Normalize("g3"); got != "g3" {
		t.Errorf("Normalize(g3) = %q, want g3", got)
	}
}

func TestNormalize_OrderMatters(t *testing.T) {
	// The transliterated digraph must be in place before code gluing: "Ø-2"
	// becomes "oe2", not "ø2" or "oe-2".
	if got := Normalize("Ø-2"); got != "oe2" {
		t.Errorf("Normalize(Ø-2) = %q, want oe2", got)
	}
}
