package title

import "testing"

func TestCleanForMatching(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{raw: "Baldur's Gate", want: "baldurs gate"},
		{raw: "The Witcher", want: "witcher"},
		{raw: "NieR:Automata™", want: "nierautomata"},
		{raw: "Pokémon", want: "pokmon"},
		{raw: "A Hat in Time", want: "hat time"},
		{raw: "  spaced   out  ", want: "spaced out"},
	}
	for _, tc := range cases {
		if got := CleanForMatching(tc.raw); got != tc.want {
			t.Fatalf("CleanForMatching(%q)=%q want %q", tc.raw, got, tc.want)
		}
	}
}

func TestSimilarityIdenticalTitles(t *testing.T) {
	titles := []string{"Hades", "Dark Souls III", "Fallout 4", "Celeste"}
	for _, title := range titles {
		if got := Similarity(title, title); got != 1.0 {
			t.Fatalf("Similarity(%q, %q)=%v want 1.0", title, title, got)
		}
	}
}

func TestSimilarityNumeralGate(t *testing.T) {
	cases := []struct {
		a, b string
	}{
		{a: "Fallout 3", b: "Fallout 4"},
		{a: "Final Fantasy VII", b: "Final Fantasy X"},
		{a: "Dark Souls II", b: "Dark Souls 3"},
		{a: "Street Fighter 2 Turbo", b: "Street Fighter 4 Turbo"},
	}
	for _, tc := range cases {
		if got := Similarity(tc.a, tc.b); got != 0.0 {
			t.Fatalf("Similarity(%q, %q)=%v want 0.0", tc.a, tc.b, got)
		}
	}
}

func TestSimilarityAgreeingNumerals(t *testing.T) {
	// Arabic and Roman forms of the same number pass the gate.
	if got := Similarity("Mass Effect 2", "Mass Effect II"); got == 0.0 {
		t.Fatalf("Similarity gated Mass Effect 2 vs Mass Effect II, want nonzero")
	}
	if got := Similarity("Civilization VI", "Civilization 6"); got == 0.0 {
		t.Fatalf("Similarity gated Civilization VI vs Civilization 6, want nonzero")
	}
}

func TestSimilarityIgnoresStopWordsAndCase(t *testing.T) {
	if got := Similarity("The Witcher", "witcher"); got != 1.0 {
		t.Fatalf("Similarity=%v want 1.0", got)
	}
}

func TestSimilarityUnrelatedTitlesScoreLow(t *testing.T) {
	got := Similarity("Stardew Valley", "Doom Eternal")
	if got >= 0.5 {
		t.Fatalf("Similarity(Stardew Valley, Doom Eternal)=%v want < 0.5", got)
	}
}

func TestNumeralValue(t *testing.T) {
	cases := []struct {
		token string
		want  int
		ok    bool
	}{
		{token: "3", want: 3, ok: true},
		{token: "10", want: 10, ok: true},
		{token: "12", want: 12, ok: true},
		{token: "IV", want: 4, ok: true},
		{token: "viii", want: 8, ok: true},
		{token: "X", want: 10, ok: true},
		{token: "XI", ok: false},
		{token: "IVX", ok: false},
		{token: "hades", ok: false},
		{token: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := NumeralValue(tc.token)
		if ok != tc.ok || (ok && got != tc.want) {
			t.Fatalf("NumeralValue(%q)=(%d,%v) want (%d,%v)", tc.token, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIsRomanNumeral(t *testing.T) {
	for _, token := range []string{"I", "iv", "X", "viii"} {
		if !IsRomanNumeral(token) {
			t.Fatalf("IsRomanNumeral(%q)=false want true", token)
		}
	}
	for _, token := range []string{"XI", "Hades", "4", ""} {
		if IsRomanNumeral(token) {
			t.Fatalf("IsRomanNumeral(%q)=true want false", token)
		}
	}
}

func TestMatchRatio(t *testing.T) {
	if got := matchRatio("", ""); got != 1.0 {
		t.Fatalf("matchRatio on empty strings=%v want 1.0", got)
	}
	if got := matchRatio("abcd", "abcd"); got != 1.0 {
		t.Fatalf("matchRatio identical=%v want 1.0", got)
	}
	if got := matchRatio("abcd", "wxyz"); got != 0.0 {
		t.Fatalf("matchRatio disjoint=%v want 0.0", got)
	}
	// "abcd" vs "abed": blocks "ab" + "d" = 3 matched, ratio 2*3/8.
	if got := matchRatio("abcd", "abed"); got != 0.75 {
		t.Fatalf("matchRatio=%v want 0.75", got)
	}
}
