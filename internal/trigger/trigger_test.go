package trigger

import "testing"

func TestDetect(t *testing.T) {
	cases := []struct {
		name      string
		text      string
		caret     int
		wantClass Classification
		wantFull  string
		wantQuery string
	}{
		{"empty text", "", 0, None, "", ""},
		{"no at sign", "hello world", 11, None, "", ""},
		{"bare at", "@", 1, General, "@", ""},
		{"at after text", "see @", 5, General, "@", ""},
		{"search query", "@foo", 4, Search, "@foo", "foo"},
		{"search mid sentence", "check @main.go", 14, Search, "@main.go", "main.go"},
		{"at then space", "@ ", 2, General, "@", ""},
		{"at then spaces", "@   ", 4, General, "@", ""},
		{"at then word then space", "@foo bar", 8, Ambiguous, "", ""},
		{"at then newline then word", "@\nx", 3, Ambiguous, "", ""},
		{"caret before at", "@foo", 0, None, "", ""},
		{"caret splits query", "@foobar", 4, Search, "@foo", "foo"},
		{"at behind caret only counts", "a@b c@d", 3, Search, "@b", "b"},
		{"caret past end", "@", 5, None, "", ""},
		{"negative caret", "@", -1, None, "", ""},
		{"non-ascii before at", "café @go", len("café @go"), Search, "@go", "go"},
		{"non-ascii in query", "@héllo", len("@héllo"), Search, "@héllo", "héllo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Detect(tc.text, tc.caret)
			if got.Class != tc.wantClass {
				t.Fatalf("Detect(%q, %d).Class = %v, want %v", tc.text, tc.caret, got.Class, tc.wantClass)
			}
			if got.FullMatch != tc.wantFull {
				t.Errorf("FullMatch = %q, want %q", got.FullMatch, tc.wantFull)
			}
			if got.Query != tc.wantQuery {
				t.Errorf("Query = %q, want %q", got.Query, tc.wantQuery)
			}
		})
	}
}

func TestByteOffsetFromRunes(t *testing.T) {
	cases := []struct {
		text  string
		runes int
		want  int
	}{
		{"", 0, 0},
		{"abc", 2, 2},
		{"abc", 10, 3},
		{"abc", -1, 0},
		{"café @go", 8, 9}, // é is 2 bytes
		{"日本語", 2, 6},      // 3 bytes per rune
	}
	for _, tc := range cases {
		if got := ByteOffsetFromRunes(tc.text, tc.runes); got != tc.want {
			t.Errorf("ByteOffsetFromRunes(%q, %d) = %d, want %d", tc.text, tc.runes, got, tc.want)
		}
	}
}

func TestByteOffsetFromUTF16(t *testing.T) {
	cases := []struct {
		text  string
		units int
		want  int
	}{
		{"", 0, 0},
		{"abc", 2, 2},
		{"abc", 10, 3},
		{"café @go", 8, 9},  // é: 1 unit, 2 bytes
		{"🙂 @x", 4, 6},      // 🙂: 2 units, 4 bytes
		{"🙂 @x", 1, 4},      // caret inside the surrogate pair rounds up past it
		{"日本語", 2, 6},       // BMP: 1 unit, 3 bytes each
	}
	for _, tc := range cases {
		if got := ByteOffsetFromUTF16(tc.text, tc.units); got != tc.want {
			t.Errorf("ByteOffsetFromUTF16(%q, %d) = %d, want %d", tc.text, tc.units, got, tc.want)
		}
	}
}

// A rune-counted caret and a UTF-16 counted caret over the same non-ASCII
// text must resolve to the same byte anchor before detection.
func TestDetect_CaretUnitsAgree(t *testing.T) {
	text := "café @go"
	byRunes := Detect(text, ByteOffsetFromRunes(text, 8))
	byUnits := Detect(text, ByteOffsetFromUTF16(text, 8))
	if byRunes != byUnits {
		t.Fatalf("caret unit mismatch: %+v vs %+v", byRunes, byUnits)
	}
	if byRunes.Query != "go" {
		t.Errorf("Query = %q, want %q", byRunes.Query, "go")
	}
}

func TestDetect_Stateless(t *testing.T) {
	// Same input must classify identically no matter what came before.
	first := Detect("@foo", 4)
	Detect("unrelated", 3)
	second := Detect("@foo", 4)
	if first != second {
		t.Errorf("Detect is not stateless: %+v vs %+v", first, second)
	}
}
