package timeline

import "testing"

func TestParseSpan(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want Span
		ok   bool
	}{
		{name: "simple interval", key: "0-1s", want: Span{Start: 0, End: 1}, ok: true},
		{name: "multi digit", key: "12-13s", want: Span{Start: 12, End: 13}, ok: true},
		{name: "wide interval", key: "10-15s", want: Span{Start: 10, End: 15}, ok: true},
		{name: "missing suffix", key: "12-13", ok: false},
		{name: "negative start", key: "-1-2s", ok: false},
		{name: "fractional", key: "1.5-2s", ok: false},
		{name: "empty", key: "", ok: false},
		{name: "words", key: "intro", ok: false},
		{name: "trailing garbage", key: "1-2s extra", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseSpan(tt.key)
			if ok != tt.ok {
				t.Fatalf("ParseSpan(%q) ok = %v, want %v", tt.key, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Fatalf("ParseSpan(%q) = %+v, want %+v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSpanContains(t *testing.T) {
	span := Span{Start: 5, End: 10}
	if !span.Contains(5) {
		t.Fatal("span should contain its start")
	}
	if span.Contains(10) {
		t.Fatal("span end is exclusive")
	}
	if !span.Contains(9.99) {
		t.Fatal("span should contain instants just before end")
	}
	if span.Contains(4.5) {
		t.Fatal("span should not contain instants before start")
	}
}

func TestSortedKeysSkipsMalformed(t *testing.T) {
	tl := Timeline{
		"5-6s":    {},
		"0-1s":    {},
		"garbage": {},
		"2-3s":    {},
	}
	keys := tl.SortedKeys()
	want := []string{"0-1s", "2-3s", "5-6s"}
	if len(keys) != len(want) {
		t.Fatalf("SortedKeys returned %d keys, want %d: %v", len(keys), len(want), keys)
	}
	for i, key := range want {
		if keys[i] != key {
			t.Fatalf("SortedKeys[%d] = %q, want %q", i, keys[i], key)
		}
	}
}
