package validation

import (
	"encoding/json"
	"testing"
)

func decodeTree(t *testing.T, data string) any {
	t.Helper()
	var tree any
	if err := json.Unmarshal([]byte(data), &tree); err != nil {
		t.Fatalf("decode tree: %v", err)
	}
	return tree
}

func TestScanSuspiciousFindsFabricatedOverlay(t *testing.T) {
	tree := decodeTree(t, `{
		"timelines": {
			"textOverlayTimeline": {
				"3-4s": {"texts": [{"text": "Swipe up for more!"}]}
			}
		}
	}`)
	matches := ScanSuspicious(tree)
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %v", len(matches), matches)
	}
	if matches[0].Pattern != "swipe up" {
		t.Errorf("Pattern = %q, want \"swipe up\"", matches[0].Pattern)
	}
	if matches[0].Path != ".timelines.textOverlayTimeline.3-4s.texts[0].text" {
		t.Errorf("Path = %q", matches[0].Path)
	}
	if matches[0].Value != "Swipe up for more!" {
		t.Errorf("Value = %q", matches[0].Value)
	}
}

func TestScanSuspiciousCaseless(t *testing.T) {
	matches := ScanSuspicious("LINK IN BIO")
	if len(matches) != 1 || matches[0].Pattern != "link in bio" {
		t.Fatalf("caseless match failed: %v", matches)
	}
}

func TestScanSuspiciousCleanTree(t *testing.T) {
	tree := decodeTree(t, `{
		"static_metadata": {"captionText": "genuine caption about cooking"},
		"timelines": {"speechTimeline": {"0-1s": {"text": "today we make pasta"}}}
	}`)
	if matches := ScanSuspicious(tree); len(matches) != 0 {
		t.Fatalf("clean tree should produce no matches: %v", matches)
	}
}

func TestWalkStringsOrderAndPaths(t *testing.T) {
	tree := decodeTree(t, `{"b": "two", "a": ["one"], "c": {"d": "three"}, "n": 5}`)
	var got []string
	WalkStrings(tree, func(path, leaf string) {
		got = append(got, path+"="+leaf)
	})
	want := []string{".a[0]=one", ".b=two", ".c.d=three"}
	if len(got) != len(want) {
		t.Fatalf("visited %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visit[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
