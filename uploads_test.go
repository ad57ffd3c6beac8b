package main

import "testing"

func TestThumbnailObjectKey(t *testing.T) {
	got := thumbnailObjectKey("42/profile_image/abc.jpg")
	want := "42/profile_image/thumbnails/abc.jpg"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalizeEntity(t *testing.T) {
	cases := map[string]string{
		"Profile Image":   "profile_image",
		"health exports":  "health_exports",
		"weird/../chars!": "weirdchars",
		"":                "",
	}
	for in, want := range cases {
		if got := normalizeEntity(in); got != want {
			t.Errorf("normalizeEntity(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExtensionFromMimeType(t *testing.T) {
	if got := extensionFromMimeType("text/csv"); got != ".csv" {
		t.Errorf("expected .csv, got %q", got)
	}
	if got := extensionFromMimeType("application/octet-stream"); got != "" {
		t.Errorf("expected empty extension for unknown type, got %q", got)
	}
}
