package util

import (
	"testing"
)

func TestSanitizeTextStripsNulAndControls(t *testing.T) {
	in := "hello\x00world\x01 and\x1f more"
	got := SanitizeText(in)
	if got != "helloworld and more" {
		t.Fatalf("got %q", got)
	}
}

func TestSanitizeTextKeepsWhitespaceStructure(t *testing.T) {
	in := "line one\nline two\r\n\tindented"
	got := SanitizeText(in)
	if got != in {
		t.Fatalf("structure changed: %q", got)
	}
}

func TestSanitizeTextTrims(t *testing.T) {
	if got := SanitizeText("  padded  "); got != "padded" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeText(""); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("short", 100); got != "short" {
		t.Fatalf("got %q", got)
	}
	if got := TruncateRunes("abcdef", 3); got != "abc..." {
		t.Fatalf("got %q", got)
	}
	// Runes, not bytes: multibyte text must not be split mid-character.
	if got := TruncateRunes("ééééé", 2); got != "éé..." {
		t.Fatalf("got %q", got)
	}
	if got := TruncateRunes("anything", 0); got != "anything" {
		t.Fatalf("limit 0 disables truncation, got %q", got)
	}
}
