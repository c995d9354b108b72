package conversation

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncateSubjectKeepsRuneBoundary(t *testing.T) {
	// 79 ASCII bytes followed by a three-byte rune straddling the cap.
	subject := strings.Repeat("a", 79) + "日本語"
	got := truncateSubject(subject)
	if len(got) > maxSubjectLength {
		t.Fatalf("subject exceeds cap: %d bytes", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8: %q", got)
	}
	if got != strings.Repeat("a", 79) {
		t.Fatalf("expected the straddling rune dropped whole, got %q", got)
	}
}

func TestTruncateSubjectShortPassthrough(t *testing.T) {
	subject := "WiFi drops in meeting rooms"
	if got := truncateSubject(subject); got != subject {
		t.Fatalf("short subject must pass through unchanged, got %q", got)
	}
}

func TestBuildDraftUsesTruncatedFreeText(t *testing.T) {
	session := NewSession("user-1", "sess-1")
	session.FreeText = strings.Repeat("ü", 60)
	draft := buildDraft(session)
	if len(draft.Subject) > maxSubjectLength {
		t.Fatalf("draft subject exceeds cap: %d bytes", len(draft.Subject))
	}
	if !utf8.ValidString(draft.Subject) {
		t.Fatalf("draft subject is invalid UTF-8: %q", draft.Subject)
	}
}
