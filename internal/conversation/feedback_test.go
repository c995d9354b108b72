package conversation

import (
	"testing"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestSplitSolutionStepsNumbered(t *testing.T) {
	solution := "Here's how to resolve this:\n1. Restart the router\n2. Check the cable\n3. Call the ISP\nHope this helps!"
	steps := SplitSolutionSteps(solution)
	want := []string{"Restart the router", "Check the cable", "Call the ISP"}
	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %v", len(want), steps)
	}
	for i := range want {
		if steps[i] != want[i] {
			t.Fatalf("step %d: expected %q, got %q", i, want[i], steps[i])
		}
	}
}

func TestSplitSolutionStepsBullets(t *testing.T) {
	solution := "- Clear the browser cache\n- Sign out and back in\n* Update the extension"
	steps := SplitSolutionSteps(solution)
	if len(steps) != 3 {
		t.Fatalf("expected 3 steps, got %v", steps)
	}
	if steps[2] != "Update the extension" {
		t.Fatalf("unexpected last step %q", steps[2])
	}
}

func TestSplitSolutionStepsDropsShortFragments(t *testing.T) {
	solution := "1. Ok\n2. Restart the service completely"
	steps := SplitSolutionSteps(solution)
	if len(steps) != 1 || steps[0] != "Restart the service completely" {
		t.Fatalf("expected short fragment dropped, got %v", steps)
	}
}

func TestSplitSolutionStepsFallsBackToWholeText(t *testing.T) {
	solution := "Hope this helps, let me know if it persists"
	steps := SplitSolutionSteps(solution)
	if len(steps) != 1 || steps[0] != solution {
		t.Fatalf("expected whole text fallback, got %v", steps)
	}
}

func TestSplitSolutionStepsEmpty(t *testing.T) {
	if steps := SplitSolutionSteps("   "); steps != nil {
		t.Fatalf("expected nil for blank solution, got %v", steps)
	}
}

func TestParseStepFeedback(t *testing.T) {
	index, tag, err := ParseStepFeedback("2:tried", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if index != 2 || tag != domain.FeedbackTried {
		t.Fatalf("unexpected parse result %d %s", index, tag)
	}

	cases := []string{"0:tried", "4:tried", "2:meh", "nonsense", "2", ":tried"}
	for _, value := range cases {
		if _, _, err := ParseStepFeedback(value, 3); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}

func TestParseRating(t *testing.T) {
	if rating, err := ParseRating("5"); err != nil || rating != 5 {
		t.Fatalf("expected 5, got %d err %v", rating, err)
	}
	for _, value := range []string{"0", "6", "abc", ""} {
		if _, err := ParseRating(value); err == nil {
			t.Fatalf("expected error for %q", value)
		}
	}
}
