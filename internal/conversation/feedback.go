package conversation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
)

// fillerPatterns are lead-in and sign-off phrases that carry no actionable
// instruction. Lines matching any of them are dropped when a solution is
// split into steps.
var fillerPatterns = []string{
	"here's how to resolve",
	"here is how to resolve",
	"here's how you can",
	"here is how you can",
	"follow these steps",
	"try the following",
	"try these steps",
	"please try the following",
	"you can try",
	"to fix this",
	"to resolve this",
	"hope this helps",
	"hope that helps",
	"let me know if",
	"feel free to",
	"if the issue persists",
	"if this doesn't work",
	"if the problem continues",
	"good luck",
	"thank you",
}

var stepPrefix = regexp.MustCompile(`^\s*(?:step\s*\d+\s*[:.)]|\d+\s*[:.)]|[-*•])\s*`)

const minStepLength = 5

// SplitSolutionSteps breaks a solution text into individually trackable
// steps. Bullet and number markers are stripped, filler lines dropped, and
// fragments shorter than a few characters skipped. When filtering removes
// everything, the whole text becomes a single step so feedback always has
// a target.
func SplitSolutionSteps(solution string) []string {
	trimmed := strings.TrimSpace(solution)
	if trimmed == "" {
		return nil
	}

	var steps []string
	for _, line := range strings.Split(trimmed, "\n") {
		step := strings.TrimSpace(stepPrefix.ReplaceAllString(line, ""))
		if len(step) < minStepLength {
			continue
		}
		if isFiller(step) {
			continue
		}
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		steps = []string{trimmed}
	}
	return steps
}

func isFiller(line string) bool {
	lowered := strings.ToLower(line)
	for _, pattern := range fillerPatterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}
	return false
}

// ParseStepFeedback decodes a "{index}:{tag}" button value. The index is
// 1-based and must address an existing step.
func ParseStepFeedback(value string, stepCount int) (int, domain.FeedbackTag, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed step feedback value %q", value)
	}
	index, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, "", fmt.Errorf("malformed step feedback index %q", parts[0])
	}
	if index < 1 || index > stepCount {
		return 0, "", fmt.Errorf("step feedback index %d out of range", index)
	}
	tag := domain.FeedbackTag(strings.TrimSpace(parts[1]))
	if !domain.ValidFeedbackTag(tag) {
		return 0, "", fmt.Errorf("unknown feedback tag %q", parts[1])
	}
	return index, tag, nil
}

// ParseRating decodes a star rating button value into the 1 to 5 range.
func ParseRating(value string) (int, error) {
	rating, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("malformed rating %q", value)
	}
	if rating < 1 || rating > 5 {
		return 0, fmt.Errorf("rating %d out of range", rating)
	}
	return rating, nil
}
