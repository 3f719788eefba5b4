package distill

import (
	"regexp"
	"strings"
)

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// ExtractPayload isolates the JSON document inside a model response.
//
// The response is trimmed and a surrounding code fence (with an optional
// language tag) is removed. The result is then cut to the outermost bracketed
// region: the array region wins unless an object region starts strictly
// earlier. Text without any region is returned cleaned so that the caller's
// parse fails with a meaningful error.
func ExtractPayload(response string) string {
	s := strings.TrimSpace(response)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	arrStart, arrEnd := region(s, '[', ']')
	objStart, objEnd := region(s, '{', '}')

	switch {
	case objStart >= 0 && (arrStart < 0 || objStart < arrStart):
		return s[objStart : objEnd+1]
	case arrStart >= 0:
		return s[arrStart : arrEnd+1]
	default:
		return s
	}
}

// region returns the first open and last close delimiter, or -1 when there is
// no well-ordered pair.
func region(s string, open, close byte) (int, int) {
	start := strings.IndexByte(s, open)
	end := strings.LastIndexByte(s, close)
	if start < 0 || end <= start {
		return -1, -1
	}
	return start, end
}
