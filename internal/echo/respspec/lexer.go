package respspec

import "regexp"

var (
	leadingSeparator = regexp.MustCompile(`^\s*[|@>]`)
	keywordSeparator = regexp.MustCompile(`[|@>]\s*((?:HEADER|PATH|PARAM|JSON|BODY|text|file):)`)
)

// normalize turns raw spec text into a sequence of logical lines, each line
// retaining its own trailing "\n" (if any) the way Python's
// str.splitlines(keepends=True) does, so downstream regex matches that
// capture "rest of line" still see the newline they re-queue.
func normalize(text string) []string {
	if loc := leadingSeparator.FindStringIndex(text); loc != nil && loc[0] == 0 {
		text = text[loc[1]:]
	}
	text = keywordSeparator.ReplaceAllString(text, "\n$1")
	return splitKeepEnds(text)
}

func splitKeepEnds(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
