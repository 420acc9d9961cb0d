package tokenizer

import "strings"

// fastParse splits input by newline then by delim, performing no quote
// handling. It returns the byte offset one past the last row it actually
// consumed: either the end of the last terminator found, or — when
// ignoreLastRow is false and the buffer has trailing content with no
// terminator — the end of the buffer.
func fastParse(input string, delim rune, newline string, ignoreLastRow bool, acc *accumulator) int {
	delimStr := string(delim)
	pos := 0
	lastCompleteEnd := 0

	for {
		idx := strings.Index(input[pos:], newline)
		if idx < 0 {
			if pos < len(input) && !ignoreLastRow {
				rawLine := input[pos:]
				fields := strings.Split(rawLine, delimStr)
				acc.maybeEmit(rawLine, fields)
				lastCompleteEnd = len(input)
			}
			return lastCompleteEnd
		}

		end := pos + idx
		rawLine := input[pos:end]
		fields := strings.Split(rawLine, delimStr)
		stop := acc.maybeEmit(rawLine, fields)
		pos = end + len(newline)
		lastCompleteEnd = pos
		if stop {
			return lastCompleteEnd
		}
	}
}
