package tokenizers

import (
	"strings"
)

// Token carries the kind, the spelling and the 1-based source line it was
// read from. Keywords and operators use the spelling itself as kind.
type Token struct {
	T    string
	V    string
	Line int
}

func (t Token) IsEOF() bool {
	return t.T == EOF
}

// returns -1 if no singleline comment
func indexOfSingleLineComment(line string) int {
	return strings.Index(line, SINGLE_LINE_COMMENT)
}

func indexOfMultilineCommentStart(line string) int {
	return strings.Index(line, MULTI_LINE_COMMENT_START)
}

func indexOfMultilineCommentEnd(line string) int {
	return strings.Index(line, MULTI_LINE_COMMENT_END)
}

func removeFullyContainedMultilineCommentBetween(line string, startIdx int, endIdx int) string {
	lineSuffix := line[endIdx+len(MULTI_LINE_COMMENT_END):]
	return line[:startIdx] + " " + lineSuffix
}

func removeMultilineCommentIfContainedInLine(line string, startIdx int) (string, bool) {
	if endIdx := indexOfMultilineCommentEnd(line[startIdx:]); endIdx != -1 {
		return removeFullyContainedMultilineCommentBetween(line, startIdx, startIdx+endIdx), true
	}
	return line[:startIdx], false
}

// returns line without comments and bool informing if multiline comment
// context starts in this line
func removeCommentsInLine(line string) (string, bool) {
	var fullyContained bool
	for {
		singleLineCommentIdx := indexOfSingleLineComment(line)
		multiLineCommentIdx := indexOfMultilineCommentStart(line)
		singleLineCommentPreceedsMultiline := singleLineCommentIdx != -1 && multiLineCommentIdx != -1 &&
			singleLineCommentIdx < multiLineCommentIdx
		if (multiLineCommentIdx == -1 && singleLineCommentIdx != -1) || singleLineCommentPreceedsMultiline {
			line = line[:singleLineCommentIdx]
			break
		} else if multiLineCommentIdx != -1 {
			line, fullyContained = removeMultilineCommentIfContainedInLine(line, multiLineCommentIdx)
			if !fullyContained {
				return line, true
			}
		} else {
			break
		}
	}
	return line, false
}

func isLetter(char byte) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

func isLetterOrUnderscore(char byte) bool {
	return isLetter(char) || char == '_'
}

func isNumber(char byte) bool {
	return char >= '0' && char <= '9'
}

func isHexDigit(char byte) bool {
	return isNumber(char) || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')
}

func isIntSuffix(char byte) bool {
	return char == 'u' || char == 'U' || char == 'l' || char == 'L'
}

func isSpace(char byte) bool {
	return char == ' ' || char == '\t'
}

// scanNumber consumes a numeric literal starting at i, covering decimal,
// hex and octal forms, fraction/exponent parts and u/U/l/L/f/F suffixes.
// Reports whether the literal is floating.
func scanNumber(line string, i int) (end int, floating bool) {
	n := len(line)
	j := i
	if line[j] == '0' && j+1 < n && (line[j+1] == 'x' || line[j+1] == 'X') {
		j += 2
		for j < n && isHexDigit(line[j]) {
			j++
		}
		for j < n && isIntSuffix(line[j]) {
			j++
		}
		return j, false
	}
	for j < n && isNumber(line[j]) {
		j++
	}
	if j < n && line[j] == '.' {
		floating = true
		j++
		for j < n && isNumber(line[j]) {
			j++
		}
	}
	if j < n && (line[j] == 'e' || line[j] == 'E') {
		k := j + 1
		if k < n && (line[k] == '+' || line[k] == '-') {
			k++
		}
		if k < n && isNumber(line[k]) {
			floating = true
			j = k
			for j < n && isNumber(line[j]) {
				j++
			}
		}
	}
	if j < n && (line[j] == 'f' || line[j] == 'F') {
		floating = true
		j++
		return j, floating
	}
	for j < n && isIntSuffix(line[j]) {
		if floating {
			// only 'l' is meaningful after a fraction; accept and move on
			j++
			continue
		}
		j++
	}
	return j, floating
}

// scanQuoted consumes a ' or " delimited literal honoring backslash
// escapes; end points past the closing delimiter.
func scanQuoted(line string, i int) int {
	delim := line[i]
	j := i + 1
	for j < len(line) {
		if line[j] == '\\' && j+1 < len(line) {
			j += 2
			continue
		}
		if line[j] == delim {
			return j + 1
		}
		j++
	}
	return len(line)
}

func is2CharOperator(x string) bool {
	return DOUBLE_CHAR_OPERATORS.Has(x)
}

func is3CharOperator(x string) bool {
	return TRIPLE_CHAR_OPERATORS.Has(x)
}
