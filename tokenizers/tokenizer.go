package tokenizers

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mfkiwl/xocfe/utils"
)

const BUFF_BOUND = 8

type Tokenizer struct {
	buff                      *utils.BoundedList[Token]
	inputPath                 string
	inputFile                 *os.File
	inputScanner              *bufio.Scanner
	LineIdx                   int
	currentLine               string
	lineParseIdx              int
	multilineCommentInContext bool
	moveBackRequestsCounter   int
}

func New(inputPath string) (*Tokenizer, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	t := fromReader(file)
	t.inputPath = inputPath
	t.inputFile = file
	return t, nil
}

// NewFromString tokenizes in-memory source, used by tests.
func NewFromString(src string) *Tokenizer {
	return fromReader(strings.NewReader(src))
}

func fromReader(r io.Reader) *Tokenizer {
	return &Tokenizer{
		inputScanner: bufio.NewScanner(r),
		buff:         utils.NewBoundedList[Token](BUFF_BOUND),
	}
}

func (t *Tokenizer) Finish() {
	if t.inputFile != nil {
		t.inputFile.Close()
	}
}

func (t *Tokenizer) readNextNonCommentLine() bool {
	for t.inputScanner.Scan() {
		t.LineIdx++
		line := strings.TrimSpace(t.inputScanner.Text())

		if t.multilineCommentInContext {
			if idx := indexOfMultilineCommentEnd(line); idx != -1 {
				line = line[idx+len(MULTI_LINE_COMMENT_END):]
				t.multilineCommentInContext = false
			} else {
				continue
			}
		}

		line, multilineCommentInContext := removeCommentsInLine(line)
		t.multilineCommentInContext = multilineCommentInContext

		if len(strings.TrimSpace(line)) > 0 {
			t.currentLine = line
			return true
		}
	}
	return false
}

func (t *Tokenizer) getNextToken() Token {
	startIdx := t.lineParseIdx
	line := t.currentLine
	cur := line[startIdx]

	var tok Token
	tok.Line = t.LineIdx

	switch {
	case cur == '"':
		end := scanQuoted(line, startIdx)
		tok.T = STR
		tok.V = line[startIdx+1 : end-1]
		t.lineParseIdx = end
	case cur == '\'':
		end := scanQuoted(line, startIdx)
		tok.T = CH
		tok.V = line[startIdx+1 : end-1]
		t.lineParseIdx = end
	case isNumber(cur) || (cur == '.' && startIdx+1 < len(line) && isNumber(line[startIdx+1])):
		end, floating := scanNumber(line, startIdx)
		if floating {
			tok.T = FNUM
		} else {
			tok.T = NUM
		}
		tok.V = line[startIdx:end]
		t.lineParseIdx = end
	case isLetterOrUnderscore(cur):
		end := startIdx + 1
		for end < len(line) && (isNumber(line[end]) || isLetterOrUnderscore(line[end])) {
			end++
		}
		word := line[startIdx:end]
		if KEYWORDS.Has(word) {
			tok.T = word
		} else {
			tok.T = ID
		}
		tok.V = word
		t.lineParseIdx = end
	default:
		end := startIdx + 1
		if startIdx+3 <= len(line) && is3CharOperator(line[startIdx:startIdx+3]) {
			end = startIdx + 3
		} else if startIdx+2 <= len(line) && is2CharOperator(line[startIdx:startIdx+2]) {
			end = startIdx + 2
		}
		tok.T = line[startIdx:end]
		tok.V = tok.T
		t.lineParseIdx = end
	}

	for t.lineParseIdx < len(line) && isSpace(line[t.lineParseIdx]) {
		t.lineParseIdx++
	}
	return tok
}

func (t *Tokenizer) MoveBack() {
	t.moveBackRequestsCounter++
	if t.moveBackRequestsCounter > t.buff.Size || t.moveBackRequestsCounter > t.buff.Bound {
		panic("Can't move back further, not enough tokens were read")
	}
}

func (t *Tokenizer) Lookahead() Token {
	t.Advance()
	token := t.LastToken()
	t.MoveBack()
	return token
}

func (t *Tokenizer) Advance() {
	if t.moveBackRequestsCounter > 0 {
		t.moveBackRequestsCounter--
		return
	}

	for t.lineParseIdx >= len(t.currentLine) ||
		len(strings.TrimSpace(t.currentLine[t.lineParseIdx:])) == 0 {
		if !t.readNextNonCommentLine() {
			t.buff.Append(Token{T: EOF, Line: t.LineIdx})
			return
		}
		t.lineParseIdx = 0
		for t.lineParseIdx < len(t.currentLine) && isSpace(t.currentLine[t.lineParseIdx]) {
			t.lineParseIdx++
		}
	}

	t.buff.Append(t.getNextToken())
}

func (t *Tokenizer) LastToken() Token {
	return t.buff.NthNewest(t.moveBackRequestsCounter)
}
