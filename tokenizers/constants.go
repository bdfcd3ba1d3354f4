package tokenizers

import "github.com/mfkiwl/xocfe/utils"

const SINGLE_LINE_COMMENT = "//"
const MULTI_LINE_COMMENT_START = "/*"
const MULTI_LINE_COMMENT_END = "*/"

// token kinds; operators and keywords use their spelling as the kind
const (
	EOF  = "$"
	ID   = "id"
	NUM  = "num"
	STR  = "str"
	CH   = "ch"
	FNUM = "fnum"
)

var EOF_TOKEN = Token{T: EOF}

var DOUBLE_CHAR_OPERATORS = utils.SetOf[string](
	"==", "||", "&&", "++", "--",
	"->", "!=", ">=", "<=", "<<",
	">>", "+=", "-=", "*=", "/=",
	"%=", "&=", "^=", "|=",
)

var TRIPLE_CHAR_OPERATORS = utils.SetOf[string](
	">>=", "<<=", "...",
)

var KEYWORDS = utils.SetOf[string](
	"void", "char", "short", "int", "long", "float", "double",
	"signed", "unsigned", "_Bool",
	"struct", "union", "enum", "typedef",
	"auto", "register", "static", "extern", "inline",
	"const", "volatile", "restrict",
	"if", "else", "while", "do", "for", "switch", "case", "default",
	"break", "continue", "return", "goto", "sizeof",
)
