package parsers

import (
	"github.com/mfkiwl/xocfe/ast"
)

// evalConstInt folds a constant integer expression at parse time, for
// array dimensions, enumerator values and bit-field widths.
func evalConstInt(n ast.Node) (int64, error) {
	return ast.EvalConstInt(n)
}
