package semantics

import (
	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/diag"
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/types"
)

// TypeEngine runs the type-transform pass: a post-order traversal of the
// statement and expression trees of every function body, and of the
// initializer expressions at file scope. Every expression node ends up
// annotated with a synthesized result type.
type TypeEngine struct {
	tracker *diag.Tracker
	results map[ast.Node]*types.TypeName
}

func NewTypeEngine(tracker *diag.Tracker) *TypeEngine {
	return &TypeEngine{
		tracker: tracker,
		results: make(map[ast.Node]*types.TypeName),
	}
}

// TypeOf returns the result type computed for n, nil when the node did
// not type-check.
func (e *TypeEngine) TypeOf(n ast.Node) *types.TypeName {
	return e.results[n]
}

// Run processes a whole translation unit rooted at the global scope.
func (e *TypeEngine) Run(global *scopes.Scope) {
	e.transformScope(global)
}

func (e *TypeEngine) transformScope(sc *scopes.Scope) {
	for _, d := range sc.Decls {
		if init, ok := d.InitTree.(ast.Node); ok && init != nil {
			e.transformInitTree(d, init)
		}
	}
	for _, stmt := range sc.Stmts {
		e.transformStmt(stmt)
	}
	for _, sub := range sc.Subs {
		e.transformScope(sub)
	}
}

func (e *TypeEngine) transformInitTree(d *types.Decl, init ast.Node) {
	if scope, ok := init.(*ast.InitvalScope); ok {
		// the brace scope mirrors the declared type
		e.results[scope] = d.AsTypeName()
		for _, child := range scope.Children {
			e.transformExpr(child)
		}
		return
	}
	e.transformExpr(init)
}

func (e *TypeEngine) transformStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.ExpressionStatement:
		e.transformExpr(s.Expr)
	case *ast.CompoundStatement:
		if sub, ok := s.Scope.(*scopes.Scope); ok {
			e.transformScope(sub)
		}
	case *ast.IfStatement:
		e.transformExpr(s.Cond)
		e.transformStmt(s.Then)
		if s.Else != nil {
			e.transformStmt(s.Else)
		}
	case *ast.WhileStatement:
		e.transformExpr(s.Cond)
		e.transformStmt(s.Body)
	case *ast.DoWhileStatement:
		e.transformStmt(s.Body)
		e.transformExpr(s.Cond)
	case *ast.ForStatement:
		e.transformExpr(s.Init)
		e.transformExpr(s.Cond)
		e.transformExpr(s.Post)
		e.transformStmt(s.Body)
	case *ast.SwitchStatement:
		e.transformExpr(s.Cond)
		e.transformStmt(s.Body)
	case *ast.CaseStatement:
		e.transformExpr(s.Expr)
	case *ast.ReturnStatement:
		e.transformExpr(s.Expr)
	}
}

// transformExpr synthesizes and records the result type of an expression
// node; nil means the node failed to type and the error was reported.
func (e *TypeEngine) transformExpr(n ast.Node) *types.TypeName {
	if n == nil {
		return nil
	}
	if tn, done := e.results[n]; done {
		return tn
	}
	tn := e.computeType(n)
	if tn != nil {
		e.results[n] = tn
	}
	return tn
}

func (e *TypeEngine) computeType(n ast.Node) *types.TypeName {
	switch x := n.(type) {
	case *ast.Identifier:
		return e.identifierType(x)
	case *ast.IntConst:
		return intConstType(x)
	case *ast.FloatConst:
		switch x.Kind {
		case ast.FPF:
			return constTypeName(types.SPEC_FLOAT)
		default:
			return constTypeName(types.SPEC_DOUBLE)
		}
	case *ast.CharConst:
		return constTypeName(types.SPEC_CHAR)
	case *ast.StrConst:
		return stringType(x)
	case *ast.UnaryExpression:
		return e.unaryType(x)
	case *ast.BinaryExpression:
		return e.binaryType(x)
	case *ast.AssignmentExpression:
		return e.assignType(x)
	case *ast.ConditionalExpression:
		return e.conditionalType(x)
	case *ast.CastExpression:
		e.transformExpr(x.Expr)
		if x.Type == nil {
			return nil
		}
		return copyTn(x.Type)
	case *ast.Cvt:
		e.transformExpr(x.Expr)
		return copyTn(x.To)
	case *ast.CallExpression:
		return e.callType(x)
	case *ast.IndexExpression:
		return e.indexType(x)
	case *ast.MemberExpression:
		return e.memberType(x)
	case *ast.SizeofExpression:
		return e.sizeofType(x)
	case *ast.ExprList:
		var last *types.TypeName
		for _, sub := range x.Exprs {
			last = e.transformExpr(sub)
		}
		return last
	case *ast.InitvalScope:
		// reached only through an assignment that mirrors its LHS; a
		// stray brace scope has no type of its own
		for _, child := range x.Children {
			e.transformExpr(child)
		}
		return nil
	}
	return nil
}

func (e *TypeEngine) identifierType(x *ast.Identifier) *types.TypeName {
	if x.EnumConst != nil {
		return constTypeName(types.SPEC_INT)
	}
	if x.Decl == nil {
		return nil
	}
	if x.Decl.IsTypedef() {
		e.tracker.Err(x.LineNumber, "'%s' is not a variable", x.Name)
		return nil
	}
	return x.Decl.AsTypeName()
}

// intConstType follows the immediate rules: plain literals are int but
// spill into long long when the high half is populated.
func intConstType(x *ast.IntConst) *types.TypeName {
	high := uint64(x.Value)>>32 != 0
	switch x.Kind {
	case ast.IMMU:
		if high {
			return constTypeName(types.SPEC_UNSIGNED | types.SPEC_LONGLONG)
		}
		return constTypeName(types.SPEC_UNSIGNED | types.SPEC_INT)
	case ast.IMML:
		return constTypeName(types.SPEC_LONGLONG)
	case ast.IMMUL:
		return constTypeName(types.SPEC_UNSIGNED | types.SPEC_LONGLONG)
	default:
		if high {
			return constTypeName(types.SPEC_LONGLONG)
		}
		return constTypeName(types.SPEC_INT)
	}
}

func stringType(x *ast.StrConst) *types.TypeName {
	tn := constTypeName(types.SPEC_CHAR)
	arr := types.NewDcl(types.DCL_ARRAY)
	arr.DimVal = int64(len(x.Value) + 1)
	tn.Dclr = arr
	return tn
}

func (e *TypeEngine) unaryType(x *ast.UnaryExpression) *types.TypeName {
	t := e.transformExpr(x.Operand)
	if t == nil {
		return nil
	}
	switch x.Op {
	case "&":
		return prependPointer(t)
	case "*":
		stripped, ok := stripOne(t)
		if !ok {
			e.tracker.Err(x.LineNumber, "'*' needs pointer or array operand")
			return nil
		}
		return stripped
	case "+", "-":
		if !e.isArith(t) {
			e.tracker.Err(x.LineNumber, "operand of unary '%s' must be arithmetic", x.Op)
			return nil
		}
		return copyTn(t)
	case "!":
		if !e.isScalar(t) {
			e.tracker.Err(x.LineNumber, "operand of '!' must be scalar")
			return nil
		}
		return copyTn(t)
	case "~":
		if !e.isInteger(t) {
			e.tracker.Err(x.LineNumber, "operand of '~' must have integer type")
			return nil
		}
		return copyTn(t)
	case "++", "--":
		if !e.isArith(t) && !t.IsPointer() {
			e.tracker.Err(x.LineNumber, "operand of '%s' must be arithmetic or pointer", x.Op)
			return nil
		}
		return copyTn(t)
	}
	return nil
}

func (e *TypeEngine) binaryType(x *ast.BinaryExpression) *types.TypeName {
	l := e.transformExpr(x.Lhs)
	r := e.transformExpr(x.Rhs)
	if l == nil || r == nil {
		return nil
	}
	switch x.Op {
	case "*", "/":
		if !e.isArith(l) || !e.isArith(r) {
			e.tracker.Err(x.LineNumber, "operands of '%s' must be arithmetic", x.Op)
			return nil
		}
		return rankResult(l, r)
	case "%":
		if !e.isInteger(l) || !e.isInteger(r) {
			e.tracker.Err(x.LineNumber, "operands of '%%' must have integer type")
			return nil
		}
		return rankResult(l, r)
	case "+":
		return e.addType(x, l, r)
	case "-":
		return e.subType(x, l, r)
	case "<<", ">>":
		if !e.isInteger(l) || !e.isInteger(r) {
			e.tracker.Err(x.LineNumber, "operands of '%s' must have integer type", x.Op)
			return nil
		}
		// shifts keep the left operand's type
		return copyTn(l)
	case "&", "|", "^":
		if !e.isInteger(l) || !e.isInteger(r) {
			e.tracker.Err(x.LineNumber, "operands of '%s' must have integer type", x.Op)
			return nil
		}
		return rankResult(l, r)
	case "&&", "||":
		if !e.isScalar(l) || !e.isScalar(r) {
			e.tracker.Err(x.LineNumber, "operands of '%s' must be scalar", x.Op)
			return nil
		}
		return simpleTypeName(types.SPEC_UNSIGNED | types.SPEC_CHAR)
	case "<", "<=", ">", ">=", "==", "!=":
		if e.isAggrValue(l) || e.isAggrValue(r) {
			e.tracker.Err(x.LineNumber, "struct or union cannot be compared")
			return nil
		}
		return simpleTypeName(types.SPEC_UNSIGNED | types.SPEC_CHAR)
	}
	return nil
}

func (e *TypeEngine) addType(x *ast.BinaryExpression, l *types.TypeName, r *types.TypeName) *types.TypeName {
	lptr := l.IsPointer() || l.IsArray()
	rptr := r.IsPointer() || r.IsArray()
	switch {
	case lptr && rptr:
		e.tracker.Err(x.LineNumber, "cannot add two pointers")
		return nil
	case lptr:
		if !e.isInteger(r) {
			e.tracker.Err(x.LineNumber, "pointer can only be added an integer")
			return nil
		}
		return decayToPointer(l)
	case rptr:
		if !e.isInteger(l) {
			e.tracker.Err(x.LineNumber, "pointer can only be added an integer")
			return nil
		}
		return decayToPointer(r)
	case e.isAggrValue(l) || e.isAggrValue(r):
		e.tracker.Err(x.LineNumber, "struct or union cannot be added")
		return nil
	case e.isArith(l) && e.isArith(r):
		return rankResult(l, r)
	}
	e.tracker.Err(x.LineNumber, "illegal operands of '+'")
	return nil
}

func (e *TypeEngine) subType(x *ast.BinaryExpression, l *types.TypeName, r *types.TypeName) *types.TypeName {
	lptr := l.IsPointer() || l.IsArray()
	rptr := r.IsPointer() || r.IsArray()
	switch {
	case lptr && rptr:
		return simpleTypeName(types.SPEC_UNSIGNED | types.SPEC_LONG)
	case lptr:
		if !e.isInteger(r) {
			e.tracker.Err(x.LineNumber, "pointer can only be subtracted an integer")
			return nil
		}
		return decayToPointer(l)
	case rptr:
		e.tracker.Err(x.LineNumber, "cannot subtract a pointer from an integer")
		return nil
	case e.isArith(l) && e.isArith(r):
		return rankResult(l, r)
	}
	e.tracker.Err(x.LineNumber, "illegal operands of '-'")
	return nil
}

func (e *TypeEngine) assignType(x *ast.AssignmentExpression) *types.TypeName {
	l := e.transformExpr(x.Lhs)
	if l == nil {
		return nil
	}
	if scope, ok := x.Rhs.(*ast.InitvalScope); ok {
		e.results[scope] = copyTn(l)
		for _, child := range scope.Children {
			e.transformExpr(child)
		}
	} else {
		e.transformExpr(x.Rhs)
	}
	if l.IsArray() {
		e.tracker.Err(x.LineNumber, "array is not assignable")
		return nil
	}
	if l.Spec.IsConst() {
		e.tracker.Err(x.LineNumber, "cannot assign to const-qualified lvalue")
		return nil
	}
	return copyTn(l)
}

func (e *TypeEngine) conditionalType(x *ast.ConditionalExpression) *types.TypeName {
	e.transformExpr(x.Cond)
	t := e.transformExpr(x.Then)
	f := e.transformExpr(x.Else)
	if t == nil || f == nil {
		return nil
	}
	tptr := t.IsPointer() || t.IsArray()
	fptr := f.IsPointer() || f.IsArray()
	if tptr != fptr {
		// a null pointer constant may face a pointer arm
		other := x.Else
		if fptr {
			other = x.Then
		}
		if !ast.IsConstZero(other) {
			e.tracker.Err(x.LineNumber, "pointer and non-pointer are incompatible in conditional")
			return nil
		}
	}
	if e.isAggrValue(t) != e.isAggrValue(f) {
		e.tracker.Err(x.LineNumber, "incompatible operand types in conditional")
		return nil
	}
	return copyTn(t)
}

func (e *TypeEngine) callType(x *ast.CallExpression) *types.TypeName {
	fn := e.transformExpr(x.Fun)
	argTypes := make([]*types.TypeName, len(x.Args))
	for i, a := range x.Args {
		argTypes[i] = e.transformExpr(a)
	}
	if fn == nil {
		return nil
	}
	ret, ok := returnTypeOf(fn)
	if !ok {
		e.tracker.Err(x.LineNumber, "called object is not a function or function pointer")
		return nil
	}
	e.convertCallArgs(x, argTypes)
	return ret
}

// convertCallArgs inserts an explicit truncation when a double actual
// meets a float formal.
func (e *TypeEngine) convertCallArgs(x *ast.CallExpression, argTypes []*types.TypeName) {
	ident, ok := x.Fun.(*ast.Identifier)
	if !ok || ident.Decl == nil {
		return
	}
	params, ok := types.ParamsOf(ident.Decl.Dclr)
	if !ok {
		return
	}
	for i, prm := range params {
		if i >= len(x.Args) || prm.IsVariadicMarker() {
			break
		}
		at := argTypes[i]
		if at == nil {
			continue
		}
		formalFloat := prm.Spec != nil && prm.Spec.Has(types.SPEC_FLOAT) && !prm.IsPointer()
		actualDouble := firstOp(at) == nil && at.Spec.Has(types.SPEC_DOUBLE)
		if formalFloat && actualDouble {
			cvt := &ast.Cvt{
				To:       simpleTypeName(types.SPEC_FLOAT),
				Expr:     x.Args[i],
				LineInfo: ast.LineInfo{LineNumber: x.LineNumber},
			}
			x.Args[i] = cvt
			e.results[cvt] = copyTn(cvt.To)
		}
	}
}

func (e *TypeEngine) indexType(x *ast.IndexExpression) *types.TypeName {
	base := e.transformExpr(x.Base)
	idx := e.transformExpr(x.Index)
	if base == nil {
		return nil
	}
	if idx != nil && !e.isInteger(idx) {
		e.tracker.Err(x.LineNumber, "array subscript is not an integer")
	}
	stripped, ok := stripOne(base)
	if !ok {
		e.tracker.Err(x.LineNumber, "subscripted value is neither array nor pointer")
		return nil
	}
	return stripped
}

func (e *TypeEngine) memberType(x *ast.MemberExpression) *types.TypeName {
	base := e.transformExpr(x.Base)
	if base == nil {
		return nil
	}
	ptr := base.IsPointer() || base.IsArray()
	if x.Arrow {
		if !base.Spec.IsAggr() || !ptr {
			e.tracker.Err(x.LineNumber, "left of '->' must be struct/union pointer, use '.'")
			return nil
		}
	} else {
		if !base.Spec.IsAggr() || ptr {
			if ptr {
				e.tracker.Err(x.LineNumber, "left of '.' must not be a pointer, use '->'")
			} else {
				e.tracker.Err(x.LineNumber, "left of '.' must be a struct or union")
			}
			return nil
		}
	}
	a := base.Spec.Aggr
	if a == nil {
		return nil
	}
	a = e.completeAggr(a, x.LineNumber)
	if a == nil {
		return nil
	}
	base.Spec.Aggr = a
	field, ok := a.FindField(x.Field.Name)
	if !ok {
		tag := ""
		if a.Tag != nil {
			tag = a.Tag.Name
		}
		e.tracker.Err(x.LineNumber, "'%s' is not a member of '%s'", x.Field.Name, tag)
		return nil
	}
	x.Field.Decl = field
	ft := field.AsTypeName()
	e.results[x.Field] = ft
	return copyTn(ft)
}

// completeAggr back-fills an incomplete aggregate reference by one more
// outer-scope lookup from its declaring scope.
func (e *TypeEngine) completeAggr(a *types.Aggr, line int) *types.Aggr {
	if a.Complete {
		return a
	}
	if a.Tag != nil {
		if sc, ok := a.Scope.(*scopes.Scope); ok {
			var found *types.Aggr
			var have bool
			if a.IsUnion {
				found, have = scopes.FindUnionInOuter(sc, a.Tag.Name)
			} else {
				found, have = scopes.FindStructInOuter(sc, a.Tag.Name)
			}
			if have && found.Complete {
				return found
			}
		}
	}
	kw := "struct"
	if a.IsUnion {
		kw = "union"
	}
	tag := ""
	if a.Tag != nil {
		tag = a.Tag.Name
	}
	e.tracker.Err(line, "uses incomplete %s %s", kw, tag)
	return nil
}

func (e *TypeEngine) sizeofType(x *ast.SizeofExpression) *types.TypeName {
	if x.Expr != nil {
		e.transformExpr(x.Expr)
	}
	return constTypeName(types.SPEC_UNSIGNED | types.SPEC_INT)
}

// SizeofValue resolves the operand size of a sizeof expression once its
// tree was transformed.
func (e *TypeEngine) SizeofValue(x *ast.SizeofExpression) (int, bool) {
	if x.Type != nil {
		return types.TypeNameSize(x.Type), true
	}
	if tn := e.TypeOf(x.Expr); tn != nil {
		return types.TypeNameSize(tn), true
	}
	return 0, false
}
