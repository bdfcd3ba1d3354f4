package semantics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/conf"
	"github.com/mfkiwl/xocfe/diag"
	"github.com/mfkiwl/xocfe/parsers"
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

func analyze(t *testing.T, src string) (*scopes.Scope, *TypeEngine, *diag.Tracker) {
	t.Helper()
	tkz := tokenizers.NewFromString(src)
	tracker := diag.NewTracker(50)
	p := parsers.New(tkz, tracker, conf.Default())
	global := p.ParseTranslationUnit()
	engine := NewTypeEngine(tracker)
	engine.Run(global)
	return global, engine, tracker
}

// fnStmts returns the statement list of the last function body.
func fnStmts(t *testing.T, global *scopes.Scope) []ast.Node {
	t.Helper()
	require.NotEmpty(t, global.Subs)
	return global.Subs[len(global.Subs)-1].Stmts
}

func exprOf(t *testing.T, stmt ast.Node) ast.Node {
	t.Helper()
	es, ok := stmt.(*ast.ExpressionStatement)
	require.True(t, ok, "not an expression statement: %T", stmt)
	return es.Expr
}

func requireClean(t *testing.T, tracker *diag.Tracker) {
	t.Helper()
	require.False(t, tracker.HasError(), "unexpected errors: %+v", tracker.Errors())
}

func TestDerefTypedefPointer(t *testing.T) {
	global, engine, tracker := analyze(t, `
typedef int *INTP;
void f(void) {
	INTP x;
	*x = 7;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)
	require.Len(t, stmts, 1)
	asg := exprOf(t, stmts[0]).(*ast.AssignmentExpression)
	tn := engine.TypeOf(asg)
	require.NotNil(t, tn)
	assert.Equal(t, types.K_INT, tn.Spec.BaseKind())
	assert.False(t, tn.IsPointer())
}

func TestPointerArithmetic(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int *p;
	int *q;
	p + 1;
	p - q;
	p - 1;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)
	require.Len(t, stmts, 3)

	add := engine.TypeOf(exprOf(t, stmts[0]))
	require.NotNil(t, add)
	assert.True(t, add.IsPointer())

	sub := engine.TypeOf(exprOf(t, stmts[1]))
	require.NotNil(t, sub)
	assert.False(t, sub.IsPointer())
	assert.Equal(t, types.K_LONG, sub.Spec.BaseKind())
	assert.True(t, sub.Spec.IsUnsigned())

	psub := engine.TypeOf(exprOf(t, stmts[2]))
	require.NotNil(t, psub)
	assert.True(t, psub.IsPointer())
}

func TestAddingTwoPointersFails(t *testing.T) {
	_, _, tracker := analyze(t, `
void f(void) {
	int *p;
	int *q;
	p + q;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "cannot add two pointers")
}

func TestArrayDecaysOnAdd(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int a[10];
	a + 1;
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.True(t, tn.IsPointer())
	assert.False(t, tn.IsArray())
}

func TestRankPromotion(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int i;
	double d;
	unsigned int u;
	i * d;
	i + u;
	i << 40;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)

	mul := engine.TypeOf(exprOf(t, stmts[0]))
	require.NotNil(t, mul)
	assert.Equal(t, types.K_DOUBLE, mul.Spec.BaseKind())

	// tie on rank prefers the unsigned operand
	add := engine.TypeOf(exprOf(t, stmts[1]))
	require.NotNil(t, add)
	assert.True(t, add.Spec.IsUnsigned())

	// shift keeps the left operand's type
	shl := engine.TypeOf(exprOf(t, stmts[2]))
	require.NotNil(t, shl)
	assert.Equal(t, types.K_INT, shl.Spec.BaseKind())
	assert.False(t, shl.Spec.IsUnsigned())
}

func TestLogicalAndRelationalYieldUnsignedChar(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int a;
	int b;
	a && b;
	a < b;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)
	for _, s := range stmts {
		tn := engine.TypeOf(exprOf(t, s))
		require.NotNil(t, tn)
		assert.Equal(t, types.K_CHAR, tn.Spec.BaseKind())
		assert.True(t, tn.Spec.IsUnsigned())
	}
}

func TestMemberAccess(t *testing.T) {
	global, engine, tracker := analyze(t, `
struct S { int a; double d; };
void f(void) {
	struct S s;
	struct S *p;
	s.a;
	p->d;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)

	dot := engine.TypeOf(exprOf(t, stmts[0]))
	require.NotNil(t, dot)
	assert.Equal(t, types.K_INT, dot.Spec.BaseKind())

	arrow := engine.TypeOf(exprOf(t, stmts[1]))
	require.NotNil(t, arrow)
	assert.Equal(t, types.K_DOUBLE, arrow.Spec.BaseKind())
}

func TestWrongMemberOperator(t *testing.T) {
	_, _, tracker := analyze(t, `
struct S { int a; };
void f(void) {
	struct S *p;
	p.a;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "use '->'")

	_, _, tracker = analyze(t, `
struct S { int a; };
void f(void) {
	struct S s;
	s->a;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "use '.'")
}

func TestUnknownMember(t *testing.T) {
	_, _, tracker := analyze(t, `
struct S { int a; };
void f(void) {
	struct S s;
	s.b;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "is not a member of")
}

func TestForwardStructFieldAccess(t *testing.T) {
	global, engine, tracker := analyze(t, `
struct L;
struct L *p;
struct L { int v; };
void f(void) {
	p->v;
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.Equal(t, types.K_INT, tn.Spec.BaseKind())
}

func TestConditionalNullPointerConstant(t *testing.T) {
	_, _, tracker := analyze(t, `
void f(void) {
	int c;
	int *p;
	c ? p : 0;
}
`)
	requireClean(t, tracker)

	_, _, tracker = analyze(t, `
void g(void) {
	int c;
	int *p;
	c ? p : 1;
}
`)
	require.True(t, tracker.HasError())
}

func TestCallReturnType(t *testing.T) {
	global, engine, tracker := analyze(t, `
double square(double x);
void f(void) {
	square(2.0);
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.Equal(t, types.K_DOUBLE, tn.Spec.BaseKind())
	assert.False(t, tn.IsPointer())
}

func TestCallInsertsFloatTruncation(t *testing.T) {
	global, engine, tracker := analyze(t, `
void take(float x);
void f(void) {
	take(2.5);
}
`)
	requireClean(t, tracker)
	call := exprOf(t, fnStmts(t, global)[0]).(*ast.CallExpression)
	require.Len(t, call.Args, 1)
	cvt, ok := call.Args[0].(*ast.Cvt)
	require.True(t, ok, "expected inserted conversion, got %T", call.Args[0])
	assert.Equal(t, types.K_FLOAT, cvt.To.Spec.BaseKind())
	tn := engine.TypeOf(cvt)
	require.NotNil(t, tn)
	assert.Equal(t, types.K_FLOAT, tn.Spec.BaseKind())
}

func TestCallThroughFunctionPointerCollapses(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int (*fp)(void);
	(*fp)();
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.Equal(t, types.K_INT, tn.Spec.BaseKind())
}

func TestStringLiteralType(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	"abc";
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.True(t, tn.IsArray())
	assert.True(t, tn.Spec.IsConst())
	assert.Equal(t, types.K_CHAR, tn.Spec.BaseKind())
	first := tn.Dclr
	require.NotNil(t, first)
	assert.Equal(t, int64(4), first.DimVal)
}

func TestImmediateTypes(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	1;
	1u;
	1ll;
	4294967296;
	1.0;
	1.0f;
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)
	expected := []types.BaseKind{
		types.K_INT, types.K_INT, types.K_LONGLONG,
		types.K_LONGLONG, types.K_DOUBLE, types.K_FLOAT,
	}
	for i, kind := range expected {
		tn := engine.TypeOf(exprOf(t, stmts[i]))
		require.NotNil(t, tn, "stmt %d", i)
		assert.Equal(t, kind, tn.Spec.BaseKind(), "stmt %d", i)
		assert.True(t, tn.Spec.IsConst(), "stmt %d", i)
	}
	// 1u keeps unsigned
	assert.True(t, engine.TypeOf(exprOf(t, stmts[1])).Spec.IsUnsigned())
}

func TestSizeofYieldsUnsigned(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int a[3];
	sizeof(a);
	sizeof(int);
}
`)
	requireClean(t, tracker)
	stmts := fnStmts(t, global)

	szExpr := exprOf(t, stmts[0]).(*ast.SizeofExpression)
	tn := engine.TypeOf(szExpr)
	require.NotNil(t, tn)
	assert.True(t, tn.Spec.IsUnsigned())
	v, ok := engine.SizeofValue(szExpr)
	require.True(t, ok)
	assert.Equal(t, 12, v)

	szType := exprOf(t, stmts[1]).(*ast.SizeofExpression)
	v, ok = engine.SizeofValue(szType)
	require.True(t, ok)
	assert.Equal(t, 4, v)
}

func TestAssignmentChecks(t *testing.T) {
	_, _, tracker := analyze(t, `
void f(void) {
	int a[3];
	int b[3];
	a = b;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "array is not assignable")

	_, _, tracker = analyze(t, `
void g(void) {
	const int c;
	c = 1;
}
`)
	require.True(t, tracker.HasError())
}

func TestModuloNeedsIntegers(t *testing.T) {
	_, _, tracker := analyze(t, `
void f(void) {
	double d;
	d % 2;
}
`)
	require.True(t, tracker.HasError())
}

func TestIndexTyping(t *testing.T) {
	global, engine, tracker := analyze(t, `
void f(void) {
	int m[3][4];
	m[1][2];
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	assert.Equal(t, types.K_INT, tn.Spec.BaseKind())
	assert.False(t, tn.IsArray())
}

func TestNonIntegerSubscript(t *testing.T) {
	_, _, tracker := analyze(t, `
void f(void) {
	int a[3];
	double d;
	a[d];
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "subscript")
}

func TestBitFieldResultKeepsMarker(t *testing.T) {
	global, engine, tracker := analyze(t, `
struct S { int a : 3; };
void f(void) {
	struct S s;
	s.a;
}
`)
	requireClean(t, tracker)
	tn := engine.TypeOf(exprOf(t, fnStmts(t, global)[0]))
	require.NotNil(t, tn)
	require.NotNil(t, tn.Dclr)
	assert.Equal(t, types.DCL_ID, tn.Dclr.Kind)
	assert.Equal(t, 3, tn.Dclr.BitWidth)
}

func TestEveryExpressionGetsAType(t *testing.T) {
	global, engine, tracker := analyze(t, `
int g;
void f(void) {
	int i;
	int *p;
	i = g + 1;
	p = &i;
	i = *p * 2;
	i++;
	--i;
	!i && i > 0 || i != 3;
}
`)
	requireClean(t, tracker)
	for _, s := range fnStmts(t, global) {
		es, ok := s.(*ast.ExpressionStatement)
		if !ok {
			continue
		}
		assert.NotNil(t, engine.TypeOf(es.Expr), "expression on line %d", es.LineNumber)
	}
}
