package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfkiwl/xocfe/conf"
	"github.com/mfkiwl/xocfe/diag"
	"github.com/mfkiwl/xocfe/scopes"
	"github.com/mfkiwl/xocfe/tokenizers"
	"github.com/mfkiwl/xocfe/types"
)

func parseSource(t *testing.T, src string) (*scopes.Scope, *diag.Tracker) {
	t.Helper()
	tkz := tokenizers.NewFromString(src)
	tracker := diag.NewTracker(50)
	p := New(tkz, tracker, conf.Default())
	global := p.ParseTranslationUnit()
	return global, tracker
}

func parseClean(t *testing.T, src string) *scopes.Scope {
	t.Helper()
	global, tracker := parseSource(t, src)
	require.False(t, tracker.HasError(), "unexpected errors: %+v", tracker.Errors())
	return global
}

func declOf(t *testing.T, sc *scopes.Scope, name string) *types.Decl {
	t.Helper()
	d, ok := sc.FindDeclInScope(name)
	require.True(t, ok, "declaration '%s' not found", name)
	return d
}

func chainKinds(head *types.Dcl) []types.DclKind {
	res := []types.DclKind{}
	for d := head; d != nil; d = d.Next {
		res = append(res, d.Kind)
	}
	return res
}

func TestPointerToArrayOfPointers(t *testing.T) {
	global := parseClean(t, "int *(*p)[30];")
	p := declOf(t, global, "p")

	require.Equal(t, []types.DclKind{
		types.DCL_ID, types.DCL_POINTER, types.DCL_ARRAY, types.DCL_POINTER,
	}, chainKinds(p.Dclr))
	assert.Equal(t, int64(30), p.Dclr.Next.Next.DimVal)
	assert.True(t, p.IsPointer())
	assert.False(t, p.IsArray())
	assert.Equal(t, types.PointerSize(), types.DeclSize(p))
}

func TestDeepDeclaratorChain(t *testing.T) {
	global := parseClean(t, "double (*arr[10][40])[20][30];")
	d := declOf(t, global, "arr")

	require.Equal(t, []types.DclKind{
		types.DCL_ID, types.DCL_ARRAY, types.DCL_ARRAY,
		types.DCL_POINTER, types.DCL_ARRAY, types.DCL_ARRAY,
	}, chainKinds(d.Dclr))
	dims := []int64{}
	for n := d.Dclr; n != nil; n = n.Next {
		if n.Kind == types.DCL_ARRAY {
			dims = append(dims, n.DimVal)
		}
	}
	assert.Equal(t, []int64{10, 40, 20, 30}, dims)
	assert.True(t, d.IsArray())
}

func TestTypedefExpansion(t *testing.T) {
	global := parseClean(t, "typedef int *INTP;\nINTP x = 0;")
	x := declOf(t, global, "x")

	assert.Equal(t, types.K_INT, x.Spec.BaseKind())
	assert.False(t, x.Spec.IsTypedef())
	assert.False(t, x.Spec.IsUserType())
	require.Equal(t, []types.DclKind{types.DCL_ID, types.DCL_POINTER}, chainKinds(x.Dclr))
	assert.True(t, x.IsPointer())

	// the expanded declaration carries no user-type bit, and a full copy of
	// it keeps the same chain and specifier bits
	cp := types.CopyDeclFully(x)
	assert.Equal(t, chainKinds(x.Dclr), chainKinds(cp.Dclr))
	assert.Equal(t, x.Spec.Des, cp.Spec.Des)
}

func TestTypedefOfTypedef(t *testing.T) {
	global := parseClean(t, "typedef int T1; typedef T1 T2; T2 v;")
	v := declOf(t, global, "v")
	assert.Equal(t, types.K_INT, v.Spec.BaseKind())
	assert.False(t, v.Spec.IsUserType())
}

func TestArrayDimBackfill(t *testing.T) {
	global := parseClean(t, "int a[] = {1, 2, 3, 4};")
	a := declOf(t, global, "a")

	require.True(t, a.IsArray())
	assert.Equal(t, int64(4), a.Dclr.Next.DimVal)
	assert.Equal(t, 16, types.DeclSize(a))
}

func TestStringInitBackfill(t *testing.T) {
	global := parseClean(t, `char s[] = "hi";`)
	s := declOf(t, global, "s")
	assert.Equal(t, int64(3), s.Dclr.Next.DimVal)
	assert.Equal(t, 3, types.DeclSize(s))
}

func TestTooManyInitializers(t *testing.T) {
	_, tracker := parseSource(t, "int a[2] = {1, 2, 3};")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "too many initializers")
}

func TestStructInitializerMatching(t *testing.T) {
	global := parseClean(t, `
struct P { int x; int y; };
struct P p = {1, 2};
struct P q = {1};
`)
	declOf(t, global, "p")
	declOf(t, global, "q")
}

func TestNestedInitializer(t *testing.T) {
	parseClean(t, `
struct In { int a; int b; };
struct Out { struct In in; int c; };
struct Out o = {{1, 2}, 3};
int grid[2][2] = {{1, 2}, {3, 4}};
`)
}

func TestForwardStructCompletion(t *testing.T) {
	global := parseClean(t, `
struct L;
struct L *p;
struct L { int v; };
`)
	p := declOf(t, global, "p")
	require.True(t, p.IsPointer())
	a := p.Spec.Aggr
	require.NotNil(t, a)
	assert.True(t, a.Complete)
	f, ok := a.FindField("v")
	require.True(t, ok)
	assert.Equal(t, types.K_INT, f.Spec.BaseKind())
}

func TestIncompleteStructUse(t *testing.T) {
	_, tracker := parseSource(t, "struct T;\nstruct T t;")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "incomplete")
}

func TestStructRedefinition(t *testing.T) {
	_, tracker := parseSource(t, "struct S { int a; };\nstruct S { int b; };")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "redefined")
}

func TestEmptyAggrGetsPlaceholder(t *testing.T) {
	global := parseClean(t, "struct E {} e;")
	e := declOf(t, global, "e")
	require.NotNil(t, e.Spec.Aggr)
	require.Len(t, e.Spec.Aggr.Fields, 1)
	assert.Equal(t, types.PlaceholderField, e.Spec.Aggr.Fields[0].Name())
	assert.Equal(t, 1, types.AggrSize(e.Spec.Aggr))
}

func TestEnumValues(t *testing.T) {
	global := parseClean(t, "enum E { A, B = 5, C };")
	e, ok := global.FindEnumInScope("E")
	require.True(t, ok)
	require.Len(t, e.Consts, 3)
	assert.Equal(t, int64(0), e.Consts[0].Value)
	assert.Equal(t, int64(5), e.Consts[1].Value)
	assert.Equal(t, int64(6), e.Consts[2].Value)
}

func TestEnumConstInArrayDim(t *testing.T) {
	global := parseClean(t, "enum E { N = 3 };\nint a[N];")
	a := declOf(t, global, "a")
	assert.Equal(t, int64(3), a.Dclr.Next.DimVal)
}

func TestParamArrayRewrite(t *testing.T) {
	global := parseClean(t, "void foo(char p[][20]) { }")
	foo := declOf(t, global, "foo")
	require.True(t, foo.IsFunDecl())
	params, ok := types.ParamsOf(foo.Dclr)
	require.True(t, ok)
	require.Len(t, params, 1)

	prm := params[0]
	require.Equal(t, []types.DclKind{
		types.DCL_ID, types.DCL_POINTER, types.DCL_ARRAY,
	}, chainKinds(prm.Dclr))
	assert.Equal(t, int64(20), prm.Dclr.Next.Next.DimVal)
	assert.True(t, prm.IsPointer())
	assert.Equal(t, types.PointerSize(), types.DeclSize(prm))
}

func TestVoidParamCollapses(t *testing.T) {
	global := parseClean(t, "int foo(void);")
	foo := declOf(t, global, "foo")
	params, ok := types.ParamsOf(foo.Dclr)
	require.True(t, ok)
	assert.Empty(t, params)
}

func TestNamedVoidParamIsError(t *testing.T) {
	_, tracker := parseSource(t, "int foo(void x);")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "incomplete")
}

func TestVoidPointerParamIsLegal(t *testing.T) {
	global := parseClean(t, "int foo(void *p);")
	foo := declOf(t, global, "foo")
	params, _ := types.ParamsOf(foo.Dclr)
	require.Len(t, params, 1)
	assert.True(t, params[0].IsPointer())
}

func TestVariadicFunction(t *testing.T) {
	global := parseClean(t, "int printf(char *fmt, ...);")
	printf := declOf(t, global, "printf")
	params, ok := types.ParamsOf(printf.Dclr)
	require.True(t, ok)
	require.Len(t, params, 2)
	assert.True(t, params[1].IsVariadicMarker())
}

func TestSpecifierLegalityErrors(t *testing.T) {
	cases := []string{
		"struct S { int a; } enum x;",
		"int float x;",
		"long long long x;",
		"short long x;",
		"static extern int x;",
	}
	for _, src := range cases {
		_, tracker := parseSource(t, src)
		assert.True(t, tracker.HasError(), "expected error for %q", src)
	}
}

func TestLongLongCollapse(t *testing.T) {
	global := parseClean(t, "long long x; unsigned long y;")
	x := declOf(t, global, "x")
	assert.Equal(t, types.K_LONGLONG, x.Spec.BaseKind())
	y := declOf(t, global, "y")
	assert.Equal(t, types.K_LONG, y.Spec.BaseKind())
	assert.True(t, y.Spec.IsUnsigned())
}

func TestRedefinitionInScope(t *testing.T) {
	_, tracker := parseSource(t, "int x;\ndouble x;")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "already defined")
}

func TestShadowingInInnerScopeIsLegal(t *testing.T) {
	parseClean(t, `
int x;
void f(void) {
	int x;
	x = 1;
}
`)
}

func TestBitFieldValidation(t *testing.T) {
	_, tracker := parseSource(t, "struct S { float f : 3; };")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "bit field must have integer type")

	_, tracker = parseSource(t, "struct S { int a : 99; };")
	require.True(t, tracker.HasError())

	_, tracker = parseSource(t, "struct S { int *p : 3; };")
	require.True(t, tracker.HasError())
}

func TestLabelResolution(t *testing.T) {
	_, tracker := parseSource(t, `
void f(void) {
	goto missing;
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "label 'missing' was undefined")

	_, tracker = parseSource(t, `
void g(void) {
	done:
	return;
}
`)
	assert.False(t, tracker.HasError())
	require.Equal(t, 1, tracker.WarningCount())
	assert.Contains(t, tracker.Warnings()[0].Msg, "not referenced")

	_, tracker = parseSource(t, `
void h(void) {
	goto done;
	done:
	return;
}
`)
	assert.False(t, tracker.HasError())
	assert.Equal(t, 0, tracker.WarningCount())
}

func TestPragmaAlignFreezesPerDeclaration(t *testing.T) {
	global := parseClean(t, `
#pragma align (1)
struct Packed { char c; int i; };
#pragma align (0)
struct Natural { char c; int i; };
`)
	packed, ok := scopes.FindStructInOuter(global, "Packed")
	require.True(t, ok)
	assert.Equal(t, 5, types.AggrSize(packed))

	natural, ok := scopes.FindStructInOuter(global, "Natural")
	require.True(t, ok)
	assert.Equal(t, 8, types.AggrSize(natural))
}

func TestFunctionDefinitionOnlyAtGlobalScope(t *testing.T) {
	_, tracker := parseSource(t, `
void outer(void) {
	void inner(void) { }
}
`)
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "global scope")
}

func TestMissingSemicolonRecovery(t *testing.T) {
	_, tracker := parseSource(t, "int a\nint b;")
	require.True(t, tracker.HasError())
	assert.Contains(t, tracker.Errors()[0].Msg, "miss ';'")
}

func TestFormatRoundTrip(t *testing.T) {
	cases := map[string]string{
		"int x;":             "int x ; ",
		"int *a;":            "int * a ; ",
		"int *(*p)[30];":     "int * ( * p ) [ 30 ] ; ",
		"unsigned long u;":   "unsigned long u ; ",
		"static char c;":     "static char c ; ",
		"const double d;":    "const double d ; ",
		"int arr[4][5];":     "int arr [ 4 ] [ 5 ] ; ",
	}
	for src, want := range cases {
		global := parseClean(t, src)
		require.NotEmpty(t, global.Decls, "no decls for %q", src)
		got := types.FormatDecl(global.Decls[0])
		assert.Equal(t, normalizeWs(want), normalizeWs(got), "source %q", src)
	}
}

func normalizeWs(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func TestScopeTreeShape(t *testing.T) {
	global := parseClean(t, `
int g;
void f(void) {
	int local;
	{
		int nested;
		nested = 1;
	}
	local = 2;
}
`)
	require.Len(t, global.Subs, 1)
	fn := global.Subs[0]
	assert.Equal(t, scopes.FUNCTION_SCOPE, fn.Level)
	_, ok := fn.FindDeclInScope("local")
	assert.True(t, ok)
	require.Len(t, fn.Subs, 1)
	_, ok = fn.Subs[0].FindDeclInScope("nested")
	assert.True(t, ok)
}

func TestTransientParamScopeElided(t *testing.T) {
	global := parseClean(t, "int f(int a, int b);")
	assert.Empty(t, global.Subs)
}
