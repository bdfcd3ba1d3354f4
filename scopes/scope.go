package scopes

import (
	"github.com/mfkiwl/xocfe/ast"
	"github.com/mfkiwl/xocfe/symtab"
	"github.com/mfkiwl/xocfe/types"
)

const (
	GLOBAL_SCOPE   = 0
	FUNCTION_SCOPE = 1
	REGION_SCOPE   = 2
)

type LabelInfo struct {
	Name string
	Line int
	Used bool
}

// Scope owns the declarations, tag registries, labels and statements of
// one lexical region. Scopes form a tree rooted at the global scope.
// Transient scopes hold parameter-type lists parsed inside abstract
// declarators and are elided from the lexical tree.
type Scope struct {
	ID        int
	Level     int
	Transient bool
	Parent    *Scope
	Subs      []*Scope

	Decls    []*types.Decl
	Structs  []*types.Aggr
	Unions   []*types.Aggr
	Enums    []*types.Enum
	Typedefs []*types.Decl

	Labels    []*LabelInfo
	LabelRefs []*LabelInfo

	Stmts []ast.Node
	Syms  []*symtab.Sym

	// the function declaration this scope is the body of, for level 1
	FnDecl *types.Decl
}

// Stack maintains the ambient current-scope handle. It is an explicit
// value owned by the parser rather than process-global state.
type Stack struct {
	global *Scope
	cur    *Scope
	nextID int
}

func NewStack() *Stack {
	st := &Stack{}
	st.global = &Scope{ID: 0, Level: GLOBAL_SCOPE}
	st.nextID = 1
	st.cur = st.global
	return st
}

func (st *Stack) Global() *Scope {
	return st.global
}

func (st *Stack) Cur() *Scope {
	return st.cur
}

// Push creates a child of the current scope and makes it current.
// Transient scopes are not linked into the parent's sub-scope list.
func (st *Stack) Push(transient bool) *Scope {
	sc := &Scope{
		ID:        st.nextID,
		Level:     st.cur.Level + 1,
		Transient: transient,
		Parent:    st.cur,
	}
	st.nextID++
	if !transient {
		st.cur.Subs = append(st.cur.Subs, sc)
	}
	st.cur = sc
	return sc
}

func (st *Stack) Pop() *Scope {
	popped := st.cur
	if popped.Parent != nil {
		st.cur = popped.Parent
	}
	return popped
}

// ReturnToGlobal restores the handle between top-level declarations.
func (st *Stack) ReturnToGlobal() {
	st.cur = st.global
}

func (sc *Scope) AddDecl(d *types.Decl) {
	d.Scope = sc
	sc.Decls = append(sc.Decls, d)
}

func (sc *Scope) AddSym(s *symtab.Sym) {
	for _, have := range sc.Syms {
		if have == s {
			return
		}
	}
	sc.Syms = append(sc.Syms, s)
}

// FindDeclInScope searches this scope's declaration list only.
func (sc *Scope) FindDeclInScope(name string) (*types.Decl, bool) {
	for _, d := range sc.Decls {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// FindDeclInOuter walks from sc outward through parents.
func FindDeclInOuter(sc *Scope, name string) (*types.Decl, bool) {
	for s := sc; s != nil; s = s.Parent {
		if d, ok := s.FindDeclInScope(name); ok {
			return d, true
		}
	}
	return nil, false
}

// RegisterStruct appends; anonymous aggregates are not registered and stay
// reachable only through their specifier.
func (sc *Scope) RegisterStruct(a *types.Aggr) {
	if a.Tag == nil {
		return
	}
	a.Scope = sc
	sc.Structs = append(sc.Structs, a)
}

func (sc *Scope) RegisterUnion(a *types.Aggr) {
	if a.Tag == nil {
		return
	}
	a.Scope = sc
	sc.Unions = append(sc.Unions, a)
}

func (sc *Scope) FindStructInScope(tag string) (*types.Aggr, bool) {
	for _, a := range sc.Structs {
		if a.Tag != nil && a.Tag.Name == tag {
			return a, true
		}
	}
	return nil, false
}

func (sc *Scope) FindUnionInScope(tag string) (*types.Aggr, bool) {
	for _, a := range sc.Unions {
		if a.Tag != nil && a.Tag.Name == tag {
			return a, true
		}
	}
	return nil, false
}

func FindStructInOuter(sc *Scope, tag string) (*types.Aggr, bool) {
	for s := sc; s != nil; s = s.Parent {
		if a, ok := s.FindStructInScope(tag); ok {
			return a, true
		}
	}
	return nil, false
}

func FindUnionInOuter(sc *Scope, tag string) (*types.Aggr, bool) {
	for s := sc; s != nil; s = s.Parent {
		if a, ok := s.FindUnionInScope(tag); ok {
			return a, true
		}
	}
	return nil, false
}

func (sc *Scope) RegisterEnum(e *types.Enum) {
	sc.Enums = append(sc.Enums, e)
}

func (sc *Scope) FindEnumInScope(name string) (*types.Enum, bool) {
	for _, e := range sc.Enums {
		if e.Name != nil && e.Name.Name == name {
			return e, true
		}
	}
	return nil, false
}

func FindEnumInOuter(sc *Scope, name string) (*types.Enum, bool) {
	for s := sc; s != nil; s = s.Parent {
		if e, ok := s.FindEnumInScope(name); ok {
			return e, true
		}
	}
	return nil, false
}

// FindEnumConstInOuter resolves an enumerator name to its constant.
func FindEnumConstInOuter(sc *Scope, name string) (*types.EnumConst, bool) {
	for s := sc; s != nil; s = s.Parent {
		for _, e := range s.Enums {
			for _, c := range e.Consts {
				if c.Name.Name == name {
					return c, true
				}
			}
		}
	}
	return nil, false
}

func (sc *Scope) RegisterTypedef(d *types.Decl) {
	sc.Typedefs = append(sc.Typedefs, d)
}

func (sc *Scope) FindTypedefInScope(name string) (*types.Decl, bool) {
	for _, d := range sc.Typedefs {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

func FindTypedefInOuter(sc *Scope, name string) (*types.Decl, bool) {
	for s := sc; s != nil; s = s.Parent {
		if d, ok := s.FindTypedefInScope(name); ok {
			return d, true
		}
	}
	return nil, false
}

func (sc *Scope) DefineLabel(name string, line int) *LabelInfo {
	li := &LabelInfo{Name: name, Line: line}
	sc.Labels = append(sc.Labels, li)
	return li
}

func (sc *Scope) RefLabel(name string, line int) *LabelInfo {
	li := &LabelInfo{Name: name, Line: line}
	sc.LabelRefs = append(sc.LabelRefs, li)
	return li
}

func (sc *Scope) FindLabel(name string) (*LabelInfo, bool) {
	for _, li := range sc.Labels {
		if li.Name == name {
			return li, true
		}
	}
	return nil, false
}

func (sc *Scope) AddStmt(n ast.Node) {
	sc.Stmts = append(sc.Stmts, n)
}

// FuncScope walks up to the enclosing function-level scope.
func (sc *Scope) FuncScope() *Scope {
	for s := sc; s != nil; s = s.Parent {
		if s.Level == FUNCTION_SCOPE {
			return s
		}
	}
	return nil
}
