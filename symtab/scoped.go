package symtab

import "github.com/mfkiwl/xocfe/utils"

type ScopedEntry[T any] struct {
	Name string
	Info T
}

type tabScope[T any] struct {
	tab map[string]T
}

func newTabScope[T any]() *tabScope[T] {
	return &tabScope[T]{
		tab: make(map[string]T),
	}
}

// Scoped is a stack of name->info tables searched innermost-first.
type Scoped[T any] struct {
	scopeStack *utils.Stack[*tabScope[T]]
}

func NewScoped[T any]() *Scoped[T] {
	s := &Scoped[T]{
		scopeStack: utils.NewStack[*tabScope[T]](),
	}
	s.EnterScope()
	return s
}

func (s *Scoped[T]) Lookup(symname string) (res T, ok bool) {
	for i := s.scopeStack.Size() - 1; i >= 0; i-- {
		if res, ok := s.scopeStack.GetNthFifo(i).tab[symname]; ok {
			return res, true
		}
	}
	return res, false
}

func (s *Scoped[T]) DefinedLocally(symname string) bool {
	_, ok := s.scopeStack.Peek().tab[symname]
	return ok
}

func (s *Scoped[T]) Define(symname string, info T) {
	s.scopeStack.Peek().tab[symname] = info
}

func (s *Scoped[T]) EnterScope() {
	s.scopeStack.Push(newTabScope[T]())
}

func (s *Scoped[T]) LeaveScope() {
	s.scopeStack.Pop()
}
