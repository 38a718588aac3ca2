// internal/compiler/symbol_table.go
package compiler

import "tern/internal/parser"

// Symbol is a named, typed storage location. The address is an index
// into the VM's flat memory array.
type Symbol struct {
	Name    string
	Type    parser.ValueType
	Address int
}

// SymbolTable manages lexical scopes during compilation. Addresses are
// allocated from one monotonically increasing counter and are never
// reused, even after the owning scope exits: two sibling blocks get
// distinct memory slots.
type SymbolTable struct {
	scopes      []map[string]*Symbol
	nextAddress int
}

// NewSymbolTable creates a table with the global scope already open.
// The bottom scope is never removed.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.EnterScope()
	return st
}

// EnterScope pushes a new empty scope.
func (st *SymbolTable) EnterScope() {
	st.scopes = append(st.scopes, map[string]*Symbol{})
}

// ExitScope pops the innermost scope. Popping the global scope is never
// legitimate; it is logged and ignored rather than crashing compilation.
func (st *SymbolTable) ExitScope() {
	if len(st.scopes) <= 1 {
		log.Warning("attempted to exit global scope")
		return
	}
	st.scopes = st.scopes[:len(st.scopes)-1]
}

// Add registers a symbol in the innermost scope and allocates its
// address. It reports false if the name already exists in that scope;
// shadowing an outer scope's name is allowed.
func (st *SymbolTable) Add(name string, t parser.ValueType) bool {
	scope := st.scopes[len(st.scopes)-1]
	if _, exists := scope[name]; exists {
		return false
	}
	scope[name] = &Symbol{Name: name, Type: t, Address: st.nextAddress}
	st.nextAddress++
	return true
}

// Lookup searches scopes innermost to outermost and returns the first
// match, or nil when the name is not declared anywhere.
func (st *SymbolTable) Lookup(name string) *Symbol {
	for i := len(st.scopes) - 1; i >= 0; i-- {
		if sym, ok := st.scopes[i][name]; ok {
			return sym
		}
	}
	return nil
}

// Depth returns the number of open scopes, including the global one.
func (st *SymbolTable) Depth() int {
	return len(st.scopes)
}
