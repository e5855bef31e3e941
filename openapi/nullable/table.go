package nullable

import (
	"reflect"
	"sync"

	"github.com/buildwithgo/amarodoc/openapi"
)

// Table holds the field metadata of the request types registered so far.
// Each type is recorded as a list of slots: slot 0 describes the request value
// itself and slot i+1 describes the field at declaration index i.
type Table struct {
	mu    sync.RWMutex
	types map[reflect.Type][]Field
}

func NewTable() *Table {
	return &Table{types: make(map[reflect.Type][]Field)}
}

// Record adds the fields of t. Recording a type again is a no-op.
func (tb *Table) Record(t reflect.Type) {
	if t == nil {
		return
	}
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if _, ok := tb.types[t]; ok {
		return
	}
	fields := openapi.RequestFields(t)
	slots := make([]Field, 0, len(fields)+1)
	slots = append(slots, Field{Name: t.Name(), Type: t})
	for _, f := range fields {
		slots = append(slots, Field{Name: f.Name, Type: f.Type, Tag: f.Tag})
	}
	tb.types[t] = slots
}

// Lookup returns the record of decl. Unknown owners, indexes outside the
// recorded fields and name mismatches yield ok == false.
func (tb *Table) Lookup(decl openapi.ParameterDeclaration) (Field, bool) {
	if decl.Owner == nil || decl.Index < 0 {
		return Field{}, false
	}
	tb.mu.RLock()
	slots, ok := tb.types[decl.Owner]
	tb.mu.RUnlock()
	if !ok {
		return Field{}, false
	}
	slot := decl.Index + 1
	if slot >= len(slots) || slots[slot].Name != decl.Name {
		return Field{}, false
	}
	return slots[slot], true
}

// Len returns the number of recorded types.
func (tb *Table) Len() int {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return len(tb.types)
}
