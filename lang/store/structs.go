package store

import (
	"fmt"

	"github.com/rzubek/botl/lang/vm"
)

// structValue is the host value a struct/2 declaration's constructor
// produces, carried inside a TagObj cell the same way any other opaque
// host value is (spec.md §3 "Struct: a fixed-shape named-field record").
// Field lookup by name is resolved once, at declaration time, into a plain
// index into Values, the same "assign each binding a stable slot up front"
// idiom the teacher's resolver uses for locals (lang/resolver/binding.go's
// Binding.Index) generalized here from a function's variables to a
// struct's fields.
type structValue struct {
	Name   string
	Fields []string
	Values []vm.Cell
}

func (sv *structValue) String() string {
	return fmt.Sprintf("%s%v", sv.Name, sv.Values)
}

// DefineStruct processes a struct(Name, [Field, ...]) declaration
// (lang/compiler/decl.go Pass 1), installing one constructor primop
// Name/len(fields)+1 and one accessor primop Name_Field/2 per field.
// Constructing and then reading back a struct is always two primop calls
// rather than clause resolution, since a struct's shape is fixed at
// declaration time and there is never more than one way to construct or
// read one.
func (s *Store) DefineStruct(name string, fields []string) {
	fieldIndex := make(map[string]int, len(fields))
	for i, f := range fields {
		fieldIndex[f] = i
	}
	ownFields := append([]string(nil), fields...)

	s.DefinePrimop(name, len(fields)+1, func(m *vm.Machine, argBase int) bool {
		values := make([]vm.Cell, len(ownFields))
		for i := range ownFields {
			_, values[i] = m.Stack.Deref(argBase + i)
		}
		sv := &structValue{Name: name, Fields: ownFields, Values: values}
		return vm.UnifyValue(m.Stack, argBase+len(ownFields), vm.ObjCell(sv))
	})

	for _, f := range fields {
		idx := fieldIndex[f]
		accessorName := name + "_" + f
		s.DefinePrimop(accessorName, 2, func(m *vm.Machine, argBase int) bool {
			_, c := m.Stack.Deref(argBase)
			sv, ok := c.Obj.(*structValue)
			if !ok || sv.Name != name {
				return false
			}
			return vm.UnifyValue(m.Stack, argBase+1, sv.Values[idx])
		})
	}
}
