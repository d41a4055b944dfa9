package varlinkdef

import "sort"

// Descriptor is the language-neutral introspection view of an Interface:
// one entry per interface, with its methods, named types and
// error names, each referencing other types by name — an unresolved
// reference is valid if it names a type declared in another interface.
type Descriptor struct {
	Name    string
	Methods []MethodDescriptor
	Types   []TypeDescriptor
	Errors  []string
}

// FieldDescriptor describes one struct field: a parameter of a method, or a
// member of a named type.
type FieldDescriptor struct {
	Name     string
	Type     Type
	Optional bool
}

// MethodDescriptor describes one method: its parameter fields and its
// reply fields.
type MethodDescriptor struct {
	Name   string
	Params []FieldDescriptor
	Reply  []FieldDescriptor
}

// TypeDescriptor describes one named type declared by the interface: a
// product (ordered struct fields) or a sum (named enum variants).
type TypeDescriptor struct {
	Name   string
	Kind   Kind
	Fields []FieldDescriptor // populated when Kind == KindStruct
	Enum   Enum              // populated when Kind == KindEnum
}

// Descriptor builds the introspection Descriptor for iface. Field and
// method ordering is sorted by name for determinism, since the in-memory
// Interface stores them in Go maps.
func (iface *Interface) Descriptor() Descriptor {
	d := Descriptor{Name: iface.Name}

	for _, name := range sortedKeys(iface.Methods) {
		m := iface.Methods[name]
		d.Methods = append(d.Methods, MethodDescriptor{
			Name:   name,
			Params: fieldsOf(m.In),
			Reply:  fieldsOf(m.Out),
		})
	}

	for _, name := range sortedTypeKeys(iface.Types) {
		t := iface.Types[name]
		td := TypeDescriptor{Name: name, Kind: t.Kind}
		switch t.Kind {
		case KindStruct:
			td.Fields = fieldsOf(t.Struct)
		case KindEnum:
			td.Enum = t.Enum
		}
		d.Types = append(d.Types, td)
	}

	for _, name := range sortedStructKeys(iface.Errors) {
		d.Errors = append(d.Errors, name)
	}

	return d
}

func fieldsOf(s Struct) []FieldDescriptor {
	var fields []FieldDescriptor
	for _, name := range sortedTypeKeys(s) {
		t := s[name]
		fields = append(fields, FieldDescriptor{
			Name:     name,
			Type:     t,
			Optional: t.Nullable,
		})
	}
	return fields
}

func sortedKeys(m map[string]Method) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTypeKeys(m map[string]Type) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedStructKeys(m map[string]Struct) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
