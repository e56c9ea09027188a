package fsm

import "fmt"

// TypeTag identifies the primitive kind carried by a Value, an Input, or
// an Output. It plays the role GParamSpec's value type plays in the
// original GObject-based implementation, collapsed to the handful of
// kinds this runtime actually needs.
type TypeTag int

const (
	TypeBool TypeTag = iota
	TypeInt
	TypeFloat
	TypeString
	TypeEnum
)

func (t TypeTag) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	default:
		return fmt.Sprintf("TypeTag(%d)", int(t))
	}
}

// Value is a small tagged union over the primitive kinds that inputs and
// outputs can carry. It stands in for the dynamically-typed GValue boxes
// of the original implementation; every field that isn't relevant to the
// active tag is simply left at its zero value.
type Value struct {
	tag      TypeTag
	b        bool
	i        int
	f        float64
	s        string
	enumType string
	ord      int
}

// BoolValue builds a bool-tagged Value.
func BoolValue(b bool) Value { return Value{tag: TypeBool, b: b} }

// IntValue builds an int-tagged Value.
func IntValue(i int) Value { return Value{tag: TypeInt, i: i} }

// FloatValue builds a float-tagged Value.
func FloatValue(f float64) Value { return Value{tag: TypeFloat, f: f} }

// StringValue builds a string-tagged Value.
func StringValue(s string) Value { return Value{tag: TypeString, s: s} }

// EnumValue builds an enum-tagged Value with the given enum type name and
// ordinal (0-based index into that enum's member list).
func EnumValue(enumType string, ordinal int) Value {
	return Value{tag: TypeEnum, enumType: enumType, ord: ordinal}
}

// DefaultValue returns the zero value for a given type tag. Enum defaults
// to ordinal 0 of an unnamed enum; callers that need a specific enum type
// should use EnumValue directly.
func DefaultValue(tag TypeTag) Value {
	switch tag {
	case TypeBool:
		return BoolValue(false)
	case TypeInt:
		return IntValue(0)
	case TypeFloat:
		return FloatValue(0)
	case TypeString:
		return StringValue("")
	case TypeEnum:
		return EnumValue("", 0)
	default:
		panic(fmt.Sprintf("fsm: unknown type tag %d", int(tag)))
	}
}

// Type reports the Value's tag.
func (v Value) Type() TypeTag { return v.tag }

// Bool returns the bool payload; only meaningful when Type() == TypeBool.
func (v Value) Bool() bool { return v.b }

// Int returns the int payload; only meaningful when Type() == TypeInt.
func (v Value) Int() int { return v.i }

// Float returns the float payload; only meaningful when Type() == TypeFloat.
func (v Value) Float() float64 { return v.f }

// String returns the string payload for a TypeString value, and a textual
// rendering of the payload for every other kind ("enumType#ordinal" for
// enums).
func (v Value) String() string {
	switch v.tag {
	case TypeBool:
		return fmt.Sprintf("%v", v.b)
	case TypeInt:
		return fmt.Sprintf("%d", v.i)
	case TypeFloat:
		return fmt.Sprintf("%g", v.f)
	case TypeEnum:
		return fmt.Sprintf("%s#%d", v.enumType, v.ord)
	default:
		return v.s
	}
}

// EnumOrdinal returns the enum payload's ordinal; only meaningful when
// Type() == TypeEnum.
func (v Value) EnumOrdinal() int { return v.ord }

// EnumType returns the enum payload's declared type name; only meaningful
// when Type() == TypeEnum.
func (v Value) EnumType() string { return v.enumType }

// Equal reports whether two values carry the same tag and payload.
func (v Value) Equal(other Value) bool {
	if v.tag != other.tag {
		return false
	}
	switch v.tag {
	case TypeBool:
		return v.b == other.b
	case TypeInt:
		return v.i == other.i
	case TypeFloat:
		return v.f == other.f
	case TypeString:
		return v.s == other.s
	case TypeEnum:
		return v.enumType == other.enumType && v.ord == other.ord
	default:
		return false
	}
}

// Copy returns an independent copy of v. Value has no reference fields, so
// this is just v itself; the method exists because the data model
// explicitly calls out copy as one of its required operations. A Value
// read out of a valueBox is already detached from that box.
func (v Value) Copy() Value { return v }

// valueBox is the mutable cell backing an input's live value, an output's
// declared default, or a state-owned constant output binding. Output
// resolution (see output.go) compares *valueBox pointers before ever
// reading through them, mirroring the original's GValue* aliasing: two
// output slots that reference the same box are, by construction, always
// in sync.
type valueBox struct {
	v Value
}
