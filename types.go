package rtl

import (
	"fmt"
	"strings"
)

// Signedness qualifies an integer type.
type Signedness uint8

const (
	Signless Signedness = iota
	Unsigned
	Signed
)

func (s Signedness) String() string {
	switch s {
	case Signless:
		return "signless"
	case Unsigned:
		return "unsigned"
	case Signed:
		return "signed"
	default:
		return fmt.Sprintf("Signedness(%d)", s)
	}
}

// WidthUnknown marks an integer width that is parametric or not yet
// resolved. Fold and canonicalization rules never fire on unknown widths.
const WidthUnknown = -1

// Type represents a hardware type.
type Type interface {
	fmt.Stringer
	typ()
}

func (IntType) typ()           {}
func (StructType) typ()        {}
func (ArrayType) typ()         {}
func (UnpackedArrayType) typ() {}
func (InOutType) typ()         {}

// IntType is an integer type of a fixed or unknown bit width.
type IntType struct {
	Width int // >= 0, or WidthUnknown
	Sign  Signedness
}

// UInt returns an unsigned integer type of the given width.
func UInt(width int) IntType { return IntType{Width: width, Sign: Unsigned} }

// SInt returns a signed integer type of the given width.
func SInt(width int) IntType { return IntType{Width: width, Sign: Signed} }

// HasWidth returns true if the width is statically known.
func (t IntType) HasWidth() bool { return t.Width != WidthUnknown }

func (t IntType) String() string {
	var name string
	switch t.Sign {
	case Signed:
		name = "sint"
	case Unsigned:
		name = "uint"
	default:
		name = "int"
	}
	if !t.HasWidth() {
		return name + "<?>"
	}
	return fmt.Sprintf("%s<%d>", name, t.Width)
}

// StructField is a single named field of a StructType. Flip marks the
// field as flowing against the orientation of the enclosing struct.
type StructField struct {
	Name string
	Type Type
	Flip bool
}

// StructType is an aggregate of named fields.
type StructType struct {
	Fields []StructField
}

// FieldType returns the type of the named field, or nil if absent.
func (t StructType) FieldType(name string) Type {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

func (t StructType) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, f := range t.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		if f.Flip {
			sb.WriteString("flip ")
		}
		sb.WriteString(f.Name)
		sb.WriteString(": ")
		sb.WriteString(f.Type.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// ArrayType is a packed array of Size elements.
type ArrayType struct {
	Elem Type
	Size uint32
}

func (t ArrayType) String() string {
	return fmt.Sprintf("%s[%d]", t.Elem, t.Size)
}

// UnpackedArrayType is an unpacked (memory-like) array of Size elements.
type UnpackedArrayType struct {
	Elem Type
	Size uint32
}

func (t UnpackedArrayType) String() string {
	return fmt.Sprintf("%s[unpacked %d]", t.Elem, t.Size)
}

// InOutType marks a bidirectional connection point wrapping a value type.
type InOutType struct {
	Elem Type
}

func (t InOutType) String() string {
	return fmt.Sprintf("inout<%s>", t.Elem)
}

// IsIntegerValueType returns true if t is a signless integer type with a
// known, non-zero width. This is the operand constraint shared by most
// purely structural integer operations.
func IsIntegerValueType(t Type) bool {
	it, ok := t.(IntType)
	return ok && it.HasWidth() && it.Width > 0 && it.Sign == Signless
}

// IsValueType returns true if t can be used as a hardware value type:
// integer, struct, or array types composed without any InOut marker.
func IsValueType(t Type) bool {
	switch t := t.(type) {
	case IntType:
		return true
	case StructType:
		for _, f := range t.Fields {
			if !IsValueType(f.Type) {
				return false
			}
		}
		return true
	case ArrayType:
		return IsValueType(t.Elem)
	case UnpackedArrayType:
		return IsValueType(t.Elem)
	default:
		return false
	}
}

// HasInOutType returns true if t structurally contains an InOutType.
// Unlike IsValueType this is not conservative: unknown type kinds are
// reported as not containing InOut.
func HasInOutType(t Type) bool {
	switch t := t.(type) {
	case InOutType:
		return true
	case StructType:
		for _, f := range t.Fields {
			if HasInOutType(f.Type) {
				return true
			}
		}
		return false
	case ArrayType:
		return HasInOutType(t.Elem)
	case UnpackedArrayType:
		return HasInOutType(t.Elem)
	default:
		return false
	}
}

// InOutElementType returns the wrapped type of an InOutType, or nil if t
// is not an InOut type.
func InOutElementType(t Type) Type {
	if t, ok := t.(InOutType); ok {
		return t.Elem
	}
	return nil
}

// ArrayElementType returns the element type of an ArrayType or
// UnpackedArrayType, or nil if t is not an array.
func ArrayElementType(t Type) Type {
	switch t := t.(type) {
	case ArrayType:
		return t.Elem
	case UnpackedArrayType:
		return t.Elem
	default:
		return nil
	}
}

// IsPassiveType returns true if t contains no flipped fields.
func IsPassiveType(t Type) bool {
	switch t := t.(type) {
	case StructType:
		for _, f := range t.Fields {
			if f.Flip || !IsPassiveType(f.Type) {
				return false
			}
		}
		return true
	case ArrayType:
		return IsPassiveType(t.Elem)
	case UnpackedArrayType:
		return IsPassiveType(t.Elem)
	default:
		return true
	}
}

// PassiveType returns t with all field orientations cleared.
func PassiveType(t Type) Type {
	switch t := t.(type) {
	case StructType:
		fields := make([]StructField, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = StructField{Name: f.Name, Type: PassiveType(f.Type)}
		}
		return StructType{Fields: fields}
	case ArrayType:
		return ArrayType{Elem: PassiveType(t.Elem), Size: t.Size}
	case UnpackedArrayType:
		return UnpackedArrayType{Elem: PassiveType(t.Elem), Size: t.Size}
	default:
		return t
	}
}

// BitWidth returns the total number of bits needed to represent t, or -1
// if any component width is unknown or t is not a value type.
func BitWidth(t Type) int {
	switch t := t.(type) {
	case IntType:
		if !t.HasWidth() {
			return -1
		}
		return t.Width
	case StructType:
		total := 0
		for _, f := range t.Fields {
			w := BitWidth(f.Type)
			if w < 0 {
				return -1
			}
			total += w
		}
		return total
	case ArrayType:
		w := BitWidth(t.Elem)
		if w < 0 {
			return -1
		}
		return w * int(t.Size)
	case UnpackedArrayType:
		w := BitWidth(t.Elem)
		if w < 0 {
			return -1
		}
		return w * int(t.Size)
	default:
		return -1
	}
}

// TypeEqual returns true if a and b are structurally identical.
func TypeEqual(a, b Type) bool {
	switch a := a.(type) {
	case IntType:
		b, ok := b.(IntType)
		return ok && a == b
	case StructType:
		b, ok := b.(StructType)
		if !ok || len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name ||
				a.Fields[i].Flip != b.Fields[i].Flip ||
				!TypeEqual(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	case ArrayType:
		b, ok := b.(ArrayType)
		return ok && a.Size == b.Size && TypeEqual(a.Elem, b.Elem)
	case UnpackedArrayType:
		b, ok := b.(UnpackedArrayType)
		return ok && a.Size == b.Size && TypeEqual(a.Elem, b.Elem)
	case InOutType:
		b, ok := b.(InOutType)
		return ok && TypeEqual(a.Elem, b.Elem)
	default:
		return a == nil && b == nil
	}
}
