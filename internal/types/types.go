package types

// Kind represents the minimal set of IR value types the front end produces.
type Kind int

const (
	Void Kind = iota
	Int1
	Int32
	Ptr
)

// Type is a minimal description of a value's type.
// Elem is non-nil only when K==Ptr.
type Type struct {
	K    Kind
	Elem *Type
}

func VoidT() Type  { return Type{K: Void} }
func Int1T() Type  { return Type{K: Int1} }
func Int32T() Type { return Type{K: Int32} }

func PointerTo(elem Type) Type { return Type{K: Ptr, Elem: &elem} }

// Bits returns the integer width, 0 for void and 64 for pointers.
func (t Type) Bits() int {
	switch t.K {
	case Int1:
		return 1
	case Int32:
		return 32
	case Ptr:
		return 64
	default:
		return 0
	}
}

// Size returns the storage size in bytes on our target.
func (t Type) Size() int {
	switch t.K {
	case Int1:
		return 1
	case Int32:
		return 4
	case Ptr:
		return 8
	default:
		return 0
	}
}

func (t Type) IsVoid() bool    { return t.K == Void }
func (t Type) IsPointer() bool { return t.K == Ptr }
func (t Type) IsInteger() bool { return t.K == Int1 || t.K == Int32 }

// ElemType returns the pointee type, or void for non-pointers.
func (t Type) ElemType() Type {
	if t.K == Ptr && t.Elem != nil {
		return *t.Elem
	}
	return VoidT()
}

func (t Type) Equal(u Type) bool {
	if t.K != u.K {
		return false
	}
	if t.K == Ptr {
		return t.ElemType().Equal(u.ElemType())
	}
	return true
}

func (t Type) String() string {
	switch t.K {
	case Int1:
		return "i1"
	case Int32:
		return "i32"
	case Ptr:
		return t.ElemType().String() + "*"
	default:
		return "void"
	}
}
