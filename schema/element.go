package schema

import (
	"errors"
	"fmt"
	"strings"
)

// DataType is the scalar type of one Element component.
type DataType uint8

const (
	DataTypeNone DataType = iota
	DataTypeFloat16
	DataTypeFloat32
	DataTypeFloat64
	DataTypeSigned8
	DataTypeSigned16
	DataTypeSigned32
	DataTypeSigned64
	DataTypeUnsigned8
	DataTypeUnsigned16
	DataTypeUnsigned32
	DataTypeUnsigned64

	// Packed pixel formats stored in one 16-bit word.
	DataTypeUnsigned565
	DataTypeUnsigned5551
	DataTypeUnsigned4444

	// Object references are stored as 32-bit handles.
	DataTypeElement
	DataTypeType
	DataTypeAllocation
	DataTypeSampler
	DataTypeScript
	DataTypeProgramFragment
	DataTypeProgramVertex
	DataTypeProgramStore
)

var dataTypeNames = [...]string{
	DataTypeNone:            "none",
	DataTypeFloat16:         "f16",
	DataTypeFloat32:         "f32",
	DataTypeFloat64:         "f64",
	DataTypeSigned8:         "i8",
	DataTypeSigned16:        "i16",
	DataTypeSigned32:        "i32",
	DataTypeSigned64:        "i64",
	DataTypeUnsigned8:       "u8",
	DataTypeUnsigned16:      "u16",
	DataTypeUnsigned32:      "u32",
	DataTypeUnsigned64:      "u64",
	DataTypeUnsigned565:     "u565",
	DataTypeUnsigned5551:    "u5551",
	DataTypeUnsigned4444:    "u4444",
	DataTypeElement:         "element",
	DataTypeType:            "type",
	DataTypeAllocation:      "allocation",
	DataTypeSampler:         "sampler",
	DataTypeScript:          "script",
	DataTypeProgramFragment: "program_fragment",
	DataTypeProgramVertex:   "program_vertex",
	DataTypeProgramStore:    "program_store",
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}
	return fmt.Sprintf("DataType(%d)", uint8(t))
}

// Bits returns the natural storage width of the data type.
func (t DataType) Bits() uint32 {
	switch t {
	case DataTypeSigned8, DataTypeUnsigned8:
		return 8
	case DataTypeFloat16, DataTypeSigned16, DataTypeUnsigned16,
		DataTypeUnsigned565, DataTypeUnsigned5551, DataTypeUnsigned4444:
		return 16
	case DataTypeFloat32, DataTypeSigned32, DataTypeUnsigned32:
		return 32
	case DataTypeFloat64, DataTypeSigned64, DataTypeUnsigned64:
		return 64
	case DataTypeNone:
		return 0
	}
	if t.IsObject() {
		return 32
	}
	return 0
}

// IsFloat reports whether t is a floating point type.
func (t DataType) IsFloat() bool {
	return t == DataTypeFloat16 || t == DataTypeFloat32 || t == DataTypeFloat64
}

// IsSigned reports whether t is a signed integer type.
func (t DataType) IsSigned() bool {
	return t >= DataTypeSigned8 && t <= DataTypeSigned64
}

// IsUnsigned reports whether t is an unsigned integer type, packed formats included.
func (t DataType) IsUnsigned() bool {
	return t >= DataTypeUnsigned8 && t <= DataTypeUnsigned4444
}

// IsPacked reports whether t is a packed 16-bit pixel format.
func (t DataType) IsPacked() bool {
	return t >= DataTypeUnsigned565 && t <= DataTypeUnsigned4444
}

// IsObject reports whether t is an object reference.
func (t DataType) IsObject() bool {
	return t >= DataTypeElement && t <= DataTypeProgramStore
}

// Valid reports whether t names a known data type other than DataTypeNone.
func (t DataType) Valid() bool {
	return t > DataTypeNone && t <= DataTypeProgramStore
}

// DataKind is the semantic meaning of one Element component.
type DataKind uint8

const (
	KindUser DataKind = iota
	KindRed
	KindGreen
	KindBlue
	KindAlpha
	KindLuminance
	KindIntensity
	KindX
	KindY
	KindZ
	KindW
	KindS
	KindT
	KindQ
	KindR
	KindNX
	KindNY
	KindNZ
	KindIndex
	KindPointSize
)

var kindNames = [...]string{
	"user", "r", "g", "b", "a", "l", "i",
	"x", "y", "z", "w", "s", "t", "q", "r",
	"nx", "ny", "nz", "index", "point_size",
}

func (k DataKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("DataKind(%d)", uint8(k))
}

// Component is one field of an Element.
type Component struct {
	Kind       DataKind
	Type       DataType
	Normalized bool
	Bits       uint32
	Name       string
}

// Element describes the layout of a single memory cell. Elements are
// immutable once created and may be shared freely between goroutines.
type Element struct {
	components []Component
	offsets    []uint32 // bit offset of each component
	bits       uint32
}

// ComponentCount returns the number of components.
func (e *Element) ComponentCount() int { return len(e.components) }

// Component returns component i.
func (e *Element) Component(i int) Component { return e.components[i] }

// Components returns a copy of the component list.
func (e *Element) Components() []Component {
	return append([]Component(nil), e.components...)
}

// Bits returns the total bit size of one instance.
func (e *Element) Bits() uint32 { return e.bits }

// SizeBytes returns the byte size of one instance, rounded up.
func (e *Element) SizeBytes() int { return int((e.bits + 7) / 8) }

// ComponentOffset returns the byte offset of component i within an instance.
func (e *Element) ComponentOffset(i int) int { return int(e.offsets[i] / 8) }

// ComponentIndex returns the index of the component with the given name, or -1.
func (e *Element) ComponentIndex(name string) int {
	for i, c := range e.components {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// DataType returns the data type shared by every component, or
// DataTypeNone when components mix types.
func (e *Element) DataType() DataType {
	if len(e.components) == 0 {
		return DataTypeNone
	}
	dt := e.components[0].Type
	for _, c := range e.components[1:] {
		if c.Type != dt {
			return DataTypeNone
		}
	}
	return dt
}

// Accepts reports whether host scalars of type src may be copied into
// instances of e. The scalar type must match the element data type exactly.
// Elements made of unsigned integer components additionally accept a
// single unsigned word covering the whole instance, so an RGBA_8888 pixel
// can be written as one uint32 and a 565 pixel as one uint16.
func (e *Element) Accepts(src DataType) bool {
	dt := e.DataType()
	if dt == DataTypeNone || !src.Valid() {
		return false
	}
	if dt == src {
		return true
	}
	return dt.IsUnsigned() && src.IsUnsigned() && !src.IsPacked() && e.bits == src.Bits()
}

// ScalarsPerInstance returns how many host scalars of type src make up one
// instance. It returns 0 when src is not accepted.
func (e *Element) ScalarsPerInstance(src DataType) int {
	if !e.Accepts(src) {
		return 0
	}
	return int(e.bits / src.Bits())
}

// Equal reports whether two elements describe the same layout.
func (e *Element) Equal(o *Element) bool {
	if e == o {
		return true
	}
	if e == nil || o == nil || len(e.components) != len(o.components) {
		return false
	}
	for i := range e.components {
		if e.components[i] != o.components[i] {
			return false
		}
	}
	return true
}

func (e *Element) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, c := range e.components {
		if i > 0 {
			b.WriteString(", ")
		}
		if c.Name != "" {
			b.WriteString(c.Name)
			b.WriteByte(':')
		}
		fmt.Fprintf(&b, "%s %s/%d", c.Kind, c.Type, c.Bits)
		if c.Normalized {
			b.WriteString(" norm")
		}
	}
	b.WriteByte('}')
	return b.String()
}

// Errors returned by the builders.
var (
	ErrEmptyElement  = errors.New("schema: element has no components")
	ErrInvalidType   = errors.New("schema: invalid data type")
	ErrInvalidBits   = errors.New("schema: invalid component bit width")
	ErrNoElement     = errors.New("schema: type has no element")
	ErrInvalidExtent = errors.New("schema: X dimension must be at least 1")
	ErrBuilderIdle   = errors.New("schema: builder not started")
)

// ElementBuilder assembles an Element. Call Begin, then Add or
// AddPredefined any number of times, then Create.
type ElementBuilder struct {
	started    bool
	components []Component
	err        error
}

// Begin discards any pending components and starts a new element.
func (b *ElementBuilder) Begin() {
	b.started = true
	b.components = b.components[:0]
	b.err = nil
}

// Add appends one component. bits must be 0 or the natural width of dt;
// 0 selects the natural width.
func (b *ElementBuilder) Add(kind DataKind, dt DataType, normalized bool, bits uint32) {
	b.AddNamed("", kind, dt, normalized, bits)
}

// AddNamed appends one named component.
func (b *ElementBuilder) AddNamed(name string, kind DataKind, dt DataType, normalized bool, bits uint32) {
	if b.err != nil {
		return
	}
	if !dt.Valid() {
		b.err = fmt.Errorf("%w: %d", ErrInvalidType, dt)
		return
	}
	if bits == 0 {
		bits = dt.Bits()
	}
	if bits != dt.Bits() {
		b.err = fmt.Errorf("%w: %d bits for %s", ErrInvalidBits, bits, dt)
		return
	}
	b.components = append(b.components, Component{
		Kind:       kind,
		Type:       dt,
		Normalized: normalized,
		Bits:       bits,
		Name:       name,
	})
}

// AddPredefined appends the components of a predefined element.
func (b *ElementBuilder) AddPredefined(p Predefined) {
	if b.err != nil {
		return
	}
	e := p.Element()
	if e == nil {
		b.err = fmt.Errorf("%w: predefined %d", ErrInvalidType, p)
		return
	}
	b.components = append(b.components, e.components...)
}

// Create finalizes the pending element and resets the builder.
func (b *ElementBuilder) Create() (*Element, error) {
	defer func() {
		b.started = false
		b.components = nil
		b.err = nil
	}()
	if !b.started {
		return nil, ErrBuilderIdle
	}
	if b.err != nil {
		return nil, b.err
	}
	if len(b.components) == 0 {
		return nil, ErrEmptyElement
	}
	return newElement(b.components), nil
}

func newElement(components []Component) *Element {
	e := &Element{
		components: append([]Component(nil), components...),
		offsets:    make([]uint32, len(components)),
	}
	for i, c := range e.components {
		e.offsets[i] = e.bits
		e.bits += c.Bits
	}
	return e
}
