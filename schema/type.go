package schema

import (
	"fmt"
	"math/bits"
)

// Dimension selects which extent a TypeBuilder.Add call sets.
type Dimension uint8

const (
	DimX Dimension = iota
	DimY
	DimZ
	DimLOD  // non-zero value enables a full mip chain
	DimFace // non-zero value enables six cube faces
)

func (d Dimension) String() string {
	switch d {
	case DimX:
		return "x"
	case DimY:
		return "y"
	case DimZ:
		return "z"
	case DimLOD:
		return "lod"
	case DimFace:
		return "face"
	}
	return fmt.Sprintf("Dimension(%d)", uint8(d))
}

// CubeFaces is the face count of a Type with faces enabled.
const CubeFaces = 6

// LOD describes one mip level of a Type.
type LOD struct {
	X, Y, Z uint32
	Offset  int // byte offset from the start of the face
}

// Type is an Element combined with extents. Types are immutable.
type Type struct {
	elem      *Element
	x, y, z   uint32
	faces     bool
	mips      bool
	lods      []LOD
	faceBytes int
}

// Element returns the element layout.
func (t *Type) Element() *Element { return t.elem }

// X returns the X extent.
func (t *Type) X() uint32 { return t.x }

// Y returns the Y extent; 0 means unused.
func (t *Type) Y() uint32 { return t.y }

// Z returns the Z extent; 0 means unused.
func (t *Type) Z() uint32 { return t.z }

// HasFaces reports whether the type carries cube faces.
func (t *Type) HasFaces() bool { return t.faces }

// HasMips reports whether the type carries a mip chain.
func (t *Type) HasMips() bool { return t.mips }

// Count returns the number of instances at LOD 0 of one face.
func (t *Type) Count() int {
	return int(t.x) * int(max(t.y, 1)) * int(max(t.z, 1))
}

// Is2D reports whether the type has more than one row.
func (t *Type) Is2D() bool { return t.y > 1 || t.z > 1 }

// FaceCount returns 6 for cube types and 1 otherwise.
func (t *Type) FaceCount() int {
	if t.faces {
		return CubeFaces
	}
	return 1
}

// LODCount returns the number of mip levels, at least 1.
func (t *Type) LODCount() int { return len(t.lods) }

// LOD returns the extents of mip level l.
func (t *Type) LOD(l int) LOD { return t.lods[l] }

// LODInstanceCount returns the instance count of mip level l.
func (t *Type) LODInstanceCount(l int) int {
	lod := t.lods[l]
	return int(lod.X) * int(max(lod.Y, 1)) * int(max(lod.Z, 1))
}

// SizeBytes returns the byte size of all faces and mip levels.
func (t *Type) SizeBytes() int { return t.faceBytes * t.FaceCount() }

// Offset returns the byte offset of instance (x, y, z) at the given mip
// level and face. Faces are stored outermost and mip levels inside each face.
func (t *Type) Offset(lod, face int, x, y, z uint32) int {
	l := t.lods[lod]
	stride := t.elem.SizeBytes()
	row := int(l.X) * stride
	slice := row * int(max(l.Y, 1))
	return face*t.faceBytes + l.Offset + int(z)*slice + int(y)*row + int(x)*stride
}

// Equal reports whether two types have the same element and extents.
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.elem.Equal(o.elem) && t.x == o.x && t.y == o.y && t.z == o.z &&
		t.faces == o.faces && t.mips == o.mips
}

func (t *Type) String() string {
	return fmt.Sprintf("Type{%s x=%d y=%d z=%d faces=%t mips=%t}", t.elem, t.x, t.y, t.z, t.faces, t.mips)
}

// TypeBuilder assembles a Type: Begin with an element, Add extents, Create.
type TypeBuilder struct {
	elem    *Element
	x, y, z uint32
	faces   bool
	mips    bool
}

// Begin starts a new type over e.
func (b *TypeBuilder) Begin(e *Element) {
	*b = TypeBuilder{elem: e}
}

// Add sets one extent.
func (b *TypeBuilder) Add(d Dimension, value uint32) {
	switch d {
	case DimX:
		b.x = value
	case DimY:
		b.y = value
	case DimZ:
		b.z = value
	case DimLOD:
		b.mips = value != 0
	case DimFace:
		b.faces = value != 0
	}
}

// Create finalizes the pending type and resets the builder.
func (b *TypeBuilder) Create() (*Type, error) {
	defer func() { *b = TypeBuilder{} }()
	return NewType(b.elem, b.x, b.y, b.z, b.faces, b.mips)
}

// NewType builds a Type directly.
func NewType(e *Element, x, y, z uint32, faces, mips bool) (*Type, error) {
	if e == nil {
		return nil, ErrNoElement
	}
	if x < 1 {
		return nil, ErrInvalidExtent
	}
	t := &Type{elem: e, x: x, y: y, z: z, faces: faces, mips: mips}

	levels := 1
	if mips {
		levels = bits.Len32(max(x, y, z))
	}
	t.lods = make([]LOD, levels)
	lx, ly, lz := x, y, z
	offset := 0
	for i := range t.lods {
		t.lods[i] = LOD{X: lx, Y: ly, Z: lz, Offset: offset}
		offset += int(lx) * int(max(ly, 1)) * int(max(lz, 1)) * e.SizeBytes()
		lx = max(lx/2, 1)
		if ly > 1 {
			ly = max(ly/2, 1)
		}
		if lz > 1 {
			lz = max(lz/2, 1)
		}
	}
	t.faceBytes = offset
	return t, nil
}
