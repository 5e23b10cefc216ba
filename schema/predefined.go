package schema

// Predefined names a built-in element layout.
type Predefined uint8

const (
	PredefinedU8 Predefined = iota
	PredefinedI8
	PredefinedU16
	PredefinedI16
	PredefinedU32
	PredefinedI32
	PredefinedF32
	PredefinedA8
	PredefinedRGB565
	PredefinedRGBA5551
	PredefinedRGBA4444
	PredefinedRGB888
	PredefinedRGBA8888
	PredefinedIndex16
	PredefinedXYF32
	PredefinedXYZF32
	PredefinedSTXYF32
	PredefinedSTXYZF32
	PredefinedNormXYZF32
	PredefinedUserElement
	PredefinedUserAllocation
	predefinedCount
)

var predefined [predefinedCount]*Element

func init() {
	norm := func(k DataKind, name string) Component {
		return Component{Kind: k, Type: DataTypeUnsigned8, Normalized: true, Bits: 8, Name: name}
	}
	f32 := func(k DataKind, name string) Component {
		return Component{Kind: k, Type: DataTypeFloat32, Bits: 32, Name: name}
	}
	user := func(dt DataType) *Element {
		return newElement([]Component{{Kind: KindUser, Type: dt, Bits: dt.Bits()}})
	}

	predefined[PredefinedU8] = user(DataTypeUnsigned8)
	predefined[PredefinedI8] = user(DataTypeSigned8)
	predefined[PredefinedU16] = user(DataTypeUnsigned16)
	predefined[PredefinedI16] = user(DataTypeSigned16)
	predefined[PredefinedU32] = user(DataTypeUnsigned32)
	predefined[PredefinedI32] = user(DataTypeSigned32)
	predefined[PredefinedF32] = user(DataTypeFloat32)
	predefined[PredefinedA8] = newElement([]Component{norm(KindAlpha, "a")})
	predefined[PredefinedRGB565] = newElement([]Component{
		{Kind: KindRed, Type: DataTypeUnsigned565, Normalized: true, Bits: 16, Name: "rgb"},
	})
	predefined[PredefinedRGBA5551] = newElement([]Component{
		{Kind: KindRed, Type: DataTypeUnsigned5551, Normalized: true, Bits: 16, Name: "rgba"},
	})
	predefined[PredefinedRGBA4444] = newElement([]Component{
		{Kind: KindRed, Type: DataTypeUnsigned4444, Normalized: true, Bits: 16, Name: "rgba"},
	})
	predefined[PredefinedRGB888] = newElement([]Component{
		norm(KindRed, "r"), norm(KindGreen, "g"), norm(KindBlue, "b"),
	})
	predefined[PredefinedRGBA8888] = newElement([]Component{
		norm(KindRed, "r"), norm(KindGreen, "g"), norm(KindBlue, "b"), norm(KindAlpha, "a"),
	})
	predefined[PredefinedIndex16] = newElement([]Component{
		{Kind: KindIndex, Type: DataTypeUnsigned16, Bits: 16, Name: "index"},
	})
	predefined[PredefinedXYF32] = newElement([]Component{f32(KindX, "x"), f32(KindY, "y")})
	predefined[PredefinedXYZF32] = newElement([]Component{f32(KindX, "x"), f32(KindY, "y"), f32(KindZ, "z")})
	predefined[PredefinedSTXYF32] = newElement([]Component{
		f32(KindS, "s"), f32(KindT, "t"), f32(KindX, "x"), f32(KindY, "y"),
	})
	predefined[PredefinedSTXYZF32] = newElement([]Component{
		f32(KindS, "s"), f32(KindT, "t"), f32(KindX, "x"), f32(KindY, "y"), f32(KindZ, "z"),
	})
	predefined[PredefinedNormXYZF32] = newElement([]Component{
		f32(KindNX, "nx"), f32(KindNY, "ny"), f32(KindNZ, "nz"),
	})
	predefined[PredefinedUserElement] = user(DataTypeElement)
	predefined[PredefinedUserAllocation] = user(DataTypeAllocation)
}

// Element returns the shared element for p, or nil if p is unknown.
func (p Predefined) Element() *Element {
	if p >= predefinedCount {
		return nil
	}
	return predefined[p]
}
