package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gfxrt/schema"
)

type intDefine struct {
	name string
	v    int32
}

type floatDefine struct {
	name string
	v    float32
}

// identifier maps s to a WGSL identifier.
func identifier(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// preamble renders the constants prepended to script source: one per named
// object, one per define and the word offsets of every component of each
// slot type.
func (c *Context) preamble(st *scriptCState) string {
	var b strings.Builder
	b.WriteString("// generated\n")
	for _, o := range c.reg.named {
		fmt.Fprintf(&b, "const NAMED_%s: u32 = %du;\n", identifier(o.Name), o.ID)
	}
	for _, d := range st.ints {
		fmt.Fprintf(&b, "const %s: i32 = %d;\n", identifier(d.name), d.v)
	}
	for _, d := range st.floats {
		fmt.Fprintf(&b, "const %s: f32 = %sf;\n", identifier(d.name), strconv.FormatFloat(float64(d.v), 'g', -1, 32))
	}
	for slot, t := range st.slotTypes {
		if t != nil {
			writeSlotLayout(&b, slot, t.Element())
		}
	}
	return b.String()
}

func writeSlotLayout(b *strings.Builder, slot int, e *schema.Element) {
	for i, comp := range e.Components() {
		name := comp.Name
		if name == "" {
			name = "C" + strconv.Itoa(i)
		}
		fmt.Fprintf(b, "const SLOT%d_%s: u32 = %du;\n", slot, strings.ToUpper(identifier(name)), e.ComponentOffset(i)/4)
	}
	fmt.Fprintf(b, "const SLOT%d_STRIDE: u32 = %du;\n", slot, (e.SizeBytes()+3)/4)
}
