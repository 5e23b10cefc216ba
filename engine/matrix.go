package engine

import "math"

// Matrix is a 4x4 float32 matrix in column-major order:
//
//	| M[0]  M[4]  M[8]   M[12] |
//	| M[1]  M[5]  M[9]   M[13] |
//	| M[2]  M[6]  M[10]  M[14] |
//	| M[3]  M[7]  M[11]  M[15] |
//
// The Load and in-place methods are the matrix helpers of the script
// function table; they mutate the receiver.
type Matrix struct {
	M [16]float32
}

// Identity returns the identity matrix.
func Identity() Matrix {
	var m Matrix
	m.LoadIdentity()
	return m
}

func (m *Matrix) at(row, col int) float32 { return m.M[col*4+row] }

func (m *Matrix) set(row, col int, v float32) { m.M[col*4+row] = v }

// LoadIdentity resets m to the identity.
func (m *Matrix) LoadIdentity() {
	m.M = [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Load copies src into m.
func (m *Matrix) Load(src *Matrix) { m.M = src.M }

// LoadFloats loads 16 column-major values.
func (m *Matrix) LoadFloats(v []float32) { copy(m.M[:], v[:16]) }

// LoadRotate loads a rotation of deg degrees around (x, y, z).
func (m *Matrix) LoadRotate(deg, x, y, z float32) {
	m.LoadIdentity()
	l := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if l == 0 {
		return
	}
	x, y, z = x/l, y/l, z/l
	r := float64(deg) * math.Pi / 180
	c, s := float32(math.Cos(r)), float32(math.Sin(r))
	nc := 1 - c
	m.set(0, 0, x*x*nc+c)
	m.set(0, 1, x*y*nc-z*s)
	m.set(0, 2, x*z*nc+y*s)
	m.set(1, 0, y*x*nc+z*s)
	m.set(1, 1, y*y*nc+c)
	m.set(1, 2, y*z*nc-x*s)
	m.set(2, 0, z*x*nc-y*s)
	m.set(2, 1, z*y*nc+x*s)
	m.set(2, 2, z*z*nc+c)
}

// LoadScale loads a scale matrix.
func (m *Matrix) LoadScale(x, y, z float32) {
	m.LoadIdentity()
	m.M[0], m.M[5], m.M[10] = x, y, z
}

// LoadTranslate loads a translation matrix.
func (m *Matrix) LoadTranslate(x, y, z float32) {
	m.LoadIdentity()
	m.M[12], m.M[13], m.M[14] = x, y, z
}

// LoadMultiply sets m to l * r. m may alias either operand.
func (m *Matrix) LoadMultiply(l, r *Matrix) {
	var out Matrix
	for i := range 4 {
		for j := range 4 {
			var sum float32
			for k := range 4 {
				sum += l.at(i, k) * r.at(k, j)
			}
			out.set(i, j, sum)
		}
	}
	m.M = out.M
}

// Multiply post-multiplies m by r.
func (m *Matrix) Multiply(r *Matrix) { m.LoadMultiply(m, r) }

// Rotate post-multiplies m by a rotation.
func (m *Matrix) Rotate(deg, x, y, z float32) {
	var r Matrix
	r.LoadRotate(deg, x, y, z)
	m.Multiply(&r)
}

// Scale post-multiplies m by a scale.
func (m *Matrix) Scale(x, y, z float32) {
	var s Matrix
	s.LoadScale(x, y, z)
	m.Multiply(&s)
}

// Translate post-multiplies m by a translation.
func (m *Matrix) Translate(x, y, z float32) {
	var t Matrix
	t.LoadTranslate(x, y, z)
	m.Multiply(&t)
}

// Transform applies m to the point (x, y, z, 1).
func (m *Matrix) Transform(x, y, z float32) (float32, float32, float32, float32) {
	return m.M[0]*x + m.M[4]*y + m.M[8]*z + m.M[12],
		m.M[1]*x + m.M[5]*y + m.M[9]*z + m.M[13],
		m.M[2]*x + m.M[6]*y + m.M[10]*z + m.M[14],
		m.M[3]*x + m.M[7]*y + m.M[11]*z + m.M[15]
}

// Ortho returns an orthographic projection mapping (0,0)-(w,h) to clip
// space with y down.
func Ortho(w, h float32) Matrix {
	var m Matrix
	m.LoadIdentity()
	if w == 0 || h == 0 {
		return m
	}
	m.M[0] = 2 / w
	m.M[5] = -2 / h
	m.M[10] = -1
	m.M[12] = -1
	m.M[13] = 1
	return m
}
