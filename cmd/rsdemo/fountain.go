package main

import "github.com/gogpu/gfxrt/engine"

const (
	stride = 4 // x, y, dx, dy
	size   = 2
)

// fountain is the host side of the root script. Particle state lives in
// the allocation bound to slot 0.
type fountain struct {
	count int
	next  int
}

func (f *fountain) root(env *engine.Env, _ uint32) bool {
	w, h := env.FrameSize()
	fw, fh := float32(w), float32(h)

	// Respawn a few particles at the nozzle every frame.
	for range max(f.count/64, 1) {
		base := f.next * stride
		env.StoreF(0, base, fw/2)
		env.StoreF(0, base+1, fh-10)
		env.StoreF(0, base+2, env.Rand(4)-2)
		env.StoreF(0, base+3, -6-env.Rand(4))
		f.next = (f.next + 1) % f.count
	}

	env.Color(0.4, 0.7, 1, 1)
	for i := range f.count {
		base := i * stride
		x, y := env.LoadF(0, base), env.LoadF(0, base+1)
		dx, dy := env.LoadF(0, base+2), env.LoadF(0, base+3)
		if x == 0 && y == 0 {
			continue
		}
		dy += 0.25
		x, y = x+dx, y+dy
		if y > fh {
			y, dy = fh, -dy*0.5
		}
		env.StoreF(0, base, x)
		env.StoreF(0, base+1, y)
		env.StoreF(0, base+3, dy)
		env.DrawRect(x, y, x+size, y+size, 0)
	}
	return true
}
