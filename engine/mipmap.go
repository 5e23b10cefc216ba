package engine

import (
	"github.com/gogpu/gfxrt/internal/parallel"
	"github.com/gogpu/gfxrt/schema"
)

// mipBandRows is the smallest number of destination rows worth a worker.
const mipBandRows = 32

// boxFilter averages 2x2 blocks of src into dst. Odd edges clamp to the last
// row or column. ch is the number of byte channels per texel. With a pool,
// bands of destination rows are filtered in parallel.
func boxFilter(pool *parallel.WorkerPool, dst []byte, dl schema.LOD, src []byte, sl schema.LOD, ch int) {
	dh := int(max(dl.Y, 1))
	if pool == nil {
		boxRows(dst, dl, src, sl, ch, 0, dh)
		return
	}
	pool.Bands(dh, mipBandRows, func(lo, hi int) {
		boxRows(dst, dl, src, sl, ch, lo, hi)
	})
}

func boxRows(dst []byte, dl schema.LOD, src []byte, sl schema.LOD, ch, y0, y1 int) {
	sw, sh := int(sl.X), int(max(sl.Y, 1))
	dw := int(dl.X)
	at := func(x, y, c int) uint16 {
		return uint16(src[(y*sw+x)*ch+c])
	}
	for dy := y0; dy < y1; dy++ {
		for dx := range dw {
			sx, sy := dx*2, dy*2
			sx1, sy1 := min(sx+1, sw-1), min(sy+1, sh-1)
			for c := range ch {
				sum := at(sx, sy, c) + at(sx1, sy, c) + at(sx, sy1, c) + at(sx1, sy1, c)
				dst[(dy*dw+dx)*ch+c] = byte(sum / 4)
			}
		}
	}
}
