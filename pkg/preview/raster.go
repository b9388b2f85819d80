package preview

import (
	"image"
	"image/color"
	gomath "math"
)

// frameBuffer holds the render target as flat slices.
type frameBuffer struct {
	width  int
	height int
	color  []uint8   // RGBA interleaved, len = w*h*4
	zbuf   []float64 // larger is closer, initialized to -inf
}

func newFrameBuffer(w, h int, bg color.NRGBA) *frameBuffer {
	n := w * h
	fb := &frameBuffer{
		width:  w,
		height: h,
		color:  make([]uint8, n*4),
		zbuf:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		fb.zbuf[i] = gomath.Inf(-1)
		fb.color[i*4+0] = bg.R
		fb.color[i*4+1] = bg.G
		fb.color[i*4+2] = bg.B
		fb.color[i*4+3] = bg.A
	}
	return fb
}

func (fb *frameBuffer) image() *image.NRGBA {
	return &image.NRGBA{
		Pix:    fb.color,
		Stride: fb.width * 4,
		Rect:   image.Rect(0, 0, fb.width, fb.height),
	}
}

func (fb *frameBuffer) set(x, y int, c color.NRGBA) {
	i := (y*fb.width + x) * 4
	fb.color[i+0] = c.R
	fb.color[i+1] = c.G
	fb.color[i+2] = c.B
	fb.color[i+3] = c.A
}

// screenVertex is a projected point: x and y in pixels, z growing towards the viewer.
type screenVertex struct {
	x, y, z float64
}

// fillTriangle rasterizes a flat-colored triangle with depth testing.
func (fb *frameBuffer) fillTriangle(a, b, c screenVertex, col color.NRGBA) {
	minX := max(int(gomath.Floor(min(a.x, b.x, c.x))), 0)
	maxX := min(int(gomath.Ceil(max(a.x, b.x, c.x))), fb.width-1)
	minY := max(int(gomath.Floor(min(a.y, b.y, c.y))), 0)
	maxY := min(int(gomath.Ceil(max(a.y, b.y, c.y))), fb.height-1)
	if minX > maxX || minY > maxY {
		return
	}

	det := (b.y-c.y)*(a.x-c.x) + (c.x-b.x)*(a.y-c.y)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1 / det

	for sy := minY; sy <= maxY; sy++ {
		py := float64(sy) + 0.5 - c.y
		row := sy * fb.width
		for sx := minX; sx <= maxX; sx++ {
			px := float64(sx) + 0.5 - c.x
			w0 := ((b.y-c.y)*px + (c.x-b.x)*py) * invDet
			w1 := ((c.y-a.y)*px + (a.x-c.x)*py) * invDet
			w2 := 1 - w0 - w1
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			z := w0*a.z + w1*b.z + w2*c.z
			if z <= fb.zbuf[row+sx] {
				continue
			}
			fb.zbuf[row+sx] = z
			fb.set(sx, sy, col)
		}
	}
}

// drawLine draws a segment of the given half-width. Pixels hidden behind the surface
// by more than bias are skipped unless bias is infinite.
func (fb *frameBuffer) drawLine(a, b screenVertex, halfWidth int, bias float64, col color.NRGBA) {
	steps := int(gomath.Ceil(max(gomath.Abs(b.x-a.x), gomath.Abs(b.y-a.y))))
	if steps == 0 {
		steps = 1
	}

	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		x := int(a.x + (b.x-a.x)*t)
		y := int(a.y + (b.y-a.y)*t)
		z := a.z + (b.z-a.z)*t

		for dy := -halfWidth; dy <= halfWidth; dy++ {
			for dx := -halfWidth; dx <= halfWidth; dx++ {
				px, py := x+dx, y+dy
				if px < 0 || py < 0 || px >= fb.width || py >= fb.height {
					continue
				}
				if z+bias < fb.zbuf[py*fb.width+px] {
					continue
				}
				fb.set(px, py, col)
			}
		}
	}
}
