// Package preview renders a corner table to an image with a small software
// rasterizer: flat-shaded faces, an optional wireframe and highlighted boundary edges.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	gomath "math"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
)

// Preview errors.
var (
	ErrEmptyMesh              = errors.New("mesh has no faces")
	ErrUnsupportedImageFormat = errors.New("unsupported image format")
)

// Colors used by Render.
var (
	Background   = color.NRGBA{R: 0x20, G: 0x22, B: 0x26, A: 0xff}
	FrontColor   = color.NRGBA{R: 0x9c, G: 0xb4, B: 0xd8, A: 0xff}
	BackColor    = color.NRGBA{R: 0xd8, G: 0xb0, B: 0x7c, A: 0xff}
	EdgeColor    = color.NRGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xff}
	BoundaryEdge = color.NRGBA{R: 0xff, G: 0x20, B: 0x20, A: 0xff}
)

// Options controls the view and output size.
type Options struct {
	Size        int     // output width and height in pixels
	Supersample int     // render at Size*Supersample, then downscale
	Yaw         float64 // degrees around +Y
	Pitch       float64 // degrees around +X, applied after yaw
	Wireframe   bool
}

// DefaultOptions returns a 512px, 2x supersampled three-quarter view with wireframe.
func DefaultOptions() Options {
	return Options{
		Size:        512,
		Supersample: 2,
		Yaw:         30,
		Pitch:       20,
		Wireframe:   true,
	}
}

var lightDir = math.Vec3{X: -0.4, Y: 0.6, Z: 0.7}.Normalize()

// Render draws the live faces of t. The model is centered and scaled so its bounding
// sphere fits the image, then viewed orthographically along -Z.
func Render(t *cornertable.Table, opts Options) (*image.NRGBA, error) {
	if t.FaceCount() == 0 {
		return nil, ErrEmptyMesh
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}
	opts.Supersample = max(opts.Supersample, 1)

	renderSize := opts.Size * opts.Supersample
	box := t.BoundingBox()
	radius := max(box.Size().Length()/2, 1e-9)
	margin := float64(4 * opts.Supersample)
	scale := (float64(renderSize)/2 - margin) / radius

	rot := math.QuatFromAxisAngle(math.Vec3{X: 1}, opts.Pitch*gomath.Pi/180).
		Mul(math.QuatFromAxisAngle(math.Vec3{Y: 1}, opts.Yaw*gomath.Pi/180))
	view := math.UniformScale(scale).
		Mul(rot.ToMat4()).
		Mul(math.Translate(box.Center().Scale(-1)))

	half := float64(renderSize) / 2
	project := func(v int) screenVertex {
		p, _ := t.VertexPosition(v)
		q := view.TransformPoint(p)
		return screenVertex{x: half + q.X, y: half - q.Y, z: q.Z}
	}

	fb := newFrameBuffer(renderSize, renderSize, Background)
	for f := range t.Faces() {
		a, b, c := t.FaceVertices(f)
		sa, sb, sc := project(a), project(b), project(c)

		n := math.TriangleNormal(
			math.Vec3{X: sa.x, Y: -sa.y, Z: sa.z},
			math.Vec3{X: sb.x, Y: -sb.y, Z: sb.z},
			math.Vec3{X: sc.x, Y: -sc.y, Z: sc.z},
		).Normalize()
		base := FrontColor
		if n.Z < 0 {
			base = BackColor
		}
		fb.fillTriangle(sa, sb, sc, shade(base, n))
	}

	if opts.Wireframe {
		width := opts.Supersample / 2
		bias := 2 * float64(opts.Supersample)
		for e := range t.Edges() {
			if t.IsEdgeOnBoundary(e) {
				continue
			}
			v0, v1 := t.EdgeVertices(e)
			fb.drawLine(project(v0), project(v1), width, bias, EdgeColor)
		}
		// Boundary edges go on top of everything.
		for e := range t.Edges() {
			if !t.IsEdgeOnBoundary(e) {
				continue
			}
			v0, v1 := t.EdgeVertices(e)
			fb.drawLine(project(v0), project(v1), width, gomath.Inf(1), BoundaryEdge)
		}
	}

	img := fb.image()
	if opts.Supersample == 1 {
		return img, nil
	}
	dst := image.NewNRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst, nil
}

func shade(base color.NRGBA, n math.Vec3) color.NRGBA {
	k := 0.35 + 0.65*gomath.Abs(n.Dot(lightDir))
	return color.NRGBA{
		R: uint8(float64(base.R)*k + 0.5),
		G: uint8(float64(base.G)*k + 0.5),
		B: uint8(float64(base.B)*k + 0.5),
		A: base.A,
	}
}

// ImageFormat is an output encoding.
type ImageFormat string

const (
	PNG  ImageFormat = "png"
	WebP ImageFormat = "webp"
)

// ParseImageFormat accepts "png" or "webp" in any case.
func ParseImageFormat(s string) (ImageFormat, error) {
	switch f := ImageFormat(strings.ToLower(strings.TrimPrefix(s, "."))); f {
	case PNG, WebP:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, s)
	}
}

// ImageFormatFromPath picks the encoding from a file extension.
func ImageFormatFromPath(path string) (ImageFormat, error) {
	return ParseImageFormat(filepath.Ext(path))
}

// Encode writes img in the given format. WebP output is lossless.
func Encode(w io.Writer, img image.Image, format ImageFormat) error {
	switch format {
	case PNG:
		return png.Encode(w, img)
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("webp encode: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedImageFormat, string(format))
	}
}
