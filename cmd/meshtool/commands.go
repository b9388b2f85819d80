package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/Faultbox/meshreduce/internal/config"
	"github.com/Faultbox/meshreduce/internal/logger"
	"github.com/Faultbox/meshreduce/pkg/decimation"
	"github.com/Faultbox/meshreduce/pkg/formats"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
	"github.com/Faultbox/meshreduce/pkg/preview"
)

// stdout receives command output; tests swap it.
var stdout io.Writer = os.Stdout

var errUsage = errors.New("invalid arguments")

func usageError(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

func loadTable(path string) (*formats.Mesh, *cornertable.Table, error) {
	m, err := formats.ParseFile(path)
	if err != nil {
		return nil, nil, err
	}
	if m.Skipped > 0 {
		logger.Warn("skipped degenerate triangles", zap.String("file", path), zap.Int("count", m.Skipped))
	}
	t, err := m.Table()
	if err != nil {
		return nil, nil, err
	}
	return m, t, nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return usageError("usage: meshtool info <mesh>")
	}

	m, t, err := loadTable(args[0])
	if err != nil {
		return err
	}

	boundaryEdges, boundaryVerts := 0, 0
	for e := range t.Edges() {
		if t.IsEdgeOnBoundary(e) {
			boundaryEdges++
		}
	}
	minValence, maxValence := -1, 0
	for v := range t.Vertices() {
		if t.IsVertexOnBoundary(v) {
			boundaryVerts++
		}
		n := t.Valence(v)
		if minValence < 0 || n < minValence {
			minValence = n
		}
		maxValence = max(maxValence, n)
	}

	vertices, faces, edges := t.VertexCount(), t.FaceCount(), t.EdgeCount()
	box := t.BoundingBox()

	fmt.Fprintf(stdout, "Mesh:      %s (%s)\n", args[0], m.Name)
	fmt.Fprintf(stdout, "Vertices:  %d\n", vertices)
	fmt.Fprintf(stdout, "Faces:     %d\n", faces)
	fmt.Fprintf(stdout, "Edges:     %d (%d on boundary)\n", edges, boundaryEdges)
	fmt.Fprintf(stdout, "Boundary:  %d vertices\n", boundaryVerts)
	fmt.Fprintf(stdout, "Valence:   %d..%d\n", max(minValence, 0), maxValence)
	fmt.Fprintf(stdout, "Euler:     %d\n", vertices-edges+faces)
	if m.Skipped > 0 {
		fmt.Fprintf(stdout, "Skipped:   %d degenerate triangles\n", m.Skipped)
	}
	if !box.IsEmpty() {
		size := box.Size()
		fmt.Fprintf(stdout, "Bounds:    (%g, %g, %g) - (%g, %g, %g)\n",
			box.Min.X, box.Min.Y, box.Min.Z, box.Max.X, box.Max.Y, box.Max.Z)
		fmt.Fprintf(stdout, "Size:      %g x %g x %g\n", size.X, size.Y, size.Z)
	}
	return nil
}

func cmdCheck(args []string) error {
	if len(args) < 1 {
		return usageError("usage: meshtool check <mesh>")
	}

	_, t, err := loadTable(args[0])
	if err != nil {
		return err
	}

	errs := multierr.Errors(t.Validate())
	if len(errs) == 0 {
		fmt.Fprintf(stdout, "%s: OK (%d vertices, %d faces)\n", args[0], t.VertexCount(), t.FaceCount())
		return nil
	}
	for _, e := range errs {
		fmt.Fprintf(stdout, "  %v\n", e)
	}
	return fmt.Errorf("%s: %d problems found", args[0], len(errs))
}

func cmdDecimate(cfg *config.Config, args []string) error {
	dc := cfg.Decimation

	fs := flag.NewFlagSet("decimate", flag.ContinueOnError)
	in := fs.String("in", "", "Input mesh (.stl or .obj)")
	out := fs.String("out", "", "Output mesh (.stl or .obj)")
	fs.Float64Var(&dc.MaxError, "max-error", dc.MaxError, "Stop when the cheapest collapse costs this much (0 = no bound)")
	fs.IntVar(&dc.TargetFaces, "target-faces", dc.TargetFaces, "Stop at this many faces (0 = no target)")
	ratio := fs.Float64("ratio", 0, "Stop at this fraction of the input faces (overrides -target-faces)")
	fs.Float64Var(&dc.MaxNormalDeviation, "max-angle", dc.MaxNormalDeviation, "Largest face normal rotation in degrees")
	fs.BoolVar(&dc.KeepBoundary, "keep-boundary", dc.KeepBoundary, "Never move boundary vertices")
	fs.Float64Var(&dc.BoundaryWeight, "boundary-weight", dc.BoundaryWeight, "Weight of boundary-preserving planes")
	strategy := fs.String("strategy", "quadric", "Cost function: quadric or length")
	ascii := fs.Bool("ascii", false, "Write ASCII STL")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}

	if *in == "" || *out == "" {
		return usageError("usage: meshtool decimate -in <mesh> -out <mesh> [options]")
	}
	if *ratio < 0 || *ratio > 1 {
		return usageError("-ratio must be in [0, 1], got %g", *ratio)
	}
	outFormat, err := outputFormat(*out, *ascii)
	if err != nil {
		return err
	}

	m, t, err := loadTable(*in)
	if err != nil {
		return err
	}
	if *ratio > 0 {
		dc.TargetFaces = int(float64(t.FaceCount()) * *ratio)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts, err := decimationOptions(dc, *strategy)
	if err != nil {
		return err
	}
	opts.Logger = logger.Named("decimate")

	stats := decimation.Decimate(t, stopPolicy(ctx, dc), opts)
	if ctx.Err() != nil {
		logger.Warn("interrupted, writing partial result")
	}

	if err := formats.WriteFile(*out, formats.FromTable(m.Name, t), outFormat); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Faces:     %d -> %d (%.1f%%)\n", stats.FacesBefore, stats.FacesAfter,
		percent(stats.FacesAfter, stats.FacesBefore))
	fmt.Fprintf(stdout, "Vertices:  %d -> %d\n", stats.VerticesBefore, stats.VerticesAfter)
	fmt.Fprintf(stdout, "Collapses: %d (%d rejected)\n", stats.Collapses, stats.Rejected)
	fmt.Fprintf(stdout, "Time:      %v\n", stats.Duration)
	fmt.Fprintf(stdout, "Written:   %s\n", *out)
	return nil
}

func cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	ascii := fs.Bool("ascii", false, "Write ASCII STL")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if fs.NArg() < 2 {
		return usageError("usage: meshtool convert [-ascii] <in> <out>")
	}

	format, err := outputFormat(fs.Arg(1), *ascii)
	if err != nil {
		return err
	}
	m, err := formats.ParseFile(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := formats.WriteFile(fs.Arg(1), m, format); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Converted %s -> %s (%s, %d triangles)\n", fs.Arg(0), fs.Arg(1), format, m.TriangleCount())
	return nil
}

func cmdPreview(cfg *config.Config, args []string) error {
	pc := cfg.Preview

	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.IntVar(&pc.Size, "size", pc.Size, "Image width and height in pixels")
	fs.IntVar(&pc.Supersample, "supersample", pc.Supersample, "Render scale before downsampling")
	fs.Float64Var(&pc.Yaw, "yaw", pc.Yaw, "Rotation around the vertical axis in degrees")
	fs.Float64Var(&pc.Pitch, "pitch", pc.Pitch, "Tilt towards the viewer in degrees")
	fs.BoolVar(&pc.Wireframe, "wireframe", pc.Wireframe, "Draw edges")
	formatName := fs.String("format", "", "Image format: png or webp (default from extension)")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if fs.NArg() < 2 {
		return usageError("usage: meshtool preview [options] <mesh> <image>")
	}

	var format preview.ImageFormat
	var err error
	switch {
	case *formatName != "":
		format, err = preview.ParseImageFormat(*formatName)
	case strings.Contains(fs.Arg(1), "."):
		format, err = preview.ImageFormatFromPath(fs.Arg(1))
	default:
		format, err = preview.ParseImageFormat(pc.Format)
	}
	if err != nil {
		return err
	}

	_, t, err := loadTable(fs.Arg(0))
	if err != nil {
		return err
	}

	img, err := preview.Render(t, preview.Options{
		Size:        pc.Size,
		Supersample: pc.Supersample,
		Yaw:         pc.Yaw,
		Pitch:       pc.Pitch,
		Wireframe:   pc.Wireframe,
	})
	if err != nil {
		return err
	}

	f, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	defer f.Close()
	if err := preview.Encode(f, img, format); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Debug("preview written", zap.String("file", fs.Arg(1)), zap.String("format", string(format)))
	fmt.Fprintf(stdout, "Rendered %s -> %s (%dx%d %s)\n", fs.Arg(0), fs.Arg(1), pc.Size, pc.Size, format)
	return nil
}

// cmdConfig prints the effective configuration, or writes it with -save or -out.
func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	save := fs.Bool("save", false, "Write to the user config directory")
	out := fs.String("out", "", "Write to this file instead of printing")
	if err := fs.Parse(args); err != nil {
		return usageError("%v", err)
	}
	if *save && *out != "" {
		return usageError("-save and -out are mutually exclusive")
	}

	switch {
	case *save:
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved config to %s\n", config.UserConfigPath())
	case *out != "":
		if err := cfg.SaveTo(*out); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Saved config to %s\n", *out)
	default:
		return cfg.Encode(stdout)
	}
	return nil
}

// outputFormat picks the writer for path; -ascii only applies to STL.
func outputFormat(path string, ascii bool) (formats.Format, error) {
	format, err := formats.FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	if ascii && format == formats.FormatSTL {
		format = formats.FormatSTLASCII
	}
	return format, nil
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return 100 * float64(part) / float64(whole)
}
