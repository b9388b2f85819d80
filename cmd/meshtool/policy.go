package main

import (
	"context"
	gomath "math"

	"github.com/Faultbox/meshreduce/internal/config"
	"github.com/Faultbox/meshreduce/pkg/decimation"
	"github.com/Faultbox/meshreduce/pkg/math"
)

// stopPolicy combines the configured bounds. A zero max error means no error bound;
// spheres replace the constant bound with a spatially varying one.
func stopPolicy(ctx context.Context, dc config.DecimationConfig) decimation.StopPolicy {
	policies := []decimation.StopPolicy{decimation.Cancel(ctx)}

	switch {
	case len(dc.Spheres) > 0:
		bounds := decimation.BoundingSphereMaxError{Default: dc.MaxError}
		if dc.MaxError <= 0 {
			bounds.Default = gomath.Inf(1)
		}
		for _, s := range dc.Spheres {
			bounds.Spheres = append(bounds.Spheres, decimation.BoundedSphere{
				Sphere: math.Sphere3{
					Center: math.Vec3{X: s.Center[0], Y: s.Center[1], Z: s.Center[2]},
					Radius: s.Radius,
				},
				MaxError: s.MaxError,
			})
		}
		policies = append(policies, bounds)
	case dc.MaxError > 0:
		policies = append(policies, decimation.ConstantMaxError(dc.MaxError))
	}

	if dc.TargetFaces > 0 {
		policies = append(policies, decimation.TargetFaceCount(dc.TargetFaces))
	}
	return decimation.AnyOf(policies...)
}

func decimationOptions(dc config.DecimationConfig, strategy string) (decimation.Options, error) {
	opts := decimation.Options{
		KeepBoundary:       dc.KeepBoundary,
		MaxNormalDeviation: dc.MaxNormalDeviation,
	}
	switch strategy {
	case "", "quadric":
		opts.Strategy = &decimation.QuadricError{BoundaryWeight: dc.BoundaryWeight}
	case "length":
		opts.Strategy = decimation.EdgeLength{}
	default:
		return opts, usageError("unknown strategy %q (want quadric or length)", strategy)
	}
	return opts, nil
}
