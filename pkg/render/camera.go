package render

import (
	"math"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

// OrbitCamera circles a target point at a fixed distance, the usual
// model viewer control scheme. Yaw spins around the vertical axis,
// pitch tilts toward the poles.
type OrbitCamera struct {
	Target   math3d.Vec3
	Distance float64
	Yaw      float64
	Pitch    float64

	FOV    float64 // vertical field of view in radians
	Aspect float64 // width / height in pixels
	Near   float64
	Far    float64
}

// NewOrbitCamera creates a camera orbiting target from the given
// distance with a 60 degree field of view.
func NewOrbitCamera(target math3d.Vec3, distance float64) *OrbitCamera {
	return &OrbitCamera{
		Target:   target,
		Distance: distance,
		Pitch:    0.35,
		FOV:      math.Pi / 3,
		Aspect:   16.0 / 9.0,
		Near:     0.1,
		Far:      1000,
	}
}

// maxPitch stops just short of the poles where the up vector would
// degenerate.
const maxPitch = math.Pi/2 - 0.01

// Orbit adjusts yaw and pitch by the given deltas, clamping pitch.
func (c *OrbitCamera) Orbit(deltaYaw, deltaPitch float64) {
	c.Yaw += deltaYaw
	c.Pitch = clamp(c.Pitch+deltaPitch, -maxPitch, maxPitch)
}

// Zoom scales the orbit distance; factors below 1 move in.
func (c *OrbitCamera) Zoom(factor float64) {
	c.Distance = math.Max(c.Distance*factor, 1e-3)
}

// Position returns the camera's world position on the orbit sphere.
func (c *OrbitCamera) Position() math3d.Vec3 {
	cp := math.Cos(c.Pitch)
	return c.Target.Add(math3d.V3(
		c.Distance*cp*math.Sin(c.Yaw),
		c.Distance*math.Sin(c.Pitch),
		c.Distance*cp*math.Cos(c.Yaw),
	))
}

// ViewProjection returns the combined view and projection matrix.
func (c *OrbitCamera) ViewProjection() math3d.Mat4 {
	view := math3d.LookAt(c.Position(), c.Target, math3d.V3(0, 1, 0))
	proj := math3d.Perspective(c.FOV, c.Aspect, c.Near, c.Far)
	return proj.Mul(view)
}

// WorldToScreen projects a world point into pixel coordinates. It
// returns the pixel position, the NDC depth, and whether the point is
// inside the view frustum.
func (c *OrbitCamera) WorldToScreen(world math3d.Vec3, width, height int) (x, y, depth float64, visible bool) {
	clip := c.ViewProjection().MulVec4(math3d.V4FromV3(world, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clip.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x = (ndc.X + 1) * 0.5 * float64(width)
	y = (1 - ndc.Y) * 0.5 * float64(height)
	return x, y, ndc.Z, true
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
